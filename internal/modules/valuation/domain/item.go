package domain

import "fmt"

type Bucket string

const (
	BucketVendorTrash     Bucket = "vendor_trash"
	BucketRareMulti       Bucket = "rare_multi"
	BucketGathering       Bucket = "gathering"
	BucketSealedContainer Bucket = "sealed_container"
	BucketOther           Bucket = "other"
)

func (b Bucket) Validate() error {
	switch b {
	case BucketVendorTrash, BucketRareMulti, BucketGathering, BucketSealedContainer, BucketOther:
		return nil
	default:
		return fmt.Errorf("unknown bucket: %s", b)
	}
}

// Buckets lists every bucket in reporting order.
func Buckets() []Bucket {
	return []Bucket{BucketVendorTrash, BucketGathering, BucketRareMulti, BucketSealedContainer, BucketOther}
}

// Quality is the client's item rarity tier.
type Quality int

const (
	QualityPoor Quality = iota
	QualityCommon
	QualityUncommon
	QualityRare
	QualityEpic
	QualityLegendary
	QualityArtifact
	QualityHeirloom
)

var qualityNames = map[Quality]string{
	QualityPoor:      "poor",
	QualityCommon:    "common",
	QualityUncommon:  "uncommon",
	QualityRare:      "rare",
	QualityEpic:      "epic",
	QualityLegendary: "legendary",
	QualityArtifact:  "artifact",
	QualityHeirloom:  "heirloom",
}

func (q Quality) Known() bool {
	_, ok := qualityNames[q]
	return ok
}

func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("quality(%d)", int(q))
}

// ParseQuality accepts either a tier name or its numeric value.
func ParseQuality(raw string) (Quality, error) {
	for q, name := range qualityNames {
		if name == raw {
			return q, nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err == nil && Quality(n).Known() {
		return Quality(n), nil
	}
	return 0, fmt.Errorf("unknown quality: %s", raw)
}

// Item classes the classifier cares about.
const (
	ClassReagent   = 5
	ClassTradeGood = 7
	ClassQuest     = 12
)

type ItemInfo struct {
	ID          int64
	Name        string
	Quality     Quality
	Class       int
	Subclass    int
	VendorPrice int64
}

func (i ItemInfo) Validate() error {
	if i.ID <= 0 {
		return fmt.Errorf("item id must be positive")
	}
	if i.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if i.VendorPrice < 0 {
		return fmt.Errorf("vendor price must be non-negative")
	}
	return nil
}

// ItemLookup is either Resolved or Pending.
type ItemLookup interface {
	itemLookup()
}

type Resolved struct {
	Info ItemInfo
}

// Pending means the client has not delivered metadata for the item yet.
// Callers retry once it resolves.
type Pending struct {
	ID int64
}

func (Resolved) itemLookup() {}
func (Pending) itemLookup()  {}
