package domain_test

import (
	"testing"

	"lootledger/internal/modules/valuation/domain"
)

func TestGatheringValueAppliesFriction(t *testing.T) {
	t.Parallel()
	got := domain.ExpectedValue(domain.BucketGathering, domain.PriceInputs{Vendor: 100, Market: 300}, domain.DefaultTuning())
	if got != 255 {
		t.Fatalf("expected 255, got %d", got)
	}
}

func TestRareValueIsCappedAndFloored(t *testing.T) {
	t.Parallel()
	tuning := domain.DefaultTuning()
	got := domain.ExpectedValue(domain.BucketRareMulti, domain.PriceInputs{Vendor: 200, Market: 1000}, tuning)
	if got != 250 {
		t.Fatalf("expected 250, got %d", got)
	}
	spike := domain.ExpectedValue(domain.BucketRareMulti, domain.PriceInputs{Vendor: 200, Market: 1_000_000}, tuning)
	if spike != 250 {
		t.Fatalf("market spike must be capped at 1.25x vendor, got %d", spike)
	}
	noMarket := domain.ExpectedValue(domain.BucketRareMulti, domain.PriceInputs{Vendor: 200}, tuning)
	if noMarket != 200 {
		t.Fatalf("expected vendor floor 200, got %d", noMarket)
	}
}

func TestDeferredBucketsAreZero(t *testing.T) {
	t.Parallel()
	for _, bucket := range []domain.Bucket{domain.BucketSealedContainer, domain.BucketOther} {
		if got := domain.ExpectedValue(bucket, domain.PriceInputs{Vendor: 50, Market: 900}, domain.DefaultTuning()); got != 0 {
			t.Fatalf("%s must be valued at 0, got %d", bucket, got)
		}
	}
}

func TestPricedBucketsNeverDropBelowVendor(t *testing.T) {
	t.Parallel()
	tuning := domain.DefaultTuning()
	for vendor := int64(0); vendor < 400; vendor += 37 {
		for market := int64(-10); market < 2000; market += 113 {
			for _, bucket := range []domain.Bucket{domain.BucketVendorTrash, domain.BucketGathering, domain.BucketRareMulti} {
				got := domain.ExpectedValue(bucket, domain.PriceInputs{Vendor: vendor, Market: market}, tuning)
				if got < vendor {
					t.Fatalf("%s vendor=%d market=%d valued %d below floor", bucket, vendor, market, got)
				}
			}
		}
	}
}

func TestClassifyOrder(t *testing.T) {
	t.Parallel()
	tuning := domain.DefaultTuning()
	cases := []struct {
		name string
		info domain.ItemInfo
		want domain.Bucket
	}{
		{"container beats quality", domain.ItemInfo{ID: 1, Name: "Battered Junkbox Strongbox", Quality: domain.QualityEpic}, domain.BucketSealedContainer},
		{"clam", domain.ItemInfo{ID: 2, Name: "Small Barnacled Clam", Quality: domain.QualityCommon}, domain.BucketSealedContainer},
		{"quest", domain.ItemInfo{ID: 3, Name: "Gnoll Paw", Quality: domain.QualityCommon, Class: domain.ClassQuest}, domain.BucketOther},
		{"unknown quality", domain.ItemInfo{ID: 4, Name: "Odd Thing", Quality: domain.Quality(42)}, domain.BucketOther},
		{"poor", domain.ItemInfo{ID: 5, Name: "Broken Fang", Quality: domain.QualityPoor}, domain.BucketVendorTrash},
		{"uncommon", domain.ItemInfo{ID: 6, Name: "Bandit Cinch", Quality: domain.QualityUncommon, Class: 4}, domain.BucketRareMulti},
		{"whitelisted", domain.ItemInfo{ID: 2589, Name: "Linen Cloth", Quality: domain.QualityCommon, Class: 15}, domain.BucketGathering},
		{"material subclass", domain.ItemInfo{ID: 7, Name: "Something", Quality: domain.QualityCommon, Class: domain.ClassTradeGood, Subclass: 9}, domain.BucketGathering},
		{"name fallback", domain.ItemInfo{ID: 8, Name: "Iron Ore", Quality: domain.QualityCommon, Class: 15}, domain.BucketGathering},
		{"plural name", domain.ItemInfo{ID: 9, Name: "Spider Scales", Quality: domain.QualityCommon, Class: 15}, domain.BucketGathering},
		{"no partial word", domain.ItemInfo{ID: 10, Name: "Barrel Stave", Quality: domain.QualityCommon, Class: 15}, domain.BucketVendorTrash},
		{"plain common", domain.ItemInfo{ID: 11, Name: "Tattered Boots", Quality: domain.QualityCommon, Class: 4}, domain.BucketVendorTrash},
	}
	for _, tc := range cases {
		if got := domain.Classify(tc.info, tuning); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestParseQualityAndBucketValidation(t *testing.T) {
	t.Parallel()
	if q, err := domain.ParseQuality("rare"); err != nil || q != domain.QualityRare {
		t.Fatalf("parse by name: %v %v", q, err)
	}
	if q, err := domain.ParseQuality("4"); err != nil || q != domain.QualityEpic {
		t.Fatalf("parse by number: %v %v", q, err)
	}
	if _, err := domain.ParseQuality("shiny"); err == nil {
		t.Fatalf("expected unknown quality error")
	}
	if err := domain.Bucket("junk").Validate(); err == nil {
		t.Fatalf("expected unknown bucket error")
	}
	if err := domain.DefaultTuning().Validate(); err != nil {
		t.Fatalf("default tuning must validate: %v", err)
	}
}
