package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"lootledger/internal/modules/valuation/domain"
	valuationout "lootledger/internal/modules/valuation/port/out"
)

type itemRecord struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Quality     int    `yaml:"quality"`
	Class       int    `yaml:"class"`
	Subclass    int    `yaml:"subclass"`
	VendorPrice int64  `yaml:"vendor_price"`
}

type catalogFile struct {
	Items []itemRecord `yaml:"items"`
}

// YAMLItemCatalog keeps resolved item metadata in items.yaml. Items that are
// not in the file yet are reported as Pending.
type YAMLItemCatalog struct {
	path string
	mu   sync.Mutex
}

func NewYAMLItemCatalog(path string) valuationout.ItemCatalog {
	return &YAMLItemCatalog{path: path}
}

func (c *YAMLItemCatalog) Lookup(_ context.Context, itemID int64) (domain.ItemLookup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load()
	if err != nil {
		return nil, err
	}
	if info, ok := items[itemID]; ok {
		return domain.Resolved{Info: info}, nil
	}
	return domain.Pending{ID: itemID}, nil
}

func (c *YAMLItemCatalog) Put(_ context.Context, info domain.ItemInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load()
	if err != nil {
		return err
	}
	items[info.ID] = info
	return c.save(items)
}

func (c *YAMLItemCatalog) List(_ context.Context) ([]domain.ItemInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load()
	if err != nil {
		return nil, err
	}
	return sortedItems(items), nil
}

func (c *YAMLItemCatalog) load() (map[int64]domain.ItemInfo, error) {
	out := map[int64]domain.ItemInfo{}
	b, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read item catalog: %w", err)
	}
	file := catalogFile{}
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("decode item catalog: %w", err)
	}
	for _, rec := range file.Items {
		out[rec.ID] = domain.ItemInfo{
			ID:          rec.ID,
			Name:        rec.Name,
			Quality:     domain.Quality(rec.Quality),
			Class:       rec.Class,
			Subclass:    rec.Subclass,
			VendorPrice: rec.VendorPrice,
		}
	}
	return out, nil
}

func (c *YAMLItemCatalog) save(items map[int64]domain.ItemInfo) error {
	file := catalogFile{}
	for _, info := range sortedItems(items) {
		file.Items = append(file.Items, itemRecord{
			ID:          info.ID,
			Name:        info.Name,
			Quality:     int(info.Quality),
			Class:       info.Class,
			Subclass:    info.Subclass,
			VendorPrice: info.VendorPrice,
		})
	}
	return writeYAML(c.path, file)
}

func sortedItems(items map[int64]domain.ItemInfo) []domain.ItemInfo {
	out := make([]domain.ItemInfo, 0, len(items))
	for _, info := range items {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func writeYAML(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	b, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
