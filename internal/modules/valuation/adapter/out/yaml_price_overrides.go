package out

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	valuationout "lootledger/internal/modules/valuation/port/out"
)

// YAMLPriceOverrides stores manual market prices keyed by item ID.
type YAMLPriceOverrides struct {
	path string
	mu   sync.Mutex
}

func NewYAMLPriceOverrides(path string) valuationout.PriceOverrideStore {
	return &YAMLPriceOverrides{path: path}
}

func (s *YAMLPriceOverrides) MarketPrice(_ context.Context, itemID int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prices, err := s.load()
	if err != nil {
		return 0, false, err
	}
	price, ok := prices[itemID]
	return price, ok, nil
}

func (s *YAMLPriceOverrides) SetPrice(_ context.Context, itemID, copper int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prices, err := s.load()
	if err != nil {
		return err
	}
	prices[itemID] = copper
	return writeYAML(s.path, map[string]map[int64]int64{"prices": prices})
}

func (s *YAMLPriceOverrides) ClearPrice(_ context.Context, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prices, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := prices[itemID]; !ok {
		return nil
	}
	delete(prices, itemID)
	return writeYAML(s.path, map[string]map[int64]int64{"prices": prices})
}

func (s *YAMLPriceOverrides) load() (map[int64]int64, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int64]int64{}, nil
		}
		return nil, fmt.Errorf("read price overrides: %w", err)
	}
	file := struct {
		Prices map[int64]int64 `yaml:"prices"`
	}{}
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("decode price overrides: %w", err)
	}
	if file.Prices == nil {
		file.Prices = map[int64]int64{}
	}
	return file.Prices, nil
}
