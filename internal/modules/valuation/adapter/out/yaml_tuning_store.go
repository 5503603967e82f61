package out

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"lootledger/internal/modules/valuation/domain"
	valuationout "lootledger/internal/modules/valuation/port/out"
)

// tuningFile mirrors tuning.yaml. Omitted keys keep their defaults.
type tuningFile struct {
	FrictionFactor    *float64      `yaml:"friction_factor"`
	VendorWeight      *float64      `yaml:"vendor_weight"`
	DisenchantWeight  *float64      `yaml:"disenchant_weight"`
	MarketWeight      *float64      `yaml:"market_weight"`
	CapMultiplier     *float64      `yaml:"cap_multiplier"`
	ContainerPatterns []string      `yaml:"container_patterns"`
	MaterialPatterns  []string      `yaml:"material_patterns"`
	MaterialClasses   map[int][]int `yaml:"material_classes"`
	MaterialWhitelist []int64       `yaml:"material_whitelist"`
	QuestClass        *int          `yaml:"quest_class"`
}

type YAMLTuningStore struct {
	path string
}

func NewYAMLTuningStore(path string) valuationout.TuningStore {
	return &YAMLTuningStore{path: path}
}

func (s *YAMLTuningStore) Load(_ context.Context) (domain.Tuning, error) {
	tuning := domain.DefaultTuning()
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return tuning, nil
		}
		return domain.Tuning{}, fmt.Errorf("read tuning: %w", err)
	}
	file := tuningFile{}
	if err := yaml.Unmarshal(b, &file); err != nil {
		return domain.Tuning{}, fmt.Errorf("decode tuning: %w", err)
	}
	setDecimal(&tuning.FrictionFactor, file.FrictionFactor)
	setDecimal(&tuning.VendorWeight, file.VendorWeight)
	setDecimal(&tuning.DisenchantWeight, file.DisenchantWeight)
	setDecimal(&tuning.MarketWeight, file.MarketWeight)
	setDecimal(&tuning.CapMultiplier, file.CapMultiplier)
	if len(file.ContainerPatterns) > 0 {
		tuning.ContainerPatterns = file.ContainerPatterns
	}
	if len(file.MaterialPatterns) > 0 {
		tuning.MaterialPatterns = file.MaterialPatterns
	}
	if len(file.MaterialClasses) > 0 {
		tuning.MaterialClasses = file.MaterialClasses
	}
	if len(file.MaterialWhitelist) > 0 {
		tuning.MaterialWhitelist = map[int64]struct{}{}
		for _, id := range file.MaterialWhitelist {
			tuning.MaterialWhitelist[id] = struct{}{}
		}
	}
	if file.QuestClass != nil {
		tuning.QuestClass = *file.QuestClass
	}
	if err := tuning.Validate(); err != nil {
		return domain.Tuning{}, fmt.Errorf("invalid tuning %s: %w", s.path, err)
	}
	return tuning, nil
}

func setDecimal(dst *decimal.Decimal, v *float64) {
	if v != nil {
		*dst = decimal.NewFromFloat(*v)
	}
}
