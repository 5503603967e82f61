package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tuning carries every valuation knob. DefaultTuning holds the shipped
// constants.
type Tuning struct {
	FrictionFactor    decimal.Decimal
	VendorWeight      decimal.Decimal
	DisenchantWeight  decimal.Decimal
	MarketWeight      decimal.Decimal
	CapMultiplier     decimal.Decimal
	ContainerPatterns []string
	MaterialPatterns  []string
	MaterialClasses   map[int][]int
	MaterialWhitelist map[int64]struct{}
	QuestClass        int
}

func DefaultTuning() Tuning {
	return Tuning{
		FrictionFactor:   decimal.RequireFromString("0.85"),
		VendorWeight:     decimal.RequireFromString("0.50"),
		DisenchantWeight: decimal.RequireFromString("0.35"),
		MarketWeight:     decimal.RequireFromString("0.15"),
		CapMultiplier:    decimal.RequireFromString("1.25"),
		ContainerPatterns: []string{
			"lockbox", "strongbox", "chest", "crate", "clam", "cache",
			"coffer", "sack", "footlocker", "trunk", "satchel", "bag of",
		},
		MaterialPatterns: []string{
			"ore", "bar", "herb", "leaf", "bloom", "petal", "lotus", "cloth",
			"leather", "hide", "scale", "dust", "essence", "shard", "crystal",
			"stone", "meat", "fish", "wing", "thread", "pearl",
		},
		MaterialClasses: map[int][]int{
			// parts, jewelcrafting, cloth, leather, metal & stone, cooking, herb, elemental, enchanting
			ClassTradeGood: {1, 4, 5, 6, 7, 8, 9, 10, 12},
			ClassReagent:   {0},
		},
		MaterialWhitelist: map[int64]struct{}{
			2589: {}, // linen cloth
			2592: {}, // wool cloth
			2770: {}, // copper ore
			2771: {}, // tin ore
			765:  {}, // silverleaf
			2447: {}, // peacebloom
			2318: {}, // light leather
			2836: {}, // coarse stone
		},
		QuestClass: ClassQuest,
	}
}

func (t Tuning) Validate() error {
	one := decimal.NewFromInt(1)
	if t.FrictionFactor.IsNegative() || t.FrictionFactor.GreaterThan(one) {
		return fmt.Errorf("friction factor must be within [0, 1]")
	}
	for name, w := range map[string]decimal.Decimal{
		"vendor":     t.VendorWeight,
		"disenchant": t.DisenchantWeight,
		"market":     t.MarketWeight,
	} {
		if w.IsNegative() {
			return fmt.Errorf("%s weight must be non-negative", name)
		}
	}
	if t.CapMultiplier.LessThan(one) {
		return fmt.Errorf("cap multiplier must be at least 1")
	}
	return nil
}
