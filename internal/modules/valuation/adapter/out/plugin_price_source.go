package out

import (
	"context"

	pricingdto "lootledger/internal/modules/pricing/dto"
	pricingin "lootledger/internal/modules/pricing/port/in"
	valuationout "lootledger/internal/modules/valuation/port/out"
)

// PluginPriceSource quotes market prices from one configured price plugin.
type PluginPriceSource struct {
	pricing pricingin.Usecase
	plugin  string
}

func NewPluginPriceSource(pricing pricingin.Usecase, plugin string) valuationout.PriceSource {
	return &PluginPriceSource{pricing: pricing, plugin: plugin}
}

func (s *PluginPriceSource) MarketPrice(ctx context.Context, itemID int64) (int64, bool, error) {
	out, err := s.pricing.Quote(ctx, pricingdto.QuoteInput{PluginName: s.plugin, ItemID: itemID})
	if err != nil {
		return 0, false, err
	}
	return out.Copper, out.Found, nil
}
