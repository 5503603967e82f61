package domain

import "github.com/shopspring/decimal"

// PriceInputs are the raw copper inputs for one item. Absent sources are 0.
type PriceInputs struct {
	Vendor     int64
	Market     int64
	Disenchant int64
}

// ExpectedValue returns the conservative per-unit value for bucket. Every
// priced path is floored at the vendor price.
func ExpectedValue(bucket Bucket, in PriceInputs, t Tuning) int64 {
	vendor := decimal.NewFromInt(nonNegative(in.Vendor))
	market := decimal.NewFromInt(nonNegative(in.Market))
	disenchant := decimal.NewFromInt(nonNegative(in.Disenchant))

	switch bucket {
	case BucketVendorTrash:
		return vendor.IntPart()
	case BucketGathering:
		return decimal.Max(vendor, market.Mul(t.FrictionFactor).Floor()).IntPart()
	case BucketRareMulti:
		raw := vendor.Mul(t.VendorWeight).
			Add(disenchant.Mul(t.DisenchantWeight)).
			Add(market.Mul(t.MarketWeight))
		ceiling := decimal.Max(vendor, disenchant).Mul(t.CapMultiplier)
		return decimal.Max(vendor, decimal.Min(raw, ceiling).Floor()).IntPart()
	default:
		return 0
	}
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
