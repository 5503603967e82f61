package out

import (
	"context"

	valuationout "lootledger/internal/modules/valuation/port/out"
)

// ZeroDisenchant is the disenchant input until a real source exists.
type ZeroDisenchant struct{}

func NewZeroDisenchant() valuationout.DisenchantSource {
	return ZeroDisenchant{}
}

func (ZeroDisenchant) DisenchantValue(context.Context, int64) (int64, error) {
	return 0, nil
}
