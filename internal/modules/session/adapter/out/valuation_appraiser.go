package out

import (
	"context"

	"lootledger/internal/modules/session/domain"
	sessionout "lootledger/internal/modules/session/port/out"
	valuationin "lootledger/internal/modules/valuation/port/in"
)

// ValuationAppraiser books acquisitions at the price the valuation module
// quotes at the moment of the signal.
type ValuationAppraiser struct {
	valuation valuationin.Usecase
}

func NewValuationAppraiser(valuation valuationin.Usecase) sessionout.Appraiser {
	return &ValuationAppraiser{valuation: valuation}
}

func (a *ValuationAppraiser) Appraise(ctx context.Context, itemID int64) (domain.Appraisal, error) {
	out, err := a.valuation.Appraise(ctx, itemID)
	if err != nil {
		return domain.Appraisal{}, err
	}
	return domain.Appraisal{
		ItemID:       out.ItemID,
		Name:         out.Name,
		Bucket:       out.Bucket,
		ValuePerUnit: out.ValuePerUnit,
	}, nil
}
