package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

// GetEngineParams returns the platform parameters with the fee schedule
// settled against now. Read-only; a matured pending change is persisted by
// the next command, not here.
func (u *Usecase) GetEngineParams(ctx context.Context, now time.Time) (*entity.EngineParams, error) {
	params, err := u.editionsDg.GetEngineParams(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetEngineParams")
	}
	settled := *params
	settled.Fee = settled.Fee.Settle(now)
	return &settled, nil
}

// GetEffectiveSeriesFee returns the fee a purchase of the series would settle
// against: the per-series snapshot when present, otherwise the settled
// global fee.
func (u *Usecase) GetEffectiveSeriesFee(ctx context.Context, seriesId editions.SeriesID, now time.Time) (uint16, error) {
	series, err := u.editionsDg.GetSeriesByID(ctx, seriesId)
	if err != nil {
		return 0, errors.Wrap(err, "error during GetSeriesByID")
	}
	if series.FeeBps != nil {
		return *series.FeeBps, nil
	}
	params, err := u.GetEngineParams(ctx, now)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return params.Fee.CurrentFee, nil
}
