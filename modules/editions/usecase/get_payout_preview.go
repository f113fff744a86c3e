package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/modules/editions/editions"
)

// PreviewPayout computes the royalty split a sale of the instance at the
// given amount would produce, without any side effects.
func (u *Usecase) PreviewPayout(ctx context.Context, instanceId editions.InstanceID, amount uint128.Uint128, maxPayees uint32) (map[editions.AccountID]uint128.Uint128, error) {
	if err := editions.ValidatePrice(amount); err != nil {
		return nil, errors.Wrap(err, "invalid preview amount")
	}
	instance, err := u.editionsDg.GetInstanceByID(ctx, instanceId)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetInstanceByID")
	}
	series, err := u.editionsDg.GetSeriesByID(ctx, instanceId.SeriesID)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetSeriesByID")
	}
	payout, err := editions.SplitPayout(series.Royalty, instance.Owner, amount, maxPayees)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return payout, nil
}
