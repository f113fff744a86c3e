package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

func (u *Usecase) GetInstanceByID(ctx context.Context, id editions.InstanceID) (*entity.Instance, error) {
	instance, err := u.editionsDg.GetInstanceByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetInstanceByID")
	}
	return instance, nil
}

func (u *Usecase) GetInstancesBySeries(ctx context.Context, seriesId editions.SeriesID, limit int32, offset int32) ([]*entity.Instance, error) {
	instances, err := u.editionsDg.GetInstancesBySeries(ctx, seriesId, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetInstancesBySeries")
	}
	return instances, nil
}

func (u *Usecase) GetInstancesByOwner(ctx context.Context, owner editions.AccountID, limit int32, offset int32) ([]*entity.Instance, error) {
	instances, err := u.editionsDg.GetInstancesByOwner(ctx, owner, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetInstancesByOwner")
	}
	return instances, nil
}

func (u *Usecase) CountInstances(ctx context.Context) (uint64, error) {
	count, err := u.editionsDg.CountInstances(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "error during CountInstances")
	}
	return count, nil
}

func (u *Usecase) CountInstancesByOwner(ctx context.Context, owner editions.AccountID) (uint64, error) {
	count, err := u.editionsDg.CountInstancesByOwner(ctx, owner)
	if err != nil {
		return 0, errors.Wrap(err, "error during CountInstancesByOwner")
	}
	return count, nil
}
