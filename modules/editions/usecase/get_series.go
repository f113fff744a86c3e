package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

func (u *Usecase) GetSeriesByID(ctx context.Context, id editions.SeriesID) (*entity.Series, error) {
	series, err := u.editionsDg.GetSeriesByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetSeriesByID")
	}
	return series, nil
}

func (u *Usecase) GetSeriesList(ctx context.Context, limit int32, offset int32) ([]*entity.Series, error) {
	seriesList, err := u.editionsDg.GetSeriesList(ctx, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetSeriesList")
	}
	return seriesList, nil
}

func (u *Usecase) GetSeriesByCreator(ctx context.Context, creator editions.AccountID, limit int32, offset int32) ([]*entity.Series, error) {
	seriesList, err := u.editionsDg.GetSeriesByCreator(ctx, creator, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetSeriesByCreator")
	}
	return seriesList, nil
}

func (u *Usecase) CountSeries(ctx context.Context) (uint64, error) {
	count, err := u.editionsDg.CountSeries(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "error during CountSeries")
	}
	return count, nil
}
