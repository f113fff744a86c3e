package processor

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/pkg/logger"
	"github.com/mintforge/edition-engine/pkg/logger/slogx"
	"github.com/samber/lo"
)

type CreateSeriesParams struct {
	// SeriesID is the custom id variant. Nil auto-assigns registry size + 1.
	SeriesID *editions.SeriesID
	// Creator, when set, must match the caller.
	Creator  *editions.AccountID
	Metadata editions.SeriesMetadata
	Royalty  editions.RoyaltyMap
	Price    *uint128.Uint128
}

type CreateSeriesResult struct {
	Series *entity.Series
	Refund uint128.Uint128
}

// CreateSeries registers a new series. Owner-only: the engine is a curated
// registry and series are opened by the platform owner acting as creator.
func (p *Processor) CreateSeries(ctx context.Context, call CallContext, params CreateSeriesParams) (*CreateSeriesResult, error) {
	qtx, err := p.editionsDg.BeginEditionsTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	engineParams, err := p.engineParams(ctx, qtx, call.Now)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if call.Caller != engineParams.Owner {
		return nil, errors.Wrap(errs.Unauthorized, "only the engine owner can create series")
	}
	if params.Creator != nil && *params.Creator != call.Caller {
		return nil, errors.Wrap(errs.Unauthorized, "creator must match the caller")
	}

	seriesId, err := p.resolveNewSeriesID(ctx, qtx, params.SeriesID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := params.Metadata.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := params.Royalty.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	if params.Price != nil {
		if err := editions.ValidatePrice(*params.Price); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	series := &entity.Series{
		ID:       seriesId,
		Creator:  call.Caller,
		Metadata: params.Metadata,
		Royalty:  params.Royalty,
		Price:    params.Price,
		// Snapshot the settled fee; later global fee changes do not affect
		// purchases of this series until the creator re-prices it.
		FeeBps:    lo.ToPtr(engineParams.Fee.CurrentFee),
		Mintable:  true,
		CreatedAt: call.Now,
		UpdatedAt: call.Now,
	}
	if err := qtx.CreateSeries(ctx, series); err != nil {
		return nil, errors.Wrap(err, "failed to create series")
	}

	refund, err := p.chargeDeposit(call, seriesStorageBytes(series), uint128.Zero)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	payload, err := createSeriesPayload(series, refund)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := appendEvent(ctx, qtx, newSeriesEvent(entity.EventActionCreateSeries, call.Caller, series.ID, payload, call.Now)); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &CreateSeriesResult{
		Series: series,
		Refund: refund,
	}, nil
}

// resolveNewSeriesID picks the id for a new series and rejects collisions.
// Auto ids are the registry size + 1 as a decimal string; a custom id that
// squats a future auto id collides the same way.
func (p *Processor) resolveNewSeriesID(ctx context.Context, qtx datagateway.EditionsDataGatewayWithTx, customId *editions.SeriesID) (editions.SeriesID, error) {
	var seriesId editions.SeriesID
	if customId != nil {
		if err := customId.Validate(); err != nil {
			return "", errors.WithStack(err)
		}
		seriesId = *customId
	} else {
		count, err := qtx.CountSeries(ctx)
		if err != nil {
			return "", errors.Wrap(err, "failed to count series")
		}
		seriesId = editions.NewSeriesID(count + 1)
	}
	if _, err := qtx.GetSeriesByID(ctx, seriesId); err == nil {
		return "", errors.Wrapf(errs.DuplicateSeries, "series %q already exists", seriesId)
	} else if !errors.Is(err, errs.NotFound) {
		return "", errors.Wrap(err, "failed to check series id")
	}
	return seriesId, nil
}

// SetSeriesPrice updates or clears the unit price and re-snapshots the
// platform fee. Creator-only; closed series cannot be re-priced.
func (p *Processor) SetSeriesPrice(ctx context.Context, call CallContext, seriesId editions.SeriesID, price *uint128.Uint128) (*entity.Series, error) {
	qtx, err := p.editionsDg.BeginEditionsTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	engineParams, err := p.engineParams(ctx, qtx, call.Now)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	series, err := p.getSeries(ctx, qtx, seriesId)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if series.Creator != call.Caller {
		return nil, errors.Wrap(errs.NotCreator, "only the series creator can set the price")
	}
	if !series.Mintable {
		return nil, errors.Wrap(errs.NotMintable, "cannot set price of a non-mintable series")
	}
	if price != nil {
		if err := editions.ValidatePrice(*price); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	series.Price = price
	series.FeeBps = lo.ToPtr(engineParams.Fee.CurrentFee)
	series.UpdatedAt = call.Now
	if err := qtx.UpdateSeries(ctx, series); err != nil {
		return nil, errors.Wrap(err, "failed to update series")
	}

	payload, err := setSeriesPricePayload(series.ID, price, series.FeeBps)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := appendEvent(ctx, qtx, newSeriesEvent(entity.EventActionSetSeriesPrice, call.Caller, series.ID, payload, call.Now)); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return series, nil
}

// DecreaseSeriesCopies lowers the supply cap of a capped series, down to the
// minted count at most. Reaching the minted count closes the series.
func (p *Processor) DecreaseSeriesCopies(ctx context.Context, call CallContext, seriesId editions.SeriesID, decrease uint64) (*entity.Series, error) {
	qtx, err := p.editionsDg.BeginEditionsTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	series, err := p.getSeries(ctx, qtx, seriesId)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if series.Creator != call.Caller {
		return nil, errors.Wrap(errs.NotCreator, "only the series creator can decrease copies")
	}
	copies := series.CopiesCap()
	if copies == nil {
		return nil, errors.Wrap(errs.InvalidArgument, "series has no copy cap")
	}
	if decrease > *copies || *copies-decrease < series.MintedCount {
		return nil, errors.Wrapf(errs.CannotDecreaseBelowMinted, "cannot decrease copies below the minted count of %d", series.MintedCount)
	}

	newCopies := *copies - decrease
	series.Metadata.Copies = &newCopies
	if newCopies == series.MintedCount {
		series.Mintable = false
	}
	series.UpdatedAt = call.Now
	if err := qtx.UpdateSeries(ctx, series); err != nil {
		return nil, errors.Wrap(err, "failed to update series")
	}

	payload, err := decreaseSeriesCopiesPayload(series.ID, newCopies, !series.Mintable)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := appendEvent(ctx, qtx, newSeriesEvent(entity.EventActionDecreaseSeriesCopies, call.Caller, series.ID, payload, call.Now)); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return series, nil
}

// SetSeriesNonMintable permanently closes an uncapped series. Capped series
// must use DecreaseSeriesCopies so the cap and the closure stay consistent.
func (p *Processor) SetSeriesNonMintable(ctx context.Context, call CallContext, seriesId editions.SeriesID) (*entity.Series, error) {
	qtx, err := p.editionsDg.BeginEditionsTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	series, err := p.getSeries(ctx, qtx, seriesId)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if series.Creator != call.Caller {
		return nil, errors.Wrap(errs.NotCreator, "only the series creator can close the series")
	}
	if !series.Mintable {
		return nil, errors.Wrap(errs.AlreadyNonMintable, "series is already non-mintable")
	}
	if series.CopiesCap() != nil {
		return nil, errors.Wrap(errs.UseDecreaseInstead, "decrease copies instead for a capped series")
	}

	series.Mintable = false
	series.UpdatedAt = call.Now
	if err := qtx.UpdateSeries(ctx, series); err != nil {
		return nil, errors.Wrap(err, "failed to update series")
	}

	payload, err := setSeriesNonMintablePayload(series.ID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := appendEvent(ctx, qtx, newSeriesEvent(entity.EventActionSetSeriesNonMintable, call.Caller, series.ID, payload, call.Now)); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return series, nil
}
