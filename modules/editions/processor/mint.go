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
)

// allocateNextEdition reserves the next edition number of the series and
// closes the series in the same update when the cap is reached. Editions are
// allocated from the monotonic minted count, never from liveness, so a
// burned edition number is never handed out again.
func allocateNextEdition(series *entity.Series) (uint64, error) {
	if !series.Mintable {
		return 0, errors.Wrapf(errs.SeriesNotMintable, "series %q is not mintable", series.ID)
	}
	copies := series.CopiesCap()
	if copies != nil && series.MintedCount >= *copies {
		return 0, errors.Wrapf(errs.SeriesNotMintable, "series %q supply is maxed", series.ID)
	}
	edition := series.MintedCount + 1
	series.MintedCount = edition
	if copies != nil && edition >= *copies {
		series.Mintable = false
	}
	return edition, nil
}

// recordMint is the single mint path shared by every minting command. It
// allocates the edition, persists the instance and the updated counters,
// charges the deposit (price plus storage) and appends the mint event.
func (p *Processor) recordMint(ctx context.Context, qtx datagateway.EditionsDataGatewayWithTx, call CallContext, engineParams *entity.EngineParams, series *entity.Series, owner editions.AccountID, approvals map[editions.AccountID]uint64, price *uint128.Uint128) (*entity.Instance, uint128.Uint128, error) {
	edition, err := allocateNextEdition(series)
	if err != nil {
		return nil, uint128.Zero, errors.WithStack(err)
	}
	series.UpdatedAt = call.Now
	if err := qtx.UpdateSeries(ctx, series); err != nil {
		return nil, uint128.Zero, errors.Wrap(err, "failed to update series")
	}

	if approvals == nil {
		approvals = make(map[editions.AccountID]uint64)
	}
	nextApprovalId := uint64(1)
	for _, approvalId := range approvals {
		if approvalId >= nextApprovalId {
			nextApprovalId = approvalId + 1
		}
	}
	instance := &entity.Instance{
		ID:             editions.NewInstanceID(series.ID, edition),
		Owner:          owner,
		Approvals:      approvals,
		NextApprovalID: nextApprovalId,
		IssuedAt:       call.Now,
	}
	if err := qtx.CreateInstance(ctx, instance); err != nil {
		return nil, uint128.Zero, errors.Wrap(err, "failed to create instance")
	}

	engineParams.TotalMinted++
	if err := qtx.SetEngineParams(ctx, *engineParams); err != nil {
		return nil, uint128.Zero, errors.Wrap(err, "failed to update engine params")
	}

	extraSpend := uint128.Zero
	if price != nil {
		extraSpend = *price
	}
	refund, err := p.chargeDeposit(call, instanceStorageBytes(instance), extraSpend)
	if err != nil {
		return nil, uint128.Zero, errors.WithStack(err)
	}

	memo, err := newMintMemo(price, refund)
	if err != nil {
		return nil, uint128.Zero, errors.WithStack(err)
	}
	payload, err := nftMintPayload(owner, instance.ID, memo)
	if err != nil {
		return nil, uint128.Zero, errors.WithStack(err)
	}
	if err := appendEvent(ctx, qtx, newInstanceEvent(entity.EventActionMint, call.Caller, instance.ID, payload, call.Now)); err != nil {
		return nil, uint128.Zero, errors.WithStack(err)
	}
	return instance, refund, nil
}

type PurchaseParams struct {
	SeriesID   editions.SeriesID
	ReceiverID editions.AccountID
}

type PurchaseResult struct {
	Instance *entity.Instance
	Price    uint128.Uint128
	// Fee is owed to Treasury. Payout maps the royalty payees and the
	// creator to the amounts owed, with the fee already deducted from the
	// creator's share. The engine reports the split; settlement happens
	// outside and is never reversed.
	Fee      uint128.Uint128
	Payout   map[editions.AccountID]uint128.Uint128
	Treasury editions.AccountID
	Creator  editions.AccountID
	Refund   uint128.Uint128
}

// Purchase mints the next edition of a priced series to the receiver. The
// price is consumed from the attached value and split among the royalty
// payees and the creator, who pays the platform fee snapshotted when the
// series was last priced.
func (p *Processor) Purchase(ctx context.Context, call CallContext, params PurchaseParams) (*PurchaseResult, error) {
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
	series, err := p.getSeries(ctx, qtx, params.SeriesID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if series.Price == nil {
		return nil, errors.Wrapf(errs.InvalidArgument, "series %q is not for sale", series.ID)
	}
	price := *series.Price

	feeBps := engineParams.Fee.CurrentFee
	if series.FeeBps != nil {
		feeBps = *series.FeeBps
	}

	instance, refund, err := p.recordMint(ctx, qtx, call, &engineParams, series, params.ReceiverID, nil, &price)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Royalty payees keep their full shares; the platform fee comes out of
	// the creator's remainder, floored at zero.
	payout, err := editions.SplitPayout(series.Royalty, series.Creator, price, editions.MaxRoyaltyAccounts+1)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fee := price.Mul64(uint64(feeBps)).Div64(editions.TotalBps)
	creatorShare := payout[series.Creator]
	if creatorShare.Cmp(fee) < 0 {
		fee = creatorShare
	}
	payout[series.Creator] = creatorShare.Sub(fee)

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &PurchaseResult{
		Instance: instance,
		Price:    price,
		Fee:      fee,
		Payout:   payout,
		Treasury: engineParams.Treasury,
		Creator:  series.Creator,
		Refund:   refund,
	}, nil
}

type MintResult struct {
	Instance *entity.Instance
	Refund   uint128.Uint128
}

// MintCreator mints the next edition to the receiver. Creator-only; free
// mints of a priced series are how creators reserve editions for themselves.
func (p *Processor) MintCreator(ctx context.Context, call CallContext, seriesId editions.SeriesID, receiverId editions.AccountID) (*MintResult, error) {
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
		return nil, errors.Wrap(errs.NotCreator, "only the series creator can mint")
	}

	instance, refund, err := p.recordMint(ctx, qtx, call, &engineParams, series, receiverId, nil, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &MintResult{
		Instance: instance,
		Refund:   refund,
	}, nil
}

type MintAllowlistResult struct {
	Instance *entity.Instance
	Refund   uint128.Uint128
	// RemainingBalance is the caller's allowlist balance after this mint.
	RemainingBalance uint32
}

// MintAllowlist mints the next edition to the receiver, spending one unit of
// the caller's allowlist balance instead of requiring the creator role.
func (p *Processor) MintAllowlist(ctx context.Context, call CallContext, seriesId editions.SeriesID, receiverId editions.AccountID) (*MintAllowlistResult, error) {
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
	ogAccount, err := qtx.GetOgAccount(ctx, call.Caller)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.Wrap(errs.Unauthorized, "caller is not in the allowlist")
		}
		return nil, errors.Wrap(err, "failed to get allowlist account")
	}
	if ogAccount.Balance == 0 {
		return nil, errors.Wrap(errs.Unauthorized, "not enough allowlist balance")
	}
	series, err := p.getSeries(ctx, qtx, seriesId)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	ogAccount.Balance--
	if err := qtx.SetOgAccount(ctx, *ogAccount); err != nil {
		return nil, errors.Wrap(err, "failed to update allowlist balance")
	}

	instance, refund, err := p.recordMint(ctx, qtx, call, &engineParams, series, receiverId, nil, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &MintAllowlistResult{
		Instance:         instance,
		Refund:           refund,
		RemainingBalance: ogAccount.Balance,
	}, nil
}

type DrawAndMintResult struct {
	Instance *entity.Instance
	SeriesID editions.SeriesID
	// Index is the 0-based drawn pool index; the series id is index + 1.
	Index  uint64
	Refund uint128.Uint128
}

// DrawAndMint draws a series from the lottery pool without replacement and
// mints its next edition to the caller. The drawn slot is only consumed if
// the mint itself succeeds.
func (p *Processor) DrawAndMint(ctx context.Context, call CallContext) (*DrawAndMintResult, error) {
	if p.drawPoolSize == 0 {
		return nil, errors.Wrap(errs.Unsupported, "draws are disabled")
	}
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
	poolState, err := qtx.GetDrawPoolState(ctx)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.Wrap(errs.Unsupported, "draw pool is not initialized")
		}
		return nil, errors.Wrap(err, "failed to get draw pool state")
	}
	slots, err := qtx.GetDrawPoolSlots(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get draw pool slots")
	}

	pool := editions.RestoreDrawPool(poolState.Size, poolState.Drawn, slots)
	mutation, err := pool.Draw(call.Seed)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	seriesId := editions.NewSeriesID(mutation.Index + 1)
	series, err := p.getSeries(ctx, qtx, seriesId)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	poolState.Drawn = mutation.Drawn
	if err := qtx.SetDrawPoolState(ctx, *poolState); err != nil {
		return nil, errors.Wrap(err, "failed to update draw pool state")
	}
	if len(mutation.SetSlots) > 0 {
		if err := qtx.SetDrawPoolSlots(ctx, mutation.SetSlots); err != nil {
			return nil, errors.Wrap(err, "failed to set draw pool slots")
		}
	}
	if err := qtx.DeleteDrawPoolSlots(ctx, mutation.DeleteSlots); err != nil {
		return nil, errors.Wrap(err, "failed to delete draw pool slots")
	}

	instance, refund, err := p.recordMint(ctx, qtx, call, &engineParams, series, call.Caller, nil, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	p.notifyDraw(ctx, entity.DrawNotice{
		WinnerID:   call.Caller,
		SeriesID:   series.ID,
		InstanceID: instance.ID,
	})
	return &DrawAndMintResult{
		Instance: instance,
		SeriesID: series.ID,
		Index:    mutation.Index,
		Refund:   refund,
	}, nil
}

type MintAndApproveParams struct {
	SeriesID editions.SeriesID
	// ApprovedID is granted the first approval on the fresh instance,
	// typically a marketplace account.
	ApprovedID editions.AccountID
	// Message, when set, is forwarded to the approved account's gateway.
	Message *string
}

type MintAndApproveResult struct {
	Instance   *entity.Instance
	ApprovalID uint64
	Refund     uint128.Uint128
}

// MintAndApprove mints the next edition to the creator and grants an
// approval on it in the same call, so a marketplace can list the instance
// without a second round trip.
func (p *Processor) MintAndApprove(ctx context.Context, call CallContext, params MintAndApproveParams) (*MintAndApproveResult, error) {
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
	series, err := p.getSeries(ctx, qtx, params.SeriesID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if series.Creator != call.Caller {
		return nil, errors.Wrap(errs.NotCreator, "only the series creator can mint")
	}

	const approvalId = uint64(1)
	approvals := map[editions.AccountID]uint64{params.ApprovedID: approvalId}
	instance, refund, err := p.recordMint(ctx, qtx, call, &engineParams, series, call.Caller, approvals, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	if params.Message != nil {
		p.notifyApproval(ctx, entity.ApprovalNotice{
			OwnerID:    call.Caller,
			ApprovedID: params.ApprovedID,
			InstanceID: instance.ID,
			ApprovalID: approvalId,
			Message:    *params.Message,
		})
	}
	return &MintAndApproveResult{
		Instance:   instance,
		ApprovalID: approvalId,
		Refund:     refund,
	}, nil
}

// Burn deletes an instance. Owner-only. The edition number stays allocated
// and the minted counters keep counting it.
func (p *Processor) Burn(ctx context.Context, call CallContext, instanceId editions.InstanceID) error {
	qtx, err := p.editionsDg.BeginEditionsTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	instance, err := qtx.GetInstanceByID(ctx, instanceId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.Wrapf(errs.NotFound, "instance %q does not exist", instanceId)
		}
		return errors.Wrap(err, "failed to get instance")
	}
	if instance.Owner != call.Caller {
		return errors.Wrap(errs.Unauthorized, "only the instance owner can burn")
	}

	if err := qtx.DeleteInstance(ctx, instanceId); err != nil {
		return errors.Wrap(err, "failed to delete instance")
	}

	payload, err := nftBurnPayload(instance.Owner, instanceId)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := appendEvent(ctx, qtx, newInstanceEvent(entity.EventActionBurn, call.Caller, instanceId, payload, call.Now)); err != nil {
		return errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}
