package processor

import (
	"context"
	"time"

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

// authorizeTransfer allows the owner and any approved account to move an
// instance.
func authorizeTransfer(instance *entity.Instance, sender editions.AccountID) error {
	if sender == instance.Owner {
		return nil
	}
	if _, ok := instance.Approvals[sender]; ok {
		return nil
	}
	return errors.Wrap(errs.Unauthorized, "sender is not the owner or an approved account")
}

// moveInstance hands the instance to the receiver and clears the approval
// table, as every ownership change revokes outstanding approvals.
func moveInstance(instance *entity.Instance, receiver editions.AccountID) {
	instance.Owner = receiver
	instance.Approvals = make(map[editions.AccountID]uint64)
}

func transferAuthorizedID(sender, previousOwner editions.AccountID) *editions.AccountID {
	if sender != previousOwner {
		return lo.ToPtr(sender)
	}
	return nil
}

type TransferParams struct {
	InstanceID editions.InstanceID
	ReceiverID editions.AccountID
	Memo       *string
}

// Transfer moves an instance to the receiver synchronously.
func (p *Processor) Transfer(ctx context.Context, call CallContext, params TransferParams) (*entity.Instance, error) {
	qtx, err := p.editionsDg.BeginEditionsTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	instance, err := qtx.GetInstanceByID(ctx, params.InstanceID)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.Wrapf(errs.NotFound, "instance %q does not exist", params.InstanceID)
		}
		return nil, errors.Wrap(err, "failed to get instance")
	}
	if err := authorizeTransfer(instance, call.Caller); err != nil {
		return nil, errors.WithStack(err)
	}
	if params.ReceiverID == instance.Owner {
		return nil, errors.Wrap(errs.InvalidArgument, "receiver already owns the instance")
	}

	previousOwner := instance.Owner
	moveInstance(instance, params.ReceiverID)
	if err := qtx.UpdateInstance(ctx, instance); err != nil {
		return nil, errors.Wrap(err, "failed to update instance")
	}

	payload, err := nftTransferPayload(previousOwner, params.ReceiverID, instance.ID, transferAuthorizedID(call.Caller, previousOwner), params.Memo)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := appendEvent(ctx, qtx, newInstanceEvent(entity.EventActionTransfer, call.Caller, instance.ID, payload, call.Now)); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return instance, nil
}

type TransferCallParams struct {
	InstanceID editions.InstanceID
	ReceiverID editions.AccountID
	// Message is forwarded to the receiver gateway, whose verdict decides
	// whether the transfer stands.
	Message *string
	Memo    *string
}

type TransferCallResult struct {
	Instance *entity.Instance
	// TransferID tracks the pending resolution.
	TransferID int64
}

// TransferCall moves the instance immediately and records a pending transfer
// awaiting the receiver gateway's verdict. A negative verdict restores the
// previous owner only if the receiver still holds the instance.
func (p *Processor) TransferCall(ctx context.Context, call CallContext, params TransferCallParams) (*TransferCallResult, error) {
	qtx, err := p.editionsDg.BeginEditionsTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	instance, err := qtx.GetInstanceByID(ctx, params.InstanceID)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.Wrapf(errs.NotFound, "instance %q does not exist", params.InstanceID)
		}
		return nil, errors.Wrap(err, "failed to get instance")
	}
	if err := authorizeTransfer(instance, call.Caller); err != nil {
		return nil, errors.WithStack(err)
	}
	if params.ReceiverID == instance.Owner {
		return nil, errors.Wrap(errs.InvalidArgument, "receiver already owns the instance")
	}

	previousOwner := instance.Owner
	priorApprovals := instance.Approvals
	moveInstance(instance, params.ReceiverID)
	if err := qtx.UpdateInstance(ctx, instance); err != nil {
		return nil, errors.Wrap(err, "failed to update instance")
	}

	transferId, err := qtx.CreatePendingTransfer(ctx, &entity.PendingTransfer{
		InstanceID:     instance.ID,
		SenderID:       call.Caller,
		PreviousOwner:  previousOwner,
		ReceiverID:     params.ReceiverID,
		PriorApprovals: priorApprovals,
		Message:        params.Message,
		Status:         entity.PendingTransferStatusPending,
		CreatedAt:      call.Now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pending transfer")
	}

	payload, err := nftTransferPayload(previousOwner, params.ReceiverID, instance.ID, transferAuthorizedID(call.Caller, previousOwner), params.Memo)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := appendEvent(ctx, qtx, newInstanceEvent(entity.EventActionTransfer, call.Caller, instance.ID, payload, call.Now)); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &TransferCallResult{
		Instance:   instance,
		TransferID: transferId,
	}, nil
}

type ResolveTransferResult struct {
	TransferID int64
	Status     entity.PendingTransferStatus
}

// ResolvePendingTransfer applies a verdict to a pending transfer on behalf of
// the receiver or the engine owner. The resolver worker uses the same
// resolution path with the gateway's verdict.
func (p *Processor) ResolvePendingTransfer(ctx context.Context, call CallContext, transferId int64, returnAsset bool) (*ResolveTransferResult, error) {
	transfer, err := p.editionsDg.GetPendingTransferByID(ctx, transferId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.Wrapf(errs.NotFound, "pending transfer %d does not exist", transferId)
		}
		return nil, errors.Wrap(err, "failed to get pending transfer")
	}
	engineParams, err := p.engineParams(ctx, p.editionsDg, call.Now)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if call.Caller != transfer.ReceiverID && call.Caller != engineParams.Owner {
		return nil, errors.Wrap(errs.Unauthorized, "only the receiver or the engine owner can resolve a transfer")
	}
	status, err := p.resolveTransfer(ctx, transferId, returnAsset, call.Now)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &ResolveTransferResult{
		TransferID: transferId,
		Status:     status,
	}, nil
}

// resolveTransfer settles one pending transfer. A rollback only happens when
// the receiver still holds the instance; a burned or re-transferred instance
// leaves the transfer standing. Monetary splits are never reversed.
func (p *Processor) resolveTransfer(ctx context.Context, transferId int64, returnAsset bool, now time.Time) (entity.PendingTransferStatus, error) {
	qtx, err := p.editionsDg.BeginEditionsTx(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	transfer, err := qtx.GetPendingTransferByID(ctx, transferId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return "", errors.Wrapf(errs.NotFound, "pending transfer %d does not exist", transferId)
		}
		return "", errors.Wrap(err, "failed to get pending transfer")
	}
	if transfer.Status != entity.PendingTransferStatusPending {
		return "", errors.Wrapf(errs.ConflictSetting, "pending transfer %d is already resolved as %q", transferId, transfer.Status)
	}

	status := entity.PendingTransferStatusKept
	if returnAsset {
		returned, err := p.returnTransferredInstance(ctx, qtx, transfer, now)
		if err != nil {
			return "", errors.WithStack(err)
		}
		if returned {
			status = entity.PendingTransferStatusReturned
		}
	}

	if err := qtx.ResolvePendingTransfer(ctx, datagateway.ResolvePendingTransferParams{
		Id:         transferId,
		Status:     status,
		ResolvedAt: now,
	}); err != nil {
		return "", errors.Wrap(err, "failed to resolve pending transfer")
	}

	if err := qtx.Commit(ctx); err != nil {
		return "", errors.Wrap(err, "failed to commit transaction")
	}
	return status, nil
}

// returnTransferredInstance undoes the move of a rejected transfer when still
// possible and emits the compensating transfer event.
func (p *Processor) returnTransferredInstance(ctx context.Context, qtx datagateway.EditionsDataGatewayWithTx, transfer *entity.PendingTransfer, now time.Time) (bool, error) {
	instance, err := qtx.GetInstanceByID(ctx, transfer.InstanceID)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			// burned in the meantime, nothing to return
			return false, nil
		}
		return false, errors.Wrap(err, "failed to get instance")
	}
	if instance.Owner != transfer.ReceiverID {
		// moved on, the chain of ownership wins
		return false, nil
	}

	instance.Owner = transfer.PreviousOwner
	approvals := make(map[editions.AccountID]uint64, len(transfer.PriorApprovals))
	for account, approvalId := range transfer.PriorApprovals {
		approvals[account] = approvalId
	}
	instance.Approvals = approvals
	if err := qtx.UpdateInstance(ctx, instance); err != nil {
		return false, errors.Wrap(err, "failed to update instance")
	}

	payload, err := nftTransferPayload(transfer.ReceiverID, transfer.PreviousOwner, instance.ID, nil, nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if err := appendEvent(ctx, qtx, newInstanceEvent(entity.EventActionTransfer, transfer.ReceiverID, instance.ID, payload, now)); err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}

type TransferPayoutParams struct {
	InstanceID editions.InstanceID
	ReceiverID editions.AccountID
	Memo       *string
	// Balance is the sale amount to split. Nil skips the payout computation
	// but still transfers and counts the sale.
	Balance   *uint128.Uint128
	MaxPayees uint32
}

type TransferPayoutResult struct {
	Instance *entity.Instance
	// Payout maps payees to amounts owed. Nil when no balance was given.
	Payout map[editions.AccountID]uint128.Uint128
	// SaleCount is the previous owner's total completed sales.
	SaleCount uint64
}

// TransferWithPayout moves an instance as part of a sale: it computes the
// royalty split of the sale balance for the marketplace to settle and counts
// the sale for the previous owner.
func (p *Processor) TransferWithPayout(ctx context.Context, call CallContext, params TransferPayoutParams) (*TransferPayoutResult, error) {
	qtx, err := p.editionsDg.BeginEditionsTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	instance, err := qtx.GetInstanceByID(ctx, params.InstanceID)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.Wrapf(errs.NotFound, "instance %q does not exist", params.InstanceID)
		}
		return nil, errors.Wrap(err, "failed to get instance")
	}
	if err := authorizeTransfer(instance, call.Caller); err != nil {
		return nil, errors.WithStack(err)
	}
	if params.ReceiverID == instance.Owner {
		return nil, errors.Wrap(errs.InvalidArgument, "receiver already owns the instance")
	}

	previousOwner := instance.Owner
	var payout map[editions.AccountID]uint128.Uint128
	if params.Balance != nil {
		if err := editions.ValidatePrice(*params.Balance); err != nil {
			return nil, errors.Wrap(err, "invalid payout balance")
		}
		series, err := p.getSeries(ctx, qtx, instance.ID.SeriesID)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		payout, err = editions.SplitPayout(series.Royalty, previousOwner, *params.Balance, params.MaxPayees)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	moveInstance(instance, params.ReceiverID)
	if err := qtx.UpdateInstance(ctx, instance); err != nil {
		return nil, errors.Wrap(err, "failed to update instance")
	}
	saleCount, err := qtx.IncrementSellerSaleCount(ctx, previousOwner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to increment seller sale count")
	}

	payload, err := nftTransferPayload(previousOwner, params.ReceiverID, instance.ID, transferAuthorizedID(call.Caller, previousOwner), params.Memo)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := appendEvent(ctx, qtx, newInstanceEvent(entity.EventActionTransfer, call.Caller, instance.ID, payload, call.Now)); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &TransferPayoutResult{
		Instance:  instance,
		Payout:    payout,
		SaleCount: saleCount,
	}, nil
}
