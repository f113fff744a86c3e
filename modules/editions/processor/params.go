package processor

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/pkg/logger"
	"github.com/mintforge/edition-engine/pkg/logger/slogx"
)

// ScheduleFee sets the platform fee, immediately or at a future activation
// time. Owner-only. A matured pending change is settled before the new
// schedule is applied, so it is never silently discarded.
func (p *Processor) ScheduleFee(ctx context.Context, call CallContext, nextFeeBps uint16, startTime *time.Time) (*entity.EngineParams, error) {
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
		return nil, errors.Wrap(errs.Unauthorized, "only the engine owner can change the fee")
	}

	fee, err := engineParams.Fee.Schedule(nextFeeBps, startTime, call.Now)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	engineParams.Fee = fee
	if err := qtx.SetEngineParams(ctx, engineParams); err != nil {
		return nil, errors.Wrap(err, "failed to update engine params")
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &engineParams, nil
}

// SetTreasury points the platform fee payout at a new account. Owner-only.
func (p *Processor) SetTreasury(ctx context.Context, call CallContext, treasury editions.AccountID) (*entity.EngineParams, error) {
	if err := treasury.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid treasury account id")
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
	if call.Caller != engineParams.Owner {
		return nil, errors.Wrap(errs.Unauthorized, "only the engine owner can change the treasury")
	}

	engineParams.Treasury = treasury
	if err := qtx.SetEngineParams(ctx, engineParams); err != nil {
		return nil, errors.Wrap(err, "failed to update engine params")
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &engineParams, nil
}

// SetDefaultOgBalance changes the balance granted to allowlist accounts
// added without an explicit balance. Owner-only.
func (p *Processor) SetDefaultOgBalance(ctx context.Context, call CallContext, balance uint32) (*entity.EngineParams, error) {
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
		return nil, errors.Wrap(errs.Unauthorized, "only the engine owner can change the default allowlist balance")
	}

	engineParams.DefaultOgBalance = balance
	if err := qtx.SetEngineParams(ctx, engineParams); err != nil {
		return nil, errors.Wrap(err, "failed to update engine params")
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &engineParams, nil
}

// AddOgAccount adds an account to the allowlist or overwrites its balance.
// Owner-only. A nil balance grants the current default.
func (p *Processor) AddOgAccount(ctx context.Context, call CallContext, accountId editions.AccountID, balance *uint32) (*entity.OgAccount, error) {
	if err := accountId.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid allowlist account id")
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
	if call.Caller != engineParams.Owner {
		return nil, errors.Wrap(errs.Unauthorized, "only the engine owner can manage the allowlist")
	}

	ogAccount := entity.OgAccount{
		AccountID: accountId,
		Balance:   engineParams.DefaultOgBalance,
	}
	if balance != nil {
		ogAccount.Balance = *balance
	}
	if err := qtx.SetOgAccount(ctx, ogAccount); err != nil {
		return nil, errors.Wrap(err, "failed to set allowlist account")
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return &ogAccount, nil
}

// RemoveOgAccount deletes an account from the allowlist. Owner-only and
// idempotent.
func (p *Processor) RemoveOgAccount(ctx context.Context, call CallContext, accountId editions.AccountID) error {
	qtx, err := p.editionsDg.BeginEditionsTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	engineParams, err := p.engineParams(ctx, qtx, call.Now)
	if err != nil {
		return errors.WithStack(err)
	}
	if call.Caller != engineParams.Owner {
		return errors.Wrap(errs.Unauthorized, "only the engine owner can manage the allowlist")
	}

	if err := qtx.DeleteOgAccount(ctx, accountId); err != nil {
		return errors.Wrap(err, "failed to delete allowlist account")
	}

	if err := qtx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}
