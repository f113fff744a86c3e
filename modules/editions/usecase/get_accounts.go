package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

// GetOgAccount returns the allowlist entry, or nil if the account is not
// allowlisted.
func (u *Usecase) GetOgAccount(ctx context.Context, accountId editions.AccountID) (*entity.OgAccount, error) {
	account, err := u.editionsDg.GetOgAccount(ctx, accountId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "error during GetOgAccount")
	}
	return account, nil
}

func (u *Usecase) GetOgAccounts(ctx context.Context) ([]entity.OgAccount, error) {
	accounts, err := u.editionsDg.GetOgAccounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetOgAccounts")
	}
	return accounts, nil
}

// GetSellerSaleCount returns the number of completed transfer-with-payout
// sales of the account. Zero for accounts that never sold.
func (u *Usecase) GetSellerSaleCount(ctx context.Context, accountId editions.AccountID) (uint64, error) {
	count, err := u.editionsDg.GetSellerSaleCount(ctx, accountId)
	if err != nil {
		return 0, errors.Wrap(err, "error during GetSellerSaleCount")
	}
	return count, nil
}

func (u *Usecase) GetPendingTransferByID(ctx context.Context, id int64) (*entity.PendingTransfer, error) {
	transfer, err := u.editionsDg.GetPendingTransferByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetPendingTransferByID")
	}
	return transfer, nil
}
