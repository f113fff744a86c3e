package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

const getOgAccount = `-- name: GetOgAccount :one
SELECT "account_id", "balance", "updated_at" FROM editions_og_accounts WHERE "account_id" = $1`

func (r *Repository) GetOgAccount(ctx context.Context, accountId editions.AccountID) (*entity.OgAccount, error) {
	var (
		account   string
		balance   int32
		updatedAt pgtype.Timestamp
	)
	if err := r.q.QueryRow(ctx, getOgAccount, accountId.String()).Scan(&account, &balance, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return &entity.OgAccount{
		AccountID: editions.AccountID(account),
		Balance:   uint32(balance),
		UpdatedAt: timeFromTimestamp(updatedAt),
	}, nil
}

const getOgAccounts = `-- name: GetOgAccounts :many
SELECT "account_id", "balance", "updated_at" FROM editions_og_accounts ORDER BY "account_id" ASC`

func (r *Repository) GetOgAccounts(ctx context.Context) ([]entity.OgAccount, error) {
	rows, err := r.q.Query(ctx, getOgAccounts)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	accounts := make([]entity.OgAccount, 0)
	for rows.Next() {
		var (
			account   string
			balance   int32
			updatedAt pgtype.Timestamp
		)
		if err := rows.Scan(&account, &balance, &updatedAt); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		accounts = append(accounts, entity.OgAccount{
			AccountID: editions.AccountID(account),
			Balance:   uint32(balance),
			UpdatedAt: timeFromTimestamp(updatedAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return accounts, nil
}

const setOgAccount = `-- name: SetOgAccount :exec
INSERT INTO editions_og_accounts ("account_id", "balance", "updated_at") VALUES ($1, $2, NOW())
ON CONFLICT ("account_id") DO UPDATE SET "balance" = $2, "updated_at" = NOW()`

func (r *Repository) SetOgAccount(ctx context.Context, account entity.OgAccount) error {
	if _, err := r.q.Exec(ctx, setOgAccount, account.AccountID.String(), int32(account.Balance)); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

const deleteOgAccount = `-- name: DeleteOgAccount :exec
DELETE FROM editions_og_accounts WHERE "account_id" = $1`

func (r *Repository) DeleteOgAccount(ctx context.Context, accountId editions.AccountID) error {
	if _, err := r.q.Exec(ctx, deleteOgAccount, accountId.String()); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

const getSellerSaleCount = `-- name: GetSellerSaleCount :one
SELECT "sale_count" FROM editions_sellers WHERE "account_id" = $1`

func (r *Repository) GetSellerSaleCount(ctx context.Context, accountId editions.AccountID) (uint64, error) {
	var saleCount int64
	if err := r.q.QueryRow(ctx, getSellerSaleCount, accountId.String()).Scan(&saleCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "error during query")
	}
	return uint64(saleCount), nil
}

const incrementSellerSaleCount = `-- name: IncrementSellerSaleCount :one
INSERT INTO editions_sellers ("account_id", "sale_count", "updated_at") VALUES ($1, 1, NOW())
ON CONFLICT ("account_id") DO UPDATE SET "sale_count" = editions_sellers."sale_count" + 1, "updated_at" = NOW()
RETURNING "sale_count"`

func (r *Repository) IncrementSellerSaleCount(ctx context.Context, accountId editions.AccountID) (uint64, error) {
	var saleCount int64
	if err := r.q.QueryRow(ctx, incrementSellerSaleCount, accountId.String()).Scan(&saleCount); err != nil {
		return 0, errors.Wrap(err, "error during exec")
	}
	return uint64(saleCount), nil
}
