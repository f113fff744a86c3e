package postgres

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

const pendingTransferColumns = `"id", "series_id", "edition", "sender", "previous_owner", "receiver", "prior_approvals", "message", "status", "created_at", "resolved_at"`

func scanPendingTransfer(row pgx.Row) (*entity.PendingTransfer, error) {
	var m pendingTransferModel
	if err := row.Scan(
		&m.Id, &m.SeriesID, &m.Edition, &m.Sender, &m.PreviousOwner, &m.Receiver,
		&m.PriorApprovals, &m.Message, &m.Status, &m.CreatedAt, &m.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return mapPendingTransferModelToType(m)
}

const createPendingTransfer = `-- name: CreatePendingTransfer :one
INSERT INTO editions_pending_transfers ("series_id", "edition", "sender", "previous_owner", "receiver", "prior_approvals", "message", "status", "created_at")
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING "id"`

func (r *Repository) CreatePendingTransfer(ctx context.Context, transfer *entity.PendingTransfer) (int64, error) {
	priorApprovals := transfer.PriorApprovals
	if priorApprovals == nil {
		priorApprovals = make(map[editions.AccountID]uint64)
	}
	priorApprovalsBytes, err := json.Marshal(priorApprovals)
	if err != nil {
		return 0, errors.Wrap(err, "failed to marshal prior approvals")
	}
	var message pgtype.Text
	if transfer.Message != nil {
		message = pgtype.Text{String: *transfer.Message, Valid: true}
	}
	var id int64
	if err := r.q.QueryRow(ctx, createPendingTransfer,
		transfer.InstanceID.SeriesID.String(),
		int64(transfer.InstanceID.Edition),
		transfer.SenderID.String(),
		transfer.PreviousOwner.String(),
		transfer.ReceiverID.String(),
		priorApprovalsBytes,
		message,
		string(transfer.Status),
		timestampFromTime(transfer.CreatedAt),
	).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "error during exec")
	}
	return id, nil
}

const getPendingTransferByID = `-- name: GetPendingTransferByID :one
SELECT ` + pendingTransferColumns + ` FROM editions_pending_transfers WHERE "id" = $1`

func (r *Repository) GetPendingTransferByID(ctx context.Context, id int64) (*entity.PendingTransfer, error) {
	transfer, err := scanPendingTransfer(r.q.QueryRow(ctx, getPendingTransferByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return transfer, nil
}

const getUnresolvedPendingTransfers = `-- name: GetUnresolvedPendingTransfers :many
SELECT ` + pendingTransferColumns + ` FROM editions_pending_transfers WHERE "status" = 'pending' ORDER BY "id" ASC LIMIT $1`

func (r *Repository) GetUnresolvedPendingTransfers(ctx context.Context, limit int32) ([]*entity.PendingTransfer, error) {
	rows, err := r.q.Query(ctx, getUnresolvedPendingTransfers, limit)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	transfers := make([]*entity.PendingTransfer, 0)
	for rows.Next() {
		transfer, err := scanPendingTransfer(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return transfers, nil
}

const resolvePendingTransfer = `-- name: ResolvePendingTransfer :exec
UPDATE editions_pending_transfers SET "status" = $2, "resolved_at" = $3 WHERE "id" = $1`

func (r *Repository) ResolvePendingTransfer(ctx context.Context, params datagateway.ResolvePendingTransferParams) error {
	if _, err := r.q.Exec(ctx, resolvePendingTransfer, params.Id, string(params.Status), timestampFromTime(params.ResolvedAt)); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}
