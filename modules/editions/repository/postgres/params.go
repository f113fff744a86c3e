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

const getEngineParams = `-- name: GetEngineParams :one
SELECT "owner", "treasury", "current_fee_bps", "next_fee_bps", "fee_start_time", "default_og_balance", "total_minted", "updated_at" FROM editions_engine_params WHERE "id" = TRUE`

func (r *Repository) GetEngineParams(ctx context.Context) (*entity.EngineParams, error) {
	var (
		owner            string
		treasury         string
		currentFeeBps    int16
		nextFeeBps       pgtype.Int2
		feeStartTime     pgtype.Timestamp
		defaultOgBalance int32
		totalMinted      int64
		updatedAt        pgtype.Timestamp
	)
	if err := r.q.QueryRow(ctx, getEngineParams).Scan(&owner, &treasury, &currentFeeBps, &nextFeeBps, &feeStartTime, &defaultOgBalance, &totalMinted, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	fee := editions.FeeSchedule{CurrentFee: uint16(currentFeeBps)}
	if nextFeeBps.Valid {
		next := uint16(nextFeeBps.Int16)
		fee.NextFee = &next
		fee.StartTime = timePtrFromTimestamp(feeStartTime)
	}
	return &entity.EngineParams{
		Owner:            editions.AccountID(owner),
		Treasury:         editions.AccountID(treasury),
		Fee:              fee,
		DefaultOgBalance: uint32(defaultOgBalance),
		TotalMinted:      uint64(totalMinted),
		UpdatedAt:        timeFromTimestamp(updatedAt),
	}, nil
}

const setEngineParams = `-- name: SetEngineParams :exec
INSERT INTO editions_engine_params ("id", "owner", "treasury", "current_fee_bps", "next_fee_bps", "fee_start_time", "default_og_balance", "total_minted", "updated_at")
VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT ("id") DO UPDATE SET "owner" = $1, "treasury" = $2, "current_fee_bps" = $3, "next_fee_bps" = $4, "fee_start_time" = $5, "default_og_balance" = $6, "total_minted" = $7, "updated_at" = NOW()`

func (r *Repository) SetEngineParams(ctx context.Context, params entity.EngineParams) error {
	var nextFeeBps pgtype.Int2
	if params.Fee.NextFee != nil {
		nextFeeBps = pgtype.Int2{Int16: int16(*params.Fee.NextFee), Valid: true}
	}
	if _, err := r.q.Exec(ctx, setEngineParams,
		params.Owner.String(),
		params.Treasury.String(),
		int16(params.Fee.CurrentFee),
		nextFeeBps,
		timestampFromTimePtr(params.Fee.StartTime),
		int32(params.DefaultOgBalance),
		int64(params.TotalMinted),
	); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

const getDrawPoolState = `-- name: GetDrawPoolState :one
SELECT "size", "drawn", "updated_at" FROM editions_draw_pool WHERE "id" = TRUE`

func (r *Repository) GetDrawPoolState(ctx context.Context) (*entity.DrawPoolState, error) {
	var (
		size      int64
		drawn     int64
		updatedAt pgtype.Timestamp
	)
	if err := r.q.QueryRow(ctx, getDrawPoolState).Scan(&size, &drawn, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return &entity.DrawPoolState{
		Size:      uint64(size),
		Drawn:     uint64(drawn),
		UpdatedAt: timeFromTimestamp(updatedAt),
	}, nil
}

const setDrawPoolState = `-- name: SetDrawPoolState :exec
INSERT INTO editions_draw_pool ("id", "size", "drawn", "updated_at") VALUES (TRUE, $1, $2, NOW())
ON CONFLICT ("id") DO UPDATE SET "size" = $1, "drawn" = $2, "updated_at" = NOW()`

func (r *Repository) SetDrawPoolState(ctx context.Context, state entity.DrawPoolState) error {
	if _, err := r.q.Exec(ctx, setDrawPoolState, int64(state.Size), int64(state.Drawn)); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

const getDrawPoolSlots = `-- name: GetDrawPoolSlots :many
SELECT "slot", "value" FROM editions_draw_pool_slots`

func (r *Repository) GetDrawPoolSlots(ctx context.Context) (map[uint64]uint64, error) {
	rows, err := r.q.Query(ctx, getDrawPoolSlots)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	slots := make(map[uint64]uint64)
	for rows.Next() {
		var slot, value int64
		if err := rows.Scan(&slot, &value); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		slots[uint64(slot)] = uint64(value)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return slots, nil
}

const setDrawPoolSlot = `-- name: SetDrawPoolSlot :exec
INSERT INTO editions_draw_pool_slots ("slot", "value") VALUES ($1, $2)
ON CONFLICT ("slot") DO UPDATE SET "value" = $2`

func (r *Repository) SetDrawPoolSlots(ctx context.Context, slots map[uint64]uint64) error {
	for slot, value := range slots {
		if _, err := r.q.Exec(ctx, setDrawPoolSlot, int64(slot), int64(value)); err != nil {
			return errors.Wrap(err, "error during exec")
		}
	}
	return nil
}

const deleteDrawPoolSlots = `-- name: DeleteDrawPoolSlots :exec
DELETE FROM editions_draw_pool_slots WHERE "slot" = ANY($1::BIGINT[])`

func (r *Repository) DeleteDrawPoolSlots(ctx context.Context, slots []uint64) error {
	if len(slots) == 0 {
		return nil
	}
	args := make([]int64, 0, len(slots))
	for _, slot := range slots {
		args = append(args, int64(slot))
	}
	if _, err := r.q.Exec(ctx, deleteDrawPoolSlots, args); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}
