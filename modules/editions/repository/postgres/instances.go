package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

const instanceColumns = `"series_id", "edition", "owner", "approvals", "next_approval_id", "issued_at"`

func scanInstance(row pgx.Row) (*entity.Instance, error) {
	var m instanceModel
	if err := row.Scan(&m.SeriesID, &m.Edition, &m.Owner, &m.Approvals, &m.NextApprovalID, &m.IssuedAt); err != nil {
		return nil, err
	}
	return mapInstanceModelToType(m)
}

const getInstanceByID = `-- name: GetInstanceByID :one
SELECT ` + instanceColumns + ` FROM editions_instances WHERE "series_id" = $1 AND "edition" = $2`

func (r *Repository) GetInstanceByID(ctx context.Context, id editions.InstanceID) (*entity.Instance, error) {
	instance, err := scanInstance(r.q.QueryRow(ctx, getInstanceByID, id.SeriesID.String(), int64(id.Edition)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return instance, nil
}

const getInstancesBySeries = `-- name: GetInstancesBySeries :many
SELECT ` + instanceColumns + ` FROM editions_instances WHERE "series_id" = $1 ORDER BY "edition" ASC LIMIT NULLIF($2::INT, -1) OFFSET $3`

func (r *Repository) GetInstancesBySeries(ctx context.Context, seriesId editions.SeriesID, limit int32, offset int32) ([]*entity.Instance, error) {
	rows, err := r.q.Query(ctx, getInstancesBySeries, seriesId.String(), limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	instances := make([]*entity.Instance, 0)
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		instances = append(instances, instance)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return instances, nil
}

const getInstancesByOwner = `-- name: GetInstancesByOwner :many
SELECT ` + instanceColumns + ` FROM editions_instances WHERE "owner" = $1 ORDER BY "issued_at" ASC, "series_id" ASC, "edition" ASC LIMIT NULLIF($2::INT, -1) OFFSET $3`

func (r *Repository) GetInstancesByOwner(ctx context.Context, owner editions.AccountID, limit int32, offset int32) ([]*entity.Instance, error) {
	rows, err := r.q.Query(ctx, getInstancesByOwner, owner.String(), limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	instances := make([]*entity.Instance, 0)
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		instances = append(instances, instance)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return instances, nil
}

const countInstances = `-- name: CountInstances :one
SELECT COUNT(*) FROM editions_instances`

func (r *Repository) CountInstances(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, countInstances).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "error during query")
	}
	return uint64(count), nil
}

const countInstancesByOwner = `-- name: CountInstancesByOwner :one
SELECT COUNT(*) FROM editions_instances WHERE "owner" = $1`

func (r *Repository) CountInstancesByOwner(ctx context.Context, owner editions.AccountID) (uint64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, countInstancesByOwner, owner.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "error during query")
	}
	return uint64(count), nil
}

const createInstance = `-- name: CreateInstance :exec
INSERT INTO editions_instances ("series_id", "edition", "owner", "approvals", "next_approval_id", "issued_at")
VALUES ($1, $2, $3, $4, $5, $6)`

func (r *Repository) CreateInstance(ctx context.Context, instance *entity.Instance) error {
	m, err := mapInstanceTypeToModel(instance)
	if err != nil {
		return errors.Wrap(err, "failed to map instance")
	}
	if _, err := r.q.Exec(ctx, createInstance, m.SeriesID, m.Edition, m.Owner, m.Approvals, m.NextApprovalID, m.IssuedAt); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

const updateInstance = `-- name: UpdateInstance :exec
UPDATE editions_instances SET "owner" = $3, "approvals" = $4, "next_approval_id" = $5 WHERE "series_id" = $1 AND "edition" = $2`

func (r *Repository) UpdateInstance(ctx context.Context, instance *entity.Instance) error {
	m, err := mapInstanceTypeToModel(instance)
	if err != nil {
		return errors.Wrap(err, "failed to map instance")
	}
	if _, err := r.q.Exec(ctx, updateInstance, m.SeriesID, m.Edition, m.Owner, m.Approvals, m.NextApprovalID); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

const deleteInstance = `-- name: DeleteInstance :exec
DELETE FROM editions_instances WHERE "series_id" = $1 AND "edition" = $2`

func (r *Repository) DeleteInstance(ctx context.Context, id editions.InstanceID) error {
	if _, err := r.q.Exec(ctx, deleteInstance, id.SeriesID.String(), int64(id.Edition)); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}
