package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

const seriesColumns = `"id", "creator", "title", "description", "media", "reference", "copies", "extra", "royalty", "price", "fee_bps", "mintable", "minted_count", "created_at", "updated_at"`

func scanSeries(row pgx.Row) (*entity.Series, error) {
	var m seriesModel
	if err := row.Scan(
		&m.ID, &m.Creator, &m.Title, &m.Description, &m.Media, &m.Reference, &m.Copies, &m.Extra,
		&m.Royalty, &m.Price, &m.FeeBps, &m.Mintable, &m.MintedCount, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return mapSeriesModelToType(m)
}

const getSeriesByID = `-- name: GetSeriesByID :one
SELECT ` + seriesColumns + ` FROM editions_series WHERE "id" = $1`

func (r *Repository) GetSeriesByID(ctx context.Context, id editions.SeriesID) (*entity.Series, error) {
	series, err := scanSeries(r.q.QueryRow(ctx, getSeriesByID, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return series, nil
}

const getSeriesList = `-- name: GetSeriesList :many
SELECT ` + seriesColumns + ` FROM editions_series ORDER BY "created_at" ASC, "id" ASC LIMIT NULLIF($1::INT, -1) OFFSET $2`

func (r *Repository) GetSeriesList(ctx context.Context, limit int32, offset int32) ([]*entity.Series, error) {
	rows, err := r.q.Query(ctx, getSeriesList, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	seriesList := make([]*entity.Series, 0)
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		seriesList = append(seriesList, series)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return seriesList, nil
}

const getSeriesByCreator = `-- name: GetSeriesByCreator :many
SELECT ` + seriesColumns + ` FROM editions_series WHERE "creator" = $1 ORDER BY "created_at" ASC, "id" ASC LIMIT NULLIF($2::INT, -1) OFFSET $3`

func (r *Repository) GetSeriesByCreator(ctx context.Context, creator editions.AccountID, limit int32, offset int32) ([]*entity.Series, error) {
	rows, err := r.q.Query(ctx, getSeriesByCreator, creator.String(), limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	seriesList := make([]*entity.Series, 0)
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		seriesList = append(seriesList, series)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return seriesList, nil
}

const countSeries = `-- name: CountSeries :one
SELECT COUNT(*) FROM editions_series`

func (r *Repository) CountSeries(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, countSeries).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "error during query")
	}
	return uint64(count), nil
}

const createSeries = `-- name: CreateSeries :exec
INSERT INTO editions_series ("id", "creator", "title", "description", "media", "reference", "copies", "extra", "royalty", "price", "fee_bps", "mintable", "minted_count", "created_at", "updated_at")
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

func (r *Repository) CreateSeries(ctx context.Context, series *entity.Series) error {
	m, err := mapSeriesTypeToModel(series)
	if err != nil {
		return errors.Wrap(err, "failed to map series")
	}
	if _, err := r.q.Exec(ctx, createSeries,
		m.ID, m.Creator, m.Title, m.Description, m.Media, m.Reference, m.Copies, m.Extra,
		m.Royalty, m.Price, m.FeeBps, m.Mintable, m.MintedCount, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

const updateSeries = `-- name: UpdateSeries :exec
UPDATE editions_series SET "title" = $2, "description" = $3, "media" = $4, "reference" = $5, "copies" = $6, "extra" = $7, "royalty" = $8, "price" = $9, "fee_bps" = $10, "mintable" = $11, "minted_count" = $12, "updated_at" = $13
WHERE "id" = $1`

func (r *Repository) UpdateSeries(ctx context.Context, series *entity.Series) error {
	m, err := mapSeriesTypeToModel(series)
	if err != nil {
		return errors.Wrap(err, "failed to map series")
	}
	if _, err := r.q.Exec(ctx, updateSeries,
		m.ID, m.Title, m.Description, m.Media, m.Reference, m.Copies, m.Extra,
		m.Royalty, m.Price, m.FeeBps, m.Mintable, m.MintedCount, m.UpdatedAt,
	); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}
