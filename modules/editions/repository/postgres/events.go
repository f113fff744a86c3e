package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

const eventColumns = `"id", "action", "actor", "series_id", "instance_id", "payload", "hash", "cumulative_hash", "created_at"`

func scanEvent(row pgx.Row) (*entity.Event, error) {
	var m eventModel
	if err := row.Scan(&m.Id, &m.Action, &m.Actor, &m.SeriesID, &m.InstanceID, &m.Payload, &m.Hash, &m.CumulativeHash, &m.CreatedAt); err != nil {
		return nil, err
	}
	return mapEventModelToType(m)
}

const createEvent = `-- name: CreateEvent :one
INSERT INTO editions_events ("action", "actor", "series_id", "instance_id", "payload", "hash", "cumulative_hash", "created_at")
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING "id"`

func (r *Repository) CreateEvent(ctx context.Context, event *entity.Event) error {
	m := mapEventTypeToModel(event)
	if err := r.q.QueryRow(ctx, createEvent,
		m.Action, m.Actor, m.SeriesID, m.InstanceID, m.Payload, m.Hash, m.CumulativeHash, m.CreatedAt,
	).Scan(&event.Id); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

const getLatestEvent = `-- name: GetLatestEvent :one
SELECT ` + eventColumns + ` FROM editions_events ORDER BY "id" DESC LIMIT 1`

func (r *Repository) GetLatestEvent(ctx context.Context) (*entity.Event, error) {
	event, err := scanEvent(r.q.QueryRow(ctx, getLatestEvent))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return event, nil
}

const getEventsAfter = `-- name: GetEventsAfter :many
SELECT ` + eventColumns + ` FROM editions_events WHERE "id" > $1 ORDER BY "id" ASC LIMIT $2`

func (r *Repository) GetEventsAfter(ctx context.Context, afterId int64, limit int32) ([]*entity.Event, error) {
	rows, err := r.q.Query(ctx, getEventsAfter, afterId, limit)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	events := make([]*entity.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iteration")
	}
	return events, nil
}
