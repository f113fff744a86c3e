package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

const getLatestEngineState = `-- name: GetLatestEngineState :one
SELECT "db_version", "event_hash_version", "created_at" FROM editions_engine_states ORDER BY "id" DESC LIMIT 1`

func (r *Repository) GetLatestEngineState(ctx context.Context) (entity.EngineState, error) {
	var (
		dbVersion        int32
		eventHashVersion int32
		createdAt        pgtype.Timestamp
	)
	if err := r.q.QueryRow(ctx, getLatestEngineState).Scan(&dbVersion, &eventHashVersion, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.EngineState{}, errors.WithStack(errs.NotFound)
		}
		return entity.EngineState{}, errors.Wrap(err, "error during query")
	}
	return entity.EngineState{
		DBVersion:        dbVersion,
		EventHashVersion: eventHashVersion,
		CreatedAt:        timeFromTimestamp(createdAt),
	}, nil
}

const getLatestEngineStats = `-- name: GetLatestEngineStats :one
SELECT "client_version", "network" FROM editions_engine_stats WHERE "id" = TRUE`

func (r *Repository) GetLatestEngineStats(ctx context.Context) (string, common.Network, error) {
	var (
		clientVersion string
		network       string
	)
	if err := r.q.QueryRow(ctx, getLatestEngineStats).Scan(&clientVersion, &network); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", errors.WithStack(errs.NotFound)
		}
		return "", "", errors.Wrap(err, "error during query")
	}
	return clientVersion, common.Network(network), nil
}

const setEngineState = `-- name: SetEngineState :exec
INSERT INTO editions_engine_states ("db_version", "event_hash_version") VALUES ($1, $2)`

func (r *Repository) SetEngineState(ctx context.Context, state entity.EngineState) error {
	if _, err := r.q.Exec(ctx, setEngineState, state.DBVersion, state.EventHashVersion); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

const updateEngineStats = `-- name: UpdateEngineStats :exec
INSERT INTO editions_engine_stats ("id", "client_version", "network", "updated_at") VALUES (TRUE, $1, $2, NOW())
ON CONFLICT ("id") DO UPDATE SET "client_version" = $1, "network" = $2, "updated_at" = NOW()`

func (r *Repository) UpdateEngineStats(ctx context.Context, clientVersion string, network common.Network) error {
	if _, err := r.q.Exec(ctx, updateEngineStats, clientVersion, string(network)); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

const getLastArchivedEventId = `-- name: GetLastArchivedEventId :one
SELECT "last_event_id" FROM editions_archive_state WHERE "id" = TRUE`

func (r *Repository) GetLastArchivedEventId(ctx context.Context) (int64, error) {
	var lastEventId int64
	if err := r.q.QueryRow(ctx, getLastArchivedEventId).Scan(&lastEventId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errors.WithStack(errs.NotFound)
		}
		return 0, errors.Wrap(err, "error during query")
	}
	return lastEventId, nil
}

const setLastArchivedEventId = `-- name: SetLastArchivedEventId :exec
INSERT INTO editions_archive_state ("id", "last_event_id", "updated_at") VALUES (TRUE, $1, NOW())
ON CONFLICT ("id") DO UPDATE SET "last_event_id" = $1, "updated_at" = NOW()`

func (r *Repository) SetLastArchivedEventId(ctx context.Context, eventId int64) error {
	if _, err := r.q.Exec(ctx, setLastArchivedEventId, eventId); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}
