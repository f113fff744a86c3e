package datagateway

import (
	"context"

	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

type EngineInfoDataGateway interface {
	GetLatestEngineState(ctx context.Context) (entity.EngineState, error)
	GetLatestEngineStats(ctx context.Context) (version string, network common.Network, err error)
	SetEngineState(ctx context.Context, state entity.EngineState) error
	UpdateEngineStats(ctx context.Context, clientVersion string, network common.Network) error

	// GetLastArchivedEventId returns the id of the newest event already drained
	// to the archive. Returns errs.NotFound before the first upload.
	GetLastArchivedEventId(ctx context.Context) (int64, error)
	SetLastArchivedEventId(ctx context.Context, eventId int64) error
}
