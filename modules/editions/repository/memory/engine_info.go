package memory

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

func (r *Repository) GetLatestEngineState(ctx context.Context) (entity.EngineState, error) {
	defer r.rlock()()
	states := r.shared.state.engineStates
	if len(states) == 0 {
		return entity.EngineState{}, errors.WithStack(errs.NotFound)
	}
	return states[len(states)-1], nil
}

func (r *Repository) GetLatestEngineStats(ctx context.Context) (string, common.Network, error) {
	defer r.rlock()()
	if !r.shared.state.hasStats {
		return "", "", errors.WithStack(errs.NotFound)
	}
	return r.shared.state.statsClientVersion, r.shared.state.statsNetwork, nil
}

func (r *Repository) SetEngineState(ctx context.Context, state entity.EngineState) error {
	defer r.lock()()
	state.CreatedAt = time.Now()
	r.shared.state.engineStates = append(r.shared.state.engineStates, state)
	return nil
}

func (r *Repository) UpdateEngineStats(ctx context.Context, clientVersion string, network common.Network) error {
	defer r.lock()()
	r.shared.state.statsClientVersion = clientVersion
	r.shared.state.statsNetwork = network
	r.shared.state.hasStats = true
	return nil
}

func (r *Repository) GetLastArchivedEventId(ctx context.Context) (int64, error) {
	defer r.rlock()()
	if !r.shared.state.hasArchiveCursor {
		return 0, errors.WithStack(errs.NotFound)
	}
	return r.shared.state.lastArchivedEventId, nil
}

func (r *Repository) SetLastArchivedEventId(ctx context.Context, eventId int64) error {
	defer r.lock()()
	r.shared.state.lastArchivedEventId = eventId
	r.shared.state.hasArchiveCursor = true
	return nil
}
