package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

// Make sure Repository implements the datagateway interfaces.
var (
	_ datagateway.EditionsDataGateway       = (*Repository)(nil)
	_ datagateway.EditionsDataGatewayWithTx = (*Repository)(nil)
	_ datagateway.EngineInfoDataGateway     = (*Repository)(nil)
)

// store holds all engine state in plain maps. Writers always replace stored
// values with fresh copies, so a snapshot only needs to copy the containers.
type store struct {
	series        map[editions.SeriesID]*entity.Series
	seriesOrder   []editions.SeriesID
	instances     map[editions.InstanceID]*entity.Instance
	instanceOrder []editions.InstanceID

	params *entity.EngineParams

	drawPool      *entity.DrawPoolState
	drawPoolSlots map[uint64]uint64

	ogAccounts map[editions.AccountID]entity.OgAccount
	sellers    map[editions.AccountID]uint64

	pendingTransfers map[int64]*entity.PendingTransfer
	pendingOrder     []int64
	transferIdSeq    int64

	events     []*entity.Event
	eventIdSeq int64

	engineStates        []entity.EngineState
	statsClientVersion  string
	statsNetwork        common.Network
	hasStats            bool
	lastArchivedEventId int64
	hasArchiveCursor    bool
}

func newStore() *store {
	return &store{
		series:           make(map[editions.SeriesID]*entity.Series),
		instances:        make(map[editions.InstanceID]*entity.Instance),
		drawPoolSlots:    make(map[uint64]uint64),
		ogAccounts:       make(map[editions.AccountID]entity.OgAccount),
		sellers:          make(map[editions.AccountID]uint64),
		pendingTransfers: make(map[int64]*entity.PendingTransfer),
	}
}

// snapshot shallow-copies every container. Stored values are never mutated in
// place, so sharing them between the snapshot and the live store is safe.
func (s *store) snapshot() *store {
	clone := &store{
		series:              make(map[editions.SeriesID]*entity.Series, len(s.series)),
		seriesOrder:         append([]editions.SeriesID(nil), s.seriesOrder...),
		instances:           make(map[editions.InstanceID]*entity.Instance, len(s.instances)),
		instanceOrder:       append([]editions.InstanceID(nil), s.instanceOrder...),
		params:              s.params,
		drawPool:            s.drawPool,
		drawPoolSlots:       make(map[uint64]uint64, len(s.drawPoolSlots)),
		ogAccounts:          make(map[editions.AccountID]entity.OgAccount, len(s.ogAccounts)),
		sellers:             make(map[editions.AccountID]uint64, len(s.sellers)),
		pendingTransfers:    make(map[int64]*entity.PendingTransfer, len(s.pendingTransfers)),
		pendingOrder:        append([]int64(nil), s.pendingOrder...),
		transferIdSeq:       s.transferIdSeq,
		events:              append([]*entity.Event(nil), s.events...),
		eventIdSeq:          s.eventIdSeq,
		engineStates:        append([]entity.EngineState(nil), s.engineStates...),
		statsClientVersion:  s.statsClientVersion,
		statsNetwork:        s.statsNetwork,
		hasStats:            s.hasStats,
		lastArchivedEventId: s.lastArchivedEventId,
		hasArchiveCursor:    s.hasArchiveCursor,
	}
	for id, series := range s.series {
		clone.series[id] = series
	}
	for id, instance := range s.instances {
		clone.instances[id] = instance
	}
	for slot, value := range s.drawPoolSlots {
		clone.drawPoolSlots[slot] = value
	}
	for id, account := range s.ogAccounts {
		clone.ogAccounts[id] = account
	}
	for id, count := range s.sellers {
		clone.sellers[id] = count
	}
	for id, transfer := range s.pendingTransfers {
		clone.pendingTransfers[id] = transfer
	}
	return clone
}

type shared struct {
	mu    sync.RWMutex
	state *store
}

// Repository is an in-memory datagateway. Processor tests run against it
// instead of a live database; it also backs the `memory` database setting.
type Repository struct {
	shared *shared

	// tx marks a Repository returned by BeginEditionsTx. It holds the shared
	// write lock until Commit or Rollback; backup restores the pre-tx state
	// on Rollback.
	tx     bool
	done   bool
	backup *store
}

func NewRepository() *Repository {
	return &Repository{
		shared: &shared{state: newStore()},
	}
}

func (r *Repository) BeginEditionsTx(ctx context.Context) (datagateway.EditionsDataGatewayWithTx, error) {
	if r.tx {
		return nil, errors.WithStack(errors.New("transaction already exists"))
	}
	r.shared.mu.Lock()
	return &Repository{
		shared: r.shared,
		tx:     true,
		backup: r.shared.state.snapshot(),
	}, nil
}

// Commit keeps all writes performed through this Repository and releases the
// store. This is a no-op if the transaction is already closed.
func (r *Repository) Commit(ctx context.Context) error {
	if !r.tx || r.done {
		return nil
	}
	r.done = true
	r.backup = nil
	r.shared.mu.Unlock()
	return nil
}

// Rollback restores the pre-transaction state and releases the store. This is
// a no-op if the transaction is already closed.
func (r *Repository) Rollback(ctx context.Context) error {
	if !r.tx || r.done {
		return nil
	}
	r.done = true
	r.shared.state = r.backup
	r.backup = nil
	r.shared.mu.Unlock()
	return nil
}

// rlock guards reads on a non-tx Repository. A tx Repository already holds
// the write lock.
func (r *Repository) rlock() func() {
	if r.tx {
		return func() {}
	}
	r.shared.mu.RLock()
	return r.shared.mu.RUnlock
}

func (r *Repository) lock() func() {
	if r.tx {
		return func() {}
	}
	r.shared.mu.Lock()
	return r.shared.mu.Unlock
}

func cloneSeries(series *entity.Series) *entity.Series {
	clone := *series
	if series.Metadata.Copies != nil {
		copies := *series.Metadata.Copies
		clone.Metadata.Copies = &copies
	}
	if series.Royalty != nil {
		clone.Royalty = make(editions.RoyaltyMap, len(series.Royalty))
		for account, bps := range series.Royalty {
			clone.Royalty[account] = bps
		}
	}
	if series.Price != nil {
		price := *series.Price
		clone.Price = &price
	}
	if series.FeeBps != nil {
		feeBps := *series.FeeBps
		clone.FeeBps = &feeBps
	}
	return &clone
}

func cloneInstance(instance *entity.Instance) *entity.Instance {
	clone := *instance
	clone.Approvals = make(map[editions.AccountID]uint64, len(instance.Approvals))
	for account, approvalId := range instance.Approvals {
		clone.Approvals[account] = approvalId
	}
	return &clone
}

func cloneParams(params *entity.EngineParams) *entity.EngineParams {
	clone := *params
	if params.Fee.NextFee != nil {
		nextFee := *params.Fee.NextFee
		clone.Fee.NextFee = &nextFee
	}
	if params.Fee.StartTime != nil {
		startTime := *params.Fee.StartTime
		clone.Fee.StartTime = &startTime
	}
	return &clone
}

func clonePendingTransfer(transfer *entity.PendingTransfer) *entity.PendingTransfer {
	clone := *transfer
	clone.PriorApprovals = make(map[editions.AccountID]uint64, len(transfer.PriorApprovals))
	for account, approvalId := range transfer.PriorApprovals {
		clone.PriorApprovals[account] = approvalId
	}
	if transfer.Message != nil {
		message := *transfer.Message
		clone.Message = &message
	}
	if transfer.ResolvedAt != nil {
		resolvedAt := *transfer.ResolvedAt
		clone.ResolvedAt = &resolvedAt
	}
	return &clone
}

func cloneEvent(event *entity.Event) *entity.Event {
	clone := *event
	clone.Payload = append(json.RawMessage(nil), event.Payload...)
	if event.SeriesID != nil {
		seriesId := *event.SeriesID
		clone.SeriesID = &seriesId
	}
	if event.InstanceID != nil {
		instanceId := *event.InstanceID
		clone.InstanceID = &instanceId
	}
	return &clone
}

// paginate applies limit/offset with limit = -1 meaning no limit.
func paginate[T any](items []T, limit int32, offset int32) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= int32(len(items)) {
		return []T{}
	}
	items = items[offset:]
	if limit >= 0 && int32(len(items)) > limit {
		items = items[:limit]
	}
	return items
}
