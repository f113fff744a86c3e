package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

func (r *Repository) GetSeriesByID(ctx context.Context, id editions.SeriesID) (*entity.Series, error) {
	defer r.rlock()()
	series, ok := r.shared.state.series[id]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return cloneSeries(series), nil
}

func (r *Repository) GetSeriesList(ctx context.Context, limit int32, offset int32) ([]*entity.Series, error) {
	defer r.rlock()()
	state := r.shared.state
	list := make([]*entity.Series, 0, len(state.seriesOrder))
	for _, id := range paginate(state.seriesOrder, limit, offset) {
		list = append(list, cloneSeries(state.series[id]))
	}
	return list, nil
}

func (r *Repository) GetSeriesByCreator(ctx context.Context, creator editions.AccountID, limit int32, offset int32) ([]*entity.Series, error) {
	defer r.rlock()()
	state := r.shared.state
	matched := make([]*entity.Series, 0)
	for _, id := range state.seriesOrder {
		if series := state.series[id]; series.Creator == creator {
			matched = append(matched, series)
		}
	}
	list := make([]*entity.Series, 0)
	for _, series := range paginate(matched, limit, offset) {
		list = append(list, cloneSeries(series))
	}
	return list, nil
}

func (r *Repository) CountSeries(ctx context.Context) (uint64, error) {
	defer r.rlock()()
	return uint64(len(r.shared.state.series)), nil
}

func (r *Repository) GetInstanceByID(ctx context.Context, id editions.InstanceID) (*entity.Instance, error) {
	defer r.rlock()()
	instance, ok := r.shared.state.instances[id]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return cloneInstance(instance), nil
}

func (r *Repository) GetInstancesBySeries(ctx context.Context, seriesId editions.SeriesID, limit int32, offset int32) ([]*entity.Instance, error) {
	defer r.rlock()()
	state := r.shared.state
	matched := make([]*entity.Instance, 0)
	for _, id := range state.instanceOrder {
		if id.SeriesID == seriesId {
			matched = append(matched, state.instances[id])
		}
	}
	slices.SortFunc(matched, func(a, b *entity.Instance) int {
		return int(a.ID.Edition) - int(b.ID.Edition)
	})
	list := make([]*entity.Instance, 0)
	for _, instance := range paginate(matched, limit, offset) {
		list = append(list, cloneInstance(instance))
	}
	return list, nil
}

func (r *Repository) GetInstancesByOwner(ctx context.Context, owner editions.AccountID, limit int32, offset int32) ([]*entity.Instance, error) {
	defer r.rlock()()
	state := r.shared.state
	matched := make([]*entity.Instance, 0)
	for _, id := range state.instanceOrder {
		if instance := state.instances[id]; instance.Owner == owner {
			matched = append(matched, instance)
		}
	}
	list := make([]*entity.Instance, 0)
	for _, instance := range paginate(matched, limit, offset) {
		list = append(list, cloneInstance(instance))
	}
	return list, nil
}

func (r *Repository) CountInstances(ctx context.Context) (uint64, error) {
	defer r.rlock()()
	return uint64(len(r.shared.state.instances)), nil
}

func (r *Repository) CountInstancesByOwner(ctx context.Context, owner editions.AccountID) (uint64, error) {
	defer r.rlock()()
	var count uint64
	for _, instance := range r.shared.state.instances {
		if instance.Owner == owner {
			count++
		}
	}
	return count, nil
}

func (r *Repository) GetEngineParams(ctx context.Context) (*entity.EngineParams, error) {
	defer r.rlock()()
	if r.shared.state.params == nil {
		return nil, errors.WithStack(errs.NotFound)
	}
	return cloneParams(r.shared.state.params), nil
}

func (r *Repository) GetDrawPoolState(ctx context.Context) (*entity.DrawPoolState, error) {
	defer r.rlock()()
	if r.shared.state.drawPool == nil {
		return nil, errors.WithStack(errs.NotFound)
	}
	state := *r.shared.state.drawPool
	return &state, nil
}

func (r *Repository) GetDrawPoolSlots(ctx context.Context) (map[uint64]uint64, error) {
	defer r.rlock()()
	slots := make(map[uint64]uint64, len(r.shared.state.drawPoolSlots))
	for slot, value := range r.shared.state.drawPoolSlots {
		slots[slot] = value
	}
	return slots, nil
}

func (r *Repository) GetOgAccount(ctx context.Context, accountId editions.AccountID) (*entity.OgAccount, error) {
	defer r.rlock()()
	account, ok := r.shared.state.ogAccounts[accountId]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return &account, nil
}

func (r *Repository) GetOgAccounts(ctx context.Context) ([]entity.OgAccount, error) {
	defer r.rlock()()
	accounts := make([]entity.OgAccount, 0, len(r.shared.state.ogAccounts))
	for _, account := range r.shared.state.ogAccounts {
		accounts = append(accounts, account)
	}
	slices.SortFunc(accounts, func(a, b entity.OgAccount) int {
		return strings.Compare(a.AccountID.String(), b.AccountID.String())
	})
	return accounts, nil
}

func (r *Repository) GetSellerSaleCount(ctx context.Context, accountId editions.AccountID) (uint64, error) {
	defer r.rlock()()
	return r.shared.state.sellers[accountId], nil
}

func (r *Repository) GetPendingTransferByID(ctx context.Context, id int64) (*entity.PendingTransfer, error) {
	defer r.rlock()()
	transfer, ok := r.shared.state.pendingTransfers[id]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return clonePendingTransfer(transfer), nil
}

func (r *Repository) GetUnresolvedPendingTransfers(ctx context.Context, limit int32) ([]*entity.PendingTransfer, error) {
	defer r.rlock()()
	state := r.shared.state
	transfers := make([]*entity.PendingTransfer, 0)
	for _, id := range state.pendingOrder {
		transfer := state.pendingTransfers[id]
		if transfer.Status != entity.PendingTransferStatusPending {
			continue
		}
		transfers = append(transfers, clonePendingTransfer(transfer))
		if limit >= 0 && int32(len(transfers)) >= limit {
			break
		}
	}
	return transfers, nil
}

func (r *Repository) GetLatestEvent(ctx context.Context) (*entity.Event, error) {
	defer r.rlock()()
	events := r.shared.state.events
	if len(events) == 0 {
		return nil, errors.WithStack(errs.NotFound)
	}
	return cloneEvent(events[len(events)-1]), nil
}

func (r *Repository) GetEventsAfter(ctx context.Context, afterId int64, limit int32) ([]*entity.Event, error) {
	defer r.rlock()()
	events := make([]*entity.Event, 0)
	for _, event := range r.shared.state.events {
		if event.Id <= afterId {
			continue
		}
		events = append(events, cloneEvent(event))
		if limit >= 0 && int32(len(events)) >= limit {
			break
		}
	}
	return events, nil
}

func (r *Repository) CreateSeries(ctx context.Context, series *entity.Series) error {
	defer r.lock()()
	state := r.shared.state
	if _, ok := state.series[series.ID]; ok {
		return errors.Wrapf(errs.DuplicateSeries, "series %q already exists", series.ID)
	}
	state.series[series.ID] = cloneSeries(series)
	state.seriesOrder = append(state.seriesOrder, series.ID)
	return nil
}

func (r *Repository) UpdateSeries(ctx context.Context, series *entity.Series) error {
	defer r.lock()()
	state := r.shared.state
	if _, ok := state.series[series.ID]; !ok {
		return errors.WithStack(errs.NotFound)
	}
	state.series[series.ID] = cloneSeries(series)
	return nil
}

func (r *Repository) CreateInstance(ctx context.Context, instance *entity.Instance) error {
	defer r.lock()()
	state := r.shared.state
	state.instances[instance.ID] = cloneInstance(instance)
	state.instanceOrder = append(state.instanceOrder, instance.ID)
	return nil
}

func (r *Repository) UpdateInstance(ctx context.Context, instance *entity.Instance) error {
	defer r.lock()()
	state := r.shared.state
	if _, ok := state.instances[instance.ID]; !ok {
		return errors.WithStack(errs.NotFound)
	}
	state.instances[instance.ID] = cloneInstance(instance)
	return nil
}

func (r *Repository) DeleteInstance(ctx context.Context, id editions.InstanceID) error {
	defer r.lock()()
	state := r.shared.state
	delete(state.instances, id)
	state.instanceOrder = slices.DeleteFunc(state.instanceOrder, func(other editions.InstanceID) bool {
		return other == id
	})
	return nil
}

func (r *Repository) SetEngineParams(ctx context.Context, params entity.EngineParams) error {
	defer r.lock()()
	params.UpdatedAt = time.Now()
	r.shared.state.params = cloneParams(&params)
	return nil
}

func (r *Repository) SetDrawPoolState(ctx context.Context, state entity.DrawPoolState) error {
	defer r.lock()()
	state.UpdatedAt = time.Now()
	r.shared.state.drawPool = &state
	return nil
}

func (r *Repository) SetDrawPoolSlots(ctx context.Context, slots map[uint64]uint64) error {
	defer r.lock()()
	for slot, value := range slots {
		r.shared.state.drawPoolSlots[slot] = value
	}
	return nil
}

func (r *Repository) DeleteDrawPoolSlots(ctx context.Context, slots []uint64) error {
	defer r.lock()()
	for _, slot := range slots {
		delete(r.shared.state.drawPoolSlots, slot)
	}
	return nil
}

func (r *Repository) SetOgAccount(ctx context.Context, account entity.OgAccount) error {
	defer r.lock()()
	account.UpdatedAt = time.Now()
	r.shared.state.ogAccounts[account.AccountID] = account
	return nil
}

func (r *Repository) DeleteOgAccount(ctx context.Context, accountId editions.AccountID) error {
	defer r.lock()()
	delete(r.shared.state.ogAccounts, accountId)
	return nil
}

func (r *Repository) IncrementSellerSaleCount(ctx context.Context, accountId editions.AccountID) (uint64, error) {
	defer r.lock()()
	r.shared.state.sellers[accountId]++
	return r.shared.state.sellers[accountId], nil
}

func (r *Repository) CreatePendingTransfer(ctx context.Context, transfer *entity.PendingTransfer) (int64, error) {
	defer r.lock()()
	state := r.shared.state
	state.transferIdSeq++
	id := state.transferIdSeq
	stored := clonePendingTransfer(transfer)
	stored.Id = id
	state.pendingTransfers[id] = stored
	state.pendingOrder = append(state.pendingOrder, id)
	return id, nil
}

func (r *Repository) ResolvePendingTransfer(ctx context.Context, params datagateway.ResolvePendingTransferParams) error {
	defer r.lock()()
	state := r.shared.state
	transfer, ok := state.pendingTransfers[params.Id]
	if !ok {
		return errors.WithStack(errs.NotFound)
	}
	resolved := clonePendingTransfer(transfer)
	resolved.Status = params.Status
	resolvedAt := params.ResolvedAt
	resolved.ResolvedAt = &resolvedAt
	state.pendingTransfers[params.Id] = resolved
	return nil
}

func (r *Repository) CreateEvent(ctx context.Context, event *entity.Event) error {
	defer r.lock()()
	state := r.shared.state
	state.eventIdSeq++
	event.Id = state.eventIdSeq
	state.events = append(state.events, cloneEvent(event))
	return nil
}
