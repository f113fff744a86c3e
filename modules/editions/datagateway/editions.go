package datagateway

import (
	"context"
	"time"

	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

type EditionsDataGateway interface {
	EditionsReaderDataGateway
	EditionsWriterDataGateway

	// BeginEditionsTx returns a new EditionsDataGateway with transaction enabled. All write operations performed in this datagateway must be committed to persist changes.
	BeginEditionsTx(ctx context.Context) (EditionsDataGatewayWithTx, error)
}

type EditionsDataGatewayWithTx interface {
	EditionsDataGateway
	Tx
}

type EditionsReaderDataGateway interface {
	// GetSeriesByID returns the series for the given id. Returns errs.NotFound if the series is not found.
	GetSeriesByID(ctx context.Context, id editions.SeriesID) (*entity.Series, error)
	// GetSeriesList returns series ordered by creation. Use limit = -1 as no limit.
	GetSeriesList(ctx context.Context, limit int32, offset int32) ([]*entity.Series, error)
	GetSeriesByCreator(ctx context.Context, creator editions.AccountID, limit int32, offset int32) ([]*entity.Series, error)
	CountSeries(ctx context.Context) (uint64, error)

	// GetInstanceByID returns the instance for the given id. Returns errs.NotFound if the instance is not found.
	GetInstanceByID(ctx context.Context, id editions.InstanceID) (*entity.Instance, error)
	GetInstancesBySeries(ctx context.Context, seriesId editions.SeriesID, limit int32, offset int32) ([]*entity.Instance, error)
	GetInstancesByOwner(ctx context.Context, owner editions.AccountID, limit int32, offset int32) ([]*entity.Instance, error)
	// CountInstances returns the number of live instances. Burns decrease it.
	CountInstances(ctx context.Context) (uint64, error)
	CountInstancesByOwner(ctx context.Context, owner editions.AccountID) (uint64, error)

	// GetEngineParams returns the singleton params row. Returns errs.NotFound before the first run seeded it.
	GetEngineParams(ctx context.Context) (*entity.EngineParams, error)

	// GetDrawPoolState returns the persisted sampler position. Returns errs.NotFound if the pool was never seeded.
	GetDrawPoolState(ctx context.Context) (*entity.DrawPoolState, error)
	GetDrawPoolSlots(ctx context.Context) (map[uint64]uint64, error)

	// GetOgAccount returns errs.NotFound if the account is not allowlisted.
	GetOgAccount(ctx context.Context, accountId editions.AccountID) (*entity.OgAccount, error)
	GetOgAccounts(ctx context.Context) ([]entity.OgAccount, error)
	// GetSellerSaleCount returns 0 for accounts that never sold.
	GetSellerSaleCount(ctx context.Context, accountId editions.AccountID) (uint64, error)

	// GetPendingTransferByID returns errs.NotFound if the id is unknown.
	GetPendingTransferByID(ctx context.Context, id int64) (*entity.PendingTransfer, error)
	// GetUnresolvedPendingTransfers returns transfers still awaiting resolution, oldest first.
	GetUnresolvedPendingTransfers(ctx context.Context, limit int32) ([]*entity.PendingTransfer, error)

	// GetLatestEvent returns the newest event for hash chaining. Returns errs.NotFound on an empty log.
	GetLatestEvent(ctx context.Context) (*entity.Event, error)
	// GetEventsAfter returns up to limit events with id greater than afterId, oldest first.
	GetEventsAfter(ctx context.Context, afterId int64, limit int32) ([]*entity.Event, error)
}

type EditionsWriterDataGateway interface {
	CreateSeries(ctx context.Context, series *entity.Series) error
	// UpdateSeries overwrites the mutable columns: metadata, price, fee snapshot, mintable flag, minted count.
	UpdateSeries(ctx context.Context, series *entity.Series) error

	CreateInstance(ctx context.Context, instance *entity.Instance) error
	// UpdateInstance overwrites owner and approval state.
	UpdateInstance(ctx context.Context, instance *entity.Instance) error
	DeleteInstance(ctx context.Context, id editions.InstanceID) error

	SetEngineParams(ctx context.Context, params entity.EngineParams) error

	SetDrawPoolState(ctx context.Context, state entity.DrawPoolState) error
	SetDrawPoolSlots(ctx context.Context, slots map[uint64]uint64) error
	DeleteDrawPoolSlots(ctx context.Context, slots []uint64) error

	SetOgAccount(ctx context.Context, account entity.OgAccount) error
	DeleteOgAccount(ctx context.Context, accountId editions.AccountID) error
	// IncrementSellerSaleCount bumps the per-account sale counter and returns the new count.
	IncrementSellerSaleCount(ctx context.Context, accountId editions.AccountID) (uint64, error)

	// CreatePendingTransfer returns the assigned transfer id.
	CreatePendingTransfer(ctx context.Context, transfer *entity.PendingTransfer) (int64, error)
	ResolvePendingTransfer(ctx context.Context, params ResolvePendingTransferParams) error

	CreateEvent(ctx context.Context, event *entity.Event) error
}

type ResolvePendingTransferParams struct {
	Id         int64
	Status     entity.PendingTransferStatus
	ResolvedAt time.Time
}
