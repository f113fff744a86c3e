package processor

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/internal/subscription"
	"github.com/mintforge/edition-engine/modules/editions/config"
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/pkg/logger"
	"github.com/mintforge/edition-engine/pkg/logger/slogx"
)

// CallContext carries the per-call inputs supplied by the outer execution
// context: the already-authenticated caller, the attached value in base
// units, the call clock and the randomness seed for draws.
type CallContext struct {
	Caller   editions.AccountID
	Attached uint128.Uint128
	Now      time.Time
	Seed     []byte
}

type Processor struct {
	editionsDg      datagateway.EditionsDataGateway
	engineInfoDg    datagateway.EngineInfoDataGateway
	network         common.Network
	owner           editions.AccountID
	treasury        editions.AccountID
	storageByteCost uint128.Uint128
	drawPoolSize    uint64
	drawNotices     *subscription.Subscription[entity.DrawNotice]
	approvalNotices *subscription.Subscription[entity.ApprovalNotice]
}

func NewProcessor(editionsDg datagateway.EditionsDataGateway, engineInfoDg datagateway.EngineInfoDataGateway, network common.Network, conf config.Config, drawNotices *subscription.Subscription[entity.DrawNotice], approvalNotices *subscription.Subscription[entity.ApprovalNotice]) (*Processor, error) {
	owner := editions.AccountID(conf.Owner)
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid owner account id")
	}
	treasury := owner
	if conf.Treasury != "" {
		treasury = editions.AccountID(conf.Treasury)
		if err := treasury.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid treasury account id")
		}
	}
	storageByteCost := conf.StorageByteCost
	if storageByteCost == 0 {
		storageByteCost = DefaultStorageByteCost
	}
	return &Processor{
		editionsDg:      editionsDg,
		engineInfoDg:    engineInfoDg,
		network:         network,
		owner:           owner,
		treasury:        treasury,
		storageByteCost: uint128.From64(storageByteCost),
		drawPoolSize:    conf.DrawPoolSize,
		drawNotices:     drawNotices,
		approvalNotices: approvalNotices,
	}, nil
}

// VerifyStates checks engine state validity and seeds first-run state. Must
// be called before processing any command.
func (p *Processor) VerifyStates(ctx context.Context) error {
	if err := p.ensureValidState(ctx); err != nil {
		return errors.Wrap(err, "error during ensureValidState")
	}
	if err := p.ensureEngineParams(ctx); err != nil {
		return errors.Wrap(err, "error during ensureEngineParams")
	}
	if err := p.ensureDrawPool(ctx); err != nil {
		return errors.Wrap(err, "error during ensureDrawPool")
	}
	return nil
}

func (p *Processor) ensureValidState(ctx context.Context) error {
	engineState, err := p.engineInfoDg.GetLatestEngineState(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get latest engine state")
	}
	// if not found, set engine state
	if errors.Is(err, errs.NotFound) {
		if err := p.engineInfoDg.SetEngineState(ctx, entity.EngineState{
			DBVersion:        DBVersion,
			EventHashVersion: EventHashVersion,
		}); err != nil {
			return errors.Wrap(err, "failed to set engine state")
		}
	} else {
		if engineState.DBVersion != DBVersion {
			return errors.Wrapf(errs.ConflictSetting, "db version mismatch: current version is %d. Please migrate to version %d", engineState.DBVersion, DBVersion)
		}
		if engineState.EventHashVersion != EventHashVersion {
			return errors.Wrapf(errs.ConflictSetting, "event hash version mismatch: current version is %d, expected version is %d. Please reset the database", engineState.EventHashVersion, EventHashVersion)
		}
	}

	_, network, err := p.engineInfoDg.GetLatestEngineStats(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get latest engine stats")
	}
	// if found, verify engine stats
	if err == nil {
		if network != p.network {
			return errors.Wrapf(errs.ConflictSetting, "network mismatch: latest network is %q, configured network is %q. If you want to change the network, please reset the database", network, p.network)
		}
	}
	if err := p.engineInfoDg.UpdateEngineStats(ctx, Version, p.network); err != nil {
		return errors.Wrap(err, "failed to update engine stats")
	}
	return nil
}

// ensureEngineParams seeds the singleton params row on first run.
func (p *Processor) ensureEngineParams(ctx context.Context) error {
	_, err := p.editionsDg.GetEngineParams(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get engine params")
	}
	if errors.Is(err, errs.NotFound) {
		if err := p.editionsDg.SetEngineParams(ctx, entity.EngineParams{
			Owner:    p.owner,
			Treasury: p.treasury,
			Fee:      editions.FeeSchedule{CurrentFee: editions.DefaultFeeBps},
		}); err != nil {
			return errors.Wrap(err, "failed to seed engine params")
		}
	}
	return nil
}

// ensureDrawPool seeds the draw pool on first run. A configured size that
// disagrees with the persisted pool is a hard misconfiguration.
func (p *Processor) ensureDrawPool(ctx context.Context) error {
	if p.drawPoolSize == 0 {
		return nil
	}
	poolState, err := p.editionsDg.GetDrawPoolState(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get draw pool state")
	}
	if errors.Is(err, errs.NotFound) {
		if err := p.editionsDg.SetDrawPoolState(ctx, entity.DrawPoolState{
			Size: p.drawPoolSize,
		}); err != nil {
			return errors.Wrap(err, "failed to seed draw pool state")
		}
		return nil
	}
	if poolState.Size != p.drawPoolSize {
		return errors.Wrapf(errs.ConflictSetting, "draw pool size mismatch: persisted pool size is %d, configured size is %d. If you want to change the pool, please reset the database", poolState.Size, p.drawPoolSize)
	}
	return nil
}

// engineParams loads the params row and settles the fee schedule against the
// call clock, persisting a matured fee change so it is applied exactly once.
func (p *Processor) engineParams(ctx context.Context, dg datagateway.EditionsDataGateway, now time.Time) (entity.EngineParams, error) {
	current, err := dg.GetEngineParams(ctx)
	if err != nil {
		return entity.EngineParams{}, errors.Wrap(err, "failed to get engine params")
	}
	params := *current
	settled := params.Fee.Settle(now)
	if params.Fee.IsPending() && !settled.IsPending() {
		params.Fee = settled
		if err := dg.SetEngineParams(ctx, params); err != nil {
			return entity.EngineParams{}, errors.Wrap(err, "failed to persist settled fee schedule")
		}
	}
	params.Fee = settled
	return params, nil
}

func (p *Processor) getSeries(ctx context.Context, dg datagateway.EditionsDataGateway, seriesId editions.SeriesID) (*entity.Series, error) {
	series, err := dg.GetSeriesByID(ctx, seriesId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.Wrapf(errs.NoSuchSeries, "series %q does not exist", seriesId)
		}
		return nil, errors.Wrap(err, "failed to get series")
	}
	return series, nil
}

func (p *Processor) notifyDraw(ctx context.Context, notice entity.DrawNotice) {
	if p.drawNotices == nil {
		return
	}
	if err := p.drawNotices.Send(ctx, notice); err != nil {
		logger.WarnContext(ctx, "Failed to dispatch draw notice",
			slogx.Error(err),
			slogx.Stringer("winnerId", notice.WinnerID),
			slogx.Stringer("instanceId", notice.InstanceID),
		)
	}
}

func (p *Processor) notifyApproval(ctx context.Context, notice entity.ApprovalNotice) {
	if p.approvalNotices == nil {
		return
	}
	if err := p.approvalNotices.Send(ctx, notice); err != nil {
		logger.WarnContext(ctx, "Failed to dispatch approval notice",
			slogx.Error(err),
			slogx.Stringer("approvedId", notice.ApprovedID),
			slogx.Stringer("instanceId", notice.InstanceID),
		)
	}
}
