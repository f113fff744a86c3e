package processor

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/core/indexer"
	"github.com/mintforge/edition-engine/internal/subscription"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/pkg/logger"
	"github.com/mintforge/edition-engine/pkg/logger/slogx"
	"github.com/mintforge/edition-engine/pkg/notifyclient"
)

// Make sure to implement the IndexerWorker interface
var _ indexer.IndexerWorker = (*NoticeDispatcher)(nil)

// NoticeDispatcher drains the draw and approval notice streams emitted by the
// command processor and forwards them to the receiver gateway. Notices are
// best effort: with no gateway configured they are dropped, and a failed
// submission is logged and forgotten. Commands never wait on delivery.
type NoticeDispatcher struct {
	notifyClient *notifyclient.NotifyClient
	network      common.Network

	drawCh          chan entity.DrawNotice
	approvalCh      chan entity.ApprovalNotice
	drawNotices     *subscription.Subscription[entity.DrawNotice]
	approvalNotices *subscription.Subscription[entity.ApprovalNotice]

	// cleanupFuncs run after the dispatcher stopped. The dispatcher is shut
	// down last, so module-wide resources are released here.
	cleanupFuncs []func(context.Context) error

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

// NewNoticeDispatcher creates the dispatcher and the subscriptions the
// processor publishes into. notifyClient may be nil when notify is disabled.
func NewNoticeDispatcher(notifyClient *notifyclient.NotifyClient, network common.Network, cleanupFuncs []func(context.Context) error) *NoticeDispatcher {
	drawCh := make(chan entity.DrawNotice)
	approvalCh := make(chan entity.ApprovalNotice)
	return &NoticeDispatcher{
		notifyClient:    notifyClient,
		network:         network,
		drawCh:          drawCh,
		approvalCh:      approvalCh,
		drawNotices:     subscription.NewSubscription(drawCh),
		approvalNotices: subscription.NewSubscription(approvalCh),
		cleanupFuncs:    cleanupFuncs,
		quit:            make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// DrawNotices returns the subscription the processor publishes draw results into.
func (d *NoticeDispatcher) DrawNotices() *subscription.Subscription[entity.DrawNotice] {
	return d.drawNotices
}

// ApprovalNotices returns the subscription the processor publishes approval messages into.
func (d *NoticeDispatcher) ApprovalNotices() *subscription.Subscription[entity.ApprovalNotice] {
	return d.approvalNotices
}

func (d *NoticeDispatcher) Run(ctx context.Context) error {
	defer close(d.done)
	defer d.drawNotices.Unsubscribe()
	defer d.approvalNotices.Unsubscribe()

	ctx = logger.WithContext(ctx, slogx.String("worker", "editions_notice_dispatcher"))

	for {
		select {
		case <-d.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping notice dispatcher")
			return nil
		case <-ctx.Done():
			return nil
		case notice := <-d.drawCh:
			d.submitDrawNotice(ctx, notice)
		case notice := <-d.approvalCh:
			d.submitApprovalNotice(ctx, notice)
		}
	}
}

func (d *NoticeDispatcher) Shutdown() error {
	return d.ShutdownWithContext(context.Background())
}

func (d *NoticeDispatcher) ShutdownWithContext(ctx context.Context) (err error) {
	d.quitOnce.Do(func() {
		close(d.quit)
		select {
		case <-d.done:
		case <-time.After(180 * time.Second):
			err = errors.Wrap(errs.Timeout, "notice dispatcher shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "notice dispatcher shutdown context canceled")
		}
		for _, cleanup := range d.cleanupFuncs {
			if cleanupErr := cleanup(ctx); cleanupErr != nil {
				logger.WarnContext(ctx, "Failed to cleanup module resource", slogx.Error(cleanupErr))
			}
		}
	})
	return
}

func (d *NoticeDispatcher) submitDrawNotice(ctx context.Context, notice entity.DrawNotice) {
	if d.notifyClient == nil {
		return
	}
	if err := d.notifyClient.SubmitDrawNotice(ctx, notifyclient.DrawNoticePayload{
		ClientVersion: Version,
		Network:       d.network,
		WinnerID:      notice.WinnerID.String(),
		SeriesID:      notice.SeriesID.String(),
		InstanceID:    notice.InstanceID.String(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to submit draw notice",
			slogx.Error(err),
			slogx.Stringer("winnerId", notice.WinnerID),
			slogx.Stringer("instanceId", notice.InstanceID),
		)
	}
}

func (d *NoticeDispatcher) submitApprovalNotice(ctx context.Context, notice entity.ApprovalNotice) {
	if d.notifyClient == nil {
		return
	}
	if err := d.notifyClient.SubmitApprovalNotice(ctx, notifyclient.ApprovalNoticePayload{
		ClientVersion: Version,
		Network:       d.network,
		OwnerID:       notice.OwnerID.String(),
		ApprovedID:    notice.ApprovedID.String(),
		InstanceID:    notice.InstanceID.String(),
		ApprovalID:    notice.ApprovalID,
		Message:       notice.Message,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to submit approval notice",
			slogx.Error(err),
			slogx.Stringer("approvedId", notice.ApprovedID),
			slogx.Stringer("instanceId", notice.InstanceID),
		)
	}
}
