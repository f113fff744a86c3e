package processor

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/core/indexer"
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/pkg/logger"
	"github.com/mintforge/edition-engine/pkg/logger/slogx"
	"github.com/mintforge/edition-engine/pkg/notifyclient"
	"github.com/samber/lo"
)

const (
	resolverBatchSize       = 100
	ResolverPollingInterval = 5 * time.Second
)

// Make sure to implement the Datasource interface
var _ indexer.Datasource[*entity.PendingTransfer] = (*pendingTransferDatasource)(nil)

// pendingTransferDatasource feeds the resolver with transfers still awaiting
// the receiver gateway's verdict, oldest first.
type pendingTransferDatasource struct {
	editionsDg datagateway.EditionsDataGateway
}

func NewPendingTransferDatasource(editionsDg datagateway.EditionsDataGateway) *pendingTransferDatasource {
	return &pendingTransferDatasource{editionsDg: editionsDg}
}

func (pendingTransferDatasource) Name() string {
	return "pending_transfers"
}

func (d *pendingTransferDatasource) Fetch(ctx context.Context) ([]*entity.PendingTransfer, error) {
	transfers, err := d.editionsDg.GetUnresolvedPendingTransfers(ctx, resolverBatchSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unresolved pending transfers")
	}
	return transfers, nil
}

// Make sure to implement the Processor interface
var _ indexer.Processor[*entity.PendingTransfer] = (*TransferResolver)(nil)

// TransferResolver drives the second phase of transfer-and-notify: it submits
// each pending transfer to the receiver gateway and settles the transfer with
// the gateway's verdict. A transfer whose notice could not be delivered stays
// pending and is retried on the next poll.
type TransferResolver struct {
	processor    *Processor
	notifyClient *notifyclient.NotifyClient
	network      common.Network
}

func NewTransferResolver(processor *Processor, notifyClient *notifyclient.NotifyClient, network common.Network) *TransferResolver {
	return &TransferResolver{
		processor:    processor,
		notifyClient: notifyClient,
		network:      network,
	}
}

func (TransferResolver) Name() string {
	return "editions_transfer_resolver"
}

func (r *TransferResolver) Process(ctx context.Context, transfers []*entity.PendingTransfer) error {
	for _, transfer := range transfers {
		returnAsset, err := r.notifyClient.SubmitTransferNotice(ctx, notifyclient.TransferNoticePayload{
			ClientVersion: Version,
			Network:       r.network,
			TransferID:    transfer.Id,
			SenderID:      transfer.SenderID.String(),
			PreviousOwner: transfer.PreviousOwner.String(),
			ReceiverID:    transfer.ReceiverID.String(),
			InstanceID:    transfer.InstanceID.String(),
			Message:       lo.FromPtr(transfer.Message),
		})
		if err != nil {
			// gateway unreachable or refusing the notice, retry next poll
			logger.WarnContext(ctx, "Failed to submit transfer notice",
				slogx.Error(err),
				slogx.Int64("transferId", transfer.Id),
				slogx.Stringer("receiverId", transfer.ReceiverID),
			)
			continue
		}
		if _, err := r.processor.resolveTransfer(ctx, transfer.Id, returnAsset, time.Now()); err != nil {
			if errors.Is(err, errs.ConflictSetting) || errors.Is(err, errs.NotFound) {
				// resolved by hand while the notice was in flight
				continue
			}
			return errors.Wrapf(err, "failed to resolve transfer %d", transfer.Id)
		}
	}
	return nil
}

func (r *TransferResolver) Shutdown(_ context.Context) error {
	return nil
}
