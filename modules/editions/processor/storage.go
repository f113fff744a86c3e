package processor

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

// Storage size estimators. Charges must be a deterministic function of the
// stored fields, not of database internals, so a caller can compute the
// required deposit up front.

const (
	// storageRecordOverhead approximates per-record key and index cost.
	storageRecordOverhead = 64
	// storageWordBytes is the cost of one fixed-width numeric field.
	storageWordBytes = 8
)

func seriesStorageBytes(series *entity.Series) uint64 {
	bytes := uint64(storageRecordOverhead)
	bytes += uint64(len(series.ID))
	bytes += uint64(len(series.Creator))
	bytes += uint64(len(series.Metadata.Title))
	bytes += uint64(len(series.Metadata.Description))
	bytes += uint64(len(series.Metadata.Media))
	bytes += uint64(len(series.Metadata.Reference))
	bytes += uint64(len(series.Metadata.Extra))
	if series.Metadata.Copies != nil {
		bytes += storageWordBytes
	}
	for account := range series.Royalty {
		bytes += uint64(len(account)) + 2
	}
	if series.Price != nil {
		bytes += 2 * storageWordBytes
	}
	if series.FeeBps != nil {
		bytes += 2
	}
	return bytes
}

func instanceStorageBytes(instance *entity.Instance) uint64 {
	bytes := uint64(storageRecordOverhead)
	bytes += uint64(len(instance.ID.SeriesID)) + storageWordBytes
	bytes += uint64(len(instance.Owner))
	for account := range instance.Approvals {
		bytes += uint64(len(account)) + storageWordBytes
	}
	bytes += 2 * storageWordBytes // next approval id, issue timestamp
	return bytes
}

// chargeDeposit settles a call's deposit: extraSpend is value already
// consumed by the call itself (the purchase price), storageBytes is the state
// the call added. Returns the refundable excess. Insufficient attached value
// fails the call, which rolls back every state change the call made.
func (p *Processor) chargeDeposit(call CallContext, storageBytes uint64, extraSpend uint128.Uint128) (uint128.Uint128, error) {
	if call.Attached.Cmp(extraSpend) < 0 {
		return uint128.Zero, errors.Wrapf(errs.InsufficientDeposit, "attached value %s does not cover the required spend of %s base units", call.Attached, extraSpend)
	}
	available := call.Attached.Sub(extraSpend)
	cost := p.storageByteCost.Mul64(storageBytes)
	if available.Cmp(cost) < 0 {
		return uint128.Zero, errors.Wrapf(errs.InsufficientDeposit, "must attach %s base units to cover storage", cost)
	}
	return available.Sub(cost), nil
}
