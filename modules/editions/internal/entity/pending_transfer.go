package entity

import (
	"time"

	"github.com/mintforge/edition-engine/modules/editions/editions"
)

type PendingTransferStatus string

const (
	// PendingTransferStatusPending awaits the receiver gateway's verdict.
	PendingTransferStatusPending PendingTransferStatus = "pending"
	// PendingTransferStatusKept means the transfer stands, either because the
	// receiver accepted or because the instance already moved on.
	PendingTransferStatusKept PendingTransferStatus = "kept"
	// PendingTransferStatusReturned means the instance was handed back to the
	// previous owner with its prior approvals.
	PendingTransferStatusReturned PendingTransferStatus = "returned"
)

// PendingTransfer is one in-flight transfer-and-notify handoff. The move is
// already visible when the row is written; resolution is corrective only.
type PendingTransfer struct {
	Id            int64
	InstanceID    editions.InstanceID
	SenderID      editions.AccountID
	PreviousOwner editions.AccountID
	ReceiverID    editions.AccountID
	// PriorApprovals snapshots the approval table cleared by the transfer,
	// for restoration on rollback.
	PriorApprovals map[editions.AccountID]uint64
	Message        *string
	Status         PendingTransferStatus
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}
