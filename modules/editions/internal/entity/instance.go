package entity

import (
	"time"

	"github.com/mintforge/edition-engine/modules/editions/editions"
)

type Instance struct {
	ID    editions.InstanceID
	Owner editions.AccountID
	// Approvals maps approved accounts to their approval ids. Cleared on
	// transfer; restored from the pending-transfer record on a rollback.
	Approvals      map[editions.AccountID]uint64
	NextApprovalID uint64
	IssuedAt       time.Time
}
