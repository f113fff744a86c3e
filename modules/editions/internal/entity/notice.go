package entity

import (
	"github.com/mintforge/edition-engine/modules/editions/editions"
)

// DrawNotice announces a raffle mint to the winner's gateway. Delivery is
// best effort and never affects the mint itself.
type DrawNotice struct {
	WinnerID   editions.AccountID
	SeriesID   editions.SeriesID
	InstanceID editions.InstanceID
}

// ApprovalNotice forwards the message of a mint-and-approve call to the
// approved account's gateway. Best effort, like DrawNotice.
type ApprovalNotice struct {
	OwnerID    editions.AccountID
	ApprovedID editions.AccountID
	InstanceID editions.InstanceID
	ApprovalID uint64
	Message    string
}
