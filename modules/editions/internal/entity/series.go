package entity

import (
	"time"

	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/modules/editions/editions"
)

type Series struct {
	ID       editions.SeriesID
	Creator  editions.AccountID
	Metadata editions.SeriesMetadata
	Royalty  editions.RoyaltyMap
	Price    *uint128.Uint128
	// FeeBps is the fee snapshot taken at creation and at each price update.
	// Purchases settle against it, not the live global fee. Nil falls back to
	// the settled global fee.
	FeeBps      *uint16
	Mintable    bool
	MintedCount uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CopiesCap returns the supply cap, or nil for an uncapped series.
func (s *Series) CopiesCap() *uint64 {
	return s.Metadata.Copies
}
