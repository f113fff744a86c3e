package entity

import (
	"time"

	"github.com/mintforge/edition-engine/modules/editions/editions"
)

// EngineParams is the singleton platform parameter row: owner and treasury
// accounts, the fee schedule, the default OG allowlist balance and the
// monotonic global mint counter.
type EngineParams struct {
	Owner    editions.AccountID
	Treasury editions.AccountID
	Fee      editions.FeeSchedule
	// DefaultOgBalance is granted to OG accounts added without an explicit
	// balance.
	DefaultOgBalance uint32
	// TotalMinted counts every mint ever performed. Burns do not decrease it.
	TotalMinted uint64
	UpdatedAt   time.Time
}
