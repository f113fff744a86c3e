package entity

import (
	"time"

	"github.com/mintforge/edition-engine/modules/editions/editions"
)

// OgAccount is an allowlist entry with the number of mints it still covers.
type OgAccount struct {
	AccountID editions.AccountID
	Balance   uint32
	UpdatedAt time.Time
}

// Seller counts completed transfer-with-payout sales per account.
type Seller struct {
	AccountID editions.AccountID
	SaleCount uint64
	UpdatedAt time.Time
}
