package entity

import (
	"encoding/json"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/mintforge/edition-engine/modules/editions/editions"
)

type EventAction string

const (
	EventActionCreateSeries         EventAction = "nft_create_series"
	EventActionSetSeriesPrice       EventAction = "nft_set_series_price"
	EventActionSetSeriesNonMintable EventAction = "nft_set_series_non_mintable"
	EventActionDecreaseSeriesCopies EventAction = "nft_decrease_series_copies"
	EventActionMint                 EventAction = "nft_mint"
	EventActionBurn                 EventAction = "nft_burn"
	EventActionTransfer             EventAction = "nft_transfer"
)

// Event is one append-only log record per state change. The payload layout is
// a stable contract with off-system indexers: mint, burn and transfer carry
// NEP-171 style data, series changes carry a type/params object. Hash covers
// the single event; CumulativeHash chains it onto the previous event so
// consumers can verify the log is complete and untampered.
type Event struct {
	Id             int64
	Action         EventAction
	Actor          editions.AccountID
	SeriesID       *editions.SeriesID
	InstanceID     *editions.InstanceID
	Payload        json.RawMessage
	Hash           chainhash.Hash
	CumulativeHash chainhash.Hash
	CreatedAt      time.Time
}
