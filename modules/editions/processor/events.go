package processor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/samber/lo"
)

// Event payloads are a stable contract with off-system indexers. Mint, burn
// and transfer events carry NEP-171 style data arrays; series changes carry
// a type/params object keyed by the event action.

type nftMintData struct {
	OwnerID  string   `json:"owner_id"`
	TokenIDs []string `json:"token_ids"`
	Memo     string   `json:"memo,omitempty"`
}

type nftBurnData struct {
	OwnerID  string   `json:"owner_id"`
	TokenIDs []string `json:"token_ids"`
}

type nftTransferData struct {
	AuthorizedID string   `json:"authorized_id,omitempty"`
	OldOwnerID   string   `json:"old_owner_id"`
	NewOwnerID   string   `json:"new_owner_id"`
	TokenIDs     []string `json:"token_ids"`
	Memo         string   `json:"memo,omitempty"`
}

type seriesEventPayload struct {
	Type   string `json:"type"`
	Params any    `json:"params"`
}

// mintMemo is embedded as a JSON string in the mint event data, carrying the
// monetary breakdown of the minting call.
type mintMemo struct {
	Price  *string `json:"price,omitempty"`
	Refund string  `json:"refund"`
}

func newMintMemo(price *uint128.Uint128, refund uint128.Uint128) (string, error) {
	memo := mintMemo{Refund: refund.String()}
	if price != nil {
		memo.Price = lo.ToPtr(price.String())
	}
	raw, err := json.Marshal(memo)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal mint memo")
	}
	return string(raw), nil
}

func nftMintPayload(owner editions.AccountID, instanceId editions.InstanceID, memo string) (json.RawMessage, error) {
	payload, err := json.Marshal([]nftMintData{{
		OwnerID:  owner.String(),
		TokenIDs: []string{instanceId.String()},
		Memo:     memo,
	}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal mint payload")
	}
	return payload, nil
}

func nftBurnPayload(owner editions.AccountID, instanceId editions.InstanceID) (json.RawMessage, error) {
	payload, err := json.Marshal([]nftBurnData{{
		OwnerID:  owner.String(),
		TokenIDs: []string{instanceId.String()},
	}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal burn payload")
	}
	return payload, nil
}

func nftTransferPayload(oldOwner, newOwner editions.AccountID, instanceId editions.InstanceID, authorizedId *editions.AccountID, memo *string) (json.RawMessage, error) {
	data := nftTransferData{
		OldOwnerID: oldOwner.String(),
		NewOwnerID: newOwner.String(),
		TokenIDs:   []string{instanceId.String()},
	}
	if authorizedId != nil {
		data.AuthorizedID = authorizedId.String()
	}
	if memo != nil {
		data.Memo = *memo
	}
	payload, err := json.Marshal([]nftTransferData{data})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal transfer payload")
	}
	return payload, nil
}

func createSeriesPayload(series *entity.Series, refund uint128.Uint128) (json.RawMessage, error) {
	params := struct {
		SeriesID  string                  `json:"series_id"`
		CreatorID string                  `json:"creator_id"`
		Metadata  editions.SeriesMetadata `json:"metadata"`
		Royalty   editions.RoyaltyMap     `json:"royalty,omitempty"`
		Price     *string                 `json:"price"`
		FeeBps    *uint16                 `json:"fee_bps"`
		Refund    string                  `json:"refund"`
	}{
		SeriesID:  series.ID.String(),
		CreatorID: series.Creator.String(),
		Metadata:  series.Metadata,
		Royalty:   series.Royalty,
		FeeBps:    series.FeeBps,
		Refund:    refund.String(),
	}
	if series.Price != nil {
		params.Price = lo.ToPtr(series.Price.String())
	}
	payload, err := json.Marshal(seriesEventPayload{Type: string(entity.EventActionCreateSeries), Params: params})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal create series payload")
	}
	return payload, nil
}

func setSeriesPricePayload(seriesId editions.SeriesID, price *uint128.Uint128, feeBps *uint16) (json.RawMessage, error) {
	params := struct {
		SeriesID string  `json:"series_id"`
		Price    *string `json:"price"`
		FeeBps   *uint16 `json:"fee_bps"`
	}{
		SeriesID: seriesId.String(),
		FeeBps:   feeBps,
	}
	if price != nil {
		params.Price = lo.ToPtr(price.String())
	}
	payload, err := json.Marshal(seriesEventPayload{Type: string(entity.EventActionSetSeriesPrice), Params: params})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal set price payload")
	}
	return payload, nil
}

func setSeriesNonMintablePayload(seriesId editions.SeriesID) (json.RawMessage, error) {
	params := struct {
		SeriesID string `json:"series_id"`
	}{
		SeriesID: seriesId.String(),
	}
	payload, err := json.Marshal(seriesEventPayload{Type: string(entity.EventActionSetSeriesNonMintable), Params: params})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal set non-mintable payload")
	}
	return payload, nil
}

func decreaseSeriesCopiesPayload(seriesId editions.SeriesID, copies uint64, nonMintable bool) (json.RawMessage, error) {
	params := struct {
		SeriesID      string `json:"series_id"`
		Copies        uint64 `json:"copies"`
		IsNonMintable bool   `json:"is_non_mintable"`
	}{
		SeriesID:      seriesId.String(),
		Copies:        copies,
		IsNonMintable: nonMintable,
	}
	payload, err := json.Marshal(seriesEventPayload{Type: string(entity.EventActionDecreaseSeriesCopies), Params: params})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal decrease copies payload")
	}
	return payload, nil
}

func newSeriesEvent(action entity.EventAction, actor editions.AccountID, seriesId editions.SeriesID, payload json.RawMessage, at time.Time) *entity.Event {
	return &entity.Event{
		Action:    action,
		Actor:     actor,
		SeriesID:  lo.ToPtr(seriesId),
		Payload:   payload,
		CreatedAt: at,
	}
}

func newInstanceEvent(action entity.EventAction, actor editions.AccountID, instanceId editions.InstanceID, payload json.RawMessage, at time.Time) *entity.Event {
	return &entity.Event{
		Action:     action,
		Actor:      actor,
		SeriesID:   lo.ToPtr(instanceId.SeriesID),
		InstanceID: lo.ToPtr(instanceId),
		Payload:    payload,
		CreatedAt:  at,
	}
}

// appendEvent hashes the event, chains it onto the latest event's cumulative
// hash and persists it. Must run inside the command's transaction so the
// chain stays gapless.
func appendEvent(ctx context.Context, dg datagateway.EditionsDataGateway, event *entity.Event) error {
	event.Hash = calculateEventHash(event)
	var prevCumulativeHash chainhash.Hash
	latestEvent, err := dg.GetLatestEvent(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get latest event")
	}
	if err == nil {
		prevCumulativeHash = latestEvent.CumulativeHash
	}
	event.CumulativeHash = calculateCumulativeEventHash(prevCumulativeHash, event.Hash)
	if err := dg.CreateEvent(ctx, event); err != nil {
		return errors.Wrap(err, "failed to create event")
	}
	return nil
}
