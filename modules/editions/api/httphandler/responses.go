package httphandler

import (
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/pkg/decimals"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type seriesResult struct {
	Id       editions.SeriesID       `json:"id"`
	Creator  editions.AccountID      `json:"creator"`
	Metadata editions.SeriesMetadata `json:"metadata"`
	Royalty  editions.RoyaltyMap     `json:"royalty,omitempty"`
	Price    *uint128.Uint128        `json:"price"`
	// PriceDecimal is Price rendered in whole tokens.
	PriceDecimal *decimal.Decimal `json:"priceDecimal,omitempty"`
	FeeBps       *uint16          `json:"feeBps"`
	Mintable     bool             `json:"mintable"`
	MintedCount  uint64           `json:"mintedCount"`
	CreatedAt    int64            `json:"createdAt"`
	UpdatedAt    int64            `json:"updatedAt"`
}

func newSeriesResult(series *entity.Series) seriesResult {
	result := seriesResult{
		Id:          series.ID,
		Creator:     series.Creator,
		Metadata:    series.Metadata,
		Royalty:     series.Royalty,
		Price:       series.Price,
		FeeBps:      series.FeeBps,
		Mintable:    series.Mintable,
		MintedCount: series.MintedCount,
		CreatedAt:   series.CreatedAt.Unix(),
		UpdatedAt:   series.UpdatedAt.Unix(),
	}
	if series.Price != nil {
		result.PriceDecimal = lo.ToPtr(decimals.ToDecimal(*series.Price, editions.TokenDecimals))
	}
	return result
}

// instanceMetadata is the derived display metadata of an instance: the title
// carries the edition suffix, everything else is inherited from the series.
type instanceMetadata struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Media       string  `json:"media,omitempty"`
	Reference   string  `json:"reference,omitempty"`
	Copies      *uint64 `json:"copies,omitempty"`
	Extra       string  `json:"extra,omitempty"`
	IssuedAt    int64   `json:"issuedAt"`
}

type instanceResult struct {
	Id        editions.InstanceID           `json:"id"`
	SeriesId  editions.SeriesID             `json:"seriesId"`
	Edition   uint64                        `json:"edition"`
	Owner     editions.AccountID            `json:"owner"`
	Approvals map[editions.AccountID]uint64 `json:"approvals,omitempty"`
	Metadata  *instanceMetadata             `json:"metadata,omitempty"`
}

// newInstanceResult builds the instance view. A nil series omits the derived
// metadata, for list endpoints that do not join the series row.
func newInstanceResult(instance *entity.Instance, series *entity.Series) instanceResult {
	result := instanceResult{
		Id:        instance.ID,
		SeriesId:  instance.ID.SeriesID,
		Edition:   instance.ID.Edition,
		Owner:     instance.Owner,
		Approvals: instance.Approvals,
	}
	if series != nil {
		result.Metadata = &instanceMetadata{
			Title:       instance.ID.DisplayTitle(series.Metadata.Title, series.Metadata.Copies),
			Description: series.Metadata.Description,
			Media:       series.Metadata.Media,
			Reference:   series.Metadata.Reference,
			Copies:      series.Metadata.Copies,
			Extra:       series.Metadata.Extra,
			IssuedAt:    instance.IssuedAt.Unix(),
		}
	}
	return result
}

type payoutResult = map[editions.AccountID]uint128.Uint128
