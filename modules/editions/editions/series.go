package editions

import (
	"strconv"
	"strings"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common/errs"
)

// SeriesID identifies a series. Auto-assigned ids are the registry size + 1
// rendered as a decimal string; custom ids are caller-supplied.
type SeriesID string

func NewSeriesID(n uint64) SeriesID {
	return SeriesID(strconv.FormatUint(n, 10))
}

func (s SeriesID) String() string {
	return string(s)
}

// Validate checks that a custom series id can be embedded in instance ids.
func (s SeriesID) Validate() error {
	if s == "" {
		return errors.Wrap(errs.InvalidArgument, "series id must not be empty")
	}
	if strings.Contains(string(s), InstanceDelimiter) {
		return errors.Wrapf(errs.InvalidArgument, "series id must not contain %q", InstanceDelimiter)
	}
	return nil
}

// TokenDecimals is the base-unit precision of the payment token.
const TokenDecimals = 24

// MaxPrice is the unit price ceiling: 10^9 whole tokens of 24 decimals.
var MaxPrice = utils.Must(uint128.FromString("1000000000000000000000000000000000"))

type SeriesMetadata struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Media       string  `json:"media,omitempty"`
	Reference   string  `json:"reference,omitempty"`
	Copies      *uint64 `json:"copies,omitempty"`
	Extra       string  `json:"extra,omitempty"`
}

func (m SeriesMetadata) Validate() error {
	if m.Title == "" {
		return errors.Wrap(errs.InvalidMetadata, "metadata title is required")
	}
	return nil
}

// ValidatePrice checks a unit price against the price ceiling.
func ValidatePrice(price uint128.Uint128) error {
	if price.Cmp(MaxPrice) >= 0 {
		return errors.Wrapf(errs.PriceOutOfRange, "price is higher than %s", MaxPrice)
	}
	return nil
}
