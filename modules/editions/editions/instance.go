package editions

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Instance id and display-title delimiters. Clients split on these, so they
// are part of the wire format and must never change.
const (
	InstanceDelimiter = ":"
	TitleDelimiter    = " #"
	EditionDelimiter  = "/"
)

// InstanceID identifies a minted instance as "<series id>:<edition>".
// Edition numbers start at 1 and are never reused within a series.
type InstanceID struct {
	SeriesID SeriesID
	Edition  uint64
}

func NewInstanceID(seriesId SeriesID, edition uint64) InstanceID {
	return InstanceID{
		SeriesID: seriesId,
		Edition:  edition,
	}
}

var (
	ErrInvalidInstanceID     = errors.New("invalid instance id: must contain exactly one delimiter")
	ErrCannotParseEdition    = errors.New("invalid instance id: cannot parse edition number")
	ErrInstanceEditionIsZero = errors.New("invalid instance id: edition numbers start at 1")
)

func NewInstanceIDFromString(str string) (InstanceID, error) {
	strs := strings.Split(str, InstanceDelimiter)
	if len(strs) != 2 || strs[0] == "" {
		return InstanceID{}, ErrInvalidInstanceID
	}
	seriesIdStr, editionStr := strs[0], strs[1]
	edition, err := strconv.ParseUint(editionStr, 10, 64)
	if err != nil {
		return InstanceID{}, errors.WithStack(errors.Join(err, ErrCannotParseEdition))
	}
	if edition == 0 {
		return InstanceID{}, ErrInstanceEditionIsZero
	}
	return InstanceID{
		SeriesID: SeriesID(seriesIdStr),
		Edition:  edition,
	}, nil
}

func (i InstanceID) String() string {
	return string(i.SeriesID) + InstanceDelimiter + strconv.FormatUint(i.Edition, 10)
}

// DisplayTitle renders the per-instance title shown to clients, e.g.
// "Sunset #3" or "Sunset #3/10" when the series supply is capped.
func (i InstanceID) DisplayTitle(seriesTitle string, copies *uint64) string {
	var sb strings.Builder
	sb.WriteString(seriesTitle)
	sb.WriteString(TitleDelimiter)
	sb.WriteString(strconv.FormatUint(i.Edition, 10))
	if copies != nil {
		sb.WriteString(EditionDelimiter)
		sb.WriteString(strconv.FormatUint(*copies, 10))
	}
	return sb.String()
}

// MarshalJSON implements json.Marshaler
func (i InstanceID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + i.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (i *InstanceID) UnmarshalJSON(data []byte) error {
	// data must be quoted
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("must be string")
	}
	data = data[1 : len(data)-1]
	parsed, err := NewInstanceIDFromString(string(data))
	if err != nil {
		return errors.WithStack(err)
	}
	*i = parsed
	return nil
}
