package editions

import (
	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
)

const (
	minAccountIDLen = 2
	maxAccountIDLen = 64
)

// AccountID is an externally authenticated caller identity. The engine never
// verifies identities; it only checks well-formedness: 2 to 64 characters,
// lowercase alphanumeric parts joined by single '.', '-' or '_' separators.
type AccountID string

func (a AccountID) String() string {
	return string(a)
}

func (a AccountID) Validate() error {
	if len(a) < minAccountIDLen || len(a) > maxAccountIDLen {
		return errors.Wrapf(errs.InvalidArgument, "account id must be %d to %d characters", minAccountIDLen, maxAccountIDLen)
	}
	lastCharIsSeparator := true
	for _, c := range []byte(a) {
		var currentCharIsSeparator bool
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
			currentCharIsSeparator = true
		default:
			return errors.Wrapf(errs.InvalidArgument, "account id contains invalid character %q", c)
		}
		if currentCharIsSeparator && lastCharIsSeparator {
			return errors.Wrap(errs.InvalidArgument, "account id separators must join non-empty parts")
		}
		lastCharIsSeparator = currentCharIsSeparator
	}
	if lastCharIsSeparator {
		return errors.Wrap(errs.InvalidArgument, "account id must not end with a separator")
	}
	return nil
}
