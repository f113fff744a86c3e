package editions

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common/errs"
)

const (
	// TotalBps is the basis-point denominator for fees and royalties.
	TotalBps = 10_000

	// MaxRoyaltyBps caps the summed royalty shares of a series, reserving at
	// least 10% for the instance holder at payout time.
	MaxRoyaltyBps = 9_000

	// MaxRoyaltyAccounts caps the number of royalty entries per series.
	MaxRoyaltyAccounts = 10
)

// RoyaltyMap assigns perpetual basis-point shares of every resale to accounts.
type RoyaltyMap map[AccountID]uint16

func (r RoyaltyMap) Validate() error {
	if len(r) > MaxRoyaltyAccounts {
		return errors.Wrapf(errs.RoyaltyLimitExceeded, "royalty exceeds %d accounts", MaxRoyaltyAccounts)
	}
	var totalBps uint64
	for account, bps := range r {
		if err := account.Validate(); err != nil {
			return errors.Wrapf(err, "royalty account %q", account)
		}
		totalBps += uint64(bps)
	}
	if totalBps > MaxRoyaltyBps {
		return errors.Wrapf(errs.RoyaltyLimitExceeded, "total royalty can't be more than %d bps", MaxRoyaltyBps)
	}
	return nil
}

// bpsShare computes floor(bps * amount / 10_000).
func bpsShare(bps uint16, amount uint128.Uint128) uint128.Uint128 {
	return amount.Mul64(uint64(bps)).Div64(TotalBps)
}

// SplitPayout distributes amount among the royalty payees and the owner.
// Non-owner entries each receive their floored share; the owner receives the
// floored remainder share, absorbing any entry keyed by the owner and all
// rounding dust. The summed payouts never exceed amount. maxPayees bounds the
// size of the resulting map, owner entry included.
func SplitPayout(royalty RoyaltyMap, owner AccountID, amount uint128.Uint128, maxPayees uint32) (map[AccountID]uint128.Uint128, error) {
	payout := make(map[AccountID]uint128.Uint128, len(royalty)+1)
	var consumedBps uint64
	for account, bps := range royalty {
		if account == owner {
			continue
		}
		payout[account] = bpsShare(bps, amount)
		consumedBps += uint64(bps)
	}
	if consumedBps > TotalBps {
		return nil, errors.Wrap(errs.RoyaltyLimitExceeded, "total payout overflow")
	}
	payout[owner] = bpsShare(uint16(TotalBps-consumedBps), amount)
	if uint64(len(payout)) > uint64(maxPayees) {
		return nil, errors.Wrapf(errs.PayeeCountExceedsLimit, "cannot payout to %d receivers, max is %d", len(payout), maxPayees)
	}
	return payout, nil
}
