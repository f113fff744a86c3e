package editions

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
)

// DefaultFeeBps is the platform fee seeded on first run.
const DefaultFeeBps uint16 = 500

// FeeSchedule is the platform transaction fee with an optional delayed
// change. The schedule is stable when NextFee is nil, pending otherwise.
// Transitions are lazy: callers settle against the clock before every read
// or write that depends on the current fee.
type FeeSchedule struct {
	CurrentFee uint16
	NextFee    *uint16
	StartTime  *time.Time
}

func (f FeeSchedule) IsPending() bool {
	return f.NextFee != nil
}

// Settle applies a pending change whose activation time has been reached.
// Idempotent; a stable schedule or a still-future change is returned as is.
func (f FeeSchedule) Settle(now time.Time) FeeSchedule {
	if f.NextFee != nil && f.StartTime != nil && !now.Before(*f.StartTime) {
		return FeeSchedule{CurrentFee: *f.NextFee}
	}
	return f
}

// Schedule sets the fee to nextFee, either immediately (nil startTime, which
// also clears any pending change) or at a strictly future startTime. Settle
// before calling so a matured pending change is not silently discarded.
func (f FeeSchedule) Schedule(nextFee uint16, startTime *time.Time, now time.Time) (FeeSchedule, error) {
	if nextFee >= TotalBps {
		return FeeSchedule{}, errors.Wrapf(errs.InvalidFee, "transaction fee must be less than %d bps", TotalBps)
	}
	if startTime == nil {
		return FeeSchedule{CurrentFee: nextFee}, nil
	}
	if !startTime.After(now) {
		return FeeSchedule{}, errors.Wrap(errs.ActivationInPast, "start time must be after the current time")
	}
	next := nextFee
	start := *startTime
	return FeeSchedule{
		CurrentFee: f.CurrentFee,
		NextFee:    &next,
		StartTime:  &start,
	}, nil
}
