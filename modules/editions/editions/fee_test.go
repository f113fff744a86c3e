package editions

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeScheduleSettle(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	pending := FeeSchedule{
		CurrentFee: 500,
		NextFee:    lo.ToPtr(uint16(100)),
		StartTime:  lo.ToPtr(now.Add(time.Hour)),
	}

	type testcase struct {
		name     string
		schedule FeeSchedule
		now      time.Time
		expected FeeSchedule
	}
	testcases := []testcase{
		{
			name:     "stable schedule is unchanged",
			schedule: FeeSchedule{CurrentFee: 500},
			now:      now,
			expected: FeeSchedule{CurrentFee: 500},
		},
		{
			name:     "pending change before activation",
			schedule: pending,
			now:      now,
			expected: pending,
		},
		{
			name:     "pending change at activation",
			schedule: pending,
			now:      now.Add(time.Hour),
			expected: FeeSchedule{CurrentFee: 100},
		},
		{
			name:     "pending change after activation",
			schedule: pending,
			now:      now.Add(2 * time.Hour),
			expected: FeeSchedule{CurrentFee: 100},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			settled := tc.schedule.Settle(tc.now)
			assert.Equal(t, tc.expected, settled)
			// idempotent
			assert.Equal(t, tc.expected, settled.Settle(tc.now))
		})
	}
}

func TestFeeScheduleSchedule(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	current := FeeSchedule{CurrentFee: 500}

	t.Run("immediate change clears pending", func(t *testing.T) {
		pending, err := current.Schedule(200, lo.ToPtr(now.Add(time.Hour)), now)
		require.NoError(t, err)
		assert.True(t, pending.IsPending())

		settled, err := pending.Schedule(300, nil, now)
		require.NoError(t, err)
		assert.Equal(t, FeeSchedule{CurrentFee: 300}, settled)
	})

	t.Run("future activation produces pending", func(t *testing.T) {
		got, err := current.Schedule(200, lo.ToPtr(now.Add(time.Hour)), now)
		require.NoError(t, err)
		assert.Equal(t, uint16(500), got.CurrentFee)
		require.NotNil(t, got.NextFee)
		assert.Equal(t, uint16(200), *got.NextFee)
		require.NotNil(t, got.StartTime)
		assert.Equal(t, now.Add(time.Hour), *got.StartTime)
	})

	t.Run("activation at now is rejected", func(t *testing.T) {
		_, err := current.Schedule(200, &now, now)
		assert.Error(t, err)
	})

	t.Run("activation in past is rejected", func(t *testing.T) {
		_, err := current.Schedule(200, lo.ToPtr(now.Add(-time.Hour)), now)
		assert.Error(t, err)
	})

	t.Run("fee at denominator is rejected", func(t *testing.T) {
		_, err := current.Schedule(10_000, nil, now)
		assert.Error(t, err)
	})

	t.Run("max valid fee", func(t *testing.T) {
		got, err := current.Schedule(9_999, nil, now)
		require.NoError(t, err)
		assert.Equal(t, uint16(9_999), got.CurrentFee)
	})
}
