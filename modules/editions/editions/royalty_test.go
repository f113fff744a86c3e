package editions

import (
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
)

func TestRoyaltyMapValidate(t *testing.T) {
	type testcase struct {
		name        string
		royalty     RoyaltyMap
		shouldError bool
	}
	testcases := []testcase{
		{
			name:        "empty map",
			royalty:     RoyaltyMap{},
			shouldError: false,
		},
		{
			name: "single entry",
			royalty: RoyaltyMap{
				"alice.near": 1000,
			},
			shouldError: false,
		},
		{
			name: "sum at limit",
			royalty: RoyaltyMap{
				"alice.near": 4500,
				"bob.near":   4500,
			},
			shouldError: false,
		},
		{
			name: "sum above limit",
			royalty: RoyaltyMap{
				"alice.near": 4500,
				"bob.near":   4501,
			},
			shouldError: true,
		},
		{
			name: "malformed account",
			royalty: RoyaltyMap{
				"Not-An-Account": 100,
			},
			shouldError: true,
		},
		{
			name: "too many accounts",
			royalty: RoyaltyMap{
				"a0.near": 10, "a1.near": 10, "a2.near": 10, "a3.near": 10,
				"a4.near": 10, "a5.near": 10, "a6.near": 10, "a7.near": 10,
				"a8.near": 10, "a9.near": 10, "a10.near": 10,
			},
			shouldError: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.royalty.Validate()
			if tc.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitPayout(t *testing.T) {
	type testcase struct {
		name           string
		royalty        RoyaltyMap
		owner          AccountID
		amount         uint128.Uint128
		maxPayees      uint32
		expectedOutput map[AccountID]uint128.Uint128
		shouldError    bool
	}
	testcases := []testcase{
		{
			name:      "no royalty, owner takes all",
			royalty:   RoyaltyMap{},
			owner:     "owner.near",
			amount:    uint128.From64(10_000),
			maxPayees: 10,
			expectedOutput: map[AccountID]uint128.Uint128{
				"owner.near": uint128.From64(10_000),
			},
		},
		{
			name: "single royalty entry",
			royalty: RoyaltyMap{
				"artist.near": 1000,
			},
			owner:     "owner.near",
			amount:    uint128.From64(10_000),
			maxPayees: 10,
			expectedOutput: map[AccountID]uint128.Uint128{
				"artist.near": uint128.From64(1_000),
				"owner.near":  uint128.From64(9_000),
			},
		},
		{
			name: "owner entry folds into remainder",
			royalty: RoyaltyMap{
				"artist.near": 1000,
				"owner.near":  2000,
			},
			owner:     "owner.near",
			amount:    uint128.From64(10_000),
			maxPayees: 10,
			expectedOutput: map[AccountID]uint128.Uint128{
				"artist.near": uint128.From64(1_000),
				"owner.near":  uint128.From64(9_000),
			},
		},
		{
			name: "floors each share, owner absorbs dust",
			royalty: RoyaltyMap{
				"artist.near": 3333,
			},
			owner:     "owner.near",
			amount:    uint128.From64(101),
			maxPayees: 10,
			expectedOutput: map[AccountID]uint128.Uint128{
				// floor(3333*101/10000) = 33, floor(6667*101/10000) = 67
				"artist.near": uint128.From64(33),
				"owner.near":  uint128.From64(67),
			},
		},
		{
			name: "too many payees",
			royalty: RoyaltyMap{
				"a.near": 100,
				"b.near": 100,
			},
			owner:       "owner.near",
			amount:      uint128.From64(1_000),
			maxPayees:   2,
			shouldError: true,
		},
		{
			name: "payee count within limit",
			royalty: RoyaltyMap{
				"a.near": 100,
				"b.near": 100,
			},
			owner:     "owner.near",
			amount:    uint128.From64(10_000),
			maxPayees: 3,
			expectedOutput: map[AccountID]uint128.Uint128{
				"a.near":     uint128.From64(100),
				"b.near":     uint128.From64(100),
				"owner.near": uint128.From64(9_800),
			},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			payout, err := SplitPayout(tc.royalty, tc.owner, tc.amount, tc.maxPayees)
			if tc.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedOutput, payout)
			}
		})
	}
}

func TestSplitPayoutNeverExceedsAmount(t *testing.T) {
	royalty := RoyaltyMap{
		"a.near": 3333,
		"b.near": 3333,
		"c.near": 2333,
	}
	for _, amount := range []uint64{1, 3, 7, 99, 101, 9_999, 123_457} {
		payout, err := SplitPayout(royalty, "owner.near", uint128.From64(amount), 10)
		assert.NoError(t, err)
		total := uint128.Zero
		for _, share := range payout {
			total = total.Add(share)
		}
		assert.LessOrEqual(t, total.Cmp64(amount), 0, "amount %d", amount)
	}
}
