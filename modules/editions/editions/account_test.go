package editions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountIDValidate(t *testing.T) {
	type testcase struct {
		name        string
		accountId   AccountID
		shouldError bool
	}
	testcases := []testcase{
		{
			name:      "simple account",
			accountId: "alice",
		},
		{
			name:      "dotted account",
			accountId: "alice.near",
		},
		{
			name:      "dashes and underscores",
			accountId: "ok-account_1.sub.near",
		},
		{
			name:      "minimum length",
			accountId: "ab",
		},
		{
			name:      "maximum length",
			accountId: AccountID(strings.Repeat("a", 64)),
		},
		{
			name:        "too short",
			accountId:   "a",
			shouldError: true,
		},
		{
			name:        "too long",
			accountId:   AccountID(strings.Repeat("a", 65)),
			shouldError: true,
		},
		{
			name:        "uppercase",
			accountId:   "Alice",
			shouldError: true,
		},
		{
			name:        "leading separator",
			accountId:   ".alice",
			shouldError: true,
		},
		{
			name:        "trailing separator",
			accountId:   "alice.",
			shouldError: true,
		},
		{
			name:        "consecutive separators",
			accountId:   "alice..near",
			shouldError: true,
		},
		{
			name:        "invalid character",
			accountId:   "alice@near",
			shouldError: true,
		},
		{
			name:        "whitespace",
			accountId:   "alice near",
			shouldError: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.accountId.Validate()
			if tc.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
