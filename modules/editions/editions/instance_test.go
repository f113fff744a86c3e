package editions

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestNewInstanceIDFromString(t *testing.T) {
	type testcase struct {
		name           string
		input          string
		expectedOutput InstanceID
		shouldError    bool
	}
	testcases := []testcase{
		{
			name:  "valid instance id",
			input: "1:2",
			expectedOutput: InstanceID{
				SeriesID: "1",
				Edition:  2,
			},
			shouldError: false,
		},
		{
			name:  "custom series id",
			input: "genesis-drop:14",
			expectedOutput: InstanceID{
				SeriesID: "genesis-drop",
				Edition:  14,
			},
			shouldError: false,
		},
		{
			name:        "too many delimiters",
			input:       "1:2:3",
			shouldError: true,
		},
		{
			name:        "no delimiter",
			input:       "1",
			shouldError: true,
		},
		{
			name:        "invalid edition",
			input:       "1:a",
			shouldError: true,
		},
		{
			name:        "edition zero",
			input:       "1:0",
			shouldError: true,
		},
		{
			name:        "empty series id",
			input:       ":1",
			shouldError: true,
		},
		{
			name:        "empty edition",
			input:       "1:",
			shouldError: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			instanceId, err := NewInstanceIDFromString(tc.input)
			if tc.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedOutput, instanceId)
			}
		})
	}
}

func TestInstanceIDString(t *testing.T) {
	assert.Equal(t, "7:3", NewInstanceID("7", 3).String())
	assert.Equal(t, "genesis-drop:14", NewInstanceID("genesis-drop", 14).String())
}

func TestInstanceIDDisplayTitle(t *testing.T) {
	type testcase struct {
		name           string
		instanceId     InstanceID
		seriesTitle    string
		copies         *uint64
		expectedOutput string
	}
	testcases := []testcase{
		{
			name:           "uncapped series",
			instanceId:     NewInstanceID("1", 3),
			seriesTitle:    "Sunset",
			copies:         nil,
			expectedOutput: "Sunset #3",
		},
		{
			name:           "capped series",
			instanceId:     NewInstanceID("1", 3),
			seriesTitle:    "Sunset",
			copies:         lo.ToPtr(uint64(10)),
			expectedOutput: "Sunset #3/10",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expectedOutput, tc.instanceId.DisplayTitle(tc.seriesTitle, tc.copies))
		})
	}
}

func TestInstanceIDMarshal(t *testing.T) {
	instanceId := NewInstanceID("42", 7)
	bytes, err := instanceId.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"42:7"`, string(bytes))
}

func TestInstanceIDUnmarshal(t *testing.T) {
	str := `"42:7"`
	var instanceId InstanceID
	err := instanceId.UnmarshalJSON([]byte(str))
	assert.NoError(t, err)
	assert.Equal(t, InstanceID{
		SeriesID: "42",
		Edition:  7,
	}, instanceId)
}
