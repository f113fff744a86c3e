package editions

import (
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
)

func TestNewSeriesID(t *testing.T) {
	assert.Equal(t, SeriesID("1"), NewSeriesID(1))
	assert.Equal(t, SeriesID("1024"), NewSeriesID(1024))
}

func TestSeriesIDValidate(t *testing.T) {
	assert.NoError(t, SeriesID("1").Validate())
	assert.NoError(t, SeriesID("genesis-drop").Validate())
	assert.Error(t, SeriesID("").Validate())
	assert.Error(t, SeriesID("bad:id").Validate())
}

func TestSeriesMetadataValidate(t *testing.T) {
	assert.NoError(t, SeriesMetadata{Title: "Sunset"}.Validate())
	assert.Error(t, SeriesMetadata{}.Validate())
}

func TestValidatePrice(t *testing.T) {
	assert.NoError(t, ValidatePrice(uint128.Zero))
	assert.NoError(t, ValidatePrice(uint128.From64(1_000_000)))
	assert.NoError(t, ValidatePrice(MaxPrice.Sub64(1)))
	assert.Error(t, ValidatePrice(MaxPrice))
	assert.Error(t, ValidatePrice(MaxPrice.Add64(1)))
}
