package editions

import (
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOf(v uint64) []byte {
	seed := make([]byte, 32)
	binary.LittleEndian.PutUint64(seed, v)
	return seed
}

func TestDrawPoolDrainsWithoutReplacement(t *testing.T) {
	const size = 100
	pool := NewDrawPool(size)

	seen := make(map[uint64]bool)
	for i := uint64(0); i < size; i++ {
		mutation, err := pool.Draw(seedOf(i * 7919))
		require.NoError(t, err)
		assert.Less(t, mutation.Index, uint64(size))
		assert.False(t, seen[mutation.Index], "index %d drawn twice", mutation.Index)
		seen[mutation.Index] = true
		assert.Equal(t, i+1, mutation.Drawn)
	}
	assert.Len(t, seen, size)
	assert.Equal(t, uint64(0), pool.Remaining())

	_, err := pool.Draw(seedOf(0))
	assert.ErrorIs(t, err, errs.PoolExhausted)
}

func TestDrawPoolDeterministic(t *testing.T) {
	seeds := []uint64{42, 0, 7, 123456789, 3, 3, 99}

	draw := func() []uint64 {
		pool := NewDrawPool(10)
		results := make([]uint64, 0, len(seeds))
		for _, s := range seeds {
			mutation, err := pool.Draw(seedOf(s))
			require.NoError(t, err)
			results = append(results, mutation.Index)
		}
		return results
	}

	assert.Equal(t, draw(), draw())
}

func TestDrawPoolRestoreContinuesSequence(t *testing.T) {
	seeds := []uint64{5, 11, 2, 8, 0, 3, 9, 1}

	reference := NewDrawPool(8)
	var expected []uint64
	for _, s := range seeds {
		mutation, err := reference.Draw(seedOf(s))
		require.NoError(t, err)
		expected = append(expected, mutation.Index)
	}

	// replay the first half, persist the slot mutations, restore, finish
	pool := NewDrawPool(8)
	slots := make(map[uint64]uint64)
	var drawn uint64
	var got []uint64
	for _, s := range seeds[:4] {
		mutation, err := pool.Draw(seedOf(s))
		require.NoError(t, err)
		got = append(got, mutation.Index)
		for slot, value := range mutation.SetSlots {
			slots[slot] = value
		}
		for _, slot := range mutation.DeleteSlots {
			delete(slots, slot)
		}
		drawn = mutation.Drawn
	}

	restored := RestoreDrawPool(8, drawn, slots)
	for _, s := range seeds[4:] {
		mutation, err := restored.Draw(seedOf(s))
		require.NoError(t, err)
		got = append(got, mutation.Index)
	}
	assert.Equal(t, expected, got)
}

func TestDrawPoolEmpty(t *testing.T) {
	pool := NewDrawPool(0)
	_, err := pool.Draw(seedOf(1))
	assert.True(t, errors.Is(err, errs.PoolExhausted))
}

func TestDrawPoolShortSeed(t *testing.T) {
	pool := NewDrawPool(3)
	mutation, err := pool.Draw([]byte{0x01})
	require.NoError(t, err)
	// 1 % 3 == 1, identity mapping on a fresh pool
	assert.Equal(t, uint64(1), mutation.Index)
}
