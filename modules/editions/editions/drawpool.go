package editions

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
)

// DrawPool samples indices from [0, size) without replacement. It keeps a
// Fisher-Yates style swap table instead of the full permutation: slot i holds
// the index that swapped into position i, and an absent slot means the
// identity mapping. Each draw reads and writes at most two slots, so a pool
// restored from its persisted slots continues the exact same sequence.
type DrawPool struct {
	size  uint64
	drawn uint64
	swaps map[uint64]uint64
}

func NewDrawPool(size uint64) *DrawPool {
	return &DrawPool{
		size:  size,
		swaps: make(map[uint64]uint64),
	}
}

// RestoreDrawPool rebuilds a pool from persisted state. swaps may be nil.
func RestoreDrawPool(size, drawn uint64, swaps map[uint64]uint64) *DrawPool {
	if swaps == nil {
		swaps = make(map[uint64]uint64)
	}
	return &DrawPool{
		size:  size,
		drawn: drawn,
		swaps: swaps,
	}
}

func (p *DrawPool) Size() uint64 {
	return p.size
}

func (p *DrawPool) Drawn() uint64 {
	return p.drawn
}

func (p *DrawPool) Remaining() uint64 {
	return p.size - p.drawn
}

// DrawMutation reports one draw and the slot writes that persist it.
type DrawMutation struct {
	// Index is the drawn pool index, 0-based and distinct across all draws.
	Index uint64

	// Drawn is the total number of draws performed, this one included.
	Drawn uint64

	// SetSlots and DeleteSlots describe the swap-table changes of this draw.
	SetSlots    map[uint64]uint64
	DeleteSlots []uint64
}

// Draw removes one undrawn index from the pool. The position is chosen by
// the first 8 bytes of seed (little-endian) modulo the remaining count, so a
// given seed sequence always reproduces the same draws.
func (p *DrawPool) Draw(seed []byte) (DrawMutation, error) {
	remaining := p.Remaining()
	if remaining == 0 {
		return DrawMutation{}, errors.WithStack(errs.PoolExhausted)
	}
	position := seedValue(seed) % remaining
	tail := remaining - 1

	index, ok := p.swaps[position]
	if !ok {
		index = position
	}
	tailIndex, ok := p.swaps[tail]
	if !ok {
		tailIndex = tail
	}

	mutation := DrawMutation{
		Index:       index,
		Drawn:       p.drawn + 1,
		DeleteSlots: []uint64{tail},
	}
	if position != tail {
		p.swaps[position] = tailIndex
		mutation.SetSlots = map[uint64]uint64{position: tailIndex}
	}
	delete(p.swaps, tail)
	p.drawn++
	return mutation, nil
}

func seedValue(seed []byte) uint64 {
	var b [8]byte
	copy(b[:], seed)
	return binary.LittleEndian.Uint64(b[:])
}
