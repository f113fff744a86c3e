package entity

import "time"

// DrawPoolState is the persisted sampler position. The swap table rows are
// stored separately and loaded sparsely.
type DrawPoolState struct {
	Size      uint64
	Drawn     uint64
	UpdatedAt time.Time
}
