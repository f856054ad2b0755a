// Package inspect provides debugging aids for encoder layers built on
// the arena. The arena itself keeps no allocation bookkeeping, so these
// helpers are fed by the caller and live outside the hot path.
package inspect

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bytedoc/bytedoc/memory"
)

var (
	// ErrNullRegion is returned for regions starting at the null address.
	ErrNullRegion = errors.New("region starts at null address")
	// ErrOutOfRange is returned for regions beyond the address width's
	// maximum offset.
	ErrOutOfRange = errors.New("region exceeds maximum offset")
)

// OverlapError reports a region that intersects an already marked one.
type OverlapError struct {
	Addr uint32
	Size int
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("region [%d, %d) overlaps a marked region", e.Addr, uint64(e.Addr)+uint64(e.Size))
}

// RegionMap records which byte ranges of a document buffer have been
// handed out, using a Roaring bitmap keyed by address. Encoder layers
// mark each allocation they receive; double-marking reveals aliasing
// bugs in pointer bookkeeping.
type RegionMap struct {
	rb    *roaring.Bitmap
	width memory.AddressWidth
}

// NewRegionMap creates an empty region map for the given address width.
func NewRegionMap(width memory.AddressWidth) *RegionMap {
	return &RegionMap{
		rb:    roaring.New(),
		width: width,
	}
}

// Mark records the region [addr, addr+size). Marking the null address,
// a region past the width's maximum offset, or a region overlapping an
// existing mark fails; the map is unchanged on failure.
func (m *RegionMap) Mark(addr uint32, size int) error {
	if size <= 0 {
		return nil
	}
	if addr == 0 {
		return ErrNullRegion
	}

	end := uint64(addr) + uint64(size)
	if end > uint64(m.width.MaxOffset()) {
		return fmt.Errorf("%w: [%d, %d) with %s addressing", ErrOutOfRange, addr, end, m.width)
	}

	probe := roaring.New()
	probe.AddRange(uint64(addr), end)
	probe.And(m.rb)
	if !probe.IsEmpty() {
		return &OverlapError{Addr: addr, Size: size}
	}

	m.rb.AddRange(uint64(addr), end)
	return nil
}

// Occupied reports whether addr falls inside a marked region.
func (m *RegionMap) Occupied(addr uint32) bool {
	return m.rb.Contains(addr)
}

// MarkedBytes returns the total number of marked bytes.
func (m *RegionMap) MarkedBytes() uint64 {
	return m.rb.GetCardinality()
}

// Stats summarizes the marked regions.
type Stats struct {
	MarkedBytes uint64
	Regions     int
	Extent      uint32 // one past the highest marked address, 0 if empty
}

// Stats walks the bitmap and returns occupancy statistics. Intended for
// debugging output, not hot paths.
func (m *RegionMap) Stats() Stats {
	s := Stats{MarkedBytes: m.rb.GetCardinality()}
	if m.rb.IsEmpty() {
		return s
	}

	it := m.rb.Iterator()
	var prev uint32
	first := true
	for it.HasNext() {
		v := it.Next()
		if first || v != prev+1 {
			s.Regions++
		}
		prev = v
		first = false
	}
	s.Extent = prev + 1
	return s
}
