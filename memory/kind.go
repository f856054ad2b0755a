package memory

import "math"

// AddressWidth selects how wide addresses are encoded inside a buffer.
// The width is fixed for the lifetime of a buffer and recorded in its
// header, so readers can recover it from the raw bytes.
type AddressWidth uint8

const (
	// Wide encodes addresses as 4 bytes (max offset 2^32-1).
	// The header width tag for Wide is 0.
	Wide AddressWidth = iota
	// Narrow encodes addresses as 2 bytes (max offset 2^16-1).
	Narrow
)

// Size returns the encoded byte width of a single address.
func (w AddressWidth) Size() uint32 {
	if w == Narrow {
		return 2
	}
	return 4
}

// MaxOffset returns the largest offset addressable at this width.
func (w AddressWidth) MaxOffset() uint32 {
	if w == Narrow {
		return math.MaxUint16
	}
	return math.MaxUint32
}

func (w AddressWidth) String() string {
	if w == Narrow {
		return "narrow"
	}
	return "wide"
}

// PointerKind tags the shape of a pointer-bearing slot embedded in a buffer.
type PointerKind uint8

const (
	// KindNone occupies no bytes.
	KindNone PointerKind = iota
	// KindStandard is a bare address.
	KindStandard
	// KindMapItem is an address plus a key address and a next-entry address.
	KindMapItem
	// KindTableItem is an address, a next-entry address and a 1-byte column
	// index (schemas are small and fixed, 255 columns suffice).
	KindTableItem
	// KindListItem is an address, a next-entry address and a 2-byte list
	// index. The index stays 2 bytes even under Narrow addressing, so a
	// list can exceed 255 items regardless of width.
	KindListItem
)

func (k PointerKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStandard:
		return "standard"
	case KindMapItem:
		return "map-item"
	case KindTableItem:
		return "table-item"
	case KindListItem:
		return "list-item"
	default:
		return "unknown"
	}
}

// pointerFootprints maps each kind to its encoded size, expressed as
// (address fields, trailing fixed bytes). A single table serves both
// widths so the Wide and Narrow paths cannot drift apart.
var pointerFootprints = [...]struct {
	addrs uint32 // fields encoded at AddressWidth.Size() bytes each
	extra uint32 // fixed trailing bytes, width-independent
}{
	KindNone:      {0, 0},
	KindStandard:  {1, 0},
	KindMapItem:   {3, 0},
	KindTableItem: {2, 1},
	KindListItem:  {2, 2},
}

// Pointer describes a pointer-bearing slot. Only the fields relevant to
// Kind are meaningful; the rest stay zero.
type Pointer struct {
	Kind  PointerKind
	Addr  uint32 // address of the pointed-to value, 0 = unset
	Key   uint32 // KindMapItem: address of the key bytes
	Next  uint32 // KindMapItem: address of the next entry
	Index uint16 // KindTableItem column (0-255) or KindListItem index
}

// Footprint returns the encoded byte size of the slot at the given width.
func (p Pointer) Footprint(w AddressWidth) uint32 {
	if int(p.Kind) >= len(pointerFootprints) {
		return 0
	}
	f := pointerFootprints[p.Kind]
	return f.addrs*w.Size() + f.extra
}

// WithAddr returns a copy of p with Addr replaced and every other field
// untouched, so callers can thread pointer metadata through a patch
// without re-deriving it.
func (p Pointer) WithAddr(addr uint32) Pointer {
	p.Addr = addr
	return p
}
