package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// FormatVersion is written to byte 0 of every buffer. Bump on breaking
// layout changes.
const FormatVersion = 1

// DefaultCapacity is the initial capacity hint used when none is given.
const DefaultCapacity = 1024

// headerBase is the fixed part of the header before the root pointer:
// byte 0 = format version, byte 1 = width tag.
const headerBase = 2

// RootPointerOffset is the offset of the root pointer field in the header.
const RootPointerOffset = headerBase

var (
	// ErrOutOfSpace is returned when an allocation would reach or exceed
	// the maximum addressable offset for the buffer's width. The buffer is
	// unchanged; the caller cannot retry within the same buffer.
	ErrOutOfSpace = errors.New("memory: not enough space in buffer")

	// ErrBufferClosed is returned when allocating from a buffer whose
	// storage has been consumed by Dump.
	ErrBufferClosed = errors.New("memory: buffer already exported")
)

// InvalidAddressError is returned by SetAddress when the address field
// would extend past the end of storage.
type InvalidAddressError struct {
	Addr uint32 // requested write offset
	Need uint32 // bytes required at Addr
	Len  uint32 // current storage length
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("memory: invalid address %d: need %d bytes, buffer length is %d", e.Addr, e.Need, e.Len)
}

// Buffer is the arena: a growable byte sequence holding the 2-byte header,
// the root pointer field, and every allocated region after them.
//
// Offset 0 is reserved as the null sentinel. No allocation can ever start
// there because the header occupies offsets 0 through 1+width, so a pointer
// field that was never written reads back as absent without a separate
// validity flag.
type Buffer struct {
	data  []byte
	width AddressWidth
}

// New creates a fresh buffer with the given capacity hint and address
// width. The header and a zero-filled root pointer are written immediately;
// allocation begins right after them.
func New(capacity int, width AddressWidth) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	data := make([]byte, 0, capacity)
	data = append(data, FormatVersion, byte(width))
	data = append(data, make([]byte, width.Size())...)
	return &Buffer{data: data, width: width}
}

// Existing wraps a byte sequence obtained from external storage. The width
// is recovered from the header tag at byte 1 (0 means Wide, anything else
// Narrow). No further header validation happens here; malformed input is
// the caller's responsibility.
func Existing(data []byte) *Buffer {
	width := Wide
	if len(data) > 1 && data[1] != 0 {
		width = Narrow
	}
	return &Buffer{data: data, width: width}
}

// Width returns the buffer's address width.
func (b *Buffer) Width() AddressWidth { return b.width }

// Len returns the current storage length. It only grows.
func (b *Buffer) Len() int { return len(b.data) }

// MaxOffset returns the largest offset addressable in this buffer.
func (b *Buffer) MaxOffset() uint32 { return b.width.MaxOffset() }

// wouldExceed reports whether writing n bytes at offset off would reach or
// exceed the maximum addressable offset for w.
func wouldExceed(off uint64, n int, w AddressWidth) bool {
	return off+uint64(n) >= uint64(w.MaxOffset())
}

// Alloc appends p to the end of storage and returns the offset it was
// written at. Allocation is append-only: space is never reused and the
// buffer never shrinks. On ErrOutOfSpace the storage is unchanged.
func (b *Buffer) Alloc(p []byte) (uint32, error) {
	if b.data == nil {
		return 0, ErrBufferClosed
	}
	off := uint64(len(b.data))
	if wouldExceed(off, len(p), b.width) {
		return 0, fmt.Errorf("%w: offset %d + %d bytes reaches max offset %d (%s)",
			ErrOutOfSpace, off, len(p), b.width.MaxOffset(), b.width)
	}
	b.data = append(b.data, p...)
	return uint32(off), nil
}

// PointerSize returns the encoded footprint of ptr at this buffer's width.
func (b *Buffer) PointerSize(ptr Pointer) uint32 {
	return ptr.Footprint(b.width)
}

// BlankPointer returns a zero-filled placeholder of exactly the slot's
// footprint, for reserving a pointer slot before its contents are known.
func (b *Buffer) BlankPointer(ptr Pointer) []byte {
	return make([]byte, ptr.Footprint(b.width))
}

// SetAddress overwrites the width-sized address field at offset at with
// val, big-endian and truncated to the buffer's width. It returns ptr with
// its Addr field replaced by val; Key, Next and Index pass through
// untouched. Writes past the end of storage return *InvalidAddressError
// and leave the buffer unchanged.
func (b *Buffer) SetAddress(at, val uint32, ptr Pointer) (Pointer, error) {
	width := b.width.Size()
	if uint64(at)+uint64(width) > uint64(len(b.data)) {
		return ptr, &InvalidAddressError{Addr: at, Need: width, Len: uint32(len(b.data))}
	}
	if b.width == Narrow {
		binary.BigEndian.PutUint16(b.data[at:], uint16(val))
	} else {
		binary.BigEndian.PutUint32(b.data[at:], val)
	}
	return ptr.WithAddr(val), nil
}

// readable reports whether the window [at, at+n) is a valid read: non-null
// and fully inside storage.
func (b *Buffer) readable(at, n uint32) bool {
	return at != 0 && uint64(at)+uint64(n) <= uint64(len(b.data))
}

// Get1 returns the byte at the given address. The second return is false
// for the null sentinel (address 0) or a window past the end of storage;
// that is the shape of every Get accessor.
func (b *Buffer) Get1(at uint32) (byte, bool) {
	if !b.readable(at, 1) {
		return 0, false
	}
	return b.data[at], true
}

// Get2 returns the 2-byte window starting at the given address.
func (b *Buffer) Get2(at uint32) ([2]byte, bool) {
	var out [2]byte
	if !b.readable(at, 2) {
		return out, false
	}
	copy(out[:], b.data[at:])
	return out, true
}

// Get4 returns the 4-byte window starting at the given address.
func (b *Buffer) Get4(at uint32) ([4]byte, bool) {
	var out [4]byte
	if !b.readable(at, 4) {
		return out, false
	}
	copy(out[:], b.data[at:])
	return out, true
}

// Get8 returns the 8-byte window starting at the given address.
func (b *Buffer) Get8(at uint32) ([8]byte, bool) {
	var out [8]byte
	if !b.readable(at, 8) {
		return out, false
	}
	copy(out[:], b.data[at:])
	return out, true
}

// Get16 returns the 16-byte window starting at the given address.
func (b *Buffer) Get16(at uint32) ([16]byte, bool) {
	var out [16]byte
	if !b.readable(at, 16) {
		return out, false
	}
	copy(out[:], b.data[at:])
	return out, true
}

// Get32 returns the 32-byte window starting at the given address.
func (b *Buffer) Get32(at uint32) ([32]byte, bool) {
	var out [32]byte
	if !b.readable(at, 32) {
		return out, false
	}
	copy(out[:], b.data[at:])
	return out, true
}

// Bytes returns the current storage without copying. The slice aliases the
// buffer and is valid only until the next Alloc; see the package
// concurrency notes.
func (b *Buffer) Bytes() []byte { return b.data }

// Dump consumes the buffer and returns its raw storage for persistence or
// transport. After Dump the buffer is unusable: Alloc reports
// ErrBufferClosed and every read reports absent.
func (b *Buffer) Dump() []byte {
	data := b.data
	b.data = nil
	return data
}
