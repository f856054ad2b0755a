package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies snapshot files (ASCII: "BDS0").
	MagicNumber = 0x42445330
	// FormatVersion is the current snapshot format version (v1.0).
	FormatVersion = 0x00010000

	// HeaderSize is the fixed size of the snapshot header in bytes.
	HeaderSize = 32
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported format version")
	ErrTruncated      = errors.New("truncated snapshot")
)

// SnapshotHeader is the 32-byte header at the start of every snapshot.
type SnapshotHeader struct {
	Magic       uint32          // 0x42445330 ("BDS0")
	Version     uint32          // Format version
	Compression CompressionType // Payload compression
	PayloadSize uint64          // Size of the stored (possibly compressed) payload
	Checksum    uint32          // CRC32C of the stored payload
}

// marshal encodes the header into a fixed 32-byte little-endian frame.
// Layout: magic u32 | version u32 | compression u8 | pad [3]u8 |
// payloadSize u64 | checksum u32 | reserved [8]u8.
func (h *SnapshotHeader) marshal() [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	buf[8] = byte(h.Compression)
	binary.LittleEndian.PutUint64(buf[12:], h.PayloadSize)
	binary.LittleEndian.PutUint32(buf[20:], h.Checksum)
	return buf
}

// unmarshal decodes and validates a header frame.
func (h *SnapshotHeader) unmarshal(buf [HeaderSize]byte) error {
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	h.Version = binary.LittleEndian.Uint32(buf[4:])
	h.Compression = CompressionType(buf[8])
	h.PayloadSize = binary.LittleEndian.Uint64(buf[12:])
	h.Checksum = binary.LittleEndian.Uint32(buf[20:])

	if h.Magic != MagicNumber {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidVersion, h.Version)
	}
	return nil
}
