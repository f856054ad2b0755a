package persistence

import (
	"errors"
	"fmt"
	"io"

	"github.com/bytedoc/bytedoc/internal/conv"
	"github.com/bytedoc/bytedoc/internal/hash"
)

// WriteSnapshot frames payload as a snapshot and writes it to w. The
// payload is an exported document buffer; it is compressed per the
// given type and protected by a CRC32C over the stored bytes.
func WriteSnapshot(w io.Writer, payload []byte, compression CompressionType) error {
	if len(payload) < 2 {
		return fmt.Errorf("%w: payload smaller than document header", ErrTruncated)
	}

	block, err := Compress(payload, compression)
	if err != nil {
		return fmt.Errorf("failed to compress payload: %w", err)
	}

	header := SnapshotHeader{
		Magic:       MagicNumber,
		Version:     FormatVersion,
		Compression: compression,
		PayloadSize: uint64(len(block)),
		Checksum:    hash.CRC32C(block),
	}

	frame := header.marshal()
	if _, err := w.Write(frame[:]); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	if _, err := w.Write(block); err != nil {
		return fmt.Errorf("failed to write snapshot payload: %w", err)
	}
	return nil
}

// ReadSnapshot reads a snapshot from r, verifies its checksum, and
// returns the decompressed document payload.
func ReadSnapshot(r io.Reader) ([]byte, error) {
	var frame [HeaderSize]byte
	if _, err := io.ReadFull(r, frame[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}

	var header SnapshotHeader
	if err := header.unmarshal(frame); err != nil {
		return nil, err
	}

	size, err := conv.Uint64ToInt(header.PayloadSize)
	if err != nil {
		return nil, fmt.Errorf("invalid payload size: %w", err)
	}

	cr := NewChecksumReader(r)
	block := make([]byte, size)
	if _, err := io.ReadFull(cr, block); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	if err := cr.Verify(header.Checksum); err != nil {
		return nil, err
	}

	payload, err := Decompress(block, header.Compression)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("%w: payload smaller than document header", ErrTruncated)
	}
	return payload, nil
}
