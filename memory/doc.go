// Package memory implements the arena buffer at the heart of the bytedoc
// format: a single growable byte sequence that holds a small fixed header
// followed by an append-only graph of pointer-linked values.
//
// The buffer owns three responsibilities and nothing else:
//
//   - bump allocation of raw byte regions, addressed by their offset
//   - encoding and patching of fixed-width big-endian addresses
//   - bounds-checked reads of fixed-size byte windows
//
// Interpreting the bytes (scalars, tables, lists, maps) is the job of the
// encoder layers built on top; this package never parses values.
//
// # Concurrency Model
//
// A Buffer has no internal locking. At most one logical writer may drive
// Alloc and SetAddress, and byte windows returned by Bytes or the Get
// accessors must not be retained across an Alloc, which may grow and
// relocate the backing storage. Callers that need sharing should hold a
// single-writer lock around a build session.
package memory
