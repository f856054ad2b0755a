// Package bytedoc provides the memory-arena core of a schema-driven binary
// document format: a single growable buffer that holds a fixed header and a
// graph of pointer-linked values, addressed at a configurable width.
//
// # Quick Start
//
// Build a document:
//
//	doc := bytedoc.New(bytedoc.WithAddressWidth(memory.Narrow))
//	addr, _ := doc.Alloc(encodedValue)
//	_ = doc.SetRoot(addr)
//	raw := doc.Export()
//
// Re-open previously exported bytes:
//
//	doc := bytedoc.Open(raw)
//	root := doc.Root() // 0 means the root was never set
//
// The low-level allocator, pointer sizing and bounds-checked reads live in
// the memory package; encoder layers for concrete value types are built on
// top of it. Snapshot persistence for exported documents lives in the
// persistence package, with pluggable storage backends under blobstore.
//
// # Durability Model
//
// A document is built in memory and exported exactly once; persisting the
// export is the caller's step (see persistence.Manager). There is no
// in-place mutation of stored documents: building a new version means
// building a new document.
package bytedoc
