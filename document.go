package bytedoc

import (
	"context"
	"encoding/binary"

	"github.com/bytedoc/bytedoc/memory"
)

// Document wraps an arena buffer with the header-level operations the
// format defines on top of it: the root pointer and the export step.
//
// A Document is not safe for concurrent use; see the memory package notes
// on the single-writer contract.
type Document struct {
	buf    *memory.Buffer
	logger *Logger
}

// New creates an empty document ready for allocation.
func New(opts ...Option) *Document {
	o := options{
		width:  memory.Wide,
		logger: NoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Document{
		buf:    memory.New(o.capacity, o.width),
		logger: o.logger.WithWidth(o.width.String()),
	}
}

// Open wraps previously exported bytes. The address width is recovered
// from the header; no further validation is performed.
func Open(data []byte, opts ...Option) *Document {
	o := options{logger: NoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	buf := memory.Existing(data)
	return &Document{
		buf:    buf,
		logger: o.logger.WithWidth(buf.Width().String()),
	}
}

// Buffer exposes the underlying arena for encoder layers that need the
// low-level allocation and read primitives directly.
func (d *Document) Buffer() *memory.Buffer { return d.buf }

// Width returns the document's address width.
func (d *Document) Width() memory.AddressWidth { return d.buf.Width() }

// Len returns the current size of the document in bytes.
func (d *Document) Len() int { return d.buf.Len() }

// Alloc appends p to the document and returns its address.
func (d *Document) Alloc(p []byte) (uint32, error) {
	addr, err := d.buf.Alloc(p)
	d.logger.LogAlloc(context.Background(), addr, len(p), err)
	return addr, translateError(err)
}

// Root returns the root pointer address from the header, or 0 if it was
// never set.
func (d *Document) Root() uint32 {
	if d.buf.Width() == memory.Narrow {
		v, ok := d.buf.Get2(memory.RootPointerOffset)
		if !ok {
			return 0
		}
		return uint32(binary.BigEndian.Uint16(v[:]))
	}
	v, ok := d.buf.Get4(memory.RootPointerOffset)
	if !ok {
		return 0
	}
	return binary.BigEndian.Uint32(v[:])
}

// SetRoot points the header's root pointer at addr. Passing 0 clears it.
func (d *Document) SetRoot(addr uint32) error {
	_, err := d.buf.SetAddress(memory.RootPointerOffset, addr, memory.Pointer{Kind: memory.KindStandard})
	return translateError(err)
}

// Export consumes the document and returns its raw bytes for storage or
// transmission. The document is unusable afterwards.
func (d *Document) Export() []byte {
	data := d.buf.Dump()
	d.logger.LogExport(context.Background(), len(data))
	return data
}
