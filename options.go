package bytedoc

import "github.com/bytedoc/bytedoc/memory"

type options struct {
	capacity int
	width    memory.AddressWidth
	logger   *Logger
}

// Option configures document construction.
type Option func(*options)

// WithCapacity sets the initial capacity hint in bytes. Values <= 0 fall
// back to memory.DefaultCapacity.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// WithAddressWidth selects Narrow (2-byte) or Wide (4-byte) addressing.
// The default is Wide. The width is fixed for the document's lifetime.
func WithAddressWidth(width memory.AddressWidth) Option {
	return func(o *options) {
		o.width = width
	}
}

// WithLogger sets the logger used for document operations.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}
