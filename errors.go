package bytedoc

import (
	"errors"
	"fmt"

	"github.com/bytedoc/bytedoc/memory"
)

var (
	// ErrDocumentTooLarge is returned when an allocation would push the
	// document past the maximum offset addressable at its width. The
	// original underlying error can be accessed via errors.Unwrap.
	ErrDocumentTooLarge = errors.New("document too large for its address width")

	// ErrDocumentClosed is returned when using a document after Export.
	ErrDocumentClosed = errors.New("document already exported")
)

// InvalidAddressError indicates a patch outside the document's storage.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type InvalidAddressError struct {
	Addr  uint32
	cause error
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address: %d", e.Addr)
}

func (e *InvalidAddressError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, memory.ErrOutOfSpace) {
		return fmt.Errorf("%w: %w", ErrDocumentTooLarge, err)
	}
	if errors.Is(err, memory.ErrBufferClosed) {
		return fmt.Errorf("%w: %w", ErrDocumentClosed, err)
	}

	var iae *memory.InvalidAddressError
	if errors.As(err, &iae) {
		return &InvalidAddressError{Addr: iae.Addr, cause: err}
	}

	return err
}
