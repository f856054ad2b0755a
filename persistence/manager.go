package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bytedoc/bytedoc/blobstore"
	"github.com/bytedoc/bytedoc/resource"
	"golang.org/x/sync/errgroup"
)

// ErrManagerClosed is returned when operations are attempted on a
// closed manager.
var ErrManagerClosed = errors.New("persistence manager is closed")

// ManagerOption configures a Manager.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	compression CompressionType
	controller  *resource.Controller
	concurrency int
	logger      *slog.Logger
}

// WithCompression selects the snapshot payload compression.
func WithCompression(c CompressionType) ManagerOption {
	return func(o *managerOptions) { o.compression = c }
}

// WithController attaches a resource controller for snapshot slots and
// IO pacing.
func WithController(rc *resource.Controller) ManagerOption {
	return func(o *managerOptions) { o.controller = rc }
}

// WithConcurrency bounds the number of parallel saves in SaveAll.
func WithConcurrency(n int) ManagerOption {
	return func(o *managerOptions) { o.concurrency = n }
}

// WithManagerLogger sets the logger for snapshot operations.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(o *managerOptions) { o.logger = l }
}

// Manager moves document snapshots in and out of a blob store. It is
// safe for concurrent use.
type Manager struct {
	store       blobstore.BlobStore
	compression CompressionType
	controller  *resource.Controller
	concurrency int
	logger      *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewManager creates a manager over the given blob store.
func NewManager(store blobstore.BlobStore, optFns ...ManagerOption) *Manager {
	opts := managerOptions{
		compression: CompressionZSTD,
		concurrency: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.logger == nil {
		opts.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Manager{
		store:       store,
		compression: opts.compression,
		controller:  opts.controller,
		concurrency: opts.concurrency,
		logger:      opts.logger,
	}
}

// Save writes an exported document payload to the store as a snapshot
// blob. Writes stream through the controller's IO limiter when one is
// configured.
func (m *Manager) Save(ctx context.Context, name string, payload []byte) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrManagerClosed
	}
	m.mu.RUnlock()

	if err := m.controller.AcquireSnapshot(ctx); err != nil {
		return err
	}
	defer m.controller.ReleaseSnapshot()

	w, err := m.store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create snapshot blob %q: %w", name, err)
	}

	limited := resource.NewRateLimitedWriter(ctx, w, m.controller)
	if err := WriteSnapshot(limited, payload, m.compression); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize snapshot blob %q: %w", name, err)
	}

	m.logger.InfoContext(ctx, "snapshot saved",
		slog.String("blob", name),
		slog.Int("payload_bytes", len(payload)),
		slog.String("compression", m.compression.String()),
	)
	return nil
}

// Load reads a snapshot blob and returns the document payload.
func (m *Manager) Load(ctx context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrManagerClosed
	}
	m.mu.RUnlock()

	blob, err := m.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot blob %q: %w", name, err)
	}

	limited := resource.NewRateLimitedReader(ctx, bytes.NewReader(data), m.controller)
	payload, err := ReadSnapshot(limited)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", name, err)
	}

	m.logger.InfoContext(ctx, "snapshot loaded",
		slog.String("blob", name),
		slog.Int("payload_bytes", len(payload)),
	)
	return payload, nil
}

// SaveAll saves multiple documents concurrently, bounded by the
// configured concurrency. The first error cancels the remaining saves.
func (m *Manager) SaveAll(ctx context.Context, payloads map[string][]byte) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for name, payload := range payloads {
		g.Go(func() error {
			return m.Save(ctx, name, payload)
		})
	}
	return g.Wait()
}

// Close marks the manager closed. In-flight operations finish; new
// operations fail with ErrManagerClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
