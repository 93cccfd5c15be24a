package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/automator/internal/logging"
	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/observability"
	"go.uber.org/zap"
)

// Factory creates the store for a new session.
type Factory func(sessionID string) (*builder.Store, error)

// NewFactory returns a Factory that builds stores with the given options and
// tags each one with its session ID.
func NewFactory(opts ...builder.Option) Factory {
	return func(sessionID string) (*builder.Store, error) {
		all := make([]builder.Option, 0, len(opts)+1)
		all = append(all, opts...)
		all = append(all, builder.WithSessionID(sessionID))
		return builder.New(all...)
	}
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	factory Factory

	mu     sync.Mutex // Global lock for the maps
	stores map[string]*builder.Store
	locks  map[string]*lockEntry

	logger  *zap.Logger
	metrics *observability.Metrics
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics tracks open sessions on the given collectors.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager creates a new Session Manager backed by factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		stores:  make(map[string]*builder.Store),
		locks:   make(map[string]*lockEntry),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open returns the store for sessionID, creating it on first use.
func (m *Manager) Open(sessionID string) (*builder.Store, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[sessionID]; ok {
		return s, nil
	}

	s, err := m.factory(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	m.stores[sessionID] = s
	m.metrics.SessionOpened()
	m.logger.Info("session opened", zap.String("session_id", sessionID))
	return s, nil
}

// Get returns the store for an existing session.
func (m *Manager) Get(sessionID string) (*builder.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[sessionID]
	return s, ok
}

// Close discards a session. It reports whether the session existed.
// Close waits for a running WithSession turn on the same session to finish,
// so it must not be called from inside that turn.
func (m *Manager) Close(sessionID string) bool {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	m.mu.Lock()
	s, ok := m.stores[sessionID]
	delete(m.stores, sessionID)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.Release()
	m.metrics.SessionClosed()
	m.logger.Info("session closed", zap.String("session_id", sessionID))
	return true
}

// List returns the IDs of open sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.stores))
	for id := range m.stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithSession opens the session and runs fn while holding its lock, so a
// multi-step turn is not interleaved with other turns on the same session.
func (m *Manager) WithSession(ctx context.Context, sessionID string, fn func(context.Context, *builder.Store) error) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}

	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	// Opened under the session lock so a concurrent Close cannot hand fn a
	// store that was already discarded.
	store, err := m.Open(sessionID)
	if err != nil {
		return err
	}
	return fn(ctx, store)
}
