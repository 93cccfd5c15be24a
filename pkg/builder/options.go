package builder

import (
	"time"

	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/observability"
	"github.com/aretw0/automator/pkg/ports"
	"go.uber.org/zap"
)

// Option defines a functional option for configuring the Store.
type Option func(*Store)

// WithStrict switches missing-reference handling from silent no-op to
// returning domain.ErrWorkflowNotFound / domain.ErrActionNotFound.
func WithStrict(strict bool) Option {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithIDGenerator sets the action identifier generator (default: UUIDs).
func WithIDGenerator(gen ports.IDGenerator) Option {
	return func(s *Store) {
		s.ids = gen
	}
}

// WithPublisher registers a change-event publisher.
func WithPublisher(p ports.EventPublisher) Option {
	return func(s *Store) {
		s.publisher = p
	}
}

// WithSessionID tags emitted events with the owning editor session.
func WithSessionID(id string) Option {
	return func(s *Store) {
		s.sessionID = id
	}
}

// WithLogger sets a structured logger for the store.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics records operations on the given collectors.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithDefaultName sets the name of the default workflow created when no
// workflows are seeded.
func WithDefaultName(name string) Option {
	return func(s *Store) {
		s.defaultName = name
	}
}

// WithWorkflows seeds the store with the given workflows instead of the
// single default one. The first workflow is selected unless WithSelected is used.
func WithWorkflows(workflows ...domain.Workflow) Option {
	return func(s *Store) {
		s.seed = append(s.seed, workflows...)
	}
}

// WithSelected sets the initially selected workflow ID.
func WithSelected(workflowID string) Option {
	return func(s *Store) {
		s.selectedID = workflowID
		s.selectedSet = true
	}
}

// WithLibraryVisible sets the initial catalog-panel visibility (default: visible).
func WithLibraryVisible(visible bool) Option {
	return func(s *Store) {
		s.libraryVisible = visible
	}
}

// WithClock overrides the clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}
