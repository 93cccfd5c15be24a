package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/observability"
	"github.com/aretw0/automator/pkg/ports"
)

type target struct {
	name string
	pub  ports.EventPublisher
}

// Fanout implements ports.EventPublisher by delivering each event to every
// registered publisher in registration order.
// Safe for concurrent use.
type Fanout struct {
	mu      sync.RWMutex
	targets []target
	metrics *observability.Metrics
}

// NewFanout creates an empty fanout. metrics may be nil.
func NewFanout(metrics *observability.Metrics) *Fanout {
	return &Fanout{metrics: metrics}
}

// Add registers a publisher under a name used for metrics and errors.
func (f *Fanout) Add(name string, p ports.EventPublisher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target{name: name, pub: p})
}

// Len returns the number of registered publishers.
func (f *Fanout) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.targets)
}

// Publish delivers the event to all publishers. A failing publisher does not
// prevent delivery to the others; all failures are joined into the result.
func (f *Fanout) Publish(ctx context.Context, event domain.Event) error {
	f.mu.RLock()
	targets := make([]target, len(f.targets))
	copy(targets, f.targets)
	f.mu.RUnlock()

	var errs []error
	for _, t := range targets {
		err := t.pub.Publish(ctx, event)
		f.metrics.ObserveEvent(t.name, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
		}
	}
	return errors.Join(errs...)
}
