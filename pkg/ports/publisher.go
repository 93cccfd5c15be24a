package ports

import (
	"context"

	"github.com/aretw0/automator/pkg/domain"
)

// EventPublisher defines the interface for broadcasting builder change events.
// Publish is called after the store has released its state lock, so
// implementations may block on I/O but should honor ctx cancellation.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// PublisherFunc adapts a plain function to the EventPublisher interface.
type PublisherFunc func(ctx context.Context, event domain.Event) error

// Publish calls f(ctx, event).
func (f PublisherFunc) Publish(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}
