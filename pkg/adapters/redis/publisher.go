package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/automator/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix is prepended to the session ID to form the channel name.
const DefaultChannelPrefix = "automator:events:"

// Publisher implements ports.EventPublisher using Redis Pub/Sub.
// Events are encoded as JSON and sent to one channel per editor session.
type Publisher struct {
	client *backend.Client
	prefix string
}

type Option func(*Publisher)

// WithPrefix sets the channel prefix for events.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// New creates a new Redis publisher with options.
func New(address, password string, db int, opts ...Option) *Publisher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis publisher from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		prefix: DefaultChannelPrefix,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the channel name used for a session.
func (p *Publisher) Channel(sessionID string) string {
	return p.prefix + sessionID
}

// Publish sends the event to the session's channel.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.Channel(event.SessionID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Subscribe listens for events of a session until ctx is canceled.
// The returned channel is closed when the subscription ends.
// Messages that do not decode as events are skipped.
func (p *Publisher) Subscribe(ctx context.Context, sessionID string) (<-chan domain.Event, error) {
	sub := p.client.Subscribe(ctx, p.Channel(sessionID))

	// Wait for the subscription confirmation so no event published after
	// Subscribe returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan domain.Event, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event domain.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ping checks connectivity.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
