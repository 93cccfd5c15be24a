package http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/ports"
	"go.uber.org/zap"
)

// Message is a single server-sent event.
type Message struct {
	Event string
	Data  string
}

// StreamManager handles active SSE connections.
// It also serves as the builder's event publisher, broadcasting every change
// event to the subscribers of the event's session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Message]struct{} // SessionID -> Set of Channels
	logger      *zap.Logger
}

var _ ports.EventPublisher = (*StreamManager)(nil)

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *zap.Logger) *StreamManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan Message]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for a session. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan Message]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Subscribers returns the number of open streams for a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast delivers msg to every subscriber of sessionID. Slow clients whose
// buffer is full miss the message.
func (sm *StreamManager) Broadcast(sessionID string, msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	subs, ok := sm.subscribers[sessionID]
	if !ok {
		return
	}
	sm.logger.Debug("broadcasting",
		zap.String("session_id", sessionID),
		zap.String("event", msg.Event),
		zap.Int("subscribers", len(subs)))

	for ch := range subs {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE client buffer full, dropping message", zap.String("session_id", sessionID))
		}
	}
}

// Publish implements ports.EventPublisher.
func (sm *StreamManager) Publish(_ context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	sm.Broadcast(event.SessionID, Message{Event: string(event.Type), Data: string(data)})
	return nil
}
