package events

import (
	"context"
	"sync"
	"time"

	"guesser/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeGameStarted  EventType = "game_started"
	EventTypeHintGranted  EventType = "hint_granted"
	EventTypeGameFinished EventType = "game_finished"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// GameStartedEvent is emitted when a new game begins
type GameStartedEvent struct {
	GameID      string       `json:"game_id"`
	Owner       models.Owner `json:"owner"`
	Mode        string       `json:"mode"`
	MaxNumber   int          `json:"max_number"`
	MaxAttempts int          `json:"max_attempts"`
	StartedAt   time.Time    `json:"started_at"`
}

func (e GameStartedEvent) Type() EventType {
	return EventTypeGameStarted
}

// HintGrantedEvent is emitted when a hint is delivered (or charged)
type HintGrantedEvent struct {
	GameID    string       `json:"game_id"`
	Owner     models.Owner `json:"owner"`
	Mode      string       `json:"mode"`
	Cost      int          `json:"cost"`
	UsedHints int          `json:"used_hints"`
	Delivered bool         `json:"delivered"`
}

func (e HintGrantedEvent) Type() EventType {
	return EventTypeHintGranted
}

// GameFinishedEvent is emitted after a result has been committed
type GameFinishedEvent struct {
	GameID       string       `json:"game_id"`
	Owner        models.Owner `json:"owner"`
	Mode         string       `json:"mode"`
	Secret       int          `json:"secret"`
	Won          bool         `json:"won"`
	Score        int          `json:"score"`
	AttemptsUsed int          `json:"attempts_used"`
	MaxAttempts  int          `json:"max_attempts"`
	UsedHints    int          `json:"used_hints"`
	PlayedAt     time.Time    `json:"played_at"`
}

func (e GameFinishedEvent) Type() EventType {
	return EventTypeGameFinished
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit dispatches an event to every registered handler without waiting for them
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event on transactional bus")
	b.pending = append(b.pending, e)
}

// Flush emits pending events after a successful commit.
// Handlers get a fresh context; the request context may already be done.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	log.WithField("eventCount", len(b.pending)).Debug("Flushed transactional bus")
	b.pending = nil
	return nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
