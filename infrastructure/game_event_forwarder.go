package infrastructure

import (
	"context"
	"fmt"
	"time"

	"guesser/events"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MessagePublisher sends raw messages to a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// PublishMetrics counts forwarded messages
type PublishMetrics interface {
	RecordNATSMessagePublished(ctx context.Context, eventType string)
}

// EventEnvelope wraps an event for external consumers
type EventEnvelope struct {
	ID        string           `json:"id"`
	Type      events.EventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Source    string           `json:"source"`
	Payload   events.Event     `json:"payload"`
}

const envelopeSource = "guesser"

// Subjects for forwarded events
const (
	SubjectGameStarted  = "games.started"
	SubjectGameFinished = "games.finished"
)

// SubjectFor maps an event to its subject. Events that stay in process map to "".
func SubjectFor(event events.Event) string {
	switch event.Type() {
	case events.EventTypeGameStarted:
		return SubjectGameStarted
	case events.EventTypeGameFinished:
		return SubjectGameFinished
	default:
		return ""
	}
}

// GameEventForwarder relays bus events to the message broker
type GameEventForwarder struct {
	publisher MessagePublisher
	metrics   PublishMetrics
	timeout   time.Duration
	now       func() time.Time
}

// NewGameEventForwarder creates a forwarder. metrics may be nil.
func NewGameEventForwarder(publisher MessagePublisher, metrics PublishMetrics) *GameEventForwarder {
	return &GameEventForwarder{
		publisher: publisher,
		metrics:   metrics,
		timeout:   5 * time.Second,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register subscribes the forwarder to every event it relays
func (f *GameEventForwarder) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeGameStarted, f.Handle)
	bus.Subscribe(events.EventTypeGameFinished, f.Handle)
}

// Handle publishes one event. Failures are logged; the game flow never waits on the broker.
func (f *GameEventForwarder) Handle(ctx context.Context, event events.Event) {
	subject := SubjectFor(event)
	if subject == "" {
		return
	}

	data, err := f.encode(event)
	if err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to encode event")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.publisher.Publish(ctx, subject, data); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"subject":   subject,
			"error":     err,
		}).Error("Failed to forward event")
		return
	}

	if f.metrics != nil {
		f.metrics.RecordNATSMessagePublished(ctx, string(event.Type()))
	}
}

func (f *GameEventForwarder) encode(event events.Event) ([]byte, error) {
	envelope := EventEnvelope{
		ID:        uuid.NewString(),
		Type:      event.Type(),
		Timestamp: f.now(),
		Source:    envelopeSource,
		Payload:   event,
	}
	data, err := sonic.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, nil
}
