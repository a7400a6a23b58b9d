package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"guesser/events"
	"guesser/models"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessagePublisher struct {
	mock.Mock
}

func (m *mockMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type mockPublishMetrics struct {
	mock.Mock
}

func (m *mockPublishMetrics) RecordNATSMessagePublished(ctx context.Context, eventType string) {
	m.Called(ctx, eventType)
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, SubjectGameStarted, SubjectFor(events.GameStartedEvent{}))
	assert.Equal(t, SubjectGameFinished, SubjectFor(events.GameFinishedEvent{}))
	assert.Empty(t, SubjectFor(events.HintGrantedEvent{}))
}

func TestGameEventForwarder_Handle_PublishesEnvelope(t *testing.T) {
	publisher := new(mockMessagePublisher)
	metrics := new(mockPublishMetrics)
	forwarder := NewGameEventForwarder(publisher, metrics)
	forwarder.now = func() time.Time { return time.Date(2025, 9, 12, 10, 0, 0, 0, time.UTC) }

	var payload []byte
	publisher.On("Publish", mock.Anything, SubjectGameFinished, mock.Anything).
		Run(func(args mock.Arguments) { payload = args.Get(2).([]byte) }).
		Return(nil)
	metrics.On("RecordNATSMessagePublished", mock.Anything, "game_finished").Return()

	forwarder.Handle(context.Background(), events.GameFinishedEvent{
		GameID: "4b0a2c1e-7f33-4a57-9ad2-5c0d1c6f8e11",
		Owner:  models.NewGuestOwner("Guest-1234"),
		Mode:   "easy",
		Secret: 42,
		Won:    true,
		Score:  9100,
	})

	publisher.AssertExpectations(t)
	metrics.AssertExpectations(t)

	var decoded struct {
		ID        string         `json:"id"`
		Type      string         `json:"type"`
		Source    string         `json:"source"`
		Timestamp time.Time      `json:"timestamp"`
		Payload   map[string]any `json:"payload"`
	}
	require.NoError(t, sonic.Unmarshal(payload, &decoded))
	assert.NotEmpty(t, decoded.ID)
	assert.Equal(t, "game_finished", decoded.Type)
	assert.Equal(t, "guesser", decoded.Source)
	assert.Equal(t, "4b0a2c1e-7f33-4a57-9ad2-5c0d1c6f8e11", decoded.Payload["game_id"])
	assert.Equal(t, true, decoded.Payload["won"])
}

func TestGameEventForwarder_Handle_SkipsInProcessEvents(t *testing.T) {
	publisher := new(mockMessagePublisher)
	forwarder := NewGameEventForwarder(publisher, nil)

	forwarder.Handle(context.Background(), events.HintGrantedEvent{GameID: "a"})

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestGameEventForwarder_Handle_PublishErrorIsSwallowed(t *testing.T) {
	publisher := new(mockMessagePublisher)
	metrics := new(mockPublishMetrics)
	forwarder := NewGameEventForwarder(publisher, metrics)

	publisher.On("Publish", mock.Anything, SubjectGameStarted, mock.Anything).Return(errors.New("nats: timeout"))

	assert.NotPanics(t, func() {
		forwarder.Handle(context.Background(), events.GameStartedEvent{GameID: "a"})
	})
	metrics.AssertNotCalled(t, "RecordNATSMessagePublished", mock.Anything, mock.Anything)
}

func TestGameEventForwarder_Register_OnBus(t *testing.T) {
	publisher := new(mockMessagePublisher)
	forwarder := NewGameEventForwarder(publisher, nil)
	bus := events.NewBus()
	forwarder.Register(bus)

	done := make(chan struct{})
	publisher.On("Publish", mock.Anything, SubjectGameStarted, mock.Anything).
		Run(func(mock.Arguments) { close(done) }).
		Return(nil)

	bus.Emit(context.Background(), events.GameStartedEvent{GameID: "a"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded")
	}
}

func TestNATSClient_NotConnected(t *testing.T) {
	client := NewNATSClient("nats://127.0.0.1:1")

	assert.False(t, client.IsConnected())
	assert.Error(t, client.Publish(context.Background(), SubjectGameStarted, []byte("{}")))
	assert.Error(t, client.EnsureGameEventStream())
	assert.NoError(t, client.Close())
}
