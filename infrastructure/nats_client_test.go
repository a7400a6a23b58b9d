package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupNATS(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			Cmd:          []string{"-js"},
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForLog("Server is ready"),
			Labels: map[string]string{
				"test":      "guesser-infrastructure",
				"test-name": t.Name(),
				"cleanup":   "auto",
			},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate NATS container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "4222/tcp", "nats")
	require.NoError(t, err)
	return endpoint
}

func TestNATSClient_PublishToGameStream(t *testing.T) {
	url := setupNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := NewNATSClient(url)
	require.NoError(t, client.Connect(ctx))
	t.Cleanup(func() { _ = client.Close() })
	assert.True(t, client.IsConnected())

	require.NoError(t, client.EnsureGameEventStream())
	// Second call finds the existing stream
	require.NoError(t, client.EnsureGameEventStream())

	require.NoError(t, client.Publish(ctx, SubjectGameFinished, []byte(`{"id":"1"}`)))

	info, err := client.js.StreamInfo(GameEventStream)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)

	sub, err := client.js.SubscribeSync(SubjectGameFinished, nats.DeliverAll())
	require.NoError(t, err)
	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(msg.Data))
}
