package sessionstore

import (
	"context"
	"testing"
	"time"

	"guesser/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
			Labels: map[string]string{
				"test":      "guesser-sessionstore",
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
			t.Logf("Warning: failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	return host + ":" + port.Port()
}

func TestRedisStore_PutGetDelete(t *testing.T) {
	addr := setupRedis(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, NewCodec(game.DefaultCatalog()), time.Hour)

	missing, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, missing)

	session := newTestSession()
	require.NoError(t, store.Put(ctx, "sid", session))

	ttl, err := client.TTL(ctx, KeyPrefix+"sid").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.GameID, got.GameID)
	assert.Equal(t, session.Hints, got.Hints)

	require.NoError(t, client.Set(ctx, KeyPrefix+"bad", `{"version":9,"session":{}}`, 0).Err())
	_, err = store.Get(ctx, "bad")
	assert.ErrorIs(t, err, ErrUnrecognizedSession)

	require.NoError(t, store.Delete(ctx, "sid"))
	gone, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
