package sessionstore

import (
	"context"
	"testing"
	"time"

	"guesser/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(NewCodec(game.DefaultCatalog()), 0)

	missing, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, missing)

	session := newTestSession()
	require.NoError(t, store.Put(ctx, "sid", session))

	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.GameID, got.GameID)

	// Mutating the returned copy does not change what is stored
	got.Guesses[0] = 99
	again, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, 50, again.Guesses[0])

	require.NoError(t, store.Delete(ctx, "sid"))
	gone, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMemoryStore_Get_Expired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(NewCodec(game.DefaultCatalog()), time.Minute)

	now := time.Date(2025, 9, 12, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Put(ctx, "sid", newTestSession()))

	now = now.Add(2 * time.Minute)
	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, store.Len())
}

func TestMemoryStore_Get_Unrecognized(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(NewCodec(game.DefaultCatalog()), 0)
	store.entries["sid"] = memoryEntry{data: []byte(`{"version":7,"session":{}}`)}

	got, err := store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrUnrecognizedSession)
	assert.Nil(t, got)
}
