package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guesser/game"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces session keys in Redis
const KeyPrefix = "guesser:session:"

// RedisStore keeps encoded sessions in Redis with a sliding TTL
type RedisStore struct {
	client *redis.Client
	codec  *Codec
	ttl    time.Duration
}

// NewRedisClient creates a Redis client and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, codec *Codec, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, codec: codec, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*game.Session, error) {
	data, err := r.client.Get(ctx, KeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return r.codec.Decode(data)
}

func (r *RedisStore) Put(ctx context.Context, id string, session game.Session) error {
	data, err := r.codec.Encode(session)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, KeyPrefix+id, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to put session %s: %w", id, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, KeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}
