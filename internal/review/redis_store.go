package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL bounds how long an unapplied review survives.
const DefaultSessionTTL = 24 * time.Hour

// maxUpdateAttempts bounds optimistic retries when another writer touches
// the same session between WATCH and EXEC.
const maxUpdateAttempts = 10

// RedisStore keeps session snapshots in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient creates a store from an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, prefix: "review:", ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Get loads a snapshot, or ErrSessionNotFound when it is missing or expired.
func (s *RedisStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review session %s: %w", id, err)
	}
	return decodeSnapshot(data)
}

// Put saves a snapshot and refreshes its TTL.
func (s *RedisStore) Put(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(snap.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save review session %s: %w", snap.ID, err)
	}
	return nil
}

// Update reads, mutates and writes a snapshot under WATCH, retrying when a
// concurrent write invalidates the transaction.
func (s *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) (*Snapshot, error) {
	key := s.key(id)
	var updated *Snapshot

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load review session %s: %w", id, err)
		}
		snap, err := decodeSnapshot(data)
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
		encoded, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to encode session snapshot: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = snap
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	log.Printf("[store] review session %s: update gave up after %d conflicting writes", id, maxUpdateAttempts)
	return nil, ErrSessionConflict
}

// Delete removes a snapshot.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete review session %s: %w", id, err)
	}
	log.Printf("[store] review session %s deleted", id)
	return nil
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
