package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-review/internal/diff"
	"github.com/jonathan/resume-review/internal/types"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, s
}

func assertSnapshotRoundTrip(t *testing.T, want, got *Snapshot) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Mode, got.Mode)
	assert.Equal(t, want.Decisions, got.Decisions)
	require.Len(t, got.Records, len(want.Records))
	for i := range want.Records {
		assert.Equal(t, want.Records[i].ID, got.Records[i].ID)
		assert.Equal(t, want.Records[i].Key(), got.Records[i].Key())
	}
	for k, at := range want.ReviewedAt {
		assert.True(t, at.Equal(got.ReviewedAt[k]), "reviewed_at for %s", k)
	}
	assert.Equal(t, "Senior Engineer", got.Current["header"].(map[string]any)["current_title"])
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s := newSession(t)
	require.NoError(t, s.Reject(key("skills", 1, "hard_skills")))
	snap := s.Snapshot()
	require.NoError(t, store.Put(ctx, snap))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assertSnapshotRoundTrip(t, snap, got)

	got.Decisions[key("summary", 0, "description")] = types.StatusAccepted
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, again.Decisions, 1, "callers never share state with the store")

	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestRedis(t)

	s := newSession(t)
	require.NoError(t, s.Accept(key("experience", 0, "title")))
	snap := s.Snapshot()
	require.NoError(t, store.Put(ctx, snap))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assertSnapshotRoundTrip(t, snap, got)

	restored := Restore(got, diff.DefaultOptions())
	status, ok := restored.Decision("experience", 0, "title")
	assert.True(t, ok)
	assert.Equal(t, types.StatusAccepted, status)
	assert.Equal(t, s.Stats(), restored.Stats())
}

func TestRedisStore_NotFoundAndDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestRedis(t)

	_, err := store.Get(ctx, "nope")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	require.NoError(t, store.Put(ctx, newSession(t).Snapshot()))
	assert.True(t, mr.Exists("review:s1"))

	require.NoError(t, store.Delete(ctx, "s1"))
	assert.False(t, mr.Exists("review:s1"))
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestRedis(t)

	require.NoError(t, store.Put(ctx, newSession(t).Snapshot()))
	assert.Equal(t, time.Hour, mr.TTL("review:s1"))

	mr.FastForward(30 * time.Minute)
	_, err := store.Get(ctx, "s1")
	require.NoError(t, err)

	mr.FastForward(31 * time.Minute)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_DefaultTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, store.Put(context.Background(), newSession(t).Snapshot()))
	assert.Equal(t, DefaultSessionTTL, mr.TTL("review:s1"))
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore("not-a-url", time.Hour)
	assert.Error(t, err)
}

var concurrentKeys = []types.DecisionKey{
	{Section: "skills", Index: 0, Field: "hard_skills"},
	{Section: "skills", Index: 1, Field: "hard_skills"},
	{Section: "summary", Index: 0, Field: "description"},
	{Section: "experience", Index: 0, Field: "title"},
}

// rejectConcurrently records one rejection per key from separate goroutines.
func rejectConcurrently(t *testing.T, store Store, keys []types.DecisionKey) {
	t.Helper()
	errs := make([]error, len(keys))
	var wg sync.WaitGroup
	for i, k := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = store.Update(context.Background(), "s1", func(snap *Snapshot) error {
				sess := Restore(snap, diff.DefaultOptions())
				if err := sess.Reject(k); err != nil {
					return err
				}
				*snap = *sess.Snapshot()
				return nil
			})
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestStore_UpdateKeepsConcurrentDecisions(t *testing.T) {
	redisStore, _ := setupTestRedis(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, newSession(t).Snapshot()))

			rejectConcurrently(t, store, concurrentKeys)

			got, err := store.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Len(t, got.Decisions, len(concurrentKeys))
			for _, k := range concurrentKeys {
				assert.Equal(t, types.StatusRejected, got.Decisions[k], "decision %s", k)
			}
		})
	}
}

func TestStore_UpdateErrors(t *testing.T) {
	redisStore, _ := setupTestRedis(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			noop := func(*Snapshot) error { return nil }

			_, err := store.Update(ctx, "s1", noop)
			assert.ErrorIs(t, err, ErrSessionNotFound)

			require.NoError(t, store.Put(ctx, newSession(t).Snapshot()))
			boom := errors.New("boom")
			_, err = store.Update(ctx, "s1", func(snap *Snapshot) error {
				snap.Decisions[concurrentKeys[0]] = types.StatusRejected
				return boom
			})
			assert.ErrorIs(t, err, boom)

			got, err := store.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, got.Decisions, "a failed update writes nothing")

			updated, err := store.Update(ctx, "s1", func(snap *Snapshot) error {
				snap.Decisions[concurrentKeys[0]] = types.StatusAccepted
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, types.StatusAccepted, updated.Decisions[concurrentKeys[0]])
		})
	}
}
