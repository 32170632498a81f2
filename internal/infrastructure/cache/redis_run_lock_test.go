package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
)

// fakeRedisError satisfies the redis.Error interface so that Script.Run's
// HasErrorPrefix check recognizes the NOSCRIPT reply and falls back to Eval.
type fakeRedisError string

func (e fakeRedisError) Error() string { return string(e) }
func (e fakeRedisError) RedisError()   {}

// fakeLockStore emulates the two Redis commands the lock uses: SETNX and
// the GET-compare-DEL release script.
type fakeLockStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: make(map[string]string)}
}

func (s *fakeLockStore) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.values[key]; held {
		return redis.NewBoolResult(false, nil)
	}
	s.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

// expire drops the key as the Redis TTL would.
func (s *fakeLockStore) expire(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

func (s *fakeLockStore) holder(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *fakeLockStore) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values[keys[0]] == args[0].(string) {
		delete(s.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

// EvalSha forces Script.Run to fall back to Eval.
func (s *fakeLockStore) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	return redis.NewCmdResult(nil, fakeRedisError("NOSCRIPT No matching script"))
}

func (s *fakeLockStore) EvalRO(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return s.Eval(ctx, script, keys, args...)
}

func (s *fakeLockStore) EvalShaRO(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	return s.EvalSha(ctx, sha1, keys, args...)
}

func (s *fakeLockStore) ScriptExists(ctx context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (s *fakeLockStore) ScriptLoad(ctx context.Context, script string) *redis.StringCmd {
	return redis.NewStringResult("", fakeRedisError("NOSCRIPT No matching script"))
}

func TestRedisRunLock_AcquireAndRelease(t *testing.T) {
	store := newFakeLockStore()
	lock := NewRedisRunLock(store, time.Minute)

	release, err := lock.Acquire(context.Background())
	require.NoError(t, err)

	_, held := store.holder(runLockKey)
	assert.True(t, held)

	release()

	_, held = store.holder(runLockKey)
	assert.False(t, held)
}

func TestRedisRunLock_SecondAcquireRefused(t *testing.T) {
	store := newFakeLockStore()
	lock := NewRedisRunLock(store, time.Minute)

	release, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	_, err = lock.Acquire(context.Background())
	assert.ErrorIs(t, err, connector.ErrRunInProgress)
}

func TestRedisRunLock_StaleReleaseKeepsNewHolder(t *testing.T) {
	store := newFakeLockStore()
	lock := NewRedisRunLock(store, time.Minute)

	staleRelease, err := lock.Acquire(context.Background())
	require.NoError(t, err)

	// The first run outlives the TTL, so its key expires and a second run
	// takes the lock.
	store.expire(runLockKey)

	secondRelease, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	newHolder, held := store.holder(runLockKey)
	require.True(t, held)

	// The stale release must not evict the second run's lock.
	staleRelease()

	current, held := store.holder(runLockKey)
	assert.True(t, held)
	assert.Equal(t, newHolder, current)

	secondRelease()
	_, held = store.holder(runLockKey)
	assert.False(t, held)
}
