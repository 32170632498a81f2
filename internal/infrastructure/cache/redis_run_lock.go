package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appconnector "github.com/mugfulmuse/woo-connector/internal/application/connector"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
)

// runLockKey is the advisory lock key guarding sync runs against the catalog
const runLockKey = "connector:sync:lock"

// releaseScript deletes the lock only when it still holds this acquisition's
// token, so a release arriving after TTL expiry cannot remove a lock taken
// by a later run.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// runLockClient is the slice of the redis client the lock needs.
type runLockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisRunLock implements the run locker with a Redis SETNX advisory lock.
// This is suitable for distributed deployments where multiple instances
// must not run syncs concurrently. The TTL is a safety net: a crashed run
// releases the catalog after at most one TTL.
type RedisRunLock struct {
	client runLockClient
	key    string
	ttl    time.Duration
}

// NewRedisRunLock creates a Redis-backed run lock with the given TTL.
func NewRedisRunLock(client runLockClient, ttl time.Duration) *RedisRunLock {
	return &RedisRunLock{
		client: client,
		key:    runLockKey,
		ttl:    ttl,
	}
}

// Acquire takes the advisory lock. It returns ErrRunInProgress when another
// run holds it. The returned release function removes the lock only if this
// acquisition still owns it.
func (l *RedisRunLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return nil, connector.ErrRunInProgress
	}

	release := func() {
		// Release must not inherit a cancelled run context
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
	}
	return release, nil
}

// Ensure RedisRunLock implements RunLocker
var _ appconnector.RunLocker = (*RedisRunLock)(nil)
