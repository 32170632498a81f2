package cache

import (
	"context"
	"sync"

	appconnector "github.com/mugfulmuse/woo-connector/internal/application/connector"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
)

// InMemoryRunLock implements the run locker with a process-local mutex.
// This is suitable for single-instance deployments and tests.
type InMemoryRunLock struct {
	mu     sync.Mutex
	locked bool
}

// NewInMemoryRunLock creates a new in-memory run lock.
func NewInMemoryRunLock() *InMemoryRunLock {
	return &InMemoryRunLock{}
}

// Acquire takes the lock, returning ErrRunInProgress when a run holds it.
func (l *InMemoryRunLock) Acquire(ctx context.Context) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return nil, connector.ErrRunInProgress
	}
	l.locked = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.locked = false
		})
	}
	return release, nil
}

// Ensure InMemoryRunLock implements RunLocker
var _ appconnector.RunLocker = (*InMemoryRunLock)(nil)
