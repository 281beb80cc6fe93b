// internal/state/lock.go
package state

import (
	"sync"

	"github.com/user/sharedctx/internal/types"
)

// sessionLocks hands out one mutex per session id. A nil *sessionLocks
// disables locking.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[types.SessionID]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[types.SessionID]*sync.Mutex)}
}

// lock acquires the mutex for id and returns its release function.
func (l *sessionLocks) lock(id types.SessionID) func() {
	if l == nil {
		return func() {}
	}

	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// forget drops the mutex for id. The caller must hold it.
func (l *sessionLocks) forget(id types.SessionID) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.locks, id)
	l.mu.Unlock()
}
