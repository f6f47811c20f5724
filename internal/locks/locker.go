// Package locks provides per-key advisory locking for multi-step
// read-modify-write operations. The lock is best-effort: it narrows the
// window for two reconciliation runs to interleave writes, it does not
// guarantee exclusion across process crashes.
package locks

import (
	"context"
	"sync"
)

// Locker serializes work per key. Acquire blocks until the lock is held
// or the context is done, and returns the release function.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Memory is an in-process Locker keyed by string. The zero value is not
// usable; construct with NewMemory.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewMemory constructs an in-process Locker.
func NewMemory() *Memory {
	return &Memory{locks: make(map[string]*entry)}
}

// Acquire takes the per-key lock, waiting for the current holder if any.
func (m *Memory) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			m.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(m.locks, key)
			}
			m.mu.Unlock()
		}, nil
	case <-ctx.Done():
		m.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
		return nil, ctx.Err()
	}
}
