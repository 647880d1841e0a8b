// Package keylock provides a registry of per-key FIFO mutual-exclusion
// locks. Operations on the same key run one at a time in admission
// order; operations on different keys never block each other.
package keylock

import (
	"context"
	"sync"
)

// KeyedLock serializes units of work per key.
//
// Each key holds a chain of batons: a waiter is admitted by recording
// the current tail channel as its predecessor and installing its own
// channel as the new tail. The waiter runs once its predecessor's
// channel closes, and closes its own channel when done. Admission
// happens under a single registry mutex, so admission order is the
// execution order even when callers run on separate OS threads.
type KeyedLock struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

// slot tracks one key's queue. It exists only while at least one
// operation for the key is queued or running.
type slot struct {
	tail chan struct{} // closed when the most recently admitted operation finishes
	refs int           // admitted operations not yet finished (abandoned waiters included until relayed)
}

// New returns an empty lock registry.
func New() *KeyedLock {
	return &KeyedLock{slots: make(map[int64]*slot)}
}

// WithLock runs fn while holding the exclusive lock for key.
//
// If the key is free, fn starts immediately; otherwise the call queues
// behind every earlier admission for that key. fn must not call back
// into WithLock for the same key — the lock is not reentrant and doing
// so deadlocks.
//
// fn's error is returned as-is; the lock is released either way, so a
// failed operation never blocks the waiters behind it. If ctx is
// cancelled while still queued, the call returns ctx.Err() and its
// queue position is skipped without disturbing the order of the
// remaining waiters. An operation that has already started always runs
// to completion.
func (l *KeyedLock) WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{}
		l.slots[key] = s
	}
	pred := s.tail
	done := make(chan struct{})
	s.tail = done
	s.refs++
	l.mu.Unlock()

	if pred != nil {
		select {
		case <-pred:
		case <-ctx.Done():
			// Abandon the queue position but keep the chain intact:
			// once the predecessor finishes, hand the baton straight
			// through to the successor.
			go func() {
				<-pred
				close(done)
				l.release(key)
			}()
			return ctx.Err()
		}
	}

	defer func() {
		close(done)
		l.release(key)
	}()

	return fn(ctx)
}

// release drops one admission for key and deletes the slot once its
// queue has drained, so the registry never grows with the number of
// keys seen over the process lifetime.
func (l *KeyedLock) release(key int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.slots[key]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// Size reports how many keys currently have queued or running
// operations.
func (l *KeyedLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.slots)
}

// Waiters reports how many operations are admitted and not yet
// finished for key, the running one included.
func (l *KeyedLock) Waiters(key int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		return 0
	}

	return s.refs
}
