// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds live play sessions between HTTP requests; nothing is persisted.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - Map guarded by RWMutex; each entry has its own mutex so actions on
//     one session run one at a time while other sessions proceed.
//   - Last-touched timestamps drive Sweep, which drops idle sessions.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store defines the holding interface for play sessions.
// Implementations may be backed by memory (this package), Redis, etc.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Update runs fn with exclusive access to the session.
	// The error from fn is returned unchanged.
	Update(ctx context.Context, id string, fn func(*game.Session) error) error

	// Delete removes a session. Deleting an unknown id is ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Sweep removes sessions untouched for longer than idle and
	// reports how many were dropped.
	Sweep(ctx context.Context, idle time.Duration) int

	// Len reports the number of live sessions.
	Len() int
}

type entry struct {
	mu      sync.Mutex
	session *game.Session
	touched time.Time
	gone    bool // set under mu when removed from the map
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex      // guards sessions map
	sessions map[string]*entry // keyed by Session.ID()
	now      func() time.Time
}

// Option configures the memory store.
type Option func(*memory)

// WithClock injects the time source used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *memory) { m.now = now }
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore(opts ...Option) Store {
	m := &memory{sessions: make(map[string]*entry), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Save adds or replaces the session in the map.
func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sessions[s.ID()]; ok {
		old.mu.Lock()
		old.gone = true
		old.mu.Unlock()
	}
	m.sessions[s.ID()] = &entry{session: s, touched: m.now()}
	return nil
}

// Update looks up a session and runs fn while holding its lock.
func (m *memory) Update(ctx context.Context, id string, fn func(*game.Session) error) error {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return ErrNotFound
	}
	e.touched = m.now()
	return fn(e.session)
}

// Delete drops a session.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	e.gone = true
	e.mu.Unlock()
	return nil
}

// Sweep drops sessions idle for longer than idle. Sessions busy in
// Update are skipped and looked at again on the next sweep.
func (m *memory) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, e := range m.sessions {
		if ctx.Err() != nil {
			break
		}
		if !e.mu.TryLock() {
			continue
		}
		if e.touched.Before(cutoff) {
			e.gone = true
			delete(m.sessions, id)
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Len reports the number of stored sessions.
func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
