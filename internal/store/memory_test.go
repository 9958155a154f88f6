package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func testSession(t *testing.T, id string) *game.Session {
	t.Helper()
	s, err := game.New(game.Lesson{
		ID:     "l1",
		Items:  []game.Item{{ID: "a", CorrectGroupID: "g"}, {ID: "b", CorrectGroupID: "g"}},
		Groups: []game.Group{{ID: "g"}},
	}, game.WithID(id), game.WithShuffler(game.NewSeededShuffler(1)))
	require.NoError(t, err)
	return s
}

func TestMemory_SaveUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Save(ctx, testSession(t, "s1")))
	assert.Equal(t, 1, m.Len())

	err := m.Update(ctx, "s1", func(s *game.Session) error {
		return s.Place("a", "g")
	})
	require.NoError(t, err)

	var unplaced []string
	require.NoError(t, m.Update(ctx, "s1", func(s *game.Session) error {
		unplaced = s.Unplaced()
		return nil
	}))
	assert.Equal(t, []string{"b"}, unplaced)
}

func TestMemory_UpdatePassesErrorThrough(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Save(ctx, testSession(t, "s1")))

	err := m.Update(ctx, "s1", func(s *game.Session) error { return s.Submit() })
	assert.ErrorIs(t, err, game.ErrIncomplete)
}

func TestMemory_NotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	err := m.Update(ctx, "missing", func(*game.Session) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "missing"), ErrNotFound)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Save(ctx, testSession(t, "s1")))
	require.NoError(t, m.Delete(ctx, "s1"))
	assert.Equal(t, 0, m.Len())

	err := m.Update(ctx, "s1", func(*game.Session) error { return nil })
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemory_UpdateCanceledContext(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Save(context.Background(), testSession(t, "s1")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := m.Update(ctx, "s1", func(*game.Session) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemoryStore(WithClock(clk.Now))

	require.NoError(t, m.Save(ctx, testSession(t, "old")))
	clk.Advance(30 * time.Minute)
	require.NoError(t, m.Save(ctx, testSession(t, "fresh")))
	clk.Advance(45 * time.Minute)

	// old: idle 75m, fresh: idle 45m
	assert.Equal(t, 1, m.Sweep(ctx, time.Hour))
	assert.Equal(t, 1, m.Len())
	assert.ErrorIs(t, m.Update(ctx, "old", func(*game.Session) error { return nil }), ErrNotFound)

	// touching resets the idle clock
	require.NoError(t, m.Update(ctx, "fresh", func(*game.Session) error { return nil }))
	clk.Advance(50 * time.Minute)
	assert.Equal(t, 0, m.Sweep(ctx, time.Hour))
	assert.Equal(t, 1, m.Len())
}

func TestMemory_ConcurrentUpdatesSerialize(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Save(ctx, testSession(t, "s1")))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Update(ctx, "s1", func(s *game.Session) error {
				if i%2 == 0 {
					return s.Place("a", "g")
				}
				return s.Unplace("a")
			})
		}(i)
	}
	wg.Wait()

	require.NoError(t, m.Update(ctx, "s1", func(s *game.Session) error {
		assert.Equal(t, game.StatePlaying, s.State())
		return nil
	}))
}
