// internal/store/memory.go
//
// In-memory registry of live rounds.
//
// Characteristics:
//   - Entries are keyed by ID in a go-cache with a sliding TTL; abandoned
//     rounds expire and are purged by the janitor.
//   - Each entry carries its own mutex. Update runs the callback under that
//     lock, which is how single ownership of a game.Session is kept across
//     concurrent HTTP requests.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/robalobadob/wordle/apps/rusdle-server/internal/game"
)

// ErrNotFound is returned for unknown or expired IDs.
var ErrNotFound = errors.New("store: not found")

// Entry is one registered session plus the metadata needed to persist its rounds.
type Entry struct {
	ID        string
	PlayerID  string // empty for guests
	Daily     string // YYYY-MM-DD when the current round is the daily word
	StartedAt time.Time
	Session   *game.Session

	mu sync.Mutex
}

// Store defines the registry interface for live sessions.
type Store interface {
	// Create registers e; its ID must be set and unused.
	Create(ctx context.Context, e *Entry) error

	// Get returns the entry for id.
	// Callers that touch e.Session must go through Update instead.
	Get(ctx context.Context, id string) (*Entry, error)

	// Update runs fn with exclusive access to the entry and refreshes its TTL.
	// fn's error is returned unchanged.
	Update(ctx context.Context, id string, fn func(e *Entry) error) error

	// Delete forgets id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// memory is a go-cache backed Store implementation.
type memory struct {
	c *cache.Cache
}

// NewMemoryStore constructs a Store whose entries expire after ttl without
// use, purged every cleanup interval.
func NewMemoryStore(ttl, cleanup time.Duration) Store {
	return &memory{c: cache.New(ttl, cleanup)}
}

func (m *memory) Create(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		return errors.New("store: empty id")
	}
	return m.c.Add(e.ID, e, cache.DefaultExpiration)
}

func (m *memory) Get(ctx context.Context, id string) (*Entry, error) {
	if x, found := m.c.Get(id); found {
		return x.(*Entry), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(e *Entry) error) error {
	e, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	// Replace fails once the id was deleted or expired while we waited.
	if err := m.c.Replace(id, e, cache.DefaultExpiration); err != nil {
		return ErrNotFound
	}
	return fn(e)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.c.Delete(id)
	return nil
}
