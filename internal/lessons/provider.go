// internal/lessons/provider.go
//
// Lesson sources for the game engine.
// Responsibilities:
//   - Provider: fetch one lesson by id (the only thing a play session needs).
//   - Catalog: browse lessons with search + category filter.
//   - Entry/Summary: lesson plus the catalog metadata shown in the browser.
//
// The engine never depends on this package; any Provider works.

package lessons

import (
	"context"
	"errors"
	"strings"

	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
)

// ErrNotFound is returned when a lesson id is unknown.
var ErrNotFound = errors.New("lesson not found")

// Provider supplies lessons by id.
type Provider interface {
	Get(ctx context.Context, id string) (game.Lesson, error)
}

// Catalog is a browsable Provider.
type Catalog interface {
	Provider
	List(ctx context.Context, q Query) ([]Summary, error)
	Categories(ctx context.Context) ([]string, error)
}

// Entry is a lesson plus its catalog metadata.
type Entry struct {
	game.Lesson `yaml:",inline"`
	Category    string `json:"category" yaml:"category"`
	Difficulty  string `json:"difficulty" yaml:"difficulty"`
	Description string `json:"description" yaml:"description"`
}

// Summary is the browser card for a lesson.
type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description"`
	ItemCount   int    `json:"itemCount"`
	GroupCount  int    `json:"groupCount"`
}

// Summary builds the browser card for e.
func (e Entry) Summary() Summary {
	return Summary{
		ID:          e.ID,
		Title:       e.Title,
		Category:    e.Category,
		Difficulty:  e.Difficulty,
		Description: e.Description,
		ItemCount:   len(e.Items),
		GroupCount:  len(e.Groups),
	}
}

// Query filters the catalog.
//   - Text: case-insensitive substring of title or description ("" = any).
//   - Category: exact category ("" = any).
type Query struct {
	Text     string
	Category string
}

// Matches reports whether s passes the query.
func (q Query) Matches(s Summary) bool {
	if q.Category != "" && s.Category != q.Category {
		return false
	}
	t := strings.ToLower(strings.TrimSpace(q.Text))
	if t == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Title), t) ||
		strings.Contains(strings.ToLower(s.Description), t)
}
