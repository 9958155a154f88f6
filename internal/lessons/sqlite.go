// internal/lessons/sqlite.go
//
// SQLite-backed catalog index.
// Responsibilities:
//   - Opening a private in-memory SQLite database (nothing touches disk).
//   - Applying the embedded schema from assets/sql/*.sql (recorded in _migrations).
//   - Indexing catalog entries (items/groups as JSON columns).
//   - Serving Get / List / Categories for the HTTP layer.
//
// The index is rebuilt from the catalog file on every start.

package lessons

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/sortlab/apps/go-server/assets"
	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
)

// SQLIndex is a Catalog over an in-memory SQLite database.
type SQLIndex struct {
	db *sql.DB
}

// OpenIndex creates an empty in-memory index with the schema applied.
// Each call gets its own database.
func OpenIndex(ctx context.Context) (*SQLIndex, error) {
	dsn := "file:lessons-" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// A shared-cache memory database lives as long as one connection does.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLIndex{db: db}, nil
}

// NewIndex opens an index and loads entries into it.
func NewIndex(ctx context.Context, entries []Entry) (*SQLIndex, error) {
	idx, err := OpenIndex(ctx)
	if err != nil {
		return nil, err
	}
	if err := idx.Import(ctx, entries); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return idx, nil
}

// Close releases the database (and with it the index).
func (x *SQLIndex) Close() error { return x.db.Close() }

// migrate applies the embedded schema files once each.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	migrations, err := assets.Migrations()
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	for _, m := range migrations {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, m.Name).Scan(&done)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.Name, err)
		}
		log.Debug().Str("migration", m.Name).Msg("applied")
	}
	return nil
}

// Import replaces the indexed lessons with entries, in one transaction.
func (x *SQLIndex) Import(ctx context.Context, entries []Entry) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lessons`); err != nil {
		return fmt.Errorf("clear lessons: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO lessons
            (id, title, category, difficulty, description, items, groups_json, item_count, group_count)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		items, err := json.Marshal(e.Items)
		if err != nil {
			return fmt.Errorf("encode items of %q: %w", e.ID, err)
		}
		groups, err := json.Marshal(e.Groups)
		if err != nil {
			return fmt.Errorf("encode groups of %q: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Title, e.Category, e.Difficulty, e.Description,
			string(items), string(groups), len(e.Items), len(e.Groups)); err != nil {
			return fmt.Errorf("insert %q: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info().Int("lessons", len(entries)).Msg("lesson index loaded")
	return nil
}

// Get loads a full lesson (with answer key) by id.
func (x *SQLIndex) Get(ctx context.Context, id string) (game.Lesson, error) {
	var (
		l             game.Lesson
		items, groups string
	)
	err := x.db.QueryRowContext(ctx,
		`SELECT id, title, items, groups_json FROM lessons WHERE id=?`, id,
	).Scan(&l.ID, &l.Title, &items, &groups)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Lesson{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	if err != nil {
		return game.Lesson{}, err
	}
	if err := json.Unmarshal([]byte(items), &l.Items); err != nil {
		return game.Lesson{}, fmt.Errorf("decode items of %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(groups), &l.Groups); err != nil {
		return game.Lesson{}, fmt.Errorf("decode groups of %q: %w", id, err)
	}
	return l, nil
}

// List returns summaries matching q, ordered by id.
// Text matching is case-insensitive on title and description.
func (x *SQLIndex) List(ctx context.Context, q Query) ([]Summary, error) {
	var (
		where []string
		args  []any
	)
	if q.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, q.Category)
	}
	if t := strings.ToLower(strings.TrimSpace(q.Text)); t != "" {
		where = append(where, `(instr(lower(title), ?) > 0 OR instr(lower(description), ?) > 0)`)
		args = append(args, t, t)
	}
	query := `SELECT id, title, category, difficulty, description, item_count, group_count FROM lessons`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id`

	rows, err := x.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Title, &s.Category, &s.Difficulty, &s.Description,
			&s.ItemCount, &s.GroupCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Categories returns the distinct non-empty categories, sorted.
func (x *SQLIndex) Categories(ctx context.Context) ([]string, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM lessons WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
