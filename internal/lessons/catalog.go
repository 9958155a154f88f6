// internal/lessons/catalog.go
//
// Catalog file loading.
//
// Catalog format (YAML):
//
//	lessons:
//	  - id: articles-a-an
//	    title: "English: Articles (A vs An)"
//	    category: Languages
//	    difficulty: Easy
//	    description: ...
//	    groups: [{ id: group1, title: A, color: chart-3 }, ...]
//	    items:  [{ id: "1", text: apple, correctGroupId: group1, image: /red-apple.png }, ...]
//
// Load behavior:
//   - LoadFile(""): embedded default catalog (assets/lessons.yaml).
//   - LoadFile(path): that file only.
//
// Every lesson must be playable: at least one item and one group, unique
// ids. Dangling correctGroupId values are allowed (the engine grades them
// as wrong) but are logged.

package lessons

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/sortlab/apps/go-server/assets"
	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
)

type catalogFile struct {
	Lessons []Entry `yaml:"lessons"`
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) ([]Entry, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := Validate(f.Lessons); err != nil {
		return nil, err
	}
	return f.Lessons, nil
}

// LoadFile loads the catalog at path, or the embedded default when path is empty.
func LoadFile(path string) ([]Entry, error) {
	if path == "" {
		b, err := assets.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("read embedded catalog: %w", err)
		}
		return Load(bytes.NewReader(b))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Validate checks that every entry has a unique id and can start a session.
func Validate(entries []Entry) error {
	if len(entries) == 0 {
		return errors.New("catalog has no lessons")
	}
	seen := make(map[string]bool, len(entries))
	var errs []error
	for i, e := range entries {
		if e.ID == "" {
			errs = append(errs, fmt.Errorf("lesson %d: missing id", i))
			continue
		}
		if seen[e.ID] {
			errs = append(errs, fmt.Errorf("lesson %q: duplicate id", e.ID))
			continue
		}
		seen[e.ID] = true
		if _, err := game.New(e.Lesson, game.WithShuffler(game.NewSeededShuffler(0))); err != nil {
			errs = append(errs, fmt.Errorf("lesson %q: %w", e.ID, err))
			continue
		}
		for _, id := range DanglingItems(e.Lesson) {
			log.Warn().Str("lesson", e.ID).Str("item", id).Msg("item answer references unknown group")
		}
	}
	return errors.Join(errs...)
}

// DanglingItems lists items whose correctGroupId names no group.
func DanglingItems(l game.Lesson) []string {
	groups := make(map[string]bool, len(l.Groups))
	for _, g := range l.Groups {
		groups[g.ID] = true
	}
	var out []string
	for _, it := range l.Items {
		if !groups[it.CorrectGroupID] {
			out = append(out, it.ID)
		}
	}
	return out
}
