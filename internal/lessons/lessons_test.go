package lessons

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
)

func defaultIndex(t *testing.T) *SQLIndex {
	t.Helper()
	entries, err := LoadFile("")
	require.NoError(t, err)
	idx, err := NewIndex(context.Background(), entries)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func ids(ss []Summary) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.ID)
	}
	return out
}

func TestLoadFile_Embedded(t *testing.T) {
	entries, err := LoadFile("")
	require.NoError(t, err)
	require.Len(t, entries, 7)

	first := entries[0]
	assert.Equal(t, "articles-a-an", first.ID)
	assert.Equal(t, "Languages", first.Category)
	require.Len(t, first.Items, 6)
	assert.Equal(t, "apple", first.Items[0].Text)
	assert.Equal(t, "group1", first.Items[0].CorrectGroupID)
	assert.Equal(t, "/red-apple.png", first.Items[0].Image)

	for _, e := range entries {
		assert.Empty(t, DanglingItems(e.Lesson), e.ID)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", ``, "no lessons"},
		{"unknown field", "lessons:\n  - id: a\n    colour: red\n", "colour"},
		{"no items", "lessons:\n  - id: a\n    title: A\n    groups: [{id: g}]\n", "no items"},
		{"duplicate", "lessons:\n" +
			"  - {id: a, groups: [{id: g}], items: [{id: i, correctGroupId: g}]}\n" +
			"  - {id: a, groups: [{id: g}], items: [{id: i, correctGroupId: g}]}\n", "duplicate id"},
		{"missing id", "lessons:\n  - {title: x, groups: [{id: g}], items: [{id: i}]}\n", "missing id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFile_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessons.yaml")
	body := "lessons:\n" +
		"  - id: tiny\n" +
		"    title: Tiny\n" +
		"    groups: [{id: g1, title: One, color: chart-1}]\n" +
		"    items: [{id: x, text: X, correctGroupId: g1}]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	entries, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Tiny", entries[0].Title)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDanglingItems(t *testing.T) {
	l := game.Lesson{
		Groups: []game.Group{{ID: "g"}},
		Items:  []game.Item{{ID: "a", CorrectGroupID: "g"}, {ID: "b", CorrectGroupID: "zzz"}},
	}
	assert.Equal(t, []string{"b"}, DanglingItems(l))
}

func TestSQLIndex_Get(t *testing.T) {
	ctx := context.Background()
	idx := defaultIndex(t)

	l, err := idx.Get(ctx, "geometry-shapes")
	require.NoError(t, err)
	assert.Equal(t, "Geometry: 2D Shapes", l.Title)
	require.Len(t, l.Groups, 3)
	assert.Equal(t, "Stars & Special", l.Groups[2].Title)
	require.Len(t, l.Items, 6)
	assert.Equal(t, "group3", l.Items[5].CorrectGroupID)

	_, err = idx.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLIndex_List(t *testing.T) {
	ctx := context.Background()
	idx := defaultIndex(t)

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"all", Query{}, []string{
			"ancient-civilizations", "animal-classification", "articles-a-an", "chemistry-elements",
			"geometry-shapes", "plant-parts", "spanish-animals",
		}},
		{"category", Query{Category: "Science"}, []string{"animal-classification", "chemistry-elements", "plant-parts"}},
		{"text title case-insensitive", Query{Text: "ANIMAL"}, []string{"animal-classification", "spanish-animals"}},
		{"text description", Query{Text: "egypt"}, []string{"ancient-civilizations"}},
		{"text and category", Query{Text: "animal", Category: "Languages"}, []string{"spanish-animals"}},
		{"no match", Query{Text: "quantum"}, []string{}},
		{"unknown category", Query{Category: "Music"}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := idx.List(ctx, tc.q)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
			for _, s := range got {
				assert.True(t, tc.q.Matches(s), "index and Query.Matches disagree on %s", s.ID)
			}
		})
	}
}

func TestSQLIndex_SummaryCounts(t *testing.T) {
	idx := defaultIndex(t)
	got, err := idx.List(context.Background(), Query{Text: "plant"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Summary{
		ID:          "plant-parts",
		Title:       "Biology: Plant Parts",
		Category:    "Science",
		Difficulty:  "Easy",
		Description: "Learn about different parts of plants and their functions",
		ItemCount:   5,
		GroupCount:  2,
	}, got[0])
}

func TestSQLIndex_Categories(t *testing.T) {
	idx := defaultIndex(t)
	cats, err := idx.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Languages", "Math", "Science", "Social Studies"}, cats)
}

func TestSQLIndex_ReimportReplaces(t *testing.T) {
	ctx := context.Background()
	idx := defaultIndex(t)
	err := idx.Import(ctx, []Entry{{
		Lesson: game.Lesson{
			ID:     "only",
			Title:  "Only",
			Items:  []game.Item{{ID: "i", CorrectGroupID: "g"}},
			Groups: []game.Group{{ID: "g"}},
		},
	}})
	require.NoError(t, err)

	all, err := idx.List(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, ids(all))
}

func TestSQLIndex_Isolated(t *testing.T) {
	a := defaultIndex(t)
	b, err := OpenIndex(context.Background())
	require.NoError(t, err)
	defer b.Close()

	got, err := b.List(context.Background(), Query{})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = a.List(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, got, 7)
}
