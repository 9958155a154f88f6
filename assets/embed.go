// Package assets embeds the default lesson catalog and the catalog index
// schema so the server runs without any files on disk.
package assets

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed lessons.yaml sql/*.sql
var FS embed.FS

// DefaultCatalog returns the raw embedded lesson catalog (YAML).
func DefaultCatalog() ([]byte, error) {
	return FS.ReadFile("lessons.yaml")
}

// Migration is one schema file, applied in name order.
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the embedded sql/*.sql files in lexical order.
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(FS, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, n := range names {
		b, err := FS.ReadFile(n)
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: n, SQL: string(b)})
	}
	return out, nil
}
