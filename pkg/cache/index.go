package cache

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Entry is an importable package found by the indexer: Prefix is the
// import path without its last element, Name the last element.
type Entry struct {
	Prefix string
	Name   string
}

// Path returns the import path of the entry.
func (e Entry) Path() string {
	if e.Prefix == "" {
		return e.Name
	}
	return e.Prefix + "/" + e.Name
}

// Indexer scans library roots for compiled package archives (pkg/**/*.a)
// and source package directories (src/**/*.go). Each scan replaces the
// previous result as a whole.
type Indexer struct {
	fs    afero.Fs
	roots []string
	skip  []string

	entries atomic.Pointer[[]Entry]
}

func NewIndexer(fsys afero.Fs, skip []string, roots ...string) *Indexer {
	ix := &Indexer{fs: fsys, roots: roots, skip: skip}
	empty := []Entry{}
	ix.entries.Store(&empty)
	return ix
}

// Entries returns the result of the last completed scan.
func (ix *Indexer) Entries() []Entry { return *ix.entries.Load() }

// Scan walks every root and publishes the sorted, deduplicated entries.
func (ix *Indexer) Scan(ctx context.Context) error {
	seen := map[Entry]bool{}
	add := func(importPath string) {
		importPath = strings.Trim(importPath, "/")
		if importPath == "" || hiddenPath(importPath) {
			return
		}
		e := Entry{Prefix: path.Dir(importPath), Name: path.Base(importPath)}
		if e.Prefix == "." {
			e.Prefix = ""
		}
		seen[e] = true
	}

	for _, root := range ix.roots {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("indexing: %w", err)
		}
		if ok, _ := afero.DirExists(ix.fs, root); !ok {
			continue
		}
		fsys := afero.NewIOFS(afero.NewBasePathFs(ix.fs, root))

		archives, err := doublestar.Glob(fsys, "pkg/**/*.a")
		if err != nil {
			return errors.Errorf("globbing archives under %s: %w", root, err)
		}
		for _, a := range archives {
			// pkg/<goos_goarch>/import/path.a
			rel := strings.TrimSuffix(strings.TrimPrefix(a, "pkg/"), ".a")
			if _, rest, ok := strings.Cut(rel, "/"); ok {
				add(rest)
			}
		}

		sources, err := doublestar.Glob(fsys, "src/**/*.go")
		if err != nil {
			return errors.Errorf("globbing sources under %s: %w", root, err)
		}
		for _, f := range sources {
			if skipped(ix.skip, f) {
				continue
			}
			add(strings.TrimPrefix(path.Dir(f), "src"))
		}
	}

	out := make([]Entry, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path() < out[j].Path() })
	ix.entries.Store(&out)
	zerolog.Ctx(ctx).Debug().Int("packages", len(out)).Msg("library index updated")
	return nil
}

// hiddenPath reports import paths tools never suggest: testdata, internal
// and vendor trees, and directories starting with '.' or '_'.
func hiddenPath(p string) bool {
	for _, elem := range strings.Split(p, "/") {
		switch {
		case elem == "testdata", elem == "internal", elem == "vendor":
			return true
		case strings.HasPrefix(elem, "."), strings.HasPrefix(elem, "_"):
			return true
		}
	}
	return false
}
