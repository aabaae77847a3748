// Package cache keeps the packages the engine knows about. Packages are
// fed by a background import pipeline and handed to readers through
// reference counted snapshots.
package cache

import (
	"sort"
	"sync"

	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/source"
)

// Key identifies a package: the directory it lives in and its declared
// name. One directory can hold several packages.
type Key struct {
	Dir  string
	Name string
}

func (k Key) String() string { return k.Dir + "#" + k.Name }

// State is the import state of a package key.
type State int

const (
	Unindexed State = iota
	Importing
	Ready
)

func (s State) String() string {
	switch s {
	case Importing:
		return "importing"
	case Ready:
		return "ready"
	}
	return "unindexed"
}

// Package is an immutable group of parsed files. Adding or removing a
// file produces a new Package; the merged member table is built on first
// use.
type Package struct {
	Key   Key
	Files map[string]*source.Parsed
	// Err records why importing the package failed. A failed package is
	// kept, empty, so it is not retried.
	Err error

	once   sync.Once
	merged *scope.Merged
}

// NewPackage groups files under key.
func NewPackage(key Key, files ...*source.Parsed) *Package {
	p := &Package{Key: key, Files: make(map[string]*source.Parsed, len(files))}
	for _, f := range files {
		p.Files[f.Path] = f
	}
	return p
}

// Members returns the package-level declarations and methods of all
// files. Files that declare the same name resolve in path order.
func (p *Package) Members() *scope.Merged {
	p.once.Do(func() {
		infos := make([]*scope.FileInfo, 0, len(p.Files))
		for _, f := range p.Files {
			infos = append(infos, f.Info)
		}
		p.merged = scope.Merge(infos)
	})
	return p.merged
}

// SortedFiles returns the files ordered by path.
func (p *Package) SortedFiles() []*source.Parsed {
	out := make([]*source.Parsed, 0, len(p.Files))
	for _, f := range p.Files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (p *Package) Empty() bool { return len(p.Files) == 0 }

// with returns a copy of p holding f in place of any earlier parse of the
// same path.
func (p *Package) with(f *source.Parsed) *Package {
	n := NewPackage(p.Key)
	for path, g := range p.Files {
		n.Files[path] = g
	}
	n.Files[f.Path] = f
	return n
}

// without returns a copy of p lacking path.
func (p *Package) without(path string) *Package {
	n := NewPackage(p.Key)
	for q, g := range p.Files {
		if q != path {
			n.Files[q] = g
		}
	}
	return n
}
