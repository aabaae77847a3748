package cache

import (
	"path/filepath"
	"sort"

	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/types"
)

// Snapshot is an immutable view of the cache. It is what the type
// resolver sees as the world beyond the file at hand.
type Snapshot struct {
	pkgs     map[Key]*Package
	byDir    map[string][]*Package
	resolver *PathResolver
}

var _ types.World = (*Snapshot)(nil)

func sortPackages(list []*Package) {
	sort.Slice(list, func(i, j int) bool { return list[i].Key.Name < list[j].Key.Name })
}

// Lookup returns the package of key, or nil.
func (s *Snapshot) Lookup(key Key) *Package { return s.pkgs[key] }

// Packages returns every package ordered by key.
func (s *Snapshot) Packages() []*Package {
	out := make([]*Package, 0, len(s.pkgs))
	for _, p := range s.pkgs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Dir != out[j].Key.Dir {
			return out[i].Key.Dir < out[j].Key.Dir
		}
		return out[i].Key.Name < out[j].Key.Name
	})
	return out
}

// Files returns the files of every package ordered by path.
func (s *Snapshot) Files() []*source.Parsed {
	var out []*source.Parsed
	for _, p := range s.pkgs {
		for _, f := range p.Files {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// File returns the cached parse of path, or nil.
func (s *Snapshot) File(path string) *source.Parsed {
	for _, p := range s.byDir[filepath.Dir(path)] {
		if f, ok := p.Files[path]; ok {
			return f
		}
	}
	return nil
}

// PackageOf returns the package the file belongs to.
func (s *Snapshot) PackageOf(file *scope.FileInfo) *Package {
	if file == nil {
		return nil
	}
	return s.pkgs[Key{Dir: filepath.Dir(file.Path), Name: file.Package}]
}

// Package implements types.World.
func (s *Snapshot) Package(file *scope.FileInfo) scope.Members {
	if p := s.PackageOf(file); p != nil {
		return p.Members()
	}
	return nil
}

// ImportedPackage resolves an import of file to a package. When the
// directory holds several packages the one named like the import path
// wins, then the first non-empty one.
func (s *Snapshot) ImportedPackage(file *scope.FileInfo, imp *scope.Import) *Package {
	if s.resolver == nil || file == nil || imp == nil {
		return nil
	}
	dir, ok := s.resolver.Dir(imp.Path, filepath.Dir(file.Path))
	if !ok {
		return nil
	}
	list := s.byDir[dir]
	want := scope.DefaultName(imp.Path)
	for _, p := range list {
		if p.Key.Name == want && !p.Empty() {
			return p
		}
	}
	for _, p := range list {
		if !p.Empty() {
			return p
		}
	}
	return nil
}

// Import implements types.World.
func (s *Snapshot) Import(file *scope.FileInfo, imp *scope.Import) scope.Members {
	if p := s.ImportedPackage(file, imp); p != nil {
		return p.Members()
	}
	return nil
}
