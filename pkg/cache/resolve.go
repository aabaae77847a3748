package cache

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/mod/modfile"
)

// PathResolver maps import paths to directories. The lookup order is the
// vendor directories between the importing file and the root, the main
// module, GOROOT/src and then each GOPATH entry's src directory.
type PathResolver struct {
	fs     afero.Fs
	root   string
	goroot string
	gopath []string

	modPath string
}

// NewPathResolver reads the module path from root/go.mod when present.
func NewPathResolver(fs afero.Fs, root, goroot string, gopath []string) (*PathResolver, error) {
	r := &PathResolver{fs: fs, root: filepath.Clean(root), goroot: goroot, gopath: gopath}
	gomod := filepath.Join(r.root, "go.mod")
	data, err := afero.ReadFile(fs, gomod)
	if err != nil {
		if exists, _ := afero.Exists(fs, gomod); !exists {
			return r, nil
		}
		return nil, errors.Errorf("reading %s: %w", gomod, err)
	}
	mf, err := modfile.ParseLax(gomod, data, nil)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", gomod, err)
	}
	if mf.Module != nil {
		r.modPath = mf.Module.Mod.Path
	}
	return r, nil
}

// ModulePath returns the main module's path, empty outside a module.
func (r *PathResolver) ModulePath() string { return r.modPath }

// Dir resolves importPath as imported from a file in fromDir.
func (r *PathResolver) Dir(importPath, fromDir string) (string, bool) {
	if importPath == "" || strings.HasPrefix(importPath, "/") {
		return "", false
	}
	rel := filepath.FromSlash(importPath)

	if fromDir != "" && within(r.root, fromDir) {
		for d := filepath.Clean(fromDir); ; d = filepath.Dir(d) {
			if r.isDir(filepath.Join(d, "vendor", rel)) {
				return filepath.Join(d, "vendor", rel), true
			}
			if d == r.root || d == filepath.Dir(d) {
				break
			}
		}
	}

	if r.modPath != "" {
		if importPath == r.modPath {
			return r.root, true
		}
		if rest, ok := strings.CutPrefix(importPath, r.modPath+"/"); ok {
			d := filepath.Join(r.root, filepath.FromSlash(rest))
			return d, r.isDir(d)
		}
	}

	roots := make([]string, 0, len(r.gopath)+1)
	if r.goroot != "" {
		roots = append(roots, r.goroot)
	}
	roots = append(roots, r.gopath...)
	for _, root := range roots {
		if d := filepath.Join(root, "src", rel); r.isDir(d) {
			return d, true
		}
	}
	return "", false
}

func (r *PathResolver) isDir(d string) bool {
	ok, err := afero.DirExists(r.fs, d)
	return err == nil && ok
}

func within(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
