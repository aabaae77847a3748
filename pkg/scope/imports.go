package scope

import (
	"path"
	"strconv"
	"strings"

	"golang.org/x/mod/module"

	"github.com/walteh/golens/pkg/ast"
)

// Import is one import of a file.
type Import struct {
	Path string // unquoted import path
	// Name is the name the file refers to the package by: the alias when
	// one is written, otherwise the name guessed from the path.
	Name     string
	Alias    string
	Explicit bool
	Spec     *ast.ImportSpec
	Symbol   *Symbol // nil for blank and dot imports
}

// IsDot reports whether the import merges the package into the file scope.
func (i *Import) IsDot() bool { return i.Explicit && i.Alias == "." }

// IsBlank reports whether the import is for side effects only.
func (i *Import) IsBlank() bool { return i.Explicit && i.Alias == "_" }

// DefaultName guesses the package name of an import path: the last path
// element without a major version suffix or a "go-" prefix.
func DefaultName(importPath string) string {
	p := importPath
	if prefix, _, ok := module.SplitPathVersion(p); ok && prefix != "" {
		p = prefix
	}
	name := path.Base(p)
	if i := strings.Index(name, ".v"); i > 0 {
		if _, err := strconv.Atoi(name[i+2:]); err == nil {
			name = name[:i]
		}
	}
	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	return strings.NewReplacer("-", "_", ".", "_").Replace(name)
}

// Unquote strips the quotes of an import path literal; an unterminated
// literal yields what is there.
func Unquote(lit string) string {
	if s, err := strconv.Unquote(lit); err == nil {
		return s
	}
	return strings.Trim(lit, "\"`")
}
