// Package source holds source units: the identity and current text of one
// file, and the immutable result of parsing one revision of it.
package source

import (
	"path/filepath"
	"sort"

	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/diagnostic"
	"github.com/walteh/golens/pkg/parser"
	"github.com/walteh/golens/pkg/position"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/token"
)

// Parsed is everything derived from one revision of a file. It is never
// modified after Parse returns, so any number of readers may share it. A
// reparse builds a new Parsed and the old tree is dropped as a whole.
type Parsed struct {
	Path     string
	Revision int
	Src      []byte

	Tokens      []token.Token
	File        *ast.File
	Info        *scope.FileInfo
	Diagnostics []diagnostic.Diagnostic
	Mapper      *position.Mapper
}

// Parse lexes, parses and binds src.
func Parse(path string, src []byte, rev int) *Parsed {
	f, toks, diags := parser.ParseFile(src)
	m := position.NewMapper(src)
	return &Parsed{
		Path:        path,
		Revision:    rev,
		Src:         src,
		Tokens:      toks,
		File:        f,
		Info:        scope.Bind(path, f, toks),
		Diagnostics: diagnostic.Locate(path, diags, m),
		Mapper:      m,
	}
}

// Dir is the directory the file lives in, which together with the package
// name identifies its package.
func (p *Parsed) Dir() string { return filepath.Dir(p.Path) }

// Package returns the declared package name, empty when the clause is
// missing.
func (p *Parsed) Package() string { return p.Info.Package }

func (p *Parsed) Imports() []*scope.Import { return p.Info.Imports }

// Text returns the source text of token i.
func (p *Parsed) Text(i int) string {
	if i < 0 || i >= len(p.Tokens) {
		return ""
	}
	return p.Tokens[i].Text(p.Src)
}

// Position returns token i as an offset/text pair.
func (p *Parsed) Position(i int) position.RawPosition {
	if i < 0 || i >= len(p.Tokens) {
		return position.RawPosition{Offset: len(p.Src)}
	}
	return position.NewBasicPosition(p.Text(i), p.Tokens[i].Pos)
}

// TokenAt returns the index of the token covering offset, or -1. When the
// offset sits between two tokens, directly after an identifier, that
// identifier wins so a cursor at the end of a word still finds it.
func (p *Parsed) TokenAt(offset int) int {
	i := sort.Search(len(p.Tokens), func(i int) bool { return p.Tokens[i].End() >= offset })
	best := -1
	for ; i < len(p.Tokens) && p.Tokens[i].Pos <= offset; i++ {
		t := p.Tokens[i]
		if t.Len == 0 || !t.Contains(offset) {
			continue
		}
		if best < 0 || t.Kind.IsIdentifier() && !p.Tokens[best].Kind.IsIdentifier() {
			best = i
		}
	}
	return best
}

// IdentAt returns the identifier token at offset, or -1.
func (p *Parsed) IdentAt(offset int) int {
	i := p.TokenAt(offset)
	if i < 0 || !p.Tokens[i].Kind.IsIdentifier() {
		return -1
	}
	return i
}

// ScopeAt returns the innermost scope covering token i.
func (p *Parsed) ScopeAt(i int) *scope.Scope { return p.Info.ScopeAt(i) }
