// Package refs answers position driven questions about symbols: what is
// under the cursor, where it is declared, where it is used, and how to
// rename it.
package refs

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/token"
	"github.com/walteh/golens/pkg/types"
)

// Index is the set of files a search runs over, plus the package world
// names resolve in. A cache snapshot is an Index.
type Index interface {
	types.World
	File(path string) *source.Parsed
	Files() []*source.Parsed
}

// Link is a navigation target. Line is 1-based, Column is the 1-based
// display column.
type Link struct {
	File   string `json:"file" yaml:"file"`
	Offset int    `json:"offset" yaml:"offset"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// Location is one search result.
type Location struct {
	File        string `json:"file" yaml:"file"`
	Offset      int    `json:"offset" yaml:"offset"`
	Length      int    `json:"length" yaml:"length"`
	Line        int    `json:"line" yaml:"line"`
	Column      int    `json:"column" yaml:"column"`
	LineText    string `json:"lineText" yaml:"lineText"`
	Declaration bool   `json:"declaration" yaml:"declaration"`
}

// Edit replaces Length bytes at Offset of File with NewText.
type Edit struct {
	File    string `json:"file" yaml:"file"`
	Offset  int    `json:"offset" yaml:"offset"`
	Length  int    `json:"length" yaml:"length"`
	NewText string `json:"newText" yaml:"newText"`
}

// SymbolAt returns the symbol at offset and the token it was found at.
// The path string of an import stands for the imported package.
func SymbolAt(r *types.Resolver, p *source.Parsed, offset int) (*scope.Symbol, int) {
	tok := p.TokenAt(offset)
	if tok < 0 {
		return nil, -1
	}
	path := ast.PathTo(p.File, tok)
	if len(path) == 0 {
		return nil, tok
	}
	switch n := path[len(path)-1].(type) {
	case *ast.Ident:
		return Identify(r, p, path[:len(path)-1], n), tok
	case *ast.BasicLit:
		if spec, ok := enclosingImport(path); ok {
			for _, imp := range p.Imports() {
				if imp.Spec == spec {
					return imp.Symbol, tok
				}
			}
		}
	}
	return nil, tok
}

func enclosingImport(path []ast.Node) (*ast.ImportSpec, bool) {
	if len(path) < 2 {
		return nil, false
	}
	spec, ok := path[len(path)-2].(*ast.ImportSpec)
	return spec, ok
}

// parsedOf finds the parse a symbol was declared in.
func parsedOf(ix Index, p *source.Parsed, sym *scope.Symbol) *source.Parsed {
	if sym.File == nil {
		return nil
	}
	if p != nil && p.Info == sym.File {
		return p
	}
	if f := ix.File(sym.Path()); f != nil && f.Info == sym.File {
		return f
	}
	if p != nil && p.Path == sym.Path() {
		return p
	}
	return ix.File(sym.Path())
}

// Definition returns where the symbol at offset is declared. Predeclared
// and unresolved names have no definition.
func Definition(ctx context.Context, ix Index, p *source.Parsed, offset int) (Link, bool) {
	sym, _ := SymbolAt(types.NewResolver(ix), p, offset)
	if sym == nil || sym.IsUniverse() {
		return Link{}, false
	}
	f := parsedOf(ix, p, sym)
	off := sym.Offset()
	if f == nil || off < 0 {
		zerolog.Ctx(ctx).Debug().Str("symbol", sym.Name).Msg("declaring file not loaded")
		return Link{}, false
	}
	line, _ := f.Mapper.LineCol(off)
	return Link{File: f.Path, Offset: off, Line: line, Column: f.Mapper.DisplayColumn(off)}, true
}

// local reports whether sym can only be referred to from inside the
// scope that declares it.
func local(sym *scope.Symbol) bool {
	switch sym.Kind {
	case scope.Label, scope.Package:
		return true
	case scope.Field, scope.Method:
		return sym.Scope != nil && sym.Scope.Kind != scope.FileScope
	}
	return !sym.Global && sym.Scope != nil && sym.Scope.Kind != scope.FileScope
}

// candidates returns the files a search for sym has to look at, with p
// standing in for any older parse of the same path.
func candidates(ix Index, p *source.Parsed, sym *scope.Symbol) []*source.Parsed {
	if local(sym) {
		if f := parsedOf(ix, p, sym); f != nil {
			return []*source.Parsed{f}
		}
		return nil
	}
	var out []*source.Parsed
	seenP := false
	for _, f := range ix.Files() {
		if p != nil && f.Path == p.Path {
			f, seenP = p, true
		}
		out = append(out, f)
	}
	if p != nil && !seenP {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// region returns the token range of f a search for sym is limited to.
func region(sym *scope.Symbol, f *source.Parsed) (int, int) {
	if sym.Kind == scope.Package || !local(sym) || sym.Scope == nil {
		return 0, len(f.Tokens)
	}
	return sym.Scope.Start, sym.Scope.End
}

// References returns every occurrence of the symbol at offset, the
// declaration included, ordered by file and offset. Occurrences of the
// same name that resolve elsewhere, because a nested scope shadows the
// symbol, are not reported.
func References(ctx context.Context, ix Index, p *source.Parsed, offset int) []Location {
	r := types.NewResolver(ix)
	sym, _ := SymbolAt(r, p, offset)
	if sym == nil || sym.IsUniverse() {
		return nil
	}

	var out []Location
	add := func(f *source.Parsed, tok int) {
		t := f.Tokens[tok]
		line, _ := f.Mapper.LineCol(t.Pos)
		out = append(out, Location{
			File:        f.Path,
			Offset:      t.Pos,
			Length:      t.Len,
			Line:        line,
			Column:      f.Mapper.DisplayColumn(t.Pos),
			LineText:    f.Mapper.LineText(t.Pos),
			Declaration: f.Path == sym.Path() && tok == sym.Pos,
		})
	}

	files := candidates(ix, p, sym)
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		start, end := region(sym, f)
		if sym.Kind == scope.Package && sym.Import != nil && !sym.Import.Explicit && f.Path == sym.Path() {
			add(f, sym.Pos)
		}
		Idents(f.File, func(path []ast.Node, id *ast.Ident) bool {
			if id.Name != sym.Name || id.Tok < start || id.Tok > end {
				return true
			}
			if Identify(r, f, path, id).Same(sym) {
				add(f, id.Tok)
			}
			return true
		})
	}
	zerolog.Ctx(ctx).Debug().Str("symbol", sym.Name).Int("files", len(files)).Int("results", len(out)).Msg("references")
	return out
}

// Rename returns the edits renaming the symbol at offset to name. An
// import without an explicit name is renamed by giving it one.
func Rename(ctx context.Context, ix Index, p *source.Parsed, offset int, name string) ([]Edit, error) {
	if !validName(name) {
		return nil, errors.Errorf("%q is not a valid identifier", name)
	}
	sym, _ := SymbolAt(types.NewResolver(ix), p, offset)
	if sym == nil {
		return nil, errors.New("no symbol at position")
	}
	if sym.IsUniverse() {
		return nil, errors.Errorf("cannot rename predeclared %s", sym.Name)
	}

	locs := References(ctx, ix, p, offset)
	edits := make([]Edit, 0, len(locs))
	for _, l := range locs {
		if l.Declaration && sym.Kind == scope.Package && !sym.Import.Explicit {
			edits = append(edits, Edit{File: l.File, Offset: l.Offset, NewText: name + " "})
			continue
		}
		edits = append(edits, Edit{File: l.File, Offset: l.Offset, Length: l.Length, NewText: name})
	}
	return edits, nil
}

func validName(name string) bool {
	if name == "" || name == "_" || token.Lookup(name).IsKeyword() {
		return false
	}
	for i, c := range name {
		letter := c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c >= 0x80
		if !letter && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}
