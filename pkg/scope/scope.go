package scope

import (
	"sort"

	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/token"
)

// ScopeKind tells the levels of the scope tree apart.
type ScopeKind int

const (
	UniverseScope ScopeKind = iota
	FileScope
	FuncScope
	BlockScope
)

// Scope is one lexical block. Its name table keeps declaration order and
// the first declaration of a name wins.
type Scope struct {
	Outer    *Scope
	Node     ast.Node
	Kind     ScopeKind
	Children []*Scope

	// Start and End are the token indices the scope covers.
	Start, End int

	// Info is set on file scopes.
	Info *FileInfo

	names  map[string]*Symbol
	order  []*Symbol
	labels map[string]*Symbol
}

func newScope(outer *Scope, node ast.Node, kind ScopeKind, start, end int) *Scope {
	s := &Scope{Outer: outer, Node: node, Kind: kind, Start: start, End: end, names: map[string]*Symbol{}}
	if outer != nil {
		outer.Children = append(outer.Children, s)
	}
	return s
}

// Insert declares sym. The blank identifier is never declared. When the
// name is already taken the existing symbol is returned.
func (s *Scope) Insert(sym *Symbol) *Symbol {
	if sym.Name == "_" || sym.Name == "" {
		return nil
	}
	if prev, ok := s.names[sym.Name]; ok {
		return prev
	}
	sym.Scope = s
	s.names[sym.Name] = sym
	s.order = append(s.order, sym)
	return nil
}

// Local returns the symbol declared in this scope only.
func (s *Scope) Local(name string) *Symbol { return s.names[name] }

// Symbols returns the scope's own symbols in declaration order.
func (s *Scope) Symbols() []*Symbol { return s.order }

func (s *Scope) Contains(tok int) bool { return s.Start <= tok && tok <= s.End }

// visible reports whether sym can be referred to at token index pos.
func visible(sym *Symbol, pos int) bool {
	if sym.Global || sym.Pos == ast.NoPos || pos < 0 {
		return true
	}
	return sym.Visible <= pos
}

// Members is the view of a package that name resolution needs: the
// package-level declarations and methods of all its files.
type Members interface {
	Member(name string) *Symbol
	Method(recv, name string) *Symbol
	MethodSet(recv string) []*Symbol
	Members() []*Symbol
}

// Lookup resolves name as seen from token index pos. Locals are visible
// only after their declaration. At the file scope the file's own
// declarations and imports come first, then the other files of the
// package through pkg, then the universe.
func (s *Scope) Lookup(name string, pos int, pkg Members) *Symbol {
	for sc := s; sc != nil; sc = sc.Outer {
		if sym := sc.names[name]; sym != nil && visible(sym, pos) {
			return sym
		}
		if sc.Kind == FileScope && pkg != nil {
			if sym := pkg.Member(name); sym != nil {
				return sym
			}
		}
	}
	return nil
}

// LookupLabel finds a label of the enclosing function.
func (s *Scope) LookupLabel(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.Outer {
		if sc.Kind == FuncScope {
			return sc.labels[name]
		}
	}
	return nil
}

// Labels returns the labels declared in a function scope.
func (s *Scope) Labels() []*Symbol {
	out := make([]*Symbol, 0, len(s.labels))
	for _, l := range s.labels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// Visible collects every symbol in scope at pos, innermost first, each
// name once. Package members from other files and the universe are
// included.
func (s *Scope) Visible(pos int, pkg Members) []*Symbol {
	seen := map[string]bool{}
	var out []*Symbol
	add := func(sym *Symbol) {
		if sym == nil || seen[sym.Name] {
			return
		}
		seen[sym.Name] = true
		out = append(out, sym)
	}
	for sc := s; sc != nil; sc = sc.Outer {
		for _, sym := range sc.order {
			if visible(sym, pos) {
				add(sym)
			}
		}
		if sc.Kind == FileScope && pkg != nil {
			for _, sym := range pkg.Members() {
				add(sym)
			}
		}
	}
	return out
}

// Innermost returns the deepest scope covering token index tok.
func (s *Scope) Innermost(tok int) *Scope {
	cur := s
	for {
		var next *Scope
		for _, c := range cur.Children {
			if c.Contains(tok) {
				next = c
				break
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}

// Function returns the nearest enclosing function scope, or nil.
func (s *Scope) Function() *Scope {
	for sc := s; sc != nil; sc = sc.Outer {
		if sc.Kind == FuncScope {
			return sc
		}
	}
	return nil
}

// File returns the file scope enclosing s, or nil for the universe.
func (s *Scope) File() *Scope {
	for sc := s; sc != nil; sc = sc.Outer {
		if sc.Kind == FileScope {
			return sc
		}
	}
	return nil
}

// FileInfo returns the file the scope belongs to, or nil for the universe.
func (s *Scope) FileInfo() *FileInfo {
	if f := s.File(); f != nil {
		return f.Info
	}
	return nil
}

// Universe holds the predeclared types, functions and constants.
var Universe = buildUniverse()

func buildUniverse() *Scope {
	u := newScope(nil, nil, UniverseScope, 0, int(^uint(0)>>1))
	add := func(names map[string]bool, kind Kind) {
		sorted := make([]string, 0, len(names))
		for n := range names {
			sorted = append(sorted, n)
		}
		sort.Strings(sorted)
		for _, n := range sorted {
			u.Insert(&Symbol{Name: n, Kind: kind, Pos: ast.NoPos, Visible: ast.NoPos, Global: true})
		}
	}
	add(token.PrimitiveTypes, Type)
	add(token.BuiltinFuncs, Builtin)
	add(token.Constants, Const)
	return u
}
