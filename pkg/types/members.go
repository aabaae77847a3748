package types

import (
	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/scope"
)

// Members lists the fields and methods reachable from a value or type of
// type t, including those promoted through embedding. A member declared
// at a shallower embedding depth hides deeper ones of the same name. For
// a package, the exported package members are returned.
func (r *Resolver) Members(t Typed) []*scope.Symbol {
	if t.Kind() == Package {
		m := r.imported(t.Type.Symbol)
		if m == nil {
			return nil
		}
		var out []*scope.Symbol
		for _, s := range m.Members() {
			if s.Exported() {
				out = append(out, s)
			}
		}
		return out
	}
	if t.Level > 1 {
		return nil
	}

	var out []*scope.Symbol
	seen := map[string]bool{}
	visited := map[*Type]bool{}
	add := func(s *scope.Symbol) {
		if s == nil || s.Name == "_" || seen[s.Name] {
			return
		}
		seen[s.Name] = true
		out = append(out, s)
	}

	level := []Typed{t}
	for depth := 0; len(level) > 0 && depth < maxDepth; depth++ {
		var next []Typed
		for _, cur := range level {
			next = append(next, r.direct(cur, add, visited)...)
		}
		level = next
	}
	return out
}

// Member returns the field or method name of t, or nil.
func (r *Resolver) Member(t Typed, name string) *scope.Symbol {
	if !t.Valid() {
		return nil
	}
	for _, m := range r.Members(t) {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// direct adds the members t declares itself and returns its embedded
// types.
func (r *Resolver) direct(t Typed, add func(*scope.Symbol), visited map[*Type]bool) []Typed {
	if !t.Valid() || t.Level > 1 {
		return nil
	}
	owner := ""
	if t.Kind() == Named {
		if visited[t.Type] {
			return nil
		}
		visited[t.Type] = true
		owner = t.Type.Name
		for _, m := range r.methodSet(t.Type.Symbol) {
			add(m)
		}
	}

	u := r.Underlying(t)
	if !u.Valid() || u.Type.Scope == nil {
		return nil
	}
	file := u.Type.Scope.FileInfo()

	var embedded []Typed
	switch e := u.Type.Expr.(type) {
	case *ast.StructType:
		for _, f := range fieldsOf(e.Fields) {
			if len(f.Names) == 0 {
				id := embeddedIdent(f.Type)
				if id == nil {
					continue
				}
				add(MemberSymbol(id, scope.Field, f, u.Type.Scope, file, owner))
				embedded = append(embedded, r.TypeOfType(f.Type, u.Type.Scope).Value())
				continue
			}
			for _, id := range f.Names {
				add(MemberSymbol(id, scope.Field, f, u.Type.Scope, file, owner))
			}
		}
	case *ast.InterfaceType:
		for _, f := range fieldsOf(e.Methods) {
			if len(f.Names) == 0 {
				embedded = append(embedded, r.TypeOfType(f.Type, u.Type.Scope).Value())
				continue
			}
			for _, id := range f.Names {
				add(MemberSymbol(id, scope.Method, f, u.Type.Scope, file, owner))
			}
		}
	}
	return embedded
}

func fieldsOf(fl *ast.FieldList) []*ast.Field {
	if fl == nil {
		return nil
	}
	return fl.List
}

// MemberSymbol builds the symbol of a struct field or interface method
// declared by id. Member symbols are made on demand; two of them are the
// same member when Symbol.Same says so.
func MemberSymbol(id *ast.Ident, kind scope.Kind, f *ast.Field, sc *scope.Scope, file *scope.FileInfo, owner string) *scope.Symbol {
	return &scope.Symbol{
		Name:    id.Name,
		Kind:    kind,
		Ident:   id,
		Decl:    f,
		Type:    f.Type,
		Scope:   sc,
		File:    file,
		Pos:     id.Tok,
		Visible: id.Tok,
		Global:  true,
		Recv:    owner,
	}
}

// embeddedIdent returns the identifier naming an embedded field: T in
// T, *T, pkg.T and *pkg.T.
func embeddedIdent(x ast.Expr) *ast.Ident {
	for {
		switch t := x.(type) {
		case *ast.StarExpr:
			x = t.X
		case *ast.ParenExpr:
			x = t.X
		case *ast.SelectorExpr:
			return t.Sel
		case *ast.IndexExpr:
			x = t.X
		case *ast.Ident:
			return t
		default:
			return nil
		}
	}
}

// methodSet returns the methods declared on a named type across the files
// of its package.
func (r *Resolver) methodSet(sym *scope.Symbol) []*scope.Symbol {
	if sym == nil || sym.File == nil {
		return nil
	}
	if r.world != nil {
		if pkg := r.world.Package(sym.File); pkg != nil {
			return pkg.MethodSet(sym.Name)
		}
	}
	return scope.Merge([]*scope.FileInfo{sym.File}).MethodSet(sym.Name)
}
