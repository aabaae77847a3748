package refs

import (
	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/types"
)

// identVisitor calls fn for every identifier with the chain of nodes
// enclosing it, outermost first.
type identVisitor struct {
	ast.BaseVisitor
	stack []ast.Node
	fn    func(path []ast.Node, id *ast.Ident) bool
}

func (v *identVisitor) PreVisit(n ast.Node) bool {
	if id, ok := n.(*ast.Ident); ok {
		if !v.fn(v.stack, id) {
			v.Finish()
		}
		return false
	}
	v.stack = append(v.stack, n)
	return true
}

func (v *identVisitor) EndVisit(n ast.Node) {
	v.stack = v.stack[:len(v.stack)-1]
}

// Idents walks root and calls fn for each identifier until fn returns
// false. The path slice is only valid during the call.
func Idents(root ast.Node, fn func(path []ast.Node, id *ast.Ident) bool) {
	ast.Walk(&identVisitor{fn: fn}, root)
}

// Identify returns the symbol id stands for, or nil when it does not
// resolve. path holds the nodes enclosing id, outermost first, without
// id itself.
func Identify(r *types.Resolver, p *source.Parsed, path []ast.Node, id *ast.Ident) *scope.Symbol {
	if id == nil || id.Tok == ast.NoPos || id.Name == "" || id.Name == "_" {
		return nil
	}
	sc := p.ScopeAt(id.Tok)
	var parent ast.Node
	if len(path) > 0 {
		parent = path[len(path)-1]
	}

	switch n := parent.(type) {
	case *ast.File:
		if n.Name == id {
			return nil
		}
	case *ast.SelectorExpr:
		if n.Sel == id {
			return r.Selection(n, sc, id.Tok)
		}
	case *ast.KeyValueExpr:
		if n.Key == id && len(path) >= 2 {
			if _, ok := path[len(path)-2].(*ast.CompositeLit); ok {
				t := literalType(r, p, path, len(path)-2)
				if r.Underlying(t).Kind() == types.Struct {
					return r.Member(t, id.Name)
				}
			}
		}
	case *ast.Field:
		if isName(n, id) {
			if sym := fieldDecl(p, path, n, id); sym != nil {
				return sym
			}
		}
	case *ast.FuncDecl:
		if n.Name == id {
			if n.IsMethod() {
				return p.Info.Methods[scope.RecvBase(n)][id.Name]
			}
			return declaredAt(p.Info.Scope, id)
		}
	case *ast.LabeledStmt:
		if n.Label == id {
			return sc.LookupLabel(id.Name)
		}
	case *ast.BranchStmt:
		if n.Label == id {
			return sc.LookupLabel(id.Name)
		}
	case *ast.ImportSpec:
		if n.Name == id {
			return declaredAt(p.Info.Scope, id)
		}
	}

	for s := sc; s != nil && s != scope.Universe; s = s.Outer {
		if sym := declaredAt(s, id); sym != nil {
			return sym
		}
	}
	return r.Lookup(id.Name, sc, id.Tok)
}

// declaredAt returns the symbol of s that id declares.
func declaredAt(s *scope.Scope, id *ast.Ident) *scope.Symbol {
	if sym := s.Local(id.Name); sym != nil && sym.Pos == id.Tok {
		return sym
	}
	return nil
}

func isName(f *ast.Field, id *ast.Ident) bool {
	for _, n := range f.Names {
		if n == id {
			return true
		}
	}
	return false
}

// fieldDecl builds the symbol of a struct field or interface method name
// at its declaration. Parameter names are left to scope lookup.
func fieldDecl(p *source.Parsed, path []ast.Node, f *ast.Field, id *ast.Ident) *scope.Symbol {
	if len(path) < 3 {
		return nil
	}
	var kind scope.Kind
	switch path[len(path)-3].(type) {
	case *ast.StructType:
		kind = scope.Field
	case *ast.InterfaceType:
		kind = scope.Method
	default:
		return nil
	}
	owner := ""
	if len(path) >= 4 {
		if spec, ok := path[len(path)-4].(*ast.TypeSpec); ok && spec.Type == path[len(path)-3] {
			owner = spec.Name.Name
		}
	}
	return types.MemberSymbol(id, kind, f, p.ScopeAt(f.First()), p.Info, owner)
}

// literalType returns the type of the composite literal at path[i],
// looking through elided element types to the enclosing literal.
func literalType(r *types.Resolver, p *source.Parsed, path []ast.Node, i int) types.Typed {
	lit, ok := path[i].(*ast.CompositeLit)
	if !ok {
		return types.InvalidTyped
	}
	if lit.Type != nil {
		return r.TypeOfType(lit.Type, p.ScopeAt(lit.First())).Value()
	}
	if i < 1 {
		return types.InvalidTyped
	}
	if kv, ok := path[i-1].(*ast.KeyValueExpr); ok && i >= 2 {
		outer := literalType(r, p, path, i-2)
		if kv.Key == lit {
			return r.Key(outer)
		}
		return r.Elem(outer)
	}
	return r.Elem(literalType(r, p, path, i-1))
}
