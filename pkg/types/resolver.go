package types

import (
	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/parser"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/token"
)

// World gives the resolver the packages beyond the file at hand. A
// Snapshot of the package cache is the usual World.
type World interface {
	// Package returns the package view of the package file belongs to.
	Package(file *scope.FileInfo) scope.Members
	// Import returns the package file imports as imp, or nil when it is
	// not loaded.
	Import(file *scope.FileInfo, imp *scope.Import) scope.Members
}

const maxDepth = 64

// Resolver computes types on demand. It memoizes per symbol, so use one
// Resolver per query and do not share it between goroutines.
type Resolver struct {
	world World
	depth int
	memo  map[*scope.Symbol]Typed
	busy  map[*scope.Symbol]bool
}

func NewResolver(w World) *Resolver {
	return &Resolver{world: w, memo: map[*scope.Symbol]Typed{}, busy: map[*scope.Symbol]bool{}}
}

// builtinErrorType gives the predeclared error type its Error method.
var builtinErrorType = func() *Type {
	f, toks, _ := parser.ParseFile([]byte("package builtin\n\ntype error interface {\n\tError() string\n}\n"))
	info := scope.Bind("builtin.go", f, toks)
	sym := info.Scope.Local("error")
	return &Type{Kind: Named, Name: "error", Expr: sym.Type, Scope: info.Scope, Symbol: sym}
}()

func (r *Resolver) enter() bool {
	r.depth++
	return r.depth <= maxDepth
}

func (r *Resolver) leave() { r.depth-- }

// Package returns the package view of the file sc belongs to.
func (r *Resolver) Package(sc *scope.Scope) scope.Members {
	if r.world == nil || sc == nil {
		return nil
	}
	fi := sc.FileInfo()
	if fi == nil {
		return nil
	}
	return r.world.Package(fi)
}

// Lookup resolves a name in sc as seen from token index pos.
func (r *Resolver) Lookup(name string, sc *scope.Scope, pos int) *scope.Symbol {
	if sc == nil {
		return nil
	}
	return sc.Lookup(name, pos, r.Package(sc))
}

// ImportMember returns the exported member name of the package a package
// symbol stands for.
func (r *Resolver) ImportMember(pkg *scope.Symbol, name string) *scope.Symbol {
	m := r.imported(pkg)
	if m == nil {
		return nil
	}
	if s := m.Member(name); s != nil && s.Exported() {
		return s
	}
	return nil
}

func (r *Resolver) imported(pkg *scope.Symbol) scope.Members {
	if r.world == nil || pkg == nil || pkg.Import == nil || pkg.File == nil {
		return nil
	}
	return r.world.Import(pkg.File, pkg.Import)
}

// SymbolType returns the type of a declared symbol.
func (r *Resolver) SymbolType(sym *scope.Symbol) Typed {
	if sym == nil {
		return InvalidTyped
	}
	if t, ok := r.memo[sym]; ok {
		return t
	}
	if r.busy[sym] {
		return InvalidTyped
	}
	r.busy[sym] = true
	t := r.symbolType(sym)
	delete(r.busy, sym)
	r.memo[sym] = t
	return t
}

func (r *Resolver) symbolType(sym *scope.Symbol) Typed {
	switch sym.Kind {
	case scope.Package:
		return Typed{Type: &Type{Kind: Package, Name: sym.Name, Symbol: sym}}
	case scope.Builtin:
		return Typed{Type: &Type{Kind: Builtin, Name: sym.Name, Symbol: sym}}
	case scope.Label:
		return InvalidTyped
	case scope.Type:
		if sym.IsUniverse() {
			if sym.Name == "error" {
				return Typed{Type: builtinErrorType, IsType: true}
			}
			return Typed{Type: &Type{Kind: Basic, Name: sym.Name, Symbol: sym}, IsType: true}
		}
		if spec, ok := sym.Decl.(*ast.TypeSpec); ok && spec.Assign != ast.NoPos {
			t := r.TypeOfType(spec.Type, sym.Scope)
			t.IsType = true
			return t
		}
		pkg := ""
		if sym.File != nil {
			pkg = sym.File.Package
		}
		return Typed{Type: &Type{Kind: Named, Name: sym.Name, Expr: sym.Type, Scope: sym.Scope, Symbol: sym, Pkg: pkg}, IsType: true}
	case scope.Func, scope.Method:
		return Typed{Type: &Type{Kind: Func, Expr: sym.Type, Scope: sym.Scope, Symbol: sym}}
	case scope.Const:
		if sym.IsUniverse() {
			switch sym.Name {
			case "true", "false":
				return basic("bool")
			case "iota":
				return basic("int")
			}
			return basic("nil")
		}
	}

	if sym.Type != nil {
		return r.TypeOfType(sym.Type, sym.Scope).Value()
	}
	if sym.Value == nil {
		return InvalidTyped
	}
	vt := r.TypeOf(sym.Value, sym.Scope, sym.Pos)
	if _, ok := sym.Decl.(*ast.RangeStmt); ok {
		return r.rangeType(vt, sym.Index)
	}
	if sym.Tuple {
		if vt.Kind() == Tuple {
			return r.TupleAt(vt, sym.Index)
		}
		// comma-ok forms: map index, type assertion, receive
		if sym.Index == 1 {
			return basic("bool")
		}
	}
	if vt.Kind() == Tuple {
		return InvalidTyped
	}
	return vt.Value()
}

// TupleAt returns the i-th element of a tuple.
func (r *Resolver) TupleAt(t Typed, i int) Typed {
	if t.Kind() != Tuple || t.Type.Fields == nil {
		return InvalidTyped
	}
	n := 0
	for _, f := range t.Type.Fields.List {
		w := max(len(f.Names), 1)
		if i < n+w {
			return r.TypeOfType(f.Type, t.Type.Scope).Value()
		}
		n += w
	}
	return InvalidTyped
}

// TypeOfType resolves a type expression.
func (r *Resolver) TypeOfType(x ast.Expr, sc *scope.Scope) Typed {
	if x == nil || sc == nil {
		return InvalidTyped
	}
	defer r.leave()
	if !r.enter() {
		return InvalidTyped
	}

	composite := func(k Kind) Typed {
		return Typed{Type: &Type{Kind: k, Expr: x, Scope: sc}, IsType: true}
	}

	switch x := x.(type) {
	case *ast.Ident:
		sym := r.Lookup(x.Name, sc, ast.NoPos)
		if sym == nil || sym.Kind != scope.Type {
			return InvalidTyped
		}
		t := r.SymbolType(sym)
		t.IsType = true
		return t
	case *ast.SelectorExpr:
		id, ok := x.X.(*ast.Ident)
		if !ok {
			return InvalidTyped
		}
		pkg := r.Lookup(id.Name, sc, ast.NoPos)
		if pkg == nil || pkg.Kind != scope.Package {
			return InvalidTyped
		}
		m := r.ImportMember(pkg, x.Sel.Name)
		if m == nil || m.Kind != scope.Type {
			return InvalidTyped
		}
		return r.SymbolType(m)
	case *ast.StarExpr:
		return r.TypeOfType(x.X, sc).Pointer()
	case *ast.ParenExpr:
		return r.TypeOfType(x.X, sc)
	case *ast.IndexExpr:
		return r.TypeOfType(x.X, sc)
	case *ast.Ellipsis:
		return Typed{Type: &Type{Kind: Array, Expr: &ast.ArrayType{Lbrack: ast.NoPos, Elt: x.Elt}, Scope: sc}, IsType: true}
	case *ast.ArrayType:
		return composite(Array)
	case *ast.MapType:
		return composite(Map)
	case *ast.ChanType:
		return composite(Chan)
	case *ast.FuncType:
		return composite(Func)
	case *ast.StructType:
		return composite(Struct)
	case *ast.InterfaceType:
		return composite(Interface)
	}
	return InvalidTyped
}

// TypeOf returns the type of expression x, which appears in scope sc at
// token index pos.
func (r *Resolver) TypeOf(x ast.Expr, sc *scope.Scope, pos int) Typed {
	if x == nil || sc == nil {
		return InvalidTyped
	}
	defer r.leave()
	if !r.enter() {
		return InvalidTyped
	}

	switch x := x.(type) {
	case *ast.Ident:
		if x.Name == "_" {
			return InvalidTyped
		}
		return r.SymbolType(r.Lookup(x.Name, sc, pos))
	case *ast.BasicLit:
		switch x.Kind {
		case token.INT:
			return basic("int")
		case token.FLOAT:
			return basic("float64")
		case token.IMAG:
			return basic("complex128")
		case token.CHAR:
			return basic("rune")
		case token.STRING:
			return basic("string")
		}
		return InvalidTyped
	case *ast.ParenExpr:
		return r.TypeOf(x.X, sc, pos)
	case *ast.FuncLit:
		return Typed{Type: &Type{Kind: Func, Expr: x.Type, Scope: sc}}
	case *ast.CompositeLit:
		if x.Type == nil {
			return InvalidTyped
		}
		return r.TypeOfType(x.Type, sc).Value()
	case *ast.SelectorExpr:
		return r.SymbolType(r.Selection(x, sc, pos))
	case *ast.IndexExpr:
		xt := r.TypeOf(x.X, sc, pos)
		if xt.IsType {
			return xt
		}
		u := r.Underlying(xt)
		if u.Kind() == Func {
			// instantiation of a generic function
			return xt
		}
		return r.Index(xt)
	case *ast.SliceExpr:
		return r.sliceType(r.TypeOf(x.X, sc, pos))
	case *ast.TypeAssertExpr:
		if x.Type == nil {
			return r.TypeOf(x.X, sc, pos)
		}
		return r.TypeOfType(x.Type, sc).Value()
	case *ast.CallExpr:
		return r.callType(x, sc, pos)
	case *ast.StarExpr:
		xt := r.TypeOf(x.X, sc, pos)
		if xt.IsType {
			return xt.Pointer()
		}
		return xt.Deref()
	case *ast.UnaryExpr:
		switch x.Op {
		case token.AND:
			return r.TypeOf(x.X, sc, pos).Pointer()
		case token.ARROW:
			return r.Elem(r.TypeOf(x.X, sc, pos))
		case token.NOT:
			return basic("bool")
		}
		return r.TypeOf(x.X, sc, pos)
	case *ast.BinaryExpr:
		switch x.Op {
		case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ, token.LAND, token.LOR:
			return basic("bool")
		case token.SHL, token.SHR:
			return r.TypeOf(x.X, sc, pos)
		}
		if _, lit := x.X.(*ast.BasicLit); lit {
			if yt := r.TypeOf(x.Y, sc, pos); yt.Valid() {
				return yt
			}
		}
		return r.TypeOf(x.X, sc, pos)
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.StructType, *ast.InterfaceType:
		return r.TypeOfType(x, sc)
	}
	return InvalidTyped
}

// Selection returns the symbol x.Sel selects: a package member when x
// names an import, else a field or method of x's type.
func (r *Resolver) Selection(x *ast.SelectorExpr, sc *scope.Scope, pos int) *scope.Symbol {
	if x.Sel == nil || x.Sel.Name == "" {
		return nil
	}
	xt := r.TypeOf(x.X, sc, pos)
	if xt.Kind() == Package {
		return r.ImportMember(xt.Type.Symbol, x.Sel.Name)
	}
	return r.Member(xt, x.Sel.Name)
}

func (r *Resolver) callType(call *ast.CallExpr, sc *scope.Scope, pos int) Typed {
	fun := call.Fun
	for {
		p, ok := fun.(*ast.ParenExpr)
		if !ok {
			break
		}
		fun = p.X
	}
	ft := r.TypeOf(fun, sc, pos)
	if ft.IsType {
		// conversion
		return ft.Value()
	}
	if ft.Kind() == Builtin {
		return r.builtinCall(ft.Type.Name, call, sc, pos)
	}
	return r.Results(ft)
}

// Results returns the result type of calling a value of function type:
// a single type, a tuple, or invalid for no results.
func (r *Resolver) Results(ft Typed) Typed {
	u := r.Underlying(ft)
	if u.Kind() != Func || u.Level != 0 {
		return InvalidTyped
	}
	fn, ok := u.Type.Expr.(*ast.FuncType)
	if !ok || fn.Results == nil {
		return InvalidTyped
	}
	switch fn.Results.NumFields() {
	case 0:
		return InvalidTyped
	case 1:
		return r.TypeOfType(fn.Results.List[0].Type, u.Type.Scope).Value()
	}
	return Typed{Type: &Type{Kind: Tuple, Fields: fn.Results, Scope: u.Type.Scope}}
}

// builtinCall knows the result types of the predeclared functions; new
// and make take a type argument.
func (r *Resolver) builtinCall(name string, call *ast.CallExpr, sc *scope.Scope, pos int) Typed {
	if len(call.Args) == 0 {
		if name == "recover" {
			return basic("any")
		}
		return InvalidTyped
	}
	switch name {
	case "new":
		return r.TypeOfType(call.Args[0], sc).Value().Pointer()
	case "make":
		return r.TypeOfType(call.Args[0], sc).Value()
	case "len", "cap", "copy":
		return basic("int")
	case "append", "min", "max":
		return r.TypeOf(call.Args[0], sc, pos).Value()
	case "complex":
		return basic("complex128")
	case "real", "imag":
		return basic("float64")
	}
	return InvalidTyped
}

// Underlying follows named types to their type literal, keeping the
// indirection level.
func (r *Resolver) Underlying(t Typed) Typed {
	for i := 0; t.Kind() == Named; i++ {
		if i >= maxDepth {
			return InvalidTyped
		}
		u := r.TypeOfType(t.Type.Expr, t.Type.Scope)
		u.Level += t.Level
		u.IsType = t.IsType
		t = u
	}
	return t
}

// autoDeref lets pointers to arrays be indexed, sliced and ranged over.
func (r *Resolver) autoDeref(t Typed) Typed {
	if t.Type == nil {
		return InvalidTyped
	}
	u := r.Underlying(t)
	if u.Level == 1 && u.Kind() == Array {
		u.Level = 0
	}
	return u
}

// Elem returns the element type of an array, slice, map, channel or
// string.
func (r *Resolver) Elem(t Typed) Typed {
	u := r.autoDeref(t)
	if u.Level != 0 {
		return InvalidTyped
	}
	switch e := u.Type.Expr.(type) {
	case *ast.ArrayType:
		return r.TypeOfType(e.Elt, u.Type.Scope).Value()
	case *ast.MapType:
		return r.TypeOfType(e.Value, u.Type.Scope).Value()
	case *ast.ChanType:
		return r.TypeOfType(e.Value, u.Type.Scope).Value()
	}
	if u.IsBasic("string") {
		return basic("byte")
	}
	return InvalidTyped
}

// Key returns the key type of a map, and int for indexable sequences.
func (r *Resolver) Key(t Typed) Typed {
	u := r.autoDeref(t)
	if u.Level != 0 {
		return InvalidTyped
	}
	switch e := u.Type.Expr.(type) {
	case *ast.MapType:
		return r.TypeOfType(e.Key, u.Type.Scope).Value()
	case *ast.ArrayType:
		return basic("int")
	}
	if u.IsBasic("string") {
		return basic("int")
	}
	return InvalidTyped
}

// Index returns the type of t[i].
func (r *Resolver) Index(t Typed) Typed {
	return r.Elem(t)
}

func (r *Resolver) sliceType(t Typed) Typed {
	u := r.autoDeref(t)
	if u.IsBasic("string") {
		return u.Value()
	}
	if arr, ok := u.Type.Expr.(*ast.ArrayType); ok && u.Level == 0 {
		if arr.Len == nil {
			return t.Value()
		}
		return Typed{Type: &Type{Kind: Array, Expr: &ast.ArrayType{Lbrack: ast.NoPos, Elt: arr.Elt}, Scope: u.Type.Scope}}
	}
	return InvalidTyped
}

// rangeType returns the type of the key (index 0) or value (index 1) of a
// range clause over a value of type t.
func (r *Resolver) rangeType(t Typed, index int) Typed {
	u := r.autoDeref(t)
	if u.Level != 0 {
		return InvalidTyped
	}
	switch u.Kind() {
	case Map, Array:
		if index == 0 {
			return r.Key(u)
		}
		return r.Elem(u)
	case Chan:
		if index == 0 {
			return r.Elem(u)
		}
		return InvalidTyped
	case Basic:
		if u.IsBasic("string") {
			if index == 0 {
				return basic("int")
			}
			return basic("rune")
		}
		if index == 0 {
			return u.Value()
		}
	}
	return InvalidTyped
}
