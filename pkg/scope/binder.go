package scope

import (
	"math"

	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/token"
)

// FileInfo is the binding result of one source unit.
type FileInfo struct {
	Path    string
	Package string
	Tokens  []token.Token
	AST     *ast.File

	Scope *Scope
	// Scopes maps every scope-opening node to its scope.
	Scopes map[ast.Node]*Scope

	Imports []*Import
	// Globals are the file's package-level declarations, excluding imports
	// and methods.
	Globals []*Symbol
	// Methods maps a receiver base type name to its methods by name.
	Methods map[string]map[string]*Symbol
}

// ImportByName returns the import the file refers to by name.
func (f *FileInfo) ImportByName(name string) *Import {
	for _, imp := range f.Imports {
		if imp.Name == name && !imp.IsBlank() && !imp.IsDot() {
			return imp
		}
	}
	return nil
}

// ScopeAt returns the innermost scope covering token index tok.
func (f *FileInfo) ScopeAt(tok int) *Scope { return f.Scope.Innermost(tok) }

// Bind builds the scope tree of a parsed file.
func Bind(path string, file *ast.File, toks []token.Token) *FileInfo {
	info := &FileInfo{
		Path:    path,
		Tokens:  toks,
		AST:     file,
		Scopes:  map[ast.Node]*Scope{},
		Methods: map[string]map[string]*Symbol{},
	}
	if file.Name != nil {
		info.Package = file.Name.Name
	}
	// the universe is shared, so file scopes are not listed as its children
	fs := newScope(nil, file, FileScope, 0, math.MaxInt)
	fs.Outer = Universe
	fs.Info = info
	info.Scope = fs
	info.Scopes[file] = fs

	b := &binder{info: info, cur: fs, eof: len(toks), shared: map[*ast.BlockStmt]bool{},
		clauseEnd: map[ast.Node]int{}, guards: map[*ast.CaseClause]*guard{}, guardStmts: map[ast.Stmt]bool{}}
	b.declareGlobals(file)
	ast.Walk(b, file)
	return info
}

type guard struct {
	ident *ast.Ident
	x     ast.Expr
	sym   *Symbol
}

type binder struct {
	ast.BaseVisitor
	info *FileInfo
	cur  *Scope
	eof  int

	shared     map[*ast.BlockStmt]bool // function bodies live in the function scope
	clauseEnd  map[ast.Node]int
	guards     map[*ast.CaseClause]*guard
	guardStmts map[ast.Stmt]bool
}

func (b *binder) newSymbol(id *ast.Ident, kind Kind, decl ast.Node) *Symbol {
	return &Symbol{
		Name:    id.Name,
		Kind:    kind,
		Ident:   id,
		Decl:    decl,
		File:    b.info,
		Pos:     id.Tok,
		Visible: id.Tok,
	}
}

func (b *binder) push(n ast.Node, kind ScopeKind, start, end int) {
	if end == ast.NoPos {
		end = b.eof
	}
	s := newScope(b.cur, n, kind, start, end)
	b.info.Scopes[n] = s
	b.cur = s
}

func recvBase(x ast.Expr) string {
	for {
		switch t := x.(type) {
		case *ast.StarExpr:
			x = t.X
		case *ast.ParenExpr:
			x = t.X
		case *ast.IndexExpr:
			x = t.X
		case *ast.Ident:
			return t.Name
		default:
			return ""
		}
	}
}

// RecvBase returns the base type name of a method receiver.
func RecvBase(d *ast.FuncDecl) string {
	if !d.IsMethod() {
		return ""
	}
	return recvBase(d.Recv.List[0].Type)
}

func (b *binder) declareGlobals(file *ast.File) {
	for _, d := range file.Decls {
		switch d := d.(type) {
		case *ast.GenDecl:
			if d.Tok == token.IMPORT {
				for _, s := range d.Specs {
					b.declareImport(s.(*ast.ImportSpec))
				}
				continue
			}
			b.declareSpecs(d, true)
		case *ast.FuncDecl:
			if d.Name == nil || d.Name.Tok == ast.NoPos {
				continue
			}
			if d.IsMethod() {
				recv := RecvBase(d)
				sym := b.newSymbol(d.Name, Method, d)
				sym.Type = d.Type
				sym.Global = true
				sym.Recv = recv
				sym.Scope = b.cur
				if b.info.Methods[recv] == nil {
					b.info.Methods[recv] = map[string]*Symbol{}
				}
				if _, dup := b.info.Methods[recv][sym.Name]; !dup && sym.Name != "_" {
					b.info.Methods[recv][sym.Name] = sym
				}
				continue
			}
			if d.Name.Name == "init" {
				continue
			}
			sym := b.newSymbol(d.Name, Func, d)
			sym.Type = d.Type
			sym.Global = true
			if b.cur.Insert(sym) == nil && sym.Name != "_" {
				b.info.Globals = append(b.info.Globals, sym)
			}
		}
	}
}

func (b *binder) declareImport(spec *ast.ImportSpec) {
	imp := &Import{Path: Unquote(spec.Path.Value), Spec: spec}
	imp.Name = DefaultName(imp.Path)
	if spec.Name != nil {
		imp.Explicit = true
		imp.Alias = spec.Name.Name
		if imp.Alias != "." && imp.Alias != "_" {
			imp.Name = imp.Alias
		}
	}
	b.info.Imports = append(b.info.Imports, imp)
	if imp.IsBlank() || imp.IsDot() || imp.Path == "" {
		return
	}
	id := spec.Name
	if id == nil {
		id = &ast.Ident{Tok: spec.Path.Tok, Name: imp.Name}
	}
	sym := b.newSymbol(id, Package, spec)
	sym.Name = imp.Name
	sym.Global = true
	sym.Import = imp
	imp.Symbol = sym
	b.cur.Insert(sym)
}

// assignValue records where a declared name takes its value from.
func assignValue(sym *Symbol, values []ast.Expr, i, n int) {
	switch {
	case len(values) == n:
		sym.Value = values[i]
	case len(values) == 1:
		sym.Value = values[0]
		sym.Index = i
		sym.Tuple = true
	}
}

func (b *binder) declareSpecs(d *ast.GenDecl, global bool) {
	for _, s := range d.Specs {
		switch s := s.(type) {
		case *ast.ValueSpec:
			kind := Var
			if d.Tok == token.CONST {
				kind = Const
			}
			typ, values := s.Type, s.Values
			if s.Prev != nil {
				typ, values = s.Prev.Type, s.Prev.Values
			}
			for i, id := range s.Names {
				if id.Tok == ast.NoPos {
					continue
				}
				sym := b.newSymbol(id, kind, s)
				sym.Type = typ
				sym.Global = global
				sym.Visible = s.Last() + 1
				assignValue(sym, values, i, len(s.Names))
				b.insert(sym, global)
			}
		case *ast.TypeSpec:
			if s.Name.Tok == ast.NoPos {
				continue
			}
			sym := b.newSymbol(s.Name, Type, s)
			sym.Type = s.Type
			sym.Global = global
			b.insert(sym, global)
		}
	}
}

func (b *binder) insert(sym *Symbol, global bool) {
	if b.cur.Insert(sym) == nil && global && sym.Name != "_" {
		b.info.Globals = append(b.info.Globals, sym)
	}
}

func (b *binder) declareFields(fl *ast.FieldList, kind Kind) {
	if fl == nil {
		return
	}
	for _, f := range fl.List {
		for _, id := range f.Names {
			if id.Tok == ast.NoPos {
				continue
			}
			sym := b.newSymbol(id, kind, f)
			sym.Type = f.Type
			sym.Visible = 0
			b.cur.Insert(sym)
		}
	}
}

func (b *binder) enterFunc(n ast.Node, recv *ast.FieldList, typ *ast.FuncType, body *ast.BlockStmt) {
	end := n.Last()
	if body != nil {
		b.shared[body] = true
		if body.Rbrace == ast.NoPos {
			end = b.eof
		}
	}
	b.push(n, FuncScope, n.First(), end)
	b.declareFields(recv, Arg)
	if typ != nil {
		b.declareFields(typ.Params, Arg)
		b.declareFields(typ.Results, Var)
	}
}

// blockEnd is the last token a statement's scope covers; an unclosed body
// runs to the end of the file.
func (b *binder) blockEnd(n ast.Node, body *ast.BlockStmt) int {
	if body == nil || body.Rbrace == ast.NoPos {
		return b.eof
	}
	return n.Last()
}

func (b *binder) clauses(body *ast.BlockStmt) {
	if body == nil {
		return
	}
	end := b.eof
	if body.Rbrace != ast.NoPos {
		end = body.Rbrace - 1
	}
	for i := len(body.List) - 1; i >= 0; i-- {
		c := body.List[i]
		b.clauseEnd[c] = end
		end = c.First() - 1
	}
}

func (b *binder) Visit(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.FuncDecl:
		b.enterFunc(n, n.Recv, n.Type, n.Body)
	case *ast.FuncLit:
		b.enterFunc(n, nil, n.Type, n.Body)
	case *ast.BlockStmt:
		if !b.shared[n] {
			b.push(n, BlockScope, n.Lbrace, b.blockEnd(n, n))
		}
	case *ast.GenDecl:
		if b.cur.Kind != FileScope {
			b.declareSpecs(n, false)
		}
	case *ast.AssignStmt:
		if n.Tok == token.DEFINE && !b.guardStmts[n] {
			b.declareAssign(n)
		}
	case *ast.LabeledStmt:
		if fn := b.cur.Function(); fn != nil && n.Label.Tok != ast.NoPos {
			if fn.labels == nil {
				fn.labels = map[string]*Symbol{}
			}
			if _, dup := fn.labels[n.Label.Name]; !dup {
				sym := b.newSymbol(n.Label, Label, n)
				sym.Global = true
				sym.Scope = fn
				fn.labels[sym.Name] = sym
			}
		}
	case *ast.IfStmt:
		end := b.blockEnd(n, n.Body)
		if e, ok := n.Else.(*ast.BlockStmt); ok {
			end = b.blockEnd(n, e)
		}
		b.push(n, BlockScope, n.If, end)
	case *ast.ForStmt:
		b.push(n, BlockScope, n.For, b.blockEnd(n, n.Body))
	case *ast.RangeStmt:
		b.push(n, BlockScope, n.For, b.blockEnd(n, n.Body))
		if n.Tok == token.DEFINE {
			b.declareRange(n)
		}
	case *ast.SwitchStmt:
		b.push(n, BlockScope, n.Switch, b.blockEnd(n, n.Body))
		b.clauses(n.Body)
	case *ast.SelectStmt:
		b.push(n, BlockScope, n.Select, b.blockEnd(n, n.Body))
		b.clauses(n.Body)
	case *ast.TypeSwitchStmt:
		b.push(n, BlockScope, n.Switch, b.blockEnd(n, n.Body))
		b.clauses(n.Body)
		b.declareGuard(n)
	case *ast.CaseClause:
		b.push(n, BlockScope, n.Case, b.clauseEndOf(n))
		if g := b.guards[n]; g != nil {
			b.declareClauseVar(n, g)
		}
	case *ast.CommClause:
		b.push(n, BlockScope, n.Case, b.clauseEndOf(n))
	}
	return true
}

func (b *binder) clauseEndOf(n ast.Stmt) int {
	if end, ok := b.clauseEnd[n]; ok {
		return end
	}
	return n.Last()
}

func (b *binder) EndVisit(n ast.Node) {
	if b.cur.Node == n && b.cur.Kind != FileScope {
		b.cur = b.cur.Outer
	}
}

func (b *binder) declareAssign(s *ast.AssignStmt) {
	for i, x := range s.Lhs {
		id, ok := x.(*ast.Ident)
		if !ok || id.Tok == ast.NoPos || b.cur.Local(id.Name) != nil {
			continue
		}
		sym := b.newSymbol(id, Var, s)
		sym.Visible = s.Last() + 1
		assignValue(sym, s.Rhs, i, len(s.Lhs))
		b.cur.Insert(sym)
	}
}

func (b *binder) declareRange(r *ast.RangeStmt) {
	visibleFrom := r.Range + 1
	if r.Body != nil && r.Body.Lbrace != ast.NoPos {
		visibleFrom = r.Body.Lbrace
	}
	for i, x := range []ast.Expr{r.Key, r.Value} {
		id, ok := x.(*ast.Ident)
		if !ok || id.Tok == ast.NoPos {
			continue
		}
		sym := b.newSymbol(id, Var, r)
		sym.Value = r.X
		sym.Index = i
		sym.Visible = visibleFrom
		b.cur.Insert(sym)
	}
}

// declareGuard records the variable of "switch v := x.(type)"; each
// clause gets its own symbol for it.
func (b *binder) declareGuard(s *ast.TypeSwitchStmt) {
	as, ok := s.Assign.(*ast.AssignStmt)
	if !ok || len(as.Lhs) != 1 || len(as.Rhs) != 1 {
		return
	}
	id, ok := as.Lhs[0].(*ast.Ident)
	ta, ok2 := as.Rhs[0].(*ast.TypeAssertExpr)
	if !ok || !ok2 || id.Tok == ast.NoPos {
		return
	}
	b.guardStmts[as] = true

	sym := b.newSymbol(id, Var, s)
	sym.Value = ta.X
	sym.Visible = math.MaxInt
	b.cur.Insert(sym)

	g := &guard{ident: id, x: ta.X, sym: sym}
	if s.Body != nil {
		for _, c := range s.Body.List {
			if cc, ok := c.(*ast.CaseClause); ok {
				b.guards[cc] = g
			}
		}
	}
}

func (b *binder) declareClauseVar(c *ast.CaseClause, g *guard) {
	sym := b.newSymbol(g.ident, Var, c)
	sym.Value = g.x
	if len(c.List) == 1 {
		if id, ok := c.List[0].(*ast.Ident); !ok || id.Name != "nil" {
			sym.Type = c.List[0]
			sym.Value = nil
		}
	}
	sym.Visible = c.Colon
	if c.Colon == ast.NoPos {
		sym.Visible = c.Case
	}
	b.cur.Insert(sym)
}
