// Package ast declares the syntax tree produced by the parser.
//
// Nodes do not store byte offsets. Every node records the indices of the
// tokens it was built from and reports the first and last token index it
// spans; optional children that are missing (as in a half-typed statement)
// are skipped, so spans degrade gracefully. A tree belongs to the one
// parse result that built it and is dropped whole when the file is
// reparsed.
package ast

import "github.com/walteh/golens/pkg/token"

// NoPos is the token index of an absent token.
const NoPos = -1

// Node is implemented by every syntax tree node.
type Node interface {
	First() int // index of the first token of the node, or NoPos
	Last() int  // index of the last token of the node, or NoPos
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

type Decl interface {
	Node
	declNode()
}

type Spec interface {
	Node
	specNode()
}

// ----------------------------------------------------------------------------
// Comments and fields

// Field is a struct field, interface method, parameter or result. An
// embedded field has no names.
type Field struct {
	Names []*Ident
	Type  Expr
	Tag   *BasicLit
}

// FieldList is a parenthesized or braced list of fields.
type FieldList struct {
	Opening int
	List    []*Field
	Closing int
}

func (f *Field) First() int {
	if len(f.Names) > 0 {
		return f.Names[0].First()
	}
	return first(f.Type)
}

func (f *Field) Last() int {
	if f.Tag != nil {
		return f.Tag.Last()
	}
	if p := last(f.Type); p != NoPos {
		return p
	}
	if len(f.Names) > 0 {
		return f.Names[len(f.Names)-1].Last()
	}
	return NoPos
}

func (f *FieldList) First() int {
	if f.Opening != NoPos {
		return f.Opening
	}
	if len(f.List) > 0 {
		return f.List[0].First()
	}
	return NoPos
}

func (f *FieldList) Last() int {
	if f.Closing != NoPos {
		return f.Closing
	}
	if len(f.List) > 0 {
		return f.List[len(f.List)-1].Last()
	}
	return f.Opening
}

// NumFields counts names, treating an unnamed field as one.
func (f *FieldList) NumFields() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, fld := range f.List {
		if len(fld.Names) == 0 {
			n++
		} else {
			n += len(fld.Names)
		}
	}
	return n
}

// ----------------------------------------------------------------------------
// Expressions and types

type (
	// BadExpr stands in for an expression that failed to parse.
	BadExpr struct {
		From, To int
	}

	Ident struct {
		Tok  int
		Name string
	}

	// Ellipsis is the "..." of a variadic parameter or array length.
	Ellipsis struct {
		Tok int
		Elt Expr // may be nil
	}

	BasicLit struct {
		Tok   int
		Kind  token.Kind
		Value string
	}

	FuncLit struct {
		Type *FuncType
		Body *BlockStmt
	}

	CompositeLit struct {
		Type   Expr // may be nil for elided element types
		Lbrace int
		Elts   []Expr
		Rbrace int
	}

	ParenExpr struct {
		Lparen int
		X      Expr
		Rparen int
	}

	SelectorExpr struct {
		X   Expr
		Sel *Ident
	}

	IndexExpr struct {
		X      Expr
		Lbrack int
		Index  Expr
		Rbrack int
	}

	SliceExpr struct {
		X      Expr
		Lbrack int
		Low    Expr
		High   Expr
		Max    Expr
		Slice3 bool
		Rbrack int
	}

	// TypeAssertExpr is x.(T); Type is nil for x.(type) in a type switch.
	TypeAssertExpr struct {
		X      Expr
		Lparen int
		Type   Expr
		Rparen int
	}

	CallExpr struct {
		Fun      Expr
		Lparen   int
		Args     []Expr
		Ellipsis int
		Rparen   int
	}

	// StarExpr is *X: a pointer type or a dereference.
	StarExpr struct {
		Star int
		X    Expr
	}

	UnaryExpr struct {
		OpTok int
		Op    token.Kind
		X     Expr
	}

	BinaryExpr struct {
		X     Expr
		OpTok int
		Op    token.Kind
		Y     Expr
	}

	KeyValueExpr struct {
		Key   Expr
		Colon int
		Value Expr
	}
)

// ChanDir is the direction of a channel type.
type ChanDir int

const (
	SEND ChanDir = 1 << iota
	RECV
)

type (
	// ArrayType is [Len]Elt, or []Elt for a slice when Len is nil.
	ArrayType struct {
		Lbrack int
		Len    Expr
		Elt    Expr
	}

	StructType struct {
		Struct int
		Fields *FieldList
	}

	FuncType struct {
		Func    int // NoPos for method signatures in interfaces
		Params  *FieldList
		Results *FieldList
	}

	InterfaceType struct {
		Interface int
		Methods   *FieldList
	}

	MapType struct {
		Map   int
		Key   Expr
		Value Expr
	}

	ChanType struct {
		Begin int
		Dir   ChanDir
		Value Expr
	}
)

func (x *BadExpr) First() int        { return x.From }
func (x *Ident) First() int          { return x.Tok }
func (x *Ellipsis) First() int       { return x.Tok }
func (x *BasicLit) First() int       { return x.Tok }
func (x *FuncLit) First() int        { return x.Type.First() }
func (x *CompositeLit) First() int   { return firstOf(first(x.Type), x.Lbrace) }
func (x *ParenExpr) First() int      { return x.Lparen }
func (x *SelectorExpr) First() int   { return first(x.X) }
func (x *IndexExpr) First() int      { return first(x.X) }
func (x *SliceExpr) First() int      { return first(x.X) }
func (x *TypeAssertExpr) First() int { return first(x.X) }
func (x *CallExpr) First() int       { return first(x.Fun) }
func (x *StarExpr) First() int       { return x.Star }
func (x *UnaryExpr) First() int      { return x.OpTok }
func (x *BinaryExpr) First() int     { return firstOf(first(x.X), x.OpTok) }
func (x *KeyValueExpr) First() int   { return firstOf(first(x.Key), x.Colon) }
func (x *ArrayType) First() int      { return x.Lbrack }
func (x *StructType) First() int     { return x.Struct }
func (x *FuncType) First() int {
	return firstOf(x.Func, fieldListFirst(x.Params), fieldListFirst(x.Results))
}
func (x *InterfaceType) First() int { return x.Interface }
func (x *MapType) First() int       { return x.Map }
func (x *ChanType) First() int      { return x.Begin }

func (x *BadExpr) Last() int { return x.To }
func (x *Ident) Last() int   { return x.Tok }
func (x *Ellipsis) Last() int {
	return lastOf(last(x.Elt), x.Tok)
}
func (x *BasicLit) Last() int { return x.Tok }
func (x *FuncLit) Last() int {
	if x.Body != nil {
		return x.Body.Last()
	}
	return x.Type.Last()
}
func (x *CompositeLit) Last() int {
	if x.Rbrace != NoPos {
		return x.Rbrace
	}
	if len(x.Elts) > 0 {
		return last(x.Elts[len(x.Elts)-1])
	}
	return x.Lbrace
}
func (x *ParenExpr) Last() int    { return lastOf(x.Rparen, last(x.X), x.Lparen) }
func (x *SelectorExpr) Last() int { return lastOf(lastIdent(x.Sel), last(x.X)) }
func (x *IndexExpr) Last() int    { return lastOf(x.Rbrack, last(x.Index), x.Lbrack) }
func (x *SliceExpr) Last() int {
	return lastOf(x.Rbrack, last(x.Max), last(x.High), last(x.Low), x.Lbrack)
}
func (x *TypeAssertExpr) Last() int { return lastOf(x.Rparen, last(x.Type), x.Lparen) }
func (x *CallExpr) Last() int {
	if x.Rparen != NoPos {
		return x.Rparen
	}
	if len(x.Args) > 0 {
		return last(x.Args[len(x.Args)-1])
	}
	return x.Lparen
}
func (x *StarExpr) Last() int     { return lastOf(last(x.X), x.Star) }
func (x *UnaryExpr) Last() int    { return lastOf(last(x.X), x.OpTok) }
func (x *BinaryExpr) Last() int   { return lastOf(last(x.Y), x.OpTok) }
func (x *KeyValueExpr) Last() int { return lastOf(last(x.Value), x.Colon) }
func (x *ArrayType) Last() int    { return lastOf(last(x.Elt), last(x.Len), x.Lbrack) }
func (x *StructType) Last() int   { return lastOf(fieldListLast(x.Fields), x.Struct) }
func (x *FuncType) Last() int {
	return lastOf(fieldListLast(x.Results), fieldListLast(x.Params), x.Func)
}
func (x *InterfaceType) Last() int { return lastOf(fieldListLast(x.Methods), x.Interface) }
func (x *MapType) Last() int       { return lastOf(last(x.Value), last(x.Key), x.Map) }
func (x *ChanType) Last() int      { return lastOf(last(x.Value), x.Begin) }

func (*BadExpr) exprNode()        {}
func (*Ident) exprNode()          {}
func (*Ellipsis) exprNode()       {}
func (*BasicLit) exprNode()       {}
func (*FuncLit) exprNode()        {}
func (*CompositeLit) exprNode()   {}
func (*ParenExpr) exprNode()      {}
func (*SelectorExpr) exprNode()   {}
func (*IndexExpr) exprNode()      {}
func (*SliceExpr) exprNode()      {}
func (*TypeAssertExpr) exprNode() {}
func (*CallExpr) exprNode()       {}
func (*StarExpr) exprNode()       {}
func (*UnaryExpr) exprNode()      {}
func (*BinaryExpr) exprNode()     {}
func (*KeyValueExpr) exprNode()   {}
func (*ArrayType) exprNode()      {}
func (*StructType) exprNode()     {}
func (*FuncType) exprNode()       {}
func (*InterfaceType) exprNode()  {}
func (*MapType) exprNode()        {}
func (*ChanType) exprNode()       {}

// IsExported reports whether the identifier is exported.
func (x *Ident) IsExported() bool { return token.IsExported(x.Name) }

func (x *Ident) String() string {
	if x == nil {
		return "<nil>"
	}
	return x.Name
}

// ----------------------------------------------------------------------------
// Statements

type (
	BadStmt struct {
		From, To int
	}

	DeclStmt struct {
		Decl Decl // *GenDecl with CONST, TYPE or VAR
	}

	// EmptyStmt is an explicit or implicit semicolon.
	EmptyStmt struct {
		Semi int
	}

	LabeledStmt struct {
		Label *Ident
		Colon int
		Stmt  Stmt
	}

	ExprStmt struct {
		X Expr
	}

	SendStmt struct {
		Chan  Expr
		Arrow int
		Value Expr
	}

	IncDecStmt struct {
		X      Expr
		TokPos int
		Tok    token.Kind
	}

	AssignStmt struct {
		Lhs    []Expr
		TokPos int
		Tok    token.Kind // ASSIGN, DEFINE or an op-assign
		Rhs    []Expr
	}

	GoStmt struct {
		Go   int
		Call Expr
	}

	DeferStmt struct {
		Defer int
		Call  Expr
	}

	ReturnStmt struct {
		Return  int
		Results []Expr
	}

	// BranchStmt is break, continue, goto or fallthrough.
	BranchStmt struct {
		TokPos int
		Tok    token.Kind
		Label  *Ident
	}

	BlockStmt struct {
		Lbrace int
		List   []Stmt
		Rbrace int
	}

	IfStmt struct {
		If   int
		Init Stmt
		Cond Expr
		Body *BlockStmt
		Else Stmt // *IfStmt or *BlockStmt
	}

	// CaseClause is a case of an expression or type switch; List is nil
	// for the default clause.
	CaseClause struct {
		Case  int
		List  []Expr
		Colon int
		Body  []Stmt
	}

	SwitchStmt struct {
		Switch int
		Init   Stmt
		Tag    Expr
		Body   *BlockStmt
	}

	// TypeSwitchStmt is switch x := y.(type) or switch y.(type).
	TypeSwitchStmt struct {
		Switch int
		Init   Stmt
		Assign Stmt // *AssignStmt or *ExprStmt holding the type assertion
		Body   *BlockStmt
	}

	// CommClause is a case of a select statement; Comm is nil for default.
	CommClause struct {
		Case  int
		Comm  Stmt
		Colon int
		Body  []Stmt
	}

	SelectStmt struct {
		Select int
		Body   *BlockStmt
	}

	ForStmt struct {
		For  int
		Init Stmt
		Cond Expr
		Post Stmt
		Body *BlockStmt
	}

	RangeStmt struct {
		For    int
		Key    Expr
		Value  Expr
		TokPos int
		Tok    token.Kind // ILLEGAL when there is no key
		Range  int
		X      Expr
		Body   *BlockStmt
	}
)

func (s *BadStmt) First() int        { return s.From }
func (s *DeclStmt) First() int       { return first(s.Decl) }
func (s *EmptyStmt) First() int      { return s.Semi }
func (s *LabeledStmt) First() int    { return s.Label.First() }
func (s *ExprStmt) First() int       { return first(s.X) }
func (s *SendStmt) First() int       { return first(s.Chan) }
func (s *IncDecStmt) First() int     { return first(s.X) }
func (s *AssignStmt) First() int     { return firstOf(exprsFirst(s.Lhs), s.TokPos) }
func (s *GoStmt) First() int         { return s.Go }
func (s *DeferStmt) First() int      { return s.Defer }
func (s *ReturnStmt) First() int     { return s.Return }
func (s *BranchStmt) First() int     { return s.TokPos }
func (s *BlockStmt) First() int      { return s.Lbrace }
func (s *IfStmt) First() int         { return s.If }
func (s *CaseClause) First() int     { return s.Case }
func (s *SwitchStmt) First() int     { return s.Switch }
func (s *TypeSwitchStmt) First() int { return s.Switch }
func (s *CommClause) First() int     { return s.Case }
func (s *SelectStmt) First() int     { return s.Select }
func (s *ForStmt) First() int        { return s.For }
func (s *RangeStmt) First() int      { return s.For }

func (s *BadStmt) Last() int     { return s.To }
func (s *DeclStmt) Last() int    { return last(s.Decl) }
func (s *EmptyStmt) Last() int   { return s.Semi }
func (s *LabeledStmt) Last() int { return lastOf(last(s.Stmt), s.Colon) }
func (s *ExprStmt) Last() int    { return last(s.X) }
func (s *SendStmt) Last() int    { return lastOf(last(s.Value), s.Arrow) }
func (s *IncDecStmt) Last() int  { return s.TokPos }
func (s *AssignStmt) Last() int  { return lastOf(exprsLast(s.Rhs), s.TokPos) }
func (s *GoStmt) Last() int      { return lastOf(last(s.Call), s.Go) }
func (s *DeferStmt) Last() int   { return lastOf(last(s.Call), s.Defer) }
func (s *ReturnStmt) Last() int  { return lastOf(exprsLast(s.Results), s.Return) }
func (s *BranchStmt) Last() int  { return lastOf(lastIdent(s.Label), s.TokPos) }
func (s *BlockStmt) Last() int {
	if s.Rbrace != NoPos {
		return s.Rbrace
	}
	return lastOf(stmtsLast(s.List), s.Lbrace)
}
func (s *IfStmt) Last() int {
	return lastOf(last(s.Else), blockLast(s.Body), last(s.Cond), last(s.Init), s.If)
}
func (s *CaseClause) Last() int { return lastOf(stmtsLast(s.Body), s.Colon, exprsLast(s.List), s.Case) }
func (s *SwitchStmt) Last() int {
	return lastOf(blockLast(s.Body), last(s.Tag), last(s.Init), s.Switch)
}
func (s *TypeSwitchStmt) Last() int {
	return lastOf(blockLast(s.Body), last(s.Assign), last(s.Init), s.Switch)
}
func (s *CommClause) Last() int { return lastOf(stmtsLast(s.Body), s.Colon, last(s.Comm), s.Case) }
func (s *SelectStmt) Last() int { return lastOf(blockLast(s.Body), s.Select) }
func (s *ForStmt) Last() int {
	return lastOf(blockLast(s.Body), last(s.Post), last(s.Cond), last(s.Init), s.For)
}
func (s *RangeStmt) Last() int { return lastOf(blockLast(s.Body), last(s.X), s.Range, s.For) }

func (*BadStmt) stmtNode()        {}
func (*DeclStmt) stmtNode()       {}
func (*EmptyStmt) stmtNode()      {}
func (*LabeledStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()       {}
func (*SendStmt) stmtNode()       {}
func (*IncDecStmt) stmtNode()     {}
func (*AssignStmt) stmtNode()     {}
func (*GoStmt) stmtNode()         {}
func (*DeferStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()     {}
func (*BranchStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()      {}
func (*IfStmt) stmtNode()         {}
func (*CaseClause) stmtNode()     {}
func (*SwitchStmt) stmtNode()     {}
func (*TypeSwitchStmt) stmtNode() {}
func (*CommClause) stmtNode()     {}
func (*SelectStmt) stmtNode()     {}
func (*ForStmt) stmtNode()        {}
func (*RangeStmt) stmtNode()      {}

// ----------------------------------------------------------------------------
// Declarations

type (
	ImportSpec struct {
		Name *Ident // local alias, ".", "_" or nil
		Path *BasicLit
	}

	// ValueSpec is one line of a const or var declaration.
	ValueSpec struct {
		Names  []*Ident
		Type   Expr
		Values []Expr
		// Iota is the index of the spec within its const group.
		Iota int
		// Prev is the earlier spec of the same const group whose type and
		// values an empty spec repeats. It is not a child of this node.
		Prev *ValueSpec
	}

	TypeSpec struct {
		Name   *Ident
		Assign int // position of "=" for aliases, or NoPos
		Type   Expr
	}
)

func (s *ImportSpec) First() int {
	if s.Name != nil {
		return s.Name.First()
	}
	return s.Path.First()
}
func (s *ValueSpec) First() int { return exprsFirstIdent(s.Names) }
func (s *TypeSpec) First() int  { return s.Name.First() }

func (s *ImportSpec) Last() int { return s.Path.Last() }
func (s *ValueSpec) Last() int {
	return lastOf(exprsLast(s.Values), last(s.Type), lastIdent(lastIdentOf(s.Names)))
}
func (s *TypeSpec) Last() int { return lastOf(last(s.Type), s.Assign, s.Name.Last()) }

func (*ImportSpec) specNode() {}
func (*ValueSpec) specNode()  {}
func (*TypeSpec) specNode()   {}

type (
	BadDecl struct {
		From, To int
	}

	// GenDecl is an import, const, type or var declaration, with or
	// without parentheses.
	GenDecl struct {
		TokPos int
		Tok    token.Kind
		Lparen int
		Specs  []Spec
		Rparen int
	}

	FuncDecl struct {
		Recv *FieldList // nil for functions
		Name *Ident
		Type *FuncType
		Body *BlockStmt // nil for external declarations
	}
)

func (d *BadDecl) First() int  { return d.From }
func (d *GenDecl) First() int  { return d.TokPos }
func (d *FuncDecl) First() int { return d.Type.First() }

func (d *BadDecl) Last() int { return d.To }
func (d *GenDecl) Last() int {
	if d.Rparen != NoPos {
		return d.Rparen
	}
	if len(d.Specs) > 0 {
		return lastOf(last(d.Specs[len(d.Specs)-1]), d.TokPos)
	}
	return lastOf(d.Lparen, d.TokPos)
}
func (d *FuncDecl) Last() int {
	if d.Body != nil {
		return d.Body.Last()
	}
	return lastOf(d.Type.Last(), d.Name.Last())
}

func (*BadDecl) declNode()  {}
func (*GenDecl) declNode()  {}
func (*FuncDecl) declNode() {}

// IsMethod reports whether the declaration has a receiver.
func (d *FuncDecl) IsMethod() bool { return d.Recv != nil && len(d.Recv.List) > 0 }

// ----------------------------------------------------------------------------
// Files

// File is the root of a parsed source unit.
type File struct {
	Package int
	Name    *Ident
	Imports []*ImportSpec // all imports of the file, in order
	Decls   []Decl
	EOF     int // index one past the last token
}

func (f *File) First() int { return f.Package }

func (f *File) Last() int {
	if len(f.Decls) > 0 {
		return lastOf(last(f.Decls[len(f.Decls)-1]), lastIdent(f.Name), f.Package)
	}
	return lastOf(lastIdent(f.Name), f.Package)
}
