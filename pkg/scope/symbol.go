// Package scope builds the lexical scope tree of a source unit and binds
// every declared name to a Symbol.
package scope

import (
	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/token"
)

// Kind classifies what a symbol names.
type Kind int

const (
	Var Kind = iota
	Const
	Type
	Field
	Func
	Method
	Arg
	Label
	Package
	Builtin
)

var kindNames = [...]string{
	Var:     "var",
	Const:   "const",
	Type:    "type",
	Field:   "field",
	Func:    "func",
	Method:  "method",
	Arg:     "param",
	Label:   "label",
	Package: "package",
	Builtin: "builtin",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Symbol is a declared name. Universe symbols have no File and NoPos.
type Symbol struct {
	Name  string
	Kind  Kind
	Ident *ast.Ident // declaring identifier
	// Decl is the declaring node: *ast.ValueSpec, *ast.TypeSpec,
	// *ast.FuncDecl, *ast.Field, *ast.AssignStmt, *ast.RangeStmt,
	// *ast.CaseClause, *ast.ImportSpec or *ast.LabeledStmt.
	Decl ast.Node
	// Type is the declared type expression, when one is written.
	Type ast.Expr
	// Value is the initializer the symbol takes its type from.
	Value ast.Expr
	// Index selects the element of a multi-valued Value (Tuple is set), or
	// the key (0) and value (1) of a range clause.
	Index int
	Tuple bool

	Scope *Scope
	File  *FileInfo
	// Pos is the token index of the declaring identifier.
	Pos int
	// Visible is the first token index at which the name is in scope.
	Visible int
	Global  bool
	// Recv is the receiver base type name of a method or the struct type
	// name of a field, when known.
	Recv string
	// Import is set for package symbols.
	Import *Import
}

// Exported reports whether the name starts with an upper-case letter.
func (s *Symbol) Exported() bool { return token.IsExported(s.Name) }

// Path returns the file the symbol is declared in, or "" for universe
// symbols.
func (s *Symbol) Path() string {
	if s.File == nil {
		return ""
	}
	return s.File.Path
}

// Offset returns the byte offset of the declaring identifier, or -1.
func (s *Symbol) Offset() int {
	if s.File == nil || s.Pos < 0 || s.Pos >= len(s.File.Tokens) {
		return -1
	}
	return s.File.Tokens[s.Pos].Pos
}

// Same reports whether both symbols stand for the same declaration. Field
// and method symbols are built on demand, so identity is the declaring
// file and token rather than the pointer.
func (s *Symbol) Same(o *Symbol) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s == o {
		return true
	}
	if s.File == nil || o.File == nil {
		return false
	}
	return s.Pos == o.Pos && s.Name == o.Name && s.File.Path == o.File.Path
}

// IsUniverse reports whether the symbol is predeclared.
func (s *Symbol) IsUniverse() bool { return s.Scope == Universe }
