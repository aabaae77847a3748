// Package types resolves the type of expressions and symbols lazily,
// straight from the syntax tree, with no separate checking pass.
package types

import (
	"strings"

	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/scope"
)

// Kind classifies a Type.
type Kind int

const (
	Invalid Kind = iota
	Basic
	Named
	Struct
	Interface
	Func
	Map
	Array // arrays and slices
	Chan
	Tuple
	Package
	Builtin
)

var kindNames = [...]string{
	Invalid:   "invalid",
	Basic:     "basic",
	Named:     "named",
	Struct:    "struct",
	Interface: "interface",
	Func:      "func",
	Map:       "map",
	Array:     "array",
	Chan:      "chan",
	Tuple:     "tuple",
	Package:   "package",
	Builtin:   "builtin",
}

func (k Kind) String() string { return kindNames[k] }

// Type is a type expression paired with the scope it has to be read in.
type Type struct {
	Kind Kind
	// Name is set for basic, named, package and builtin types.
	Name string
	// Expr is the type expression of composite types, and the declared
	// type of a named type.
	Expr ast.Expr
	// Fields holds the elements of a tuple.
	Fields *ast.FieldList
	Scope  *scope.Scope
	// Symbol declares named, package and builtin types.
	Symbol *scope.Symbol
	// Pkg is the package name a named type is declared in.
	Pkg string
}

// Typed is the type of an expression: Level counts pointer indirections
// and IsType is set when the expression denotes a type, not a value.
type Typed struct {
	Type   *Type
	Level  int
	IsType bool
}

var invalidType = &Type{Kind: Invalid}

// InvalidTyped is the result for anything that cannot be resolved.
var InvalidTyped = Typed{Type: invalidType}

func (t Typed) Valid() bool { return t.Type != nil && t.Type.Kind != Invalid }

// Kind returns the kind of the type, ignoring indirections.
func (t Typed) Kind() Kind {
	if t.Type == nil {
		return Invalid
	}
	return t.Type.Kind
}

// Pointer returns t with one more indirection.
func (t Typed) Pointer() Typed {
	t.Level++
	return t
}

// Deref removes one indirection; dereferencing a non-pointer is invalid.
func (t Typed) Deref() Typed {
	if t.Level == 0 {
		return InvalidTyped
	}
	t.Level--
	return t
}

// Value returns t as the type of a value.
func (t Typed) Value() Typed {
	t.IsType = false
	return t
}

func basic(name string) Typed {
	return Typed{Type: &Type{Kind: Basic, Name: name}}
}

// IsBasic reports whether t is the predeclared type name.
func (t Typed) IsBasic(name string) bool {
	return t.Level == 0 && t.Kind() == Basic && t.Type.Name == name
}

// Same reports whether two types are the same type as far as this package
// can tell: same declaration for named types, same spelling otherwise.
func Same(a, b Typed) bool {
	if !a.Valid() || !b.Valid() || a.Level != b.Level || a.Kind() != b.Kind() {
		return false
	}
	if a.Kind() == Named {
		return a.Type.Symbol.Same(b.Type.Symbol)
	}
	return String(a) == String(b)
}

// String renders a type the way hover and completion show it.
func String(t Typed) string {
	if t.Type == nil {
		return "invalid type"
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat("*", max(t.Level, 0)))
	switch t.Type.Kind {
	case Invalid:
		return "invalid type"
	case Basic, Builtin:
		sb.WriteString(t.Type.Name)
	case Named:
		if t.Type.Pkg != "" {
			sb.WriteString(t.Type.Pkg)
			sb.WriteByte('.')
		}
		sb.WriteString(t.Type.Name)
	case Package:
		sb.WriteString("package ")
		sb.WriteString(t.Type.Name)
	case Tuple:
		sb.WriteByte('(')
		sb.WriteString(ast.FieldListString(t.Type.Fields))
		sb.WriteByte(')')
	default:
		sb.WriteString(ast.ExprString(t.Type.Expr))
	}
	return sb.String()
}
