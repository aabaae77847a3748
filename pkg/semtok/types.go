package semtok

import (
	"strings"

	"github.com/walteh/golens/pkg/position"
	"github.com/walteh/golens/pkg/scope"
)

// TokenType is the semantic kind of an identifier.
type TokenType uint32

const (
	TokenVariable TokenType = iota + 1
	TokenParameter
	TokenField
	TokenConstant
	TokenNamedType
	TokenFunction
	TokenMethod
	TokenPackage
	TokenLabel
	TokenBuiltin
)

var typeNames = map[TokenType]string{
	TokenVariable:  "variable",
	TokenParameter: "parameter",
	TokenField:     "field",
	TokenConstant:  "constant",
	TokenNamedType:     "type",
	TokenFunction:  "function",
	TokenMethod:    "method",
	TokenPackage:   "package",
	TokenLabel:     "label",
	TokenBuiltin:   "builtin",
}

// String returns a human-readable representation of the token type
func (t TokenType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// TokenTypes lists every type in legend order.
func TokenTypes() []TokenType {
	return []TokenType{TokenVariable, TokenParameter, TokenField, TokenConstant, TokenNamedType,
		TokenFunction, TokenMethod, TokenPackage, TokenLabel, TokenBuiltin}
}

// TokenModifier is a set of flags.
type TokenModifier uint32

const (
	ModifierNone TokenModifier = 0

	// ModifierDeclaration marks the identifier that declares the symbol
	ModifierDeclaration TokenModifier = 1 << (iota - 1)

	// ModifierReadonly marks constants
	ModifierReadonly

	// ModifierDefaultLibrary marks predeclared names
	ModifierDefaultLibrary
)

var modifierNames = []struct {
	m    TokenModifier
	name string
}{
	{ModifierDeclaration, "declaration"},
	{ModifierReadonly, "readonly"},
	{ModifierDefaultLibrary, "defaultLibrary"},
}

// String lists the set flags separated by commas, or "none".
func (m TokenModifier) String() string {
	if m == ModifierNone {
		return "none"
	}
	var parts []string
	for _, n := range modifierNames {
		if m&n.m != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// Token is one highlighted identifier.
type Token struct {
	Type     TokenType
	Modifier TokenModifier
	Range    position.RawPosition
}

var kindTypes = map[scope.Kind]TokenType{
	scope.Var:     TokenVariable,
	scope.Const:   TokenConstant,
	scope.Type:    TokenNamedType,
	scope.Field:   TokenField,
	scope.Func:    TokenFunction,
	scope.Method:  TokenMethod,
	scope.Arg:     TokenParameter,
	scope.Label:   TokenLabel,
	scope.Package: TokenPackage,
	scope.Builtin: TokenBuiltin,
}

// classify returns the token type and modifiers of a resolved symbol.
func classify(sym *scope.Symbol) (TokenType, TokenModifier) {
	typ, ok := kindTypes[sym.Kind]
	if !ok {
		return TokenVariable, ModifierNone
	}
	mod := ModifierNone
	if sym.Kind == scope.Const {
		mod |= ModifierReadonly
	}
	if sym.IsUniverse() {
		mod |= ModifierDefaultLibrary
	}
	return typ, mod
}
