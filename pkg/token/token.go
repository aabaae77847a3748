// Package token defines the lexical tokens of Go source text and the
// fixed lookup tables the lexer classifies identifiers with.
package token

import "strconv"

// Kind is the set of lexical tokens.
type Kind uint8

const (
	ILLEGAL Kind = iota
	EOF
	COMMENT

	literalBeg
	IDENT   // main
	TYPE    // int, string, error
	BUILTIN // len, make, new
	INT     // 12345
	FLOAT   // 123.45
	IMAG    // 123.45i
	CHAR    // 'a'
	STRING  // "abc" or `abc`
	literalEnd

	operatorBeg
	ADD // +
	SUB // -
	MUL // *
	QUO // /
	REM // %

	AND     // &
	OR      // |
	XOR     // ^
	SHL     // <<
	SHR     // >>
	AND_NOT // &^

	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	MUL_ASSIGN // *=
	QUO_ASSIGN // /=
	REM_ASSIGN // %=

	AND_ASSIGN     // &=
	OR_ASSIGN      // |=
	XOR_ASSIGN     // ^=
	SHL_ASSIGN     // <<=
	SHR_ASSIGN     // >>=
	AND_NOT_ASSIGN // &^=

	LAND  // &&
	LOR   // ||
	ARROW // <-
	INC   // ++
	DEC   // --

	EQL    // ==
	LSS    // <
	GTR    // >
	ASSIGN // =
	NOT    // !

	NEQ      // !=
	LEQ      // <=
	GEQ      // >=
	DEFINE   // :=
	ELLIPSIS // ...
	TILDE    // ~

	punctBeg
	LPAREN // (
	LBRACK // [
	LBRACE // {
	COMMA  // ,
	PERIOD // .

	RPAREN    // )
	RBRACK    // ]
	RBRACE    // }
	SEMICOLON // ;
	COLON     // :
	punctEnd
	operatorEnd

	keywordBeg
	BREAK
	CASE
	CHAN
	CONST
	CONTINUE

	DEFAULT
	DEFER
	ELSE
	FALLTHROUGH
	FOR

	FUNC
	GO
	GOTO
	IF
	IMPORT

	INTERFACE
	MAP
	PACKAGE
	RANGE
	RETURN

	SELECT
	STRUCT
	SWITCH
	TYPEKW
	VAR
	keywordEnd
)

var kinds = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:   "IDENT",
	TYPE:    "TYPENAME",
	BUILTIN: "BUILTIN",
	INT:     "INT",
	FLOAT:   "FLOAT",
	IMAG:    "IMAG",
	CHAR:    "CHAR",
	STRING:  "STRING",

	ADD: "+",
	SUB: "-",
	MUL: "*",
	QUO: "/",
	REM: "%",

	AND:     "&",
	OR:      "|",
	XOR:     "^",
	SHL:     "<<",
	SHR:     ">>",
	AND_NOT: "&^",

	ADD_ASSIGN: "+=",
	SUB_ASSIGN: "-=",
	MUL_ASSIGN: "*=",
	QUO_ASSIGN: "/=",
	REM_ASSIGN: "%=",

	AND_ASSIGN:     "&=",
	OR_ASSIGN:      "|=",
	XOR_ASSIGN:     "^=",
	SHL_ASSIGN:     "<<=",
	SHR_ASSIGN:     ">>=",
	AND_NOT_ASSIGN: "&^=",

	LAND:  "&&",
	LOR:   "||",
	ARROW: "<-",
	INC:   "++",
	DEC:   "--",

	EQL:    "==",
	LSS:    "<",
	GTR:    ">",
	ASSIGN: "=",
	NOT:    "!",

	NEQ:      "!=",
	LEQ:      "<=",
	GEQ:      ">=",
	DEFINE:   ":=",
	ELLIPSIS: "...",
	TILDE:    "~",

	LPAREN: "(",
	LBRACK: "[",
	LBRACE: "{",
	COMMA:  ",",
	PERIOD: ".",

	RPAREN:    ")",
	RBRACK:    "]",
	RBRACE:    "}",
	SEMICOLON: ";",
	COLON:     ":",

	BREAK:    "break",
	CASE:     "case",
	CHAN:     "chan",
	CONST:    "const",
	CONTINUE: "continue",

	DEFAULT:     "default",
	DEFER:       "defer",
	ELSE:        "else",
	FALLTHROUGH: "fallthrough",
	FOR:         "for",

	FUNC:   "func",
	GO:     "go",
	GOTO:   "goto",
	IF:     "if",
	IMPORT: "import",

	INTERFACE: "interface",
	MAP:       "map",
	PACKAGE:   "package",
	RANGE:     "range",
	RETURN:    "return",

	SELECT: "select",
	STRUCT: "struct",
	SWITCH: "switch",
	TYPEKW: "type",
	VAR:    "var",
}

func (k Kind) String() string {
	if int(k) < len(kinds) && kinds[k] != "" {
		return kinds[k]
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// Class partitions token kinds into the groups consumers highlight by.
type Class uint8

const (
	ClassNone Class = iota
	ClassIdentifier
	ClassLiteral
	ClassKeyword
	ClassPrimitive
	ClassBuiltin
	ClassOperator
	ClassPunctuation
	ClassComment
)

func (c Class) String() string {
	switch c {
	case ClassIdentifier:
		return "identifier"
	case ClassLiteral:
		return "literal"
	case ClassKeyword:
		return "keyword"
	case ClassPrimitive:
		return "primitive"
	case ClassBuiltin:
		return "builtin"
	case ClassOperator:
		return "operator"
	case ClassPunctuation:
		return "punctuation"
	case ClassComment:
		return "comment"
	default:
		return "none"
	}
}

func (k Kind) Class() Class {
	switch {
	case k == IDENT:
		return ClassIdentifier
	case k == TYPE:
		return ClassPrimitive
	case k == BUILTIN:
		return ClassBuiltin
	case k == COMMENT:
		return ClassComment
	case literalBeg < k && k < literalEnd:
		return ClassLiteral
	case punctBeg < k && k < punctEnd:
		return ClassPunctuation
	case operatorBeg < k && k < operatorEnd:
		return ClassOperator
	case keywordBeg < k && k < keywordEnd:
		return ClassKeyword
	}
	return ClassNone
}

// IsIdentifier reports whether tokens of this kind name something, which
// includes the predeclared type and builtin function names.
func (k Kind) IsIdentifier() bool { return k == IDENT || k == TYPE || k == BUILTIN }

func (k Kind) IsLiteral() bool { return literalBeg < k && k < literalEnd && !k.IsIdentifier() }

func (k Kind) IsOperator() bool { return operatorBeg < k && k < operatorEnd }

func (k Kind) IsKeyword() bool { return keywordBeg < k && k < keywordEnd }

// Precedence returns the binary operator precedence, or 0 for tokens
// that are not binary operators.
func (k Kind) Precedence() int {
	switch k {
	case LOR:
		return 1
	case LAND:
		return 2
	case EQL, NEQ, LSS, LEQ, GTR, GEQ:
		return 3
	case ADD, SUB, OR, XOR:
		return 4
	case MUL, QUO, REM, SHL, SHR, AND, AND_NOT:
		return 5
	}
	return 0
}

// Flags carry lexer state attached to individual tokens.
type Flags uint8

const (
	// Implicit marks a statement terminator inserted at a line end.
	Implicit Flags = 1 << iota
	// Unterminated marks a comment or raw string that continues on the next line.
	Unterminated
	// Continued marks a token that started in a state carried from a previous line.
	Continued
)

// Token is one lexical token of a source unit. Its identity is its index
// in the unit's token slice.
type Token struct {
	Kind  Kind
	Pos   int
	Len   int
	Flags Flags
}

func (t Token) End() int { return t.Pos + t.Len }

func (t Token) Is(f Flags) bool { return t.Flags&f != 0 }

// Text returns the token's text within src.
func (t Token) Text(src []byte) string {
	if t.Pos < 0 || t.End() > len(src) {
		return ""
	}
	return string(src[t.Pos:t.End()])
}

// Contains reports whether offset lies within the token, counting the
// offset directly after the last byte as inside.
func (t Token) Contains(offset int) bool {
	return t.Pos <= offset && offset <= t.End()
}
