package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/lexer"
	"github.com/walteh/golens/pkg/token"
)

type tok struct {
	Kind token.Kind
	Text string
}

func texts(src string, toks []token.Token) []tok {
	out := make([]tok, 0, len(toks))
	for _, t := range toks {
		out = append(out, tok{Kind: t.Kind, Text: t.Text([]byte(src))})
	}
	return out
}

func TestScanLine(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		state     lexer.State
		expected  []tok
		continues bool
	}{
		{
			name:     "single_line_comment",
			input:    "// x",
			expected: []tok{{token.COMMENT, "// x"}},
		},
		{
			name:  "identifier_gets_terminator",
			input: "x := y",
			expected: []tok{
				{token.IDENT, "x"},
				{token.DEFINE, ":="},
				{token.IDENT, "y"},
				{token.SEMICOLON, ""},
			},
		},
		{
			name:  "open_brace_has_no_terminator",
			input: "func main() {",
			expected: []tok{
				{token.FUNC, "func"},
				{token.IDENT, "main"},
				{token.LPAREN, "("},
				{token.RPAREN, ")"},
				{token.LBRACE, "{"},
			},
		},
		{
			name:  "primitive_and_builtin_names",
			input: "n := len(s) + int(x)",
			expected: []tok{
				{token.IDENT, "n"},
				{token.DEFINE, ":="},
				{token.BUILTIN, "len"},
				{token.LPAREN, "("},
				{token.IDENT, "s"},
				{token.RPAREN, ")"},
				{token.ADD, "+"},
				{token.TYPE, "int"},
				{token.LPAREN, "("},
				{token.IDENT, "x"},
				{token.RPAREN, ")"},
				{token.SEMICOLON, ""},
			},
		},
		{
			name:  "numbers",
			input: "0x1F 0o17 0b101 1_000 3.14 1e9 .5 2i 0x1p-2",
			expected: []tok{
				{token.INT, "0x1F"},
				{token.INT, "0o17"},
				{token.INT, "0b101"},
				{token.INT, "1_000"},
				{token.FLOAT, "3.14"},
				{token.FLOAT, "1e9"},
				{token.FLOAT, ".5"},
				{token.IMAG, "2i"},
				{token.FLOAT, "0x1p-2"},
				{token.SEMICOLON, ""},
			},
		},
		{
			name:  "strings_and_runes",
			input: `s := "a\"b" + 'c'`,
			expected: []tok{
				{token.IDENT, "s"},
				{token.DEFINE, ":="},
				{token.STRING, `"a\"b"`},
				{token.ADD, "+"},
				{token.CHAR, "'c'"},
				{token.SEMICOLON, ""},
			},
		},
		{
			name:  "maximal_munch_operators",
			input: "a &^= b <<= c ... <-ch",
			expected: []tok{
				{token.IDENT, "a"},
				{token.AND_NOT_ASSIGN, "&^="},
				{token.IDENT, "b"},
				{token.SHL_ASSIGN, "<<="},
				{token.IDENT, "c"},
				{token.ELLIPSIS, "..."},
				{token.ARROW, "<-"},
				{token.IDENT, "ch"},
				{token.SEMICOLON, ""},
			},
		},
		{
			name:      "block_comment_opens",
			input:     "x /* start",
			expected:  []tok{{token.IDENT, "x"}, {token.SEMICOLON, ""}, {token.COMMENT, "/* start"}},
			continues: true,
		},
		{
			name:     "block_comment_closes",
			input:    "end */ y",
			state:    lexer.State(1),
			expected: []tok{{token.COMMENT, "end */"}, {token.IDENT, "y"}, {token.SEMICOLON, ""}},
		},
		{
			name:      "raw_string_opens",
			input:     "s := `abc",
			expected:  []tok{{token.IDENT, "s"}, {token.DEFINE, ":="}, {token.STRING, "`abc"}},
			continues: true,
		},
		{
			name:     "unknown_characters_are_skipped",
			input:    "a @ # b",
			expected: []tok{{token.IDENT, "a"}, {token.IDENT, "b"}, {token.SEMICOLON, ""}},
		},
		{
			name:     "unicode_identifier",
			input:    "héllo",
			expected: []tok{{token.IDENT, "héllo"}, {token.SEMICOLON, ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, st := lexer.ScanLine([]byte(tt.input), 0, tt.state)
			assert.Equal(t, tt.expected, texts(tt.input, toks))
			assert.Equal(t, tt.continues, st.Continues())
		})
	}
}

func TestSingleLineCommentSpansLine(t *testing.T) {
	toks, st := lexer.ScanLine([]byte("// x"), 0, lexer.Initial)
	require.Len(t, toks, 1)
	assert.Equal(t, token.COMMENT, toks[0].Kind)
	assert.Equal(t, 0, toks[0].Pos)
	assert.Equal(t, 4, toks[0].Len)
	assert.False(t, st.Continues())
	assert.False(t, st.InComment())
	assert.False(t, st.InRawString())
}

func TestDepthCarriesAcrossLines(t *testing.T) {
	_, st := lexer.ScanLine([]byte("func f() {"), 0, lexer.Initial)
	assert.Equal(t, 1, st.Depth())
	_, st = lexer.ScanLine([]byte("if x { y() }"), 0, st)
	assert.Equal(t, 1, st.Depth())
	_, st = lexer.ScanLine([]byte("}"), 0, st)
	assert.Equal(t, 0, st.Depth())
}

func TestTokenizeJoinsMultiLineTokens(t *testing.T) {
	src := "a := `x\ny\nz`\n/* c1\nc2 */ b"
	toks := lexer.Tokenize([]byte(src))
	assert.Equal(t, []tok{
		{token.IDENT, "a"},
		{token.DEFINE, ":="},
		{token.STRING, "`x\ny\nz`"},
		{token.SEMICOLON, ""},
		{token.COMMENT, "/* c1\nc2 */"},
		{token.IDENT, "b"},
		{token.SEMICOLON, ""},
	}, texts(src, toks))

	for _, tk := range toks {
		assert.False(t, tk.Is(token.Unterminated), "token %v should be closed", tk)
	}
}

func TestTokenizeUnterminatedAtEnd(t *testing.T) {
	src := "x := `never\nclosed"
	toks, st := lexer.TokenizeFrom([]byte(src), lexer.Initial)
	require.NotEmpty(t, toks)
	last := toks[len(toks)-1]
	assert.Equal(t, token.STRING, last.Kind)
	assert.True(t, last.Is(token.Unterminated))
	assert.True(t, st.InRawString())
}

func TestLineStatesAllowSingleLineRelex(t *testing.T) {
	src := []byte("package p\n/* a\nb */\nvar x = 1\n")
	states := lexer.LineStates(src)
	require.Len(t, states, 5)
	assert.True(t, states[2].InComment())
	assert.False(t, states[3].Continues())

	line := []byte("var x = 1")
	toks, _ := lexer.ScanLine(line, 0, states[3])
	assert.Equal(t, token.VAR, toks[0].Kind)
}

func TestTokenizeDeterministic(t *testing.T) {
	src := []byte("package p\n\nfunc f(a, b int) (int, error) {\n\treturn a + b, nil\n}\n")
	assert.Equal(t, lexer.Tokenize(src), lexer.Tokenize(src))
}
