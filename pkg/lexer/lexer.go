// Package lexer converts Go source text into positioned tokens.
//
// Lexing is restartable per line: ScanLine takes the State left behind by
// the previous line, so an editor can relex a single changed line without
// rescanning the file. Tokenize runs ScanLine over a whole text and joins
// tokens that span lines (block comments and raw strings).
//
// Lexing never fails. Characters the lexer does not recognize produce no
// token.
package lexer

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/walteh/golens/pkg/token"
)

// State is the packed lexer state carried from one line to the next. The
// low two bits hold the continuation mode, the remaining bits the brace
// nesting depth.
type State uint32

const (
	modeNormal uint32 = iota
	modeComment
	modeRawString

	modeMask   = 0x3
	depthShift = 2
	maxDepth   = 1<<30 - 1
)

// Initial is the state at the start of a file.
const Initial State = 0

func makeState(mode uint32, depth int) State {
	if depth < 0 {
		depth = 0
	}
	if depth > maxDepth {
		depth = maxDepth
	}
	return State(uint32(depth)<<depthShift | mode&modeMask)
}

// InComment reports whether the next line starts inside a block comment.
func (s State) InComment() bool { return uint32(s)&modeMask == modeComment }

// InRawString reports whether the next line starts inside a raw string.
func (s State) InRawString() bool { return uint32(s)&modeMask == modeRawString }

// Continues reports whether the next line continues a token of this line.
func (s State) Continues() bool { return uint32(s)&modeMask != modeNormal }

// Depth is the brace nesting depth at the end of the line.
func (s State) Depth() int { return int(uint32(s) >> depthShift) }

type scanner struct {
	src   []byte
	base  int
	off   int
	depth int
	toks  []token.Token
	// last significant (non-comment) token kind on this line
	last    token.Kind
	hasLast bool
}

// ScanLine tokenizes one line of text. line must not contain the
// terminating newline; base is the offset of the line's first byte in the
// full text and is added to every token position.
func ScanLine(line []byte, base int, st State) ([]token.Token, State) {
	s := &scanner{src: line, base: base, depth: st.Depth()}

	switch uint32(st) & modeMask {
	case modeComment:
		end := bytes.Index(line, []byte("*/"))
		if end < 0 {
			s.emit(token.COMMENT, 0, len(line), token.Continued|token.Unterminated)
			return s.toks, makeState(modeComment, s.depth)
		}
		s.emit(token.COMMENT, 0, end+2, token.Continued)
		s.off = end + 2
	case modeRawString:
		end := bytes.IndexByte(line, '`')
		if end < 0 {
			s.emit(token.STRING, 0, len(line), token.Continued|token.Unterminated)
			return s.toks, makeState(modeRawString, s.depth)
		}
		s.emit(token.STRING, 0, end+1, token.Continued)
		s.off = end + 1
	}

	if mode := s.scan(); mode != modeNormal {
		return s.toks, makeState(mode, s.depth)
	}
	if s.hasLast && needsTerminator(s.last) {
		s.emit(token.SEMICOLON, len(line), 0, token.Implicit)
	}
	return s.toks, makeState(modeNormal, s.depth)
}

func (s *scanner) emit(kind token.Kind, start, length int, flags token.Flags) {
	s.toks = append(s.toks, token.Token{Kind: kind, Pos: s.base + start, Len: length, Flags: flags})
	if kind != token.COMMENT {
		s.last = kind
		s.hasLast = true
	}
}

func needsTerminator(k token.Kind) bool {
	switch k {
	case token.IDENT, token.TYPE, token.BUILTIN, token.INT, token.FLOAT, token.IMAG, token.CHAR, token.STRING,
		token.BREAK, token.CONTINUE, token.FALLTHROUGH, token.RETURN,
		token.INC, token.DEC, token.RPAREN, token.RBRACK, token.RBRACE:
		return true
	}
	return false
}

// scan lexes from s.off to the end of the line and returns the mode the
// line ends in.
func (s *scanner) scan() uint32 {
	for s.off < len(s.src) {
		c := s.src[s.off]
		start := s.off
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			s.off++
		case c == '/' && s.peek(1) == '/':
			s.emit(token.COMMENT, start, len(s.src)-start, 0)
			s.off = len(s.src)
		case c == '/' && s.peek(1) == '*':
			end := bytes.Index(s.src[start+2:], []byte("*/"))
			if end < 0 {
				// a comment running past the line end acts as a newline
				if s.hasLast && needsTerminator(s.last) {
					s.emit(token.SEMICOLON, start, 0, token.Implicit)
				}
				s.emit(token.COMMENT, start, len(s.src)-start, token.Unterminated)
				s.off = len(s.src)
				return modeComment
			}
			s.emit(token.COMMENT, start, end+4, 0)
			s.off = start + end + 4
		case isLetter(c):
			s.scanIdent()
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRune(s.src[s.off:])
			if unicode.IsLetter(r) {
				s.scanIdent()
			} else {
				s.off += size
			}
		case isDigit(c) || c == '.' && isDigit(s.peek(1)):
			s.scanNumber()
		case c == '"':
			s.scanQuoted('"', token.STRING)
		case c == '\'':
			s.scanQuoted('\'', token.CHAR)
		case c == '`':
			end := bytes.IndexByte(s.src[start+1:], '`')
			if end < 0 {
				s.emit(token.STRING, start, len(s.src)-start, token.Unterminated)
				s.off = len(s.src)
				return modeRawString
			}
			s.emit(token.STRING, start, end+2, 0)
			s.off = start + end + 2
		default:
			if !s.scanOperator() {
				s.off++
			}
		}
	}
	return modeNormal
}

func (s *scanner) peek(n int) byte {
	if s.off+n < len(s.src) {
		return s.src[s.off+n]
	}
	return 0
}

func (s *scanner) scanIdent() {
	start := s.off
	for s.off < len(s.src) {
		c := s.src[s.off]
		if isLetter(c) || isDigit(c) {
			s.off++
			continue
		}
		if c < utf8.RuneSelf {
			break
		}
		r, size := utf8.DecodeRune(s.src[s.off:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		s.off += size
	}
	s.emit(token.Lookup(string(s.src[start:s.off])), start, s.off-start, 0)
}

func (s *scanner) digits(hex bool) {
	for s.off < len(s.src) {
		c := s.src[s.off]
		if isDigit(c) || c == '_' || hex && isHex(c) {
			s.off++
			continue
		}
		break
	}
}

func (s *scanner) scanNumber() {
	start := s.off
	kind := token.INT
	hex := false

	if s.src[s.off] == '0' {
		switch lower(s.peek(1)) {
		case 'x':
			hex = true
			s.off += 2
		case 'b', 'o':
			s.off += 2
		}
	}

	s.digits(hex)
	if s.off < len(s.src) && s.src[s.off] == '.' {
		kind = token.FLOAT
		s.off++
		s.digits(hex)
	}
	if s.off < len(s.src) {
		e := lower(s.src[s.off])
		if e == 'e' && !hex || e == 'p' && hex {
			kind = token.FLOAT
			s.off++
			if s.off < len(s.src) && (s.src[s.off] == '+' || s.src[s.off] == '-') {
				s.off++
			}
			s.digits(false)
		}
	}
	if s.off < len(s.src) && s.src[s.off] == 'i' {
		kind = token.IMAG
		s.off++
	}
	s.emit(kind, start, s.off-start, 0)
}

func (s *scanner) scanQuoted(quote byte, kind token.Kind) {
	start := s.off
	s.off++
	for s.off < len(s.src) {
		c := s.src[s.off]
		if c == '\\' {
			s.off += 2
			continue
		}
		s.off++
		if c == quote {
			s.emit(kind, start, s.off-start, 0)
			return
		}
	}
	if s.off > len(s.src) {
		s.off = len(s.src)
	}
	s.emit(kind, start, s.off-start, token.Unterminated)
}

func (s *scanner) scanOperator() bool {
	rest := s.src[s.off:]
	for _, op := range operators {
		if bytes.HasPrefix(rest, op.text) {
			start := s.off
			s.off += len(op.text)
			switch op.kind {
			case token.LBRACE:
				s.depth++
			case token.RBRACE:
				if s.depth > 0 {
					s.depth--
				}
			}
			s.emit(op.kind, start, len(op.text), 0)
			return true
		}
	}
	return false
}

type operator struct {
	text []byte
	kind token.Kind
}

// operators is ordered longest first so that the first prefix match is
// the maximal munch.
var operators = func() []operator {
	ops := []token.Kind{
		token.SHL_ASSIGN, token.SHR_ASSIGN, token.AND_NOT_ASSIGN, token.ELLIPSIS,
		token.LAND, token.LOR, token.ARROW, token.INC, token.DEC,
		token.EQL, token.NEQ, token.LEQ, token.GEQ, token.DEFINE,
		token.ADD_ASSIGN, token.SUB_ASSIGN, token.MUL_ASSIGN, token.QUO_ASSIGN, token.REM_ASSIGN,
		token.AND_ASSIGN, token.OR_ASSIGN, token.XOR_ASSIGN,
		token.SHL, token.SHR, token.AND_NOT,
		token.ADD, token.SUB, token.MUL, token.QUO, token.REM,
		token.AND, token.OR, token.XOR, token.LSS, token.GTR, token.ASSIGN, token.NOT, token.TILDE,
		token.LPAREN, token.LBRACK, token.LBRACE, token.COMMA, token.PERIOD,
		token.RPAREN, token.RBRACK, token.RBRACE, token.SEMICOLON, token.COLON,
	}
	out := make([]operator, len(ops))
	for i, k := range ops {
		out[i] = operator{text: []byte(k.String()), kind: k}
	}
	return out
}()

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isHex(c byte) bool { return isDigit(c) || 'a' <= lower(c) && lower(c) <= 'f' }

func lower(c byte) byte { return c | 0x20 }
