package lexer

import (
	"bytes"

	"github.com/walteh/golens/pkg/token"
)

// Tokenize lexes a whole text. Tokens that continue across lines are
// joined into one token spanning every line they cover.
func Tokenize(src []byte) []token.Token {
	toks, _ := TokenizeFrom(src, Initial)
	return toks
}

// TokenizeFrom lexes src starting in state st and returns the tokens and
// the state at the end of the text.
func TokenizeFrom(src []byte, st State) ([]token.Token, State) {
	var out []token.Token
	base := 0
	for {
		end := bytes.IndexByte(src[base:], '\n')
		last := end < 0
		if last {
			end = len(src) - base
		}

		var line []token.Token
		line, st = ScanLine(src[base:base+end], base, st)
		for _, t := range line {
			if t.Is(token.Continued) && len(out) > 0 {
				prev := &out[len(out)-1]
				if prev.Is(token.Unterminated) && prev.Kind == t.Kind {
					prev.Len = t.End() - prev.Pos
					prev.Flags = prev.Flags&^token.Unterminated | t.Flags&token.Unterminated
					continue
				}
			}
			out = append(out, t)
		}

		if last {
			return out, st
		}
		base += end + 1
	}
}

// LineStates returns the state at the start of every line of src, which
// lets a caller relex any single line with ScanLine.
func LineStates(src []byte) []State {
	states := []State{Initial}
	st := Initial
	base := 0
	for {
		end := bytes.IndexByte(src[base:], '\n')
		if end < 0 {
			return states
		}
		_, st = ScanLine(src[base:base+end], base, st)
		states = append(states, st)
		base += end + 1
	}
}
