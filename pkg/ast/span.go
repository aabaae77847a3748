package ast

import "github.com/walteh/golens/pkg/token"

func first(n Node) int {
	if n == nil {
		return NoPos
	}
	return n.First()
}

func last(n Node) int {
	if n == nil {
		return NoPos
	}
	return n.Last()
}

func lastIdent(x *Ident) int {
	if x == nil {
		return NoPos
	}
	return x.Tok
}

func lastIdentOf(list []*Ident) *Ident {
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

func exprsFirstIdent(list []*Ident) int {
	if len(list) == 0 {
		return NoPos
	}
	return list[0].Tok
}

func fieldListFirst(f *FieldList) int {
	if f == nil {
		return NoPos
	}
	return f.First()
}

func fieldListLast(f *FieldList) int {
	if f == nil {
		return NoPos
	}
	return f.Last()
}

func blockLast(b *BlockStmt) int {
	if b == nil {
		return NoPos
	}
	return b.Last()
}

func exprsFirst(list []Expr) int {
	for _, x := range list {
		if p := first(x); p != NoPos {
			return p
		}
	}
	return NoPos
}

func exprsLast(list []Expr) int {
	for i := len(list) - 1; i >= 0; i-- {
		if p := last(list[i]); p != NoPos {
			return p
		}
	}
	return NoPos
}

func stmtsLast(list []Stmt) int {
	for i := len(list) - 1; i >= 0; i-- {
		if p := last(list[i]); p != NoPos {
			return p
		}
	}
	return NoPos
}

// firstOf returns the first valid index among candidates.
func firstOf(candidates ...int) int {
	for _, c := range candidates {
		if c != NoPos {
			return c
		}
	}
	return NoPos
}

// lastOf returns the first valid index among candidates, which callers
// list from the end of the node backwards.
func lastOf(candidates ...int) int {
	return firstOf(candidates...)
}

// Span is a byte range of a node within its source text.
type Span struct {
	Start, End int
}

// Contains reports whether offset lies in the span; the end offset counts
// as inside so a cursor right after an identifier still selects it.
func (s Span) Contains(offset int) bool { return s.Start <= offset && offset <= s.End }

// SpanOf maps a node's token span to byte offsets.
func SpanOf(n Node, toks []token.Token) (Span, bool) {
	if n == nil {
		return Span{}, false
	}
	f, l := n.First(), n.Last()
	if f == NoPos || l == NoPos || f >= len(toks) || l >= len(toks) {
		return Span{}, false
	}
	if l < f {
		l = f
	}
	return Span{Start: toks[f].Pos, End: toks[l].End()}, true
}
