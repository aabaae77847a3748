package completion

import (
	"sort"
	"strings"

	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/position"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/token"
)

// CompletionContext holds information about the completion request context
type CompletionContext struct {
	File   *source.Parsed
	Offset int
	// Tok is the token index names are looked up at.
	Tok int
	// Prefix is the part of the identifier before the cursor that the
	// completion replaces.
	Prefix position.RawPosition
	// Operand is x when completing x.Sel.
	Operand ast.Expr
	Scope   *scope.Scope
}

// NewCompletionContext inspects the tokens before offset.
func NewCompletionContext(p *source.Parsed, offset int) *CompletionContext {
	c := &CompletionContext{File: p, Offset: offset, Prefix: position.NewBasicPosition("", offset)}

	// first token starting at or after the cursor
	next := sort.Search(len(p.Tokens), func(i int) bool { return p.Tokens[i].Pos >= offset })
	c.Tok = next
	prev := next - 1
	for prev >= 0 && p.Tokens[prev].Len == 0 {
		prev--
	}

	if prev >= 0 && p.Tokens[prev].Kind.IsIdentifier() && p.Tokens[prev].End() >= offset {
		t := p.Tokens[prev]
		c.Prefix = position.NewBasicPosition(p.Text(prev)[:offset-t.Pos], t.Pos)
		c.Tok = prev
		c.Operand = selectorOperand(p, prev)
	} else if prev >= 0 && p.Tokens[prev].Kind == token.PERIOD {
		c.Operand = selectorOperand(p, prev)
	}

	c.Scope = p.ScopeAt(c.Tok)
	return c
}

// selectorOperand returns x when token tok is the selector or the period
// of x.Sel. A period with nothing after it parses as a selector whose
// name sits on the period itself.
func selectorOperand(p *source.Parsed, tok int) ast.Expr {
	path := ast.PathTo(p.File, tok)
	if len(path) == 0 {
		return nil
	}
	if sel, ok := path[len(path)-1].(*ast.SelectorExpr); ok {
		return sel.X
	}
	if len(path) < 2 {
		return nil
	}
	id, _ := path[len(path)-1].(*ast.Ident)
	if sel, ok := path[len(path)-2].(*ast.SelectorExpr); ok && id != nil && sel.Sel == id {
		return sel.X
	}
	return nil
}

// IsDotCompletion reports whether the cursor follows a selector period.
func (c *CompletionContext) IsDotCompletion() bool {
	return c.Operand != nil
}

// Matches reports whether name starts with the typed prefix, ignoring
// case.
func (c *CompletionContext) Matches(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(c.Prefix.Text))
}
