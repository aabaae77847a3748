package semtok

import (
	"context"

	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/refs"
	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/types"
)

// DefaultChunkSize is the number of tokens per chunk when none is given.
const DefaultChunkSize = 64

// Check highlights every identifier of p in source order and hands the
// tokens to emit in chunks of at most chunk tokens. The final chunk has
// Done set. Check stops with the context's error when ctx is cancelled,
// or with emit's error.
func Check(ctx context.Context, p *source.Parsed, w types.World, chunk int, emit func(Chunk) error) error {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	r := types.NewResolver(w)
	buf := make([]Token, 0, chunk)
	var err error

	flush := func(done bool) {
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			return
		}
		err = emit(Chunk{Path: p.Path, Revision: p.Revision, Tokens: buf, Done: done})
		buf = make([]Token, 0, chunk)
	}

	refs.Idents(p.File, func(path []ast.Node, id *ast.Ident) bool {
		if t, ok := highlight(r, p, path, id); ok {
			buf = append(buf, t)
			if len(buf) == chunk {
				flush(false)
			}
		}
		return err == nil
	})
	flush(true)
	return err
}

// Tokens returns all highlights of p at once.
func Tokens(ctx context.Context, p *source.Parsed, w types.World) ([]Token, error) {
	var out []Token
	err := Check(ctx, p, w, DefaultChunkSize, func(c Chunk) error {
		out = append(out, c.Tokens...)
		return nil
	})
	return out, err
}

func highlight(r *types.Resolver, p *source.Parsed, path []ast.Node, id *ast.Ident) (Token, bool) {
	if id.Tok == ast.NoPos || id.Name == "" {
		return Token{}, false
	}
	pos := p.Position(id.Tok)
	if len(path) > 0 {
		if f, ok := path[len(path)-1].(*ast.File); ok && f.Name == id {
			return Token{Type: TokenPackage, Modifier: ModifierDeclaration, Range: pos}, true
		}
	}
	sym := refs.Identify(r, p, path, id)
	if sym == nil {
		return Token{}, false
	}
	typ, mod := classify(sym)
	if sym.Pos == id.Tok && sym.Path() == p.Path {
		mod |= ModifierDeclaration
	}
	return Token{Type: typ, Modifier: mod, Range: pos}, true
}
