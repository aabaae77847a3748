package engine

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/golens/pkg/completion"
	"github.com/walteh/golens/pkg/diagnostic"
	"github.com/walteh/golens/pkg/hover"
	"github.com/walteh/golens/pkg/refs"
	"github.com/walteh/golens/pkg/semtok"
	"github.com/walteh/golens/pkg/source"
)

// query runs fn against the latest committed parse of path and the
// current snapshot. Position queries never wait for a parse in flight.
func (e *Engine) query(path string, fn func(p *source.Parsed, ix refs.Index)) error {
	e.mu.Lock()
	f := e.files[path]
	var p *source.Parsed
	if f != nil {
		p = f.parsed
	}
	e.mu.Unlock()
	if f == nil {
		return errors.Errorf("%s: %w", path, ErrNotOpen)
	}
	if p == nil {
		return errors.Errorf("%s has not been parsed yet", path)
	}
	snap, release := e.cache.Acquire()
	defer release()
	fn(p, snap)
	return nil
}

// Hover describes the symbol at offset, or returns nil.
func (e *Engine) Hover(ctx context.Context, path string, offset int) (*hover.HoverInfo, error) {
	var out *hover.HoverInfo
	err := e.query(path, func(p *source.Parsed, ix refs.Index) {
		out = hover.Hover(ctx, ix, p, offset)
	})
	return out, err
}

// Complete lists the completions at offset.
func (e *Engine) Complete(ctx context.Context, path string, offset int) (*completion.List, error) {
	var out *completion.List
	err := e.query(path, func(p *source.Parsed, ix refs.Index) {
		out = completion.GetCompletions(ctx, ix, p, offset, e.index.Entries())
	})
	return out, err
}

// Definition returns where the symbol at offset is declared.
func (e *Engine) Definition(ctx context.Context, path string, offset int) (refs.Link, bool, error) {
	var (
		link refs.Link
		ok   bool
	)
	err := e.query(path, func(p *source.Parsed, ix refs.Index) {
		link, ok = refs.Definition(ctx, ix, p, offset)
	})
	return link, ok, err
}

// References finds every occurrence of the symbol at offset. It waits for
// the file's latest revision and for pending imports, so the answer
// covers everything the engine knows about.
func (e *Engine) References(ctx context.Context, path string, offset int) ([]refs.Location, error) {
	if err := e.settle(ctx, path); err != nil {
		return nil, err
	}
	var out []refs.Location
	err := e.query(path, func(p *source.Parsed, ix refs.Index) {
		out = refs.References(ctx, ix, p, offset)
	})
	return out, err
}

// Rename computes the edits renaming the symbol at offset. Like
// References it works on settled state.
func (e *Engine) Rename(ctx context.Context, path string, offset int, name string) ([]refs.Edit, error) {
	if err := e.settle(ctx, path); err != nil {
		return nil, err
	}
	var (
		out  []refs.Edit
		rerr error
	)
	err := e.query(path, func(p *source.Parsed, ix refs.Index) {
		out, rerr = refs.Rename(ctx, ix, p, offset, name)
	})
	if err != nil {
		return nil, err
	}
	return out, rerr
}

// settle waits until every open file's latest revision is parsed and
// the imports those parses queued are in.
func (e *Engine) settle(ctx context.Context, path string) error {
	if _, err := e.Current(ctx, path); err != nil {
		return err
	}
	for _, other := range e.OpenFiles() {
		if _, err := e.Current(ctx, other); err != nil && !errors.Is(err, ErrNotOpen) {
			return err
		}
	}
	return e.cache.Wait(ctx)
}

// Highlights waits for the highlights of the file's latest revision.
func (e *Engine) Highlights(ctx context.Context, path string) ([]semtok.Token, error) {
	p, err := e.Current(ctx, path)
	if err != nil {
		return nil, err
	}
	return e.AwaitHighlights(ctx, path, p.Revision)
}

// Diagnostics returns the lex and parse problems of the latest revision.
func (e *Engine) Diagnostics(ctx context.Context, path string) ([]diagnostic.Diagnostic, error) {
	p, err := e.Current(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.Diagnostics, nil
}
