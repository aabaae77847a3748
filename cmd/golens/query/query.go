// Package query holds the commands that run an editor request against a
// fully loaded engine.
package query

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/walteh/golens/pkg/cli"
	"github.com/walteh/golens/pkg/engine"
	"github.com/walteh/golens/pkg/source"
)

type Handler struct {
	globals  *cli.Globals
	location cli.Location
	newName  string
}

type request func(me *Handler, ctx context.Context, e *engine.Engine, p *source.Parsed, offset int, out io.Writer) error

// newCommand builds a command whose first argument is a position, or a
// bare file when fileOnly is set.
func newCommand(g *cli.Globals, use, short string, nargs int, fileOnly bool, run request) *cobra.Command {
	me := &Handler{globals: g}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		if fileOnly {
			abs, aerr := filepath.Abs(args[0])
			if aerr != nil {
				return errors.Errorf("resolving %s: %w", args[0], aerr)
			}
			me.location = cli.Location{Path: abs}
		} else {
			if me.location, err = cli.ParseLocation(args[0]); err != nil {
				return err
			}
		}
		if nargs > 1 {
			me.newName = args[1]
		}

		ctx, cfg, err := g.Setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		e, p, shutdown, err := g.Engine(ctx, cfg, me.location.Path)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, shutdown()) }()

		offset, err := me.location.Resolve(p)
		if err != nil {
			return err
		}
		zerolog.Ctx(ctx).Debug().Str("file", p.Path).Int("offset", offset).Str("command", use).Msg("running query")
		return run(me, ctx, e, p, offset, cmd.OutOrStdout())
	}

	return cmd
}

func NewHighlightCommand(g *cli.Globals) *cobra.Command {
	return newCommand(g, "highlight <file>", "print the semantic highlights of a file", 1, true, (*Handler).Highlight)
}

func NewHoverCommand(g *cli.Globals) *cobra.Command {
	return newCommand(g, "hover <file:pos>", "describe the symbol at a position", 1, false, (*Handler).Hover)
}

func NewCompleteCommand(g *cli.Globals) *cobra.Command {
	return newCommand(g, "complete <file:pos>", "list the completions at a position", 1, false, (*Handler).Complete)
}

func NewDefinitionCommand(g *cli.Globals) *cobra.Command {
	return newCommand(g, "definition <file:pos>", "print where the symbol at a position is declared", 1, false, (*Handler).Definition)
}

func NewRefsCommand(g *cli.Globals) *cobra.Command {
	return newCommand(g, "refs <file:pos>", "list every reference to the symbol at a position", 1, false, (*Handler).References)
}

func NewRenameCommand(g *cli.Globals) *cobra.Command {
	return newCommand(g, "rename <file:pos> <new-name>", "print the edits renaming the symbol at a position", 2, false, (*Handler).Rename)
}

type Highlight struct {
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"`
	Offset    int    `json:"offset" yaml:"offset"`
	Text      string `json:"text" yaml:"text"`
	Type      string `json:"type" yaml:"type"`
	Modifiers string `json:"modifiers" yaml:"modifiers"`
}

func (me *Handler) Highlight(ctx context.Context, e *engine.Engine, p *source.Parsed, _ int, out io.Writer) error {
	toks, err := e.Highlights(ctx, p.Path)
	if err != nil {
		return err
	}
	rows := make([]Highlight, 0, len(toks))
	for _, t := range toks {
		line, col := p.Mapper.LineCol(t.Range.Offset)
		rows = append(rows, Highlight{
			Line:      line,
			Column:    col,
			Offset:    t.Range.Offset,
			Text:      t.Range.Text,
			Type:      t.Type.String(),
			Modifiers: t.Modifier.String(),
		})
	}
	return cli.Write(out, me.globals.Format, rows, func(w io.Writer) error {
		for _, r := range rows {
			if _, err := fmt.Fprintf(w, "%d:%d\t%s\t%s\t%s\n", r.Line, r.Column, r.Text, r.Type, r.Modifiers); err != nil {
				return err
			}
		}
		return nil
	})
}

func (me *Handler) Hover(ctx context.Context, e *engine.Engine, p *source.Parsed, offset int, out io.Writer) error {
	h, err := e.Hover(ctx, p.Path, offset)
	if err != nil {
		return err
	}
	var content []string
	if h != nil {
		content = h.Content
	}
	return cli.Write(out, me.globals.Format, content, func(w io.Writer) error {
		if h == nil {
			_, err := fmt.Fprintln(w, "no symbol")
			return err
		}
		_, err := fmt.Fprintln(w, strings.Join(h.Content, "\n\n"))
		return err
	})
}

func (me *Handler) Complete(ctx context.Context, e *engine.Engine, p *source.Parsed, offset int, out io.Writer) error {
	list, err := e.Complete(ctx, p.Path, offset)
	if err != nil {
		return err
	}
	return cli.Write(out, me.globals.Format, list.Items, func(w io.Writer) error {
		for _, it := range list.Items {
			line := it.Label + "\t" + it.Kind
			if it.Detail != "" {
				line += "\t" + it.Detail
			}
			if it.AddImport != "" {
				line += "\t(import " + it.AddImport + ")"
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	})
}

func (me *Handler) Definition(ctx context.Context, e *engine.Engine, p *source.Parsed, offset int, out io.Writer) error {
	link, ok, err := e.Definition(ctx, p.Path, offset)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("no definition found at %s:%d", p.Path, offset)
	}
	return cli.Write(out, me.globals.Format, link, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s:%d:%d\n", link.File, link.Line, link.Column)
		return err
	})
}

func (me *Handler) References(ctx context.Context, e *engine.Engine, p *source.Parsed, offset int, out io.Writer) error {
	locs, err := e.References(ctx, p.Path, offset)
	if err != nil {
		return err
	}
	return cli.Write(out, me.globals.Format, locs, func(w io.Writer) error {
		for _, l := range locs {
			mark := ""
			if l.Declaration {
				mark = " (declaration)"
			}
			if _, err := fmt.Fprintf(w, "%s:%d:%d%s\t%s\n", l.File, l.Line, l.Column, mark, strings.TrimSpace(l.LineText)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (me *Handler) Rename(ctx context.Context, e *engine.Engine, p *source.Parsed, offset int, out io.Writer) error {
	edits, err := e.Rename(ctx, p.Path, offset, me.newName)
	if err != nil {
		return err
	}
	return cli.Write(out, me.globals.Format, edits, func(w io.Writer) error {
		for _, ed := range edits {
			if _, err := fmt.Fprintf(w, "%s:%d+%d\t%q\n", ed.File, ed.Offset, ed.Length, ed.NewText); err != nil {
				return err
			}
		}
		return nil
	})
}
