// Package inspect holds the commands that look at one file on its own:
// its tokens, its syntax tree and its diagnostics.
package inspect

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/cli"
	"github.com/walteh/golens/pkg/config"
	"github.com/walteh/golens/pkg/diagnostic"
	"github.com/walteh/golens/pkg/finder"
	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/token"
)

type Handler struct {
	globals *cli.Globals
	config  *config.Config
	file    string
	vscode  bool
}

func newCommand(g *cli.Globals, use, short string, run func(me *Handler, ctx context.Context, out io.Writer) error) (*cobra.Command, *Handler) {
	me := &Handler{globals: g}

	cmd := &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return errors.Errorf("resolving %s: %w", args[0], err)
		}
		me.file = abs
		ctx, cfg, err := g.Setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		me.config = cfg
		return run(me, ctx, cmd.OutOrStdout())
	}

	return cmd, me
}

func NewTokensCommand(g *cli.Globals) *cobra.Command {
	cmd, _ := newCommand(g, "tokens", "print the tokens of a file", (*Handler).Tokens)
	return cmd
}

func NewParseCommand(g *cli.Globals) *cobra.Command {
	cmd, _ := newCommand(g, "parse", "print the syntax tree of a file", (*Handler).Parse)
	return cmd
}

func NewDiagnosticsCommand(g *cli.Globals) *cobra.Command {
	cmd, me := newCommand(g, "diagnostics", "print the lex and parse problems of a file or of every file under a directory", (*Handler).Diagnostics)
	cmd.Flags().BoolVar(&me.vscode, "vscode", false, "print the editor's json shape")
	return cmd
}

type TokenRow struct {
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Offset   int    `json:"offset" yaml:"offset"`
	Kind     string `json:"kind" yaml:"kind"`
	Class    string `json:"class" yaml:"class"`
	Text     string `json:"text" yaml:"text"`
	Implicit bool   `json:"implicit,omitempty" yaml:"implicit,omitempty"`
}

func TokenRows(p *source.Parsed) []TokenRow {
	rows := make([]TokenRow, 0, len(p.Tokens))
	for _, t := range p.Tokens {
		line, col := p.Mapper.LineCol(t.Pos)
		rows = append(rows, TokenRow{
			Line:     line,
			Column:   col,
			Offset:   t.Pos,
			Kind:     t.Kind.String(),
			Class:    t.Kind.Class().String(),
			Text:     t.Text(p.Src),
			Implicit: t.Is(token.Implicit),
		})
	}
	return rows
}

func (me *Handler) Tokens(ctx context.Context, out io.Writer) error {
	p, err := me.globals.ReadFile(me.file)
	if err != nil {
		return err
	}
	rows := TokenRows(p)
	return cli.Write(out, me.globals.Format, rows, func(w io.Writer) error {
		for _, r := range rows {
			text := fmt.Sprintf("%q", r.Text)
			if r.Implicit {
				text = "(implicit)"
			}
			if _, err := fmt.Fprintf(w, "%d:%d\t%s\t%s\n", r.Line, r.Column, r.Kind, text); err != nil {
				return err
			}
		}
		return nil
	})
}

type Node struct {
	Depth  int    `json:"depth" yaml:"depth"`
	Kind   string `json:"kind" yaml:"kind"`
	Offset int    `json:"offset" yaml:"offset"`
	End    int    `json:"end" yaml:"end"`
	// Name is set for identifiers and literals.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

type outline struct {
	ast.BaseVisitor
	toks  []token.Token
	depth int
	nodes []Node
}

func (o *outline) Visit(n ast.Node) bool {
	row := Node{Depth: o.depth, Kind: strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast."), Offset: -1, End: -1}
	if first := n.First(); first != ast.NoPos && first < len(o.toks) {
		row.Offset = o.toks[first].Pos
	}
	if last := n.Last(); last != ast.NoPos && last < len(o.toks) {
		row.End = o.toks[last].End()
	}
	switch x := n.(type) {
	case *ast.Ident:
		row.Name = x.Name
	case *ast.BasicLit:
		row.Name = x.Value
	}
	o.nodes = append(o.nodes, row)
	o.depth++
	return true
}

func (o *outline) EndVisit(ast.Node) { o.depth-- }

// Outline flattens the syntax tree of p in walk order.
func Outline(p *source.Parsed) []Node {
	o := &outline{toks: p.Tokens}
	ast.Walk(o, p.File)
	return o.nodes
}

func (me *Handler) Parse(ctx context.Context, out io.Writer) error {
	p, err := me.globals.ReadFile(me.file)
	if err != nil {
		return err
	}
	nodes := Outline(p)
	return cli.Write(out, me.globals.Format, nodes, func(w io.Writer) error {
		for _, n := range nodes {
			line := strings.Repeat("  ", n.Depth) + n.Kind
			if n.Name != "" {
				line += " " + n.Name
			}
			if _, err := fmt.Fprintf(w, "%s [%d,%d)\n", line, n.Offset, n.End); err != nil {
				return err
			}
		}
		return nil
	})
}

// sources parses the file argument, or every source file below it when it
// is a directory.
func (me *Handler) sources(ctx context.Context) ([]*source.Parsed, error) {
	fs := me.globals.FS()
	if dir, _ := afero.IsDir(fs, me.file); !dir {
		p, err := me.globals.ReadFile(me.file)
		if err != nil {
			return nil, err
		}
		return []*source.Parsed{p}, nil
	}

	found, err := finder.NewDefaultFinder(fs, me.config.SkipPatterns).FindSources(ctx, me.file, nil)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("dir", me.file).Int("files", len(found)).Msg("found sources")
	parsed := make([]*source.Parsed, 0, len(found))
	for _, f := range found {
		parsed = append(parsed, source.Parse(f.Path, f.Content, 1))
	}
	return parsed, nil
}

func (me *Handler) Diagnostics(ctx context.Context, out io.Writer) error {
	files, err := me.sources(ctx)
	if err != nil {
		return err
	}
	var all []diagnostic.Diagnostic
	for _, p := range files {
		all = append(all, p.Diagnostics...)
	}
	grouped := diagnostic.Group(all)
	if me.vscode {
		b, err := diagnostic.NewVSCodeFormatter().Format(grouped)
		if err != nil {
			return errors.Errorf("formatting diagnostics: %w", err)
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}
	return cli.Write(out, me.globals.Format, grouped, func(w io.Writer) error {
		for _, d := range all {
			if _, err := fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", d.File, d.Line, d.Column, d.Severity, d.Message); err != nil {
				return err
			}
		}
		return nil
	})
}
