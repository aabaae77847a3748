package index

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/golens/pkg/cache"
	"github.com/walteh/golens/pkg/cli"
	"github.com/walteh/golens/pkg/config"
)

type Handler struct {
	globals *cli.Globals
	pattern string
}

func NewIndexCommand(g *cli.Globals) *cobra.Command {
	me := &Handler{globals: g}

	cmd := &cobra.Command{
		Use:   "index [pattern]",
		Short: "list the importable packages under GOROOT and GOPATH",
		Long:  "index scans the library roots the way completion does. The optional pattern is a doublestar glob matched against import paths.",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if !doublestar.ValidatePattern(args[0]) {
				return errors.Errorf("invalid pattern %q", args[0])
			}
			me.pattern = args[0]
		}
		ctx, cfg, err := g.Setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return me.Run(ctx, cfg, cmd.OutOrStdout())
	}

	return cmd
}

type Package struct {
	Path string `json:"path" yaml:"path"`
	Name string `json:"name" yaml:"name"`
}

func (me *Handler) Run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	roots := append([]string{cfg.GoRoot}, filepath.SplitList(cfg.GoPath)...)
	ix := cache.NewIndexer(me.globals.FS(), cfg.SkipPatterns, roots...)
	if err := ix.Scan(ctx); err != nil {
		return errors.Errorf("scanning %v: %w", roots, err)
	}

	var pkgs []Package
	for _, e := range ix.Entries() {
		if me.pattern != "" {
			if ok, _ := doublestar.Match(me.pattern, e.Path()); !ok {
				continue
			}
		}
		pkgs = append(pkgs, Package{Path: e.Path(), Name: e.Name})
	}
	zerolog.Ctx(ctx).Debug().Int("indexed", len(ix.Entries())).Int("matched", len(pkgs)).Msg("package index scanned")

	return cli.Write(out, me.globals.Format, pkgs, func(w io.Writer) error {
		for _, p := range pkgs {
			if _, err := fmt.Fprintln(w, p.Path); err != nil {
				return err
			}
		}
		return nil
	})
}
