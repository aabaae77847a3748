// Package cli holds what every golens subcommand shares: global flags,
// configuration and logger setup, position arguments and output
// encoding.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/walteh/golens/pkg/config"
	"github.com/walteh/golens/pkg/debug"
	"github.com/walteh/golens/pkg/engine"
	"github.com/walteh/golens/pkg/source"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Globals are the flags of the root command.
type Globals struct {
	ConfigFile string
	Root       string
	LogLevel   string
	Format     string
	NoColor    bool

	// Fs is the file system every command reads; nil means the OS.
	Fs afero.Fs
}

// Register adds the global flags to cmd.
func (g *Globals) Register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&g.ConfigFile, "config", "", "config file (default: golens.yaml in the working directory)")
	flags.StringVar(&g.Root, "root", "", "project root, overrides the config")
	flags.StringVar(&g.LogLevel, "log-level", "", "log level, overrides the config")
	flags.StringVarP(&g.Format, "format", "o", FormatText, "output format: text, json or yaml")
	flags.BoolVar(&g.NoColor, "no-color", false, "disable colored logs")
}

// FS returns the file system commands read.
func (g *Globals) FS() afero.Fs {
	if g.Fs == nil {
		return afero.NewOsFs()
	}
	return g.Fs
}

// Setup loads the configuration, applies flag overrides and returns a
// context carrying the console logger.
func (g *Globals) Setup(ctx context.Context, logs io.Writer) (context.Context, *config.Config, error) {
	switch g.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return nil, nil, errors.Errorf("unknown output format %q", g.Format)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, errors.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.Load(g.FS(), g.ConfigFile, wd)
	if err != nil {
		return nil, nil, err
	}
	if g.Root != "" {
		cfg.Root = g.Root
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	// one-shot commands want the parse now
	cfg.ReparseDelay = 0
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	lvl, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	logger := debug.NewLogger(logs, lvl, !g.NoColor && !color.NoColor)
	ctx = logger.WithContext(ctx)
	zerolog.Ctx(ctx).Debug().Interface("config", cfg).Msg("configuration loaded")
	return ctx, cfg, nil
}

// ReadFile parses path as revision 1 without starting an engine.
func (g *Globals) ReadFile(path string) (*source.Parsed, error) {
	src, err := afero.ReadFile(g.FS(), path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	return source.Parse(path, src, 1), nil
}

// Engine starts an engine, opens path and waits until the file and the
// packages it imports are loaded. Call the returned func to shut it down.
func (g *Globals) Engine(ctx context.Context, cfg *config.Config, path string) (*engine.Engine, *source.Parsed, func() error, error) {
	e, err := engine.New(ctx, g.FS(), cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	shutdown := func() error { return e.Shutdown(ctx) }

	if _, err := e.OpenFile(ctx, path); err != nil {
		return nil, nil, nil, multierr.Combine(err, shutdown())
	}
	p, err := e.Current(ctx, path)
	if err != nil {
		return nil, nil, nil, multierr.Combine(err, shutdown())
	}
	if err := e.WaitImports(ctx); err != nil {
		return nil, nil, nil, multierr.Combine(err, shutdown())
	}
	return e, p, shutdown, nil
}

// Location is a position argument: file:offset or file:line:col, with
// 1-based line and byte column.
type Location struct {
	Path   string
	Offset int
	Line   int
	Column int
}

// ParseLocation parses a position argument. The path is made absolute.
func ParseLocation(arg string) (Location, error) {
	parts := strings.Split(arg, ":")
	nums := []int{}
	// at most two trailing numbers
	for len(parts) > 1 && len(nums) < 2 {
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			break
		}
		nums = append([]int{n}, nums...)
		parts = parts[:len(parts)-1]
	}

	path := strings.Join(parts, ":")
	if path == "" || len(nums) == 0 {
		return Location{}, errors.Errorf("invalid position %q: want file:offset or file:line:col", arg)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Location{}, errors.Errorf("resolving %s: %w", path, err)
	}

	loc := Location{Path: abs}
	if len(nums) == 1 {
		if nums[0] < 0 {
			return Location{}, errors.Errorf("invalid offset %d", nums[0])
		}
		loc.Offset = nums[0]
		return loc, nil
	}
	if nums[0] < 1 || nums[1] < 1 {
		return Location{}, errors.Errorf("invalid line:col %d:%d", nums[0], nums[1])
	}
	loc.Line, loc.Column = nums[0], nums[1]
	return loc, nil
}

// Resolve returns the byte offset of the location in p.
func (l Location) Resolve(p *source.Parsed) (int, error) {
	if l.Line == 0 {
		if l.Offset > len(p.Src) {
			return 0, errors.Errorf("offset %d past end of %s (%d bytes)", l.Offset, p.Path, len(p.Src))
		}
		return l.Offset, nil
	}
	off, err := p.Mapper.Offset(l.Line, l.Column)
	if err != nil {
		return 0, errors.Errorf("%s: %w", p.Path, err)
	}
	return off, nil
}

// Write encodes v in format. Text output is produced by text.
func Write(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return text(w)
	}
}
