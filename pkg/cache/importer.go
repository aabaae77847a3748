package cache

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/golens/pkg/source"
)

// Overlay returns the parse of an open file, or nil when the file is not
// open. Open files win over their contents on disk.
type Overlay func(path string) *source.Parsed

type importer struct {
	fs      afero.Fs
	skip    []string
	overlay Overlay
}

// Skipped reports whether path matches one of the skip patterns.
func skipped(patterns []string, path string) bool {
	name := strings.TrimPrefix(filepath.ToSlash(path), "/")
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// importDir parses the source files of dir into one package per declared
// name. The packages are returned sorted by name.
func (im *importer) importDir(ctx context.Context, dir string) ([]*Package, error) {
	infos, err := afero.ReadDir(im.fs, dir)
	if err != nil {
		return nil, errors.Errorf("reading directory %s: %w", dir, err)
	}

	byName := map[string][]*source.Parsed{}
	for _, fi := range infos {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("importing %s: %w", dir, err)
		}
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), ".go") {
			continue
		}
		path := filepath.Join(dir, fi.Name())
		if skipped(im.skip, path) {
			continue
		}
		p := im.parse(ctx, path)
		if p == nil {
			continue
		}
		byName[p.Package()] = append(byName[p.Package()], p)
	}

	out := make([]*Package, 0, len(byName))
	for name, files := range byName {
		out = append(out, NewPackage(Key{Dir: dir, Name: name}, files...))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Name < out[j].Key.Name })
	return out, nil
}

func (im *importer) parse(ctx context.Context, path string) *source.Parsed {
	if im.overlay != nil {
		if p := im.overlay(path); p != nil {
			return p
		}
	}
	data, err := afero.ReadFile(im.fs, path)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("file", path).Msg("skipping unreadable file")
		return nil
	}
	return source.Parse(path, data, 0)
}
