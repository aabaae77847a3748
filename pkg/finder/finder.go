// Package finder collects the source files under a directory tree for
// commands that work on more than one file.
package finder

import (
	"context"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

var DefaultExtensions = []string{".go"}

// SourceFinder finds source files in a directory.
type SourceFinder interface {
	// FindSources returns every file under dir with one of the given
	// extensions, skipping paths that match a skip pattern.
	FindSources(ctx context.Context, dir string, extensions []string) ([]FileInfo, error)
}

// FileInfo represents information about a found source file
type FileInfo struct {
	Path     string
	Content  []byte
	FileType string
}

// DefaultFinder is the default implementation of SourceFinder
type DefaultFinder struct {
	fs   afero.Fs
	skip []string
}

// NewDefaultFinder reads through fs. Skip patterns are doublestar globs
// matched against paths relative to the searched directory.
func NewDefaultFinder(fs afero.Fs, skip []string) *DefaultFinder {
	return &DefaultFinder{fs: fs, skip: skip}
}

// FindSources implements SourceFinder. Results are sorted by path.
func (f *DefaultFinder) FindSources(ctx context.Context, dir string, extensions []string) ([]FileInfo, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if ok, err := afero.DirExists(f.fs, dir); err != nil || !ok {
		return nil, errors.Errorf("%s is not a directory", dir)
	}

	fsys := afero.NewIOFS(afero.NewBasePathFs(f.fs, dir))
	matches, err := doublestar.Glob(fsys, "**/*", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(matches)

	var files []FileInfo
	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("finding sources: %w", err)
		}
		ext := path.Ext(rel)
		if !hasExtension(extensions, ext) || f.skipped(rel) {
			continue
		}
		full := filepath.Join(dir, filepath.FromSlash(rel))
		content, err := afero.ReadFile(f.fs, full)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", full, err)
		}
		files = append(files, FileInfo{
			Path:     full,
			Content:  content,
			FileType: strings.TrimPrefix(ext, "."),
		})
	}
	return files, nil
}

func hasExtension(list []string, ext string) bool {
	for _, e := range list {
		if e == ext {
			return true
		}
	}
	return false
}

func (f *DefaultFinder) skipped(rel string) bool {
	for _, pat := range f.skip {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}
