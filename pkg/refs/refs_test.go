package refs_test

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/refs"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/types"
)

var project = map[string]string{
	"/p/a.go": `package p

type T struct {
	X int
}

func (t *T) M() int {
	return t.X
}

func New() *T {
	return &T{X: 1}
}
`,
	"/p/b.go": `package p

func use() int {
	v := New()
	x := v.X
	for x := 0; x < 3; x++ {
		_ = x
	}
	return x + v.M()
}
`,
	"/m/main.go": `package main

import "example.com/p"

func main() {
	t := p.New()
	_ = t.X
outer:
	for {
		break outer
	}
}
`,
}

// index is an in-memory Index over project.
type index struct {
	files map[string]*source.Parsed
	dirs  map[string]*scope.Merged
	paths map[string]string // import path to dir
}

func newIndex(t *testing.T) *index {
	t.Helper()
	ix := &index{files: map[string]*source.Parsed{}, dirs: map[string]*scope.Merged{}, paths: map[string]string{"example.com/p": "/p"}}
	byDir := map[string][]*scope.FileInfo{}
	for path, src := range project {
		p := source.Parse(path, []byte(src), 1)
		require.Empty(t, p.Diagnostics, path)
		ix.files[path] = p
		byDir[p.Dir()] = append(byDir[p.Dir()], p.Info)
	}
	for dir, infos := range byDir {
		ix.dirs[dir] = scope.Merge(infos)
	}
	return ix
}

func (ix *index) Package(file *scope.FileInfo) scope.Members {
	if m, ok := ix.dirs[filepath.Dir(file.Path)]; ok {
		return m
	}
	return nil
}

func (ix *index) Import(_ *scope.FileInfo, imp *scope.Import) scope.Members {
	if m, ok := ix.dirs[ix.paths[imp.Path]]; ok {
		return m
	}
	return nil
}

func (ix *index) File(path string) *source.Parsed { return ix.files[path] }

func (ix *index) Files() []*source.Parsed {
	out := make([]*source.Parsed, 0, len(ix.files))
	for _, f := range ix.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// at returns the offset of the n-th occurrence of needle in path, plus
// delta.
func at(t *testing.T, path, needle string, n, delta int) int {
	t.Helper()
	src := project[path]
	off := -1
	for i := 0; i <= n; i++ {
		j := strings.Index(src[off+1:], needle)
		require.GreaterOrEqual(t, j, 0, "occurrence %d of %q", i, needle)
		off += j + 1
	}
	return off + delta
}

type hit struct {
	File string
	Line int
	Decl bool
}

func hits(locs []refs.Location) []hit {
	out := make([]hit, 0, len(locs))
	for _, l := range locs {
		out = append(out, hit{l.File, l.Line, l.Declaration})
	}
	return out
}

func TestReferences(t *testing.T) {
	ix := newIndex(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		file   string
		offset func(t *testing.T) int
		want   []hit
	}{
		{
			name:   "field_across_packages",
			file:   "/p/a.go",
			offset: func(t *testing.T) int { return at(t, "/p/a.go", "X int", 0, 0) },
			want: []hit{
				{"/m/main.go", 7, false},
				{"/p/a.go", 4, true},
				{"/p/a.go", 8, false},
				{"/p/a.go", 12, false},
				{"/p/b.go", 5, false},
			},
		},
		{
			name:   "shadowed_local",
			file:   "/p/b.go",
			offset: func(t *testing.T) int { return at(t, "/p/b.go", "x :=", 0, 0) },
			want: []hit{
				{"/p/b.go", 5, true},
				{"/p/b.go", 9, false},
			},
		},
		{
			name:   "inner_local",
			file:   "/p/b.go",
			offset: func(t *testing.T) int { return at(t, "/p/b.go", "_ = x", 0, 4) },
			want: []hit{
				{"/p/b.go", 6, true},
				{"/p/b.go", 6, false},
				{"/p/b.go", 6, false},
				{"/p/b.go", 7, false},
			},
		},
		{
			name:   "method",
			file:   "/p/b.go",
			offset: func(t *testing.T) int { return at(t, "/p/b.go", "M()", 0, 0) },
			want: []hit{
				{"/p/a.go", 7, true},
				{"/p/b.go", 9, false},
			},
		},
		{
			name:   "label",
			file:   "/m/main.go",
			offset: func(t *testing.T) int { return at(t, "/m/main.go", "outer", 1, 0) },
			want: []hit{
				{"/m/main.go", 8, true},
				{"/m/main.go", 10, false},
			},
		},
		{
			name:   "implicit_import",
			file:   "/m/main.go",
			offset: func(t *testing.T) int { return at(t, "/m/main.go", "p.New", 0, 0) },
			want: []hit{
				{"/m/main.go", 3, true},
				{"/m/main.go", 6, false},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locs := refs.References(ctx, ix, ix.File(tt.file), tt.offset(t))
			assert.Equal(t, tt.want, hits(locs))
		})
	}
}

func TestReferencesLineText(t *testing.T) {
	ix := newIndex(t)
	locs := refs.References(context.Background(), ix, ix.File("/m/main.go"), at(t, "/m/main.go", "t.X", 0, 2))
	require.NotEmpty(t, locs)
	main := locs[0]
	assert.Equal(t, "\t_ = t.X", main.LineText)
	assert.Equal(t, 8, main.Column)
	assert.Equal(t, 1, main.Length)
}

func TestDefinition(t *testing.T) {
	ix := newIndex(t)
	ctx := context.Background()

	link, ok := refs.Definition(ctx, ix, ix.File("/m/main.go"), at(t, "/m/main.go", "New", 0, 1))
	require.True(t, ok)
	assert.Equal(t, refs.Link{File: "/p/a.go", Offset: at(t, "/p/a.go", "New", 0, 0), Line: 11, Column: 6}, link)

	_, ok = refs.Definition(ctx, ix, ix.File("/p/a.go"), at(t, "/p/a.go", "int", 0, 0))
	assert.False(t, ok, "predeclared names have no definition")
}

func TestSymbolAtImportPath(t *testing.T) {
	ix := newIndex(t)
	main := ix.File("/m/main.go")
	sym, tok := refs.SymbolAt(types.NewResolver(ix), main, at(t, "/m/main.go", `"example.com/p"`, 0, 3))
	require.NotNil(t, sym)
	assert.Equal(t, scope.Package, sym.Kind)
	assert.Equal(t, "p", sym.Name)
	assert.Equal(t, `"example.com/p"`, main.Text(tok))
}

func TestRename(t *testing.T) {
	ix := newIndex(t)
	ctx := context.Background()
	main := ix.File("/m/main.go")

	edits, err := refs.Rename(ctx, ix, main, at(t, "/m/main.go", "p.New", 0, 0), "q")
	require.NoError(t, err)
	assert.Equal(t, []refs.Edit{
		{File: "/m/main.go", Offset: at(t, "/m/main.go", `"example.com/p"`, 0, 0), NewText: "q "},
		{File: "/m/main.go", Offset: at(t, "/m/main.go", "p.New", 0, 0), Length: 1, NewText: "q"},
	}, edits)

	edits, err = refs.Rename(ctx, ix, ix.File("/p/b.go"), at(t, "/p/b.go", "x :=", 0, 0), "y")
	require.NoError(t, err)
	assert.Len(t, edits, 2)
}

func TestRenameRejects(t *testing.T) {
	ix := newIndex(t)
	ctx := context.Background()
	b := ix.File("/p/b.go")

	tests := []struct {
		name    string
		offset  int
		newName string
	}{
		{"not_an_identifier", at(t, "/p/b.go", "x :=", 0, 0), "1x"},
		{"keyword", at(t, "/p/b.go", "x :=", 0, 0), "func"},
		{"blank", at(t, "/p/b.go", "x :=", 0, 0), "_"},
		{"predeclared", at(t, "/p/b.go", "int", 0, 0), "count"},
		{"no_symbol", at(t, "/p/b.go", "for", 0, 0), "y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := refs.Rename(ctx, ix, b, tt.offset, tt.newName)
			assert.Error(t, err)
		})
	}
}
