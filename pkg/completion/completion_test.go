package completion_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/cache"
	"github.com/walteh/golens/pkg/completion"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/source"
)

// world serves one local package and the packages it imports, by path.
type world struct {
	local   *scope.Merged
	imports map[string]*scope.Merged
}

func (w world) Package(file *scope.FileInfo) scope.Members {
	if strings.HasPrefix(file.Path, "/lib/") {
		return w.imports["example.com/lib"]
	}
	return w.local
}

func (w world) Import(_ *scope.FileInfo, imp *scope.Import) scope.Members {
	if m, ok := w.imports[imp.Path]; ok {
		return m
	}
	return nil
}

const lib = `package lib

type Client struct {
	Name string
	conn int
}

func (c *Client) Do() error { return nil }

func New() *Client { return nil }

func helper() {}
`

func setup(t *testing.T, src string) (*source.Parsed, world) {
	t.Helper()
	l := source.Parse("/lib/lib.go", []byte(lib), 1)
	require.Empty(t, l.Diagnostics)
	p := source.Parse("/app/main.go", []byte(src), 1)
	return p, world{
		local:   scope.Merge([]*scope.FileInfo{p.Info}),
		imports: map[string]*scope.Merged{"example.com/lib": scope.Merge([]*scope.FileInfo{l.Info})},
	}
}

func labels(items []completion.CompletionItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

var packages = []cache.Entry{
	{Prefix: "encoding", Name: "json"},
	{Prefix: "", Name: "fmt"},
	{Prefix: "example.com", Name: "lib"},
}

func TestMemberCompletions(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		cursor string // completion happens right after the first occurrence
		want   []string
	}{
		{
			name:   "package_members_exported_only",
			src:    "package main\n\nimport \"example.com/lib\"\n\nfunc main() {\n\tlib.\n}\n",
			cursor: "lib.",
			want:   []string{"Client", "New"},
		},
		{
			name:   "struct_fields_and_methods",
			src:    "package main\n\nimport \"example.com/lib\"\n\nfunc main() {\n\tc := lib.New()\n\tc.\n}\n",
			cursor: "\tc.",
			want:   []string{"Do", "Name"},
		},
		{
			name:   "prefix_filters",
			src:    "package main\n\nimport \"example.com/lib\"\n\nfunc main() {\n\tc := lib.New()\n\tc.Na\n}\n",
			cursor: "c.Na",
			want:   []string{"Name"},
		},
		{
			name:   "local_type_keeps_unexported",
			src:    "package main\n\ntype box struct{ w, h int }\n\nfunc main() {\n\tvar b box\n\tb.\n}\n",
			cursor: "\tb.",
			want:   []string{"h", "w"},
		},
		{
			name:   "unresolved_operand",
			src:    "package main\n\nfunc main() {\n\tnope.\n}\n",
			cursor: "nope.",
			want:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, w := setup(t, tt.src)
			off := strings.Index(tt.src, tt.cursor)
			require.GreaterOrEqual(t, off, 0)
			list := completion.GetCompletions(context.Background(), w, p, off+len(tt.cursor), packages)
			assert.Equal(t, tt.want, labels(list.Items))
		})
	}
}

func TestScopeCompletions(t *testing.T) {
	src := "package main\n\nimport \"example.com/lib\"\n\nvar limit = 3\n\nfunc main() {\n\tlocal := 1\n\tl\n}\n"
	p, w := setup(t, src)
	off := strings.Index(src, "\tl\n") + 2

	list := completion.GetCompletions(context.Background(), w, p, off, packages)
	assert.Equal(t, "l", list.Replace.Text)
	assert.Equal(t, []string{"len", "lib", "limit", "local"}, labels(list.Items))

	for _, it := range list.Items {
		if it.Label == "lib" {
			assert.Equal(t, "package", it.Kind)
			assert.Empty(t, it.AddImport, "already imported")
		}
	}
}

func TestPackageCompletionAddsImport(t *testing.T) {
	src := "package main\n\nfunc main() {\n\tjs\n}\n"
	p, w := setup(t, src)
	off := strings.Index(src, "js") + 2

	list := completion.GetCompletions(context.Background(), w, p, off, packages)
	require.Len(t, list.Items, 1)
	assert.Equal(t, completion.CompletionItem{Label: "json", Kind: "package", Detail: "encoding/json", AddImport: "encoding/json"}, list.Items[0])
}

func TestKeywordCompletions(t *testing.T) {
	src := "package main\n\nfunc main() {\n\tfo\n}\n"
	p, w := setup(t, src)
	list := completion.GetCompletions(context.Background(), w, p, strings.Index(src, "fo")+2, nil)
	assert.Equal(t, []string{"for"}, labels(list.Items))
}

func TestCompletionContext(t *testing.T) {
	src := "package main\n\nfunc main() {\n\tx.abc\n}\n"
	p := source.Parse("/a.go", []byte(src), 1)
	at := strings.Index(src, "abc")

	cc := completion.NewCompletionContext(p, at+2)
	assert.True(t, cc.IsDotCompletion())
	assert.Equal(t, "ab", cc.Prefix.Text)
	assert.Equal(t, at, cc.Prefix.Offset)

	cc = completion.NewCompletionContext(p, at)
	assert.True(t, cc.IsDotCompletion(), "right after the period")
	assert.Equal(t, "", cc.Prefix.Text)

	cc = completion.NewCompletionContext(p, at-2)
	assert.False(t, cc.IsDotCompletion())
	assert.Equal(t, "", cc.Prefix.Text)
}
