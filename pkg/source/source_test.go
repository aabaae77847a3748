package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/source"
)

func TestParse(t *testing.T) {
	src := "package demo\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(x)\n}\n"
	p := source.Parse("/work/demo/main.go", []byte(src), 3)

	assert.Equal(t, "demo", p.Package())
	assert.Equal(t, "/work/demo", p.Dir())
	assert.Equal(t, 3, p.Revision)
	require.Len(t, p.Imports(), 1)
	assert.Equal(t, "fmt", p.Imports()[0].Path)
	assert.Empty(t, p.Diagnostics)
}

func TestParseLocatesDiagnostics(t *testing.T) {
	p := source.Parse("bad.go", []byte("package p\n\nfunc f() {\n\tx :=\n}\n"), 1)
	require.NotEmpty(t, p.Diagnostics)
	d := p.Diagnostics[0]
	assert.Equal(t, "bad.go", d.File)
	assert.Equal(t, 5, d.Line)
}

func TestTokenAt(t *testing.T) {
	src := "package p\nvar ab = cd+ef\n"
	p := source.Parse("p.go", []byte(src), 1)

	tests := []struct {
		name   string
		offset int
		want   string
	}{
		{"start_of_word", 14, "ab"},
		{"end_of_word", 16, "ab"},
		{"between_ident_and_operator", 21, "cd"},
		{"after_operator", 22, "ef"},
		{"keyword", 10, "var"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := p.TokenAt(tt.offset)
			require.GreaterOrEqual(t, i, 0)
			assert.Equal(t, tt.want, p.Text(i))
		})
	}

	assert.Equal(t, -1, p.IdentAt(10))
	assert.Equal(t, -1, p.TokenAt(len(src)+10))
}

func TestUnitRevisions(t *testing.T) {
	u := source.NewUnit("a.go", []byte("package a\n"))
	assert.Equal(t, 1, u.Revision())
	assert.Nil(t, u.Parsed())

	first := u.Parse()
	assert.True(t, u.Current())
	assert.Same(t, first, u.Parsed())

	rev := u.SetText([]byte("package a\n\nvar x int\n"))
	assert.Equal(t, 2, rev)
	assert.False(t, u.Current())

	second := source.Parse(u.Path, []byte("package a\n\nvar x int\n"), rev)
	assert.True(t, u.Commit(second))

	// an older parse never replaces a newer one
	assert.False(t, u.Commit(first))
	assert.Same(t, second, u.Parsed())

	// nor can a parse claim a revision the unit has not reached
	assert.False(t, u.Commit(source.Parse(u.Path, nil, rev+1)))
}
