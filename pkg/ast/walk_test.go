package ast_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/parser"
)

const src = `package p

func (r *R) Name(a int) string {
	return fmt.Sprint(a)
}
`

// order records the callbacks of the walk protocol.
type order struct {
	ast.BaseVisitor
	log  []string
	stop string
}

func (o *order) PreVisit(n ast.Node) bool {
	o.log = append(o.log, fmt.Sprintf("pre %T", n))
	if id, ok := n.(*ast.Ident); ok && id.Name == o.stop {
		o.Finish()
	}
	return true
}

func (o *order) EndVisit(n ast.Node)  { o.log = append(o.log, fmt.Sprintf("end %T", n)) }
func (o *order) PostVisit(n ast.Node) { o.log = append(o.log, fmt.Sprintf("post %T", n)) }

func TestWalkProtocol(t *testing.T) {
	f, _, diags := parser.ParseFile([]byte("package p\n"))
	require.Empty(t, diags)

	o := &order{}
	ast.Walk(o, f)
	assert.Equal(t, []string{
		"pre *ast.File",
		"pre *ast.Ident", "end *ast.Ident", "post *ast.Ident",
		"end *ast.File", "post *ast.File",
	}, o.log)
}

func TestWalkFinishStopsSiblings(t *testing.T) {
	f, _, diags := parser.ParseFile([]byte(src))
	require.Empty(t, diags)

	var names []string
	o := &order{stop: "Name"}
	ast.Walk(o, f)
	ast.Inspect(f, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			names = append(names, id.Name)
		}
		return true
	})
	assert.Equal(t, []string{"p", "r", "R", "Name", "a", "int", "string", "fmt", "Sprint", "a"}, names)
	assert.NotContains(t, o.log, "pre *ast.BlockStmt")
}

func TestPathTo(t *testing.T) {
	f, toks, diags := parser.ParseFile([]byte(src))
	require.Empty(t, diags)

	find := func(text string, n int) int {
		for i, tk := range toks {
			if tk.Text([]byte(src)) == text {
				if n == 0 {
					return i
				}
				n--
			}
		}
		t.Fatalf("no token %q", text)
		return -1
	}
	types := func(path []ast.Node) []string {
		out := make([]string, 0, len(path))
		for _, n := range path {
			out = append(out, fmt.Sprintf("%T", n))
		}
		return out
	}

	tests := []struct {
		name string
		tok  int
		want []string
	}{
		{
			name: "method_name_stops_at_ident",
			tok:  find("Name", 0),
			want: []string{"*ast.File", "*ast.FuncDecl", "*ast.Ident"},
		},
		{
			name: "parameter",
			tok:  find("a", 0),
			want: []string{"*ast.File", "*ast.FuncDecl", "*ast.FuncType", "*ast.FieldList", "*ast.Field", "*ast.Ident"},
		},
		{
			name: "selector",
			tok:  find("Sprint", 0),
			want: []string{"*ast.File", "*ast.FuncDecl", "*ast.BlockStmt", "*ast.ReturnStmt", "*ast.CallExpr", "*ast.SelectorExpr", "*ast.Ident"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, types(ast.PathTo(f, tt.tok)))
		})
	}
}
