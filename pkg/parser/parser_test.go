package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/parser"
	"github.com/walteh/golens/pkg/token"
)

const sample = `package sample

import (
	"fmt"
	str "strings"
)

type Point struct {
	X, Y int
	Name string ` + "`json:\"name\"`" + `
	*fmt.Stringer
}

type Shape interface {
	Area() float64
	fmt.Stringer
}

const (
	A Kind = iota
	B
	C
)

var global = map[string][]int{"a": {1, 2}}

func (p *Point) Move(dx, dy int) (int, error) {
	p.X += dx
	if v := (Point{X: 1}); v.X > 0 {
		return v.X, nil
	}
	for i, v := range []int{1, 2, 3} {
		_ = i + v
	}
	for i := 0; i < 10; i++ {
		continue
	}
	switch t := any(p).(type) {
	case *Point:
		_ = t
	default:
	}
	select {
	case v := <-make(chan int):
		_ = v
	default:
	}
	go func() {}()
	defer fmt.Println(str.ToUpper("x"))
outer:
	for {
		break outer
	}
	return 0, nil
}
`

func TestParseFileValid(t *testing.T) {
	f, toks, diags := parser.ParseFile([]byte(sample))
	require.NotNil(t, f)
	assert.Empty(t, diags)
	assert.NotEmpty(t, toks)

	require.NotNil(t, f.Name)
	assert.Equal(t, "sample", f.Name.Name)
	require.Len(t, f.Imports, 2)
	assert.Equal(t, `"fmt"`, f.Imports[0].Path.Value)
	assert.Equal(t, "str", f.Imports[1].Name.Name)

	require.Len(t, f.Decls, 6)
	fn, ok := f.Decls[5].(*ast.FuncDecl)
	require.True(t, ok)
	assert.True(t, fn.IsMethod())
	assert.Equal(t, "Move", fn.Name.Name)
	assert.Equal(t, 2, fn.Type.Params.NumFields())
	assert.Equal(t, 2, fn.Type.Results.NumFields())
}

func TestParseFileStatementKinds(t *testing.T) {
	f, _, diags := parser.ParseFile([]byte(sample))
	require.Empty(t, diags)

	seen := map[string]bool{}
	ast.Inspect(f, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.RangeStmt:
			seen["range"] = true
		case *ast.ForStmt:
			seen["for"] = true
		case *ast.TypeSwitchStmt:
			seen["typeswitch"] = true
		case *ast.SelectStmt:
			seen["select"] = true
		case *ast.GoStmt:
			seen["go"] = true
		case *ast.DeferStmt:
			seen["defer"] = true
		case *ast.LabeledStmt:
			seen["label"] = true
		case *ast.CompositeLit:
			seen["composite"] = true
		}
		return true
	})
	for _, k := range []string{"range", "for", "typeswitch", "select", "go", "defer", "label", "composite"} {
		assert.True(t, seen[k], "missing %s", k)
	}
}

func TestParseConstGroup(t *testing.T) {
	f, _, diags := parser.ParseFile([]byte("package p\nconst (\n\tA Kind = iota\n\tB\n\tC\n)\n"))
	require.Empty(t, diags)
	require.Len(t, f.Decls, 1)
	gd := f.Decls[0].(*ast.GenDecl)
	require.Len(t, gd.Specs, 3)

	a := gd.Specs[0].(*ast.ValueSpec)
	b := gd.Specs[1].(*ast.ValueSpec)
	c := gd.Specs[2].(*ast.ValueSpec)
	assert.Nil(t, a.Prev)
	assert.Same(t, a, b.Prev)
	assert.Same(t, a, c.Prev)
	assert.Equal(t, 2, c.Iota)
}

func TestParseCompositeLiteralInHeader(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind any
	}{
		{
			name: "plain_type_name_ends_header",
			src:  "package p\nfunc f() {\n\tif x == y {\n\t}\n}\n",
			kind: &ast.Ident{},
		},
		{
			name: "parenthesized_literal_allowed",
			src:  "package p\nfunc f() {\n\tif x == (T{}) {\n\t}\n}\n",
			kind: &ast.ParenExpr{},
		},
		{
			name: "slice_literal_allowed",
			src:  "package p\nfunc f() {\n\tif x == len([]int{1}) {\n\t}\n}\n",
			kind: &ast.CallExpr{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, diags := parser.ParseFile([]byte(tt.src))
			require.Empty(t, diags)
			fn := f.Decls[0].(*ast.FuncDecl)
			ifs := fn.Body.List[0].(*ast.IfStmt)
			bin := ifs.Cond.(*ast.BinaryExpr)
			assert.IsType(t, tt.kind, bin.Y)
		})
	}
}

func TestParseErrorsRecover(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantDecls int
	}{
		{
			name:      "missing_rhs",
			src:       "package p\nfunc f() {\n\tx :=\n}\nfunc g() {}\n",
			wantDecls: 2,
		},
		{
			name:      "statement_at_top_level",
			src:       "package p\nx = 1\nfunc g() {}\n",
			wantDecls: 2,
		},
		{
			name:      "dangling_selector",
			src:       "package p\nfunc f() {\n\tfmt.\n}\n",
			wantDecls: 1,
		},
		{
			name:      "missing_package",
			src:       "func f() {}\n",
			wantDecls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, diags := parser.ParseFile([]byte(tt.src))
			require.NotNil(t, f)
			assert.NotEmpty(t, diags)
			assert.Len(t, f.Decls, tt.wantDecls)
		})
	}
}

func TestDanglingSelectorKeepsOperand(t *testing.T) {
	f, toks, _ := parser.ParseFile([]byte("package p\nfunc f() {\n\tfmt.\n}\n"))
	fn := f.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.List, 1)
	sel := fn.Body.List[0].(*ast.ExprStmt).X.(*ast.SelectorExpr)
	assert.Equal(t, "fmt", sel.X.(*ast.Ident).Name)
	assert.Equal(t, "", sel.Sel.Name)
	assert.Equal(t, token.PERIOD, toks[sel.Sel.Tok].Kind)
}

func TestParseEveryPrefix(t *testing.T) {
	src := []byte(sample)
	for i := 0; i <= len(src); i++ {
		f, toks, _ := parser.ParseFile(src[:i])
		require.NotNil(t, f, "prefix %d", i)
		ast.Inspect(f, func(n ast.Node) bool {
			assert.LessOrEqual(t, n.Last(), len(toks), "prefix %d", i)
			return true
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	f1, t1, d1 := parser.ParseFile([]byte(sample))
	f2, t2, d2 := parser.ParseFile([]byte(sample))
	assert.Equal(t, t1, t2)
	assert.Equal(t, d1, d2)
	assert.Equal(t, f1, f2)
}
