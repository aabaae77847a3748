package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/parser"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/token"
)

func bind(t *testing.T, src string) (*scope.FileInfo, []token.Token) {
	t.Helper()
	f, toks, diags := parser.ParseFile([]byte(src))
	require.Empty(t, diags)
	return scope.Bind("p.go", f, toks), toks
}

// nth returns the token index of the n-th (0-based) token spelled text.
func nth(t *testing.T, src string, toks []token.Token, text string, n int) int {
	t.Helper()
	for i, tk := range toks {
		if tk.Text([]byte(src)) == text {
			if n == 0 {
				return i
			}
			n--
		}
	}
	t.Fatalf("token %q not found", text)
	return -1
}

func lookupAt(info *scope.FileInfo, name string, tok int) *scope.Symbol {
	return info.ScopeAt(tok).Lookup(name, tok, nil)
}

func TestDeclareBeforeUse(t *testing.T) {
	src := "package p\n\nfunc f() {\n\t_ = x\n\tx := 1\n\t_ = x\n}\n"
	info, toks := bind(t, src)

	before := nth(t, src, toks, "x", 0)
	decl := nth(t, src, toks, "x", 1)
	after := nth(t, src, toks, "x", 2)

	assert.Nil(t, lookupAt(info, "x", before))
	assert.Nil(t, lookupAt(info, "x", decl), "a short variable declaration is not visible in its own statement")

	sym := lookupAt(info, "x", after)
	require.NotNil(t, sym)
	assert.Equal(t, scope.Var, sym.Kind)
	assert.Equal(t, decl, sym.Pos)
	assert.Less(t, sym.Pos, after)
}

func TestShadowing(t *testing.T) {
	src := "package p\n\nvar x = 1\n\nfunc f() {\n\tif true {\n\t\tx := \"s\"\n\t\t_ = x\n\t}\n\t_ = x\n}\n"
	info, toks := bind(t, src)

	inner := lookupAt(info, "x", nth(t, src, toks, "x", 2))
	require.NotNil(t, inner)
	assert.False(t, inner.Global)

	outer := lookupAt(info, "x", nth(t, src, toks, "x", 3))
	require.NotNil(t, outer)
	assert.True(t, outer.Global)
	assert.False(t, inner.Same(outer))
}

func TestMethodTable(t *testing.T) {
	src := "package p\ntype T struct{ X int }\nfunc (t T) M() {}"
	info, _ := bind(t, src)

	assert.Equal(t, "p", info.Package)
	require.Contains(t, info.Methods, "T")
	m := info.Methods["T"]["M"]
	require.NotNil(t, m)
	assert.Equal(t, scope.Method, m.Kind)
	assert.Equal(t, "T", m.Recv)

	require.Len(t, info.Globals, 1)
	assert.Equal(t, "T", info.Globals[0].Name)
	assert.Nil(t, info.Scope.Local("M"), "methods are not package members")
}

func TestImports(t *testing.T) {
	src := "package p\n\nimport (\n\t\"fmt\"\n\tyml \"gopkg.in/yaml.v3\"\n\t_ \"embed\"\n\t. \"strings\"\n\t\"github.com/x/go-thing/v2\"\n)\n"
	info, _ := bind(t, src)
	require.Len(t, info.Imports, 5)

	tests := []struct {
		path  string
		name  string
		blank bool
		dot   bool
	}{
		{"fmt", "fmt", false, false},
		{"gopkg.in/yaml.v3", "yml", false, false},
		{"embed", "embed", true, false},
		{"strings", "strings", false, true},
		{"github.com/x/go-thing/v2", "thing", false, false},
	}
	for i, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			imp := info.Imports[i]
			assert.Equal(t, tt.path, imp.Path)
			assert.Equal(t, tt.name, imp.Name)
			assert.Equal(t, tt.blank, imp.IsBlank())
			assert.Equal(t, tt.dot, imp.IsDot())
			if tt.blank || tt.dot {
				assert.Nil(t, imp.Symbol)
			} else {
				require.NotNil(t, imp.Symbol)
				assert.Equal(t, scope.Package, imp.Symbol.Kind)
			}
		})
	}
	assert.NotNil(t, info.ImportByName("yml"))
	assert.Nil(t, info.ImportByName("yaml"))
}

func TestDefaultName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"fmt", "fmt"},
		{"net/http", "http"},
		{"gopkg.in/yaml.v3", "yaml"},
		{"github.com/spf13/viper", "viper"},
		{"github.com/apparentlymart/go-textseg/v13", "textseg"},
		{"github.com/mattn/go-isatty", "isatty"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, scope.DefaultName(tt.path))
		})
	}
}

func TestTypeSwitchClauses(t *testing.T) {
	src := "package p\n\nfunc f(x any) {\n\tswitch v := x.(type) {\n\tcase int:\n\t\t_ = v\n\tdefault:\n\t\t_ = v\n\t}\n}\n"
	info, toks := bind(t, src)

	inInt := lookupAt(info, "v", nth(t, src, toks, "v", 1))
	inDefault := lookupAt(info, "v", nth(t, src, toks, "v", 2))
	require.NotNil(t, inInt)
	require.NotNil(t, inDefault)

	assert.NotNil(t, inInt.Type, "single-type clause narrows the variable")
	assert.Nil(t, inDefault.Type)
	assert.NotNil(t, inDefault.Value)
	assert.True(t, inInt.Same(inDefault))
	assert.Equal(t, nth(t, src, toks, "v", 0), inInt.Pos)
}

func TestRangeAndLabels(t *testing.T) {
	src := "package p\n\nfunc f(xs []int) {\nouter:\n\tfor i, v := range xs {\n\t\t_, _ = i, v\n\t\tbreak outer\n\t}\n}\n"
	info, toks := bind(t, src)

	use := nth(t, src, toks, "v", 1)
	v := lookupAt(info, "v", use)
	require.NotNil(t, v)
	assert.Equal(t, 1, v.Index)
	assert.Equal(t, scope.Var, v.Kind)

	xs := lookupAt(info, "xs", use)
	require.NotNil(t, xs)
	assert.Equal(t, scope.Arg, xs.Kind)

	label := info.ScopeAt(use).LookupLabel("outer")
	require.NotNil(t, label)
	assert.Equal(t, scope.Label, label.Kind)
}

type fakeMembers map[string]*scope.Symbol

func (f fakeMembers) Member(name string) *scope.Symbol       { return f[name] }
func (f fakeMembers) Method(string, string) *scope.Symbol    { return nil }
func (f fakeMembers) MethodSet(string) []*scope.Symbol        { return nil }
func (f fakeMembers) Members() []*scope.Symbol {
	out := make([]*scope.Symbol, 0, len(f))
	for _, s := range f {
		out = append(out, s)
	}
	return out
}

func TestLookupOrder(t *testing.T) {
	src := "package p\n\nimport \"fmt\"\n\nfunc f() {\n\t_ = Other\n\t_ = fmt.Sprint\n\t_ = len\n}\n"
	info, toks := bind(t, src)
	other := &scope.Symbol{Name: "Other", Kind: scope.Var, Global: true}
	shadow := &scope.Symbol{Name: "fmt", Kind: scope.Var, Global: true}
	pkg := fakeMembers{"Other": other, "fmt": shadow}

	use := nth(t, src, toks, "Other", 0)
	sc := info.ScopeAt(use)
	assert.Same(t, other, sc.Lookup("Other", use, pkg))

	fmtSym := sc.Lookup("fmt", use, pkg)
	require.NotNil(t, fmtSym)
	assert.Equal(t, scope.Package, fmtSym.Kind, "imports of the file win over other files")

	l := sc.Lookup("len", use, pkg)
	require.NotNil(t, l)
	assert.Equal(t, scope.Builtin, l.Kind)
	assert.True(t, l.IsUniverse())

	names := map[string]bool{}
	for _, s := range sc.Visible(use, pkg) {
		names[s.Name] = true
	}
	assert.True(t, names["Other"])
	assert.True(t, names["f"])
	assert.True(t, names["int"])
}

func TestInnermostUnclosedBody(t *testing.T) {
	src := "package p\n\nfunc f() {\n\tx := 1\n\t_ = x\n"
	f, toks, _ := parser.ParseFile([]byte(src))
	info := scope.Bind("p.go", f, toks)
	sc := info.ScopeAt(len(toks))
	assert.Equal(t, scope.FuncScope, sc.Kind)
	assert.NotNil(t, sc.Lookup("x", len(toks), nil))
}
