package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/parser"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/token"
	"github.com/walteh/golens/pkg/types"
)

// world is a minimal in-memory set of packages keyed by import path.
type world struct {
	pkgs    map[string]*scope.Merged
	pkgOf   map[string]string // file path to import path
	files   map[string]*scope.FileInfo
	sources map[string]string
}

func newWorld() *world {
	return &world{pkgs: map[string]*scope.Merged{}, pkgOf: map[string]string{}, files: map[string]*scope.FileInfo{}, sources: map[string]string{}}
}

func (w *world) add(t *testing.T, importPath string, files map[string]string) {
	t.Helper()
	var infos []*scope.FileInfo
	for path, src := range files {
		f, toks, diags := parser.ParseFile([]byte(src))
		require.Empty(t, diags, path)
		info := scope.Bind(path, f, toks)
		infos = append(infos, info)
		w.pkgOf[path] = importPath
		w.files[path] = info
		w.sources[path] = src
	}
	w.pkgs[importPath] = scope.Merge(infos)
}

func (w *world) Package(file *scope.FileInfo) scope.Members {
	if m, ok := w.pkgs[w.pkgOf[file.Path]]; ok {
		return m
	}
	return nil
}

func (w *world) Import(_ *scope.FileInfo, imp *scope.Import) scope.Members {
	if m, ok := w.pkgs[imp.Path]; ok {
		return m
	}
	return nil
}

func (w *world) global(t *testing.T, r *types.Resolver, path, name string) types.Typed {
	t.Helper()
	sym := w.files[path].Scope.Local(name)
	require.NotNil(t, sym, name)
	return r.SymbolType(sym)
}

// local resolves name at the n-th token spelled name.
func (w *world) local(t *testing.T, r *types.Resolver, path, name string, n int) types.Typed {
	t.Helper()
	info := w.files[path]
	src := []byte(w.sources[path])
	for i, tk := range info.Tokens {
		if tk.Kind == token.IDENT && tk.Text(src) == name {
			if n == 0 {
				sym := r.Lookup(name, info.ScopeAt(i), i)
				require.NotNil(t, sym, name)
				return r.SymbolType(sym)
			}
			n--
		}
	}
	t.Fatalf("no token %q", name)
	return types.InvalidTyped
}

const basics = `package p

type T struct {
	X    int
	Next *T
}

func (t T) M() {}

func g() (int, error) { return 0, nil }

var v = T{}
var ptr = &v
var deref = *ptr
var n = new(T)
var s = []T{}
var m = map[string]*T{}
var e = s[0]
var f = m["a"]
var c = make(chan int)
var recv = <-c
var x = v.X
var nx = v.Next.Next
var l = len(s)
var a, b = g()
var conv = int64(3)
var nilPtr = (*T)(nil)
var sub = s[1:]
var cmp = x > 1
var sum = 1 + x
`

func TestTypeOfExpressions(t *testing.T) {
	w := newWorld()
	w.add(t, "example.com/p", map[string]string{"p.go": basics})
	r := types.NewResolver(w)

	tests := []struct {
		name string
		want string
	}{
		{"v", "p.T"},
		{"ptr", "*p.T"},
		{"deref", "p.T"},
		{"n", "*p.T"},
		{"s", "[]T"},
		{"m", "map[string]*T"},
		{"e", "p.T"},
		{"f", "*p.T"},
		{"c", "chan int"},
		{"recv", "int"},
		{"x", "int"},
		{"nx", "*p.T"},
		{"l", "int"},
		{"a", "int"},
		{"b", "error"},
		{"conv", "int64"},
		{"nilPtr", "*p.T"},
		{"sub", "[]T"},
		{"cmp", "bool"},
		{"sum", "int"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.global(t, r, "p.go", tt.name)
			assert.Equal(t, tt.want, types.String(got))
			assert.False(t, got.IsType)
		})
	}
}

func TestPointerRoundTrip(t *testing.T) {
	w := newWorld()
	w.add(t, "example.com/p", map[string]string{"p.go": basics})
	r := types.NewResolver(w)

	v := w.global(t, r, "p.go", "v")
	ptr := w.global(t, r, "p.go", "ptr")
	assert.True(t, types.Same(v.Pointer(), ptr))
	assert.True(t, types.Same(ptr.Deref(), v))
	assert.False(t, v.Deref().Valid())
}

func TestMembers(t *testing.T) {
	w := newWorld()
	w.add(t, "example.com/p", map[string]string{"p.go": "package p\ntype T struct{ X int }\nfunc (t T) M() {}"})
	r := types.NewResolver(w)

	typ := w.global(t, r, "p.go", "T")
	assert.True(t, typ.IsType)

	got := map[string]scope.Kind{}
	for _, m := range r.Members(typ) {
		got[m.Name] = m.Kind
	}
	assert.Equal(t, map[string]scope.Kind{"X": scope.Field, "M": scope.Method}, got)

	ptrMembers := r.Members(typ.Pointer())
	assert.Len(t, ptrMembers, 2)
	assert.Empty(t, r.Members(typ.Pointer().Pointer()))
}

func TestEmbeddingShadowing(t *testing.T) {
	src := `package p

type Base struct {
	ID   int
	Name string
}

func (Base) Hello() {}

type Wrap struct {
	*Base
	Name int
}

var w Wrap
`
	wd := newWorld()
	wd.add(t, "example.com/p", map[string]string{"p.go": src})
	r := types.NewResolver(wd)
	wt := wd.global(t, r, "p.go", "w")

	name := r.Member(wt, "Name")
	require.NotNil(t, name)
	assert.Equal(t, "Wrap", name.Recv)
	assert.Equal(t, "int", types.String(r.SymbolType(name)))

	id := r.Member(wt, "ID")
	require.NotNil(t, id)
	assert.Equal(t, "Base", id.Recv)

	assert.NotNil(t, r.Member(wt, "Hello"))
	base := r.Member(wt, "Base")
	require.NotNil(t, base)
	assert.Equal(t, scope.Field, base.Kind)
	assert.Equal(t, "*p.Base", types.String(r.SymbolType(base)))
}

func TestCrossFileAndImports(t *testing.T) {
	w := newWorld()
	w.add(t, "example.com/p", map[string]string{
		"a.go": "package p\n\nimport \"example.com/q\"\n\nvar x = q.New()\nvar y = helper()\nvar z = x.N\n",
		"b.go": "package p\n\nfunc helper() string { return \"\" }\n",
	})
	w.add(t, "example.com/q", map[string]string{
		"q.go": "package q\n\ntype Thing struct{ N int }\n\nfunc New() *Thing { return nil }\n\nfunc hidden() int { return 0 }\n",
	})
	r := types.NewResolver(w)

	assert.Equal(t, "*q.Thing", types.String(w.global(t, r, "a.go", "x")))
	assert.Equal(t, "string", types.String(w.global(t, r, "a.go", "y")))
	assert.Equal(t, "int", types.String(w.global(t, r, "a.go", "z")))

	q := w.files["a.go"].Scope.Local("q")
	require.NotNil(t, q)
	assert.NotNil(t, r.ImportMember(q, "New"))
	assert.Nil(t, r.ImportMember(q, "hidden"))

	names := map[string]bool{}
	for _, m := range r.Members(r.SymbolType(q)) {
		names[m.Name] = true
	}
	assert.Equal(t, map[string]bool{"Thing": true, "New": true}, names)
}

func TestLocalForms(t *testing.T) {
	src := `package p

func f(m map[string][]byte, ch chan bool, i any, arr *[3]float32, rest ...string) {
	for k, v := range m {
		_, _ = k, v
	}
	for idx, r := range "hello" {
		_, _ = idx, r
	}
	for _, el := range arr {
		_ = el
	}
	val, ok := m["a"]
	_, _ = val, ok
	got, open := <-ch
	_, _ = got, open
	switch tv := i.(type) {
	case *int:
		_ = tv
	default:
		_ = tv
	}
	_ = rest
	err := error(nil)
	_ = err.Error()
}
`
	w := newWorld()
	w.add(t, "example.com/p", map[string]string{"p.go": src})
	r := types.NewResolver(w)

	tests := []struct {
		name string
		nth  int
		want string
	}{
		{"k", 1, "string"},
		{"v", 1, "[]byte"},
		{"idx", 1, "int"},
		{"r", 1, "rune"},
		{"el", 1, "float32"},
		{"val", 1, "[]byte"},
		{"ok", 1, "bool"},
		{"got", 1, "bool"},
		{"open", 1, "bool"},
		{"tv", 1, "*int"},
		{"tv", 2, "any"},
		{"rest", 1, "[]string"},
		{"err", 1, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, types.String(w.local(t, r, "p.go", tt.name, tt.nth)))
		})
	}

	errT := w.local(t, r, "p.go", "err", 1)
	require.NotNil(t, r.Member(errT, "Error"))
}

func TestCyclesTerminate(t *testing.T) {
	src := "package p\n\ntype A B\ntype B A\n\ntype L struct {\n\t*L\n\tV int\n}\n\nvar a A\nvar l L\n"
	w := newWorld()
	w.add(t, "example.com/p", map[string]string{"p.go": src})
	r := types.NewResolver(w)

	a := w.global(t, r, "p.go", "a")
	assert.False(t, r.Underlying(a).Valid())
	assert.Empty(t, r.Members(a))

	names := map[string]bool{}
	for _, m := range r.Members(w.global(t, r, "p.go", "l")) {
		names[m.Name] = true
	}
	assert.Equal(t, map[string]bool{"L": true, "V": true}, names)
}
