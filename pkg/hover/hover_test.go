package hover_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/hover"
	"github.com/walteh/golens/pkg/position"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/source"
)

const src = `package p

import "fmt"

const Max int = 10

type T struct {
	X int
}

type Shape interface {
	Area() float64
}

func (t *T) M(a int) string {
	v := t.X + a
	return fmt.Sprint(v)
}

func main() {
	var s []T
	_ = len(s)
loop:
	for {
		break loop
	}
}
`

type world struct{ pkg *scope.Merged }

func (w world) Package(*scope.FileInfo) scope.Members             { return w.pkg }
func (w world) Import(*scope.FileInfo, *scope.Import) scope.Members { return nil }

func TestHover(t *testing.T) {
	p := source.Parse("/p/a.go", []byte(src), 1)
	require.Empty(t, p.Diagnostics)
	w := world{pkg: scope.Merge([]*scope.FileInfo{p.Info})}

	tests := []struct {
		name   string
		needle string
		n      int
		want   string
	}{
		{"const", "Max", 0, "const Max int = 10"},
		{"type", "T struct", 0, "type T struct{X int}"},
		{"field_use", "X +", 0, "field X int"},
		{"method_decl", "M(a", 0, "func (t *T) M(a int) string"},
		{"interface_method", "Area", 0, "func (Shape) Area() float64"},
		{"param", "a int", 0, "var a int"},
		{"local", "v :=", 0, "var v int"},
		{"receiver", "t.X", 0, "var t *p.T"},
		{"package", "fmt.Sprint", 0, `package fmt ("fmt")`},
		{"slice_local", "s []T", 0, "var s []T"},
		{"builtin", "len", 0, "func len"},
		{"universe_type", "int", 0, "type int"},
		{"label", "loop", 1, "label loop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off := -1
			for i := 0; i <= tt.n; i++ {
				j := strings.Index(src[off+1:], tt.needle)
				require.GreaterOrEqual(t, j, 0)
				off += j + 1
			}
			h := hover.Hover(context.Background(), w, p, off)
			require.NotNil(t, h)
			assert.Equal(t, []string{"```go\n" + tt.want + "\n```"}, h.Content)
			assert.Equal(t, off, h.Position.Offset)
		})
	}
}

func TestHoverNothing(t *testing.T) {
	p := source.Parse("/p/a.go", []byte(src), 1)
	w := world{pkg: scope.Merge([]*scope.FileInfo{p.Info})}

	assert.Nil(t, hover.Hover(context.Background(), w, p, strings.Index(src, "import")))
	assert.Nil(t, hover.Hover(context.Background(), w, p, len(src)+5))
}

func TestHoverPosition(t *testing.T) {
	p := source.Parse("/p/a.go", []byte(src), 1)
	w := world{pkg: scope.Merge([]*scope.FileInfo{p.Info})}
	off := strings.Index(src, "Max")
	h := hover.Hover(context.Background(), w, p, off+2)
	require.NotNil(t, h)
	assert.Equal(t, position.NewBasicPosition("Max", off), h.Position)
}
