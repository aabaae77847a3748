// Package hover describes the symbol under the cursor.
package hover

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/position"
	"github.com/walteh/golens/pkg/refs"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/types"
)

// HoverInfo represents the information to be displayed in a hover tooltip
type HoverInfo struct {
	// Content is the markdown content to display
	Content []string
	// Position is the identifier this hover applies to
	Position position.RawPosition
}

// Hover describes the symbol at offset. It returns nil when nothing there
// resolves.
func Hover(ctx context.Context, w types.World, p *source.Parsed, offset int) *HoverInfo {
	r := types.NewResolver(w)
	sym, tok := refs.SymbolAt(r, p, offset)
	if sym == nil {
		zerolog.Ctx(ctx).Debug().Int("offset", offset).Msg("nothing to hover")
		return nil
	}
	return &HoverInfo{
		Content:  []string{fence(Describe(r, sym))},
		Position: p.Position(tok),
	}
}

func fence(s string) string {
	return "```go\n" + s + "\n```"
}

// Describe renders a one-line declaration of sym.
//
//	var x T
//	const c T = 1
//	func (r R) M(a int) string
//	type T struct{X int}
//	field X int
//	package fmt ("fmt")
func Describe(r *types.Resolver, sym *scope.Symbol) string {
	switch sym.Kind {
	case scope.Var, scope.Arg:
		return fmt.Sprintf("var %s %s", sym.Name, typeString(r, sym))
	case scope.Const:
		return describeConst(r, sym)
	case scope.Type:
		if sym.IsUniverse() || sym.Type == nil {
			return "type " + sym.Name
		}
		return fmt.Sprintf("type %s %s", sym.Name, ast.ExprString(sym.Type))
	case scope.Field:
		return fmt.Sprintf("field %s %s", sym.Name, ast.ExprString(sym.Type))
	case scope.Func, scope.Method:
		return describeFunc(sym)
	case scope.Package:
		return fmt.Sprintf("package %s (%q)", sym.Name, sym.Import.Path)
	case scope.Label:
		return "label " + sym.Name
	case scope.Builtin:
		return "func " + sym.Name
	}
	return sym.Name
}

func typeString(r *types.Resolver, sym *scope.Symbol) string {
	if t := r.SymbolType(sym); t.Valid() {
		return types.String(t)
	}
	if sym.Type != nil {
		return ast.ExprString(sym.Type)
	}
	return "invalid type"
}

func describeConst(r *types.Resolver, sym *scope.Symbol) string {
	var sb strings.Builder
	sb.WriteString("const ")
	sb.WriteString(sym.Name)
	if sym.IsUniverse() {
		return sb.String()
	}
	if t := r.SymbolType(sym); t.Valid() {
		sb.WriteByte(' ')
		sb.WriteString(types.String(t))
	}
	if lit, ok := sym.Value.(*ast.BasicLit); ok && !sym.Tuple {
		sb.WriteString(" = ")
		sb.WriteString(lit.Value)
	}
	return sb.String()
}

func describeFunc(sym *scope.Symbol) string {
	var sb strings.Builder
	sb.WriteString("func ")
	switch d := sym.Decl.(type) {
	case *ast.FuncDecl:
		if d.IsMethod() {
			sb.WriteByte('(')
			sb.WriteString(ast.FieldListString(d.Recv))
			sb.WriteString(") ")
		}
		sb.WriteString(ast.SignatureString(sym.Name, d.Type))
	case *ast.Field:
		// interface method
		if sym.Recv != "" {
			sb.WriteString("(" + sym.Recv + ") ")
		}
		ft, _ := d.Type.(*ast.FuncType)
		sb.WriteString(ast.SignatureString(sym.Name, ft))
	default:
		sb.WriteString(sym.Name)
	}
	return sb.String()
}
