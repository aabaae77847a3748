package ast

import (
	"strings"
)

// ExprString renders an expression, in particular a type expression, in
// a compact single-line form for hover text and completion details.
// Function bodies and composite literal elements are elided.
func ExprString(x Expr) string {
	var sb strings.Builder
	writeExpr(&sb, x)
	return sb.String()
}

// FieldListString renders a parameter or result list without the
// surrounding parentheses.
func FieldListString(f *FieldList) string {
	var sb strings.Builder
	writeFieldList(&sb, f, ", ")
	return sb.String()
}

// ResultsString renders a result list the way it appears in a signature.
func ResultsString(f *FieldList) string {
	if f == nil || len(f.List) == 0 {
		return ""
	}
	if len(f.List) == 1 && len(f.List[0].Names) == 0 {
		return ExprString(f.List[0].Type)
	}
	return "(" + FieldListString(f) + ")"
}

func writeFieldList(sb *strings.Builder, f *FieldList, sep string) {
	if f == nil {
		return
	}
	for i, fld := range f.List {
		if i > 0 {
			sb.WriteString(sep)
		}
		for j, n := range fld.Names {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(n.Name)
		}
		if len(fld.Names) > 0 {
			sb.WriteByte(' ')
		}
		writeExpr(sb, fld.Type)
	}
}

func writeSignature(sb *strings.Builder, t *FuncType) {
	sb.WriteByte('(')
	writeFieldList(sb, t.Params, ", ")
	sb.WriteByte(')')
	if r := ResultsString(t.Results); r != "" {
		sb.WriteByte(' ')
		sb.WriteString(r)
	}
}

func writeExpr(sb *strings.Builder, x Expr) {
	switch x := x.(type) {
	case nil:
	case *BadExpr:
		sb.WriteString("BadExpr")
	case *Ident:
		sb.WriteString(x.Name)
	case *Ellipsis:
		sb.WriteString("...")
		writeExpr(sb, x.Elt)
	case *BasicLit:
		sb.WriteString(x.Value)
	case *FuncLit:
		sb.WriteString("func")
		writeSignature(sb, x.Type)
		sb.WriteString(" {…}")
	case *CompositeLit:
		writeExpr(sb, x.Type)
		sb.WriteString("{…}")
	case *ParenExpr:
		sb.WriteByte('(')
		writeExpr(sb, x.X)
		sb.WriteByte(')')
	case *SelectorExpr:
		writeExpr(sb, x.X)
		sb.WriteByte('.')
		sb.WriteString(x.Sel.String())
	case *IndexExpr:
		writeExpr(sb, x.X)
		sb.WriteByte('[')
		writeExpr(sb, x.Index)
		sb.WriteByte(']')
	case *SliceExpr:
		writeExpr(sb, x.X)
		sb.WriteByte('[')
		writeExpr(sb, x.Low)
		sb.WriteByte(':')
		writeExpr(sb, x.High)
		if x.Slice3 {
			sb.WriteByte(':')
			writeExpr(sb, x.Max)
		}
		sb.WriteByte(']')
	case *TypeAssertExpr:
		writeExpr(sb, x.X)
		sb.WriteString(".(")
		if x.Type == nil {
			sb.WriteString("type")
		} else {
			writeExpr(sb, x.Type)
		}
		sb.WriteByte(')')
	case *CallExpr:
		writeExpr(sb, x.Fun)
		sb.WriteByte('(')
		for i, a := range x.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, a)
		}
		if x.Ellipsis != NoPos {
			sb.WriteString("...")
		}
		sb.WriteByte(')')
	case *StarExpr:
		sb.WriteByte('*')
		writeExpr(sb, x.X)
	case *UnaryExpr:
		sb.WriteString(x.Op.String())
		writeExpr(sb, x.X)
	case *BinaryExpr:
		writeExpr(sb, x.X)
		sb.WriteByte(' ')
		sb.WriteString(x.Op.String())
		sb.WriteByte(' ')
		writeExpr(sb, x.Y)
	case *KeyValueExpr:
		writeExpr(sb, x.Key)
		sb.WriteString(": ")
		writeExpr(sb, x.Value)
	case *ArrayType:
		sb.WriteByte('[')
		writeExpr(sb, x.Len)
		sb.WriteByte(']')
		writeExpr(sb, x.Elt)
	case *StructType:
		sb.WriteString("struct{")
		writeFieldList(sb, x.Fields, "; ")
		sb.WriteByte('}')
	case *FuncType:
		sb.WriteString("func")
		writeSignature(sb, x)
	case *InterfaceType:
		sb.WriteString("interface{")
		if x.Methods != nil {
			for i, m := range x.Methods.List {
				if i > 0 {
					sb.WriteString("; ")
				}
				if ft, ok := m.Type.(*FuncType); ok && len(m.Names) > 0 {
					sb.WriteString(m.Names[0].Name)
					writeSignature(sb, ft)
					continue
				}
				writeExpr(sb, m.Type)
			}
		}
		sb.WriteByte('}')
	case *MapType:
		sb.WriteString("map[")
		writeExpr(sb, x.Key)
		sb.WriteByte(']')
		writeExpr(sb, x.Value)
	case *ChanType:
		switch x.Dir {
		case SEND:
			sb.WriteString("chan<- ")
		case RECV:
			sb.WriteString("<-chan ")
		default:
			sb.WriteString("chan ")
		}
		writeExpr(sb, x.Value)
	}
}

// SignatureString renders a function type without the func keyword,
// prefixed by name.
func SignatureString(name string, t *FuncType) string {
	var sb strings.Builder
	sb.WriteString(name)
	if t != nil {
		writeSignature(&sb, t)
	}
	return sb.String()
}
