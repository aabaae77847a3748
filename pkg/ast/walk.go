package ast

import "reflect"

// Visitor is the traversal protocol every analysis uses. For each node Walk
// calls PreVisit; when it returns true Walk calls Visit and, when that
// returns true, walks the children, then calls EndVisit. PostVisit runs for
// every node regardless. A visitor that reports Finished stops the walk
// before the next sibling.
type Visitor interface {
	PreVisit(n Node) bool
	Visit(n Node) bool
	EndVisit(n Node)
	PostVisit(n Node)
	Finished() bool
}

// BaseVisitor implements Visitor with defaults that visit everything.
// Embed it and override what you need.
type BaseVisitor struct {
	done bool
}

func (*BaseVisitor) PreVisit(Node) bool { return true }
func (*BaseVisitor) Visit(Node) bool    { return true }
func (*BaseVisitor) EndVisit(Node)      {}
func (*BaseVisitor) PostVisit(Node)     {}

// Finish stops the traversal.
func (b *BaseVisitor) Finish()        { b.done = true }
func (b *BaseVisitor) Finished() bool { return b.done }

// Walk traverses the tree rooted at n in depth-first order.
func Walk(v Visitor, n Node) {
	if isNil(n) || v.Finished() {
		return
	}
	if v.PreVisit(n) {
		if v.Visit(n) {
			walkChildren(v, n)
		}
		v.EndVisit(n)
	}
	v.PostVisit(n)
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	rv := reflect.ValueOf(n)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func walkIdents(v Visitor, list []*Ident) {
	for _, x := range list {
		if v.Finished() {
			return
		}
		Walk(v, x)
	}
}

func walkExprs(v Visitor, list []Expr) {
	for _, x := range list {
		if v.Finished() {
			return
		}
		Walk(v, x)
	}
}

func walkStmts(v Visitor, list []Stmt) {
	for _, x := range list {
		if v.Finished() {
			return
		}
		Walk(v, x)
	}
}

// walkAll walks each node in order, stopping when the visitor finishes.
func walkAll(v Visitor, nodes ...Node) {
	for _, n := range nodes {
		if v.Finished() {
			return
		}
		Walk(v, n)
	}
}

func walkChildren(v Visitor, n Node) {
	switch n := n.(type) {
	case *Field:
		walkIdents(v, n.Names)
		walkAll(v, n.Type, n.Tag)
	case *FieldList:
		for _, f := range n.List {
			if v.Finished() {
				return
			}
			Walk(v, f)
		}

	case *BadExpr, *Ident, *BasicLit:
		// leaves
	case *Ellipsis:
		Walk(v, n.Elt)
	case *FuncLit:
		walkAll(v, n.Type, n.Body)
	case *CompositeLit:
		Walk(v, n.Type)
		walkExprs(v, n.Elts)
	case *ParenExpr:
		Walk(v, n.X)
	case *SelectorExpr:
		walkAll(v, n.X, n.Sel)
	case *IndexExpr:
		walkAll(v, n.X, n.Index)
	case *SliceExpr:
		walkAll(v, n.X, n.Low, n.High, n.Max)
	case *TypeAssertExpr:
		walkAll(v, n.X, n.Type)
	case *CallExpr:
		Walk(v, n.Fun)
		walkExprs(v, n.Args)
	case *StarExpr:
		Walk(v, n.X)
	case *UnaryExpr:
		Walk(v, n.X)
	case *BinaryExpr:
		walkAll(v, n.X, n.Y)
	case *KeyValueExpr:
		walkAll(v, n.Key, n.Value)

	case *ArrayType:
		walkAll(v, n.Len, n.Elt)
	case *StructType:
		Walk(v, n.Fields)
	case *FuncType:
		walkAll(v, n.Params, n.Results)
	case *InterfaceType:
		Walk(v, n.Methods)
	case *MapType:
		walkAll(v, n.Key, n.Value)
	case *ChanType:
		Walk(v, n.Value)

	case *BadStmt, *EmptyStmt:
		// leaves
	case *DeclStmt:
		Walk(v, n.Decl)
	case *LabeledStmt:
		walkAll(v, n.Label, n.Stmt)
	case *ExprStmt:
		Walk(v, n.X)
	case *SendStmt:
		walkAll(v, n.Chan, n.Value)
	case *IncDecStmt:
		Walk(v, n.X)
	case *AssignStmt:
		walkExprs(v, n.Lhs)
		walkExprs(v, n.Rhs)
	case *GoStmt:
		Walk(v, n.Call)
	case *DeferStmt:
		Walk(v, n.Call)
	case *ReturnStmt:
		walkExprs(v, n.Results)
	case *BranchStmt:
		Walk(v, n.Label)
	case *BlockStmt:
		walkStmts(v, n.List)
	case *IfStmt:
		walkAll(v, n.Init, n.Cond, n.Body, n.Else)
	case *CaseClause:
		walkExprs(v, n.List)
		walkStmts(v, n.Body)
	case *SwitchStmt:
		walkAll(v, n.Init, n.Tag, n.Body)
	case *TypeSwitchStmt:
		walkAll(v, n.Init, n.Assign, n.Body)
	case *CommClause:
		Walk(v, n.Comm)
		walkStmts(v, n.Body)
	case *SelectStmt:
		Walk(v, n.Body)
	case *ForStmt:
		walkAll(v, n.Init, n.Cond, n.Post, n.Body)
	case *RangeStmt:
		walkAll(v, n.Key, n.Value, n.X, n.Body)

	case *ImportSpec:
		walkAll(v, n.Name, n.Path)
	case *ValueSpec:
		walkIdents(v, n.Names)
		Walk(v, n.Type)
		walkExprs(v, n.Values)
	case *TypeSpec:
		walkAll(v, n.Name, n.Type)

	case *BadDecl:
		// leaf
	case *GenDecl:
		for _, s := range n.Specs {
			if v.Finished() {
				return
			}
			Walk(v, s)
		}
	case *FuncDecl:
		walkAll(v, n.Recv, n.Name, n.Type, n.Body)

	case *File:
		Walk(v, n.Name)
		for _, d := range n.Decls {
			if v.Finished() {
				return
			}
			Walk(v, d)
		}
	}
}

// inspector adapts a function to the Visitor protocol.
type inspector struct {
	BaseVisitor
	f func(Node) bool
}

func (in *inspector) Visit(n Node) bool { return in.f(n) }

// Inspect calls f for every node in depth-first order; returning false
// skips the node's children.
func Inspect(n Node, f func(Node) bool) {
	Walk(&inspector{f: f}, n)
}

// PathTo returns the chain of nodes, outermost first, whose spans contain
// the token index tok. The chain ends at the identifier or literal at tok
// when there is one.
func PathTo(root Node, tok int) []Node {
	var path []Node
	leaf := false
	Inspect(root, func(n Node) bool {
		f, l := n.First(), n.Last()
		if leaf || f == NoPos || l == NoPos || tok < f || tok > l {
			return false
		}
		path = append(path, n)
		switch n.(type) {
		case *Ident, *BasicLit:
			leaf = true
		}
		return true
	})
	return path
}
