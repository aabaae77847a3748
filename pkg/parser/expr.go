package parser

import (
	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/token"
)

// ----------------------------------------------------------------------------
// Types

func (p *parser) parseType() ast.Expr {
	if t := p.tryType(); t != nil {
		return t
	}
	pos := p.pos
	p.errorExpected("type")
	return &ast.BadExpr{From: pos, To: pos}
}

// tryType parses a type if one starts at the current token.
func (p *parser) tryType() ast.Expr {
	switch p.tok {
	case token.IDENT, token.TYPE, token.BUILTIN:
		return p.parseTypeName()
	case token.LBRACK:
		return p.parseArrayType()
	case token.STRUCT:
		return p.parseStructType()
	case token.MUL:
		star := p.pos
		p.next()
		return &ast.StarExpr{Star: star, X: p.parseType()}
	case token.FUNC:
		return p.parseFuncType()
	case token.INTERFACE:
		return p.parseInterfaceType()
	case token.MAP:
		return p.parseMapType()
	case token.CHAN, token.ARROW:
		return p.parseChanType()
	case token.LPAREN:
		lparen := p.pos
		p.next()
		t := p.parseType()
		return &ast.ParenExpr{Lparen: lparen, X: t, Rparen: p.expect(token.RPAREN)}
	}
	return nil
}

func (p *parser) parseTypeName() ast.Expr {
	id := p.parseIdent()
	if p.tok == token.PERIOD {
		p.next()
		return &ast.SelectorExpr{X: id, Sel: p.parseIdent()}
	}
	return id
}

func (p *parser) parseArrayType() ast.Expr {
	t := &ast.ArrayType{Lbrack: p.expect(token.LBRACK)}
	switch p.tok {
	case token.RBRACK:
	case token.ELLIPSIS:
		t.Len = &ast.Ellipsis{Tok: p.pos}
		p.next()
	default:
		p.exprLev++
		t.Len = p.parseExpr()
		p.exprLev--
	}
	p.expect(token.RBRACK)
	t.Elt = p.parseType()
	return t
}

func (p *parser) parseStructType() *ast.StructType {
	t := &ast.StructType{Struct: p.expect(token.STRUCT)}
	fl := &ast.FieldList{Opening: p.expect(token.LBRACE), Closing: ast.NoPos}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		start := p.pos
		if f := p.parseFieldDecl(); f != nil {
			fl.List = append(fl.List, f)
		}
		if p.pos == start {
			p.next()
		}
	}
	fl.Closing = p.expect(token.RBRACE)
	t.Fields = fl
	return t
}

func (p *parser) parseFieldDecl() *ast.Field {
	f := &ast.Field{}
	switch {
	case p.tok.IsIdentifier():
		name := p.parseIdent()
		switch p.tok {
		case token.PERIOD:
			p.next()
			f.Type = &ast.SelectorExpr{X: name, Sel: p.parseIdent()}
		case token.SEMICOLON, token.RBRACE, token.STRING:
			f.Type = name
		default:
			f.Names = []*ast.Ident{name}
			for p.tok == token.COMMA {
				p.next()
				f.Names = append(f.Names, p.parseIdent())
			}
			f.Type = p.parseType()
		}
	case p.tok == token.MUL:
		star := p.pos
		p.next()
		f.Type = &ast.StarExpr{Star: star, X: p.parseTypeName()}
	default:
		p.errorExpected("field name or embedded type")
		p.syncStmt()
		return nil
	}
	if p.tok == token.STRING {
		f.Tag = &ast.BasicLit{Tok: p.pos, Kind: token.STRING, Value: p.lit()}
		p.next()
	}
	p.expectSemi()
	return f
}

func (p *parser) parseInterfaceType() *ast.InterfaceType {
	t := &ast.InterfaceType{Interface: p.expect(token.INTERFACE)}
	fl := &ast.FieldList{Opening: p.expect(token.LBRACE), Closing: ast.NoPos}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		start := p.pos
		if f := p.parseInterfaceElem(); f != nil {
			fl.List = append(fl.List, f)
		}
		p.expectSemi()
		if p.pos == start {
			p.next()
		}
	}
	fl.Closing = p.expect(token.RBRACE)
	t.Methods = fl
	return t
}

func (p *parser) parseInterfaceElem() *ast.Field {
	if p.tok.IsIdentifier() && p.peek() == token.LPAREN {
		name := p.parseIdent()
		params := p.parseParameters()
		results := p.parseResult()
		return &ast.Field{
			Names: []*ast.Ident{name},
			Type:  &ast.FuncType{Func: ast.NoPos, Params: params, Results: results},
		}
	}
	// embedded interface or type constraint union; only the first term
	// is kept
	if p.tok == token.TILDE {
		p.next()
	}
	t := p.tryType()
	if t == nil {
		p.errorExpected("method or embedded interface")
		return nil
	}
	for p.tok == token.OR {
		p.next()
		if p.tok == token.TILDE {
			p.next()
		}
		p.parseType()
	}
	return &ast.Field{Type: t}
}

func (p *parser) parseFuncType() *ast.FuncType {
	t := &ast.FuncType{Func: p.expect(token.FUNC)}
	t.Params = p.parseParameters()
	t.Results = p.parseResult()
	return t
}

func (p *parser) parseMapType() *ast.MapType {
	t := &ast.MapType{Map: p.expect(token.MAP)}
	p.expect(token.LBRACK)
	t.Key = p.parseType()
	p.expect(token.RBRACK)
	t.Value = p.parseType()
	return t
}

func (p *parser) parseChanType() *ast.ChanType {
	t := &ast.ChanType{Begin: p.pos, Dir: ast.SEND | ast.RECV}
	if p.tok == token.CHAN {
		p.next()
		if p.tok == token.ARROW {
			p.next()
			t.Dir = ast.SEND
		}
	} else {
		p.expect(token.ARROW)
		p.expect(token.CHAN)
		t.Dir = ast.RECV
	}
	t.Value = p.parseType()
	return t
}

func (p *parser) tryVarType() ast.Expr {
	if p.tok == token.ELLIPSIS {
		pos := p.pos
		p.next()
		return &ast.Ellipsis{Tok: pos, Elt: p.parseType()}
	}
	return p.tryType()
}

// parseParameters parses a parenthesized parameter list, in either the
// all-named or the all-unnamed form.
func (p *parser) parseParameters() *ast.FieldList {
	fl := &ast.FieldList{Opening: ast.NoPos, Closing: ast.NoPos}
	if p.tok != token.LPAREN {
		p.errorExpected("'('")
		return fl
	}
	fl.Opening = p.pos
	p.next()

	var list []ast.Expr
	for p.tok != token.RPAREN && p.tok != token.EOF {
		t := p.tryVarType()
		if t == nil {
			p.errorExpected("parameter")
			break
		}
		list = append(list, t)
		if p.tok != token.COMMA {
			break
		}
		p.next()
	}

	if typ := p.tryVarType(); typ != nil {
		// IdentifierList Type
		fl.List = append(fl.List, &ast.Field{Names: p.paramNames(list), Type: typ})
		for p.tok == token.COMMA {
			p.next()
			if p.tok == token.RPAREN {
				break
			}
			names := p.parseIdentList()
			fl.List = append(fl.List, &ast.Field{Names: names, Type: p.parseVarType()})
		}
	} else {
		for _, t := range list {
			fl.List = append(fl.List, &ast.Field{Type: t})
		}
	}

	fl.Closing = p.expectClosing(token.RPAREN, "parameter list")
	return fl
}

func (p *parser) parseVarType() ast.Expr {
	if t := p.tryVarType(); t != nil {
		return t
	}
	pos := p.pos
	p.errorExpected("type")
	return &ast.BadExpr{From: pos, To: pos}
}

func (p *parser) paramNames(list []ast.Expr) []*ast.Ident {
	names := make([]*ast.Ident, 0, len(list))
	for _, x := range list {
		id, ok := x.(*ast.Ident)
		if !ok {
			p.errorf("mixed named and unnamed parameters")
			id = &ast.Ident{Tok: x.First(), Name: "_"}
		}
		names = append(names, id)
	}
	return names
}

func (p *parser) parseResult() *ast.FieldList {
	if p.tok == token.LPAREN {
		return p.parseParameters()
	}
	if t := p.tryType(); t != nil {
		return &ast.FieldList{Opening: ast.NoPos, List: []*ast.Field{{Type: t}}, Closing: ast.NoPos}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Expressions

func (p *parser) parseExpr() ast.Expr {
	return p.parseBinaryExpr(1)
}

func (p *parser) parseExprList() []ast.Expr {
	list := []ast.Expr{p.parseExpr()}
	for p.tok == token.COMMA {
		p.next()
		list = append(list, p.parseExpr())
	}
	return list
}

func (p *parser) parseBinaryExpr(prec1 int) ast.Expr {
	x := p.parseUnaryExpr()
	for {
		op := p.tok
		oprec := op.Precedence()
		if oprec < prec1 || oprec == 0 {
			return x
		}
		opPos := p.pos
		p.next()
		y := p.parseBinaryExpr(oprec + 1)
		x = &ast.BinaryExpr{X: x, OpTok: opPos, Op: op, Y: y}
	}
}

func (p *parser) parseUnaryExpr() ast.Expr {
	switch p.tok {
	case token.ADD, token.SUB, token.NOT, token.XOR, token.AND, token.TILDE:
		pos, op := p.pos, p.tok
		p.next()
		return &ast.UnaryExpr{OpTok: pos, Op: op, X: p.parseUnaryExpr()}
	case token.ARROW:
		if p.peek() == token.CHAN {
			return p.parsePrimaryExpr(p.parseChanType())
		}
		pos := p.pos
		p.next()
		return &ast.UnaryExpr{OpTok: pos, Op: token.ARROW, X: p.parseUnaryExpr()}
	case token.MUL:
		pos := p.pos
		p.next()
		return &ast.StarExpr{Star: pos, X: p.parseUnaryExpr()}
	}
	return p.parsePrimaryExpr(nil)
}

func (p *parser) parseOperand() ast.Expr {
	switch p.tok {
	case token.IDENT, token.TYPE, token.BUILTIN:
		return p.parseIdent()
	case token.INT, token.FLOAT, token.IMAG, token.CHAR, token.STRING:
		x := &ast.BasicLit{Tok: p.pos, Kind: p.tok, Value: p.lit()}
		p.next()
		return x
	case token.LPAREN:
		lparen := p.pos
		p.next()
		p.exprLev++
		x := p.parseExprOrType()
		p.exprLev--
		return &ast.ParenExpr{Lparen: lparen, X: x, Rparen: p.expect(token.RPAREN)}
	case token.FUNC:
		t := p.parseFuncType()
		if p.tok == token.LBRACE {
			return &ast.FuncLit{Type: t, Body: p.parseBody()}
		}
		return t
	}
	if t := p.tryType(); t != nil {
		return t
	}
	pos := p.pos
	p.errorExpected("expression")
	return &ast.BadExpr{From: pos, To: pos}
}

// parseExprOrType parses an expression that may also be a type, as in
// conversions and the arguments of make and new.
func (p *parser) parseExprOrType() ast.Expr {
	return p.parseExpr()
}

func (p *parser) parsePrimaryExpr(x ast.Expr) ast.Expr {
	if x == nil {
		x = p.parseOperand()
	}
	for {
		switch p.tok {
		case token.PERIOD:
			period := p.pos
			p.next()
			switch {
			case p.tok.IsIdentifier():
				x = &ast.SelectorExpr{X: x, Sel: p.parseIdent()}
			case p.tok == token.LPAREN:
				x = p.parseTypeAssertion(x)
			default:
				p.errorExpected("selector or type assertion")
				// keep the selector so completion sees "x."
				x = &ast.SelectorExpr{X: x, Sel: &ast.Ident{Tok: period, Name: ""}}
				return x
			}
		case token.LBRACK:
			x = p.parseIndexOrSlice(x)
		case token.LPAREN:
			x = p.parseCall(x)
		case token.LBRACE:
			if !isLiteralType(x) || (p.exprLev < 0 && isTypeName(x)) {
				return x
			}
			x = p.parseLiteralValue(x)
		default:
			return x
		}
	}
}

func (p *parser) parseTypeAssertion(x ast.Expr) ast.Expr {
	ta := &ast.TypeAssertExpr{X: x, Lparen: p.expect(token.LPAREN)}
	if p.tok == token.TYPEKW {
		p.next()
	} else {
		ta.Type = p.parseType()
	}
	ta.Rparen = p.expect(token.RPAREN)
	return ta
}

func (p *parser) parseIndexOrSlice(x ast.Expr) ast.Expr {
	lbrack := p.expect(token.LBRACK)
	p.exprLev++
	var index [3]ast.Expr
	ncolons := 0
	if p.tok != token.COLON {
		index[0] = p.parseExpr()
	}
	for p.tok == token.COLON && ncolons < 2 {
		ncolons++
		p.next()
		if p.tok != token.COLON && p.tok != token.RBRACK && p.tok != token.EOF {
			index[ncolons] = p.parseExpr()
		}
	}
	p.exprLev--
	rbrack := p.expect(token.RBRACK)

	if ncolons > 0 {
		s := &ast.SliceExpr{X: x, Lbrack: lbrack, Low: index[0], High: index[1], Max: index[2], Slice3: ncolons == 2, Rbrack: rbrack}
		if s.Slice3 && (s.High == nil || s.Max == nil) {
			p.diags = append(p.diags, p.diagAt(rbrack, "middle and final index required in 3-index slice"))
		}
		return s
	}
	if index[0] == nil {
		p.diags = append(p.diags, p.diagAt(rbrack, "expected operand"))
		index[0] = &ast.BadExpr{From: rbrack, To: rbrack}
	}
	return &ast.IndexExpr{X: x, Lbrack: lbrack, Index: index[0], Rbrack: rbrack}
}

func (p *parser) parseCall(fun ast.Expr) *ast.CallExpr {
	call := &ast.CallExpr{Fun: fun, Lparen: p.expect(token.LPAREN), Ellipsis: ast.NoPos, Rparen: ast.NoPos}
	p.exprLev++
	for p.tok != token.RPAREN && p.tok != token.EOF {
		call.Args = append(call.Args, p.parseExprOrType())
		if p.tok == token.ELLIPSIS {
			call.Ellipsis = p.pos
			p.next()
		}
		if !p.atComma("argument list", token.RPAREN) {
			break
		}
		if p.tok != token.COMMA {
			break
		}
		p.next()
	}
	p.exprLev--
	call.Rparen = p.expectClosing(token.RPAREN, "argument list")
	return call
}

func (p *parser) parseLiteralValue(typ ast.Expr) *ast.CompositeLit {
	lit := &ast.CompositeLit{Type: typ, Lbrace: p.expect(token.LBRACE)}
	p.exprLev++
	for p.tok != token.RBRACE && p.tok != token.EOF {
		lit.Elts = append(lit.Elts, p.parseElement())
		if !p.atComma("composite literal", token.RBRACE) {
			break
		}
		if p.tok != token.COMMA {
			break
		}
		p.next()
	}
	p.exprLev--
	lit.Rbrace = p.expectClosing(token.RBRACE, "composite literal")
	return lit
}

func (p *parser) parseElement() ast.Expr {
	x := p.parseElementValue()
	if p.tok == token.COLON {
		colon := p.pos
		p.next()
		return &ast.KeyValueExpr{Key: x, Colon: colon, Value: p.parseElementValue()}
	}
	return x
}

func (p *parser) parseElementValue() ast.Expr {
	if p.tok == token.LBRACE {
		return p.parseLiteralValue(nil)
	}
	return p.parseExpr()
}

func isTypeName(x ast.Expr) bool {
	switch t := x.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		_, ok := t.X.(*ast.Ident)
		return ok
	}
	return false
}

func isLiteralType(x ast.Expr) bool {
	switch t := x.(type) {
	case *ast.Ident, *ast.ArrayType, *ast.StructType, *ast.MapType:
		return true
	case *ast.SelectorExpr:
		_, ok := t.X.(*ast.Ident)
		return ok
	}
	return false
}
