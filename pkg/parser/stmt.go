package parser

import (
	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/token"
)

type simpleMode int

const (
	basic simpleMode = iota
	labelOk
	rangeOk
)

func (p *parser) parseBody() *ast.BlockStmt {
	saved := p.exprLev
	p.exprLev = 0
	b := p.parseBlock()
	p.exprLev = saved
	return b
}

func (p *parser) parseBlock() *ast.BlockStmt {
	b := &ast.BlockStmt{Lbrace: p.expect(token.LBRACE), Rbrace: ast.NoPos}
	b.List = p.parseStmtList()
	b.Rbrace = p.expect(token.RBRACE)
	return b
}

func (p *parser) parseStmtList() []ast.Stmt {
	var list []ast.Stmt
	for p.tok != token.CASE && p.tok != token.DEFAULT && p.tok != token.RBRACE && p.tok != token.EOF {
		start := p.pos
		if s := p.parseStmt(); s != nil {
			list = append(list, s)
		}
		if p.pos == start {
			p.next()
		}
	}
	return list
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.CONST:
		return &ast.DeclStmt{Decl: p.parseGenDecl(token.CONST, p.parseValueSpecFunc(token.CONST))}
	case token.VAR:
		return &ast.DeclStmt{Decl: p.parseGenDecl(token.VAR, p.parseValueSpecFunc(token.VAR))}
	case token.TYPEKW:
		return &ast.DeclStmt{Decl: p.parseGenDecl(token.TYPEKW, p.parseTypeSpec)}

	case token.IDENT, token.TYPE, token.BUILTIN,
		token.INT, token.FLOAT, token.IMAG, token.CHAR, token.STRING,
		token.FUNC, token.LPAREN, token.LBRACK, token.STRUCT, token.MAP,
		token.CHAN, token.INTERFACE,
		token.ADD, token.SUB, token.MUL, token.AND, token.XOR, token.ARROW, token.NOT:
		s := p.parseSimpleStmt(labelOk)
		if _, ok := s.(*ast.LabeledStmt); !ok {
			p.expectSemi()
		}
		return s

	case token.GO:
		pos := p.pos
		p.next()
		s := &ast.GoStmt{Go: pos, Call: p.parseCallExpr("go")}
		p.expectSemi()
		return s
	case token.DEFER:
		pos := p.pos
		p.next()
		s := &ast.DeferStmt{Defer: pos, Call: p.parseCallExpr("defer")}
		p.expectSemi()
		return s
	case token.RETURN:
		s := &ast.ReturnStmt{Return: p.pos}
		p.next()
		if p.tok != token.SEMICOLON && p.tok != token.RBRACE {
			s.Results = p.parseExprList()
		}
		p.expectSemi()
		return s
	case token.BREAK, token.CONTINUE, token.GOTO, token.FALLTHROUGH:
		s := &ast.BranchStmt{TokPos: p.pos, Tok: p.tok}
		p.next()
		if s.Tok != token.FALLTHROUGH && p.tok.IsIdentifier() {
			s.Label = p.parseIdent()
		}
		p.expectSemi()
		return s
	case token.LBRACE:
		b := p.parseBlock()
		p.expectSemi()
		return b
	case token.IF:
		return p.parseIfStmt()
	case token.SWITCH:
		return p.parseSwitchStmt()
	case token.SELECT:
		return p.parseSelectStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.SEMICOLON:
		s := &ast.EmptyStmt{Semi: p.pos}
		p.next()
		return s
	case token.RBRACE:
		return nil
	}

	from := p.pos
	p.errorExpected("statement")
	p.syncStmt()
	to := p.pos - 1
	if to < from {
		to = from
	}
	return &ast.BadStmt{From: from, To: to}
}

func (p *parser) parseCallExpr(callType string) ast.Expr {
	x := p.parseUnaryExpr()
	if _, ok := x.(*ast.CallExpr); !ok {
		if _, bad := x.(*ast.BadExpr); !bad {
			p.diags = append(p.diags, p.diagAt(x.First(), "expression in "+callType+" must be function call"))
		}
	}
	return x
}

// parseSimpleStmt parses an expression, send, inc/dec, assignment or short
// variable declaration. In rangeOk mode a "k, v := range x" header comes
// back as a partially filled *ast.RangeStmt.
func (p *parser) parseSimpleStmt(mode simpleMode) ast.Stmt {
	if mode == rangeOk && p.tok == token.RANGE {
		r := &ast.RangeStmt{TokPos: ast.NoPos, Tok: token.ILLEGAL, Range: p.pos}
		p.next()
		r.X = p.parseExpr()
		return r
	}

	lhs := p.parseExprList()

	switch p.tok {
	case token.DEFINE, token.ASSIGN,
		token.ADD_ASSIGN, token.SUB_ASSIGN, token.MUL_ASSIGN, token.QUO_ASSIGN, token.REM_ASSIGN,
		token.AND_ASSIGN, token.OR_ASSIGN, token.XOR_ASSIGN, token.SHL_ASSIGN, token.SHR_ASSIGN,
		token.AND_NOT_ASSIGN:
		pos, tok := p.pos, p.tok
		p.next()
		if mode == rangeOk && p.tok == token.RANGE && (tok == token.DEFINE || tok == token.ASSIGN) {
			r := &ast.RangeStmt{TokPos: pos, Tok: tok, Range: p.pos}
			p.next()
			r.Key = lhs[0]
			if len(lhs) > 1 {
				r.Value = lhs[1]
			}
			if len(lhs) > 2 {
				p.diags = append(p.diags, p.diagAt(lhs[2].First(), "range clause permits at most two iteration variables"))
			}
			r.X = p.parseExpr()
			return r
		}
		s := &ast.AssignStmt{Lhs: lhs, TokPos: pos, Tok: tok, Rhs: p.parseExprList()}
		if tok == token.DEFINE {
			for _, x := range lhs {
				if _, ok := x.(*ast.Ident); !ok {
					p.diags = append(p.diags, p.diagAt(x.First(), "non-name on left side of :="))
					break
				}
			}
		}
		return s
	}

	if len(lhs) > 1 {
		p.errorExpected("1 expression")
	}

	switch p.tok {
	case token.COLON:
		label, ok := lhs[0].(*ast.Ident)
		if mode != labelOk || !ok {
			break
		}
		colon := p.pos
		p.next()
		if p.tok == token.RBRACE || p.tok == token.EOF {
			return &ast.LabeledStmt{Label: label, Colon: colon, Stmt: &ast.EmptyStmt{Semi: colon}}
		}
		return &ast.LabeledStmt{Label: label, Colon: colon, Stmt: p.parseStmt()}
	case token.ARROW:
		arrow := p.pos
		p.next()
		return &ast.SendStmt{Chan: lhs[0], Arrow: arrow, Value: p.parseExpr()}
	case token.INC, token.DEC:
		s := &ast.IncDecStmt{X: lhs[0], TokPos: p.pos, Tok: p.tok}
		p.next()
		return s
	}

	return &ast.ExprStmt{X: lhs[0]}
}

// header parses the clause of an if, switch or for statement with
// composite literals of plain type names disabled.
func (p *parser) header(f func()) {
	saved := p.exprLev
	p.exprLev = -1
	f()
	p.exprLev = saved
}

func exprOf(s ast.Stmt) ast.Expr {
	switch s := s.(type) {
	case nil:
		return nil
	case *ast.ExprStmt:
		return s.X
	}
	return nil
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	s := &ast.IfStmt{If: p.expect(token.IF)}
	p.header(func() {
		if p.tok == token.LBRACE {
			p.errorf("missing condition in if statement")
			return
		}
		var init ast.Stmt
		if p.tok != token.SEMICOLON {
			init = p.parseSimpleStmt(basic)
		}
		if p.tok == token.SEMICOLON {
			p.next()
			s.Init = init
			if p.tok == token.LBRACE {
				p.errorf("missing condition in if statement")
				return
			}
			init = p.parseSimpleStmt(basic)
		}
		s.Cond = exprOf(init)
		if s.Cond == nil && init != nil {
			p.diags = append(p.diags, p.diagAt(init.First(), "cannot use assignment as value"))
		}
	})
	s.Body = p.parseBlock()
	if p.tok == token.ELSE {
		p.next()
		switch p.tok {
		case token.IF:
			s.Else = p.parseIfStmt()
			return s
		case token.LBRACE:
			s.Else = p.parseBlock()
		default:
			p.errorExpected("if statement or block")
		}
	}
	p.expectSemi()
	return s
}

func isTypeSwitchGuard(s ast.Stmt) bool {
	switch t := s.(type) {
	case *ast.ExprStmt:
		ta, ok := t.X.(*ast.TypeAssertExpr)
		return ok && ta.Type == nil
	case *ast.AssignStmt:
		if t.Tok != token.DEFINE || len(t.Lhs) != 1 || len(t.Rhs) != 1 {
			return false
		}
		ta, ok := t.Rhs[0].(*ast.TypeAssertExpr)
		return ok && ta.Type == nil
	}
	return false
}

func (p *parser) parseSwitchStmt() ast.Stmt {
	pos := p.expect(token.SWITCH)
	var s1, s2 ast.Stmt
	p.header(func() {
		if p.tok == token.LBRACE {
			return
		}
		if p.tok != token.SEMICOLON {
			s2 = p.parseSimpleStmt(basic)
		}
		if p.tok == token.SEMICOLON {
			p.next()
			s1, s2 = s2, nil
			if p.tok != token.LBRACE {
				s2 = p.parseSimpleStmt(basic)
			}
		}
	})

	typeSwitch := isTypeSwitchGuard(s2)
	body := &ast.BlockStmt{Lbrace: p.expect(token.LBRACE), Rbrace: ast.NoPos}
	for p.tok == token.CASE || p.tok == token.DEFAULT {
		body.List = append(body.List, p.parseCaseClause())
	}
	body.Rbrace = p.expect(token.RBRACE)
	p.expectSemi()

	if typeSwitch {
		return &ast.TypeSwitchStmt{Switch: pos, Init: s1, Assign: s2, Body: body}
	}
	return &ast.SwitchStmt{Switch: pos, Init: s1, Tag: exprOf(s2), Body: body}
}

func (p *parser) parseCaseClause() *ast.CaseClause {
	c := &ast.CaseClause{Case: p.pos}
	if p.tok == token.CASE {
		p.next()
		c.List = p.parseExprList()
	} else {
		p.expect(token.DEFAULT)
	}
	c.Colon = p.expect(token.COLON)
	c.Body = p.parseStmtList()
	return c
}

func (p *parser) parseSelectStmt() *ast.SelectStmt {
	s := &ast.SelectStmt{Select: p.expect(token.SELECT)}
	body := &ast.BlockStmt{Lbrace: p.expect(token.LBRACE), Rbrace: ast.NoPos}
	for p.tok == token.CASE || p.tok == token.DEFAULT {
		body.List = append(body.List, p.parseCommClause())
	}
	body.Rbrace = p.expect(token.RBRACE)
	p.expectSemi()
	s.Body = body
	return s
}

func (p *parser) parseCommClause() *ast.CommClause {
	c := &ast.CommClause{Case: p.pos}
	if p.tok == token.CASE {
		p.next()
		lhs := p.parseExprList()
		switch p.tok {
		case token.ARROW:
			arrow := p.pos
			p.next()
			c.Comm = &ast.SendStmt{Chan: lhs[0], Arrow: arrow, Value: p.parseExpr()}
		case token.ASSIGN, token.DEFINE:
			pos, tok := p.pos, p.tok
			p.next()
			c.Comm = &ast.AssignStmt{Lhs: lhs, TokPos: pos, Tok: tok, Rhs: []ast.Expr{p.parseExpr()}}
		default:
			c.Comm = &ast.ExprStmt{X: lhs[0]}
		}
	} else {
		p.expect(token.DEFAULT)
	}
	c.Colon = p.expect(token.COLON)
	c.Body = p.parseStmtList()
	return c
}

func (p *parser) parseForStmt() ast.Stmt {
	pos := p.expect(token.FOR)
	var s1, s2, s3 ast.Stmt
	var rng *ast.RangeStmt
	p.header(func() {
		if p.tok == token.LBRACE {
			return
		}
		if p.tok != token.SEMICOLON {
			s2 = p.parseSimpleStmt(rangeOk)
			if r, ok := s2.(*ast.RangeStmt); ok {
				rng = r
				return
			}
		}
		if p.tok != token.SEMICOLON {
			return
		}
		p.next()
		s1, s2 = s2, nil
		if p.tok != token.SEMICOLON {
			s2 = p.parseSimpleStmt(basic)
		}
		if p.tok != token.SEMICOLON {
			p.errorExpected("';'")
			return
		}
		p.next()
		if p.tok != token.LBRACE {
			s3 = p.parseSimpleStmt(basic)
		}
	})

	body := p.parseBlock()
	p.expectSemi()

	if rng != nil {
		rng.For = pos
		rng.Body = body
		return rng
	}
	return &ast.ForStmt{For: pos, Init: s1, Cond: exprOf(s2), Post: s3, Body: body}
}
