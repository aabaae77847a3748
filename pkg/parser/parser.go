// Package parser builds syntax trees from the token stream of a source
// unit. It never fails: malformed input yields Bad nodes and diagnostics,
// and the parser always makes progress.
package parser

import (
	"fmt"

	"github.com/walteh/golens/pkg/ast"
	"github.com/walteh/golens/pkg/diagnostic"
	"github.com/walteh/golens/pkg/lexer"
	"github.com/walteh/golens/pkg/token"
)

// ParseFile tokenizes and parses src. The returned tokens include comments
// and implicit semicolons; every token index stored in the tree refers to
// that slice.
func ParseFile(src []byte) (*ast.File, []token.Token, []diagnostic.Diagnostic) {
	toks := lexer.Tokenize(src)
	f, diags := ParseTokens(src, toks)
	return f, toks, diags
}

// ParseTokens parses an already tokenized source unit.
func ParseTokens(src []byte, toks []token.Token) (*ast.File, []diagnostic.Diagnostic) {
	p := &parser{src: src, toks: toks, pos: -1, lastErr: -2}
	p.next()
	f := p.parseFile()
	return f, p.diags
}

type parser struct {
	src  []byte
	toks []token.Token

	pos int        // index of the current token in toks
	tok token.Kind // kind of the current token, EOF past the end

	// exprLev < 0 inside control clause headers, where a composite
	// literal of a plain type name is not allowed.
	exprLev int

	imports []*ast.ImportSpec
	diags   []diagnostic.Diagnostic
	lastErr int
}

// next advances to the next non-comment token.
func (p *parser) next() {
	p.pos++
	for p.pos < len(p.toks) && p.toks[p.pos].Kind == token.COMMENT {
		p.pos++
	}
	if p.pos >= len(p.toks) {
		p.pos = len(p.toks)
		p.tok = token.EOF
		return
	}
	p.tok = p.toks[p.pos].Kind
}

// peek returns the kind of the significant token after the current one.
func (p *parser) peek() token.Kind {
	for i := p.pos + 1; i < len(p.toks); i++ {
		if p.toks[i].Kind != token.COMMENT {
			return p.toks[i].Kind
		}
	}
	return token.EOF
}

func (p *parser) lit() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos].Text(p.src)
}

func (p *parser) describe() string {
	switch {
	case p.tok == token.EOF:
		return "EOF"
	case p.tok == token.SEMICOLON && p.toks[p.pos].Is(token.Implicit):
		return "newline"
	case p.tok.IsIdentifier() || p.tok.IsLiteral():
		return p.lit()
	}
	return "'" + p.tok.String() + "'"
}

// errorf reports at the current token, at most once per token.
func (p *parser) errorf(format string, args ...any) {
	if p.pos == p.lastErr {
		return
	}
	p.lastErr = p.pos
	off, n := len(p.src), 0
	if p.pos < len(p.toks) {
		off, n = p.toks[p.pos].Pos, p.toks[p.pos].Len
	}
	p.diags = append(p.diags, diagnostic.Errorf(off, n, format, args...))
}

// diagAt builds an error at an already consumed token.
func (p *parser) diagAt(tok int, msg string) diagnostic.Diagnostic {
	off, n := len(p.src), 0
	if tok >= 0 && tok < len(p.toks) {
		off, n = p.toks[tok].Pos, p.toks[tok].Len
	}
	return diagnostic.Errorf(off, n, "%s", msg)
}

func (p *parser) errorExpected(what string) {
	p.errorf("expected %s, found %s", what, p.describe())
}

// expect consumes a token of kind k and returns its index, or reports an
// error and returns NoPos without advancing.
func (p *parser) expect(k token.Kind) int {
	if p.tok == k {
		pos := p.pos
		p.next()
		return pos
	}
	p.errorExpected("'" + k.String() + "'")
	return ast.NoPos
}

// expectClosing is expect for a closing bracket, with a friendlier message
// when a newline cut the list short.
func (p *parser) expectClosing(k token.Kind, context string) int {
	if p.tok == token.SEMICOLON && p.toks[p.pos].Is(token.Implicit) && p.peek() == k {
		p.errorf("missing ',' before newline in %s", context)
		p.next()
	}
	return p.expect(k)
}

func (p *parser) expectSemi() {
	switch p.tok {
	case token.RPAREN, token.RBRACE:
		return
	case token.SEMICOLON:
		p.next()
		return
	}
	p.errorExpected("';'")
	p.syncStmt()
}

func (p *parser) atComma(context string, follow token.Kind) bool {
	if p.tok == token.COMMA {
		return true
	}
	if p.tok != follow {
		msg := "missing ','"
		if p.tok == token.SEMICOLON && p.toks[p.pos].Is(token.Implicit) {
			msg += " before newline"
		}
		p.errorf("%s in %s", msg, context)
		return true
	}
	return false
}

// syncStmt skips to the start of the next statement.
func (p *parser) syncStmt() {
	for {
		switch p.tok {
		case token.BREAK, token.CONST, token.CONTINUE, token.DEFER,
			token.FALLTHROUGH, token.FOR, token.GO, token.GOTO,
			token.IF, token.RETURN, token.SELECT, token.SWITCH,
			token.TYPEKW, token.VAR, token.RBRACE, token.EOF:
			return
		case token.SEMICOLON:
			p.next()
			return
		}
		p.next()
	}
}

// syncDecl skips to the start of the next top-level declaration.
func (p *parser) syncDecl() {
	for {
		switch p.tok {
		case token.CONST, token.TYPEKW, token.VAR, token.FUNC, token.IMPORT, token.EOF:
			return
		}
		p.next()
	}
}

// ----------------------------------------------------------------------------
// Identifiers

func (p *parser) parseIdent() *ast.Ident {
	if p.tok.IsIdentifier() {
		id := &ast.Ident{Tok: p.pos, Name: p.lit()}
		p.next()
		return id
	}
	p.errorExpected("identifier")
	return &ast.Ident{Tok: ast.NoPos, Name: "_"}
}

func (p *parser) parseIdentList() []*ast.Ident {
	list := []*ast.Ident{p.parseIdent()}
	for p.tok == token.COMMA {
		p.next()
		list = append(list, p.parseIdent())
	}
	return list
}

// ----------------------------------------------------------------------------
// Files and declarations

func (p *parser) parseFile() *ast.File {
	f := &ast.File{Package: ast.NoPos}
	if p.tok != token.PACKAGE {
		p.errorExpected("'package'")
	} else {
		f.Package = p.pos
		p.next()
		f.Name = p.parseIdent()
		p.expectSemi()
	}

	for p.tok == token.IMPORT {
		f.Decls = append(f.Decls, p.parseGenDecl(token.IMPORT, p.parseImportSpec))
	}

	for p.tok != token.EOF {
		start := p.pos
		f.Decls = append(f.Decls, p.parseDecl())
		if p.pos == start {
			p.next()
		}
	}

	f.Imports = p.imports
	f.EOF = len(p.toks)
	return f
}

func (p *parser) parseDecl() ast.Decl {
	switch p.tok {
	case token.CONST:
		return p.parseGenDecl(token.CONST, p.parseValueSpecFunc(token.CONST))
	case token.VAR:
		return p.parseGenDecl(token.VAR, p.parseValueSpecFunc(token.VAR))
	case token.TYPEKW:
		return p.parseGenDecl(token.TYPEKW, p.parseTypeSpec)
	case token.IMPORT:
		p.errorf("imports must appear before other declarations")
		return p.parseGenDecl(token.IMPORT, p.parseImportSpec)
	case token.FUNC:
		return p.parseFuncDecl()
	}
	from := p.pos
	p.errorf("non-declaration statement outside function body")
	p.next()
	p.syncDecl()
	return &ast.BadDecl{From: from, To: p.pos - 1}
}

type specFunc func(index int) ast.Spec

func (p *parser) parseGenDecl(kw token.Kind, f specFunc) *ast.GenDecl {
	d := &ast.GenDecl{TokPos: p.expect(kw), Tok: kw, Lparen: ast.NoPos, Rparen: ast.NoPos}
	if p.tok == token.LPAREN {
		d.Lparen = p.pos
		p.next()
		for i := 0; p.tok != token.RPAREN && p.tok != token.EOF; i++ {
			start := p.pos
			d.Specs = append(d.Specs, f(i))
			p.expectSemi()
			if p.pos == start {
				p.next()
			}
		}
		d.Rparen = p.expect(token.RPAREN)
		p.expectSemi()
		return d
	}
	d.Specs = append(d.Specs, f(0))
	p.expectSemi()
	return d
}

func (p *parser) parseImportSpec(int) ast.Spec {
	s := &ast.ImportSpec{}
	switch {
	case p.tok == token.PERIOD:
		s.Name = &ast.Ident{Tok: p.pos, Name: "."}
		p.next()
	case p.tok.IsIdentifier():
		s.Name = p.parseIdent()
	}
	if p.tok == token.STRING {
		s.Path = &ast.BasicLit{Tok: p.pos, Kind: token.STRING, Value: p.lit()}
		p.next()
	} else {
		p.errorExpected("import path")
		s.Path = &ast.BasicLit{Tok: ast.NoPos, Kind: token.STRING, Value: `""`}
	}
	p.imports = append(p.imports, s)
	return s
}

func (p *parser) parseValueSpecFunc(kw token.Kind) specFunc {
	var prev *ast.ValueSpec
	return func(index int) ast.Spec {
		s := &ast.ValueSpec{Iota: index}
		s.Names = p.parseIdentList()
		if p.tok != token.ASSIGN && p.tok != token.SEMICOLON && p.tok != token.RPAREN {
			s.Type = p.parseType()
		}
		if p.tok == token.ASSIGN {
			p.next()
			s.Values = p.parseExprList()
		}
		if kw == token.CONST {
			if s.Type == nil && len(s.Values) == 0 {
				if prev == nil {
					p.errorf("missing init expr for const declaration")
				}
				s.Prev = prev
			} else {
				prev = s
			}
		} else if s.Type == nil && len(s.Values) == 0 {
			p.errorf("missing variable type or initialization")
		}
		return s
	}
}

func (p *parser) parseTypeSpec(int) ast.Spec {
	s := &ast.TypeSpec{Assign: ast.NoPos}
	s.Name = p.parseIdent()
	if p.tok == token.ASSIGN {
		s.Assign = p.pos
		p.next()
	}
	s.Type = p.parseType()
	return s
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	d := &ast.FuncDecl{}
	funcPos := p.expect(token.FUNC)

	if p.tok == token.LPAREN {
		d.Recv = p.parseParameters()
		if n := d.Recv.NumFields(); n != 1 {
			p.diags = append(p.diags, p.diagAt(d.Recv.Opening, fmt.Sprintf("method has %d receivers", n)))
		}
	}
	d.Name = p.parseIdent()

	params := p.parseParameters()
	results := p.parseResult()
	d.Type = &ast.FuncType{Func: funcPos, Params: params, Results: results}

	if p.tok == token.LBRACE {
		d.Body = p.parseBody()
	}
	p.expectSemi()
	return d
}
