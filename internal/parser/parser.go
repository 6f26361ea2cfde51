// Package parser implements a recursive-descent parser with a small
// combinator library for the extended dialect, grounded on the teacher's
// internal/parser package (combinators.go, cursor.go, context.go).
package parser

import (
	"fmt"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/lexer"
	"github.com/complua/complua/internal/token"
)

// Error is a parse-time syntax error with a source position.
type Error struct {
	Pos     token.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Parser turns a token stream into a Program. It holds a two-token
// lookahead window (cur/peek), matching the teacher's cursor style.
type Parser struct {
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token
	errs []*Error
}

// New returns a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every syntax error accumulated while parsing.
func (p *Parser) Errors() []*Error { return p.errs }

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.Next()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

// Optional consumes peek and returns true if it matches t; otherwise the
// parser state is unchanged. Grounded on the teacher's
// combinators.go:Optional.
func (p *Parser) Optional(t token.Type) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes peek if it matches t, else records a syntax error and
// leaves the parser positioned at the offending token.
func (p *Parser) expect(t token.Type) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peek.Pos, "expected %s, got %s (%q)", t, p.peek.Type, p.peek.Literal)
	return false
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errs = append(p.errs, &Error{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// SeparatedList parses items separated by sep until term is the peek
// token, mirroring the teacher's SeparatedList combinator.
func SeparatedList[T any](p *Parser, sep, term token.Type, parseItem func() T) []T {
	var items []T
	if p.peekIs(term) {
		return items
	}
	items = append(items, parseItem())
	for p.Optional(sep) {
		if p.peekIs(term) {
			break
		}
		items = append(items, parseItem())
	}
	return items
}

// ParseProgram parses the whole token stream into a Program.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.nextToken()
	}
	return prog
}

func (p *Parser) parseBlock(terminators ...token.Type) []ast.Statement {
	var stmts []ast.Statement
	p.nextToken()
	for !p.curIsAny(terminators...) && !p.curIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	return stmts
}

func (p *Parser) curIsAny(types ...token.Type) bool {
	for _, t := range types {
		if p.curIs(t) {
			return true
		}
	}
	return false
}

func (p *Parser) parseIdentList() []string {
	var names []string
	names = append(names, p.cur.Literal)
	for p.Optional(token.COMMA) {
		p.expect(token.IDENT)
		names = append(names, p.cur.Literal)
	}
	return names
}

func (p *Parser) parseParamList() ([]string, bool) {
	p.expect(token.LPAREN)
	var params []string
	vararg := false
	for !p.peekIs(token.RPAREN) {
		p.nextToken()
		if p.curIs(token.ELLIPSIS) {
			vararg = true
			break
		}
		params = append(params, p.cur.Literal)
		if !p.peekIs(token.RPAREN) {
			p.expect(token.COMMA)
		}
	}
	p.expect(token.RPAREN)
	return params, vararg
}

func (p *Parser) parseExprList() []ast.Expression {
	var exprs []ast.Expression
	exprs = append(exprs, p.parseExpression(lowest))
	for p.Optional(token.COMMA) {
		p.nextToken()
		exprs = append(exprs, p.parseExpression(lowest))
	}
	return exprs
}
