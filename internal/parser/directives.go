package parser

import (
	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/token"
)

// Directive statements, per spec.md §3 ("Statements") and §4.2.

func (p *Parser) parseEvalStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	return &ast.EvalStatement{Token: tok, Expr: p.parseExpression(lowest)}
}

func (p *Parser) parseAssertStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	return &ast.AssertStatement{Token: tok, Expr: p.parseExpression(lowest)}
}

func (p *Parser) parseDebugStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	msg := p.parseExpression(lowest)
	stmt := &ast.DebugStatement{Token: tok, Msg: msg}
	for p.Optional(token.COMMA) {
		p.nextToken()
		stmt.Args = append(stmt.Args, p.parseExpression(lowest))
	}
	return stmt
}

func (p *Parser) parseCheckCallStatement() ast.Statement {
	tok := p.cur
	p.expect(token.IDENT)
	name := p.cur.Literal
	params, vararg := p.parseParamList()
	body := p.parseBlock(token.END)
	return &ast.CheckCallStatement{Token: tok, Name: name, Params: params, Vararg: vararg, Body: body}
}

func (p *Parser) parseTodoStatement() ast.Statement {
	tok := p.cur
	stmt := &ast.TodoStatement{Token: tok}
	if p.peekIs(token.STRING) {
		p.nextToken()
		stmt.Msg = p.cur.Literal
	}
	return stmt
}

func (p *Parser) parseInlineStatement() ast.Statement {
	tok := p.cur
	p.expect(token.FUNCTION)
	p.expect(token.IDENT)
	name := p.cur.Literal
	params, _ := p.parseParamList()
	body := p.parseBlock(token.END)
	return &ast.InlineFunctionStatement{Token: tok, Name: name, Params: params, Body: body}
}

func (p *Parser) parseDeferStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	inner := p.parseStatement()
	return &ast.DeferStatement{Token: tok, Stmt: inner}
}

func (p *Parser) parseUsingStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	return &ast.UsingStatement{Token: tok, Prefix: p.parseExpression(lowest)}
}

func (p *Parser) parseLoadStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	return &ast.LoadStatement{Token: tok, Expr: p.parseExpression(lowest)}
}
