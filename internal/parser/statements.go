package parser

import (
	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/token"
)

// assignOps maps a compound-assignment token to the operator recorded on
// the AssignStatement ("+=", "..=", ...). Desugaring to the binary operator
// itself happens in the emitter (spec.md §4.2, "In-place assignment"); the
// parser only records which operator was used.
var assignOps = map[token.Type]string{
	token.PLUS_ASSIGN:    "+=",
	token.MINUS_ASSIGN:   "-=",
	token.STAR_ASSIGN:    "*=",
	token.SLASH_ASSIGN:   "/=",
	token.PERCENT_ASSIGN: "%=",
	token.CARET_ASSIGN:   "^=",
	token.CONCAT_ASSIGN:  "..=",
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.SEMICOLON:
		return nil
	case token.LOCAL:
		return p.parseLocalDecl()
	case token.FUNCTION:
		return p.parseFunctionDecl()
	case token.IF:
		return p.parseIfStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.cur}
	case token.DO:
		return p.parseDoStatement()
	case token.DIRECTIVE_EVAL:
		return p.parseEvalStatement()
	case token.DIRECTIVE_ASSERT:
		return p.parseAssertStatement()
	case token.DIRECTIVE_DEBUG:
		return p.parseDebugStatement()
	case token.DIRECTIVE_CHECKCALL:
		return p.parseCheckCallStatement()
	case token.DIRECTIVE_TODO:
		return p.parseTodoStatement()
	case token.DIRECTIVE_INLINE:
		return p.parseInlineStatement()
	case token.DIRECTIVE_DEFER:
		return p.parseDeferStatement()
	case token.DIRECTIVE_USING:
		return p.parseUsingStatement()
	case token.DIRECTIVE_LOAD:
		return p.parseLoadStatement()
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

func (p *Parser) parseLocalDecl() ast.Statement {
	tok := p.cur
	p.expect(token.IDENT)
	names := p.parseIdentList()
	stmt := &ast.LocalDeclStatement{Token: tok, Names: names}
	if p.Optional(token.ASSIGN) {
		p.nextToken()
		stmt.Values = p.parseExprList()
	}
	return stmt
}

func (p *Parser) parseFunctionDecl() ast.Statement {
	tok := p.cur
	p.expect(token.IDENT)
	name := p.cur.Literal
	params, vararg := p.parseParamList()
	body := p.parseBlock(token.END)
	return &ast.FunctionDeclStatement{Token: tok, Name: name, Params: params, Vararg: vararg, Body: body}
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.cur
	stmt := &ast.IfStatement{Token: tok}

	p.nextToken()
	cond := p.parseExpression(lowest)
	p.expect(token.THEN)
	body := p.parseBlockUntil(token.ELSEIF, token.ELSE, token.END)
	stmt.Clauses = append(stmt.Clauses, ast.IfClause{Condition: cond, Body: body})

	for p.curIs(token.ELSEIF) {
		p.nextToken()
		cond := p.parseExpression(lowest)
		p.expect(token.THEN)
		body := p.parseBlockUntil(token.ELSEIF, token.ELSE, token.END)
		stmt.Clauses = append(stmt.Clauses, ast.IfClause{Condition: cond, Body: body})
	}

	if p.curIs(token.ELSE) {
		stmt.ElseBody = p.parseBlockUntil(token.END)
	}
	return stmt
}

// parseBlockUntil advances past the current block-opening token (the
// caller leaves cur on "then" or "else") and parses statements until cur
// is one of terminators, leaving cur on that terminator.
func (p *Parser) parseBlockUntil(terminators ...token.Type) []ast.Statement {
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

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.cur
	p.expect(token.IDENT)
	first := p.cur.Literal

	if p.peekIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		start := p.parseExpression(lowest)
		p.expect(token.COMMA)
		p.nextToken()
		stop := p.parseExpression(lowest)
		var step ast.Expression
		if p.Optional(token.COMMA) {
			p.nextToken()
			step = p.parseExpression(lowest)
		}
		p.expect(token.DO)
		body := p.parseBlock(token.END)
		return &ast.NumericForStatement{Token: tok, Var: first, Start: start, Stop: stop, Step: step, Body: body}
	}

	names := []string{first}
	for p.Optional(token.COMMA) {
		p.expect(token.IDENT)
		names = append(names, p.cur.Literal)
	}
	p.expect(token.IN)
	p.nextToken()
	exprs := p.parseExprList()
	p.expect(token.DO)
	body := p.parseBlock(token.END)
	return &ast.IteratorForStatement{Token: tok, Vars: names, Exprs: exprs, Body: body}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	cond := p.parseExpression(lowest)
	p.expect(token.DO)
	body := p.parseBlock(token.END)
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: body}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.cur
	stmt := &ast.ReturnStatement{Token: tok}
	if !p.peekIsBlockEnd() {
		p.nextToken()
		stmt.Values = p.parseExprList()
	}
	return stmt
}

func (p *Parser) peekIsBlockEnd() bool {
	return p.peekIsAny(token.END, token.ELSE, token.ELSEIF, token.EOF, token.SEMICOLON, token.UNTIL)
}

func (p *Parser) peekIsAny(types ...token.Type) bool {
	for _, t := range types {
		if p.peekIs(t) {
			return true
		}
	}
	return false
}

func (p *Parser) parseDoStatement() ast.Statement {
	tok := p.cur
	body := p.parseBlock(token.END)
	return &ast.DoStatement{Token: tok, Body: body}
}

// parseExpressionOrAssignStatement parses a primary expression and
// disambiguates between an expression-statement (a call) and an
// assignment by checking what follows.
func (p *Parser) parseExpressionOrAssignStatement() ast.Statement {
	tok := p.cur
	first := p.parseExpression(lowest)

	if op, ok := assignOps[p.peek.Type]; ok {
		p.nextToken()
		p.nextToken()
		rhs := p.parseExprList()
		return &ast.AssignStatement{Token: tok, Targets: []ast.Expression{first}, Operator: op, Values: rhs}
	}

	if p.peekIs(token.ASSIGN) || p.peekIs(token.COMMA) {
		targets := []ast.Expression{first}
		for p.Optional(token.COMMA) {
			p.nextToken()
			targets = append(targets, p.parseExpression(lowest))
		}
		p.expect(token.ASSIGN)
		p.nextToken()
		rhs := p.parseExprList()
		return &ast.AssignStatement{Token: tok, Targets: targets, Operator: "=", Values: rhs}
	}

	return &ast.ExpressionStatement{Token: tok, Expr: first}
}
