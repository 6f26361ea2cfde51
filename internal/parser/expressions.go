package parser

import (
	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/token"
)

// Precedence levels, lowest to highest, per spec.md §4.1's ladder:
// power > multiplicative > additive > relational > equality > and > or.
// Right-associativity applies only at the power level.
const (
	lowest int = iota
	orPrec
	andPrec
	equalityPrec
	relationalPrec
	additivePrec
	multiplicativePrec
	unaryPrec
	powerPrec
	callPrec
)

var precedences = map[token.Type]int{
	token.OR:       orPrec,
	token.AND:      andPrec,
	token.EQ:       equalityPrec,
	token.NEQ:      equalityPrec,
	token.LT:       relationalPrec,
	token.GT:       relationalPrec,
	token.LTE:      relationalPrec,
	token.GTE:      relationalPrec,
	token.PLUS:     additivePrec,
	token.MINUS:    additivePrec,
	token.CONCAT:   additivePrec,
	token.STAR:     multiplicativePrec,
	token.SLASH:    multiplicativePrec,
	token.PERCENT:  multiplicativePrec,
	token.CARET:    powerPrec,
	token.LPAREN:   callPrec,
	token.LBRACKET: callPrec,
	token.DOT:      callPrec,
	token.COLON:    callPrec,
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return lowest
}

// parseExpression is a standard Pratt parser: a prefix ("nud") step
// followed by zero or more infix ("led") steps whose precedence exceeds
// the caller's minimum.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for minPrec < p.peekPrecedence() {
		p.nextToken()
		left = p.parseInfix(left)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.cur.Type {
	case token.IDENT:
		return &ast.Identifier{Token: p.cur, Name: p.cur.Literal}
	case token.INT:
		return &ast.NumberLiteral{Token: p.cur, Value: p.cur.Literal, Float: false}
	case token.FLOAT:
		return &ast.NumberLiteral{Token: p.cur, Value: p.cur.Literal, Float: true}
	case token.STRING:
		return &ast.StringLiteral{Token: p.cur, Value: p.cur.Literal}
	case token.TRUE, token.FALSE:
		return &ast.BooleanLiteral{Token: p.cur, Value: p.cur.Type == token.TRUE}
	case token.NIL:
		return &ast.NilLiteral{Token: p.cur}
	case token.ELLIPSIS:
		return &ast.Varargs{Token: p.cur}
	case token.MINUS, token.NOT:
		return p.parseUnary()
	case token.LPAREN:
		return p.parseParenExpression()
	case token.LBRACE:
		return p.parseTableConstructor()
	case token.FUNCTION:
		return p.parseFunctionLiteral()
	case token.DO:
		return p.parseDoExpr()
	case token.DIRECTIVE_EVAL:
		return p.parseEvalExpr()
	case token.DIRECTIVE_LOAD:
		return p.parseLoadExpr()
	case token.DIRECTIVE_REPR:
		return p.parseReprExpr()
	default:
		p.errorf(p.cur.Pos, "unexpected token %s in expression", p.cur.Type)
		return nil
	}
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.cur
	op := tok.Literal
	p.nextToken()
	operand := p.parseExpression(unaryPrec)
	return &ast.UnaryExpression{Token: tok, Operator: op, Operand: operand}
}

func (p *Parser) parseParenExpression() ast.Expression {
	tok := p.cur
	p.nextToken()
	inner := p.parseExpression(lowest)
	p.expect(token.RPAREN)
	return &ast.ParenExpression{Token: tok, Inner: inner}
}

func (p *Parser) parseDoExpr() ast.Expression {
	tok := p.cur
	body := p.parseBlock(token.END)
	return &ast.DoExpr{Token: tok, Body: body}
}

func (p *Parser) parseEvalExpr() ast.Expression {
	tok := p.cur
	p.nextToken()
	return &ast.EvalExpr{Token: tok, Expr: p.parseExpression(lowest)}
}

func (p *Parser) parseLoadExpr() ast.Expression {
	tok := p.cur
	p.nextToken()
	return &ast.LoadExpr{Token: tok, Expr: p.parseExpression(lowest)}
}

func (p *Parser) parseReprExpr() ast.Expression {
	tok := p.cur
	p.nextToken()
	return &ast.ReprExpr{Token: tok, Expr: p.parseExpression(lowest)}
}

func (p *Parser) parseTableConstructor() ast.Expression {
	tok := p.cur
	var fields []ast.Field
	for !p.peekIs(token.RBRACE) {
		p.nextToken()
		fields = append(fields, p.parseField())
		if !p.peekIs(token.RBRACE) {
			if !p.Optional(token.COMMA) {
				p.Optional(token.SEMICOLON)
			}
		}
	}
	p.expect(token.RBRACE)
	return &ast.TableConstructor{Token: tok, Fields: fields}
}

func (p *Parser) parseField() ast.Field {
	if p.curIs(token.LBRACKET) {
		p.nextToken()
		key := p.parseExpression(lowest)
		p.expect(token.RBRACKET)
		p.expect(token.ASSIGN)
		p.nextToken()
		return ast.Field{Key: key, Value: p.parseExpression(lowest)}
	}
	if p.curIs(token.IDENT) && p.peekIs(token.ASSIGN) {
		name := p.cur.Literal
		p.nextToken()
		p.nextToken()
		return ast.Field{Name: name, Value: p.parseExpression(lowest)}
	}
	return ast.Field{Value: p.parseExpression(lowest)}
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.cur
	params, vararg := p.parseParamList()
	body := p.parseBlock(token.END)
	return &ast.FunctionLiteral{Token: tok, Params: params, Vararg: vararg, Body: body}
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	switch p.cur.Type {
	case token.DOT:
		return p.parsePropertyOrMethod(left)
	case token.LBRACKET:
		return p.parseIndex(left)
	case token.LPAREN:
		return p.parseCall(left)
	case token.COLON:
		return p.parseMethodCall(left)
	default:
		return p.parseBinary(left)
	}
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	tok := p.cur
	op := tok.Literal
	prec := p.curPrecedence()
	p.nextToken()
	var right ast.Expression
	if prec == powerPrec {
		// right-associative: allow an equal-precedence RHS to recurse.
		right = p.parseExpression(prec - 1)
	} else {
		right = p.parseExpression(prec)
	}
	return &ast.BinaryExpression{Token: tok, Left: left, Operator: op, Right: right}
}

func (p *Parser) parsePropertyOrMethod(left ast.Expression) ast.Expression {
	tok := p.cur
	p.expect(token.IDENT)
	name := p.cur.Literal
	return &ast.PropertyAccess{Token: tok, Object: left, Property: name}
}

func (p *Parser) parseIndex(left ast.Expression) ast.Expression {
	tok := p.cur
	p.nextToken()
	idx := p.parseExpression(lowest)
	p.expect(token.RBRACKET)
	return &ast.IndexExpression{Token: tok, Object: left, Index: idx}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	tok := p.cur
	args := p.parseArgs()
	return &ast.CallExpression{Token: tok, Callee: callee, Args: args}
}

func (p *Parser) parseMethodCall(left ast.Expression) ast.Expression {
	tok := p.cur
	p.expect(token.IDENT)
	method := p.cur.Literal
	p.expect(token.LPAREN)
	args := p.parseArgs()
	return &ast.MethodCallExpression{Token: tok, Object: left, Method: method, Args: args}
}

// parseArgs parses a call's argument list. Assumes cur is LPAREN.
func (p *Parser) parseArgs() []ast.Expression {
	var args []ast.Expression
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return args
	}
	p.nextToken()
	args = append(args, p.parseExpression(lowest))
	for p.Optional(token.COMMA) {
		p.nextToken()
		args = append(args, p.parseExpression(lowest))
	}
	p.expect(token.RPAREN)
	return args
}
