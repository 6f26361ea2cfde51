package emitter

import (
	"fmt"
	"strings"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/compctx"
	"github.com/complua/complua/internal/diag"
)

// serializerGlobal is the reserved global key the embedded serialiser is
// injected under (spec.md §4.5, "injected into every compile-time program
// as a global under a reserved key"); internal/serializer defines it under
// the same name.
const serializerGlobal = "__complua_serialize"

func (e *Emitter) emitEvalExpr(sb *strings.Builder, ctx *compctx.Context, n *ast.EvalExpr) error {
	frag, err := e.Eval.Eval(ctx, e.File, n.Expr, n.Pos())
	if err != nil {
		return err
	}
	sb.WriteString(frag)
	return nil
}

func (e *Emitter) emitReprExpr(sb *strings.Builder, ctx *compctx.Context, n *ast.ReprExpr) error {
	fmt.Fprintf(sb, "%s(", serializerGlobal)
	if err := e.emitExpr(sb, ctx, n.Expr); err != nil {
		return err
	}
	sb.WriteString(")")
	return nil
}

// emitLoadExpr handles "#load expr" in expression position (spec.md §4.2,
// §8 scenario 6): expr must evaluate at compile time to a string, which is
// re-parsed as a single "return <expr>" fragment and its value expression
// spliced in place.
func (e *Emitter) emitLoadExpr(sb *strings.Builder, ctx *compctx.Context, n *ast.LoadExpr) error {
	src, err := e.Eval.EvalConstString(ctx, e.File, n.Expr, n.Pos())
	if err != nil {
		return err
	}
	stmts, err := e.Parse("return (" + src + ")\n")
	if err != nil {
		return diag.New(e.File, n.Pos(), "#load fragment failed to parse: %s", err)
	}
	ret, ok := singleReturnValue(stmts)
	if !ok {
		return diag.New(e.File, n.Pos(), "#load in expression position must evaluate to a single expression")
	}
	return e.emitExpr(sb, ctx, ret)
}

// emitLoadStatement handles "#load expr" in statement position: the parsed
// fragment's statements are spliced directly into the surrounding block.
func (e *Emitter) emitLoadStatement(sb *strings.Builder, ctx *compctx.Context, n *ast.LoadStatement) error {
	src, err := e.Eval.EvalConstString(ctx, e.File, n.Expr, n.Pos())
	if err != nil {
		return err
	}
	stmts, err := e.Parse(src)
	if err != nil {
		return diag.New(e.File, n.Pos(), "#load fragment failed to parse: %s", err)
	}
	return e.emitStatements(sb, ctx, stmts)
}

func singleReturnValue(stmts []ast.Statement) (ast.Expression, bool) {
	if len(stmts) != 1 {
		return nil, false
	}
	ret, ok := stmts[0].(*ast.ReturnStatement)
	if !ok || len(ret.Values) != 1 {
		return nil, false
	}
	return ret.Values[0], true
}

func (e *Emitter) emitEvalStatement(sb *strings.Builder, ctx *compctx.Context, n *ast.EvalStatement) error {
	frag, err := e.Eval.Eval(ctx, e.File, n.Expr, n.Pos())
	if err != nil {
		return err
	}
	sb.WriteString(frag)
	sb.WriteString("\n")
	return nil
}

// emitAssertStatement is sugar for "#eval assert(expr)" with the output
// fragment discarded (spec.md §4.2: "No runtime code is emitted for the
// assertion"). The compile-time evaluation still runs, so a falsy expr
// aborts compilation via the usual interpreter-error diagnostic path.
func (e *Emitter) emitAssertStatement(sb *strings.Builder, ctx *compctx.Context, n *ast.AssertStatement) error {
	call := &ast.CallExpression{
		Token:  n.Token,
		Callee: &ast.Identifier{Token: n.Token, Name: "assert"},
		Args:   []ast.Expression{n.Expr},
	}
	_, err := e.Eval.Eval(ctx, e.File, call, n.Pos())
	return err
}

// emitDebugStatement expands to "#eval print(string.format(msg, args...))"
// when the debug flag is on, otherwise evaporates (spec.md §4.2).
func (e *Emitter) emitDebugStatement(sb *strings.Builder, ctx *compctx.Context, n *ast.DebugStatement) error {
	if !ctx.Debug {
		return nil
	}
	formatCall := &ast.CallExpression{
		Token: n.Token,
		Callee: &ast.PropertyAccess{
			Token:    n.Token,
			Object:   &ast.Identifier{Token: n.Token, Name: "string"},
			Property: "format",
		},
		Args: append([]ast.Expression{n.Msg}, n.Args...),
	}
	printCall := &ast.CallExpression{
		Token:  n.Token,
		Callee: &ast.Identifier{Token: n.Token, Name: "print"},
		Args:   []ast.Expression{formatCall},
	}
	frag, err := e.Eval.Eval(ctx, e.File, printCall, n.Pos())
	if err != nil {
		return err
	}
	sb.WriteString(frag)
	sb.WriteString("\n")
	return nil
}
