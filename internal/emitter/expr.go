package emitter

import (
	"fmt"
	"strings"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/compctx"
)

func (e *Emitter) emitExprList(sb *strings.Builder, ctx *compctx.Context, exprs []ast.Expression) error {
	for i, expr := range exprs {
		if i > 0 {
			sb.WriteString(", ")
		}
		if err := e.emitExpr(sb, ctx, expr); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitExpr(sb *strings.Builder, ctx *compctx.Context, expr ast.Expression) error {
	switch n := expr.(type) {
	case *ast.Identifier:
		return e.emitIdentifierRead(sb, ctx, n)
	case *ast.NumberLiteral:
		sb.WriteString(n.Value)
		return nil
	case *ast.StringLiteral:
		sb.WriteString(quoteString(n.Value))
		return nil
	case *ast.BooleanLiteral:
		if n.Value {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
		return nil
	case *ast.NilLiteral:
		sb.WriteString("nil")
		return nil
	case *ast.Varargs:
		sb.WriteString("...")
		return nil
	case *ast.UnaryExpression:
		sb.WriteString(n.Operator)
		if n.Operator == "not" {
			sb.WriteString(" ")
		}
		return e.emitExpr(sb, ctx, n.Operand)
	case *ast.BinaryExpression:
		if err := e.emitExpr(sb, ctx, n.Left); err != nil {
			return err
		}
		fmt.Fprintf(sb, " %s ", n.Operator)
		return e.emitExpr(sb, ctx, n.Right)
	case *ast.PropertyAccess:
		if err := e.emitExpr(sb, ctx, n.Object); err != nil {
			return err
		}
		fmt.Fprintf(sb, ".%s", n.Property)
		return nil
	case *ast.IndexExpression:
		if err := e.emitExpr(sb, ctx, n.Object); err != nil {
			return err
		}
		sb.WriteString("[")
		if err := e.emitExpr(sb, ctx, n.Index); err != nil {
			return err
		}
		sb.WriteString("]")
		return nil
	case *ast.ParenExpression:
		sb.WriteString("(")
		if err := e.emitExpr(sb, ctx, n.Inner); err != nil {
			return err
		}
		sb.WriteString(")")
		return nil
	case *ast.TableConstructor:
		return e.emitTableConstructor(sb, ctx, n)
	case *ast.FunctionLiteral:
		return e.emitFunctionLiteral(sb, ctx, n)
	case *ast.CallExpression:
		return e.emitCall(sb, ctx, n)
	case *ast.MethodCallExpression:
		return e.emitMethodCall(sb, ctx, n)
	case *ast.EvalExpr:
		return e.emitEvalExpr(sb, ctx, n)
	case *ast.LoadExpr:
		return e.emitLoadExpr(sb, ctx, n)
	case *ast.ReprExpr:
		return e.emitReprExpr(sb, ctx, n)
	case *ast.DoExpr:
		return e.emitDoExpr(sb, ctx, n)
	default:
		return fmt.Errorf("emitter: unhandled expression %T", expr)
	}
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func (e *Emitter) emitTableConstructor(sb *strings.Builder, ctx *compctx.Context, n *ast.TableConstructor) error {
	sb.WriteString("{")
	for i, f := range n.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch {
		case f.Key != nil:
			sb.WriteString("[")
			if err := e.emitExpr(sb, ctx, f.Key); err != nil {
				return err
			}
			sb.WriteString("] = ")
		case f.Name != "":
			fmt.Fprintf(sb, "%s = ", f.Name)
		}
		if err := e.emitExpr(sb, ctx, f.Value); err != nil {
			return err
		}
	}
	sb.WriteString("}")
	return nil
}

func (e *Emitter) emitFunctionLiteral(sb *strings.Builder, ctx *compctx.Context, n *ast.FunctionLiteral) error {
	sb.WriteString("function(")
	sb.WriteString(strings.Join(n.Params, ", "))
	if n.Vararg {
		if len(n.Params) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	}
	sb.WriteString(")\n")
	if err := e.emitFunctionBody(sb, ctx, n.Params, n.Body); err != nil {
		return err
	}
	sb.WriteString("end")
	return nil
}

func (e *Emitter) emitDoExpr(sb *strings.Builder, ctx *compctx.Context, n *ast.DoExpr) error {
	sb.WriteString("(function()\n")
	if err := e.emitFunctionBody(sb, ctx, nil, n.Body); err != nil {
		return err
	}
	sb.WriteString("end)()")
	return nil
}

// emitCall intercepts a registered #inline or #checkcall name before
// falling back to a plain call (spec.md §4.2 "#inline"/"#checkcall").
// Line info is suppressed for the duration of argument emission so a
// multi-argument call never has a "--LINE:n" marker injected mid-
// expression (spec.md §4.2, "Line markers").
func (e *Emitter) emitCall(sb *strings.Builder, ctx *compctx.Context, n *ast.CallExpression) error {
	if name, ok := calleeName(n.Callee); ok {
		if fn, ok := ctx.Inline(name); ok {
			return e.emitInlineExpansion(sb, ctx, fn, n.Args)
		}
		if cc, ok := ctx.CheckCall(name); ok {
			if err := e.Eval.CheckCall(ctx, e.File, cc, n.Args, n.Pos()); err != nil {
				return err
			}
		}
	}

	if err := e.emitExpr(sb, ctx, n.Callee); err != nil {
		return err
	}
	sb.WriteString("(")
	if err := e.withLineInfoSuppressed(ctx, func() error {
		return e.emitExprList(sb, ctx, n.Args)
	}); err != nil {
		return err
	}
	sb.WriteString(")")
	return nil
}

func (e *Emitter) emitMethodCall(sb *strings.Builder, ctx *compctx.Context, n *ast.MethodCallExpression) error {
	if err := e.emitExpr(sb, ctx, n.Object); err != nil {
		return err
	}
	fmt.Fprintf(sb, ":%s(", n.Method)
	if err := e.withLineInfoSuppressed(ctx, func() error {
		return e.emitExprList(sb, ctx, n.Args)
	}); err != nil {
		return err
	}
	sb.WriteString(")")
	return nil
}

func (e *Emitter) withLineInfoSuppressed(ctx *compctx.Context, fn func() error) error {
	prev := ctx.LineInfo
	ctx.LineInfo = false
	err := fn()
	ctx.LineInfo = prev
	return err
}

func calleeName(expr ast.Expression) (string, bool) {
	id, ok := expr.(*ast.Identifier)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// emitInlineExpansion emits "(function() <substituted body> end)()"
// (spec.md §4.2 "#inline"): the body is a structural copy with every
// parameter rewritten to the corresponding argument AST subtree.
func (e *Emitter) emitInlineExpansion(sb *strings.Builder, ctx *compctx.Context, fn *ast.InlineFunctionStatement, args []ast.Expression) error {
	subst := make(map[string]ast.Expression, len(fn.Params))
	for i, param := range fn.Params {
		if i < len(args) {
			subst[param] = args[i]
		}
	}
	body := ast.SubstituteBlock(fn.Body, subst)

	sb.WriteString("(function()\n")
	if err := e.emitFunctionBody(sb, ctx, nil, body); err != nil {
		return err
	}
	sb.WriteString("end)()")
	return nil
}
