package emitter

import (
	"fmt"
	"strings"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/compctx"
	"github.com/complua/complua/internal/deps"
)

func (e *Emitter) emitStatement(sb *strings.Builder, ctx *compctx.Context, stmt ast.Statement) error {
	e.lineMarker(sb, ctx, stmt.Pos())

	switch n := stmt.(type) {
	case *ast.LocalDeclStatement:
		return e.emitLocalDecl(sb, ctx, n)
	case *ast.AssignStatement:
		return e.emitAssign(sb, ctx, n)
	case *ast.FunctionDeclStatement:
		return e.emitFunctionDecl(sb, ctx, n)
	case *ast.ExpressionStatement:
		return e.emitExpressionStatement(sb, ctx, n)
	case *ast.IfStatement:
		return e.emitIf(sb, ctx, n)
	case *ast.NumericForStatement:
		return e.emitNumericFor(sb, ctx, n)
	case *ast.IteratorForStatement:
		return e.emitIteratorFor(sb, ctx, n)
	case *ast.WhileStatement:
		return e.emitWhile(sb, ctx, n)
	case *ast.ReturnStatement:
		return e.emitReturn(sb, ctx, n)
	case *ast.BreakStatement:
		sb.WriteString("break\n")
		return nil
	case *ast.DoStatement:
		return e.emitDoStatement(sb, ctx, n)
	case *ast.EvalStatement:
		return e.emitEvalStatement(sb, ctx, n)
	case *ast.AssertStatement:
		return e.emitAssertStatement(sb, ctx, n)
	case *ast.DebugStatement:
		return e.emitDebugStatement(sb, ctx, n)
	case *ast.CheckCallStatement:
		ctx.RegisterCheckCall(n)
		return nil
	case *ast.TodoStatement:
		return e.emitTodoStatement(sb, n)
	case *ast.InlineFunctionStatement:
		ctx.RegisterInline(n)
		return nil
	case *ast.DeferStatement:
		ctx.PushDefer(n.Stmt)
		return nil
	case *ast.UsingStatement:
		ctx.PushUsing(n.Prefix)
		return nil
	case *ast.LoadStatement:
		return e.emitLoadStatement(sb, ctx, n)
	default:
		return fmt.Errorf("emitter: unhandled statement %T", stmt)
	}
}

func (e *Emitter) emitLocalDecl(sb *strings.Builder, ctx *compctx.Context, n *ast.LocalDeclStatement) error {
	sb.WriteString("local ")
	sb.WriteString(strings.Join(n.Names, ", "))
	if len(n.Values) > 0 {
		sb.WriteString(" = ")
		if err := e.emitExprList(sb, ctx, n.Values); err != nil {
			return err
		}
	}
	sb.WriteString("\n")
	for _, name := range n.Names {
		ctx.Bind(name, n)
	}
	return nil
}

// emitAssign handles both "=" and desugared compound assignment
// ("a += b" -> "a = a + b", spec.md §4.2 "In-place assignment"), and
// rewrites bare-identifier targets through the active #using chain
// (spec.md §4.2 "#using").
func (e *Emitter) emitAssign(sb *strings.Builder, ctx *compctx.Context, n *ast.AssignStatement) error {
	values := n.Values
	if n.Operator != "=" {
		if len(n.Targets) != 1 || len(values) != 1 {
			return fmt.Errorf("emitter: compound assignment requires a single target and value at %s", n.Pos())
		}
		values = []ast.Expression{&ast.BinaryExpression{
			Token:    n.Token,
			Left:     n.Targets[0],
			Operator: strings.TrimSuffix(n.Operator, "="),
			Right:    n.Values[0],
		}}
	}

	if id, ok := usingWriteStatement(ctx, n); ok {
		if err := e.emitUsingWrite(sb, ctx, id, values[0]); err != nil {
			return err
		}
	} else {
		for i, target := range n.Targets {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := e.emitAssignTarget(sb, ctx, target); err != nil {
				return err
			}
		}
		sb.WriteString(" = ")
		if err := e.emitExprList(sb, ctx, values); err != nil {
			return err
		}
		sb.WriteString("\n")
	}

	for i, target := range n.Targets {
		id, ok := target.(*ast.Identifier)
		if !ok {
			continue
		}
		if _, bound := ctx.Lookup(id.Name); !bound {
			ctx.Bind(id.Name, n)
			continue
		}
		// Already bound: this is a reassignment, not a first declaration.
		// Record it in the assigns log so the dependency tracker can
		// replay it after the original declaration (spec.md §4.3,
		// "Assigns log").
		var chain []ast.Node
		if i < len(values) {
			chain = deps.Chain(values[i], ctx)
		}
		ctx.RecordAssign(id.Name, n, chain)
	}
	return nil
}

func (e *Emitter) emitFunctionDecl(sb *strings.Builder, ctx *compctx.Context, n *ast.FunctionDeclStatement) error {
	ctx.Bind(n.Name, n)

	fmt.Fprintf(sb, "function %s(", n.Name)
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
	sb.WriteString("end\n")
	return nil
}

// emitFunctionBody opens a new scope (spec.md §3 invariant 1), binds
// params as locals so the dependency tracker and #using rewriting see
// them, and emits the body with defer/return handling. A function body is
// a defer boundary: the open-scope stack is emptied for its duration, so a
// `return` inside it never replays the defers of enclosing code.
func (e *Emitter) emitFunctionBody(sb *strings.Builder, ctx *compctx.Context, params []string, body []ast.Statement) error {
	outer := e.scopes
	e.scopes = nil
	defer func() { e.scopes = outer }()
	bodyCtx := ctx.Scope()

	for _, param := range params {
		bodyCtx.Bind(param, &ast.LocalDeclStatement{Names: []string{param}})
	}

	return e.emitScopeBody(sb, bodyCtx, body)
}

func (e *Emitter) emitExpressionStatement(sb *strings.Builder, ctx *compctx.Context, n *ast.ExpressionStatement) error {
	if err := e.emitExpr(sb, ctx, n.Expr); err != nil {
		return err
	}
	sb.WriteString("\n")
	return nil
}

func (e *Emitter) emitIf(sb *strings.Builder, ctx *compctx.Context, n *ast.IfStatement) error {
	for i, clause := range n.Clauses {
		if i == 0 {
			sb.WriteString("if ")
		} else {
			sb.WriteString("elseif ")
		}
		if err := e.emitExpr(sb, ctx, clause.Condition); err != nil {
			return err
		}
		sb.WriteString(" then\n")
		if err := e.emitStatements(sb, ctx, clause.Body); err != nil {
			return err
		}
	}
	if n.ElseBody != nil {
		sb.WriteString("else\n")
		if err := e.emitStatements(sb, ctx, n.ElseBody); err != nil {
			return err
		}
	}
	sb.WriteString("end\n")
	return nil
}

func (e *Emitter) emitNumericFor(sb *strings.Builder, ctx *compctx.Context, n *ast.NumericForStatement) error {
	fmt.Fprintf(sb, "for %s = ", n.Var)
	if err := e.emitExpr(sb, ctx, n.Start); err != nil {
		return err
	}
	sb.WriteString(", ")
	if err := e.emitExpr(sb, ctx, n.Stop); err != nil {
		return err
	}
	if n.Step != nil {
		sb.WriteString(", ")
		if err := e.emitExpr(sb, ctx, n.Step); err != nil {
			return err
		}
	}
	sb.WriteString(" do\n")
	ctx.Bind(n.Var, n)
	if err := e.emitStatements(sb, ctx, n.Body); err != nil {
		return err
	}
	sb.WriteString("end\n")
	return nil
}

func (e *Emitter) emitIteratorFor(sb *strings.Builder, ctx *compctx.Context, n *ast.IteratorForStatement) error {
	fmt.Fprintf(sb, "for %s in ", strings.Join(n.Vars, ", "))
	if err := e.emitExprList(sb, ctx, n.Exprs); err != nil {
		return err
	}
	sb.WriteString(" do\n")
	for _, v := range n.Vars {
		ctx.Bind(v, n)
	}
	if err := e.emitStatements(sb, ctx, n.Body); err != nil {
		return err
	}
	sb.WriteString("end\n")
	return nil
}

func (e *Emitter) emitWhile(sb *strings.Builder, ctx *compctx.Context, n *ast.WhileStatement) error {
	sb.WriteString("while ")
	if err := e.emitExpr(sb, ctx, n.Condition); err != nil {
		return err
	}
	sb.WriteString(" do\n")
	if err := e.emitStatements(sb, ctx, n.Body); err != nil {
		return err
	}
	sb.WriteString("end\n")
	return nil
}

func (e *Emitter) emitReturn(sb *strings.Builder, ctx *compctx.Context, n *ast.ReturnStatement) error {
	if len(n.Values) == 0 {
		e.flushAllDefers(sb, ctx)
		sb.WriteString("return\n")
		return nil
	}

	tmpNames := make([]string, len(n.Values))
	for i := range n.Values {
		tmpNames[i] = fmt.Sprintf("__complua_ret%d", i)
	}
	sb.WriteString("local ")
	sb.WriteString(strings.Join(tmpNames, ", "))
	sb.WriteString(" = ")
	if err := e.emitExprList(sb, ctx, n.Values); err != nil {
		return err
	}
	sb.WriteString("\n")

	e.flushAllDefers(sb, ctx)

	sb.WriteString("return ")
	sb.WriteString(strings.Join(tmpNames, ", "))
	sb.WriteString("\n")
	return nil
}

func (e *Emitter) emitDoStatement(sb *strings.Builder, ctx *compctx.Context, n *ast.DoStatement) error {
	sb.WriteString("do\n")
	doCtx := e.pushScope(ctx)
	err := e.emitScopeBody(sb, doCtx, n.Body)
	e.popScope()
	if err != nil {
		return err
	}
	sb.WriteString("end\n")
	return nil
}

func (e *Emitter) emitTodoStatement(sb *strings.Builder, n *ast.TodoStatement) error {
	msg := n.Msg
	if msg == "" {
		msg = "Not implemented"
	}
	fmt.Fprintf(sb, "error(%q)\n", msg)
	return nil
}
