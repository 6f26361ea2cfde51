package emitter

import (
	"fmt"
	"strings"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/compctx"
)

// emitIdentifierRead emits a bare identifier, or, under an active #using
// stack, the read-side chained fallback of spec.md §4.2/§8 scenario 5:
// "(ns.foo ~= nil and ns.foo or foo)", composed innermost-first for nested
// "#using"s.
func (e *Emitter) emitIdentifierRead(sb *strings.Builder, ctx *compctx.Context, n *ast.Identifier) error {
	stack := ctx.UsingStack()
	if len(stack) == 0 {
		sb.WriteString(n.Name)
		return nil
	}
	return e.emitUsingReadChain(sb, ctx, stack, n.Name)
}

func (e *Emitter) emitUsingReadChain(sb *strings.Builder, ctx *compctx.Context, stack []ast.Expression, name string) error {
	if len(stack) == 0 {
		sb.WriteString(name)
		return nil
	}
	prefix := stack[len(stack)-1]
	rest := stack[:len(stack)-1]

	// prefix resolves as a plain binding: it must not itself be rewritten
	// through the chain it defines (spec.md §4.2 "#using"), else emitting
	// the prefix re-enters this same chain and never terminates.
	plainCtx := ctx.WithUsingStack(nil)

	sb.WriteString("(")
	if err := e.emitExpr(sb, plainCtx, prefix); err != nil {
		return err
	}
	fmt.Fprintf(sb, ".%s ~= nil and ", name)
	if err := e.emitExpr(sb, plainCtx, prefix); err != nil {
		return err
	}
	fmt.Fprintf(sb, ".%s or ", name)
	if err := e.emitUsingReadChain(sb, ctx, rest, name); err != nil {
		return err
	}
	sb.WriteString(")")
	return nil
}

// emitAssignTarget emits one assignment-statement target. Non-identifier
// targets (property/index) are unaffected by "#using" and emit plainly.
func (e *Emitter) emitAssignTarget(sb *strings.Builder, ctx *compctx.Context, target ast.Expression) error {
	return e.emitExpr(sb, ctx, target)
}

// usingWriteStatement reports whether n is a single-target, single-value
// assignment to a plain identifier under an active "#using" stack, in
// which case emitAssign must route through __complua_using_write instead
// of a plain "x = value" line (spec.md §4.2: "Assignment to x emits a
// symmetric chain that writes to the first prefix holding a non-nil
// binding"). Multi-target assignment under "#using" falls back to plain
// emission for each target; spec.md's worked example (§8 scenario 5) only
// covers the single-target case.
func usingWriteStatement(ctx *compctx.Context, n *ast.AssignStatement) (*ast.Identifier, bool) {
	if len(ctx.UsingStack()) == 0 || len(n.Targets) != 1 || len(n.Values) != 1 {
		return nil, false
	}
	id, ok := n.Targets[0].(*ast.Identifier)
	return id, ok
}

func (e *Emitter) emitUsingWrite(sb *strings.Builder, ctx *compctx.Context, id *ast.Identifier, value ast.Expression) error {
	stack := ctx.UsingStack()
	plainCtx := ctx.WithUsingStack(nil)

	// Prefixes are passed innermost first, the same order the read chain
	// tries them in; the helper writes to the first one holding the key.
	sb.WriteString("__complua_using_write({")
	for i := len(stack) - 1; i >= 0; i-- {
		if i < len(stack)-1 {
			sb.WriteString(", ")
		}
		if err := e.emitExpr(sb, plainCtx, stack[i]); err != nil {
			return err
		}
	}
	fmt.Fprintf(sb, "}, %s, ", quoteString(id.Name))
	if err := e.emitExpr(sb, ctx, value); err != nil {
		return err
	}
	fmt.Fprintf(sb, ", function(v) %s = v end)\n", id.Name)
	return nil
}
