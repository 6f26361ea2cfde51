// Package emitter recursively translates the extended-dialect AST into
// plain-dialect source text (spec.md §4.2).
//
// Grounded on the teacher's self-printing AST nodes (internal/ast/*.go's
// *.String() methods recursively stringify a subtree in source order) —
// structurally the same recursive walk this emitter performs, generalized
// to thread a *compctx.Context through the walk and to handle the
// directive nodes the teacher's dialect has no equivalent of.
package emitter

import (
	"fmt"
	"strings"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/compctx"
	"github.com/complua/complua/internal/token"
)

// Evaluator is the compile-time evaluation collaborator (spec.md §4.4),
// implemented by internal/evalrt.Evaluator. Declared here, not imported
// from evalrt, because evalrt itself depends on this package to stringify
// a dependency chain as source text before invoking the external
// interpreter; an emitter->evalrt import would cycle.
type Evaluator interface {
	// Eval splices the compile-time value of expr as a ready-to-use
	// output expression fragment ("#eval", spec.md §4.2).
	Eval(ctx *compctx.Context, file string, expr ast.Expression, pos token.Position) (string, error)

	// EvalConstString evaluates expr at compile time and requires the
	// result be exactly a string, returning its content ("#load",
	// spec.md §4.2/§9).
	EvalConstString(ctx *compctx.Context, file string, expr ast.Expression, pos token.Position) (string, error)

	// CheckCall runs the registered validator cc against args at a call
	// site ("#checkcall", spec.md §4.2).
	CheckCall(ctx *compctx.Context, file string, cc *ast.CheckCallStatement, args []ast.Expression, pos token.Position) error
}

// FragmentParser parses a string of extended-dialect source into
// statements, used to splice a "#load" result back into the AST before
// re-emitting it.
type FragmentParser func(src string) ([]ast.Statement, error)

// Emitter holds the collaborators threaded through emission. It carries
// no mutable state of its own beyond the scope stack used for defer
// flushing at "return": all other mutable state lives in *compctx.Context.
type Emitter struct {
	File     string
	Eval     Evaluator
	Parse    FragmentParser
	scopes   []*compctx.Context // open function-body/do-block scopes, innermost last
}

// New returns an Emitter for file, delegating compile-time evaluation to
// ev and fragment parsing to parse.
func New(file string, ev Evaluator, parse FragmentParser) *Emitter {
	return &Emitter{File: file, Eval: ev, Parse: parse}
}

// EmitProgram emits every top-level statement in order.
func (e *Emitter) EmitProgram(prog *ast.Program, ctx *compctx.Context) (string, error) {
	var sb strings.Builder
	if err := e.emitStatements(&sb, ctx, prog.Statements); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// lineMarker writes a "--LINE:n" comment ahead of a statement, unless
// line-info is currently suppressed (spec.md §4.2, "Line markers":
// suppressed for the duration of a call's argument list).
func (e *Emitter) lineMarker(sb *strings.Builder, ctx *compctx.Context, pos token.Position) {
	if ctx.LineInfo && pos.IsValid() {
		fmt.Fprintf(sb, "--LINE:%d\n", pos.Line)
	}
}

// emitStatements emits a flat statement list. A `return` anywhere in the
// list flushes the full open-scope defer chain itself (spec.md §3
// invariant 3); emitStatements applies no fallthrough behaviour of its
// own, since a nested if/while/for body falling off its own end does not
// exit the enclosing function or do-block.
func (e *Emitter) emitStatements(sb *strings.Builder, ctx *compctx.Context, stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := e.emitStatement(sb, ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// emitScopeBody emits the direct statement list of a function body or
// do-block scope. If execution can fall off the end (the last statement
// is not a `return`), this scope's own defer queue is flushed right
// there — falling through a do-block does not exit any enclosing scope,
// so only the current scope's queue replays.
func (e *Emitter) emitScopeBody(sb *strings.Builder, ctx *compctx.Context, stmts []ast.Statement) error {
	if err := e.emitStatements(sb, ctx, stmts); err != nil {
		return err
	}
	if len(stmts) == 0 {
		e.flushOwnDefers(sb, ctx)
		return nil
	}
	if _, isReturn := stmts[len(stmts)-1].(*ast.ReturnStatement); !isReturn {
		e.flushOwnDefers(sb, ctx)
	}
	return nil
}

func (e *Emitter) flushOwnDefers(sb *strings.Builder, ctx *compctx.Context) {
	for _, q := range ctx.DeferQueue() {
		_ = e.emitStatement(sb, ctx, q)
	}
}

// flushAllDefers emits the current scope's defer queue, then every
// enclosing open scope's within the same function, innermost first — used
// at a `return` statement, which exits every scope between itself and the
// enclosing function (spec.md §3 invariant 3). Queues are replayed, not
// cleared: a function with multiple reachable exits replays the same
// deferred statement at each one it can reach.
func (e *Emitter) flushAllDefers(sb *strings.Builder, ctx *compctx.Context) {
	e.flushOwnDefers(sb, ctx)
	for i := len(e.scopes) - 1; i >= 0; i-- {
		for _, q := range e.scopes[i].DeferQueue() {
			_ = e.emitStatement(sb, ctx, q)
		}
	}
}

// pushScope opens a new lexical scope (function body / do-block / do-as-
// expression), per spec.md §3 invariant 1.
func (e *Emitter) pushScope(ctx *compctx.Context) *compctx.Context {
	child := ctx.Scope()
	e.scopes = append(e.scopes, ctx)
	return child
}

func (e *Emitter) popScope() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}
