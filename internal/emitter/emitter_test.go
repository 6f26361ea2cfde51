package emitter

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/compctx"
	"github.com/complua/complua/internal/token"
)

// fakeEvaluator stubs compile-time evaluation so emitter tests never shell
// out to a real interpreter: Eval/EvalConstString/CheckCall just return
// canned values, optionally recording the call for assertion.
type fakeEvaluator struct {
	evalFrag   string
	evalErr    error
	constStr   string
	calls      []string
}

func (f *fakeEvaluator) Eval(ctx *compctx.Context, file string, expr ast.Expression, pos token.Position) (string, error) {
	f.calls = append(f.calls, "eval")
	return f.evalFrag, f.evalErr
}

func (f *fakeEvaluator) EvalConstString(ctx *compctx.Context, file string, expr ast.Expression, pos token.Position) (string, error) {
	f.calls = append(f.calls, "load")
	return f.constStr, nil
}

func (f *fakeEvaluator) CheckCall(ctx *compctx.Context, file string, cc *ast.CheckCallStatement, args []ast.Expression, pos token.Position) error {
	f.calls = append(f.calls, "checkcall")
	return nil
}

func noopParse(src string) ([]ast.Statement, error) { return nil, nil }

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func emit(t *testing.T, ev *fakeEvaluator, debug bool, stmts []ast.Statement) string {
	t.Helper()
	e := New("test.lua", ev, noopParse)
	ctx := compctx.New(debug)
	out, err := e.EmitProgram(&ast.Program{Statements: stmts}, ctx)
	if err != nil {
		t.Fatalf("EmitProgram: %v", err)
	}
	return out
}

func TestEmit_LocalAndAssign(t *testing.T) {
	stmts := []ast.Statement{
		&ast.LocalDeclStatement{Names: []string{"x"}, Values: []ast.Expression{&ast.NumberLiteral{Value: "1"}}},
		&ast.AssignStatement{Targets: []ast.Expression{ident("x")}, Operator: "+=", Values: []ast.Expression{&ast.NumberLiteral{Value: "2"}}},
	}
	out := emit(t, &fakeEvaluator{}, false, stmts)
	if !strings.Contains(out, "local x = 1") {
		t.Fatalf("missing local decl: %q", out)
	}
	if !strings.Contains(out, "x = x + 2") {
		t.Fatalf("expected compound assignment desugared, got %q", out)
	}
}

func TestEmit_UsingReadChain(t *testing.T) {
	stmts := []ast.Statement{
		&ast.UsingStatement{Prefix: ident("ns")},
		&ast.ExpressionStatement{Expr: ident("foo")},
	}
	out := emit(t, &fakeEvaluator{}, false, stmts)
	if !strings.Contains(out, "(ns.foo ~= nil and ns.foo or foo)") {
		t.Fatalf("missing using read chain: %q", out)
	}
}

func TestEmit_UsingWrite(t *testing.T) {
	stmts := []ast.Statement{
		&ast.UsingStatement{Prefix: ident("ns")},
		&ast.AssignStatement{Targets: []ast.Expression{ident("foo")}, Operator: "=", Values: []ast.Expression{&ast.NumberLiteral{Value: "1"}}},
	}
	out := emit(t, &fakeEvaluator{}, false, stmts)
	if !strings.Contains(out, `__complua_using_write({ns}, "foo", 1, function(v) foo = v end)`) {
		t.Fatalf("missing using write call: %q", out)
	}
}

func TestEmit_InlineFunctionExpandsAtCallSite(t *testing.T) {
	stmts := []ast.Statement{
		&ast.InlineFunctionStatement{
			Name:   "sq",
			Params: []string{"x"},
			Body:   []ast.Statement{&ast.ReturnStatement{Values: []ast.Expression{&ast.BinaryExpression{Left: ident("x"), Operator: "*", Right: ident("x")}}}},
		},
		&ast.ExpressionStatement{Expr: &ast.CallExpression{Callee: ident("sq"), Args: []ast.Expression{&ast.NumberLiteral{Value: "3"}}}},
	}
	out := emit(t, &fakeEvaluator{}, false, stmts)
	if strings.Contains(out, "sq(3)") {
		t.Fatalf("inline call should not remain a plain call: %q", out)
	}
	if !strings.Contains(out, "3 * 3") {
		t.Fatalf("expected the inlined body substituted with the argument, got %q", out)
	}
}

func TestEmit_DeferFlushesAtReturn(t *testing.T) {
	stmts := []ast.Statement{
		&ast.FunctionDeclStatement{
			Name: "f",
			Body: []ast.Statement{
				&ast.DeferStatement{Stmt: &ast.ExpressionStatement{Expr: &ast.CallExpression{Callee: ident("cleanup")}}},
				&ast.ReturnStatement{Values: []ast.Expression{&ast.NumberLiteral{Value: "1"}}},
			},
		},
	}
	out := emit(t, &fakeEvaluator{}, false, stmts)
	retIdx := strings.Index(out, "return ")
	cleanupIdx := strings.Index(out, "cleanup()")
	if retIdx == -1 || cleanupIdx == -1 {
		t.Fatalf("missing return or deferred call: %q", out)
	}
	if cleanupIdx > retIdx {
		t.Fatalf("deferred call must be emitted before the return, got %q", out)
	}
}

func TestEmit_AssertDiscardsFragmentButStillEvaluates(t *testing.T) {
	ev := &fakeEvaluator{evalFrag: "true"}
	stmts := []ast.Statement{
		&ast.AssertStatement{Expr: &ast.BinaryExpression{Left: &ast.NumberLiteral{Value: "1"}, Operator: ">", Right: &ast.NumberLiteral{Value: "0"}}},
	}
	out := emit(t, ev, false, stmts)
	if strings.Contains(out, "true") {
		t.Fatalf("assert must not splice the eval fragment into output: %q", out)
	}
	if len(ev.calls) != 1 || ev.calls[0] != "eval" {
		t.Fatalf("expected exactly one compile-time eval call, got %v", ev.calls)
	}
}

func TestEmit_DebugGatedOnFlag(t *testing.T) {
	stmt := &ast.DebugStatement{Msg: &ast.StringLiteral{Value: "x=%d"}, Args: []ast.Expression{ident("x")}}

	ev := &fakeEvaluator{evalFrag: `print(string.format("x=%d", x))`}
	off := emit(t, ev, false, []ast.Statement{stmt})
	if len(ev.calls) != 0 {
		t.Fatalf("debug off: compile-time eval should not run, got %v calls", ev.calls)
	}
	if strings.TrimSpace(off) != "" {
		t.Fatalf("debug off: expected no emitted code, got %q", off)
	}

	ev2 := &fakeEvaluator{evalFrag: `print(string.format("x=%d", x))`}
	on := emit(t, ev2, true, []ast.Statement{stmt})
	if len(ev2.calls) != 1 {
		t.Fatalf("debug on: expected one compile-time eval call, got %v", ev2.calls)
	}
	if !strings.Contains(on, "print(string.format") {
		t.Fatalf("debug on: expected the eval fragment spliced in, got %q", on)
	}
}

func TestEmit_EvalExprSplicesFragment(t *testing.T) {
	ev := &fakeEvaluator{evalFrag: "42"}
	stmts := []ast.Statement{
		&ast.LocalDeclStatement{Names: []string{"x"}, Values: []ast.Expression{&ast.EvalExpr{Expr: &ast.NumberLiteral{Value: "1"}}}},
	}
	out := emit(t, ev, false, stmts)
	if !strings.Contains(out, "local x = 42") {
		t.Fatalf("expected the eval fragment spliced in, got %q", out)
	}
}

// Snapshot coverage for full-program emission shapes, per SPEC_FULL.md §3's
// go-snaps wiring. A fakeEvaluator keeps these from shelling out to a real
// interpreter.

func TestEmitSnapshot_InlineAndDefer(t *testing.T) {
	stmts := []ast.Statement{
		&ast.InlineFunctionStatement{
			Name:   "sq",
			Params: []string{"x"},
			Body:   []ast.Statement{&ast.ReturnStatement{Values: []ast.Expression{&ast.BinaryExpression{Left: ident("x"), Operator: "*", Right: ident("x")}}}},
		},
		&ast.FunctionDeclStatement{
			Name: "f",
			Body: []ast.Statement{
				&ast.DeferStatement{Stmt: &ast.ExpressionStatement{Expr: &ast.CallExpression{Callee: ident("cleanup")}}},
				&ast.LocalDeclStatement{Names: []string{"y"}, Values: []ast.Expression{&ast.CallExpression{Callee: ident("sq"), Args: []ast.Expression{&ast.NumberLiteral{Value: "4"}}}}},
				&ast.ReturnStatement{Values: []ast.Expression{ident("y")}},
			},
		},
	}
	out := emit(t, &fakeEvaluator{}, false, stmts)
	snaps.MatchSnapshot(t, out)
}

func TestEmitSnapshot_UsingReadAndWrite(t *testing.T) {
	stmts := []ast.Statement{
		&ast.UsingStatement{Prefix: ident("ns")},
		&ast.LocalDeclStatement{Names: []string{"v"}, Values: []ast.Expression{ident("foo")}},
		&ast.AssignStatement{Targets: []ast.Expression{ident("foo")}, Operator: "=", Values: []ast.Expression{&ast.NumberLiteral{Value: "1"}}},
	}
	out := emit(t, &fakeEvaluator{}, false, stmts)
	snaps.MatchSnapshot(t, out)
}
