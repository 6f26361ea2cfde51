package parser

import (
	"testing"

	"github.com/complua/complua/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestParse_LocalAndAssign(t *testing.T) {
	prog := mustParse(t, `local x = 1
x += 2`)

	if len(prog.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.LocalDeclStatement)
	if !ok || decl.Names[0] != "x" {
		t.Fatalf("statement 0 = %#v", prog.Statements[0])
	}
	assign, ok := prog.Statements[1].(*ast.AssignStatement)
	if !ok || assign.Operator != "+=" {
		t.Fatalf("statement 1 = %#v", prog.Statements[1])
	}
}

func TestParse_IfElseif(t *testing.T) {
	prog := mustParse(t, `if a then
  return 1
elseif b then
  return 2
else
  return 3
end`)
	stmt, ok := prog.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("got %T", prog.Statements[0])
	}
	if len(stmt.Clauses) != 2 {
		t.Fatalf("got %d clauses, want 2", len(stmt.Clauses))
	}
	if stmt.ElseBody == nil {
		t.Fatalf("expected else body")
	}
}

func TestParse_DirectiveStatements(t *testing.T) {
	prog := mustParse(t, `#inline function sq(x) return x*x end
local y = sq(3+1)
#defer print(y)
#using ns
#assert y > 0`)

	if _, ok := prog.Statements[0].(*ast.InlineFunctionStatement); !ok {
		t.Fatalf("statement 0 = %T", prog.Statements[0])
	}
	if _, ok := prog.Statements[2].(*ast.DeferStatement); !ok {
		t.Fatalf("statement 2 = %T", prog.Statements[2])
	}
	if _, ok := prog.Statements[3].(*ast.UsingStatement); !ok {
		t.Fatalf("statement 3 = %T", prog.Statements[3])
	}
	if _, ok := prog.Statements[4].(*ast.AssertStatement); !ok {
		t.Fatalf("statement 4 = %T", prog.Statements[4])
	}
}

func TestParse_PowerRightAssociative(t *testing.T) {
	prog := mustParse(t, `local x = 2^3^2`)
	decl := prog.Statements[0].(*ast.LocalDeclStatement)
	bin, ok := decl.Values[0].(*ast.BinaryExpression)
	if !ok || bin.Operator != "^" {
		t.Fatalf("got %#v", decl.Values[0])
	}
	rightBin, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || rightBin.Operator != "^" {
		t.Fatalf("power operator is not right-associative: %#v", bin.Right)
	}
}

func TestParse_CheckCallAndRepr(t *testing.T) {
	prog := mustParse(t, `#checkcall ascii_map(...)
  return true
end
local s = #repr x`)
	if _, ok := prog.Statements[0].(*ast.CheckCallStatement); !ok {
		t.Fatalf("statement 0 = %T", prog.Statements[0])
	}
	decl := prog.Statements[1].(*ast.LocalDeclStatement)
	if _, ok := decl.Values[0].(*ast.ReprExpr); !ok {
		t.Fatalf("got %#v", decl.Values[0])
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse(`local x = `)
	if err == nil {
		t.Fatal("expected a syntax error")
	}
}
