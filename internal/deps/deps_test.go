package deps

import (
	"testing"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/compctx"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func TestChain_SimpleDependency(t *testing.T) {
	ctx := compctx.New(false)

	declA := &ast.LocalDeclStatement{Names: []string{"a"}, Values: []ast.Expression{&ast.NumberLiteral{Value: "1"}}}
	ctx.Bind("a", declA)

	declB := &ast.LocalDeclStatement{Names: []string{"b"}, Values: []ast.Expression{
		&ast.BinaryExpression{Left: ident("a"), Operator: "+", Right: &ast.NumberLiteral{Value: "1"}},
	}}
	ctx.Bind("b", declB)

	chain := Chain(ident("b"), ctx)
	if len(chain) != 2 {
		t.Fatalf("got %d nodes, want 2 (a's decl then b's decl): %#v", len(chain), chain)
	}
	if chain[0] != ast.Node(declA) {
		t.Fatalf("chain[0] should be a's declaration, got %#v", chain[0])
	}
	if chain[1] != ast.Node(declB) {
		t.Fatalf("chain[1] should be b's declaration, got %#v", chain[1])
	}
}

func TestChain_UnresolvedNameIsSkipped(t *testing.T) {
	ctx := compctx.New(false)
	chain := Chain(ident("undeclared"), ctx)
	if len(chain) != 0 {
		t.Fatalf("got %#v, want empty chain for an unresolved name", chain)
	}
}

func TestChain_DeduplicatesSharedDependency(t *testing.T) {
	ctx := compctx.New(false)
	declA := &ast.LocalDeclStatement{Names: []string{"a"}, Values: []ast.Expression{&ast.NumberLiteral{Value: "1"}}}
	ctx.Bind("a", declA)

	// "a + a" must not produce two copies of a's declaration.
	expr := &ast.BinaryExpression{Left: ident("a"), Operator: "+", Right: ident("a")}
	chain := Chain(expr, ctx)
	if len(chain) != 1 {
		t.Fatalf("got %d nodes, want 1: %#v", len(chain), chain)
	}
}

func TestChain_ReassignmentReplaysAfterOriginalDeclaration(t *testing.T) {
	ctx := compctx.New(false)
	declA := &ast.LocalDeclStatement{Names: []string{"a"}, Values: []ast.Expression{&ast.NumberLiteral{Value: "1"}}}
	ctx.Bind("a", declA)

	reassign := &ast.AssignStatement{Targets: []ast.Expression{ident("a")}, Operator: "=", Values: []ast.Expression{&ast.NumberLiteral{Value: "2"}}}
	ctx.RecordAssign("a", reassign, nil)

	chain := Chain(ident("a"), ctx)
	if len(chain) != 2 {
		t.Fatalf("got %d nodes, want 2: %#v", len(chain), chain)
	}
	if chain[0] != ast.Node(declA) {
		t.Fatalf("chain[0] should be the original declaration, got %#v", chain[0])
	}
	if chain[1] != ast.Node(reassign) {
		t.Fatalf("chain[1] should be the reassignment statement, got %#v", chain[1])
	}
}

func TestChain_ReassignmentChainDependenciesComeBeforeTheStatement(t *testing.T) {
	ctx := compctx.New(false)
	declA := &ast.LocalDeclStatement{Names: []string{"a"}, Values: []ast.Expression{&ast.NumberLiteral{Value: "1"}}}
	ctx.Bind("a", declA)

	declC := &ast.LocalDeclStatement{Names: []string{"c"}, Values: []ast.Expression{&ast.NumberLiteral{Value: "3"}}}
	reassign := &ast.AssignStatement{Targets: []ast.Expression{ident("a")}, Operator: "=", Values: []ast.Expression{ident("c")}}
	ctx.RecordAssign("a", reassign, []ast.Node{declC})

	chain := Chain(ident("a"), ctx)
	want := []ast.Node{declA, declC, reassign}
	if len(chain) != len(want) {
		t.Fatalf("got %#v, want %#v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("chain[%d] = %#v, want %#v", i, chain[i], want[i])
		}
	}
}
