// Package deps implements the dependency tracker (spec.md §4.3): for any
// AST node, recover the chain of declarations that every free identifier
// inside it transitively depends on, in declaration order.
//
// Grounded on mna-nenuphar/lang/resolver's identifier-to-binding walk (the
// closest pack analogue to free-variable resolution over an AST),
// adapted: that resolver classifies bindings (local/free/cell) for a
// closure-capturing bytecode compiler; this tracker instead collects the
// transitive *definitions* of each free identifier so they can be
// replayed as plain-dialect source ahead of a compile-time expression.
// Cycle detection is intentionally absent (spec.md §4.3).
package deps

import (
	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/compctx"
)

// Chain returns the transitive dependency chain of node: every AST
// subtree that defines an identifier node references, in declaration
// order, followed (for each name with a reassignment history) by the
// chain of each intervening reassignment. Each node appears at most once:
// a node already added to the chain is skipped when it is reached again.
func Chain(node ast.Node, ctx *compctx.Context) []ast.Node {
	t := &tracker{ctx: ctx, seen: map[ast.Node]bool{}}
	t.walk(node)
	return t.out
}

type tracker struct {
	ctx  *compctx.Context
	out  []ast.Node
	seen map[ast.Node]bool
}

func (t *tracker) walk(node ast.Node) {
	switch n := node.(type) {
	case nil:
		return
	case *ast.Identifier:
		t.resolve(n.Name)
	case *ast.UnaryExpression:
		t.walk(n.Operand)
	case *ast.BinaryExpression:
		t.walk(n.Left)
		t.walk(n.Right)
	case *ast.PropertyAccess:
		t.walk(n.Object)
	case *ast.IndexExpression:
		t.walk(n.Object)
		t.walk(n.Index)
	case *ast.CallExpression:
		t.walk(n.Callee)
		t.walkExprs(n.Args)
	case *ast.MethodCallExpression:
		t.walk(n.Object)
		t.walkExprs(n.Args)
	case *ast.ParenExpression:
		t.walk(n.Inner)
	case *ast.TableConstructor:
		for _, f := range n.Fields {
			t.walk(f.Key)
			t.walk(f.Value)
		}
	case *ast.FunctionLiteral:
		t.walkStmts(n.Body)
	case *ast.EvalExpr:
		t.walk(n.Expr)
	case *ast.LoadExpr:
		t.walk(n.Expr)
	case *ast.ReprExpr:
		t.walk(n.Expr)
	case *ast.DoExpr:
		t.walkStmts(n.Body)
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BooleanLiteral, *ast.NilLiteral, *ast.Varargs:
		return
	}
}

func (t *tracker) walkExprs(exprs []ast.Expression) {
	for _, e := range exprs {
		t.walk(e)
	}
}

func (t *tracker) walkStmts(stmts []ast.Statement) {
	for _, s := range stmts {
		t.walkStmt(s)
	}
}

func (t *tracker) walkStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.LocalDeclStatement:
		t.walkExprs(n.Values)
	case *ast.AssignStatement:
		t.walkExprs(n.Values)
	case *ast.ExpressionStatement:
		t.walk(n.Expr)
	case *ast.ReturnStatement:
		t.walkExprs(n.Values)
	case *ast.IfStatement:
		for _, c := range n.Clauses {
			t.walk(c.Condition)
			t.walkStmts(c.Body)
		}
		t.walkStmts(n.ElseBody)
	case *ast.WhileStatement:
		t.walk(n.Condition)
		t.walkStmts(n.Body)
	case *ast.NumericForStatement:
		t.walk(n.Start)
		t.walk(n.Stop)
		t.walk(n.Step)
		t.walkStmts(n.Body)
	case *ast.IteratorForStatement:
		t.walkExprs(n.Exprs)
		t.walkStmts(n.Body)
	case *ast.DoStatement:
		t.walkStmts(n.Body)
	}
}

// walkDef walks the free variables referenced by a binding's own defining
// node. Bindings are always Statements (local/function/for-loop headers,
// spec.md §3), so this does not go through walk, which only dispatches on
// Expression node types.
func (t *tracker) walkDef(def ast.Node) {
	switch n := def.(type) {
	case *ast.LocalDeclStatement:
		t.walkExprs(n.Values)
	case *ast.AssignStatement:
		t.walkExprs(n.Values)
	case *ast.FunctionDeclStatement:
		t.walkStmts(n.Body)
	case *ast.NumericForStatement:
		t.walk(n.Start)
		t.walk(n.Stop)
		t.walk(n.Step)
	case *ast.IteratorForStatement:
		t.walkExprs(n.Exprs)
	}
}

// resolve appends the definition chain for name: first its recursively
// expanded original definition, then each reassignment's own recorded
// dependency chain, in order — the "approximate" replay strategy spec.md
// §9 calls out as an open question, resolved here in favour of replaying
// both (see SPEC_FULL.md §5.1 and DESIGN.md).
func (t *tracker) resolve(name string) {
	b, ok := t.ctx.Lookup(name)
	if !ok {
		return // unresolved; spec.md §7 surfaces this as an interpreter runtime error, not a tracker error
	}

	if !t.seen[b.Def] {
		t.seen[b.Def] = true
		t.walkDef(b.Def)
		t.out = append(t.out, b.Def)
	}

	for _, a := range t.ctx.AssignsFor(name) {
		for _, dep := range a.Chain {
			if !t.seen[dep] {
				t.seen[dep] = true
				t.out = append(t.out, dep)
			}
		}
		if !t.seen[a.Stmt] {
			t.seen[a.Stmt] = true
			t.out = append(t.out, a.Stmt)
		}
	}
}
