package emitter

import (
	"fmt"
	"strings"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/compctx"
)

// RenderChain renders a dependency chain (internal/deps.Chain's output) as
// plain-dialect source, one declaration per line, for splicing ahead of a
// compile-time expression (spec.md §4.4 step 1). Every chain entry is a
// Statement — deps.Chain only ever collects binding-defining nodes.
func (e *Emitter) RenderChain(ctx *compctx.Context, chain []ast.Node) (string, error) {
	var sb strings.Builder
	for _, node := range chain {
		stmt, ok := node.(ast.Statement)
		if !ok {
			return "", fmt.Errorf("emitter: dependency chain entry %T is not a statement", node)
		}
		if err := e.emitStatement(&sb, ctx, stmt); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// RenderExpr renders a single expression as plain-dialect source, with no
// surrounding statement or line marker.
func (e *Emitter) RenderExpr(ctx *compctx.Context, expr ast.Expression) (string, error) {
	var sb strings.Builder
	if err := e.emitExpr(&sb, ctx, expr); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderStatements renders a flat statement list as it stands: it opens no
// scope and applies no fallthrough defer handling.
func (e *Emitter) RenderStatements(ctx *compctx.Context, stmts []ast.Statement) (string, error) {
	var sb strings.Builder
	if err := e.emitStatements(&sb, ctx, stmts); err != nil {
		return "", err
	}
	return sb.String(), nil
}
