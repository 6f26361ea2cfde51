// Package compctx implements the mutable compilation environment threaded
// through the emitter's traversal (spec.md §3, "Compilation environment").
//
// Grounded on the teacher's internal/parser.ParseContext (a single mutable
// struct carrying flags and a snapshot/restore-able block stack), expanded
// from a parse-time context into a compile-time emission context with the
// buckets spec.md names: bindings, assigns log, defer queue, using stack,
// inline/checked-call registries, and the line-info/debug flags.
// Inline-parameter substitution is not held here: #inline expansion builds
// its own substitution map and hands it to ast.SubstituteBlock.
package compctx

import (
	"github.com/dolthub/swiss"

	"github.com/complua/complua/internal/ast"
)

// Binding is one (name, defining subtree) pair. Bindings are kept in an
// ordered slice, not a map, because later declarations shadow earlier
// ones and insertion order drives dependency replay (spec.md §3).
type Binding struct {
	Name string
	Def  ast.Node
}

// Assign records, for one reassignment, the dependency chain in effect at
// that point — used to replay a name's value at a later compile-time
// expression (spec.md §3, "Assigns log").
type Assign struct {
	Name  string
	Stmt  ast.Statement
	Chain []ast.Node
}

// Context is the mutable environment passed by reference into every emit
// step, generalizing the teacher's ParseContext to a compile-time
// emission context.
type Context struct {
	bindings []Binding
	index    *swiss.Map[string, int] // name -> latest index in bindings

	assigns []Assign

	deferQueue []ast.Statement
	usingStack []ast.Expression

	inlines    map[string]*ast.InlineFunctionStatement
	checkcalls map[string]*ast.CheckCallStatement

	LineInfo bool // whether statements emit "--LINE:n" markers
	Debug    bool // whether #debug directives expand or evaporate
}

// New returns an empty top-level Context.
func New(debug bool) *Context {
	return &Context{
		index:      swiss.NewMap[string, int](16),
		inlines:    make(map[string]*ast.InlineFunctionStatement),
		checkcalls: make(map[string]*ast.CheckCallStatement),
		LineInfo:   true,
		Debug:      debug,
	}
}

// Bind appends a new binding, shadowing any earlier binding of the same
// name and deregistering any inline/checked-call registered under it
// (spec.md §4.6: "A name is registered until a binding with the same name
// is introduced").
func (c *Context) Bind(name string, def ast.Node) {
	c.bindings = append(c.bindings, Binding{Name: name, Def: def})
	c.index.Put(name, len(c.bindings)-1)
	delete(c.inlines, name)
	delete(c.checkcalls, name)
}

// Lookup returns the most recent binding for name. It reads the latest
// index from the swiss.Map accelerator instead of rescanning the ordered
// slice; the slice itself remains the record of declaration order.
func (c *Context) Lookup(name string) (Binding, bool) {
	idx, ok := c.index.Get(name)
	if !ok {
		return Binding{}, false
	}
	return c.bindings[idx], true
}

// Bindings returns the full ordered binding slice, used by the dependency
// tracker to replay declarations in source order.
func (c *Context) Bindings() []Binding {
	return c.bindings
}

// RecordAssign appends an entry to the assigns log.
func (c *Context) RecordAssign(name string, stmt ast.Statement, chain []ast.Node) {
	c.assigns = append(c.assigns, Assign{Name: name, Stmt: stmt, Chain: chain})
}

// AssignsFor returns every recorded reassignment of name, in order.
func (c *Context) AssignsFor(name string) []Assign {
	var out []Assign
	for _, a := range c.assigns {
		if a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

// PushDefer enqueues stmt onto the current scope's defer queue (spec.md
// §4.2, "#defer").
func (c *Context) PushDefer(stmt ast.Statement) {
	c.deferQueue = append(c.deferQueue, stmt)
}

// DeferQueue returns the statements enqueued in the current scope, in
// insertion order.
func (c *Context) DeferQueue() []ast.Statement {
	return c.deferQueue
}

// PushUsing pushes prefix onto the using stack (spec.md §4.2, "#using").
func (c *Context) PushUsing(prefix ast.Expression) {
	c.usingStack = append(c.usingStack, prefix)
}

// UsingStack returns the active namespace prefixes, innermost last.
func (c *Context) UsingStack() []ast.Expression {
	return c.usingStack
}

// RegisterInline registers fn for call-site expansion (spec.md §4.2,
// "#inline").
func (c *Context) RegisterInline(fn *ast.InlineFunctionStatement) {
	c.inlines[fn.Name] = fn
}

// Inline returns the registered inline function named name, if any and if
// it has not been shadowed or deregistered since registration.
func (c *Context) Inline(name string) (*ast.InlineFunctionStatement, bool) {
	fn, ok := c.inlines[name]
	return fn, ok
}

// RegisterCheckCall registers a validator keyed by name (spec.md §4.2,
// "#checkcall").
func (c *Context) RegisterCheckCall(cc *ast.CheckCallStatement) {
	c.checkcalls[cc.Name] = cc
}

// CheckCall returns the registered validator named name, if any.
func (c *Context) CheckCall(name string) (*ast.CheckCallStatement, bool) {
	cc, ok := c.checkcalls[name]
	return cc, ok
}

// WithUsingStack returns a shallow copy of c with its using stack replaced.
// Used while emitting a "#using" prefix expression itself, which must
// resolve as a plain binding rather than be rewritten through the very
// chain it defines (spec.md §4.2 "#using").
func (c *Context) WithUsingStack(stack []ast.Expression) *Context {
	clone := c.cloneShallow()
	clone.usingStack = stack
	return clone
}

// Scope returns a child Context for a new lexical scope (function body,
// do-block, do-as-expression). Per spec.md §3 invariant 1, bindings and
// the using stack are snapshotted into independent slices, and the child
// starts with its own empty defer queue. The inline/checked-call
// registries are NOT cloned per-scope in the teacher's analogous
// ParseContext block-stack sense — they are flat and scope-global per
// spec.md §4.6, so the clone shares the same backing maps by reference.
// The assigns log slice is carried into the child as it stands; entries
// the child records afterwards are not seen by the parent.
func (c *Context) Scope() *Context {
	clone := c.cloneShallow()
	clone.bindings = append([]Binding(nil), c.bindings...)
	clone.index = cloneIndex(c.index)
	clone.deferQueue = nil
	clone.usingStack = append([]ast.Expression(nil), c.usingStack...)
	return clone
}

func (c *Context) cloneShallow() *Context {
	clone := *c
	return &clone
}

func cloneIndex(src *swiss.Map[string, int]) *swiss.Map[string, int] {
	dst := swiss.NewMap[string, int](uint32(src.Count()))
	src.Iter(func(k string, v int) bool {
		dst.Put(k, v)
		return false
	})
	return dst
}
