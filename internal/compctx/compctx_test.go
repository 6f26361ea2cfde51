package compctx

import (
	"testing"

	"github.com/complua/complua/internal/ast"
)

func TestBind_ShadowsAndDeregisters(t *testing.T) {
	ctx := New(false)
	def1 := &ast.LocalDeclStatement{Names: []string{"x"}}
	ctx.Bind("x", def1)

	ctx.RegisterInline(&ast.InlineFunctionStatement{Name: "x"})
	if _, ok := ctx.Inline("x"); !ok {
		t.Fatal("expected inline to be registered")
	}

	def2 := &ast.LocalDeclStatement{Names: []string{"x"}}
	ctx.Bind("x", def2)

	if _, ok := ctx.Inline("x"); ok {
		t.Fatal("binding x should have deregistered the inline")
	}
	b, ok := ctx.Lookup("x")
	if !ok || b.Def != ast.Node(def2) {
		t.Fatalf("Lookup should return the latest binding, got %#v", b)
	}
}

func TestScope_ClonesBindingsAndUsingButResetsDefer(t *testing.T) {
	parent := New(false)
	parent.Bind("a", &ast.LocalDeclStatement{Names: []string{"a"}})
	parent.PushUsing(&ast.Identifier{Name: "ns"})
	parent.PushDefer(&ast.ExpressionStatement{})

	child := parent.Scope()
	child.Bind("b", &ast.LocalDeclStatement{Names: []string{"b"}})
	child.PushDefer(&ast.ExpressionStatement{})

	if _, ok := parent.Lookup("b"); ok {
		t.Fatal("child binding leaked into parent")
	}
	if _, ok := child.Lookup("a"); !ok {
		t.Fatal("child should inherit parent's bindings")
	}
	if len(parent.DeferQueue()) != 1 {
		t.Fatalf("parent defer queue mutated: got %d", len(parent.DeferQueue()))
	}
	if len(child.DeferQueue()) != 1 {
		t.Fatalf("child's own scope gets a fresh defer queue: got %d", len(child.DeferQueue()))
	}
	if len(child.UsingStack()) != 1 {
		t.Fatalf("child should inherit using stack: got %d", len(child.UsingStack()))
	}
}

func TestScope_InlineCheckCallRegistriesShared(t *testing.T) {
	parent := New(false)
	parent.RegisterInline(&ast.InlineFunctionStatement{Name: "sq"})
	child := parent.Scope()

	if _, ok := child.Inline("sq"); !ok {
		t.Fatal("inline registry should be shared across scopes")
	}

	child.RegisterInline(&ast.InlineFunctionStatement{Name: "cube"})
	if _, ok := parent.Inline("cube"); !ok {
		t.Fatal("inline registry is a shared map, registering in child must be visible to parent")
	}
}

func TestAssignsFor_OrderedByName(t *testing.T) {
	ctx := New(false)
	s1 := &ast.AssignStatement{}
	s2 := &ast.AssignStatement{}
	ctx.RecordAssign("x", s1, nil)
	ctx.RecordAssign("y", &ast.AssignStatement{}, nil)
	ctx.RecordAssign("x", s2, nil)

	got := ctx.AssignsFor("x")
	if len(got) != 2 || got[0].Stmt != ast.Statement(s1) || got[1].Stmt != ast.Statement(s2) {
		t.Fatalf("got %#v", got)
	}
}

func TestCheckCall_RegisterAndDeregister(t *testing.T) {
	ctx := New(false)
	cc := &ast.CheckCallStatement{Name: "validate"}
	ctx.RegisterCheckCall(cc)
	if _, ok := ctx.CheckCall("validate"); !ok {
		t.Fatal("expected checkcall to be registered")
	}
	ctx.Bind("validate", &ast.LocalDeclStatement{Names: []string{"validate"}})
	if _, ok := ctx.CheckCall("validate"); ok {
		t.Fatal("binding should deregister the checkcall")
	}
}

func TestWithUsingStack_DoesNotMutateParent(t *testing.T) {
	ctx := New(false)
	ctx.PushUsing(&ast.Identifier{Name: "ns"})

	plain := ctx.WithUsingStack(nil)
	if len(plain.UsingStack()) != 0 {
		t.Fatalf("expected an empty using stack, got %d entries", len(plain.UsingStack()))
	}
	if len(ctx.UsingStack()) != 1 {
		t.Fatal("WithUsingStack must not mutate the receiver")
	}
}
