package diag

import (
	"strings"
	"testing"

	"github.com/complua/complua/internal/token"
)

func TestDiagnostic_Error(t *testing.T) {
	d := New("foo.lua", token.Position{Line: 7, Column: 3}, "unexpected %s", "token")
	want := "complua: foo.lua:7: unexpected token"
	if got := d.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDiagnostic_Format_PointsAtColumn(t *testing.T) {
	d := New("foo.lua", token.Position{Line: 2, Column: 5}, "bad thing")
	source := "local x = 1\nlocal y == 2\n"
	out := d.Format(source)

	if !strings.Contains(out, "Error in foo.lua:2:5") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "local y == 2") {
		t.Fatalf("missing source line: %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("missing caret: %q", out)
	}
	if !strings.Contains(out, "bad thing") {
		t.Fatalf("missing message: %q", out)
	}
}

func TestFromInterpreterStderr_MapsThroughNearestMarker(t *testing.T) {
	scratch := []string{
		"--LINE:10",
		"local a = 1",
		"--LINE:11",
		"local b = a + nil",
	}
	stderr := "luajit: scratch.lua:4: attempt to perform arithmetic on a nil value"
	got := FromInterpreterStderr("foo.lua", stderr, scratch, token.Position{Line: 1})

	if got.Pos.Line != 11 {
		t.Fatalf("got line %d, want 11", got.Pos.Line)
	}
	if got.Message != "attempt to perform arithmetic on a nil value" {
		t.Fatalf("got message %q", got.Message)
	}
}

func TestFromInterpreterStderr_FallsBackWhenUnrecognized(t *testing.T) {
	fallback := token.Position{Line: 42}
	got := FromInterpreterStderr("foo.lua", "some unrelated crash output", nil, fallback)
	if got.Pos != fallback {
		t.Fatalf("got pos %#v, want fallback %#v", got.Pos, fallback)
	}
	if got.Message != "some unrelated crash output" {
		t.Fatalf("got message %q", got.Message)
	}
}

func TestFromInterpreterStderr_FallsBackWhenNoMarkerFound(t *testing.T) {
	scratch := []string{"local a = 1", "local b = a + nil"}
	fallback := token.Position{Line: 9}
	stderr := "luajit: scratch.lua:2: attempt to perform arithmetic on a nil value"
	got := FromInterpreterStderr("foo.lua", stderr, scratch, fallback)
	if got.Pos != fallback {
		t.Fatalf("got pos %#v, want fallback %#v", got.Pos, fallback)
	}
}
