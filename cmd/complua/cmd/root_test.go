package cmd

import (
	"errors"
	"testing"

	"github.com/complua/complua/internal/config"
	"github.com/complua/complua/internal/diag"
	"github.com/complua/complua/internal/token"
)

func TestResolveOutput_FlagBeatsConfigBeatsDefault(t *testing.T) {
	t.Cleanup(func() { outputFlag = "" })

	outputFlag = ""
	if got := resolveOutput(config.Config{}); got != defaultOutput {
		t.Fatalf("got %q, want default %q", got, defaultOutput)
	}

	outputFlag = ""
	if got := resolveOutput(config.Config{Output: "build/out.luac"}); got != "build/out.luac" {
		t.Fatalf("got %q, want config value", got)
	}

	outputFlag = "explicit.luac"
	if got := resolveOutput(config.Config{Output: "build/out.luac"}); got != "explicit.luac" {
		t.Fatalf("got %q, want flag to win", got)
	}
}

func TestFormatFatal_DiagnosticVsPlainError(t *testing.T) {
	d := diag.New("foo.lua", token.Position{Line: 3}, "bad token")
	if got := FormatFatal(d); got != "complua: foo.lua:3: bad token" {
		t.Fatalf("got %q", got)
	}

	plain := errors.New("disk full")
	if got := FormatFatal(plain); got != "complua: disk full" {
		t.Fatalf("got %q", got)
	}
}
