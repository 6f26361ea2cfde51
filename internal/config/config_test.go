package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FindsFileInStartDir(t *testing.T) {
	dir := t.TempDir()
	data := "output: build/out.luac\ndebug: true\ninterpreter: lua5.1\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "build/out.luac" || !cfg.Debug || cfg.Interpreter != "lua5.1" {
		t.Fatalf("got %#v", cfg)
	}
}

func TestLoad_WalksUpward(t *testing.T) {
	root := t.TempDir()
	data := "interpreter: luajit-2.1\n"
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Interpreter != "luajit-2.1" {
		t.Fatalf("got %#v, want config from ancestor directory", cfg)
	}
}

func TestLoad_NoFileReturnsZeroValue(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != (Config{}) {
		t.Fatalf("got %#v, want zero value", cfg)
	}
}
