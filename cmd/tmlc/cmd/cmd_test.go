package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestModuleNameFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.tml", "main"},
		{"lib/core/mem.tml", "mem"},
		{"/abs/path/to/point.tml", "point"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := moduleNameFor(tt.path); got != tt.want {
			t.Errorf("moduleNameFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		path, ext, want string
	}{
		{"main.tml", ".ll", "main.ll"},
		{"lib/core/mem.tml", ".h", "lib/core/mem.h"},
		{"noext", ".ll", "noext.ll"},
	}
	for _, tt := range tests {
		if got := replaceExt(tt.path, tt.ext); got != tt.want {
			t.Errorf("replaceExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestCompileUpToBorrowSucceedsOnValidProgram(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "add.tml")
	if err := os.WriteFile(path, []byte("fn add(a: I32, b: I32) -> I32 {\n  a + b\n}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	prog, ok, err := compileUpToBorrow(path, false)
	if err != nil {
		t.Fatalf("compileUpToBorrow: %v", err)
	}
	if !ok {
		t.Fatal("expected a valid program to type-check and borrow-check cleanly")
	}
	if len(prog.file.Decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(prog.file.Decls))
	}
}

func TestCompileUpToBorrowReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.tml")
	if err := os.WriteFile(path, []byte("fn (( {\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, ok, err := compileUpToBorrow(path, false)
	if err != nil {
		t.Fatalf("compileUpToBorrow: %v", err)
	}
	if ok {
		t.Fatal("expected malformed source to fail compilation")
	}
}

func TestCompileUpToBorrowMissingFile(t *testing.T) {
	_, _, err := compileUpToBorrow(filepath.Join(t.TempDir(), "missing.tml"), false)
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
