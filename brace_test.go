package brace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greeting.html")
	if err := os.WriteFile(path, []byte("Hello {name}!"), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	tmpl, err := CompileFile(path)
	if err != nil {
		t.Fatalf("CompileFile error: %v", err)
	}
	if tmpl.Name() != "greeting" {
		t.Fatalf("expected name 'greeting', got %q", tmpl.Name())
	}

	output, err := tmpl.Render(map[string]interface{}{"name": "Go"})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	if output != "Hello Go!" {
		t.Fatalf("expected 'Hello Go!', got %q", output)
	}
}

func TestCompileFileMissing(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "nope.html"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !IsErrorType(err, "template_error") {
		t.Fatalf("expected template_error, got %v", err)
	}
}

func TestCompileShortcut(t *testing.T) {
	tmpl, err := Compile("", "{#if ok}yes{else}no{/if}")
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	output, err := tmpl.Render(map[string]interface{}{"ok": false})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if output != "no" {
		t.Fatalf("expected 'no', got %q", output)
	}
}
