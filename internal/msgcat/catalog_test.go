package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaultsLoad(t *testing.T) {
	cat, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := cat.Render("error.invalid_move", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got == "" {
		t.Fatal("embedded default rendered empty")
	}
}

func TestRenderWithData(t *testing.T) {
	cat, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := cat.Render("notice.you_won", map[string]string{"Reason": "checkmate"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "you won by checkmate" {
		t.Fatalf("rendered %q", got)
	}
}

func TestUnknownKey(t *testing.T) {
	cat, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := cat.Render("no.such.key", nil); err == nil {
		t.Fatal("unknown key should error")
	}
	if got := cat.Text("no.such.key", nil); got != "no.such.key" {
		t.Fatalf("Text fallback = %q, want the key", got)
	}
}

func TestOverrideDirWins(t *testing.T) {
	dir := t.TempDir()
	override := "error:\n  invalid_move: \"that move is not allowed\"\n"
	if err := os.WriteFile(filepath.Join(dir, "messages.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	cat, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := cat.Text("error.invalid_move", nil); got != "that move is not allowed" {
		t.Fatalf("override not applied, got %q", got)
	}
	// untouched keys keep their embedded defaults
	if got := cat.Text("error.game_not_found", nil); got == "" {
		t.Fatal("default lost after override")
	}
}
