package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveWritesUnderBase(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	loc, err := s.Save(context.Background(), "tenant/month/caja.xlsx", strings.NewReader("datos"), 5, "application/octet-stream")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if loc != "tenant/month/caja.xlsx" {
		t.Fatalf("unexpected location %q", loc)
	}
	b, err := os.ReadFile(filepath.Join(dir, loc))
	if err != nil || string(b) != "datos" {
		t.Fatalf("read back: %q %v", b, err)
	}
}

func TestSaveStaysInsideBase(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	loc, err := s.Save(context.Background(), "../../escape.txt", strings.NewReader("x"), 1, "text/plain")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); err != nil || loc != "escape.txt" {
		t.Fatalf("file should land inside base, loc=%q err=%v", loc, err)
	}
}
