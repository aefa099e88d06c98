package extract

import (
	"strings"
	"testing"
)

func TestTextPlainFormats(t *testing.T) {
	got, err := Text(strings.NewReader("  # Notes\nOsmosis is diffusion of water.\n"), "notes.md")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "# Notes\nOsmosis is diffusion of water." {
		t.Fatalf("got %q", got)
	}
}

func TestTextBinaryFallsBackToPlaceholder(t *testing.T) {
	got, err := Text(strings.NewReader("%PDF-1.4 ..."), "chapter1.pdf")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "[Content from file: chapter1.pdf]" {
		t.Fatalf("got %q", got)
	}
}

func TestTextInvalidUTF8(t *testing.T) {
	got, err := Text(strings.NewReader("ok\xff\xfe"), "notes.txt")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.HasPrefix(got, "[Content from file:") {
		t.Fatalf("invalid utf-8 should fall back to placeholder, got %q", got)
	}
}
