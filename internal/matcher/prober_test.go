package matcher

import (
	"os"
	"path/filepath"
	"testing"
)

// writeAudioFile creates an empty file with the given name under dir,
// creating intermediate directories as needed.
func writeAudioFile(t *testing.T, dir, name string) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directories: %v", err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestProbe(t *testing.T) {
	t.Run("finds a matching file", func(t *testing.T) {
		dir := t.TempDir()
		writeAudioFile(t, dir, "queen - bohemian rhapsody.flac")

		p := NewProber(dir, 0)
		if !p.Probe("Bohemian Rhapsody", "Queen") {
			t.Error("expected probe hit")
		}
	})

	t.Run("searches nested directories", func(t *testing.T) {
		dir := t.TempDir()
		writeAudioFile(t, dir, filepath.Join("albums", "1975", "queen - bohemian rhapsody.mp3"))

		p := NewProber(dir, 0)
		if !p.Probe("Bohemian Rhapsody", "Queen") {
			t.Error("expected probe hit in nested directory")
		}
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		dir := t.TempDir()
		writeAudioFile(t, dir, "QUEEN - BOHEMIAN RHAPSODY.MP3")

		p := NewProber(dir, 0)
		if !p.Probe("bohemian rhapsody", "queen") {
			t.Error("expected case-insensitive hit")
		}
	})

	t.Run("ignores non-audio files", func(t *testing.T) {
		dir := t.TempDir()
		writeAudioFile(t, dir, "queen - bohemian rhapsody.txt")

		p := NewProber(dir, 0)
		if p.Probe("Bohemian Rhapsody", "Queen") {
			t.Error("expected miss for non-audio extension")
		}
	})

	t.Run("artist must also appear when given", func(t *testing.T) {
		dir := t.TempDir()
		writeAudioFile(t, dir, "some cover band - bohemian rhapsody.mp3")

		p := NewProber(dir, 0)
		if p.Probe("Bohemian Rhapsody", "Queen") {
			t.Error("expected miss when the artist fragment is absent")
		}
		if !p.Probe("Bohemian Rhapsody", "") {
			t.Error("expected title-only hit with empty artist")
		}
	})

	t.Run("path-hostile characters are stripped from fragments", func(t *testing.T) {
		dir := t.TempDir()
		writeAudioFile(t, dir, "acdc - whole lotta rosie.m4a")

		p := NewProber(dir, 0)
		if !p.Probe("Whole Lotta Ros", "AC/DC") {
			t.Error("expected hit with slash stripped from artist")
		}
	})

	t.Run("missing base path reports a miss", func(t *testing.T) {
		p := NewProber(filepath.Join(t.TempDir(), "does-not-exist"), 0)
		if p.Probe("Anything", "Anyone") {
			t.Error("expected miss for absent base path")
		}
	})

	t.Run("empty title reports a miss", func(t *testing.T) {
		dir := t.TempDir()
		writeAudioFile(t, dir, "queen - bohemian rhapsody.mp3")

		p := NewProber(dir, 0)
		if p.Probe("", "Queen") {
			t.Error("expected miss for empty title")
		}
	})
}

func TestSearchFragment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases and trims", "  Hello World  ", "hello world"},
		{"strips path-hostile characters", `AC/DC: "Back"`, "acdc back"},
		{"truncates long input", "a very long track title indeed", "a very long tra"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchFragment(tt.input); got != tt.expected {
				t.Errorf("searchFragment(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
