package cli

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/palettesniffer/internal/colour"
)

func TestClassifyInput(t *testing.T) {
	dir := t.TempDir()
	noExt := filepath.Join(dir, "screenshot")
	if err := os.WriteFile(noExt, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"wallpaper.jpg", inputImage},
		{"https://cdn.example.com/logo.PNG", inputImage},
		{noExt, inputImage},
		{"example.com", inputURL},
		{"https://github.com", inputURL},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := classifyInput(tt.input); got != tt.want {
				t.Errorf("classifyInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("inner/c.webp")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("webp-bytes")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	zipPath := filepath.Join(t.TempDir(), "set.zip")
	if err := os.WriteFile(zipPath, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := expandInputs([]string{dir, zipPath, "example.com"})
	if err != nil {
		t.Fatalf("expandInputs() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expandInputs() returned %d inputs, want two images, one archive member and one URL", len(got))
	}
	if got[0].Data != nil || got[1].Data != nil {
		t.Error("directory images should be read lazily")
	}
	if got[2].Name != zipPath+":inner/c.webp" || string(got[2].Data) != "webp-bytes" {
		t.Errorf("archive member = %s %q", got[2].Name, got[2].Data)
	}
	if got[3].Name != "example.com" {
		t.Errorf("last input = %q, want example.com", got[3].Name)
	}

	empty := t.TempDir()
	if _, err := expandInputs([]string{empty}); err == nil {
		t.Error("expected an error for a directory without images")
	}
}

func TestRenderBatchTable(t *testing.T) {
	red, _ := colour.RecordFromHex("#ff0000", 0.6)
	results := []batchResult{
		{
			Input:   "example.com",
			Type:    inputURL,
			Source:  "css-analysis",
			Palette: &colour.Palette{Dominant: []colour.ColorRecord{red}},
			Elapsed: 1500 * time.Microsecond,
		},
		{
			Input: "broken.png",
			Type:  inputImage,
			Error: errors.New("failed to load image").Error(),
		},
	}

	out := newBatchTable(results).Render()
	for _, want := range []string{"Input", "css-analysis", "#ff0000", "2ms", "failed to load image"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
