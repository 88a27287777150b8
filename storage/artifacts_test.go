package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriter_Naming(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	ts := time.Date(2025, 8, 25, 14, 30, 5, 0, time.UTC)
	path, err := w.WriteText("www_nseindia_com", "quote", "html", ts, "<html></html>")
	if err != nil {
		t.Fatalf("WriteText: %v", err)
	}

	want := "www_nseindia_com_quote_20250825_143005.html"
	if filepath.Base(path) != want {
		t.Errorf("artifact name = %q, want %q", filepath.Base(path), want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("artifact content = %q", data)
	}
}

func TestWriter_SharedTimestampCorrelates(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	ts := time.Now()
	png, _ := w.WriteBytes("src", "quote", "png", ts, []byte{1})
	html, _ := w.WriteText("src", "quote", "html", ts, "x")

	if Timestamp(ts) == "" {
		t.Fatal("empty timestamp")
	}
	wantPrefix := "src_quote_" + Timestamp(ts)
	for _, p := range []string{png, html} {
		base := filepath.Base(p)
		if len(base) < len(wantPrefix) || base[:len(wantPrefix)] != wantPrefix {
			t.Errorf("artifact %q does not share timestamp prefix %q", base, wantPrefix)
		}
	}
}

func TestWriter_JSON(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	path, err := w.WriteJSON("src", "quote", time.Now(), map[string]string{"open": "1,534.00"})
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if decoded["open"] != "1,534.00" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestNewWriter_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := NewWriter(dir); err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("output directory not created: %v", err)
	}
}
