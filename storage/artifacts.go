package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// timestampLayout matches the {source}_{kind}_{timestamp} artifact naming.
const timestampLayout = "20060102_150405"

// Timestamp formats t for artifact file names. Every artifact of one
// request shares a single timestamp so the trio is easy to correlate.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// Writer persists scrape artifacts (screenshot, HTML, JSON) under a
// single output directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed and returns a writer
// rooted there.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the directory artifacts are written under.
func (w *Writer) Dir() string {
	return w.dir
}

func (w *Writer) path(source, kind, ext string, ts time.Time) string {
	name := fmt.Sprintf("%s_%s_%s.%s", source, kind, Timestamp(ts), ext)
	return filepath.Join(w.dir, name)
}

// WriteBytes persists a binary artifact and returns its path.
func (w *Writer) WriteBytes(source, kind, ext string, ts time.Time, data []byte) (string, error) {
	p := w.path(source, kind, ext, ts)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", p, err)
	}
	return p, nil
}

// WriteText persists a text artifact and returns its path.
func (w *Writer) WriteText(source, kind, ext string, ts time.Time, text string) (string, error) {
	return w.WriteBytes(source, kind, ext, ts, []byte(text))
}

// WriteJSON marshals v with indentation and persists it, returning the
// path.
func (w *Writer) WriteJSON(source, kind string, ts time.Time, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal artifact json: %w", err)
	}
	return w.WriteBytes(source, kind, "json", ts, data)
}
