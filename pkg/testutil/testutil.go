// Package testutil provides testing utilities for Quarry
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// WriteCSV writes content to name under dir and returns the full path.
func WriteCSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

// WriteGzipCSV writes gzip-compressed content to name under dir and
// returns the full path. name should end in .csv.gz.
func WriteGzipCSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture %s: %v", name, err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing gzip writer for %s: %v", name, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing fixture %s: %v", name, err)
	}
	return path
}
