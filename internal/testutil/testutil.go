// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by package tests: in-memory
// workspaces and quiet loggers.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
)

// WriteFiles populates fsys with path → content pairs, creating parent
// directories as needed. The test fails immediately on a write error.
func WriteFiles(t testing.TB, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// MemFS returns an in-memory filesystem holding files.
func MemFS(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	WriteFiles(t, fsys, files)
	return fsys
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
