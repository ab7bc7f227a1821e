// Package testutils holds fixtures shared by package tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

// CreateFilesWithContent writes each name to dir with its content.
func CreateFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
		require.NoError(t, err)
	}
}

// CreateImageDir returns a temporary directory holding names. The files
// carry placeholder bytes, not decodable images.
func CreateImageDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	files := make(map[string]string, len(names))
	for _, name := range names {
		files[name] = "image content " + name
	}
	CreateFilesWithContent(t, dir, files)
	return dir
}

// StripANSI removes terminal escape sequences from rendered output.
func StripANSI(s string) string {
	return ansi.Strip(s)
}
