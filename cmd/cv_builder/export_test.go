package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCommand_MissingInputFlag(t *testing.T) {
	_, err := execute(t, "export")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "in" not set`)
}

func TestExportCommand_NoBrowser(t *testing.T) {
	in := writeFile(t, "cv.json", adaDocument)
	out := filepath.Join(t.TempDir(), "cv.pdf")

	_, err := execute(t, "export", "--in", in, "--out", out, "--chrome", "/nonexistent/chrome")

	require.Error(t, err)
	assert.True(t, errors.Is(err, export.ErrEnvironmentUnavailable))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no file is written when export is unavailable")
}

func TestExportCommand_WithChrome(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser tests in short mode")
	}
	if _, err := export.FindBrowser(""); err != nil {
		t.Skip("Chrome not available")
	}

	in := writeFile(t, "cv.json", adaDocument)
	out := filepath.Join(t.TempDir(), "out", "ada.pdf")

	output, err := execute(t, "export", "--in", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, output, "Exported "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF")
}
