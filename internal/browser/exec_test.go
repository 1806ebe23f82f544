package browser

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupExecutableOverride(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("exec bits are not meaningful on windows")
	}
	bin := filepath.Join(t.TempDir(), "fake-chrome")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755)) //nolint:gosec // test executable

	got, err := LookupExecutable(bin)
	require.NoError(t, err)
	require.Equal(t, bin, got)
}

func TestLookupExecutableMissingOverride(t *testing.T) {
	t.Parallel()

	_, err := LookupExecutable(filepath.Join(t.TempDir(), "missing-chrome"))
	require.ErrorIs(t, err, ErrBrowserNotFound)
}

func TestExecutableCandidatesNotEmpty(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, executableCandidates())
}

// chromeOrSkip returns the Chrome binary to test against, honoring
// CHROME_EXECUTABLE, and skips the test when none is installed.
func chromeOrSkip(t *testing.T) string {
	t.Helper()
	path, err := LookupExecutable(os.Getenv("CHROME_EXECUTABLE"))
	if err != nil {
		t.Skipf("headless chrome not installed: %v", err)
	}
	return path
}
