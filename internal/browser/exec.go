package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrBrowserNotFound reports that no Chrome executable could be located.
var ErrBrowserNotFound = errors.New("chrome executable not found")

// LookupExecutable resolves the Chrome binary a capture would launch. A
// non-empty override must itself be executable; otherwise the same names
// chromedp tries are searched on PATH and in the usual install locations.
func LookupExecutable(override string) (string, error) {
	if override != "" {
		path, err := exec.LookPath(override)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrBrowserNotFound, override, err)
		}
		return path, nil
	}
	for _, name := range executableCandidates() {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrBrowserNotFound
}

func executableCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"headless-shell",
			"chromium",
			"google-chrome",
		}
	case "windows":
		return []string{
			"chrome",
			"chrome.exe",
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		}
	default:
		return []string{
			"headless_shell",
			"headless-shell",
			"chromium",
			"chromium-browser",
			"google-chrome",
			"google-chrome-stable",
			"google-chrome-beta",
			"google-chrome-unstable",
			"/usr/bin/google-chrome",
			"/usr/local/bin/chrome",
			"/snap/bin/chromium",
			"chrome",
		}
	}
}
