// Package browser drives headless Chrome through chromedp to capture page
// screenshots. Every capture owns a dedicated browser process: it is launched
// when the capture starts and closed, with its exit awaited, before Capture
// returns.
package browser
