package browser

import (
	"context"
	"fmt"

	"github.com/JakeFAU/webshot/internal/screenshot"
)

// Noop implements screenshot.Capturer but always returns an error to indicate
// that the browser is disabled in the current deployment.
type Noop struct{}

// NewNoop creates a new Noop capturer.
func NewNoop() *Noop {
	return &Noop{}
}

// Capture returns an error since this is a stub implementation.
func (Noop) Capture(_ context.Context, _ screenshot.Request) (screenshot.Image, error) {
	return screenshot.Image{}, fmt.Errorf("%w: headless browser not configured", screenshot.ErrCaptureFailed)
}
