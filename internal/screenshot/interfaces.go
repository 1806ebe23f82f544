package screenshot

import (
	"context"
	"time"
)

// Capturer loads a page in a browser and returns a rendered screenshot.
type Capturer interface {
	Capture(ctx context.Context, req Request) (Image, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
	Since(start time.Time) time.Duration
}

// IDGenerator produces request IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
