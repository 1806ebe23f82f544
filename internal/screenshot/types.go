package screenshot

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// PNGMediaType is the MIME type of every captured image.
const PNGMediaType = "image/png"

var (
	// ErrInvalidURL reports a target that does not parse as an absolute URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrCaptureFailed wraps any failure while launching, navigating or capturing.
	ErrCaptureFailed = errors.New("capture failed")
)

// Request describes a single screenshot capture.
type Request struct {
	// URL is the raw target as received; it is parsed by the capturer.
	URL string
	// Delay is how long to wait after navigation completes before capturing.
	Delay time.Duration
}

// Image is a captured PNG screenshot.
type Image struct {
	URL string
	PNG []byte
}

// DataURI returns the image encoded as a base64 data URI.
func (i Image) DataURI() string {
	return DataURI(i.PNG)
}

// DataURI encodes png as "data:image/png;base64,<payload>".
func DataURI(png []byte) string {
	var b strings.Builder
	prefix := "data:" + PNGMediaType + ";base64,"
	b.Grow(len(prefix) + base64.StdEncoding.EncodedLen(len(png)))
	b.WriteString(prefix)
	b.WriteString(base64.StdEncoding.EncodeToString(png))
	return b.String()
}

// ParseURL parses raw as an absolute URL. Web schemes must carry a host.
// Like browsers, web schemes accept any run of slashes after the colon, so
// "http:example.com" and "http:///example.com" both name example.com.
func ParseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: %q has no scheme", ErrInvalidURL, raw)
	}
	if !hasAuthority(u.Scheme) || u.Host != "" {
		return u, nil
	}

	rest := strings.TrimLeft(trimmed[len(u.Scheme)+1:], `/\`)
	if rest == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}
	u, err = url.Parse(u.Scheme + "://" + rest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}
	return u, nil
}

func hasAuthority(scheme string) bool {
	switch scheme {
	case "http", "https", "ws", "wss", "ftp":
		return true
	}
	return false
}
