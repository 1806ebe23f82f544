package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/webshot/internal/metrics"
	"github.com/JakeFAU/webshot/internal/screenshot"
	"github.com/JakeFAU/webshot/internal/telemetry"
)

const (
	defaultWindowWidth  = 800
	defaultWindowHeight = 600
)

// Config controls how each headless browser is launched.
type Config struct {
	// ExecutablePath overrides the Chrome binary chromedp would discover.
	ExecutablePath string
	// GLBackend is passed as --use-gl. Empty leaves Chrome's default.
	GLBackend string
	// NoSandbox disables the Chrome sandbox.
	NoSandbox    bool
	WindowWidth  int
	WindowHeight int
}

// Chromedp implements screenshot.Capturer with one headless Chrome per capture.
type Chromedp struct {
	cfg    Config
	logger *zap.Logger
	tracer trace.Tracer
}

// NewChromedp creates a capturer backed by chromedp.
func NewChromedp(cfg Config, logger *zap.Logger) (*Chromedp, error) {
	if cfg.WindowWidth < 0 || cfg.WindowHeight < 0 {
		return nil, fmt.Errorf("window size must be >= 0")
	}
	if cfg.WindowWidth == 0 {
		cfg.WindowWidth = defaultWindowWidth
	}
	if cfg.WindowHeight == 0 {
		cfg.WindowHeight = defaultWindowHeight
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chromedp{
		cfg:    cfg,
		logger: logger,
		tracer: telemetry.Tracer(),
	}, nil
}

// Capture launches a browser, navigates to req.URL, waits req.Delay and
// returns a PNG of the viewport. The browser is closed on every path.
func (c *Chromedp) Capture(ctx context.Context, req screenshot.Request) (img screenshot.Image, err error) {
	target, err := screenshot.ParseURL(req.URL)
	if err != nil {
		return screenshot.Image{}, err
	}
	delay := req.Delay
	if delay < 0 {
		delay = 0
	}

	ctx, span := c.tracer.Start(ctx, "browser.capture", trace.WithAttributes(
		attribute.String("url.full", target.String()),
		attribute.Int64("webshot.delay_ms", delay.Milliseconds()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	metrics.IncActiveBrowsers()
	defer metrics.DecActiveBrowsers()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	// Cancelling the allocator waits for the Chrome process to exit and
	// removes its temporary profile directory.
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(c.logger.Sugar().Errorf),
	)
	defer c.closeBrowser(browserCtx, browserCancel)

	// The first Run on a fresh context starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		return screenshot.Image{}, fmt.Errorf("%w: launch browser: %w", screenshot.ErrCaptureFailed, err)
	}

	png, err := c.runCapture(browserCtx, target.String(), delay)
	if err != nil {
		return screenshot.Image{}, err
	}
	return screenshot.Image{URL: target.String(), PNG: png}, nil
}

func (c *Chromedp) runCapture(ctx context.Context, rawURL string, delay time.Duration) ([]byte, error) {
	if err := chromedp.Run(ctx, chromedp.Navigate(rawURL)); err != nil {
		return nil, fmt.Errorf("%w: navigate %s: %w", screenshot.ErrCaptureFailed, rawURL, err)
	}
	if err := chromedp.Run(ctx, chromedp.Sleep(delay)); err != nil {
		return nil, fmt.Errorf("%w: wait %s: %w", screenshot.ErrCaptureFailed, delay, err)
	}

	var buf []byte
	capture := chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			Do(ctx)
		return err
	})
	if err := chromedp.Run(ctx, capture); err != nil {
		return nil, fmt.Errorf("%w: capture screenshot: %w", screenshot.ErrCaptureFailed, err)
	}
	return buf, nil
}

// closeBrowser closes the browser gracefully and waits for it to go away.
func (c *Chromedp) closeBrowser(browserCtx context.Context, cancel context.CancelFunc) {
	defer cancel()
	if err := chromedp.Cancel(browserCtx); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("browser close failed", zap.Error(err))
	}
}

func (c *Chromedp) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(c.cfg.WindowWidth, c.cfg.WindowHeight),
	)
	if c.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if c.cfg.GLBackend != "" {
		opts = append(opts, chromedp.Flag("use-gl", c.cfg.GLBackend))
	}
	if c.cfg.ExecutablePath != "" {
		opts = append(opts, chromedp.ExecPath(c.cfg.ExecutablePath))
	}
	return opts
}
