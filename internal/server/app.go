// Package server provides the application server and its dependency wiring.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/JakeFAU/webshot/internal/api"
	"github.com/JakeFAU/webshot/internal/browser"
	"github.com/JakeFAU/webshot/internal/clock/system"
	"github.com/JakeFAU/webshot/internal/config"
	"github.com/JakeFAU/webshot/internal/id/uuid"
	"github.com/JakeFAU/webshot/internal/metrics"
	"github.com/JakeFAU/webshot/internal/screenshot"
	"github.com/JakeFAU/webshot/internal/telemetry"
)

// App contains the application's dependencies.
type App struct {
	cfg            config.Config
	logger         *zap.Logger
	apiServer      *api.Server
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("building application dependencies",
		zap.String("addr", cfg.Addr()),
		zap.Bool("browser_enabled", cfg.Browser.Enabled),
	)
	metrics.Init()

	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("tracer init failed: %w", err)
		}
		app.tracerShutdown = tp.Shutdown
	}

	capturer, err := buildCapturer(cfg, logger.Named("browser"))
	if err != nil {
		return nil, err
	}

	app.apiServer = api.NewServer(capturer, uuid.New(), system.New(), logger.Named("api"))
	app.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.apiServer.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
	}
	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run starts the application and blocks until the context is canceled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.String("url", "http://"+a.cfg.Addr()))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown initiated")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
		// Close cancels in-flight request contexts but does not wait for
		// their handlers, so wait for the captures to close their browsers.
		if closeErr := a.httpServer.Close(); closeErr != nil {
			a.logger.Error("server close error", zap.Error(closeErr))
		}
		a.awaitCaptures()
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer closeCancel()
	if err := a.Close(closeCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (a *App) awaitCaptures() {
	pending := a.apiServer.InFlight()
	if pending == 0 {
		return
	}
	a.logger.Info("waiting for in-flight captures to close their browsers", zap.Int("captures", pending))
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.TeardownTimeout())
	defer cancel()
	if err := a.apiServer.WaitIdle(ctx); err != nil {
		a.logger.Error("in-flight captures did not finish before the teardown timeout",
			zap.Int("captures", a.apiServer.InFlight()),
			zap.Duration("timeout", a.cfg.TeardownTimeout()),
			zap.Error(err),
		)
	}
}

// Close gracefully shuts down the application's observability plumbing.
func (a *App) Close(ctx context.Context) error {
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
			return fmt.Errorf("tracer shutdown: %w", err)
		}
	}
	a.logger.Info("shutdown complete")
	return nil
}

func buildCapturer(cfg config.Config, logger *zap.Logger) (screenshot.Capturer, error) {
	if !cfg.Browser.Enabled {
		logger.Warn("headless browser disabled; every capture will fail")
		return browser.NewNoop(), nil
	}
	if path, err := browser.LookupExecutable(cfg.Browser.ExecutablePath); err != nil {
		logger.Warn("no chrome executable found; captures will fail until one is installed", zap.Error(err))
	} else {
		logger.Info("using chrome executable", zap.String("path", path))
	}
	capturer, err := browser.NewChromedp(browser.Config{
		ExecutablePath: cfg.Browser.ExecutablePath,
		GLBackend:      cfg.Browser.GLBackend,
		NoSandbox:      cfg.Browser.NoSandbox,
		WindowWidth:    cfg.Browser.WindowWidth,
		WindowHeight:   cfg.Browser.WindowHeight,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init chromedp capturer: %w", err)
	}
	return capturer, nil
}
