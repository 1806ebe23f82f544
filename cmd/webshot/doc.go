// Package main hosts the screenshot service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes POST /api/screenshot plus health and metrics endpoints. The body must
//     carry "url" and "delay"; missing fields are answered with 400 before any browser is started.
//   - Capture: internal/browser.Chromedp launches a dedicated headless Chrome (--no-sandbox, --use-gl=egl) for each
//     request, navigates, waits the requested delay, captures a PNG and closes the browser, waiting for the process
//     to exit on every path. Failures become a fixed 500 message; the cause is only logged.
//   - Configuration & plumbing: Viper populates config from env/files (HOST, PORT and CHROME_EXECUTABLE are honored
//     alongside WEBSHOT_* variables); zap provides structured logging; Prometheus metrics are exported via the metrics
//     middleware and /metrics handler; OpenTelemetry spans wrap each capture.
//
// Operational notes:
//   - Concurrency model: none beyond net/http. Every request gets its own browser and there is no admission control,
//     so concurrent load is bounded only by host resources.
//   - Shutdown: SIGINT/SIGTERM drains in-flight requests for server.shutdown_timeout_seconds, then closes the server.
//
// Run locally: go run ./cmd/webshot -config config.yaml (or rely solely on env overrides).
package main
