// Package api hosts the HTTP server, middleware, and REST handlers for the
// screenshot service. Routes:
//   - POST /api/screenshot captures a page and returns it as a PNG data URI.
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
package api
