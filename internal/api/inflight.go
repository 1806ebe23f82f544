package api

import (
	"context"
	"net/http"
	"sync"
)

// inflight counts handlers that are still running. Unlike sync.WaitGroup it
// may be incremented again after a Wait has started.
type inflight struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (f *inflight) add() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == 0 {
		f.idle = make(chan struct{})
	}
	f.n++
}

func (f *inflight) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n--
	if f.n == 0 {
		close(f.idle)
	}
}

func (f *inflight) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

func (f *inflight) wait(ctx context.Context) error {
	f.mu.Lock()
	if f.n == 0 {
		f.mu.Unlock()
		return nil
	}
	idle := f.idle
	f.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) trackCaptures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.captures.add()
		defer s.captures.done()
		next.ServeHTTP(w, r)
	})
}

// InFlight reports how many capture requests are still running.
func (s *Server) InFlight() int {
	return s.captures.count()
}

// WaitIdle blocks until every in-flight capture handler has returned, which
// includes its browser teardown, or until ctx is done.
func (s *Server) WaitIdle(ctx context.Context) error {
	return s.captures.wait(ctx)
}
