// Package health exposes Kubernetes-style liveness and readiness probes.
//
// Checks are executed on a background ticker, and the HTTP endpoints serve
// the cached result, so a stalled dependency never blocks the probe itself.
// Hysteresis keeps flapping dependencies from bouncing the status: a probe
// turns failing only after several consecutive errors and recovers on the
// first success.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes a single dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

const (
	failAfter = 3 // consecutive errors before a probe turns failing
	passAfter = 1 // consecutive successes before it recovers
)

// probe is one registered check plus its cached outcome.
type probe struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	// mu guards everything below. observe runs on a single goroutine per
	// probe; the HTTP endpoints read the cached state concurrently.
	mu      sync.Mutex
	passing bool
	lastErr error
	fails   int
	passes  int
}

func newProbe(name string, timeout time.Duration, fn CheckFunc) *probe {
	// Start passing so a service is not reported broken before the first
	// observation completes.
	return &probe{name: name, timeout: timeout, fn: fn, passing: true}
}

// observe runs the check once and folds the result into the hysteresis
// counters.
func (p *probe) observe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.fn(ctx)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErr = err
	if err != nil {
		p.passes = 0
		if p.fails++; p.fails >= failAfter {
			p.passing = false
		}
		return
	}
	p.fails = 0
	if p.passes++; p.passes >= passAfter {
		p.passing = true
	}
}

// state returns the cached outcome of the most recent observations.
func (p *probe) state() (passing bool, lastErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.passing, p.lastErr
}

func (p *probe) loop(ctx context.Context, every time.Duration) {
	p.observe(ctx)

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.observe(ctx)
		}
	}
}

// Health tracks the service's liveness and readiness probes.
type Health struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*probe
	readiness []*probe
	stop      context.CancelFunc
}

// New returns a Health with no probes registered. The service reports not
// ready until SetReady(true) is called.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a probe for /livez. Liveness answers "is this
// process still functioning" (goroutine counts, GC pauses, deadlocks).
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	h.liveness = append(h.liveness, newProbe(name, timeout, fn))
	h.mu.Unlock()
}

// AddReadinessCheck registers a probe for /readyz. Readiness answers "can
// this instance serve traffic" (database and cache connectivity, dependent
// services).
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	h.readiness = append(h.readiness, newProbe(name, timeout, fn))
	h.mu.Unlock()
}

// Start launches one background goroutine per registered probe, each
// observing at the given interval. Register all probes before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.stop = cancel
	probes := make([]*probe, 0, len(h.liveness)+len(h.readiness))
	probes = append(probes, h.liveness...)
	probes = append(probes, h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go p.loop(ctx, interval)
	}
}

// Stop cancels the probe goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop != nil {
		h.stop()
		h.stop = nil
	}
}

// SetReady flips the manual readiness gate. Call with true once startup is
// complete and with false at the start of graceful shutdown so load
// balancers drain this instance.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// is passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	for _, p := range h.snapshot(&h.readiness) {
		if ok, _ := p.state(); !ok {
			return false
		}
	}
	return true
}

func (h *Health) snapshot(list *[]*probe) []*probe {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*probe, len(*list))
	copy(out, *list)
	return out
}

// statusResponse is the body served by both probe endpoints. Checks only
// lists the probes that are failing.
type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 {"status":"ok"} when every liveness probe
// passes, 503 with the failing probes otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	serveStatus(w, failing(h.snapshot(&h.liveness)))
}

// ReadyEndpoint serves /readyz. It fails while SetReady(true) has not been
// called, and whenever a readiness probe is failing.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := failing(h.snapshot(&h.readiness))
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	serveStatus(w, failures)
}

func failing(probes []*probe) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		ok, err := p.state()
		if ok {
			continue
		}
		if err != nil {
			failures[p.name] = err.Error()
		} else {
			failures[p.name] = "check is unhealthy"
		}
	}
	return failures
}

func serveStatus(w http.ResponseWriter, failures map[string]string) {
	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp = statusResponse{Status: "unhealthy", Checks: failures}
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
