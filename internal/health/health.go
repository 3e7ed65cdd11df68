// Package health serves the liveness and readiness probes.
//
// /healthz answers 200 while the process can serve HTTP. /readyz runs every
// registered [Checker] concurrently and answers 200 only when all pass, with
// a per-check report:
//
//	{"status":"ok","checks":[{"name":"lexicon","status":"ok","took":"12µs"}]}
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds each readiness check.
const checkTimeout = 5 * time.Second

// Check statuses.
const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

// Checker is a named readiness check.
type Checker struct {
	// Name labels the check in the report (e.g. "lexicon", "speech").
	Name string

	// Check returns nil when the dependency is usable. It must respect ctx.
	Check func(ctx context.Context) error

	// Detail, when set, adds extra state to the check's report entry, such
	// as the breaker state of each speech backend.
	Detail func() any
}

// CheckResult is one entry of a [Report].
type CheckResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Took   string `json:"took"`
	Detail any    `json:"detail,omitempty"`
}

// Report is the body of both probes.
type Report struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks,omitempty"`
}

// Handler serves the probes. The checker list is fixed at construction.
type Handler struct {
	checkers []Checker
}

// New creates a [Handler] over checkers. Report entries keep this order.
func New(checkers ...Checker) *Handler {
	return &Handler{checkers: append([]Checker(nil), checkers...)}
}

// Run evaluates every checker concurrently and returns the combined report.
func (h *Handler) Run(ctx context.Context) Report {
	rep := Report{Status: StatusOK, Checks: make([]CheckResult, len(h.checkers))}

	var wg sync.WaitGroup
	for i, c := range h.checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rep.Checks[i] = run(ctx, c)
		}()
	}
	wg.Wait()

	for _, cr := range rep.Checks {
		if cr.Status != StatusOK {
			rep.Status = StatusFail
		}
	}
	return rep
}

func run(ctx context.Context, c Checker) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := c.Check(ctx)
	cr := CheckResult{Name: c.Name, Status: StatusOK, Took: time.Since(start).String()}
	if err != nil {
		cr.Status = StatusFail
		cr.Error = err.Error()
	}
	if c.Detail != nil {
		cr.Detail = c.Detail()
	}
	return cr
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Report{Status: StatusOK})
}

// Readyz is the readiness probe. It answers 503 when any check fails.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	rep := h.Run(r.Context())
	status := http.StatusOK
	if rep.Status != StatusOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, rep)
}

// Register adds the /healthz and /readyz routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
