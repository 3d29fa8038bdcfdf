// Package http serves liveness, readiness and build info
package http

import (
	"context"
	"net/http"
	"time"

	"orderlens/internal/core/version"
	"orderlens/internal/modkit/httpkit"
)

// Deps are what the meta routes report on. PG and CH are probed when they
// implement Ping(context.Context) error and reported skipped when nil
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
}

const probeTimeout = 2 * time.Second

type pinger interface{ Ping(context.Context) error }

// Register mounts /health, /ready, /version and /service on r
func Register(r httpkit.Router, d Deps) {
	h := handlers(d)
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

type handlers Deps

// HealthResponse answers liveness probes
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// Probe states
const (
	ProbeOK      = "ok"
	ProbeFail    = "fail"
	ProbeSkipped = "skipped"
	ProbeUnknown = "unknown"
)

type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadyResponse is ok unless a configured store fails (fail) or cannot be probed (degraded)
type ReadyResponse struct {
	Status string       `json:"status"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

type ServiceResponse struct {
	Name    string `json:"name"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime"` // seconds
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func (h handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.ServiceName, Started: stamp(h.StartedAt), Now: stamp(time.Now())}, nil
}

func probe(ctx context.Context, name string, backend any) ReadyCheck {
	c := ReadyCheck{Name: name, Status: ProbeUnknown}
	switch b := backend.(type) {
	case nil:
		c.Status = ProbeSkipped
	case pinger:
		if err := b.Ping(ctx); err != nil {
			c.Status, c.Error = ProbeFail, err.Error()
		} else {
			c.Status = ProbeOK
		}
	}
	return c
}

func (h handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := ReadyResponse{
		Status: ProbeOK,
		Checks: []ReadyCheck{probe(ctx, "pg", h.PG), probe(ctx, "ch", h.CH)},
	}
	for _, c := range resp.Checks {
		switch {
		case c.Status == ProbeFail:
			resp.Status = ProbeFail
		case c.Status == ProbeUnknown && resp.Status == ProbeOK:
			resp.Status = "degraded"
		}
	}
	resp.Now = stamp(time.Now())
	return resp, nil
}

func (h handlers) version(*http.Request) (any, error) { return version.Info(h.ServiceName), nil }

func (h handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.ServiceName,
		Started: stamp(h.StartedAt),
		Uptime:  int64(time.Since(h.StartedAt) / time.Second),
	}, nil
}
