// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/comicpass/internal/platform/respond"
)

// probeTimeout bounds each readiness probe independently of the request.
const probeTimeout = 2 * time.Second

// Probe is one dependency checked by GET /ready.
//
// A failing Critical probe takes the instance out of rotation (503). A failing
// non-critical probe only marks it degraded: the entitlement cache, for
// example, falls back to Postgres when Redis is gone.
type Probe struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

type probeResult struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	Critical  bool   `json:"critical"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type healthHandler struct {
	probes []Probe
	logger *slog.Logger
}

// NewHealthHandlers returns the liveness and readiness handlers.
func NewHealthHandlers(probes []Probe, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{probes: probes, logger: logger}
	return handler.liveness, handler.readiness
}

// GET /health. The process is up; no dependency is touched.
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

/*
GET /ready.

Response:
  - 200: status "ready", or "degraded" when only non-critical probes fail
  - 503: status "unavailable" when a critical probe fails
*/
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]probeResult, len(handler.probes))

	// Probes write to their own slot and never return an error, so the
	// group only serves as a WaitGroup bound to the request context.
	group, ctx := errgroup.WithContext(request.Context())
	for i, probe := range handler.probes {
		group.Go(func() error {
			results[i] = handler.run(ctx, probe)
			return nil
		})
	}
	_ = group.Wait()

	status, httpStatus := "ready", http.StatusOK
	for _, result := range results {
		if result.OK {
			continue
		}
		if result.Critical {
			status, httpStatus = "unavailable", http.StatusServiceUnavailable
			break
		}
		status = "degraded"
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		"status": status,
		"checks": results,
	}})
}

func (handler *healthHandler) run(ctx context.Context, probe Probe) probeResult {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	started := time.Now()
	err := probe.Check(probeCtx)
	result := probeResult{
		Name:      probe.Name,
		OK:        err == nil,
		Critical:  probe.Critical,
		LatencyMS: time.Since(started).Milliseconds(),
	}
	if err != nil {
		result.Error = err.Error()
		handler.logger.Warn("readiness_probe_failed",
			slog.String("dependency", probe.Name),
			slog.Bool("critical", probe.Critical),
			slog.Any("error", err),
		)
	}
	return result
}
