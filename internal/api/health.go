// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/spark/internal/platform/constants"
	"github.com/taibuivan/spark/internal/platform/respond"
	"github.com/taibuivan/spark/internal/storage"
)

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 2 * time.Second

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// CheckRemote pings the remote datastore. Nil when none is configured.
	CheckRemote func(ctx context.Context) error

	// CheckCache pings the Redis mirror. Nil when the mirror is not in Redis.
	CheckCache func(ctx context.Context) error
}

// HealthHandler serves the liveness, readiness and ping probes.
type HealthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
	now          func() time.Time
}

// NewHealthHandler creates the probe handlers.
func NewHealthHandler(deps HealthDependencies, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{dependencies: deps, logger: logger, now: time.Now}
}

// Liveness handles GET /health.
func (handler *HealthHandler) Liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// Ping handles GET /api/ping.
func (handler *HealthHandler) Ping(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		constants.FieldStatus: "ok",
		"timestamp":           handler.now().UTC().Format(time.RFC3339Nano),
	})
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

/*
Readiness handles GET /ready.

Description: A failing dependency degrades the service but never takes it out
of rotation, because every request can still be served from the local store.

Response:
  - 200: {status: ready|degraded, mode: live|demo, checks}
*/
func (handler *HealthHandler) Readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, 2)
	isSystemReady := true
	mode := storage.ModeDemo

	check := func(name string, probe func(ctx context.Context) error) bool {
		ctx, cancel := context.WithTimeout(request.Context(), readinessTimeout)
		defer cancel()

		result := checkResult{Name: name, IsOK: true}
		if err := probe(ctx); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.WarnContext(request.Context(), "readiness_check_failed",
				slog.String("dependency", name),
				slog.Any("error", err),
			)
		}
		results = append(results, result)
		return result.IsOK
	}

	if handler.dependencies.CheckRemote != nil && check("remote", handler.dependencies.CheckRemote) {
		mode = storage.ModeLive
	}
	if handler.dependencies.CheckCache != nil {
		check("redis", handler.dependencies.CheckCache)
	}

	responseStatus := "ready"
	if !isSystemReady {
		responseStatus = "degraded"
	}

	respond.OK(writer, map[string]any{
		constants.FieldStatus: responseStatus,
		constants.FieldMode:   mode,
		constants.FieldChecks: results,
	})
}
