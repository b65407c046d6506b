// Package http provides http transport for ingestion control
package http

import (
	stdhttp "net/http"

	"tubewatch/internal/modkit/httpkit"
	"tubewatch/internal/services/ingest/domain"
)

// Register mounts ingest endpoints on the given router
func Register(r httpkit.Router, runner domain.RunnerPort) {
	h := &handlers{runner: runner}

	// trigger one fetch cycle outside the poller cadence
	httpkit.Post(r, "/ingest/fetch", h.fetch)

	// ingest diagnostics
	httpkit.Get(r, "/ingest/status", h.status)
}

type handlers struct{ runner domain.RunnerPort }

// @Summary Run one ingestion cycle now
// @Tags Ingest
// @Produce json
// @Success 200 {object} domain.CycleResult "ok"
// @Router /ingest/fetch [post]
func (h *handlers) fetch(r *stdhttp.Request) (any, error) {
	return h.runner.Cycle(r.Context()), nil
}

// @Summary Ingestion status
// @Tags Ingest
// @Produce json
// @Success 200 {object} domain.Status "ok"
// @Router /ingest/status [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	return h.runner.Status(r.Context())
}
