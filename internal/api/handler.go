package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nikhilbhat/eventformatter/internal/config"
	"github.com/nikhilbhat/eventformatter/internal/engine"
	"github.com/nikhilbhat/eventformatter/internal/event"
	"github.com/nikhilbhat/eventformatter/internal/formatter"
	"github.com/nikhilbhat/eventformatter/internal/metrics"
	"github.com/nikhilbhat/eventformatter/internal/render"
)

const maxBatchSize = 100

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng      *engine.Engine
	loader   *config.Loader
	renderer *render.Renderer
	mux      *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(eng *engine.Engine, loader *config.Loader, renderer *render.Renderer) http.Handler {
	h := &Handler{eng: eng, loader: loader, renderer: renderer, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/events", h.ingestEvent)
	h.mux.HandleFunc("POST /v1/events/batch", h.ingestBatch)
	h.mux.HandleFunc("GET /v1/formatter", h.describeFormatter)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// POST /v1/events — synchronous single-event ingestion. The response
// carries the formatted output event, or the render error if formatting
// failed (no output is produced then).
func (h *Handler) ingestEvent(w http.ResponseWriter, r *http.Request) {
	var ev event.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	normalize(&ev, time.Now())

	res, err := h.eng.ProcessSync(r.Context(), &ev)
	if err != nil {
		writeError(w, http.StatusTooManyRequests, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /v1/events/batch — async batch ingestion (up to 100 events).
// Outputs go to the configured sink only.
func (h *Handler) ingestBatch(w http.ResponseWriter, r *http.Request) {
	var events []*event.Event
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(events) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one event")
		return
	}
	if len(events) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(events), maxBatchSize))
		return
	}

	now := time.Now()
	jobID := uuid.New().String()
	queued := 0
	for _, ev := range events {
		normalize(ev, now)
		if h.eng.ProcessAsync(ev) {
			queued++
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":   jobID,
		"total":    len(events),
		"queued":   queued,
		"rejected": len(events) - queued,
	})
}

// GET /v1/formatter — self-description of the output event shape, derived
// from the instruction keys and mode.
func (h *Handler) describeFormatter(w http.ResponseWriter, r *http.Request) {
	f := h.eng.Formatter()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mode":        f.Mode(),
		"fields":      f.Fields(),
		"description": f.Describe(),
	})
}

// POST /v1/config/reload — force reload from disk, validate, rebuild the
// formatter and swap it atomically. An invalid config is rejected and the
// running formatter stays in place.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	f, err := formatter.New(cfg.Formatter, h.renderer)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.eng.SwapFormatter(f)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"version":  cfg.Version,
		"fields":   f.Fields(),
	})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if event queue >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

// normalize fills server-assigned event fields.
func normalize(ev *event.Event, now time.Time) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now
	}
	ev.ReceivedAt = now
}
