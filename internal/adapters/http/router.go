package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/resume-sorter/internal/config"
	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/core/ports"
)

type Router struct {
	cfg     config.Config
	sorter  ports.ResumeSorter
	runs    ports.RunReader
	queue   ports.SortRequestQueue
	metrics http.Handler
}

// NewRouter wires the API. runs, queue and metrics may be nil when Postgres,
// NATS or Prometheus exposure is not configured.
func NewRouter(
	cfg config.Config,
	sorter ports.ResumeSorter,
	runs ports.RunReader,
	queue ports.SortRequestQueue,
	metrics http.Handler,
) *Router {
	return &Router{
		cfg:     cfg,
		sorter:  sorter,
		runs:    runs,
		queue:   queue,
		metrics: metrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/sort", rt.sort)
	mux.HandleFunc("/v1/runs/", rt.getRun)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics)
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) sort(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.SortRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		rt.enqueue(w, r, req)
		return
	}

	report, err := rt.sorter.Sort(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// enqueue publishes the request for a worker and answers 202 without waiting
// for the run. Only the root is checked here; the worker validates the rest.
func (rt *Router) enqueue(w http.ResponseWriter, r *http.Request, req domain.SortRequest) {
	if rt.queue == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "queued runs are not configured"})
		return
	}
	if strings.TrimSpace(req.Root) == "" {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "enqueue sort", errors.New("root folder is required")))
		return
	}
	if err := rt.queue.PublishSortRequest(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "root": req.Root})
}

func (rt *Router) getRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.runs == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "run history is not configured"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "get run", errors.New("run id is required")))
		return
	}

	report, err := rt.runs.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
