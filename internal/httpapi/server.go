package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kinin-app/interviewer/internal/config"
	"github.com/kinin-app/interviewer/internal/interview"
	"github.com/kinin-app/interviewer/internal/observability"
	"github.com/kinin-app/interviewer/internal/reliability"
)

// Orchestrator is the exchange entry point the API depends on.
type Orchestrator interface {
	Exchange(ctx context.Context, req interview.Request) (interview.Response, error)
}

type Server struct {
	cfg          config.Config
	orchestrator Orchestrator
	metrics      *observability.Metrics
}

func New(cfg config.Config, orchestrator Orchestrator, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		metrics:      metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/stages", s.handlePerfStages)

	r.Post("/v1/messages", s.handleMessage)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"store_mode": s.storeMode(),
		"model_mode": strings.ToLower(strings.TrimSpace(s.cfg.ModelAdapterMode)),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"store_mode": s.storeMode(),
		"model_mode": strings.ToLower(strings.TrimSpace(s.cfg.ModelAdapterMode)),
	})
}

func (s *Server) handlePerfStages(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"generated_at": "",
			"window_size":  0,
			"stages":       []any{},
		})
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.SnapshotExchangeStages())
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	req, err := resolveRequest(r)
	if err != nil {
		s.respondExchangeError(w, r, err)
		return
	}

	ctx := r.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	resp, err := s.orchestrator.Exchange(ctx, req)
	if err != nil {
		s.respondExchangeError(w, r, err)
		return
	}

	if s.metrics != nil {
		s.metrics.Exchanges.WithLabelValues("ok").Inc()
	}
	respondJSON(w, http.StatusOK, resp)
}

// respondExchangeError logs full diagnostic detail server-side and sends
// the caller only the classified status, short message, and code.
func (s *Server) respondExchangeError(w http.ResponseWriter, r *http.Request, err error) {
	status := reliability.StatusFor(err)
	code := reliability.CodeFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR %s %s: %v", r.Method, r.URL.Path, err)
	}
	if s.metrics != nil {
		s.metrics.Exchanges.WithLabelValues(code).Inc()
	}
	respondError(w, status, code, reliability.MessageFor(err))
}

func (s *Server) storeMode() string {
	if strings.TrimSpace(s.cfg.DatabaseURL) == "" {
		return "in-memory"
	}
	return "postgres"
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
