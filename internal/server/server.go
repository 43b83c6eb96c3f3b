// Package server is the HTTP + WebSocket API surface for uivet: submit and
// watch audit jobs, fetch results and reports, browse audit history.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/sableview/uivet/docs" // registers the swagger spec
	"github.com/sableview/uivet/internal/app"
	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/report"
	"github.com/sableview/uivet/internal/store"
)

// Server routes API traffic to one orchestrator and an optional history
// store.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	history      *store.Store
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer creates a Server with its own Orchestrator. When the app config
// names a store path, history persistence is wired in.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	orch := app.NewOrchestrator(cfg.AppConfig, cfg.Runner, logger)

	var history *store.Store
	if cfg.AppConfig.StorePath != "" {
		var err error
		history, err = store.New(cfg.AppConfig.StorePath, logger)
		if err != nil {
			return nil, err
		}
		orch.SetStore(history)
	}

	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		history:      history,
		router:       chi.NewRouter(),
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}
	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/audits", s.optionsHandler("GET, POST"))
	r.Options("/audits/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/audits/{jobID}/report", s.optionsHandler("GET"))
	r.Options("/history", s.optionsHandler("GET"))
	r.Options("/history/{crawlID}", s.optionsHandler("GET, DELETE"))

	// Audit jobs
	r.Post("/audits", s.handleStartAudit)
	r.Get("/audits", s.handleListAudits)
	r.Get("/audits/{jobID}", s.handleGetAudit)
	r.Delete("/audits/{jobID}", s.handleCancelAudit)
	r.Get("/audits/{jobID}/report", s.handleAuditReport)

	// Audit history
	r.Get("/history", s.handleListHistory)
	r.Get("/history/{crawlID}", s.handleGetHistory)
	r.Delete("/history/{crawlID}", s.handleDeleteHistory)

	// WebSocket job progress
	r.Get("/ws/audits/{jobID}", s.handleAuditWS)

	r.Get("/swagger/*", httpSwagger.Handler())
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}
	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}
	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}
	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close releases the history store.
func (s *Server) Close() {
	if s.history != nil {
		s.history.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

// handleStartAudit godoc
// @Summary Submit an audit job
// @Accept json
// @Produce json
// @Param request body StartAuditRequest true "audit parameters"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Router /audits [post]
func (s *Server) handleStartAudit(w http.ResponseWriter, r *http.Request) {
	var body StartAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	// Jobs outlive the submitting request, so they run on the background
	// context and are stopped via DELETE /audits/{jobID}.
	job, err := s.orchestrator.StartAuditJob(context.Background(), app.AuditRequest{
		URL:      body.URL,
		MaxPages: body.MaxPages,
		MaxDepth: body.MaxDepth,
	})
	if err != nil {
		s.logger.Warn("starting audit job", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("started audit job",
		logging.Field{Key: "job_id", Value: job.ID},
		logging.Field{Key: "url", Value: body.URL})
	writeJSON(w, http.StatusAccepted, job)
}

// handleListAudits godoc
// @Summary List audit jobs
// @Produce json
// @Success 200 {array} app.Job
// @Router /audits [get]
func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	writeJSON(w, http.StatusOK, jobs)
}

// handleGetAudit godoc
// @Summary Get one audit job
// @Produce json
// @Param jobID path string true "job id"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /audits/{jobID} [get]
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelAudit godoc
// @Summary Cancel an audit job
// @Param jobID path string true "job id"
// @Success 204
// @Router /audits/{jobID} [delete]
func (s *Server) handleCancelAudit(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.orchestrator.CancelJob(jobID)
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

// handleAuditReport godoc
// @Summary Markdown report for a finished audit
// @Produce text/markdown
// @Param jobID path string true "job id"
// @Success 200 {string} string
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /audits/{jobID}/report [get]
func (s *Server) handleAuditReport(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Result == nil {
		writeError(w, http.StatusConflict, "job has no result yet")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, report.Markdown(*job.Result))
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not configured")
		return
	}
	list, err := s.history.ListCrawls(r.Context())
	if err != nil {
		s.logger.Warn("listing history", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []store.CrawlSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not configured")
		return
	}
	cr, err := s.history.GetCrawl(r.Context(), chi.URLParam(r, "crawlID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "crawl not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cr)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not configured")
		return
	}
	err := s.history.DeleteCrawl(r.Context(), chi.URLParam(r, "crawlID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "crawl not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleAuditWS streams an existing job's events over a websocket. The
// stream replays nothing: a client that connects late only sees events from
// now on, plus one initial snapshot of the job.
func (s *Server) handleAuditWS(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job.
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}
}
