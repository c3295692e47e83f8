// Package api exposes the formatting services over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"apareport/app"
	apperrors "apareport/internal/errors"
	"apareport/internal/input"
	"apareport/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request documents, inline datasets included
const maxBodyBytes = 8 << 20

// Server routes formatting requests to the services
type Server struct {
	router     *chi.Mux
	anova      *app.AnovaService
	comparison *app.ComparisonService
	logger     *zap.Logger
}

// NewServer creates the HTTP server
func NewServer(anova *app.AnovaService, comparison *app.ComparisonService, logger *zap.Logger) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		anova:      anova,
		comparison: comparison,
		logger:     logging.OrNop(logger),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/anova", s.handleAnova)
		r.Post("/compare", s.handleCompare)
	})
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on port until the server fails
func (s *Server) Start(port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting API server", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnova(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decode(w, r)
	if !ok {
		return
	}
	if doc.Anova == nil {
		s.writeError(w, r, apperrors.InvalidInput("expected an ANOVA document (kind anova, summary_aov, aovlist or anova_mlm)"))
		return
	}

	req, err := doc.Anova.Request()
	if err != nil {
		s.writeError(w, r, apperrors.FromDomain(err, "invalid ANOVA document"))
		return
	}
	report, err := s.anova.FormatAnova(r.Context(), req)
	if err != nil {
		s.writeError(w, r, apperrors.FromDomain(err, "failed to format ANOVA"))
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decode(w, r)
	if !ok {
		return
	}
	if doc.Comparison == nil {
		s.writeError(w, r, apperrors.InvalidInput("expected a comparison document"))
		return
	}
	// The server never reads files named by a client
	if doc.Comparison.Data != "" {
		s.writeError(w, r, apperrors.InvalidInput("data files are not accepted over HTTP; send the dataset as columns"))
		return
	}

	req, err := doc.Comparison.Request("", s.logger)
	if err != nil {
		s.writeError(w, r, apperrors.FromDomain(err, "invalid comparison document"))
		return
	}
	report, err := s.comparison.FormatModelComparison(r.Context(), req)
	if err != nil {
		s.writeError(w, r, apperrors.FromDomain(err, "failed to format model comparison"))
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// decode reads the body as an input document, writing the error response
// itself when it cannot
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*input.Document, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, apperrors.InvalidInput("request body too large or unreadable"))
		return nil, false
	}
	doc, err := input.Decode(body)
	if err != nil {
		s.writeError(w, r, apperrors.FromDomain(err, "invalid document"))
		return nil, false
	}
	return doc, true
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	s.writeJSON(w, status, map[string]errorBody{
		"error": {Code: apperrors.GetCode(err), Message: err.Error()},
	})
}

// writeJSON encodes before writing so an encoding failure still yields a
// well-formed 500
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
