// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	service "github.com/okian/callqa/internal/app"
	"github.com/okian/callqa/internal/domain/rubric"
	"github.com/okian/callqa/pkg/logger"
	"github.com/okian/callqa/pkg/metrics"
)

// Pipeline is the evaluation service as seen by the HTTP layer.
type Pipeline interface {
	Analyze(ctx context.Context, audio *service.UploadedAudio) (service.Outcome, error)
	Rubric() *rubric.Rubric
	MaxUploadBytes() int64
	EvaluationConfigured() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	analyzeHandler *AnalyzeHandler
	rubricHandler  *RubricHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler

	corsOrigins []string
	logger      logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets the logger used for access and panic logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(pipeline Pipeline, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{corsOrigins: []string{"*"}}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("http")
	}
	s.analyzeHandler = NewAnalyzeHandler(pipeline, s.logger)
	s.rubricHandler = NewRubricHandler(pipeline.Rubric())
	s.healthHandler = NewHealthHandler(pipeline)
	s.statsHandler = NewStatsHandler(statsProvider)
	return s
}

// Router builds the chi router with middleware and all API routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Recoverer(s.logger))
	r.Use(AccessLog(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{headerEvaluationID, headerEvaluationMode},
		MaxAge:         300,
	}))
	s.Register(r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/analyze-call", MetricsMiddleware(s.analyzeHandler.HandleAnalyzeCall, "analyze-call"))
		api.Get("/rubric", MetricsMiddleware(s.rubricHandler.HandleGetRubric, "rubric"))
	})
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Message: message, Code: code})
}

// internalErrorMessage is the only text a 500 ever carries.
const internalErrorMessage = "Internal server error"

func writeInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal", internalErrorMessage)
}
