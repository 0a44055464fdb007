// Package chi exposes the query pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cinequery/cinequery/internal/domain"
	"github.com/cinequery/cinequery/internal/metrics"
	"github.com/cinequery/cinequery/internal/repository/movie"
	answeruc "github.com/cinequery/cinequery/internal/usecase/answer"
	healthuc "github.com/cinequery/cinequery/internal/usecase/health"
	parseruc "github.com/cinequery/cinequery/internal/usecase/parser"
	"github.com/cinequery/cinequery/internal/version"
)

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeUpstreamError    = "upstream_error"
	codeInternalError    = "internal_error"
)

// StatsSource reports catalog counts.
type StatsSource interface {
	Stats(ctx context.Context) (movie.Stats, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server hosts the query pipeline HTTP API.
type Server struct {
	answers       *answeruc.Service
	parser        *parseruc.Service
	stats         StatsSource
	health        *healthuc.Service
	defaults      answeruc.Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. defaults supplies the
// pipeline options used when a request leaves them unset.
func NewServer(
	answers *answeruc.Service,
	parser *parseruc.Service,
	stats StatsSource,
	health *healthuc.Service,
	defaults answeruc.Options,
	logger *zap.Logger,
) *Server {
	s := &Server{
		answers:  answers,
		parser:   parser,
		stats:    stats,
		health:   health,
		defaults: defaults,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyPayload, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInputShape, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrRowSource, http.StatusBadGateway, codeUpstreamError),
		sentinelHandler(domain.ErrLLMProvider, http.StatusBadGateway, codeUpstreamError),
	}
	return s
}

// Routes registers all API endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/query/parse", s.ParseQuery)
	r.Post("/v1/query/answer", s.AnswerQuery)
	r.Post("/v1/query/respond", s.RespondPayload)
	r.Get("/v1/stats", s.CatalogStats)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/version", s.VersionInfo)
	r.Get("/metrics", s.Metrics)
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Parsed domain.ParsedQuery `json:"parsed"`
}

// ParseQuery handles POST /v1/query/parse.
func (s *Server) ParseQuery(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "text is required")
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{Parsed: s.parser.Parse(req.Text)})
}

type answerRequest struct {
	Text      string `json:"text"`
	Limit     *int   `json:"limit,omitempty"`
	Diversify *bool  `json:"diversify,omitempty"`
	Tone      string `json:"tone,omitempty"`
}

type respondRequest struct {
	ExecutorPayload json.RawMessage `json:"executor_payload"`
	MaxResults      *int            `json:"max_results,omitempty"`
	Diversify       *bool           `json:"diversify,omitempty"`
	Tone            string          `json:"tone,omitempty"`
}

type answerResponse struct {
	answeruc.Result
	AnswerID string `json:"answer_id"`
}

// AnswerQuery handles POST /v1/query/answer, running the full
// text-to-answer pipeline.
func (s *Server) AnswerQuery(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	opts := s.requestOptions(req.Limit, req.Diversify, req.Tone)
	result, err := s.answers.Answer(r.Context(), req.Text, opts)
	s.finishPipeline(w, result, err)
}

// RespondPayload handles POST /v1/query/respond, running the pipeline
// from a pre-executed payload.
func (s *Server) RespondPayload(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var payload any
	if len(req.ExecutorPayload) > 0 {
		if err := json.Unmarshal(req.ExecutorPayload, &payload); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid executor payload: "+err.Error())
			return
		}
	}

	opts := s.requestOptions(req.MaxResults, req.Diversify, req.Tone)
	result, err := s.answers.Respond(r.Context(), payload, opts)
	s.finishPipeline(w, result, err)
}

// requestOptions merges per-request overrides onto the configured defaults.
func (s *Server) requestOptions(limit *int, diversify *bool, tone string) answeruc.Options {
	opts := s.defaults
	if limit != nil && *limit > 0 {
		opts.MaxResults = *limit
	}
	if diversify != nil {
		opts.Diversify = *diversify
	}
	if tone != "" {
		opts.Tone = tone
	}
	return opts
}

// finishPipeline records metrics and writes the pipeline result or
// its mapped error.
func (s *Server) finishPipeline(w http.ResponseWriter, result answeruc.Result, err error) {
	if err != nil {
		metrics.PipelineQueriesTotal.WithLabelValues("unknown", "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	intent := string(result.Intent)
	metrics.PipelineQueriesTotal.WithLabelValues(intent, "success").Inc()
	metrics.PipelineDuration.WithLabelValues(intent).Observe(float64(result.TimingMS.Total) / 1000)
	for _, note := range result.Context.EdgeNotes {
		metrics.PipelineEdgeNotesTotal.WithLabelValues(note).Inc()
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Result:   result,
		AnswerID: uuid.NewString(),
	})
}

// CatalogStats handles GET /v1/stats.
func (s *Server) CatalogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// VersionInfo handles GET /version.
func (s *Server) VersionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyPayload,
		domain.ErrInputShape,
		domain.ErrNotFound,
		domain.ErrRowSource,
		domain.ErrLLMProvider,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
