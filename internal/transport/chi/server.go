// Package chi exposes the analysis pipeline as a JSON API on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/domain/geo"
	analysisuc "github.com/josephmathew0/Monty/internal/usecase/analysis"
	healthuc "github.com/josephmathew0/Monty/internal/usecase/health"
)

// DefaultMaxUploadBytes caps resume uploads.
const DefaultMaxUploadBytes = 5 << 20

// Stable error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest             = "bad_request"
	CodeValidationFailed       = "validation_failed"
	CodePayloadTooLarge        = "payload_too_large"
	CodeSchemaViolation        = "schema_violation"
	CodeDataUnavailable        = "data_unavailable"
	CodeNotFound               = "not_found"
	CodeRateLimited            = "rate_limited"
	CodeEmbeddingProviderError = "embedding_provider_error"
	CodeInternalError          = "internal_error"
)

// resumeFormField is the multipart field carrying the resume file.
const resumeFormField = "resume"

// Analyzer is the analysis use case consumed by the API.
type Analyzer interface {
	Analyze(ctx context.Context, resume []byte, region geo.Region) (analysisuc.Result, error)
	Match(ctx context.Context, text string, topN int) ([]domain.RankedMatch, error)
	Distribution(ctx context.Context, title string, region geo.Region) analysisuc.Distribution
	Occupations(ctx context.Context, filter string) domain.OccupationTable
	GeoRows(ctx context.Context, filter string) domain.GeoTable
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MatchRequest is the body of POST /v1/match.
type MatchRequest struct {
	Text string `json:"text"`
	TopN int    `json:"top_n,omitempty"`
}

// MatchResponse lists ranked occupations, best first.
type MatchResponse struct {
	Matches []domain.RankedMatch `json:"matches"`
}

// ListResponse wraps a list of rows.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the monty HTTP API.
type Server struct {
	analysis      Analyzer
	health        HealthReporter
	maxUpload     int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxUpload <= 0 uses DefaultMaxUploadBytes.
func NewServer(analysis Analyzer, health HealthReporter, maxUpload int64, logger *zap.Logger) *Server {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	s := &Server{
		analysis:  analysis,
		health:    health,
		maxUpload: maxUpload,
		logger:    logger,
	}
	// Order matters: schema violations also match ErrInvalidInput,
	// rate-limited provider calls also match ErrEmbeddingProviderError.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSchemaViolation, http.StatusInternalServerError, CodeSchemaViolation),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrDataUnavailable, http.StatusServiceUnavailable, CodeDataUnavailable),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.Analyze)
		r.Post("/match", s.Match)
		r.Get("/occupations", s.ListOccupations)
		r.Get("/occupations/geo", s.GeoDistribution)
		r.Get("/occupations/geo/rows", s.ListGeoRows)
	})
}

// Analyze handles POST /v1/analyze?region=. The body is the raw PDF or a multipart
// form with the file in the "resume" field.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	region, err := geo.ParseRegion(r.URL.Query().Get("region"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	data, err := readResume(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
				"resume exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "resume is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.analysis.Analyze(ctx, data, region)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setEmbeddingHeaders(w, usage)

	writeJSON(w, http.StatusOK, res)
}

// Match handles POST /v1/match.
func (s *Server) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "text is required")
		return
	}
	if req.TopN < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "top_n must not be negative")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	matches, err := s.analysis.Match(ctx, req.Text, req.TopN)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setEmbeddingHeaders(w, usage)

	writeJSON(w, http.StatusOK, MatchResponse{Matches: matches})
}

// ListOccupations handles GET /v1/occupations?q=.
func (s *Server) ListOccupations(w http.ResponseWriter, r *http.Request) {
	tbl := s.analysis.Occupations(r.Context(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, ListResponse[domain.OccupationRecord]{
		Items: nonNil(tbl.Rows),
		Total: tbl.Len(),
	})
}

// GeoDistribution handles GET /v1/occupations/geo?title=&region=.
func (s *Server) GeoDistribution(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := strings.TrimSpace(q.Get("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "title is required")
		return
	}
	region, err := geo.ParseRegion(q.Get("region"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.analysis.Distribution(r.Context(), title, region))
}

// ListGeoRows handles GET /v1/occupations/geo/rows?filter=.
func (s *Server) ListGeoRows(w http.ResponseWriter, r *http.Request) {
	tbl := s.analysis.GeoRows(r.Context(), r.URL.Query().Get("filter"))
	writeJSON(w, http.StatusOK, ListResponse[domain.GeoEmploymentRecord]{
		Items: nonNil(tbl.Rows),
		Total: tbl.Len(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// EmbeddingTokensHeader reports provider tokens spent on the request.
const EmbeddingTokensHeader = "X-Embedding-Tokens"

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set(EmbeddingTokensHeader, strconv.Itoa(usage.Tokens()))
	}
}

func readResume(r *http.Request) ([]byte, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		return io.ReadAll(r.Body) //nolint:wrapcheck // classified by the caller
	}

	f, _, err := r.FormFile(resumeFormField)
	if err != nil {
		return nil, err //nolint:wrapcheck // classified by the caller
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f) //nolint:wrapcheck // classified by the caller
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var sv *domain.SchemaViolationError
	if errors.As(err, &sv) {
		return sv.Error()
	}
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrNotFound,
		domain.ErrDataUnavailable,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
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
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
