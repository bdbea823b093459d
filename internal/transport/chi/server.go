package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storyline/internal/domain"
	"github.com/kailas-cloud/storyline/internal/domain/search/result"
	domstory "github.com/kailas-cloud/storyline/internal/domain/story"
	logpkg "github.com/kailas-cloud/storyline/internal/logger"
	healthuc "github.com/kailas-cloud/storyline/internal/usecase/health"
)

// maxBodyBytes bounds request bodies; the largest valid story is well under it.
const maxBodyBytes = 64 << 10

const landingText = "Storyline: write short stories and find them by meaning"

// Success messages.
const (
	msgCreated = "story created successfully"
	msgUpdated = "story updated successfully"
	msgDeleted = "story deleted successfully"
)

// StoryService is the story mutation controller.
type StoryService interface {
	Create(ctx context.Context, title, body string) (domstory.Story, error)
	List(ctx context.Context) ([]domstory.Story, error)
	Get(ctx context.Context, rawID string) (domstory.Story, error)
	Update(ctx context.Context, rawID string, title, body *string) error
	Delete(ctx context.Context, rawID string) error
}

// SearchService is the retrieval engine.
type SearchService interface {
	Search(ctx context.Context, text string) ([]result.Result, error)
}

// HealthService reports dependency health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	stories       StoryService
	search        SearchService
	health        HealthService
	metrics       http.Handler
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(stories StoryService, search SearchService, health HealthService) *Server {
	return &Server{
		stories: stories,
		search:  search,
		health:  health,
		metrics: promhttp.Handler(),
		// order matters: an OperationError also matches ErrOperationFailed
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrInvalidIdentifier, http.StatusBadRequest, ErrorCodeInvalidIdentifier),
			sentinelHandler(domain.ErrValidation, http.StatusBadRequest, ErrorCodeValidationFailed),
			sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery),
			sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
			sentinelHandler(domain.ErrSearchUnavailable, http.StatusInternalServerError, ErrorCodeSearchUnavailable),
			sentinelHandler(domain.ErrStoreUnavailable, http.StatusInternalServerError, ErrorCodeStoreUnavailable),
			sentinelHandler(domain.ErrOperationFailed, http.StatusInternalServerError, ErrorCodeOperationFailed),
		},
	}
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, landingText)
}

// ListStories handles GET /api/v1/stories.
func (s *Server) ListStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.stories.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]StoryResponse, len(stories))
	for i := range stories {
		items[i] = storyToResponse(&stories[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// SearchStories handles GET /api/v1/search.
func (s *Server) SearchStories(w http.ResponseWriter, r *http.Request, params SearchStoriesParams) {
	var q string
	if params.Q != nil {
		q = *params.Q
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Search(ctx, q)
	setEmbeddingHeaders(ctx, w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchHit, len(results))
	for i := range results {
		items[i] = searchResultToResponse(&results[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateStory handles POST /api/v1/story.
func (s *Server) CreateStory(w http.ResponseWriter, r *http.Request) {
	var req CreateStoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	st, err := s.stories.Create(ctx, req.Title, req.Body)
	setEmbeddingHeaders(ctx, w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/story/"+st.ID().String())
	writeJSON(w, http.StatusCreated, MessageResponse{Message: msgCreated, ID: st.ID().String()})
}

// GetStory handles GET /api/v1/story/{id}.
func (s *Server) GetStory(w http.ResponseWriter, r *http.Request, id StoryID) {
	st, err := s.stories.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storyToResponse(&st))
}

// UpdateStory handles PUT /api/v1/story/{id}.
func (s *Server) UpdateStory(w http.ResponseWriter, r *http.Request, id StoryID) {
	var req UpdateStoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	err := s.stories.Update(ctx, id, req.Title, req.Body)
	setEmbeddingHeaders(ctx, w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msgUpdated})
}

// DeleteStory handles DELETE /api/v1/story/{id}.
func (s *Server) DeleteStory(w http.ResponseWriter, r *http.Request, id StoryID) {
	if err := s.stories.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msgDeleted})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

// ParamErrorHandler answers requests whose parameters failed to bind.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) && pe.ParamName == "id" {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidIdentifier, "invalid story id")
		return
	}
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

func setEmbeddingHeaders(ctx context.Context, w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.Tokens()))
		logpkg.Annotate(ctx,
			zap.Int("embedding_tokens", usage.Tokens()),
			zap.Int("embedding_calls", usage.Calls()),
		)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context())
	logger.Warn("domain error", zap.Error(err))
	msg := domain.PublicMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func storyToResponse(st *domstory.Story) StoryResponse {
	return StoryResponse{
		ID:        st.ID().String(),
		Title:     st.Title(),
		Body:      st.Body(),
		CreatedOn: st.CreatedOn(),
		Indexed:   st.Indexed(),
	}
}

func searchResultToResponse(r *result.Result) SearchHit {
	d := r.Detail()
	return SearchHit{
		ID:        r.ID().String(),
		Title:     r.Title(),
		Body:      r.Body(),
		CreatedOn: r.CreatedOn(),
		Score:     r.Score(),
		ScoreDetail: ScoreDetail{
			Metric:   d.Metric,
			Distance: d.Distance,
		},
	}
}
