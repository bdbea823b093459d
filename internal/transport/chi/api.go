package chi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorCode is the machine-readable kind of an error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeInvalidIdentifier ErrorCode = "invalid_identifier"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeInvalidQuery      ErrorCode = "invalid_query"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeSearchUnavailable ErrorCode = "search_unavailable"
	ErrorCodeStoreUnavailable  ErrorCode = "store_unavailable"
	ErrorCodeOperationFailed   ErrorCode = "operation_failed"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// MessageResponse acknowledges a mutation.
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"_id,omitempty"`
}

// StoryResponse is the story projection returned to clients. The embedding is never included.
type StoryResponse struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedOn time.Time `json:"createdOn"`
	Indexed   bool      `json:"indexed"`
}

// ScoreDetail explains a search score.
type ScoreDetail struct {
	Metric   string  `json:"metric"`
	Distance float64 `json:"distance"`
}

// SearchHit is a story projection with its similarity score merged in.
type SearchHit struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	CreatedOn   time.Time   `json:"createdOn"`
	Score       float64     `json:"score"`
	ScoreDetail ScoreDetail `json:"scoreDetail"`
}

// CreateStoryRequest is the body of POST /api/v1/story.
type CreateStoryRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// UpdateStoryRequest is the body of PUT /api/v1/story/{id}. Omitted fields are unchanged.
type UpdateStoryRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// StoryID is the {id} path parameter.
type StoryID = string

// SearchStoriesParams are the query parameters of GET /api/v1/search.
type SearchStoriesParams struct {
	Q *string `form:"q,omitempty" json:"q,omitempty"`
}

// ServerInterface is implemented by Server.
type ServerInterface interface {
	// (GET /)
	Root(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/stories)
	ListStories(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/search)
	SearchStories(w http.ResponseWriter, r *http.Request, params SearchStoriesParams)
	// (POST /api/v1/story)
	CreateStory(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/story/{id})
	GetStory(w http.ResponseWriter, r *http.Request, id StoryID)
	// (PUT /api/v1/story/{id})
	UpdateStory(w http.ResponseWriter, r *http.Request, id StoryID)
	// (DELETE /api/v1/story/{id})
	DeleteStory(w http.ResponseWriter, r *http.Request, id StoryID)
}

// MiddlewareFunc wraps a single route.
type MiddlewareFunc func(http.Handler) http.Handler

// InvalidParamFormatError reports a path or query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ServerInterfaceWrapper binds parameters and dispatches to the ServerInterface.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	handler := http.Handler(h)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) bindID(w http.ResponseWriter, r *http.Request) (StoryID, bool) {
	var id StoryID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

// Root operation middleware
func (siw *ServerInterfaceWrapper) Root(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Root)
}

// HealthCheck operation middleware
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthCheck)
}

// Metrics operation middleware
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Metrics)
}

// ListStories operation middleware
func (siw *ServerInterfaceWrapper) ListStories(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListStories)
}

// SearchStories operation middleware
func (siw *ServerInterfaceWrapper) SearchStories(w http.ResponseWriter, r *http.Request) {
	var params SearchStoriesParams
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &params.Q); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.SearchStories(w, r, params)
	})
}

// CreateStory operation middleware
func (siw *ServerInterfaceWrapper) CreateStory(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateStory)
}

// GetStory operation middleware
func (siw *ServerInterfaceWrapper) GetStory(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetStory(w, r, id)
	})
}

// UpdateStory operation middleware
func (siw *ServerInterfaceWrapper) UpdateStory(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UpdateStory(w, r, id)
	})
}

// DeleteStory operation middleware
func (siw *ServerInterfaceWrapper) DeleteStory(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteStory(w, r, id)
	})
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts every route of si on the base router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/", wrapper.Root)
		r.Get(options.BaseURL+"/health", wrapper.HealthCheck)
		r.Get(options.BaseURL+"/metrics", wrapper.Metrics)
		r.Get(options.BaseURL+"/api/v1/stories", wrapper.ListStories)
		r.Get(options.BaseURL+"/api/v1/search", wrapper.SearchStories)
		r.Post(options.BaseURL+"/api/v1/story", wrapper.CreateStory)
		r.Get(options.BaseURL+"/api/v1/story/{id}", wrapper.GetStory)
		r.Put(options.BaseURL+"/api/v1/story/{id}", wrapper.UpdateStory)
		r.Delete(options.BaseURL+"/api/v1/story/{id}", wrapper.DeleteStory)
	})
	return r
}
