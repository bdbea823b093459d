package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storyline/internal/metrics"
)

// RouterConfig configures the HTTP middleware stack.
type RouterConfig struct {
	// CORSOrigins lists allowed origins; empty allows any origin.
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter builds the full HTTP handler: middleware stack plus every route of server.
func NewRouter(server ServerInterface, cfg RouterConfig, logger *zap.Logger) http.Handler {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Embedding-Tokens", "Location"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware())
	r.Use(requestTimeout(cfg.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	return HandlerWithOptions(server, ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: ParamErrorHandler,
	})
}
