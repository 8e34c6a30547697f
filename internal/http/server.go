// Package http exposes the catalog queries and the seed load as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"salestats/internal/amqp"
	"salestats/internal/catalog"
	"salestats/internal/core"
	"salestats/internal/log"
	"salestats/internal/metrics"
	"salestats/internal/middleware/ratelimit"
	"salestats/internal/middleware/security"
	"salestats/internal/middleware/trace"
	"salestats/internal/services"
)

// Querier answers the read endpoints.
type Querier interface {
	ListTransactions(ctx context.Context, month, search string, page core.Page) (core.TransactionPage, error)
	Summary(ctx context.Context, month string) (core.Summary, error)
	Histogram(ctx context.Context, month string) ([]core.BucketCount, error)
	CategoryCounts(ctx context.Context, month string) ([]core.CategoryCount, error)
}

// Loader runs a synchronous bulk load.
type Loader interface {
	Load(ctx context.Context) (services.LoadResult, error)
}

// SeedPublisher queues a bulk load for the worker process.
type SeedPublisher interface {
	PublishSeedRequest(ctx context.Context, msg *amqp.SeedRequestMessage) error
}

// Deps are the collaborators of the server. Publisher, Pinger, Metrics and
// Logger are optional.
type Deps struct {
	Queries   Querier
	Loader    Loader
	Publisher SeedPublisher
	Pinger    catalog.Pinger
	Metrics   *metrics.Collector
	Logger    *log.Logger

	CORSAllowedOrigins []string
	InitRateLimit      int
}

// Server wraps http.Server with the API routes.
type Server struct {
	http.Server

	queries   Querier
	loader    Loader
	publisher SeedPublisher
	pinger    catalog.Pinger

	limiter      *ratelimit.Limiter
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		queries:   deps.Queries,
		loader:    deps.Loader,
		publisher: deps.Publisher,
		pinger:    deps.Pinger,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.InitRateLimit}),
		started:   time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/statistics", s.handleStatistics)
	mux.HandleFunc("GET /api/bar-chart", s.handleBarChart)
	mux.HandleFunc("GET /api/pie-chart", s.handlePieChart)

	// Loads replace the whole catalog, so they are throttled per client
	initialize := s.limiter.Middleware(security.ExtractClientIP, s.handleRateLimited)(http.HandlerFunc(s.handleInitialize))
	mux.Handle("GET /api/initialize", initialize)
	mux.Handle("POST /api/initialize", initialize)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = security.NewCORS(deps.CORSAllowedOrigins).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(security.ExtractClientIP, deps.Metrics).Middleware(handler)

	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	handler = log.Middleware(logger.WithComponent(log.ComponentHTTP))(handler)
	s.Handler = handler

	return s
}

// Shutdown stops the rate limiter and drains the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, security.ExtractClientIP(r))
	writeJSON(w, r, http.StatusTooManyRequests, errorResponse{Error: "Rate limit exceeded. Please try again later."})
}
