// Package http exposes the tracker as a JSON API on a chi router.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"spesa/internal/core"
	"spesa/internal/log"
	"spesa/internal/middleware/ratelimit"
	"spesa/internal/middleware/security"
	"spesa/internal/middleware/trace"
	"spesa/internal/services"
)

// Tracker is the set of tracker operations the API serves.
type Tracker interface {
	AddExpense(ctx context.Context, in services.ExpenseInput) (core.Expense, error)
	EditExpense(ctx context.Context, id int64, in services.ExpenseInput) (core.Expense, error)
	DeleteExpense(ctx context.Context, id int64, confirmed bool) (services.Decision, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, period *core.Period) ([]core.Expense, error)

	AddCategory(ctx context.Context, name string) (core.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64, confirmed bool) (services.Decision, error)
	ListCategories(ctx context.Context) (core.Categories, error)

	Classify(ctx context.Context, item string) (core.Category, error)
	UpsertMapping(ctx context.Context, item string, categoryID int64) (core.Mapping, error)
	RemoveMapping(ctx context.Context, item string) error
	ListMappings(ctx context.Context) ([]core.Mapping, error)

	MonthlySummary(ctx context.Context, p core.Period) (core.Summary, error)
	CategoryDetail(ctx context.Context, categoryID int64, p core.Period) (core.CategoryDetail, error)
	TrailingWindow(ctx context.Context, n int) ([]core.MonthTotal, error)

	Ping(ctx context.Context) error
}

// Options tunes the server. Zero values are usable.
type Options struct {
	Logger            *log.Logger
	Now               func() time.Time
	TrendMonths       int
	RequestsPerMinute int
}

type Server struct {
	http.Server
	tracker     Tracker
	logger      *log.Logger
	now         func() time.Time
	trendMonths int

	detector    *security.Detector
	tracer      *trace.Middleware
	rateLimiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, tracker Tracker, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TrendMonths <= 0 {
		opts.TrendMonths = 6
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector()
	s := &Server{
		tracker:     tracker,
		logger:      logger,
		now:         opts.Now,
		trendMonths: opts.TrendMonths,
		detector:    detector,
		tracer:      trace.NewMiddleware(detector.ExtractClientIP, opts.Logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) }))
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware(s.logger))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Get("/{id}", s.handleGetExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Put("/{id}", s.handleRenameCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListMappings)
			r.Put("/{item}", s.handleUpsertMapping)
			r.Delete("/{item}", s.handleRemoveMapping)
		})
		r.Get("/classify", s.handleClassify)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/monthly", s.handleMonthlyReport)
			r.Get("/monthly/{categoryID}", s.handleCategoryReport)
			r.Get("/trend", s.handleTrendReport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, log.ErrorTypeValidation, "method not allowed").Write(w)
	})
	return r
}

// Metrics summarizes the traffic seen by the middleware chain.
type Metrics struct {
	Requests           int64 `json:"requests"`
	AvgResponseMicros  int64 `json:"avgResponseMicros"`
	RateLimited        int64 `json:"rateLimited"`
	ActiveClients      int64 `json:"activeClients"`
	SuspiciousRequests int64 `json:"suspiciousRequests"`
}

func (s *Server) Metrics() Metrics {
	tm := s.tracer.GetMetrics()
	rm := s.rateLimiter.GetMetrics()
	return Metrics{
		Requests:           tm.TotalRequests,
		AvgResponseMicros:  tm.AverageResponseTime,
		RateLimited:        rm.TotalHits,
		ActiveClients:      rm.ClientCount,
		SuspiciousRequests: s.detector.GetMetrics().SuspiciousRequests,
	}
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		m := s.Metrics()
		s.logger.Info("HTTP server shutting down",
			"requests", m.Requests,
			"avg_response_us", m.AvgResponseMicros,
			"rate_limited", m.RateLimited,
			"suspicious_requests", m.SuspiciousRequests,
			log.FieldOperation, log.OpShutdown)
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
