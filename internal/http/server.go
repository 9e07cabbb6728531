package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"burnplan/internal/budget"
	"burnplan/internal/cache"
	"burnplan/internal/core"
	applog "burnplan/internal/log"
	"burnplan/internal/middleware/ratelimit"
	"burnplan/internal/middleware/trace"
)

// BudgetPlanner is the service surface the HTTP layer depends on.
// Satisfied by *services.BudgetService.
type BudgetPlanner interface {
	Distribute(ctx context.Context, req budget.Request) (core.MonthBudget, error)
	Forecast(ctx context.Context, history []core.Transaction, currentBalance int64, includedIDs []string) (core.InflationPrediction, error)
}

type Server struct {
	http.Server
	planner  BudgetPlanner
	history  budget.HistoryStore
	startDay int

	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware
	slogger     *applog.StructuredLogger

	// Cached month views keyed by user and financial month start.
	monthCache   *cache.LRUCache[core.MonthBudget]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// startDay is the default financial month start day for requests that omit it.
func NewServer(addr string, planner BudgetPlanner, history budget.HistoryStore, startDay int) *Server {
	mux := http.NewServeMux()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		planner:     planner,
		history:     history,
		startDay:    startDay,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:      trace.NewMiddleware(clientIP),
		slogger:     applog.NewStructuredLogger(logger),
		monthCache:  cache.NewLRUCache[core.MonthBudget](100, 5*time.Minute),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(applog.Middleware(logger)(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	s.cacheManager = cache.NewManager()
	s.cacheManager.Register(s.monthCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	limited := s.rateLimiter.Middleware(clientIP, nil)

	mux.HandleFunc("/healthz", handleHealth)
	mux.Handle("/api/budget/distribute", limited(http.HandlerFunc(s.handleDistribute)))
	mux.Handle("/api/budget", limited(http.HandlerFunc(s.handleGetBudget)))
	mux.Handle("/api/forecast", limited(http.HandlerFunc(s.handleForecast)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// clientIP extracts the client IP, honoring common proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
