// Package http exposes the ledger as a JSON API: calendar windows,
// transactions, recurring templates and accounts.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"movimenti/internal/cache"
	"movimenti/internal/config"
	"movimenti/internal/log"
	"movimenti/internal/middleware/ratelimit"
	"movimenti/internal/middleware/security"
	"movimenti/internal/middleware/trace"
	"movimenti/internal/services"
)

// Server wires the service layer behind the API routes, with security
// headers, request tracing, write rate limiting and a window response cache.
type Server struct {
	http.Server

	transactions *services.TransactionService
	templates    *services.TemplateService
	calendar     *services.CalendarService
	accounts     *services.AccountService

	windowCache  *cache.LRUCache[calendarResponse]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	detector     *security.Detector

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(cfg *config.Config,
	transactions *services.TransactionService,
	templates *services.TemplateService,
	calendar *services.CalendarService,
	accounts *services.AccountService,
) *Server {
	mux := http.NewServeMux()
	detector := security.NewDetector()

	s := &Server{
		transactions: transactions,
		templates:    templates,
		calendar:     calendar,
		accounts:     accounts,

		windowCache:  cache.NewLRUCache[calendarResponse](cfg.CacheSize, cfg.CacheTTL),
		cacheManager: cache.NewManager(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		detector: detector,
		started:  time.Now(),
	}

	s.cacheManager.Register(s.windowCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/calendar", s.handleCalendar)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/templates", s.handleTemplates)
	mux.HandleFunc("/api/templates/cancel", s.handleTemplateCancel)
	mux.HandleFunc("/api/accounts", s.handleAccounts)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(detector.ExtractClientIP)
	httpLogger := log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP)(handler)
	handler = s.flagProbes(handler)
	handler = headers.Middleware(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = log.Middleware(httpLogger)(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// flagProbes logs requests that look like scanner probes. They are served
// normally; the detector only counts them.
func (s *Server) flagProbes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request pattern",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// invalidateWindows drops every cached calendar window of the user. Called
// after any mutation that can change what a window contains.
func (s *Server) invalidateWindows(userID string) {
	if n := s.windowCache.DeletePrefix(userID + "|"); n > 0 {
		slog.Debug("Calendar cache invalidated", "user_id", userID, "entries", n)
	}
}

// Shutdown stops the background goroutines and then the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
