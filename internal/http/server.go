// Package http exposes the transaction state over a JSON API. Read
// endpoints serve from a per-version response cache; command endpoints
// drive the store through the tracker service.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"saldo/internal/cache"
	"saldo/internal/services"
)

type Server struct {
	http.Server
	service     *services.TrackerService
	rateLimiter *rateLimiter

	// Read responses are cached keyed by state version. A new version
	// means new keys, so stale entries age out through TTL and LRU
	// eviction instead of explicit invalidation.
	listCache    *cache.LRUCache[[]byte]
	summaryCache *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, svc *services.TrackerService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		service:      svc,
		rateLimiter:  newRateLimiter(),
		listCache:    cache.NewLRUCache[[]byte](100, 5*time.Minute),
		summaryCache: cache.NewLRUCache[[]byte](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.listCache)
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/transactions/", s.withSecurityHeaders(s.handleTransactionByID))
	mux.HandleFunc("/undo", s.withSecurityHeaders(s.handleUndo))
	mux.HandleFunc("/redo", s.withSecurityHeaders(s.handleRedo))
	mux.HandleFunc("/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("/filters/search", s.withSecurityHeaders(s.handleSetSearch))
	mux.HandleFunc("/filters/type", s.withSecurityHeaders(s.handleSetType))
	mux.HandleFunc("/filters/dates", s.withSecurityHeaders(s.handleSetDateRange))
	mux.HandleFunc("/filters/amounts", s.withSecurityHeaders(s.handleSetAmountRange))
	mux.HandleFunc("/page", s.withSecurityHeaders(s.handleSetPage))
	mux.HandleFunc("/import", s.withSecurityHeaders(s.handleImport))
	mux.HandleFunc("/export", s.withSecurityHeaders(s.handleExport))

	return s
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// withSecurityHeaders adds security headers, rate limiting and request
// logging to a handler.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutating requests only
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path,
				"rejected_total", s.rateLimiter.rejectedCount())
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.shutdown()
			if n := s.rateLimiter.rejectedCount(); n > 0 {
				slog.Info("Rate limiter summary", "rejected_total", n)
			}
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
