package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"budget/internal/cache"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/metrics"
	"budget/internal/services"
)

const (
	transactionsCacheKey = "transactions"
	recurringCacheKey    = "recurring"
)

// Options tunes the server's caching and throttling behavior.
type Options struct {
	CacheTTL           time.Duration
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	service     *services.BudgetService
	rateLimiter *rateLimiter
	collector   *metrics.Collector
	registry    *prometheus.Registry
	now         func() time.Time

	// Collection caches in front of the store, purged on every mutation
	txCache        *cache.LRUCache[[]core.Transaction]
	recurringCache *cache.LRUCache[[]core.RecurringTransaction]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, service *services.BudgetService, opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 60
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector("budget")
	if err := collector.Register(registry); err != nil {
		slog.Warn("Failed to register metrics", "error", err)
	}

	s := &Server{
		service:        service,
		rateLimiter:    newRateLimiter(opts.RateLimitPerMinute),
		collector:      collector,
		registry:       registry,
		now:            time.Now,
		txCache:        cache.NewLRUCache[[]core.Transaction](8, opts.CacheTTL),
		recurringCache: cache.NewLRUCache[[]core.RecurringTransaction](8, opts.CacheTTL),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.txCache)
	s.cacheManager.Register(s.recurringCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Invalidation rides on the service so mutations from any caller,
	// the recurring processor included, purge the collections.
	service.OnTransactionChange(s.invalidateTransactions)
	service.OnRecurringChange(s.invalidateRecurring)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.withObservability)
	api.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleGetTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", s.handleUpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/recurring", s.handleListRecurring).Methods(http.MethodGet)
	api.HandleFunc("/recurring", s.handleCreateRecurring).Methods(http.MethodPost)
	api.HandleFunc("/recurring/{id}", s.handleGetRecurring).Methods(http.MethodGet)
	api.HandleFunc("/recurring/{id}", s.handleUpdateRecurring).Methods(http.MethodPut)
	api.HandleFunc("/recurring/{id}", s.handleDeleteRecurring).Methods(http.MethodDelete)

	api.HandleFunc("/analytics/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/analytics/categories", s.handleCategoryBreakdown).Methods(http.MethodGet)
	api.HandleFunc("/analytics/monthly", s.handleMonthlyTrend).Methods(http.MethodGet)
	api.HandleFunc("/analytics/shares", s.handleCategoryShares).Methods(http.MethodGet)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.Server.Handler
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withObservability adds security headers, rate limiting, request IDs
// and request logging, and records request metrics.
func (s *Server) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := applog.NewFields().
			WithRequestID(requestID).
			WithClientIP(clientIP).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"))
		slog.InfoContext(ctx, "Request started", started.ToSlice()...)

		// Rate limit mutating requests only
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondDetail(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		s.collector.RecordRequest(routeTemplate(r), r.Method, strconv.Itoa(rw.statusCode), duration)

		completed := applog.NewFields().
			WithRequestID(requestID).
			WithClientIP(clientIP).
			WithHTTPResponse(rw.statusCode, duration.Milliseconds(), rw.statusCode < http.StatusInternalServerError)
		slog.InfoContext(ctx, "Request completed", completed.ToSlice()...)
	})
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
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

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.ListTransactions(r.Context()); err != nil {
		respondDetail(w, http.StatusServiceUnavailable, "store not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Budget Planner API is running!"})
}

func (s *Server) invalidateTransactions() {
	s.txCache.Purge()
}

func (s *Server) invalidateRecurring() {
	s.recurringCache.Purge()
}

// listTransactions serves the transaction collection through the cache.
func (s *Server) listTransactions(ctx context.Context) ([]core.Transaction, error) {
	if txs, found := s.txCache.Get(transactionsCacheKey); found {
		s.collector.RecordCacheLookup(transactionsCacheKey, true)
		out := make([]core.Transaction, len(txs))
		copy(out, txs)
		return out, nil
	}
	s.collector.RecordCacheLookup(transactionsCacheKey, false)

	txs, err := s.service.ListTransactions(ctx)
	s.collector.RecordStoreOp("transaction", "list", err)
	if err != nil {
		return nil, err
	}
	s.txCache.Set(transactionsCacheKey, txs)
	return txs, nil
}

func (s *Server) listRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	if rts, found := s.recurringCache.Get(recurringCacheKey); found {
		s.collector.RecordCacheLookup(recurringCacheKey, true)
		out := make([]core.RecurringTransaction, len(rts))
		copy(out, rts)
		return out, nil
	}
	s.collector.RecordCacheLookup(recurringCacheKey, false)

	rts, err := s.service.ListRecurring(ctx)
	s.collector.RecordStoreOp("recurring_transaction", "list", err)
	if err != nil {
		return nil, err
	}
	s.recurringCache.Set(recurringCacheKey, rts)
	return rts, nil
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	limit        int
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter(limit int) *rateLimiter {
	rl := &rateLimiter{
		limit:       limit,
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now

	return client.requests <= rl.limit
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}
