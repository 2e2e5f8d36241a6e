// Package http exposes the ledger over a JSON API: record CRUD under
// /api, derived reports under /api/reports, and the usual health probes.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/services"
)

const reportCacheTTL = 30 * time.Second

// defaultCategories seed the registry; users extend it at runtime.
var (
	defaultIncomeCategories  = []string{"Salary", "Other"}
	defaultExpenseCategories = []string{"Food", "Housing", "Transport", "Health", "Leisure", "Debt", "Other"}
)

type Server struct {
	http.Server
	ledger      *services.Ledger
	categories  *core.CategoryRegistry
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	now         func() time.Time

	// Report caches. Reports recompute from the full history on every
	// call, so repeated dashboard polls are worth short-circuiting.
	balanceCache  *cache.LRUCache[core.BalanceSheet]
	forecastCache *cache.LRUCache[[]core.ForecastPeriod]
	caches        *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware around a ledger.
func NewServer(addr string, ledger *services.Ledger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ledger:        ledger,
		categories:    core.NewCategoryRegistry(defaultIncomeCategories, defaultExpenseCategories),
		rateLimiter:   newRateLimiter(),
		now:           time.Now,
		metrics:       &securityMetrics{},
		balanceCache:  cache.NewLRUCache[core.BalanceSheet](4, reportCacheTTL),
		forecastCache: cache.NewLRUCache[[]core.ForecastPeriod](4, reportCacheTTL),
		caches:        cache.NewManager(),
	}
	s.caches.Register(s.balanceCache)
	s.caches.Register(s.forecastCache)
	s.caches.StartCleanup(5 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/transactions", s.with(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.with(s.handleListTransactions))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.with(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/cards", s.with(s.handleCreateCard))
	mux.HandleFunc("GET /api/cards", s.with(s.handleListCards))
	mux.HandleFunc("DELETE /api/cards/{id}", s.with(s.handleDeleteCard))

	mux.HandleFunc("POST /api/debts", s.with(s.handleCreateDebt))
	mux.HandleFunc("GET /api/debts", s.with(s.handleListDebts))
	mux.HandleFunc("DELETE /api/debts/{id}", s.with(s.handleDeleteDebt))
	mux.HandleFunc("POST /api/debts/{id}/pay", s.with(s.handlePayDebt))
	mux.HandleFunc("POST /api/debts/{id}/reset", s.with(s.handleResetDebt))

	mux.HandleFunc("POST /api/budget-items", s.with(s.handleCreateBudgetItem))
	mux.HandleFunc("GET /api/budget-items", s.with(s.handleListBudgetItems))
	mux.HandleFunc("DELETE /api/budget-items/{id}", s.with(s.handleDeleteBudgetItem))

	mux.HandleFunc("POST /api/recurring", s.with(s.handleCreateRecurring))
	mux.HandleFunc("GET /api/recurring", s.with(s.handleListRecurring))
	mux.HandleFunc("DELETE /api/recurring/{id}", s.with(s.handleDeleteRecurring))

	mux.HandleFunc("PUT /api/position", s.with(s.handleSetPosition))
	mux.HandleFunc("GET /api/position", s.with(s.handleGetPosition))

	mux.HandleFunc("GET /api/categories", s.with(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.with(s.handleAddCategory))

	mux.HandleFunc("GET /api/reports/balance-sheet", s.with(s.handleBalanceSheet))
	mux.HandleFunc("GET /api/reports/reminders", s.with(s.handleReminders))
	mux.HandleFunc("GET /api/reports/forecast", s.with(s.handleForecast))
	mux.HandleFunc("GET /api/reports/feasibility", s.with(s.handleFeasibility))
	mux.HandleFunc("GET /api/reports/debt-stats", s.with(s.handleDebtStats))
	mux.HandleFunc("GET /api/reports/card-status", s.with(s.handleCardStatus))
	mux.HandleFunc("GET /api/reports/categories", s.with(s.handleCategories))
	mux.HandleFunc("GET /api/reports/period", s.with(s.handlePeriodTotals))
	mux.HandleFunc("GET /api/reports/daily", s.with(s.handleDailySeries))
	mux.HandleFunc("GET /api/reports/monthly", s.with(s.handleMonthlySeries))

	return s
}

// Shutdown stops the background cleanup goroutines and then the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// today truncates the server clock to a calendar date.
func (s *Server) today() core.Date {
	return core.Today(s.now())
}

// invalidateReports drops cached report views after any write.
func (s *Server) invalidateReports() {
	s.balanceCache.Delete(reportKey)
	s.forecastCache.Delete(reportKey)
}

const reportKey = "current"

// with wraps a handler with request ID propagation, rate limiting on
// mutations, security headers and request logging.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request",
				"request_id", requestID, "client_ip", clientIP, "url", r.URL.Path)
		}

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Request-ID", requestID)

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
