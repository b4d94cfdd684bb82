// Package http serves the JSON API over the budget service.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"budsjett/internal/log"
	"budsjett/internal/services"
)

type Server struct {
	http.Server
	svc          *services.BudgetService
	rateLimiter  *rateLimiter
	logger       *log.Logger
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer wires the routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc *services.BudgetService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		svc:         svc,
		rateLimiter: newRateLimiter(120),
		logger:      logger.WithComponent(log.ComponentHTTP),
		started:     time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/report", s.wrap(s.handleReport))

	mux.HandleFunc("GET /api/transactions", s.wrap(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.wrap(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.wrap(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrap(s.handleDeleteTransaction))

	mux.HandleFunc("PUT /api/months/{month}/sub-categories/{id}", s.wrap(s.handleSetSubCategoryBudget))
	mux.HandleFunc("DELETE /api/months/{month}/sub-categories/{id}", s.wrap(s.handleClearSubCategoryOverride))
	mux.HandleFunc("PUT /api/months/{month}/buckets/{id}", s.wrap(s.handleSetBucketConfig))
	mux.HandleFunc("DELETE /api/months/{month}/buckets/{id}", s.wrap(s.handleClearBucketOverride))
	mux.HandleFunc("PUT /api/months/{month}/groups/{id}", s.wrap(s.handleSetGroupLimit))
	mux.HandleFunc("DELETE /api/months/{month}/groups/{id}", s.wrap(s.handleClearGroupLimit))
	mux.HandleFunc("PUT /api/months/{month}/goals/{id}", s.wrap(s.handleSetGoalMonthAmount))
	mux.HandleFunc("DELETE /api/months/{month}/goals/{id}", s.wrap(s.handleClearGoalMonthAmount))
	mux.HandleFunc("PUT /api/months/{month}/lock", s.wrap(s.handleSetMonthLock))
	mux.HandleFunc("PUT /api/months/{month}/template", s.wrap(s.handleAssignTemplate))

	mux.HandleFunc("GET /api/groups", s.wrap(s.handleListGroups))
	mux.HandleFunc("POST /api/groups", s.wrap(s.handleCreateGroup))
	mux.HandleFunc("PUT /api/groups/{id}", s.wrap(s.handleUpdateGroup))
	mux.HandleFunc("DELETE /api/groups/{id}", s.wrap(s.handleDeleteGroup))

	mux.HandleFunc("GET /api/sub-categories", s.wrap(s.handleListSubCategories))
	mux.HandleFunc("POST /api/sub-categories", s.wrap(s.handleCreateSubCategory))
	mux.HandleFunc("PUT /api/sub-categories/{id}", s.wrap(s.handleUpdateSubCategory))
	mux.HandleFunc("DELETE /api/sub-categories/{id}", s.wrap(s.handleDeleteSubCategory))

	mux.HandleFunc("GET /api/buckets", s.wrap(s.handleListBuckets))
	mux.HandleFunc("POST /api/buckets", s.wrap(s.handleCreateBucket))
	mux.HandleFunc("PUT /api/buckets/{id}", s.wrap(s.handleUpdateBucket))
	mux.HandleFunc("DELETE /api/buckets/{id}", s.wrap(s.handleDeleteBucket))

	mux.HandleFunc("GET /api/templates", s.wrap(s.handleListTemplates))
	mux.HandleFunc("POST /api/templates", s.wrap(s.handleCreateTemplate))
	mux.HandleFunc("PUT /api/templates/{id}/default", s.wrap(s.handleSetDefaultTemplate))
	mux.HandleFunc("DELETE /api/templates/{id}", s.wrap(s.handleDeleteTemplate))

	mux.HandleFunc("GET /api/accounts", s.wrap(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.wrap(s.handleCreateAccount))
	mux.HandleFunc("GET /api/main-categories", s.wrap(s.handleListMainCategories))
	mux.HandleFunc("POST /api/main-categories", s.wrap(s.handleCreateMainCategory))

	mux.HandleFunc("GET /api/settings/payday", s.wrap(s.handleGetPayday))
	mux.HandleFunc("PUT /api/settings/payday", s.wrap(s.handleSetPayday))

	return s
}

// wrap adds security headers, request-id logging and rate limiting on
// mutating methods.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := log.WithLogger(r.Context(), s.logger.With("request_id", requestID))
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.Logger.Log(ctx, log.RequestLevel(rw.statusCode), "request completed",
			log.FieldComponent, log.ComponentHTTP,
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter captures the status code for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, httpStatus := "ready", http.StatusOK
	checks := map[string]string{"storage": "ok"}
	if _, err := s.svc.Storage().Payday(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{"status": status, "checks": checks})
}

// Shutdown stops the server and its background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
