// Package http serves the ledger JSON API: login, transaction CRUD, dashboard
// metrics and category reports.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"divebooks/internal/auth"
	"divebooks/internal/ledger"
)

// Options carries the auth knobs the server needs beyond its stores.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	// AuthRequired gates the data endpoints behind a bearer token. Login and
	// health endpoints are always open.
	AuthRequired bool
}

type Server struct {
	http.Server
	store ledger.TransactionStore
	users ledger.UserStore
	opts  Options
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store ledger.TransactionStore, users ledger.UserStore, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store: store,
		users: users,
		opts:  opts,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/auth/login", s.withCommon(s.handleLogin))
	mux.HandleFunc("/transactions", s.withCommon(s.protect(s.handleTransactions)))
	mux.HandleFunc("/dashboard/metrics", s.withCommon(s.protect(s.handleDashboardMetrics)))
	mux.HandleFunc("/reports/categories", s.withCommon(s.protect(s.handleCategoryReport)))

	return s
}

type contextKey string

const claimsKey contextKey = "auth_claims"

// claimsFrom returns the verified token claims for the request, if any.
func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// withCommon adds CORS, security headers and request logging. The API is
// consumed from a separately hosted frontend, so cross-origin requests are
// allowed from any origin.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), contextKey("request_id"), requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// protect enforces a bearer token when AuthRequired is set. When auth is off
// a valid token is still parsed if present so handlers can attribute writes.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.ClaimsFromRequest(r, []byte(s.opts.JWTSecret))
		if err == nil && claims != nil {
			r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
		}
		if s.opts.AuthRequired && claims == nil {
			writeMessage(w, http.StatusUnauthorized, "Authentication required.")
			return
		}
		next(w, r)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
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

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks the store is reachable before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.ListTransactions(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
