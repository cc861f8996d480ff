// Package server provides the HTTP REST API for reviewing resume changes.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-review/internal/db"
	"github.com/jonathan/resume-review/internal/diff"
	"github.com/jonathan/resume-review/internal/review"
	"github.com/jonathan/resume-review/internal/server/ratelimit"
)

// History reads applied reviews. *db.DB implements it.
type History interface {
	GetAppliedReview(ctx context.Context, id uuid.UUID) (*db.AppliedReview, error)
	ListAppliedReviews(ctx context.Context, sessionID string, limit int) ([]db.AppliedReviewSummary, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       review.Store
	applier     review.Applier
	history     History
	diffOpts    diff.Options
	corsOrigin  string
	rateLimiter *ratelimit.Limiter
	locks       sessionLocks
}

// Config holds server configuration
type Config struct {
	Port       int
	CORSOrigin string
	Store      review.Store
	Applier    review.Applier
	History    History // optional
	Diff       diff.Options
	RateLimit  *ratelimit.Config
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server requires a session store")
	}
	if cfg.Applier == nil {
		return nil, fmt.Errorf("server requires an applier")
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}

	s := &Server{
		store:       cfg.Store,
		applier:     cfg.Applier,
		history:     cfg.History,
		diffOpts:    cfg.Diff,
		corsOrigin:  cfg.CORSOrigin,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /reviews", s.handleCreateReview)
	mux.HandleFunc("GET /reviews/{id}", s.handleGetReview)
	mux.HandleFunc("DELETE /reviews/{id}", s.handleDeleteReview)
	mux.HandleFunc("PUT /reviews/{id}/documents", s.handleReplaceDocuments)

	mux.HandleFunc("POST /reviews/{id}/decisions", s.handleDecide)
	mux.HandleFunc("POST /reviews/{id}/toggle", s.handleToggle)
	mux.HandleFunc("POST /reviews/{id}/accept-all", s.handleAcceptAll)
	mux.HandleFunc("POST /reviews/{id}/reject-all", s.handleRejectAll)
	mux.HandleFunc("POST /reviews/{id}/sections/{section}/accept-all", s.handleSectionAcceptAll)
	mux.HandleFunc("POST /reviews/{id}/sections/{section}/reject-all", s.handleSectionRejectAll)
	mux.HandleFunc("POST /reviews/{id}/reset", s.handleReset)

	mux.HandleFunc("GET /reviews/{id}/export", s.handleExport)
	mux.HandleFunc("POST /reviews/{id}/apply", s.handleApply)

	mux.HandleFunc("GET /applied-reviews", s.handleListApplied)
	mux.HandleFunc("GET /applied-reviews/{id}", s.handleGetApplied)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	log.Println("[server] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	log.Println("[server] stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[server] %s %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRateLimit rejects clients over their per-route budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
		}
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds()+0.5)))
			}
			log.Printf("[server] rate limit exceeded for %s on %s %s", clientID(r), r.Method, r.URL.Path)
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps err to its status code and writes it.
func (s *Server) failure(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] request failed: %v", err)
	}
	s.errorResponse(w, status, err.Error())
}
