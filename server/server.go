// Package server exposes the tradebook ledger over HTTP.
//
// All endpoints answer a JSON envelope: {"success": true, "message":
// "success", "data": ...} on success, and {"success": false, "error":
// {"code", "message"}} on failure. Error details are included only outside
// production mode.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/etnz/tradebook"
)

// Server is the HTTP front end of a ledger.
type Server struct {
	ledger *tradebook.Ledger
	dev    bool // include error details in responses
	mux    *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithDevMode makes error responses carry details and wrapped messages.
// Never enable it in production.
func WithDevMode() Option {
	return func(s *Server) { s.dev = true }
}

// New creates a server around the given ledger.
func New(ledger *tradebook.Ledger, opts ...Option) *Server {
	s := &Server{ledger: ledger, mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/portfolio", s.handlePortfolio)
	s.mux.HandleFunc("GET /api/v1/returns", s.handleReturns)
	s.mux.HandleFunc("GET /api/v1/trade", s.handleTrades)
	s.mux.HandleFunc("POST /api/v1/trade", s.handleAddTrade)
	s.mux.HandleFunc("DELETE /api/v1/trade/{id}", s.handleRemoveTrade)
	s.mux.HandleFunc("PATCH /api/v1/trade/{id}", s.handleUpdateTrade)
}

// Handler returns the full handler chain, request logging included.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, req)
		log.Printf("%s %s %d %v", req.Method, req.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
