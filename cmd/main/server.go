package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/CTAG07/babble/pkg/library"
	"github.com/prometheus/client_golang/prometheus"
)

// Server wires the library, the API handlers and the HTTP mux together.
type Server struct {
	config    *Config
	db        *sql.DB
	logger    *slog.Logger
	lib       *library.Library
	authAPI   *AuthAPI
	corpusAPI *CorpusAPI
	serverAPI *ServerAPI
	mux       *http.ServeMux
}

// NewServer creates the server and registers every route. The metrics in reg are
// served on /metrics; a nil reg disables metrics.
func NewServer(config *Config, logger *slog.Logger, db *sql.DB, reg *prometheus.Registry, actionChan chan string) (*Server, error) {
	lib, err := library.New(db)
	if err != nil {
		return nil, fmt.Errorf("error creating corpus library: %w", err)
	}
	lib.SetLogger(logger)

	var metrics Metrics = NoopMetrics{}
	if reg != nil {
		metrics = NewPromMetrics(config.Server.MetricsNamespace, reg)
	}

	server := &Server{
		config:    config,
		db:        db,
		logger:    logger,
		lib:       lib,
		authAPI:   NewAuthAPI(db, logger),
		corpusAPI: NewCorpusAPI(lib, config.Generation, metrics, logger),
		serverAPI: NewServerAPI(db, actionChan, logger),
		mux:       http.NewServeMux(),
	}

	apiMux := http.NewServeMux()
	server.authAPI.RegisterRoutes(apiMux)
	server.corpusAPI.RegisterRoutes(apiMux)
	server.serverAPI.RegisterRoutes(apiMux)

	// Health and metrics stay unauthenticated so probes and scrapers can reach them.
	server.mux.HandleFunc("/api/health", server.serverAPI.handleHealthCheck)
	if reg != nil {
		server.mux.Handle("/metrics", metricsHandler(reg))
	}
	server.mux.Handle("/api/", server.authAPI.Authenticate(apiMux))

	return server, nil
}

// Handler returns the root handler with request logging applied.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Close releases the library's prepared statements.
func (s *Server) Close() {
	s.lib.Close()
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

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.String("remote_addr", getClientIP(r)),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}

func getClientIP(r *http.Request) string {
	// The X-Real-Ip header contains the forwarded IP in some cases (like from nginx)
	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		return realIP
	}

	// The first entry of X-Forwarded-For is the original client.
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		ips := strings.Split(forwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
