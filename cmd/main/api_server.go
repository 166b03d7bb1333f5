package main

import (
	"database/sql"
	"log/slog"
	"net/http"
)

const (
	actionShutdown = "shutdown"
	actionRestart  = "restart"
)

// ServerAPI holds the dependencies for the process-level API handlers.
type ServerAPI struct {
	db         *sql.DB
	actionChan chan string
	logger     *slog.Logger
}

// VersionInfo defines the structure for build/version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// NewServerAPI creates a new instance of the ServerAPI.
func NewServerAPI(db *sql.DB, actionChan chan string, logger *slog.Logger) *ServerAPI {
	return &ServerAPI{
		db:         db,
		actionChan: actionChan,
		logger:     logger,
	}
}

// RegisterRoutes sets up the routing for all authenticated /api/server endpoints.
func (a *ServerAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/server/version", a.handleVersion)
	mux.HandleFunc("/api/server/shutdown", a.handleAction(actionShutdown))
	mux.HandleFunc("/api/server/restart", a.handleAction(actionRestart))
}

// handleHealthCheck reports whether the database is reachable. It is served
// without authentication so container runtimes can probe it.
func (a *ServerAPI) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		a.logger.Warn("Health check failed", "error", err)
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion returns the application's build information.
func (a *ServerAPI) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})
}

// handleAction returns a handler that asks the run loop to perform action.
func (a *ServerAPI) handleAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if !requireScope(w, r, scopeServerControl) {
			return
		}

		a.logger.Warn("Server action initiated via API", "action", action)
		respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Server is going to " + action})

		go func() {
			a.actionChan <- action
		}()
	}
}
