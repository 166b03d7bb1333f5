package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

const authSchema = `
CREATE TABLE IF NOT EXISTS api_keys (
    id            INTEGER   PRIMARY KEY,
    key_hash      TEXT      NOT NULL UNIQUE,
    scopes        TEXT      NOT NULL,
    description   TEXT      NOT NULL
);
`

// authHeader carries the raw API key on every authenticated request.
const authHeader = "babble-auth"

const (
	scopeMaster        = "*"
	scopeCorpusRead    = "corpus:read"
	scopeCorpusWrite   = "corpus:write"
	scopeAuthManage    = "auth:manage"
	scopeServerControl = "server:control"
)

var knownScopes = map[string]struct{}{
	scopeMaster:        {},
	scopeCorpusRead:    {},
	scopeCorpusWrite:   {},
	scopeAuthManage:    {},
	scopeServerControl: {},
}

type contextKey string

const contextKeyPermissions = contextKey("permissions")

// Permissions holds the authentication info for a request.
type Permissions struct {
	ScopeSet map[string]struct{}
}

// AuthAPI holds the dependencies for the authentication API handlers.
type AuthAPI struct {
	db     *sql.DB
	logger *slog.Logger
}

func setupAuthSchema(db *sql.DB) error {
	_, err := db.Exec(authSchema)
	return err
}

func NewAuthAPI(db *sql.DB, logger *slog.Logger) *AuthAPI {
	return &AuthAPI{
		db:     db,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/auth endpoints.
func (a *AuthAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/me", a.handleCheckMe)
	mux.HandleFunc("/api/auth/keys", a.handleKeys)
	mux.HandleFunc("/api/auth/keys/", a.handleKeyByID)
}

// APIKeyInfo is the structure returned when listing keys.
type APIKeyInfo struct {
	ID          int      `json:"id"`
	Scopes      []string `json:"scopes"`
	Description string   `json:"description"`
}

// CreateKeyRequest is the expected JSON body for creating a new key.
type CreateKeyRequest struct {
	Scopes      []string `json:"scopes"`
	Description string   `json:"description"`
}

// CreateKeyResponse is the JSON response after creating a key. RawKey is only
// ever shown here; the database keeps its hash.
type CreateKeyResponse struct {
	ID     int      `json:"id"`
	RawKey string   `json:"raw_key"`
	Scopes []string `json:"scopes"`
}

// Authenticate resolves the key in the babble-auth header into a Permissions
// value on the request context. While no keys exist the API is open and every
// request gets the master scope.
func (a *AuthAPI) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keyCount, err := a.countKeys(r.Context())
		if err != nil {
			a.logger.Error("Authenticate failed to count keys", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		var scopes []string
		if keyCount == 0 {
			scopes = []string{scopeMaster}
		} else {
			apiKey := r.Header.Get(authHeader)
			if apiKey == "" {
				respondWithError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
				return
			}
			var scopesStr string
			err = a.db.QueryRowContext(r.Context(), "SELECT scopes FROM api_keys WHERE key_hash = ?", hashAPIKey(apiKey)).Scan(&scopesStr)
			if errors.Is(err, sql.ErrNoRows) {
				respondWithError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
				return
			}
			if err != nil {
				a.logger.Error("Authenticate failed to query API key", "error", err)
				respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			scopes = strings.Fields(scopesStr)
		}

		scopeSet := make(map[string]struct{}, len(scopes))
		for _, s := range scopes {
			scopeSet[s] = struct{}{}
		}
		ctx := context.WithValue(r.Context(), contextKeyPermissions, &Permissions{ScopeSet: scopeSet})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AuthAPI) countKeys(ctx context.Context) (int, error) {
	var keyCount int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM api_keys").Scan(&keyCount)
	return keyCount, err
}

func (a *AuthAPI) handleKeys(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listKeys(w, r)
	case http.MethodPost:
		a.createKey(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (a *AuthAPI) handleKeyByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/auth/keys/"), "/")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid key ID format in URL")
		return
	}

	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed for this key resource")
		return
	}
	a.deleteKey(w, r, id)
}

func (a *AuthAPI) handleCheckMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	perms, ok := r.Context().Value(contextKeyPermissions).(*Permissions)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	scopes := make([]string, 0, len(perms.ScopeSet))
	for s := range perms.ScopeSet {
		scopes = append(scopes, s)
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"scopes": scopes})
}

func (a *AuthAPI) listKeys(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, scopeAuthManage) {
		return
	}

	rows, err := a.db.QueryContext(r.Context(), `SELECT id, description, scopes FROM api_keys ORDER BY id`)
	if err != nil {
		a.logger.Error("Failed to query API keys", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database query failed")
		return
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	keys := make([]APIKeyInfo, 0)
	for rows.Next() {
		var key APIKeyInfo
		var scopesStr string
		if err = rows.Scan(&key.ID, &key.Description, &scopesStr); err != nil {
			a.logger.Error("Failed to scan API key row", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to process database results")
			return
		}
		key.Scopes = strings.Fields(scopesStr)
		keys = append(keys, key)
	}
	respondWithJSON(w, http.StatusOK, keys)
}

func (a *AuthAPI) createKey(w http.ResponseWriter, r *http.Request) {
	keyCount, err := a.countKeys(r.Context())
	if err != nil {
		a.logger.Error("Failed to count API keys", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database query failed")
		return
	}
	// Anyone may create the first key while the API is open.
	if keyCount > 0 && !requireScope(w, r, scopeAuthManage) {
		return
	}

	var req CreateKeyRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	for _, scope := range req.Scopes {
		if _, ok := knownScopes[scope]; !ok {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scope '%s'", scope))
			return
		}
	}

	// The first key is always a master key so the API cannot be locked shut.
	scopes := req.Scopes
	if keyCount == 0 {
		scopes = []string{scopeMaster}
	}

	rawKey, err := generateAPIKey()
	if err != nil {
		a.logger.Error("Failed to generate new API key", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Key generation failed")
		return
	}

	var newID int
	err = a.db.QueryRowContext(r.Context(),
		`INSERT INTO api_keys (key_hash, description, scopes) VALUES (?, ?, ?) RETURNING id`,
		hashAPIKey(rawKey), req.Description, strings.Join(scopes, " ")).Scan(&newID)
	if err != nil {
		a.logger.Error("Failed to insert new API key", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to save new key")
		return
	}

	a.logger.Info("API key created", slog.Int("key_id", newID), slog.String("scopes", strings.Join(scopes, " ")))
	respondWithJSON(w, http.StatusCreated, CreateKeyResponse{ID: newID, RawKey: rawKey, Scopes: scopes})
}

func (a *AuthAPI) deleteKey(w http.ResponseWriter, r *http.Request, id int) {
	if !requireScope(w, r, scopeAuthManage) {
		return
	}
	if id == 1 {
		respondWithError(w, http.StatusBadRequest, "Cannot delete the primary master key (ID 1)")
		return
	}

	res, err := a.db.ExecContext(r.Context(), "DELETE FROM api_keys WHERE id = ?", id)
	if err != nil {
		a.logger.Error("Failed to delete API key", "id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete key")
		return
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		respondWithError(w, http.StatusNotFound, "Key not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// hasScope checks if the permission set in the request context includes a required scope.
func hasScope(r *http.Request, requiredScope string) bool {
	perms, ok := r.Context().Value(contextKeyPermissions).(*Permissions)
	if !ok {
		return false
	}
	if _, isMaster := perms.ScopeSet[scopeMaster]; isMaster {
		return true
	}
	_, has := perms.ScopeSet[requiredScope]
	return has
}

// requireScope writes a 403 and returns false when the request lacks scope.
func requireScope(w http.ResponseWriter, r *http.Request, scope string) bool {
	if hasScope(r, scope) {
		return true
	}
	respondWithError(w, http.StatusForbidden, fmt.Sprintf("Forbidden: requires '%s' scope", scope))
	return false
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return "babl_" + hex.EncodeToString(buf), nil
}

func hashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("Failed to encode JSON response", "error", err)
		}
	}
}
