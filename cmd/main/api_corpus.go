package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/CTAG07/babble/pkg/library"
	"github.com/CTAG07/babble/pkg/markov"
)

// CorpusAPI holds the dependencies for the corpus and generation API handlers.
// Built models are kept per corpus name until the corpus is removed.
type CorpusAPI struct {
	lib     *library.Library
	gen     *GenerationConfig
	metrics Metrics
	logger  *slog.Logger

	mu      sync.RWMutex
	models  map[string]*markov.Model
	removed uint64 // delete count; a load that overlaps a delete is not cached
}

// NewCorpusAPI creates a new instance of the CorpusAPI.
func NewCorpusAPI(lib *library.Library, gen *GenerationConfig, metrics Metrics, logger *slog.Logger) *CorpusAPI {
	return &CorpusAPI{
		lib:     lib,
		gen:     gen,
		metrics: metrics,
		logger:  logger,
		models:  make(map[string]*markov.Model),
	}
}

// RegisterRoutes sets up the routing for all /api/corpora endpoints.
func (c *CorpusAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/corpora", c.handleListAndCreateCorpora)
	mux.HandleFunc("/api/corpora/", c.handleCorpusByName)
}

type CreateCorpusRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type GenerateRequest struct {
	Seed      *string `json:"seed,omitempty"`
	TermCount *int    `json:"term_count,omitempty"`
}

type GenerateResponse struct {
	Text string `json:"text"`
}

// handleListAndCreateCorpora handles GET for listing and POST for creating corpora.
func (c *CorpusAPI) handleListAndCreateCorpora(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !requireScope(w, r, scopeCorpusRead) {
			return
		}
		infos, err := c.lib.GetCorpusInfos(r.Context())
		if err != nil {
			c.logger.Error("Failed to get corpus infos", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve corpora: %v", err))
			return
		}
		respondWithJSON(w, http.StatusOK, infos)

	case http.MethodPost:
		if !requireScope(w, r, scopeCorpusWrite) {
			return
		}
		var req CreateCorpusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
			return
		}
		if req.Name == "" || strings.Contains(req.Name, "/") {
			respondWithError(w, http.StatusBadRequest, "A corpus name without '/' is required")
			return
		}

		info, err := c.lib.InsertCorpus(r.Context(), req.Name, req.Text)
		if err != nil {
			if errors.Is(err, library.ErrCorpusExists) {
				respondWithError(w, http.StatusConflict, err.Error())
				return
			}
			c.logger.Error("Failed to insert corpus", "name", req.Name, "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create corpus: %v", err))
			return
		}
		respondWithJSON(w, http.StatusCreated, info)

	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleCorpusByName routes actions for a specific corpus, e.g., generate, stats, table, delete.
func (c *CorpusAPI) handleCorpusByName(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/corpora/")
	parts := strings.Split(path, "/")
	name := parts[0]

	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Corpus name not specified")
		return
	}

	if len(parts) == 1 { // Path is just /api/corpora/{name}
		switch r.Method {
		case http.MethodGet:
			c.getCorpus(w, r, name)
		case http.MethodDelete:
			c.deleteCorpus(w, r, name)
		default:
			w.Header().Set("Allow", "GET, DELETE")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	if len(parts) > 2 {
		respondWithError(w, http.StatusNotFound, "Action not found")
		return
	}

	switch action := parts[1]; action {
	case "generate":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		c.generate(w, r, name)

	case "stats", "table":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if !requireScope(w, r, scopeCorpusRead) {
			return
		}
		m, ok := c.model(w, r, name)
		if !ok {
			return
		}
		if action == "stats" {
			respondWithJSON(w, http.StatusOK, m.Stats())
		} else {
			table, _ := m.Table()
			respondWithJSON(w, http.StatusOK, table)
		}

	default:
		respondWithError(w, http.StatusNotFound, "Action not found")
	}
}

func (c *CorpusAPI) getCorpus(w http.ResponseWriter, r *http.Request, name string) {
	if !requireScope(w, r, scopeCorpusRead) {
		return
	}
	info, err := c.lib.GetCorpusInfo(r.Context(), name)
	if err != nil {
		c.respondWithLibraryError(w, name, err)
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}

func (c *CorpusAPI) deleteCorpus(w http.ResponseWriter, r *http.Request, name string) {
	if !requireScope(w, r, scopeCorpusWrite) {
		return
	}
	if err := c.lib.RemoveCorpus(r.Context(), name); err != nil {
		c.respondWithLibraryError(w, name, err)
		return
	}

	c.mu.Lock()
	delete(c.models, name)
	c.removed++
	c.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (c *CorpusAPI) generate(w http.ResponseWriter, r *http.Request, name string) {
	if !requireScope(w, r, scopeCorpusRead) {
		return
	}

	// An empty body asks for the defaults.
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	m, ok := c.model(w, r, name)
	if !ok {
		return
	}

	termCount := c.gen.DefaultTermCount
	if req.TermCount != nil {
		termCount = *req.TermCount
	}
	if termCount > c.gen.MaxTermCount {
		c.metrics.IncGenerations(name, "rejected")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("term_count may not exceed %d", c.gen.MaxTermCount))
		return
	}

	opts := []markov.GenerateOption{markov.WithTermCount(termCount)}
	if req.Seed != nil {
		opts = append(opts, markov.WithSeed(*req.Seed))
	}

	text, err := m.Generate(opts...)
	if err != nil {
		c.metrics.IncGenerations(name, "rejected")
		switch {
		case errors.Is(err, markov.ErrNotBuilt):
			respondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, markov.ErrUnknownSeed), errors.Is(err, markov.ErrInvalidTermCount):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			c.logger.Error("Failed to generate", "name", name, "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Generation failed: %v", err))
		}
		return
	}

	c.metrics.IncGenerations(name, "ok")
	c.metrics.AddTokensGenerated(name, termCount)
	respondWithJSON(w, http.StatusOK, GenerateResponse{Text: text})
}

// model returns the built model for a corpus, loading it on first use. The
// load runs without holding c.mu, so two first requests may both build; the
// first to publish wins. On failure it writes the error response and returns
// false.
func (c *CorpusAPI) model(w http.ResponseWriter, r *http.Request, name string) (*markov.Model, bool) {
	c.mu.RLock()
	m, ok := c.models[name]
	removed := c.removed
	c.mu.RUnlock()
	if ok {
		return m, true
	}

	start := time.Now()
	m, err := c.lib.LoadModel(r.Context(), name)
	if err != nil {
		c.respondWithLibraryError(w, name, err)
		return nil, false
	}
	c.metrics.ObserveTableBuild(name, time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.models[name]; ok {
		return cached, true
	}
	if c.removed == removed {
		c.models[name] = m
	}
	return m, true
}

func (c *CorpusAPI) respondWithLibraryError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, library.ErrCorpusNotFound) {
		respondWithError(w, http.StatusNotFound, "Corpus not found")
		return
	}
	c.logger.Error("Library error", "name", name, "error", err)
	respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
}
