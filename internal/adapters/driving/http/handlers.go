package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// QueryRequest is the body of a query invocation. Rerank and compression
// default to on when omitted.
// @Description Natural-language query request
type QueryRequest struct {
	Query       string `json:"query" example:"what is the weather in Rome?"`
	TopK        int    `json:"top_k,omitempty" example:"10"`
	Rerank      *bool  `json:"rerank,omitempty"`
	Compression *bool  `json:"compression,omitempty"`
}

// SearchRequest is the body of a raw hybrid-search invocation
// @Description Hybrid search request
type SearchRequest struct {
	Query       string `json:"query" example:"river navigation"`
	TopK        int    `json:"top_k,omitempty" example:"10"`
	Rerank      *bool  `json:"rerank,omitempty"`
	Compression *bool  `json:"compression,omitempty"`
	DocumentID  string `json:"document_id,omitempty"`
	Level       *int   `json:"level,omitempty"`
	Part        *int   `json:"part,omitempty"`
	Chapter     *int   `json:"chapter,omitempty"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and cache connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A required dependency is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "cache unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoint

// handleToken godoc
// @Summary      Issue API token
// @Description  Exchange client credentials for a JWT bearer token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.TokenRequest  true  "Client credentials"
// @Success      200      {object}  domain.TokenResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/token [post]
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.IssueToken(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "client_id and client_secret are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Query endpoint

// handleQuery godoc
// @Summary      Answer a question
// @Description  Routes the query through classification, retrieval and generation. Always returns an answer; failures surface through the degraded and timed_out fields.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      QueryRequest  true  "Query"
// @Success      200      {object}  domain.Answer
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Router       /query [post]
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := domain.DefaultQueryOptions()
	if req.TopK > 0 {
		opts.TopK = req.TopK
	}
	if req.Rerank != nil {
		opts.Rerank = *req.Rerank
	}
	if req.Compression != nil {
		opts.Compression = *req.Compression
	}

	answer := s.queryService.ProcessQuery(r.Context(), req.Query, opts)
	writeJSON(w, http.StatusOK, answer)
}

// Search endpoint

// handleSearch godoc
// @Summary      Hybrid search
// @Description  Runs dense and keyword retrieval, fuses both branches, and applies the optional rerank and compression stages per the request flags
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      SearchRequest  true  "Search parameters"
// @Success      200      {object}  domain.SearchResultSet
// @Failure      400      {object}  ErrorResponse  "Invalid query"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      503      {object}  ErrorResponse  "Both retrieval branches failed"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := domain.DefaultSearchQuery(req.Query)
	if req.TopK > 0 {
		query.TopK = req.TopK
	}
	if req.Rerank != nil {
		query.Rerank = *req.Rerank
	}
	if req.Compression != nil {
		query.Compression = *req.Compression
	}
	query.DocumentID = req.DocumentID
	query.Level = req.Level
	query.Part = req.Part
	query.Chapter = req.Chapter

	results, err := s.searchService.Search(r.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrRetrievalUnavailable):
			writeError(w, http.StatusServiceUnavailable, "retrieval unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// Chunk endpoints

// handleGetChunk godoc
// @Summary      Get chunk
// @Description  Resolve a single chunk by id
// @Tags         Chunks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Chunk ID"
// @Success      200  {object}  domain.Chunk
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Chunk not found"
// @Router       /chunks/{id} [get]
func (s *Server) handleGetChunk(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	chunk, err := s.chunkService.Resolve(r.Context(), id)
	if err != nil {
		writeChunkError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chunk)
}

// handleGetAncestors godoc
// @Summary      Get chunk ancestors
// @Description  Resolve the ancestor chain of a chunk up to the requested level, nearest first
// @Tags         Chunks
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true   "Chunk ID"
// @Param        to_level  query     int     false  "Highest hierarchy level to include (default 2)"
// @Success      200       {array}   domain.Chunk
// @Failure      400       {object}  ErrorResponse  "Invalid to_level"
// @Failure      401       {object}  ErrorResponse  "Unauthorized"
// @Failure      404       {object}  ErrorResponse  "Chunk not found"
// @Failure      500       {object}  ErrorResponse  "Broken hierarchy link"
// @Router       /chunks/{id}/ancestors [get]
func (s *Server) handleGetAncestors(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	toLevel := 2
	if raw := r.URL.Query().Get("to_level"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to_level must be an integer")
			return
		}
		toLevel = parsed
	}

	ancestors, err := s.chunkService.Ancestors(r.Context(), id, toLevel)
	if err != nil {
		writeChunkError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ancestors)
}

func writeChunkError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "chunk not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConsistency):
		writeError(w, http.StatusInternalServerError, "chunk hierarchy inconsistent")
	default:
		writeError(w, http.StatusInternalServerError, "chunk lookup failed")
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
