package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/astar-visualizer/board/grid"
	"github.com/wricardo/astar-visualizer/board/layout"
	"github.com/wricardo/astar-visualizer/board/search"
	"github.com/wricardo/astar-visualizer/board/service"
	"github.com/wricardo/astar-visualizer/board/session"
	"github.com/wricardo/astar-visualizer/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.BoardService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case no live
// updates are pushed.
func NewServer(boardService service.BoardService, hub *websocket.Hub) *Server {
	s := &Server{
		service: boardService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Board editing
	api.HandleFunc("/sessions/{id}/board", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/sessions/{id}/cells", s.handlePaintCell).Methods("POST")
	api.HandleFunc("/sessions/{id}/cells/bulk", s.handlePaintCells).Methods("POST")
	api.HandleFunc("/sessions/{id}/clear", s.handleClear).Methods("POST")

	// Search
	api.HandleFunc("/sessions/{id}/search", s.handleSearch).Methods("POST")
	api.HandleFunc("/sessions/{id}/cancel", s.handleCancel).Methods("POST")

	// Layouts
	api.HandleFunc("/layouts", s.handleListLayouts).Methods("GET")
	api.HandleFunc("/layouts/{name}", s.handleGetLayout).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, layout.ErrLayoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSearchRunning),
		errors.Is(err, service.ErrSearchNotRunning),
		errors.Is(err, search.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidEdit),
		errors.Is(err, service.ErrMissingEndpoints),
		errors.Is(err, search.ErrInvalidEndpoints),
		errors.Is(err, grid.ErrOutOfBounds),
		errors.Is(err, grid.ErrInvalidSize),
		errors.Is(err, layout.ErrInvalidLayout),
		errors.Is(err, session.ErrInvalidSessionID):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoSessionIDs):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeOptional decodes a JSON body, treating an empty body as zero values
func decodeOptional(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LayoutID string `json:"layout_id,omitempty"`
		Size     int    `json:"size,omitempty"`
	}

	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := s.service.CreateSession(r.Context(), strings.TrimSuffix(req.LayoutID, ".json"), req.Size)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Board Handlers

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetBoard(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

type cellRequest struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Status string `json:"status"`
}

func (c cellRequest) edit() (service.CellEdit, error) {
	status, ok := grid.ParseStatus(strings.ToLower(strings.TrimSpace(c.Status)))
	if !ok {
		return service.CellEdit{}, fmt.Errorf("%w: status must be one of empty, wall, start, end (got %q)", service.ErrInvalidEdit, c.Status)
	}
	return service.CellEdit{Row: c.Row, Col: c.Col, Status: status}, nil
}

func (s *Server) handlePaintCell(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req cellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	edit, err := req.edit()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	state, err := s.service.PaintCell(r.Context(), sessionID, edit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastBoard(state)
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handlePaintCells(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Cells []cellRequest `json:"cells"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	edits := make([]service.CellEdit, 0, len(req.Cells))
	for i, c := range req.Cells {
		edit, err := c.edit()
		if err != nil {
			respondServiceError(w, fmt.Errorf("edit %d: %w", i, err))
			return
		}
		edits = append(edits, edit)
	}

	state, err := s.service.PaintCells(r.Context(), sessionID, edits)
	if err != nil {
		// earlier edits may have landed
		if s.hub != nil {
			if current, getErr := s.service.GetBoard(r.Context(), sessionID); getErr == nil {
				s.hub.BroadcastBoard(current)
			}
		}
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastBoard(state)
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		KeepWalls bool `json:"keep_walls,omitempty"`
	}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := s.service.Clear(r.Context(), sessionID, req.KeepWalls)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastBoard(state)
	}
	respondJSON(w, http.StatusOK, state)
}

// Search Handlers

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Wait bool `json:"wait,omitempty"`
	}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	opts := service.RunOptions{Wait: req.Wait}
	if s.hub != nil {
		opts.OnFrame = s.hub.BroadcastFrame
		opts.OnDone = s.hub.BroadcastDone
	}

	run, err := s.service.RunSearch(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if req.Wait {
		respondJSON(w, http.StatusOK, run)
		return
	}
	respondJSON(w, http.StatusAccepted, run)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.CancelSearch(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "Cancellation requested",
	})
}

// Layout Handlers

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	layouts, err := s.service.ListLayouts(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, layouts)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	l, err := s.service.LoadLayout(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, l)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}

	state, err := s.service.GetBoard(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID, &websocket.Message{
		SessionID: state.SessionID,
		RunID:     state.RunID,
		Event:     websocket.EventBoardUpdate,
		Step:      state.Step,
		Board:     state.Board,
		Data:      map[string]interface{}{"state": state.State, "length": state.Length},
	})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
