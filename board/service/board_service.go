package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/astar-visualizer/board/grid"
	"github.com/wricardo/astar-visualizer/board/layout"
	"github.com/wricardo/astar-visualizer/board/search"
)

// BoardService defines all board-related operations
type BoardService interface {
	// Session Management
	CreateSession(ctx context.Context, layoutID string, size int) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Board Editing
	GetBoard(ctx context.Context, sessionID string) (*BoardState, error)
	PaintCell(ctx context.Context, sessionID string, edit CellEdit) (*BoardState, error)
	PaintCells(ctx context.Context, sessionID string, edits []CellEdit) (*BoardState, error)
	Clear(ctx context.Context, sessionID string, keepWalls bool) (*BoardState, error)

	// Search
	RunSearch(ctx context.Context, sessionID string, opts RunOptions) (*RunResult, error)
	CancelSearch(ctx context.Context, sessionID string) error

	// Layouts
	ListLayouts(ctx context.Context) ([]*layout.Info, error)
	LoadLayout(ctx context.Context, layoutID string) (*layout.Layout, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, layoutID string, l *layout.Layout) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// LayoutManager handles layout loading
type LayoutManager interface {
	Load(name string) (*layout.Layout, error)
	List() ([]*layout.Info, error)
	Default() *layout.Layout
	DefaultID() string
}

// Session represents an active board. Grid is only touched by the search
// goroutine while a run is in flight; everything else goes through mu.
type Session struct {
	ID        string
	LayoutID  string
	Layout    *layout.Layout
	Grid      *grid.Grid
	Engine    *search.Engine
	CreatedAt time.Time

	mu           sync.Mutex
	lastAccessed time.Time
	running      bool
	cancel       context.CancelFunc
	runID        string
	step         int
	frame        *grid.Snapshot
	result       *search.PathResult
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = t
}

// LastAccessed returns the time of the most recent access
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}

// Busy reports whether a search is running on the session
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// state builds the public board view; callers hold s.mu
func (s *Session) state() *BoardState {
	st := &BoardState{
		SessionID: s.ID,
		RunID:     s.runID,
		Step:      s.step,
		State:     search.StateIdle,
	}
	switch {
	case s.running:
		st.State = search.StateRunning
		st.Board = s.frame
	case s.result != nil:
		st.State = search.State(s.result.Outcome)
		st.Result = s.result
		st.Length = s.result.Length()
		st.Board = s.Grid.Snapshot()
	default:
		st.Board = s.Grid.Snapshot()
	}
	return st
}
