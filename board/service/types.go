package service

import (
	"time"

	"github.com/wricardo/astar-visualizer/board/grid"
	"github.com/wricardo/astar-visualizer/board/search"
)

// SessionInfo provides information about a board session
type SessionInfo struct {
	ID             string      `json:"id"`
	LayoutID       string      `json:"layout_id"`
	LayoutName     string      `json:"layout_name"`
	Size           int         `json:"size"`
	CreatedAt      time.Time   `json:"created_at"`
	LastAccessedAt time.Time   `json:"last_accessed_at"`
	Board          *BoardState `json:"board"`
}

// BoardState is the observable state of a session's board
type BoardState struct {
	SessionID string             `json:"session_id"`
	RunID     string             `json:"run_id,omitempty"`
	State     search.State       `json:"state"`
	Step      int                `json:"step"`
	Board     *grid.Snapshot     `json:"board"`
	Result    *search.PathResult `json:"result,omitempty"`
	Length    int                `json:"length"`
}

// CellEdit is a single user edit
type CellEdit struct {
	Row    int         `json:"row"`
	Col    int         `json:"col"`
	Status grid.Status `json:"status"`
}

// Frame is published after every expansion of a running search
type Frame struct {
	SessionID string         `json:"session_id"`
	RunID     string         `json:"run_id"`
	Step      int            `json:"step"`
	Board     *grid.Snapshot `json:"board"`
}

// FrameFunc receives frames synchronously from the search goroutine
type FrameFunc func(frame *Frame)

// RunOptions configures a search run
type RunOptions struct {
	// Wait runs the search in the caller's goroutine and returns its result
	Wait bool
	// OnFrame is called after each expansion
	OnFrame FrameFunc
	// OnDone is called once the run terminates, with or without Wait
	OnDone func(result *RunResult)
}

// RunResult describes a launched or finished run
type RunResult struct {
	SessionID string             `json:"session_id"`
	RunID     string             `json:"run_id"`
	Accepted  bool               `json:"accepted"`
	Done      bool               `json:"done"`
	Result    *search.PathResult `json:"result,omitempty"`
	Length    int                `json:"length"`
	Board     *grid.Snapshot     `json:"board,omitempty"`
	Error     string             `json:"error,omitempty"`
}
