package search

import "github.com/wricardo/astar-visualizer/board/grid"

// Outcome is the terminal result of a search
type Outcome string

const (
	Found     Outcome = "found"
	Exhausted Outcome = "exhausted"
	Cancelled Outcome = "cancelled"
)

// State tracks an engine through one invocation
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateFound     State = State(Found)
	StateExhausted State = State(Exhausted)
	StateCancelled State = State(Cancelled)
)

// PathResult contains the outcome of a search
type PathResult struct {
	Outcome  Outcome         `json:"outcome"`
	Path     []grid.Position `json:"path,omitempty"`
	Expanded int             `json:"expanded"`
}

// Length returns the number of edges in the path
func (r PathResult) Length() int {
	if len(r.Path) < 2 {
		return 0
	}
	return len(r.Path) - 1
}
