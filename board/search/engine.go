package search

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wricardo/astar-visualizer/board/grid"
)

var (
	ErrInvalidEndpoints = errors.New("invalid endpoints")
	ErrAlreadyRunning   = errors.New("search already running")
)

// Heuristic estimates the remaining cost from one position to another
type Heuristic func(from, to grid.Position) int

// StepFunc is invoked synchronously after each node expansion
type StepFunc func()

// Options defines parameters for the search.
type Options struct {
	Heuristic Heuristic
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithHeuristic replaces the Manhattan heuristic. The replacement must be
// admissible for the returned path to be a shortest one.
func WithHeuristic(h Heuristic) Option {
	return func(options *Options) { options.Heuristic = h }
}

// Engine runs A* searches over a grid, one at a time
type Engine struct {
	heuristic Heuristic

	mu    sync.RWMutex
	state State
}

// NewEngine creates an idle engine
func NewEngine(options ...Option) *Engine {
	opts := Options{Heuristic: grid.ManhattanDistance}
	for _, option := range options {
		option(&opts)
	}
	if opts.Heuristic == nil {
		opts.Heuristic = grid.ManhattanDistance
	}
	return &Engine{
		heuristic: opts.Heuristic,
		state:     StateIdle,
	}
}

// State returns the engine state; safe to call while a search runs
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Running reports whether a search is in flight
func (e *Engine) Running() bool {
	return e.State() == StateRunning
}

func (e *Engine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		return false
	}
	e.state = StateRunning
	return true
}

func (e *Engine) finish(state State) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}

// Search finds a shortest path from start to end on g. Neighbor lists must be
// current (see grid.RecomputeNeighbors). onStep may be nil.
//
// Exhausted and Cancelled are returned as outcomes with a nil error; errors
// are reserved for out-of-bounds or wall endpoints and concurrent use.
func (e *Engine) Search(ctx context.Context, g *grid.Grid, start, end grid.Position, onStep StepFunc) (PathResult, error) {
	startCell, err := g.Cell(start)
	if err != nil {
		return PathResult{}, fmt.Errorf("start: %w", err)
	}
	endCell, err := g.Cell(end)
	if err != nil {
		return PathResult{}, fmt.Errorf("end: %w", err)
	}
	if startCell.IsWall() {
		return PathResult{}, fmt.Errorf("%w: start (%d,%d) is a wall", ErrInvalidEndpoints, start.Row, start.Col)
	}
	if endCell.IsWall() {
		return PathResult{}, fmt.Errorf("%w: end (%d,%d) is a wall", ErrInvalidEndpoints, end.Row, end.Col)
	}

	if !e.begin() {
		return PathResult{}, ErrAlreadyRunning
	}
	state := StateIdle
	defer func() { e.finish(state) }()

	result := e.run(ctx, g, start, end, onStep)
	state = State(result.Outcome)
	return result, nil
}

func (e *Engine) run(ctx context.Context, g *grid.Grid, start, end grid.Position, onStep StepFunc) PathResult {
	if start == end {
		return PathResult{Outcome: Found}
	}

	gScore := map[grid.Position]int{start: 0}
	cameFrom := make(map[grid.Position]grid.Position)
	queued := map[grid.Position]bool{start: true}

	// Keys are fixed at insertion: a queued cell whose score improves keeps
	// its original (f, order) entry.
	queue := make(frontier, 0)
	heap.Init(&queue)
	heap.Push(&queue, &frontierItem{pos: start, f: e.heuristic(start, end)})

	insertions := 0
	expanded := 0

	for queue.Len() > 0 {
		if ctx.Err() != nil {
			return PathResult{Outcome: Cancelled, Expanded: expanded}
		}

		current := heap.Pop(&queue).(*frontierItem)
		delete(queued, current.pos)
		expanded++

		if current.pos == end {
			path := reconstructPath(cameFrom, end, start)
			markPath(g, path)
			return PathResult{Outcome: Found, Path: path, Expanded: expanded}
		}

		cell, _ := g.Cell(current.pos)
		for _, next := range cell.Neighbors() {
			nextCell, err := g.Cell(next)
			if err != nil || nextCell.IsWall() {
				// stale adjacency
				continue
			}

			tentativeG := gScore[current.pos] + 1
			if known, ok := gScore[next]; ok && tentativeG >= known {
				continue
			}
			cameFrom[next] = current.pos
			gScore[next] = tentativeG

			if queued[next] {
				continue
			}
			insertions++
			heap.Push(&queue, &frontierItem{
				pos:   next,
				f:     tentativeG + e.heuristic(next, end),
				order: insertions,
			})
			queued[next] = true
			if next != end {
				nextCell.SetStatus(grid.Frontier)
			}
		}

		if onStep != nil {
			onStep()
		}

		if current.pos != start {
			cell.SetStatus(grid.Visited)
		}
	}

	return PathResult{Outcome: Exhausted, Expanded: expanded}
}

// reconstructPath walks cameFrom back from current to start and returns the
// route in start→end order
func reconstructPath(cameFrom map[grid.Position]grid.Position, current, start grid.Position) []grid.Position {
	path := []grid.Position{current}
	for current != start {
		previous, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, previous)
		current = previous
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// markPath sets every intermediate cell of the route to Path
func markPath(g *grid.Grid, path []grid.Position) {
	for i := 1; i < len(path)-1; i++ {
		if cell, err := g.Cell(path[i]); err == nil {
			cell.SetStatus(grid.Path)
		}
	}
}
