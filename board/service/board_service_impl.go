package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/astar-visualizer/board/grid"
	"github.com/wricardo/astar-visualizer/board/layout"
)

var (
	ErrSearchRunning    = errors.New("search already running")
	ErrSearchNotRunning = errors.New("no search running")
	ErrInvalidEdit      = errors.New("invalid edit")
	ErrMissingEndpoints = errors.New("board needs a start and an end")
)

// Options configures the board service
type Options struct {
	StepDelay time.Duration
}

// Option is a functional option for the board service
type Option func(*Options)

// WithStepDelay pauses after every published frame so clients can follow along
func WithStepDelay(d time.Duration) Option {
	return func(o *Options) {
		o.StepDelay = d
	}
}

// boardServiceImpl implements the BoardService interface
type boardServiceImpl struct {
	sessions  SessionManager
	layouts   LayoutManager
	stepDelay time.Duration
}

// NewBoardService creates a new board service instance
func NewBoardService(sessions SessionManager, layouts LayoutManager, options ...Option) BoardService {
	opts := Options{}
	for _, o := range options {
		o(&opts)
	}
	return &boardServiceImpl{
		sessions:  sessions,
		layouts:   layouts,
		stepDelay: opts.StepDelay,
	}
}

// CreateSession creates a board from a layout, or an empty board of the given size
func (s *boardServiceImpl) CreateSession(ctx context.Context, layoutID string, size int) (*SessionInfo, error) {
	var l *layout.Layout
	switch {
	case layoutID != "":
		loaded, err := s.layouts.Load(layoutID)
		if err != nil {
			if errors.Is(err, layout.ErrLayoutNotFound) {
				return nil, s.layoutNotFound(layoutID, err)
			}
			return nil, fmt.Errorf("failed to load layout %s: %w", layoutID, err)
		}
		if size != 0 && size != loaded.Size {
			return nil, fmt.Errorf("%w: layout %s is %dx%d, requested size %d", layout.ErrInvalidLayout, layoutID, loaded.Size, loaded.Size, size)
		}
		l = loaded
	case size != 0:
		if size < grid.MinSize || size > grid.MaxSize {
			return nil, fmt.Errorf("%w: %d", grid.ErrInvalidSize, size)
		}
		l = layout.Empty(size)
		layoutID = "empty"
	default:
		l = s.layouts.Default()
		layoutID = s.layouts.DefaultID()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", layoutID, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("[SESSION] created session=%s layout=%s size=%d", session.ID, layoutID, l.Size)
	return s.info(session), nil
}

// layoutNotFound lists the available layouts in the error
func (s *boardServiceImpl) layoutNotFound(layoutID string, err error) error {
	infos, listErr := s.layouts.List()
	if listErr != nil || len(infos) == 0 {
		return fmt.Errorf("layout '%s': %w. Use /api/layouts to list available layouts", layoutID, err)
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.LayoutID)
	}
	return fmt.Errorf("layout '%s': %w. Available layouts: %v", layoutID, err, ids)
}

// GetSession retrieves session information
func (s *boardServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(session), nil
}

// ListSessions returns all active sessions
func (s *boardServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, s.info(session))
	}
	return infos, nil
}

// DeleteSession cancels any running search and removes the session
func (s *boardServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	session.mu.Lock()
	if session.cancel != nil {
		session.cancel()
	}
	session.mu.Unlock()
	return s.sessions.Delete(sessionID)
}

// GetBoard returns the current board, or the latest frame while searching
func (s *boardServiceImpl) GetBoard(ctx context.Context, sessionID string) (*BoardState, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.state(), nil
}

// PaintCell applies a single edit
func (s *boardServiceImpl) PaintCell(ctx context.Context, sessionID string, edit CellEdit) (*BoardState, error) {
	return s.PaintCells(ctx, sessionID, []CellEdit{edit})
}

// PaintCells applies edits in order and stops at the first invalid one.
// Edits before the failing one stay applied.
func (s *boardServiceImpl) PaintCells(ctx context.Context, sessionID string, edits []CellEdit) (*BoardState, error) {
	if len(edits) == 0 {
		return nil, fmt.Errorf("%w: no cells to paint", ErrInvalidEdit)
	}

	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.running {
		return nil, ErrSearchRunning
	}

	session.Grid.ClearSearch()
	session.result = nil
	for i, edit := range edits {
		if err := paint(session.Grid, edit); err != nil {
			if len(edits) > 1 {
				return nil, fmt.Errorf("edit %d: %w", i, err)
			}
			return nil, err
		}
		log.Printf("[EDIT] session=%s row=%d col=%d status=%s", session.ID, edit.Row, edit.Col, edit.Status)
	}
	return session.state(), nil
}

// paint applies one edit under the board rules
func paint(g *grid.Grid, edit CellEdit) error {
	if !edit.Status.Editable() {
		return fmt.Errorf("%w: status %q cannot be painted", ErrInvalidEdit, edit.Status)
	}
	cell, err := g.CellAt(edit.Row, edit.Col)
	if err != nil {
		return err
	}

	switch edit.Status {
	case grid.Wall:
		if cell.IsStart() || cell.IsEnd() {
			return fmt.Errorf("%w: cannot place a wall on the %s", ErrInvalidEdit, cell.Status())
		}
	case grid.Start, grid.End:
		if cell.IsWall() {
			return fmt.Errorf("%w: cannot place the %s on a wall", ErrInvalidEdit, edit.Status)
		}
		if (edit.Status == grid.Start && cell.IsEnd()) || (edit.Status == grid.End && cell.IsStart()) {
			return fmt.Errorf("%w: start and end must be distinct cells", ErrInvalidEdit)
		}
		// Only one start and one end: move the existing one
		if pos, ok := g.Find(edit.Status); ok {
			previous, _ := g.Cell(pos)
			previous.SetStatus(grid.Empty)
		}
	}

	cell.SetStatus(edit.Status)
	return nil
}

// Clear resets the board. With keepWalls only the search marks are removed.
func (s *boardServiceImpl) Clear(ctx context.Context, sessionID string, keepWalls bool) (*BoardState, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.running {
		return nil, ErrSearchRunning
	}

	if keepWalls {
		session.Grid.ClearSearch()
	} else {
		g, err := grid.New(session.Grid.Size())
		if err != nil {
			return nil, err
		}
		session.Grid = g
	}
	session.result = nil
	session.runID = ""
	session.step = 0

	log.Printf("[EDIT] session=%s clear keep_walls=%t", session.ID, keepWalls)
	return session.state(), nil
}

// RunSearch starts a search on the session's board
func (s *boardServiceImpl) RunSearch(ctx context.Context, sessionID string, opts RunOptions) (*RunResult, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.running {
		session.mu.Unlock()
		return nil, ErrSearchRunning
	}

	g := session.Grid
	g.ClearSearch()
	start, hasStart := g.Find(grid.Start)
	end, hasEnd := g.Find(grid.End)
	if !hasStart || !hasEnd {
		session.mu.Unlock()
		return nil, ErrMissingEndpoints
	}
	g.RecomputeNeighbors()

	// A background run outlives the request that started it
	parent := ctx
	if !opts.Wait {
		parent = context.WithoutCancel(ctx)
	}
	runCtx, cancel := context.WithCancel(parent)

	runID := uuid.NewString()
	session.running = true
	session.cancel = cancel
	session.runID = runID
	session.step = 0
	session.result = nil
	session.frame = g.Snapshot()
	session.mu.Unlock()

	log.Printf("[SEARCH] session=%s run=%s start=(%d,%d) end=(%d,%d)", session.ID, runID, start.Row, start.Col, end.Row, end.Col)

	run := func() *RunResult {
		defer cancel()

		onStep := func() {
			snap := g.Snapshot()
			session.mu.Lock()
			session.step++
			step := session.step
			session.frame = snap
			session.mu.Unlock()

			if opts.OnFrame != nil {
				opts.OnFrame(&Frame{SessionID: session.ID, RunID: runID, Step: step, Board: snap})
			}
			if s.stepDelay > 0 {
				select {
				case <-runCtx.Done():
				case <-time.After(s.stepDelay):
				}
			}
		}

		result, err := session.Engine.Search(runCtx, g, start, end, onStep)

		rr := &RunResult{SessionID: session.ID, RunID: runID, Accepted: true, Done: true}
		session.mu.Lock()
		session.running = false
		session.cancel = nil
		session.frame = nil
		if err != nil {
			rr.Error = err.Error()
		} else {
			session.result = &result
			rr.Result = &result
			rr.Length = result.Length()
		}
		rr.Board = g.Snapshot()
		session.mu.Unlock()

		if err != nil {
			log.Printf("[SEARCH] session=%s run=%s error=%v", session.ID, runID, err)
		} else {
			log.Printf("[SEARCH] session=%s run=%s outcome=%s expanded=%d length=%d",
				session.ID, runID, result.Outcome, result.Expanded, result.Length())
		}

		if opts.OnDone != nil {
			opts.OnDone(rr)
		}
		return rr
	}

	if opts.Wait {
		rr := run()
		if rr.Error != "" {
			return rr, errors.New(rr.Error)
		}
		return rr, nil
	}

	go run()
	return &RunResult{SessionID: session.ID, RunID: runID, Accepted: true}, nil
}

// CancelSearch requests cancellation of the running search
func (s *boardServiceImpl) CancelSearch(ctx context.Context, sessionID string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if !session.running || session.cancel == nil {
		return ErrSearchNotRunning
	}
	session.cancel()
	log.Printf("[SEARCH] session=%s run=%s cancel requested", session.ID, session.runID)
	return nil
}

// ListLayouts returns the layout catalogue
func (s *boardServiceImpl) ListLayouts(ctx context.Context) ([]*layout.Info, error) {
	return s.layouts.List()
}

// LoadLayout returns a single layout
func (s *boardServiceImpl) LoadLayout(ctx context.Context, layoutID string) (*layout.Layout, error) {
	return s.layouts.Load(layoutID)
}

// session fetches a session and refreshes its access time
func (s *boardServiceImpl) session(sessionID string) (*Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return session, nil
}

func (s *boardServiceImpl) info(session *Session) *SessionInfo {
	session.mu.Lock()
	defer session.mu.Unlock()
	return &SessionInfo{
		ID:             session.ID,
		LayoutID:       session.LayoutID,
		LayoutName:     session.Layout.Name,
		Size:           session.Grid.Size(),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.lastAccessed,
		Board:          session.state(),
	}
}
