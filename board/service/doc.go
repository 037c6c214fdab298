// Package service provides the board operations shared by every transport.
//
// The service package plays the role of the presentation shell's controller:
//   - Session lifecycle (create, list, delete)
//   - User edits (walls, start, end) with the board invariants enforced
//   - Launching, observing and cancelling searches
//   - Layout catalogue access
//
// Edit Rules:
//
// A board has at most one start and one end. Painting a start or end moves
// the existing one. Walls cannot be painted over endpoints and endpoints
// cannot be painted over walls. Any edit first clears the marks of the
// previous search. While a search is running every edit is rejected with
// ErrSearchRunning.
//
// Running Searches:
//
// RunSearch recomputes adjacency, locates the endpoints and runs the engine
// either synchronously (Wait) or in a background goroutine. After every
// expansion a Frame carrying a snapshot of the board is handed to
// RunOptions.OnFrame; this is the redraw signal transports forward to
// clients. While the search runs, readers receive the latest frame instead
// of touching the live grid.
//
// Usage:
//
//	svc := service.NewBoardService(sessionManager, layoutManager,
//		service.WithStepDelay(20*time.Millisecond))
//
//	info, _ := svc.CreateSession(ctx, "maze", 0)
//	_, _ = svc.PaintCell(ctx, info.ID, service.CellEdit{Row: 0, Col: 0, Status: grid.Start})
//	run, err := svc.RunSearch(ctx, info.ID, service.RunOptions{Wait: true})
package service
