// Package search implements the A* best-first search that animates a board.
//
// An Engine runs one search at a time over a grid.Grid between two
// positions. After every node expansion it calls the caller's step
// function synchronously, which is where a presentation layer redraws.
// Cancellation is polled through the context at the top of each iteration.
//
// Ordering:
//
// The frontier is a binary heap keyed by (fScore, insertion order), so
// equal-cost candidates are expanded earliest-discovered-first and runs
// are fully deterministic for a given board.
//
// Status Marks:
//
// While searching, the engine writes grid.Frontier on discovered cells and
// grid.Visited on expanded ones, then grid.Path on the intermediate cells of
// the route. Start and end cells keep their status and walls are never
// touched.
//
// Usage:
//
//	g.RecomputeNeighbors()
//	eng := search.NewEngine()
//	result, err := eng.Search(ctx, g, start, end, func() {
//		render(g)
//	})
//	if err != nil {
//		return err
//	}
//	if result.Outcome == search.Found {
//		fmt.Println("length", result.Length())
//	}
package search
