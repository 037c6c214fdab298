// Package grid provides the board model searched by the pathfinding engine.
//
// The grid package implements:
//   - Square N×N grids of cells with a mutable status
//   - Orthogonal adjacency derivation that skips walls
//   - Bounds-checked coordinate lookup
//   - Text layouts for loading and rendering boards
//
// Core Types:
//
// Grid owns the cell arrangement. Cell holds a Position, a Status and the
// list of neighbor positions computed by RecomputeNeighbors. Neighbors are
// stored as positions rather than pointers, so a Cell never owns another Cell.
//
// Usage:
//
//	g, err := grid.New(5)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cell, err := g.CellAt(1, 2)
//	if err != nil {
//		log.Fatal(err)
//	}
//	cell.SetStatus(grid.Wall)
//
//	// Adjacency must be refreshed after wall edits
//	g.RecomputeNeighbors()
//
// Layout Legend:
//
//	.  empty     #  wall
//	S  start     E  end
//	o  frontier  x  visited
//	*  path
//
// Only the first four characters are accepted by FromLayout; the search
// marks appear in rendered snapshots.
package grid
