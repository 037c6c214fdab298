package grid

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInvalidSize = errors.New("invalid grid size")
)

// directions lists orthogonal moves in the order neighbors are recorded:
// up, down, left, right
var directions = []Position{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// Grid is a square arrangement of cells indexed by (row, col)
type Grid struct {
	size  int
	cells [][]Cell
}

// New allocates a size×size grid with every cell Empty
func New(size int) (*Grid, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: size must be between %d and %d, got %d", ErrInvalidSize, MinSize, MaxSize, size)
	}

	g := &Grid{
		size:  size,
		cells: make([][]Cell, size),
	}
	for row := 0; row < size; row++ {
		g.cells[row] = make([]Cell, size)
		for col := 0; col < size; col++ {
			g.cells[row][col] = Cell{
				pos:    Position{Row: row, Col: col},
				status: Empty,
			}
		}
	}
	return g, nil
}

// Size returns the side length N
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether a position lies inside the grid
func (g *Grid) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < g.size && pos.Col >= 0 && pos.Col < g.size
}

// CellAt returns the cell at row,col or ErrOutOfBounds
func (g *Grid) CellAt(row, col int) (*Cell, error) {
	if !g.InBounds(Position{Row: row, Col: col}) {
		return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrOutOfBounds, row, col, g.size, g.size)
	}
	return &g.cells[row][col], nil
}

// Cell is CellAt for a Position
func (g *Grid) Cell(pos Position) (*Cell, error) {
	return g.CellAt(pos.Row, pos.Col)
}

// RecomputeNeighbors rebuilds every adjacency list. A cell's neighbors are the
// in-bounds orthogonal cells that are not walls; walls get no neighbors.
// Must be called after wall edits and before a search.
func (g *Grid) RecomputeNeighbors() {
	for row := range g.cells {
		for col := range g.cells[row] {
			cell := &g.cells[row][col]
			cell.neighbors = cell.neighbors[:0]
			if cell.status == Wall {
				continue
			}
			for _, d := range directions {
				next := Position{Row: row + d.Row, Col: col + d.Col}
				if !g.InBounds(next) {
					continue
				}
				if g.cells[next.Row][next.Col].status == Wall {
					continue
				}
				cell.neighbors = append(cell.neighbors, next)
			}
		}
	}
}

// Find returns the position of the first cell (row-major) with the status
func (g *Grid) Find(status Status) (Position, bool) {
	for row := range g.cells {
		for col := range g.cells[row] {
			if g.cells[row][col].status == status {
				return Position{Row: row, Col: col}, true
			}
		}
	}
	return Position{}, false
}

// Count counts the cells with the given status
func (g *Grid) Count(status Status) int {
	count := 0
	for row := range g.cells {
		for col := range g.cells[row] {
			if g.cells[row][col].status == status {
				count++
			}
		}
	}
	return count
}

// ClearSearch resets Frontier, Visited and Path cells to Empty, keeping
// walls and endpoints
func (g *Grid) ClearSearch() {
	for row := range g.cells {
		for col := range g.cells[row] {
			if g.cells[row][col].status.SearchMark() {
				g.cells[row][col].status = Empty
			}
		}
	}
}

// Clone returns a deep copy of the grid including adjacency lists
func (g *Grid) Clone() *Grid {
	c := &Grid{
		size:  g.size,
		cells: make([][]Cell, g.size),
	}
	for row := range g.cells {
		c.cells[row] = make([]Cell, g.size)
		for col, cell := range g.cells[row] {
			cell.neighbors = append([]Position(nil), cell.neighbors...)
			c.cells[row][col] = cell
		}
	}
	return c
}
