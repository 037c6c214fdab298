package grid

// Status represents the state of a single grid cell
type Status string

const (
	Empty    Status = "empty"
	Wall     Status = "wall"
	Start    Status = "start"
	End      Status = "end"
	Frontier Status = "frontier"
	Visited  Status = "visited"
	Path     Status = "path"

	// Validation constants
	MinSize = 1
	MaxSize = 200
)

// Editable reports whether a status may be painted by a user.
// Frontier, Visited and Path are owned by the search engine.
func (s Status) Editable() bool {
	switch s {
	case Empty, Wall, Start, End:
		return true
	}
	return false
}

// SearchMark reports whether a status was written by a search run
func (s Status) SearchMark() bool {
	return s == Frontier || s == Visited || s == Path
}

// ParseStatus converts a user-supplied string into an editable Status
func ParseStatus(value string) (Status, bool) {
	s := Status(value)
	if !s.Editable() {
		return "", false
	}
	return s, true
}

// Position represents row,col coordinates
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cell represents a single grid cell
type Cell struct {
	pos       Position
	status    Status
	neighbors []Position
}

// Position returns the cell coordinates
func (c *Cell) Position() Position {
	return c.pos
}

// Status returns the current status
func (c *Cell) Status() Status {
	return c.status
}

// SetStatus overwrites the status unconditionally. Callers keep the
// single-start/single-end invariants.
func (c *Cell) SetStatus(status Status) {
	c.status = status
}

func (c *Cell) IsWall() bool  { return c.status == Wall }
func (c *Cell) IsStart() bool { return c.status == Start }
func (c *Cell) IsEnd() bool   { return c.status == End }

// Neighbors returns a copy of the adjacency list computed by the last
// RecomputeNeighbors call
func (c *Cell) Neighbors() []Position {
	out := make([]Position, len(c.neighbors))
	copy(out, c.neighbors)
	return out
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}
