package grid

import (
	"fmt"
	"strings"
)

var statusChars = map[Status]byte{
	Empty:    '.',
	Wall:     '#',
	Start:    'S',
	End:      'E',
	Frontier: 'o',
	Visited:  'x',
	Path:     '*',
}

// Char returns the layout character for a status
func (s Status) Char() byte {
	if c, ok := statusChars[s]; ok {
		return c
	}
	return '?'
}

// StatusForChar maps a layout character to an editable status
func StatusForChar(c rune) (Status, bool) {
	switch c {
	case '.':
		return Empty, true
	case '#':
		return Wall, true
	case 'S':
		return Start, true
	case 'E':
		return End, true
	}
	return "", false
}

// Snapshot is a rendered copy of the grid suitable for JSON transport
type Snapshot struct {
	Size  int       `json:"size"`
	Rows  []string  `json:"rows"`
	Start *Position `json:"start,omitempty"`
	End   *Position `json:"end,omitempty"`
}

// Snapshot renders every row with the layout legend
func (g *Grid) Snapshot() *Snapshot {
	snap := &Snapshot{
		Size: g.size,
		Rows: make([]string, g.size),
	}
	var b strings.Builder
	for row := range g.cells {
		b.Reset()
		for col := range g.cells[row] {
			status := g.cells[row][col].status
			b.WriteByte(status.Char())
			switch status {
			case Start:
				snap.Start = &Position{Row: row, Col: col}
			case End:
				snap.End = &Position{Row: row, Col: col}
			}
		}
		snap.Rows[row] = b.String()
	}
	return snap
}

// String renders the grid one row per line
func (g *Grid) String() string {
	return strings.Join(g.Snapshot().Rows, "\n")
}

// FromLayout builds a grid from square layout rows using the editable legend
// characters. Adjacency is not computed.
func FromLayout(rows []string) (*Grid, error) {
	g, err := New(len(rows))
	if err != nil {
		return nil, err
	}

	starts, ends := 0, 0
	for r, line := range rows {
		if len(line) != len(rows) {
			return nil, fmt.Errorf("layout: row %d must have %d characters, got %d", r+1, len(rows), len(line))
		}
		for c, ch := range line {
			status, ok := StatusForChar(ch)
			if !ok {
				return nil, fmt.Errorf("layout: invalid character '%c' at row %d, col %d", ch, r+1, c+1)
			}
			switch status {
			case Start:
				starts++
			case End:
				ends++
			}
			g.cells[r][c].status = status
		}
	}

	if starts > 1 {
		return nil, fmt.Errorf("layout: at most one start (S) allowed, got %d", starts)
	}
	if ends > 1 {
		return nil, fmt.Errorf("layout: at most one end (E) allowed, got %d", ends)
	}
	return g, nil
}
