package grid

import (
	"strings"
	"testing"
)

func TestFromLayout(t *testing.T) {
	g, err := FromLayout([]string{
		"S..",
		".#.",
		"..E",
	})
	if err != nil {
		t.Fatalf("FromLayout failed: %v", err)
	}
	if g.Size() != 3 {
		t.Errorf("Expected size 3, got %d", g.Size())
	}

	if wall, _ := g.CellAt(1, 1); !wall.IsWall() {
		t.Error("Expected wall at (1,1)")
	}
	if start, _ := g.CellAt(0, 0); !start.IsStart() {
		t.Error("Expected start at (0,0)")
	}
	if end, _ := g.CellAt(2, 2); !end.IsEnd() {
		t.Error("Expected end at (2,2)")
	}
}

func TestFromLayout_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{"empty", nil},
		{"ragged", []string{"...", "..", "..."}},
		{"bad char", []string{"..", ".P"}},
		{"search mark", []string{"..", ".*"}},
		{"two starts", []string{"S.", ".S"}},
		{"two ends", []string{"E.", "E."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromLayout(tt.rows); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	g, err := FromLayout([]string{
		"S.#",
		"...",
		"#.E",
	})
	if err != nil {
		t.Fatalf("FromLayout failed: %v", err)
	}

	cell, _ := g.CellAt(0, 1)
	cell.SetStatus(Path)
	cell, _ = g.CellAt(1, 0)
	cell.SetStatus(Visited)
	cell, _ = g.CellAt(1, 1)
	cell.SetStatus(Frontier)

	snap := g.Snapshot()
	if snap.Size != 3 {
		t.Errorf("Expected size 3, got %d", snap.Size)
	}
	if got := strings.Join(snap.Rows, "|"); got != "S*#|xo.|#.E" {
		t.Errorf("Expected rows S*#|xo.|#.E, got %s", got)
	}
	if snap.Start == nil || *snap.Start != (Position{Row: 0, Col: 0}) {
		t.Errorf("Expected start (0,0), got %v", snap.Start)
	}
	if snap.End == nil || *snap.End != (Position{Row: 2, Col: 2}) {
		t.Errorf("Expected end (2,2), got %v", snap.End)
	}
	if got := g.String(); got != "S*#\nxo.\n#.E" {
		t.Errorf("Unexpected String():\n%s", got)
	}
}
