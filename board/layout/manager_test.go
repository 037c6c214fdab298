package layout

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/astar-visualizer/board/grid"
)

func validLayout(name string) *Layout {
	return &Layout{
		Name:        name,
		Description: "Test layout",
		Size:        4,
		Layout: []string{
			"S..#",
			".#..",
			"..#.",
			"#..E",
		},
	}
}

func writeLayoutFile(t *testing.T, dir, id string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal layout: %v", err)
	}
	writeRaw(t, dir, id+".json", string(data))
}

func writeRaw(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(l *Layout)
		wantErr bool
	}{
		{"valid", func(l *Layout) {}, false},
		{"missing name", func(l *Layout) { l.Name = "" }, true},
		{"size zero", func(l *Layout) { l.Size = 0 }, true},
		{"size mismatch", func(l *Layout) { l.Size = 5 }, true},
		{"ragged row", func(l *Layout) { l.Layout[2] = "..." }, true},
		{"unknown char", func(l *Layout) { l.Layout[1] = ".P.." }, true},
		{"two starts", func(l *Layout) { l.Layout[1] = "S#.." }, true},
		{"no endpoints is fine", func(l *Layout) { l.Layout[0] = "...#"; l.Layout[3] = "#..." }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLayout("test")
			tt.mutate(l)
			err := Validate(l)
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
	if err := Validate(nil); err == nil {
		t.Error("Expected error for nil layout")
	}
}

func TestLayout_Grid(t *testing.T) {
	g, err := validLayout("test").Grid()
	if err != nil {
		t.Fatalf("Grid failed: %v", err)
	}
	if g.Size() != 4 {
		t.Errorf("Expected size 4, got %d", g.Size())
	}
	if n := g.Count(grid.Wall); n != 4 {
		t.Errorf("Expected 4 walls, got %d", n)
	}

	bad := validLayout("bad")
	bad.Size = 9
	if _, err := bad.Grid(); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("Expected ErrInvalidLayout, got %v", err)
	}
}

func TestEmpty(t *testing.T) {
	l := Empty(3)
	if err := Validate(l); err != nil {
		t.Fatalf("Expected blank layout to validate, got %v", err)
	}
	if got := strings.Join(l.Layout, "|"); got != "...|...|..." {
		t.Errorf("Expected blank rows, got %s", got)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		if _, err := NewManager(filepath.Join(t.TempDir(), "nope"), 10); err == nil {
			t.Error("Expected error for missing directory")
		}
	})

	t.Run("empty directory falls back to blank board", func(t *testing.T) {
		m, err := NewManager(t.TempDir(), 12)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.Default().Name != "empty" || m.Default().Size != 12 {
			t.Errorf("Expected blank 12x12 default, got %s (%d)", m.Default().Name, m.Default().Size)
		}
		if m.DefaultID() != "empty" {
			t.Errorf("Expected default id empty, got %s", m.DefaultID())
		}
	})

	t.Run("invalid fallback size", func(t *testing.T) {
		if _, err := NewManager(t.TempDir(), 0); err == nil {
			t.Error("Expected error for zero fallback size")
		}
	})

	t.Run("classic preferred", func(t *testing.T) {
		dir := t.TempDir()
		writeLayoutFile(t, dir, "aaa", validLayout("First"))
		writeLayoutFile(t, dir, "classic", validLayout("Classic"))

		m, err := NewManager(dir, 10)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.Default().Name != "Classic" || m.DefaultID() != "classic" {
			t.Errorf("Expected classic default, got %s (%s)", m.Default().Name, m.DefaultID())
		}
	})

	t.Run("first valid layout otherwise", func(t *testing.T) {
		dir := t.TempDir()
		writeLayoutFile(t, dir, "maze", validLayout("Maze"))

		m, err := NewManager(dir, 10)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.Default().Name != "Maze" || m.DefaultID() != "maze" {
			t.Errorf("Expected maze default, got %s (%s)", m.Default().Name, m.DefaultID())
		}
	})
}

func TestManager_Load(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "maze", validLayout("Maze"))
	bad := validLayout("Broken")
	bad.Layout[0] = "S..#X"
	writeLayoutFile(t, dir, "broken", bad)
	writeRaw(t, dir, "garbage.json", "{not json")

	m, err := NewManager(dir, 10)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	l, err := m.Load("maze")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if l.Name != "Maze" {
		t.Errorf("Expected name Maze, got %s", l.Name)
	}

	again, err := m.Load("maze.json")
	if err != nil {
		t.Fatalf("Load with extension failed: %v", err)
	}
	if again != l {
		t.Error("Expected cached layout to be returned")
	}

	tests := []struct {
		id   string
		want error
	}{
		{"missing", ErrLayoutNotFound},
		{"../maze", ErrLayoutNotFound},
		{"broken", ErrInvalidLayout},
		{"garbage", ErrInvalidLayout},
	}
	for _, tt := range tests {
		if _, err := m.Load(tt.id); !errors.Is(err, tt.want) {
			t.Errorf("Load(%q): expected %v, got %v", tt.id, tt.want, err)
		}
	}
}

func TestManager_List(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "maze", validLayout("Maze"))
	writeLayoutFile(t, dir, "open", Empty(6))
	writeRaw(t, dir, "readme.txt", "ignored")
	writeRaw(t, dir, "garbage.json", "{")

	m, err := NewManager(dir, 10)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	infos, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 layouts, got %d", len(infos))
	}

	byID := map[string]*Info{}
	for _, info := range infos {
		byID[info.LayoutID] = info
	}

	maze, ok := byID["maze"]
	if !ok {
		t.Fatal("Expected maze in list")
	}
	if maze.Filename != "maze.json" || maze.Walls != 4 || !maze.HasStart || !maze.HasEnd {
		t.Errorf("Unexpected maze info: %+v", maze)
	}

	open, ok := byID["open"]
	if !ok {
		t.Fatal("Expected open in list")
	}
	if open.Walls != 0 || open.HasStart {
		t.Errorf("Unexpected open info: %+v", open)
	}
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "classic", validLayout("Classic"))
	writeLayoutFile(t, dir, "maze", validLayout("Maze"))

	m, err := NewManager(dir, 10)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := m.SetDefault("maze"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if m.Default().Name != "Maze" {
		t.Errorf("Expected Maze default, got %s", m.Default().Name)
	}
	if err := m.SetDefault("missing"); !errors.Is(err, ErrLayoutNotFound) {
		t.Errorf("Expected ErrLayoutNotFound, got %v", err)
	}

	writeLayoutFile(t, dir, "classic", validLayout("Classic v2"))
	if err := m.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if m.Default().Name != "Classic v2" {
		t.Errorf("Expected refreshed classic default, got %s", m.Default().Name)
	}
}

func TestManager_ConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "maze", validLayout("Maze"))
	m, err := NewManager(dir, 10)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Load("maze"); err != nil {
				t.Errorf("Load failed: %v", err)
			}
		}()
	}
	wg.Wait()
}
