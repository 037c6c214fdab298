package layout

import (
	"errors"
	"fmt"

	"github.com/wricardo/astar-visualizer/board/grid"
)

var (
	ErrLayoutNotFound = errors.New("layout not found")
	ErrInvalidLayout  = errors.New("invalid layout")
)

// Layout is a named preset board
type Layout struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Size        int      `json:"size"`
	Layout      []string `json:"layout"`
}

// Info summarizes a layout for listings
type Info struct {
	Filename    string `json:"filename"`
	LayoutID    string `json:"layout_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Size        int    `json:"size"`
	Walls       int    `json:"walls"`
	HasStart    bool   `json:"has_start"`
	HasEnd      bool   `json:"has_end"`
}

// Validate checks a layout for correctness
func Validate(l *Layout) error {
	if l == nil {
		return fmt.Errorf("layout validation: layout is nil")
	}
	if l.Name == "" {
		return fmt.Errorf("layout validation: name is required")
	}
	if l.Size < grid.MinSize || l.Size > grid.MaxSize {
		return fmt.Errorf("layout validation: size must be between %d and %d, got %d", grid.MinSize, grid.MaxSize, l.Size)
	}
	if len(l.Layout) != l.Size {
		return fmt.Errorf("layout validation: layout must have %d rows to match size, got %d", l.Size, len(l.Layout))
	}
	if _, err := grid.FromLayout(l.Layout); err != nil {
		return fmt.Errorf("layout validation: %v", err)
	}
	return nil
}

// Grid builds a fresh grid from the layout rows
func (l *Layout) Grid() (*grid.Grid, error) {
	if err := Validate(l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return grid.FromLayout(l.Layout)
}

// Empty returns a blank layout of the given size
func Empty(size int) *Layout {
	rows := make([]string, size)
	line := make([]byte, size)
	for i := range line {
		line[i] = grid.Empty.Char()
	}
	for i := range rows {
		rows[i] = string(line)
	}
	return &Layout{
		Name:        "empty",
		Description: fmt.Sprintf("Blank %dx%d board", size, size),
		Size:        size,
		Layout:      rows,
	}
}

func (l *Layout) info(filename, id string) *Info {
	info := &Info{
		Filename:    filename,
		LayoutID:    id,
		Name:        l.Name,
		Description: l.Description,
		Size:        l.Size,
	}
	for _, row := range l.Layout {
		for _, ch := range row {
			switch ch {
			case '#':
				info.Walls++
			case 'S':
				info.HasStart = true
			case 'E':
				info.HasEnd = true
			}
		}
	}
	return info
}
