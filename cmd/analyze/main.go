// Command analyze prints search statistics for board layouts: grid size,
// wall density, outcome, path length, cells expanded and how far the path
// strays from the Manhattan lower bound between start and end.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/astar-visualizer/board/grid"
	"github.com/wricardo/astar-visualizer/board/layout"
	"github.com/wricardo/astar-visualizer/board/search"
)

// fallbackSize sizes the blank board the manager falls back to; it is
// never analyzed.
const fallbackSize = 50

// Analysis holds the statistics gathered for one layout.
type Analysis struct {
	LayoutID    string
	Name        string
	Size        int
	Walls       int
	Density     float64
	HasStart    bool
	HasEnd      bool
	Outcome     search.Outcome
	PathLength  int
	Expanded    int
	LowerBound  int
	Detour      int
	Explored    float64 // share of open cells expanded
	Unreachable bool
}

func analyze(ctx context.Context, layoutID string, l *layout.Layout) (*Analysis, error) {
	g, err := l.Grid()
	if err != nil {
		return nil, err
	}

	total := l.Size * l.Size
	a := &Analysis{
		LayoutID: layoutID,
		Name:     l.Name,
		Size:     l.Size,
		Walls:    g.Count(grid.Wall),
	}
	a.Density = float64(a.Walls) / float64(total)

	start, hasStart := g.Find(grid.Start)
	end, hasEnd := g.Find(grid.End)
	a.HasStart, a.HasEnd = hasStart, hasEnd
	if !hasStart || !hasEnd {
		return a, nil
	}

	a.LowerBound = grid.ManhattanDistance(start, end)

	g.RecomputeNeighbors()
	result, err := search.NewEngine().Search(ctx, g, start, end, nil)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", layoutID, err)
	}

	a.Outcome = result.Outcome
	a.Expanded = result.Expanded
	if open := total - a.Walls; open > 0 {
		a.Explored = float64(result.Expanded) / float64(open)
	}

	switch result.Outcome {
	case search.Found:
		a.PathLength = result.Length()
		a.Detour = a.PathLength - a.LowerBound
	case search.Exhausted:
		a.Unreachable = true
	}
	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "\n=== %s (%s) ===\n", a.Name, a.LayoutID)
	fmt.Fprintf(w, "Grid: %dx%d\n", a.Size, a.Size)
	fmt.Fprintf(w, "Walls: %d (%.1f%%)\n", a.Walls, 100*a.Density)

	if !a.HasStart || !a.HasEnd {
		fmt.Fprintf(w, "Endpoints: start=%t end=%t, nothing to search\n", a.HasStart, a.HasEnd)
		return
	}

	fmt.Fprintf(w, "Outcome: %s\n", a.Outcome)
	fmt.Fprintf(w, "Expanded: %d (%.1f%% of open cells)\n", a.Expanded, 100*a.Explored)
	fmt.Fprintf(w, "Manhattan lower bound: %d\n", a.LowerBound)

	if a.Unreachable {
		fmt.Fprintf(w, "⚠️  WARNING: end is not reachable from start\n")
		return
	}
	fmt.Fprintf(w, "Path length: %d\n", a.PathLength)
	if a.Detour == 0 {
		fmt.Fprintf(w, "✅ Path is as short as the lower bound\n")
	} else {
		fmt.Fprintf(w, "Detour: +%d steps over the lower bound\n", a.Detour)
	}
}

func run(ctx context.Context, w io.Writer, dir string, files []string) error {
	m, err := layout.NewManager(dir, fallbackSize)
	if err != nil {
		return err
	}

	ids := files
	if len(ids) == 0 {
		infos, err := m.List()
		if err != nil {
			return err
		}
		for _, info := range infos {
			ids = append(ids, info.LayoutID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no layouts found in %s", dir)
	}

	for _, id := range ids {
		l, err := m.Load(id)
		if err != nil {
			return err
		}
		a, err := analyze(ctx, id, l)
		if err != nil {
			return err
		}
		printAnalysis(w, a)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "print search statistics for board layouts",
		ArgsUsage: "[layout ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "configs",
				Usage:   "directory containing layout JSON files",
				Sources: cli.EnvVars("LAYOUTS_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, os.Stdout, cmd.String("dir"), cmd.Args().Slice())
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
