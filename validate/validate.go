// Command validate checks the board layout JSON files in a directory
// (configs by default). For every file it checks:
//   - JSON structure and required fields
//   - A square grid of the declared size using only . # S E
//   - At most one start and one end
//   - Reachability: when both endpoints exist, a search must find a path
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/astar-visualizer/board/grid"
	"github.com/wricardo/astar-visualizer/board/layout"
	"github.com/wricardo/astar-visualizer/board/search"
)

// ValidationResult captures the outcome of validating a single file.
// Errors holds the problems found; Info holds the summary of a valid file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

// validateLayout loads and validates a single layout file
func validateLayout(ctx context.Context, filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	l, err := layout.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	g, err := l.Grid()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	walls := g.Count(grid.Wall)
	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", l.Name),
		fmt.Sprintf("✓ Grid: %dx%d", l.Size, l.Size),
		fmt.Sprintf("✓ Walls: %d (%.1f%%)", walls, 100*float64(walls)/float64(l.Size*l.Size)),
	)

	start, hasStart := g.Find(grid.Start)
	end, hasEnd := g.Find(grid.End)
	if !hasStart || !hasEnd {
		result.Info = append(result.Info, "✓ Endpoints: not placed, reachability skipped")
		return result
	}

	g.RecomputeNeighbors()
	pathResult, err := search.NewEngine().Search(ctx, g, start, end, nil)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Search failed: %v", err))
		return result
	}

	switch pathResult.Outcome {
	case search.Found:
		result.Info = append(result.Info, fmt.Sprintf("✓ Reachable: path length %d, %d cells expanded",
			pathResult.Length(), pathResult.Expanded))
	case search.Exhausted:
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: end (%d,%d) unreachable from start (%d,%d)",
			end.Row, end.Col, start.Row, start.Col))
	default:
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Search did not finish: %s", pathResult.Outcome))
	}

	return result
}

// report prints the results and reports whether every file was valid
func report(results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All layouts are valid!")
	} else {
		fmt.Println("❌ Some layouts have errors")
	}
	return allValid
}

// validateDir validates every *.json file in dir
func validateDir(ctx context.Context, dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("error finding layout files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no layout files in %s", dir)
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateLayout(ctx, file))
	}
	return results, nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "Validate board layout files",
		ArgsUsage: "[layouts-dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "Directory containing layouts", Sources: cli.EnvVars("LAYOUTS_DIR")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("dir")
			if cmd.Args().Len() > 0 {
				dir = cmd.Args().First()
			}

			results, err := validateDir(ctx, dir)
			if err != nil {
				return err
			}
			if !report(results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
