package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLayout(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestValidateLayout_Valid(t *testing.T) {
	path := writeLayout(t, t.TempDir(), "maze.json", `{
		"name": "Maze",
		"description": "Test maze",
		"size": 5,
		"layout": [
			"S....",
			"####.",
			".....",
			".####",
			"....E"
		]
	}`)

	result := validateLayout(context.Background(), path)
	if !result.Valid {
		t.Fatalf("Expected valid layout, but got errors: %v", result.Errors)
	}
	if result.File != "maze.json" {
		t.Errorf("Expected file name maze.json, got %s", result.File)
	}

	info := strings.Join(result.Info, "\n")
	for _, want := range []string{"✓ Name: Maze", "✓ Grid: 5x5", "✓ Walls: 8", "path length 16"} {
		if !strings.Contains(info, want) {
			t.Errorf("Expected %q in info, got:\n%s", want, info)
		}
	}
}

func TestValidateLayout_OpenBoardReachable(t *testing.T) {
	// Freshly parsed boards carry no adjacency until it is computed
	path := writeLayout(t, t.TempDir(), "open.json", `{"name": "Open", "size": 3, "layout": ["S..", "...", "..E"]}`)

	result := validateLayout(context.Background(), path)
	if !result.Valid {
		t.Fatalf("Expected open board to be reachable, got errors: %v", result.Errors)
	}
	if !strings.Contains(strings.Join(result.Info, "\n"), "path length 4") {
		t.Errorf("Expected path length 4, got: %v", result.Info)
	}
}

func TestValidateLayout_NoEndpoints(t *testing.T) {
	path := writeLayout(t, t.TempDir(), "blank.json", `{"name": "Blank", "size": 2, "layout": ["..", ".#"]}`)

	result := validateLayout(context.Background(), path)
	if !result.Valid {
		t.Fatalf("Expected a layout without endpoints to be valid, got: %v", result.Errors)
	}
	if !strings.Contains(strings.Join(result.Info, "\n"), "reachability skipped") {
		t.Errorf("Expected reachability to be skipped, got: %v", result.Info)
	}
}

func TestValidateLayout_Unreachable(t *testing.T) {
	path := writeLayout(t, t.TempDir(), "walled.json", `{
		"name": "Walled",
		"size": 3,
		"layout": ["S#.", "##.", "..E"]
	}`)

	result := validateLayout(context.Background(), path)
	if result.Valid {
		t.Fatal("Expected unreachable end to be invalid")
	}
	if !strings.Contains(result.Errors[0], "Connectivity failure") {
		t.Errorf("Expected connectivity error, got: %v", result.Errors)
	}
}

func TestValidateLayout_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"bad_json.json", `{"name": `},
		{"no_name.json", `{"size": 2, "layout": ["..", ".."]}`},
		{"size_mismatch.json", `{"name": "x", "size": 3, "layout": ["..", ".."]}`},
		{"ragged.json", `{"name": "x", "size": 2, "layout": ["..", "..."]}`},
		{"bad_char.json", `{"name": "x", "size": 2, "layout": [".P", ".."]}`},
		{"two_starts.json", `{"name": "x", "size": 2, "layout": ["SS", ".E"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateLayout(context.Background(), writeLayout(t, dir, tt.name, tt.content))
			if result.Valid {
				t.Errorf("Expected %s to be invalid", tt.name)
			}
			if len(result.Errors) == 0 {
				t.Error("Expected at least one error")
			}
		})
	}
}

func TestValidateLayout_MissingFile(t *testing.T) {
	result := validateLayout(context.Background(), "/non/existent/layout.json")
	if result.Valid {
		t.Error("Expected missing file to be invalid")
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "a.json", `{"name": "A", "size": 2, "layout": ["S.", ".E"]}`)
	writeLayout(t, dir, "b.json", `{"name": "B", "size": 2, "layout": ["S#", "#E"]}`)
	writeLayout(t, dir, "notes.txt", "ignored")

	results, err := validateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if !results[0].Valid || results[1].Valid {
		t.Errorf("Expected a.json valid and b.json invalid, got %v and %v", results[0].Valid, results[1].Valid)
	}
	if report(results) {
		t.Error("Expected report to flag the invalid layout")
	}

	if _, err := validateDir(context.Background(), t.TempDir()); err == nil {
		t.Error("Expected error for a directory without layouts")
	}
}

func TestConfigsDirectory(t *testing.T) {
	results, err := validateDir(context.Background(), "../configs")
	if err != nil {
		t.Skipf("Skipping - configs directory not usable: %v", err)
	}
	for _, result := range results {
		if !result.Valid {
			t.Errorf("%s is invalid: %v", result.File, result.Errors)
		}
	}
}
