package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/astar-visualizer/board/grid"
	"github.com/wricardo/astar-visualizer/board/layout"
	"github.com/wricardo/astar-visualizer/board/search"
	"github.com/wricardo/astar-visualizer/board/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// run_search waits for the run, which the step delay can stretch
			Timeout: 2 * time.Minute,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"A* Pathfinding Visualizer",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`A* Pathfinding Visualizer - MCP Interface

This is a thin client that proxies all requests to the REST API server.

BOARD:
A square grid of cells. Each cell is empty (.), a wall (#), the start (S) or
the end (E). After a search, o marks frontier cells, x visited cells and *
the shortest path. Rows are numbered top to bottom, columns left to right,
both starting at 0.

WORKFLOW:
1. create_session (optionally from a layout, see list_layouts)
2. paint_cell / paint_cells to place the start, the end and walls
3. run_search to find the shortest 4-connected path
4. board_state to inspect the result

AVAILABLE TOOLS:
- create_session, get_session, list_sessions, delete_session
- board_state: Show the board and the last search result
- paint_cell, paint_cells: Edit cells (empty, wall, start, end)
- clear_board: Reset the board or only the search marks
- run_search, cancel_search
- list_layouts`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new board, either from a layout or blank with the given size",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"layout_id": map[string]interface{}{
					"type":        "string",
					"description": "Layout to start from (optional, see list_layouts)",
				},
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Side length of a blank board (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active boards",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session, cancelling any running search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)

	// Board
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Show the board and the result of the last search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "paint_cell",
		Description: "Set one cell to empty, wall, start or end. Placing a start or end moves the existing one.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row, 0 is the top row",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column, 0 is the left column",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"empty", "wall", "start", "end"},
					"description": "New status of the cell",
				},
			},
			Required: []string{"session_id", "row", "col", "status"},
		},
	}, c.handlePaintCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "paint_cells",
		Description: "Apply several cell edits in order; stops at the first invalid one",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"cells": map[string]interface{}{
					"type":        "array",
					"description": "Edits as objects with row, col and status",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"row":    map[string]interface{}{"type": "integer"},
							"col":    map[string]interface{}{"type": "integer"},
							"status": map[string]interface{}{"type": "string"},
						},
					},
				},
			},
			Required: []string{"session_id", "cells"},
		},
	}, c.handlePaintCells)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_board",
		Description: "Reset the board to blank, or with keep_walls only remove the marks of the last search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"keep_walls": map[string]interface{}{
					"type":        "boolean",
					"description": "Keep walls, start and end",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleClearBoard)

	// Search
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_search",
		Description: "Run A* from the start to the end and report the shortest path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "Wait for the search to finish (default true)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRunSearch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_search",
		Description: "Cancel the running search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleCancelSearch)

	// Layouts
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_layouts",
		Description: "List the preset layouts available for create_session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLayouts)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool arguments as a map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if layoutID, _ := args["layout_id"].(string); layoutID != "" {
		body["layout_id"] = layoutID
	}
	if size, ok := intArg(args, "size"); ok {
		body["size"] = size
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created " + formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		state := search.StateIdle
		if s.Board != nil {
			state = s.Board.State
		}
		fmt.Fprintf(&b, "- %s (Layout: %s, %dx%d, %s, Created: %s)\n",
			s.ID, s.LayoutID, s.Size, s.Size, state, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	if err := c.apiCall(ctx, "DELETE", fmt.Sprintf("/api/sessions/%s", sessionID), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s deleted", sessionID)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state service.BoardState
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/board", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardState(&state)), nil
}

func (c *Client) handlePaintCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	status, _ := args["status"].(string)
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	body := map[string]interface{}{
		"row":    row,
		"col":    col,
		"status": status,
	}

	var state service.BoardState
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/cells", sessionID), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("(%d,%d) is now %s\n\n%s", row, col, status, formatBoardState(&state))), nil
}

func (c *Client) handlePaintCells(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	cellsRaw, _ := args["cells"].([]interface{})
	if len(cellsRaw) == 0 {
		return mcp.NewToolResultError("cells must be a non-empty array"), nil
	}

	cells := make([]map[string]interface{}, 0, len(cellsRaw))
	for i, raw := range cellsRaw {
		cell, ok := raw.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("cell %d must be an object", i)), nil
		}
		row, okRow := intArg(cell, "row")
		col, okCol := intArg(cell, "col")
		status, _ := cell["status"].(string)
		if !okRow || !okCol {
			return mcp.NewToolResultError(fmt.Sprintf("cell %d needs integer row and col", i)), nil
		}
		cells = append(cells, map[string]interface{}{"row": row, "col": col, "status": status})
	}

	var state service.BoardState
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/cells/bulk", sessionID), map[string]interface{}{"cells": cells}, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Applied %d edits\n\n%s", len(cells), formatBoardState(&state))), nil
}

func (c *Client) handleClearBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	keepWalls, _ := args["keep_walls"].(bool)

	var state service.BoardState
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/clear", sessionID), map[string]bool{"keep_walls": keepWalls}, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardState(&state)), nil
}

func (c *Client) handleRunSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	wait := true
	if w, ok := args["wait"].(bool); ok {
		wait = w
	}

	var run service.RunResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/search", sessionID), map[string]bool{"wait": wait}, &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunResult(&run)), nil
}

func (c *Client) handleCancelSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/cancel", sessionID), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Cancellation requested. Use board_state to see where the search stopped."), nil
}

func (c *Client) handleListLayouts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var layouts []layout.Info
	if err := c.apiCall(ctx, "GET", "/api/layouts", nil, &layouts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Layouts (%d):\n\n", len(layouts))
	for _, l := range layouts {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %d walls)", l.LayoutID, l.Name, l.Size, l.Size, l.Walls)
		if l.Description != "" {
			fmt.Fprintf(&b, " - %s", l.Description)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLayout: %s (%s)\nCreated: %s\n\n%s",
		session.ID, session.LayoutID, session.LayoutName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatBoardState(session.Board))
}

func formatBoardState(state *service.BoardState) string {
	if state == nil {
		return "No board available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "State: %s", state.State)
	if state.State == search.StateRunning {
		fmt.Fprintf(&b, " (step %d)", state.Step)
	}
	b.WriteString("\n")

	if state.Result != nil {
		fmt.Fprintf(&b, "Outcome: %s | Expanded: %d", state.Result.Outcome, state.Result.Expanded)
		if state.Result.Outcome == search.Found {
			fmt.Fprintf(&b, " | Path length: %d", state.Length)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(state.Board))
	return b.String()
}

func formatSnapshot(snap *grid.Snapshot) string {
	if snap == nil {
		return ""
	}

	var b strings.Builder
	if snap.Start != nil {
		fmt.Fprintf(&b, "Start: (%d,%d)", snap.Start.Row, snap.Start.Col)
	} else {
		b.WriteString("Start: not set")
	}
	if snap.End != nil {
		fmt.Fprintf(&b, " | End: (%d,%d)\n", snap.End.Row, snap.End.Col)
	} else {
		b.WriteString(" | End: not set\n")
	}
	for _, row := range snap.Rows {
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString("Legend: . empty, # wall, S start, E end, o frontier, x visited, * path\n")
	return b.String()
}

func formatPath(path []grid.Position) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return strings.Join(parts, " -> ")
}

func formatRunResult(run *service.RunResult) string {
	if !run.Done {
		return fmt.Sprintf("Search %s started on session %s. Use board_state to follow it.", run.RunID, run.SessionID)
	}

	var b strings.Builder
	if run.Result != nil {
		switch run.Result.Outcome {
		case search.Found:
			fmt.Fprintf(&b, "Path found: length %d, %d cells expanded\n", run.Length, run.Result.Expanded)
			if len(run.Result.Path) > 0 {
				fmt.Fprintf(&b, "Path: %s\n", formatPath(run.Result.Path))
			}
		case search.Exhausted:
			fmt.Fprintf(&b, "No path: the end is unreachable (%d cells expanded)\n", run.Result.Expanded)
		case search.Cancelled:
			fmt.Fprintf(&b, "Search cancelled after %d expansions\n", run.Result.Expanded)
		}
	}
	if run.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", run.Error)
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(run.Board))
	return b.String()
}
