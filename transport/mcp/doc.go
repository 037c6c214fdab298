// Package mcp exposes the visualizer to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call is translated into a REST call
// against the api package and the JSON answer is rendered as text, with the
// board drawn using the layout legend.
//
// MCP Tools:
//   - create_session, get_session, list_sessions, delete_session
//   - board_state: board rows, endpoints and the last search result
//   - paint_cell, paint_cells: edit cells (empty, wall, start, end)
//   - clear_board: reset the board, or only the search marks
//   - run_search: run A* and report the path (waits by default)
//   - cancel_search
//   - list_layouts
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp, handled with MCPServer.HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
