// Package api provides the HTTP REST API for the pathfinding visualizer.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a board ({layout_id?, size?})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session, cancelling any running search
//
// Board Editing:
//   - GET /api/sessions/{id}/board - Current board, or the latest frame while searching
//   - POST /api/sessions/{id}/cells - Paint one cell ({row, col, status})
//   - POST /api/sessions/{id}/cells/bulk - Paint several cells ({cells: [...]})
//   - POST /api/sessions/{id}/clear - Reset the board, or only the search marks with {keep_walls: true}
//
// Search:
//   - POST /api/sessions/{id}/search - Start a search; {wait: true} blocks until it ends
//   - POST /api/sessions/{id}/cancel - Cancel the running search
//
// Layouts:
//   - GET /api/layouts - List layouts
//   - GET /api/layouts/{name} - Get a layout
//
// Live updates are streamed on GET /ws?session={id}; see package websocket.
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "error message"}
//
// with 404 for unknown sessions or layouts, 409 when a search is (or is not)
// running, and 400 for invalid edits, coordinates or missing endpoints.
package api
