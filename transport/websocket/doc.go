// Package websocket streams board updates and search frames to browsers
// and other live clients.
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection. Each client connection has a read goroutine (which only keeps
// the connection alive) and a write goroutine fed by a buffered channel.
// Clients that cannot keep up with the frame rate are dropped.
//
// Message Protocol:
//
// Messages are JSON objects:
//
//	{"session_id": "a1b2", "run_id": "...", "event": "search_step", "step": 12, "board": {...}}
//
// Events:
//   - board_update: sent on connect and after every edit
//   - search_step: one per expansion of a running search
//   - search_done: the final board with the run result in data
//
// Several queued messages may share one WebSocket frame, separated by a
// newline.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID, initialMessage)
//	hub.BroadcastFrame(frame)
package websocket
