// Package session manages the lifecycle of board sessions.
//
// Each session owns its own grid and search engine, so several boards can be
// edited and searched independently. Sessions live in memory only and are
// identified by short 4-character hex IDs, looked up case-insensitively.
//
// Example:
//
//	manager := session.NewManager()
//	s, err := manager.Create("", "maze", mazeLayout)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Periodically drop idle sessions
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
