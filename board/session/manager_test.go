package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/astar-visualizer/board/grid"
	"github.com/wricardo/astar-visualizer/board/layout"
	"github.com/wricardo/astar-visualizer/board/service"
)

func createTestLayout() *layout.Layout {
	return &layout.Layout{
		Name:        "Test Layout",
		Description: "Test layout",
		Size:        5,
		Layout: []string{
			"S....",
			".###.",
			"...#.",
			".#...",
			"....E",
		},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	l := createTestLayout()

	t.Run("create with generated ID", func(t *testing.T) {
		session, err := manager.Create("", "test", l)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %q", session.ID)
		}
		if session.Grid == nil || session.Engine == nil {
			t.Fatal("Expected session to have a grid and an engine")
		}
		if session.Grid.Size() != 5 {
			t.Errorf("Expected grid size 5, got %d", session.Grid.Size())
		}
		if session.Grid.Count(grid.Wall) != 5 {
			t.Errorf("Expected 5 walls, got %d", session.Grid.Count(grid.Wall))
		}
		if session.LayoutID != "test" {
			t.Errorf("Expected layout id test, got %s", session.LayoutID)
		}
		if session.LastAccessed().IsZero() {
			t.Error("Expected last accessed time to be set")
		}
	})

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("abcd", "test", l)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "abcd" {
			t.Errorf("Expected ID abcd, got %s", session.ID)
		}
	})

	t.Run("duplicate ID is rejected case-insensitively", func(t *testing.T) {
		_, err := manager.Create("ABCD", "test", l)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("a/b", "test", l)
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("nil layout", func(t *testing.T) {
		_, err := manager.Create("", "test", nil)
		if !errors.Is(err, layout.ErrInvalidLayout) {
			t.Errorf("Expected ErrInvalidLayout, got %v", err)
		}
	})

	t.Run("sessions get independent grids", func(t *testing.T) {
		a, _ := manager.Create("", "test", l)
		b, _ := manager.Create("", "test", l)
		cell, _ := a.Grid.CellAt(0, 1)
		cell.SetStatus(grid.Wall)
		other, _ := b.Grid.CellAt(0, 1)
		if other.IsWall() {
			t.Error("Expected edits on one session not to leak into another")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("AbCd", "test", createTestLayout())

	for _, id := range []string{"AbCd", "abcd", "ABCD"} {
		session, err := manager.Get(id)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", id, err)
		}
		if session != created {
			t.Errorf("Get(%s) returned a different session", id)
		}
	}

	if _, err := manager.Get("zzzz"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	l := createTestLayout()

	first, err := manager.GetOrCreate("0001", "test", l)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := manager.GetOrCreate("0001", "test", l)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first != second {
		t.Error("Expected GetOrCreate to return the existing session")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_ListAndDelete(t *testing.T) {
	manager := NewManager()
	l := createTestLayout()

	manager.Create("aaaa", "test", l)
	time.Sleep(time.Millisecond)
	manager.Create("bbbb", "test", l)

	sessions := manager.List()
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "aaaa" || sessions[1].ID != "bbbb" {
		t.Errorf("Expected sessions ordered by creation, got %s, %s", sessions[0].ID, sessions[1].ID)
	}

	if err := manager.Delete("AAAA"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := manager.Delete("aaaa"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("", "test", createTestLayout())
	before := session.LastAccessed()

	time.Sleep(2 * time.Millisecond)
	if err := manager.UpdateLastAccessed(strings.ToUpper(session.ID)); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessed().After(before) {
		t.Error("Expected last accessed time to move forward")
	}

	if err := manager.UpdateLastAccessed("zzzz"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	manager := NewManager()
	l := createTestLayout()

	old, _ := manager.Create("old1", "test", l)
	manager.Create("new1", "test", l)
	old.Touch(time.Now().Add(-2 * time.Hour))

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 session removed, got %d", removed)
	}
	if _, err := manager.Get("old1"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected expired session to be removed")
	}
	if _, err := manager.Get("new1"); err != nil {
		t.Error("Expected fresh session to remain")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	l := createTestLayout()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("", "test", l)
			if err != nil {
				t.Errorf("Create failed: %v", err)
				return
			}
			manager.Get(session.ID)
			manager.UpdateLastAccessed(session.ID)
			manager.List()
		}()
	}
	wg.Wait()

	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIDSpaceExhausted(t *testing.T) {
	manager := NewManager()
	l := createTestLayout()

	// Occupy every ID except one
	for n := 0; n <= 0xffff; n++ {
		id := fmt.Sprintf("%04x", n)
		if id == "beef" {
			continue
		}
		manager.sessions[id] = &service.Session{ID: id}
	}

	session, err := manager.Create("", "test", l)
	if err != nil {
		t.Fatalf("Expected the last free ID to be used, got error: %v", err)
	}
	if session.ID != "beef" {
		t.Errorf("Expected ID beef, got %s", session.ID)
	}

	_, err = manager.Create("", "test", l)
	if !errors.Is(err, ErrNoSessionIDs) {
		t.Errorf("Expected ErrNoSessionIDs, got %v", err)
	}
}
