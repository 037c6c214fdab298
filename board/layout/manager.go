package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultLayoutID is loaded as the default when present
const DefaultLayoutID = "classic"

// Manager handles layout loading and caching
type Manager struct {
	dir           string
	defaultSize   int
	defaultLayout *Layout
	defaultID     string
	layouts       map[string]*Layout
	mu            sync.RWMutex
}

// NewManager creates a new layout manager. defaultSize is used for the blank
// fallback board when the directory holds no usable layout.
func NewManager(dir string, defaultSize int) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("layouts directory does not exist: %s", dir)
	}

	m := &Manager{
		dir:         dir,
		defaultSize: defaultSize,
		layouts:     make(map[string]*Layout),
	}

	if err := m.loadDefault(); err != nil {
		return nil, fmt.Errorf("failed to load default layout: %w", err)
	}

	return m, nil
}

// Dir returns the directory layouts are read from
func (m *Manager) Dir() string {
	return m.dir
}

// Load loads a layout by id (file name without .json)
func (m *Manager) Load(name string) (*Layout, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, ErrLayoutNotFound
	}

	m.mu.RLock()
	if l, exists := m.layouts[name]; exists {
		m.mu.RUnlock()
		return l, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if l, exists := m.layouts[name]; exists {
		return l, nil
	}

	l, err := ReadFile(filepath.Join(m.dir, name+".json"))
	if err != nil {
		return nil, err
	}

	m.layouts[name] = l
	return l, nil
}

// ReadFile reads and validates a single layout file
func ReadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidLayout, filepath.Base(path), err)
	}

	if err := Validate(&l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return &l, nil
}

// List returns information about all valid layouts in the directory
func (m *Manager) List() ([]*Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read layouts directory: %w", err)
	}

	var infos []*Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		l, err := m.Load(id)
		if err != nil {
			// Skip invalid layouts
			continue
		}
		infos = append(infos, l.info(entry.Name(), id))
	}

	return infos, nil
}

// Default returns the default layout
func (m *Manager) Default() *Layout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLayout
}

// DefaultID returns the id of the default layout, "empty" for the blank fallback
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SetDefault sets the default layout by id
func (m *Manager) SetDefault(name string) error {
	l, err := m.Load(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLayout = l
	m.defaultID = strings.TrimSuffix(name, ".json")
	return nil
}

// RefreshCache drops cached layouts and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.layouts = make(map[string]*Layout)
	m.mu.Unlock()

	return m.loadDefault()
}

// loadDefault picks classic.json, then the first valid layout, then a blank board
func (m *Manager) loadDefault() error {
	id := DefaultLayoutID
	l, err := m.Load(id)
	if err != nil {
		infos, listErr := m.List()
		if listErr != nil || len(infos) == 0 {
			id, l = "empty", Empty(m.defaultSize)
		} else if l, err = m.Load(infos[0].LayoutID); err != nil {
			id, l = "empty", Empty(m.defaultSize)
		} else {
			id = infos[0].LayoutID
		}
	}

	if err := Validate(l); err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultLayout = l
	m.defaultID = id
	m.mu.Unlock()
	return nil
}
