package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	boardPixels  = 800
	headerHeight = 60
	footerHeight = 30
	screenWidth  = boardPixels
	screenHeight = boardPixels + headerHeight + footerHeight
	defaultURL   = "http://localhost:8080"
	reconnectGap = 2 * time.Second
)

// Position is a cell coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Snapshot is the board as rendered by the server, one string per row
type Snapshot struct {
	Size  int       `json:"size"`
	Rows  []string  `json:"rows"`
	Start *Position `json:"start,omitempty"`
	End   *Position `json:"end,omitempty"`
}

// PathResult is the outcome of a finished search
type PathResult struct {
	Outcome  string     `json:"outcome"`
	Path     []Position `json:"path,omitempty"`
	Expanded int        `json:"expanded"`
}

// BoardState is the response of GET /api/sessions/{id}/board
type BoardState struct {
	SessionID string      `json:"session_id"`
	RunID     string      `json:"run_id,omitempty"`
	State     string      `json:"state"`
	Step      int         `json:"step"`
	Board     *Snapshot   `json:"board"`
	Result    *PathResult `json:"result,omitempty"`
	Length    int         `json:"length"`
}

// WSMessage is one frame pushed by the server hub
type WSMessage struct {
	SessionID string          `json:"session_id"`
	RunID     string          `json:"run_id,omitempty"`
	Event     string          `json:"event"`
	Step      int             `json:"step,omitempty"`
	Board     *Snapshot       `json:"board,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// runSummary is the data payload of a search_done event
type runSummary struct {
	Result *PathResult `json:"result,omitempty"`
	Length int         `json:"length"`
	Error  string      `json:"error,omitempty"`
}

// Visualizer is the desktop painting client for one board session
type Visualizer struct {
	baseURL   string
	sessionID string

	mu      sync.RWMutex
	board   *Snapshot
	state   string
	step    int
	status  string
	lastErr string

	// last cell painted during a drag, so holding the button does not
	// resend the same edit every frame
	dragCell *Position
	dragMode string
}

// NewVisualizer connects to sessionID, creating a session when it is empty
func NewVisualizer(baseURL, sessionID, layoutID string) (*Visualizer, error) {
	v := &Visualizer{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		sessionID: sessionID,
		state:     "idle",
	}

	if v.sessionID == "" {
		if err := v.createSession(layoutID); err != nil {
			return nil, err
		}
	}
	if err := v.fetchBoard(); err != nil {
		return nil, err
	}

	go v.listen()
	return v, nil
}

func (v *Visualizer) createSession(layoutID string) error {
	payload := map[string]interface{}{}
	if layoutID != "" {
		payload["layout_id"] = layoutID
	}

	var info struct {
		ID string `json:"id"`
	}
	if err := v.call(http.MethodPost, "/api/sessions", payload, &info); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	v.sessionID = info.ID
	log.Printf("Created new session: %s (layout: %s)", v.sessionID, layoutID)
	return nil
}

func (v *Visualizer) fetchBoard() error {
	var state BoardState
	if err := v.call(http.MethodGet, "/api/sessions/"+v.sessionID+"/board", nil, &state); err != nil {
		return err
	}

	v.mu.Lock()
	v.board = state.Board
	v.state = state.State
	v.step = state.Step
	v.status = describe(state.State, state.Result, state.Length)
	v.mu.Unlock()
	return nil
}

// call performs a JSON request against the server API
func (v *Visualizer) call(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, v.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to parse response: %v (body: %s)", err, string(data))
		}
	}
	return nil
}

// send fires a request without blocking the game loop
func (v *Visualizer) send(method, path string, body interface{}) {
	go func() {
		if err := v.call(method, path, body, nil); err != nil {
			log.Printf("%s %s: %v", method, path, err)
			v.mu.Lock()
			v.lastErr = err.Error()
			v.mu.Unlock()
			return
		}
		v.mu.Lock()
		v.lastErr = ""
		v.mu.Unlock()
	}()
}

func (v *Visualizer) wsURL() (string, error) {
	u, err := url.Parse(v.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("session", v.sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// listen keeps a WebSocket open and applies every frame it receives
func (v *Visualizer) listen() {
	for {
		if err := v.readFrames(); err != nil {
			log.Printf("WebSocket error for %s: %v (reconnecting)", v.sessionID, err)
		}
		time.Sleep(reconnectGap)
		if err := v.fetchBoard(); err != nil {
			log.Printf("Failed to refresh board: %v", err)
		}
	}
}

func (v *Visualizer) readFrames() error {
	wsURL, err := v.wsURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("WebSocket connected for session %s", v.sessionID)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		// The hub batches queued frames separated by newlines
		for _, part := range bytes.Split(message, []byte{'\n'}) {
			if len(bytes.TrimSpace(part)) == 0 {
				continue
			}
			var msg WSMessage
			if err := json.Unmarshal(part, &msg); err != nil {
				log.Printf("WebSocket JSON parse error: %v", err)
				continue
			}
			v.apply(&msg)
		}
	}
}

func (v *Visualizer) apply(msg *WSMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if msg.Board != nil {
		v.board = msg.Board
	}

	switch msg.Event {
	case "search_step":
		v.state = "running"
		v.step = msg.Step
		v.status = fmt.Sprintf("Searching... step %d", msg.Step)
	case "search_done":
		var summary runSummary
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &summary); err != nil {
				log.Printf("search_done payload: %v", err)
			}
		}
		v.state = "idle"
		if summary.Result != nil {
			v.state = summary.Result.Outcome
		}
		if summary.Error != "" {
			v.lastErr = summary.Error
		}
		v.status = describe(v.state, summary.Result, summary.Length)
	case "board_update":
		if v.state == "running" {
			break
		}
		v.state = "idle"
		v.status = "Board updated"
	}
}

func describe(state string, result *PathResult, length int) string {
	switch {
	case state == "running":
		return "Searching..."
	case result == nil:
		return "Ready"
	case result.Outcome == "found":
		return fmt.Sprintf("Path found: length %d, %d cells expanded", length, result.Expanded)
	case result.Outcome == "exhausted":
		return fmt.Sprintf("No path: %d cells expanded", result.Expanded)
	default:
		return fmt.Sprintf("Search %s after %d cells", result.Outcome, result.Expanded)
	}
}

// cellUnderCursor maps screen coordinates to a board cell
func (v *Visualizer) cellUnderCursor(x, y int) (Position, bool) {
	v.mu.RLock()
	board := v.board
	v.mu.RUnlock()
	if board == nil || board.Size == 0 {
		return Position{}, false
	}

	y -= headerHeight
	if x < 0 || y < 0 || x >= boardPixels || y >= boardPixels {
		return Position{}, false
	}
	cell := float64(boardPixels) / float64(board.Size)
	return Position{Row: int(float64(y) / cell), Col: int(float64(x) / cell)}, true
}

// paintStatus picks what a left click paints: start first, then end, then walls
func (v *Visualizer) paintStatus() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	switch {
	case v.board == nil || v.board.Start == nil:
		return "start"
	case v.board.End == nil:
		return "end"
	default:
		return "wall"
	}
}

func (v *Visualizer) paint(pos Position, status string) {
	if v.dragCell != nil && *v.dragCell == pos && v.dragMode == status {
		return
	}
	p := pos
	v.dragCell = &p
	v.dragMode = status
	v.send(http.MethodPost, "/api/sessions/"+v.sessionID+"/cells", map[string]interface{}{
		"row":    pos.Row,
		"col":    pos.Col,
		"status": status,
	})
}

// Update handles input once per tick
func (v *Visualizer) Update() error {
	v.mu.RLock()
	running := v.state == "running"
	v.mu.RUnlock()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && running {
		v.send(http.MethodPost, "/api/sessions/"+v.sessionID+"/cancel", nil)
	}
	if running {
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		v.send(http.MethodPost, "/api/sessions/"+v.sessionID+"/search", map[string]bool{"wait": false})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		v.send(http.MethodPost, "/api/sessions/"+v.sessionID+"/clear", map[string]bool{"keep_walls": false})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyK) {
		v.send(http.MethodPost, "/api/sessions/"+v.sessionID+"/clear", map[string]bool{"keep_walls": true})
	}

	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		if pos, ok := v.cellUnderCursor(x, y); ok {
			v.paint(pos, v.paintStatus())
		}
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		// dragging only draws walls
		if pos, ok := v.cellUnderCursor(x, y); ok && v.dragMode == "wall" {
			v.paint(pos, "wall")
		}
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		if pos, ok := v.cellUnderCursor(x, y); ok {
			v.paint(pos, "empty")
		}
	default:
		v.dragCell = nil
		v.dragMode = ""
	}
	return nil
}

// Draw renders the board and the status lines
func (v *Visualizer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 30, 255})

	v.mu.RLock()
	board := v.board
	status := v.status
	lastErr := v.lastErr
	v.mu.RUnlock()

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("A* Pathfinding Visualizer | Session: %s", v.sessionID), 10, 10)
	ebitenutil.DebugPrintAt(screen, status, 10, 28)
	if lastErr != "" {
		ebitenutil.DebugPrintAt(screen, "ERROR: "+lastErr, 400, 28)
	}

	if board != nil && board.Size > 0 {
		cell := float64(boardPixels) / float64(board.Size)
		gap := 1.0
		if cell < 4 {
			gap = 0
		}
		for row, line := range board.Rows {
			for col := 0; col < len(line); col++ {
				ebitenutil.DrawRect(screen,
					float64(col)*cell,
					float64(headerHeight)+float64(row)*cell,
					cell-gap, cell-gap,
					cellColor(line[col]))
			}
		}
	}

	ebitenutil.DebugPrintAt(screen,
		"L-click: start/end/wall | R-click: erase | SPACE: search | ESC: cancel | C: reset | K: clear marks",
		10, screenHeight-20)
}

// Layout returns the fixed screen size
func (v *Visualizer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// cellColor returns the color for a snapshot legend character
func cellColor(c byte) color.Color {
	switch c {
	case '#':
		return color.RGBA{20, 20, 20, 255} // Black for walls
	case 'S':
		return color.RGBA{255, 165, 0, 255} // Orange for start
	case 'E':
		return color.RGBA{64, 224, 208, 255} // Turquoise for end
	case 'o':
		return color.RGBA{0, 200, 0, 255} // Green for frontier
	case 'x':
		return color.RGBA{200, 0, 0, 255} // Red for visited
	case '*':
		return color.RGBA{128, 0, 128, 255} // Purple for path
	default:
		return color.RGBA{240, 240, 240, 255} // White for empty
	}
}

func main() {
	// Usage: desktop [session-id] ; LAYOUT picks the layout of a new session
	sessionID := ""
	if len(os.Args) > 1 {
		sessionID = os.Args[1]
	}
	baseURL := os.Getenv("ASTAR_URL")
	if baseURL == "" {
		baseURL = defaultURL
	}

	v, err := NewVisualizer(baseURL, sessionID, os.Getenv("LAYOUT"))
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("A* Pathfinding Visualizer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
