// Command astar-visualizer serves the A* pathfinding visualizer.
//
// It supports two commands:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, the WebSocket frame stream and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags (or the matching environment variables, optionally from a .env file)
// control host/port, the layouts directory, the default board size, the delay
// between search frames, debug logging and optional ngrok tunneling.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/astar-visualizer/api"
	"github.com/wricardo/astar-visualizer/board/layout"
	"github.com/wricardo/astar-visualizer/board/service"
	"github.com/wricardo/astar-visualizer/board/session"
	"github.com/wricardo/astar-visualizer/transport/mcp"
	"github.com/wricardo/astar-visualizer/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "A* Pathfinding Visualizer"
)

// Defaults
const (
	defaultGridSize   = 50
	defaultSessionTTL = 24 * time.Hour
	cleanupInterval   = time.Hour
)

// config is the resolved runtime configuration
type config struct {
	Host        string
	Port        int
	LayoutsDir  string
	GridSize    int
	StepDelay   time.Duration
	SessionTTL  time.Duration
	Debug       bool
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

func (c config) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// flags shared by every command
func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
		&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
		&cli.StringFlag{Name: "layouts-dir", Value: "configs", Usage: "Directory containing board layouts", Sources: cli.EnvVars("LAYOUTS_DIR")},
		&cli.IntFlag{Name: "grid-size", Value: defaultGridSize, Usage: "Side length of blank boards", Sources: cli.EnvVars("GRID_SIZE")},
		&cli.DurationFlag{Name: "step-delay", Value: 10 * time.Millisecond, Usage: "Pause after each search frame", Sources: cli.EnvVars("STEP_DELAY")},
		&cli.DurationFlag{Name: "session-ttl", Value: defaultSessionTTL, Usage: "Drop sessions idle for longer than this", Sources: cli.EnvVars("SESSION_TTL")},
		&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
	}
}

// configFromCommand reads the resolved flag values
func configFromCommand(cmd *cli.Command) config {
	return config{
		Host:        cmd.String("host"),
		Port:        int(cmd.Int("port")),
		LayoutsDir:  cmd.String("layouts-dir"),
		GridSize:    int(cmd.Int("grid-size")),
		StepDelay:   cmd.Duration("step-delay"),
		SessionTTL:  cmd.Duration("session-ttl"),
		Debug:       cmd.Bool("debug"),
		Ngrok:       cmd.Bool("ngrok"),
		NgrokAuth:   cmd.String("ngrok-auth"),
		NgrokDomain: cmd.String("ngrok-domain"),
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	serve := func(ctx context.Context, cmd *cli.Command) error {
		cfg := configFromCommand(cmd)
		setupLogging(cfg)
		log.Printf("Starting %s v%s (mode: serve)", AppName, Version)

		svc, sessions, err := initializeServices(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		go sessionCleanupRoutine(ctx, sessions, cleanupInterval, cfg.SessionTTL)

		return runHTTPServer(ctx, cfg, svc)
	}

	return &cli.Command{
		Name:    "astar-visualizer",
		Usage:   "Interactive A* pathfinding on a grid, over HTTP, WebSocket and MCP",
		Version: Version,
		Flags:   flags(),
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  serve,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := configFromCommand(cmd)
					setupLogging(cfg)
					// stdout carries the MCP protocol
					log.SetOutput(os.Stderr)
					log.Printf("Starting %s v%s (mode: mcp)", AppName, Version)

					svc, sessions, err := initializeServices(cfg)
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					go sessionCleanupRoutine(ctx, sessions, cleanupInterval, cfg.SessionTTL)

					return runStdioMCPWithInternalServer(ctx, cfg, svc)
				},
			},
		},
	}
}

// main loads the environment, parses flags and runs the selected command.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(cfg config) {
	if cfg.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// initializeServices wires the session and layout managers into the board
// service.
func initializeServices(cfg config) (service.BoardService, *session.Manager, error) {
	layoutManager, err := layout.NewManager(cfg.LayoutsDir, cfg.GridSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create layout manager: %w", err)
	}
	log.Printf("Default layout: %s", layoutManager.DefaultID())

	sessionManager := session.NewManager()
	boardService := service.NewBoardService(sessionManager, layoutManager,
		service.WithStepDelay(cfg.StepDelay))

	return boardService, sessionManager, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// newHandler combines the REST API with the /mcp endpoint
func newHandler(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mux
}

// runHTTPServer serves the API, WebSocket hub and /mcp until ctx is cancelled.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cfg config, svc service.BoardService) error {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := cfg.addr()
	apiServer := api.NewServer(svc, hub)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// long enough for run_search with wait over a large board
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cfg.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg, handler)
		}()
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is cancelled
func runNgrokTunnel(ctx context.Context, cfg config, handler http.Handler) {
	if cfg.NgrokAuth == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Printf("Using custom ngrok domain: %s", cfg.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuth))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on the configured address; otherwise it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, cfg config, svc service.BoardService) error {
	externalURL := fmt.Sprintf("http://%s", cfg.addr())
	log.Printf("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svc, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
