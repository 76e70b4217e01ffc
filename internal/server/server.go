// Package server serves the playground: the editor page, the sandboxed
// preview document, the compile HTTP API, and the websocket hub that
// pushes new output documents to connected browsers.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/codepad-dev/codepad/internal/buffer"
	"github.com/codepad-dev/codepad/internal/config"
	"github.com/codepad-dev/codepad/internal/logging"
	"github.com/codepad-dev/codepad/internal/preview"
	"github.com/codepad-dev/codepad/internal/scheduler"
	"github.com/codepad-dev/codepad/internal/transform"
	"github.com/codepad-dev/codepad/internal/watcher"
)

// Client represents a connected websocket client
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *PlaygroundServer
}

// PlaygroundServer serves the live compile-preview playground.
type PlaygroundServer struct {
	config      *config.Config
	logger      logging.Logger
	httpServer  *http.Server
	serverMutex sync.RWMutex // Protects httpServer

	clients      map[*websocket.Conn]*Client
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *websocket.Conn

	buffer    *buffer.SourceBuffer
	scheduler *scheduler.Scheduler
	watcher   *watcher.FileWatcher

	shutdownOnce sync.Once
}

// New creates a playground server around the given transform engine.
// When cfg.TargetFile is set, the buffer is seeded from that file and a
// file watcher keeps it in sync; otherwise the starter snippet is
// loaded.
func New(cfg *config.Config, engine transform.Engine, logger logging.Logger) (*PlaygroundServer, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	initial := buffer.StarterSource
	if cfg.TargetFile != "" {
		data, err := os.ReadFile(cfg.TargetFile)
		if err != nil {
			return nil, fmt.Errorf("reading target file: %w", err)
		}
		initial = string(data)
	}

	buf := buffer.NewSourceBuffer(initial)
	renderer := preview.NewSandboxRenderer(cfg.Preview)
	presenter := preview.NewErrorPresenter()

	s := &PlaygroundServer{
		config:     cfg,
		logger:     logger.WithComponent("server"),
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
		buffer:     buf,
	}

	delay := time.Duration(cfg.Compile.DebounceMillis) * time.Millisecond
	s.scheduler = scheduler.New(
		engine,
		renderer,
		presenter,
		buf.Text,
		s.publishDocument,
		delay,
		logger,
	)

	s.scheduler.OnStatus(s.publishStatus)

	// Every buffer replacement (re)arms the debounce cycle.
	buf.OnChange(func(string) {
		s.scheduler.NotifyChange()
	})

	if cfg.TargetFile != "" {
		fw, err := watcher.NewFileWatcher(cfg.TargetFile, buf.Set, logger)
		if err != nil {
			return nil, fmt.Errorf("creating file watcher: %w", err)
		}
		s.watcher = fw
	}

	return s, nil
}

// Start starts the playground server and blocks until it stops.
func (s *PlaygroundServer) Start(ctx context.Context) error {
	go s.runWebSocketHub(ctx)

	if s.watcher != nil {
		s.watcher.Start(ctx)
		s.logger.Info(ctx, "watching source file", "path", s.watcher.Path())
	}

	// Compile the seeded buffer so the preview pane has a document
	// before the first edit.
	go s.scheduler.CompileNow(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/preview", s.handlePreview)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/source", s.handleSource)
	mux.HandleFunc("/api/compile", s.handleCompile)
	mux.HandleFunc("/api/status", s.handleStatus)

	handler := s.addMiddleware(mux)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	if s.config.Server.Open {
		go s.openBrowser(fmt.Sprintf("http://%s", addr))
	}

	s.logger.Info(ctx, "playground server listening", "addr", addr)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// publishDocument pushes a freshly published document notification to
// all connected clients. Clients refetch /preview for the body; the
// document itself is the single current output held by the scheduler.
func (s *PlaygroundServer) publishDocument(doc preview.Document) {
	s.broadcastMessage(ServerMessage{
		Type:      "preview",
		Kind:      doc.Kind.String(),
		Token:     doc.Token,
		Timestamp: time.Now(),
	})
}

// publishStatus pushes compile status transitions so connected editor
// pages can disable their manual trigger while a compile is in flight.
func (s *PlaygroundServer) publishStatus(st scheduler.Status) {
	s.broadcastMessage(ServerMessage{
		Type:      "status",
		Status:    st.String(),
		Timestamp: time.Now(),
	})
}

func (s *PlaygroundServer) openBrowser(rawURL string) {
	time.Sleep(100 * time.Millisecond) // Give server time to start

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		s.logger.Warn(context.Background(), err, "refusing to open browser", "url", rawURL)
		return
	}

	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", rawURL).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	case "darwin":
		err = exec.Command("open", rawURL).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		s.logger.Warn(context.Background(), err, "failed to open browser")
	}
}

func (s *PlaygroundServer) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if s.config.Server.Environment == "development" {
			// Only allow wildcard in development
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String())
	})
}

// isAllowedOrigin checks if the origin is in the allowed origins list
func (s *PlaygroundServer) isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range s.config.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

// Shutdown gracefully shuts down the server and cleans up resources.
func (s *PlaygroundServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "shutting down server")

		s.scheduler.Stop()

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "error stopping file watcher")
			}
		}

		s.clientsMutex.Lock()
		for conn, client := range s.clients {
			close(client.send)
			conn.Close(websocket.StatusNormalClosure, "")
		}
		s.clients = make(map[*websocket.Conn]*Client)
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}
