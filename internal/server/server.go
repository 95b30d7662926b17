// Package server serves a static site directory for local development,
// along with the story registry as JSON so a fetch loader can target it.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/story"
)

// CORS and caching headers sent with every response.
const (
	allowOrigin  = "*"
	allowMethods = "GET, POST, OPTIONS"
	allowHeaders = "*"
	cacheControl = "no-cache"
)

// Handler serves files under Root and the stories in Stories.
type Handler struct {
	root    string
	stories *story.Registry
}

// NewHandler creates a handler for root. root is resolved to an absolute,
// symlink-free path so the containment check compares like with like.
// A nil registry disables the story endpoints.
func NewHandler(root string, stories *story.Registry) (*Handler, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	return &Handler{root: resolved, stories: stories}, nil
}

// Root returns the resolved directory being served.
func (h *Handler) Root() string { return h.root }

// Routes returns an http.Handler with all routes registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Stories
	mux.HandleFunc("GET /stories.json", h.ListStories)
	mux.HandleFunc("GET /stories/{file}", h.GetStory)

	// Preflight and static files
	mux.HandleFunc("OPTIONS /", h.Preflight)
	mux.HandleFunc("/", h.Static)

	return withHeaders(mux)
}

// withHeaders adds the CORS origin to every response and logs the request.
func withHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Debug(log.CatServe, "Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// === Handlers ===

// Preflight handles OPTIONS requests: GET /anything.
func (h *Handler) Preflight(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", allowMethods)
	w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusOK)
}

// Static serves a file from the root directory. "/" and directories serve
// their index.html.
func (h *Handler) Static(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed)
		return
	}

	path, status := h.resolve(r.URL.Path)
	if status != http.StatusOK {
		writeError(w, status)
		return
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is contained in root
	if err != nil {
		log.ErrorErr(log.CatServe, "Failed to read file", err, "path", path)
		writeError(w, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Access-Control-Allow-Methods", allowMethods)
	w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
	w.Header().Set("Cache-Control", cacheControl)
	http.ServeContent(w, r, filepath.Base(path), time.Time{}, bytes.NewReader(data))
}

// resolve maps a URL path onto a file inside root. It returns 403 for paths
// that leave root (including through symlinks) and 404 for missing files
// and directories without an index.
func (h *Handler) resolve(urlPath string) (string, int) {
	if urlPath == "" || urlPath == "/" {
		urlPath = "/index.html"
	}

	candidate := filepath.Join(h.root, filepath.FromSlash(strings.TrimPrefix(urlPath, "/")))
	if !within(h.root, candidate) {
		return "", http.StatusForbidden
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", http.StatusNotFound
	}
	if !within(h.root, resolved) {
		return "", http.StatusForbidden
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", http.StatusNotFound
	}
	if info.IsDir() {
		index := filepath.Join(resolved, "index.html")
		if fi, err := os.Stat(index); err != nil || fi.IsDir() {
			return "", http.StatusNotFound
		}
		return index, http.StatusOK
	}
	return resolved, http.StatusOK
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ListStories handles GET /stories.json. The body is a stories document in
// the embedded format.
func (h *Handler) ListStories(w http.ResponseWriter, _ *http.Request) {
	if h.stories == nil {
		writeJSONError(w, http.StatusNotFound, "no stories loaded", "NOT_FOUND")
		return
	}
	data, err := story.EncodeDocument(h.stories.Entries())
	if err != nil {
		log.ErrorErr(log.CatServe, "Failed to encode stories", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error(), "ENCODE_FAILED")
		return
	}
	writeRaw(w, data)
}

// GetStory handles GET /stories/{id}.json. The body is a single issue in
// GitHub's JSON shape.
func (h *Handler) GetStory(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	id, ok := strings.CutSuffix(file, ".json")
	if !ok || id == "" {
		writeJSONError(w, http.StatusNotFound, "story paths end in .json", "NOT_FOUND")
		return
	}
	if h.stories == nil {
		writeJSONError(w, http.StatusNotFound, "no stories loaded", "NOT_FOUND")
		return
	}

	entry, found := h.stories.Get(id)
	if !found {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("story %q not found", id), "NOT_FOUND")
		return
	}
	data, err := story.EncodeIssue(entry.Issue)
	if err != nil {
		log.ErrorErr(log.CatServe, "Failed to encode story", err, "story", id)
		writeJSONError(w, http.StatusInternalServerError, err.Error(), "ENCODE_FAILED")
		return
	}
	writeRaw(w, data)
}

// === Response helpers ===

// ErrorResponse is the body of a failed JSON request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeRaw(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.ErrorErr(log.CatServe, "Failed to write response", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code}); err != nil {
		log.ErrorErr(log.CatServe, "Failed to encode error response", err)
	}
}

// writeError sends the small HTML error page browsers show for static misses.
func writeError(w http.ResponseWriter, status int) {
	body := fmt.Sprintf("<h1>%d %s</h1>", status, http.StatusText(status))
	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// === Server ===

// Server wraps an HTTP server bound to a listener.
type Server struct {
	handler  *Handler
	server   *http.Server
	listener net.Listener
	addr     string
	port     int
}

// ServerConfig configures the server.
type ServerConfig struct {
	// Addr is the address to listen on, e.g. "127.0.0.1:8000" or ":0".
	Addr string
	// Root is the directory to serve.
	Root string
	// Stories backs the JSON endpoints (optional).
	Stories *story.Registry

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewServer creates a server and binds its listener.
func NewServer(cfg ServerConfig) (*Server, error) {
	handler, err := NewHandler(cfg.Root, cfg.Stories)
	if err != nil {
		return nil, err
	}

	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}

	// Create listener first to get the actual port (important for :0)
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	port := 0
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	return &Server{
		handler:  handler,
		addr:     cfg.Addr,
		port:     port,
		listener: listener,
		server: &http.Server{
			Handler:           handler.Routes(),
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      writeTimeout,
		},
	}, nil
}

// Start serves until the server is stopped. A clean Stop returns nil.
func (s *Server) Start() error {
	log.Info(log.CatServe, "Starting static server",
		"addr", s.listener.Addr().String(),
		"port", s.port,
		"root", s.handler.Root())
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Info(log.CatServe, "Stopping static server")
	return s.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// URL returns the base URL for the listener.
func (s *Server) URL() string {
	return "http://" + s.listener.Addr().String()
}
