// Package web provides an HTTP server for the OFX transaction viewer.
//
// The server owns the current view of one statement file: the loaded
// statement, its report and its formatted text. The view is rebuilt whenever
// the file changes and connected browsers are told to refresh through
// server-sent events.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/robinvdvleuten/ofx/formatter"
	"github.com/robinvdvleuten/ofx/i18n"
	"github.com/robinvdvleuten/ofx/loader"
	"github.com/robinvdvleuten/ofx/report"
	"github.com/robinvdvleuten/ofx/telemetry"
)

// View is one loaded state of the statement file.
type View struct {
	Statement *loader.Statement
	Report    *report.Report
	Formatted string
	LoadedAt  time.Time
}

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	ReadOnly     bool
	WatchEnabled bool

	loader    *loader.Loader
	formatter *formatter.Formatter
	catalog   *i18n.Catalog
	logger    *log.Logger

	mu      sync.RWMutex
	view    *View
	loadErr error
	file    string // Absolute path of the statement

	// SSE clients for broadcasting reload events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithPort sets the port to listen on.
func WithPort(port int) Option {
	return func(s *Server) {
		s.Port = port
	}
}

// WithVersion sets the version shown in the viewer footer.
func WithVersion(version, commitSHA string) Option {
	return func(s *Server) {
		s.Version = version
		s.CommitSHA = commitSHA
	}
}

// WithLoader sets the loader used to read the statement.
func WithLoader(ldr *loader.Loader) Option {
	return func(s *Server) {
		s.loader = ldr
	}
}

// WithFormatter sets the formatter used for /api/formatted.
func WithFormatter(f *formatter.Formatter) Option {
	return func(s *Server) {
		s.formatter = f
	}
}

// WithCatalog sets the language of the viewer labels.
func WithCatalog(catalog *i18n.Catalog) Option {
	return func(s *Server) {
		s.catalog = catalog
	}
}

// WithLogger sets the logger for reloads and watcher problems.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithReadOnly disables the endpoints that write the statement file.
func WithReadOnly() Option {
	return func(s *Server) {
		s.ReadOnly = true
	}
}

// WithWatch enables reloading when the statement file changes.
func WithWatch(enabled bool) Option {
	return func(s *Server) {
		s.WatchEnabled = enabled
	}
}

// New creates a server for the statement at file.
func New(file string, opts ...Option) *Server {
	s := &Server{
		Port:         8080,
		Host:         "127.0.0.1",
		WatchEnabled: true,
		file:         file,
		loader:       loader.New(),
		formatter:    formatter.New(),
		catalog:      i18n.Resolve(i18n.Default),
		logger:       log.NewWithOptions(os.Stderr, log.Options{Prefix: "web"}),
		sseClients:   make(map[chan string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if abs, err := filepath.Abs(file); err == nil {
		s.file = abs
	}
	return s
}

// File returns the absolute path of the served statement.
func (s *Server) File() string {
	return s.file
}

// Current returns the current view, or nil when the statement never loaded.
// The second result is the error of the latest reload, if it failed.
func (s *Server) Current() (*View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view, s.loadErr
}

func (s *Server) Start(ctx context.Context) error {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("web.start %s:%d", s.Host, s.Port))

	if s.file == "" {
		timer.End()
		return fmt.Errorf("statement file is required")
	}

	loadTimer := timer.Child(fmt.Sprintf("web.load %s", filepath.Base(s.file)))
	if err := s.Reload(ctx); err != nil {
		loadTimer.End()
		timer.End()
		return fmt.Errorf("failed to load statement: %w", err)
	}
	loadTimer.End()

	if s.WatchEnabled {
		if err := s.startWatcher(ctx); err != nil {
			timer.End()
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	setupTimer := timer.Child("web.setup_router")
	handler := s.Handler()
	setupTimer.End()
	timer.End()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.Host, s.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the HTTP routes of the viewer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleViewer)
	mux.HandleFunc("GET /api/report", s.handleGetReport)
	mux.HandleFunc("GET /api/document", s.handleGetDocument)
	mux.HandleFunc("GET /api/formatted", s.handleGetFormatted)
	mux.HandleFunc("GET /api/errors", s.handleGetErrors)
	mux.HandleFunc("GET /api/labels", s.handleGetLabels)
	mux.HandleFunc("POST /api/format", s.requireWritable(s.handleFormat))
	mux.HandleFunc("GET /api/events", s.handleSSE)

	return mux
}

// requireWritable is middleware that rejects write requests in read-only mode.
func (s *Server) requireWritable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ReadOnly {
			http.Error(w, "Server is in read-only mode", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// Reload loads the statement and replaces the current view. When loading
// fails the previous view is kept and the error is remembered.
// Caller must NOT hold the mutex - this method acquires it internally.
func (s *Server) Reload(ctx context.Context) error {
	stmt, err := s.loader.Load(ctx, s.file)
	if err != nil {
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		return err
	}

	rep := report.New(report.WithLabels(s.catalog)).Build(ctx, stmt.Document)
	formatted := s.formatter.FormatString(ctx, string(stmt.Source))

	view := &View{
		Statement: stmt,
		Report:    rep,
		Formatted: formatted,
		LoadedAt:  time.Now(),
	}

	s.mu.Lock()
	s.view = view
	s.loadErr = nil
	s.mu.Unlock()

	s.logger.Debug("statement loaded",
		"file", filepath.Base(s.file),
		"transactions", rep.TotalTransactions,
		"warnings", len(stmt.Warnings))
	return nil
}
