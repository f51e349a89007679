// Package server serves jinpro-rendered pages over HTTP. It wires the
// component engine to a site directory, with static routes, response
// caching, compression, request logging, and a dev-mode file watcher
// that invalidates the template cache when a template changes.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sophloaf2019/jinpro/config"
	"github.com/sophloaf2019/jinpro/pkg/jinpro"
	"github.com/sophloaf2019/jinpro/pkg/jinpro/pongo"
)

// Server represents a jinpro web server instance.
type Server struct {
	config     *config.Config
	configPath string
	stdout     io.Writer
	stderr     io.Writer
	mux        *http.ServeMux
	server     *http.Server
	processor  *jinpro.Processor
	templates  *jinpro.CachingLoader
	pages      *responseCache
	watcher    *Watcher
}

// New creates a jinpro server with the given configuration.
func New(cfg *config.Config, configPath string, stdout, stderr io.Writer) (*Server, error) {
	searchPaths := cfg.Templates.Paths
	if cfg.Site != "" {
		// Pages live beside components: the site directory joins the
		// template lookup so Render("index.html") resolves.
		searchPaths = append([]string{cfg.Site}, searchPaths...)
	}

	renderer, err := pongo.New(pongo.Options{
		SearchPaths: searchPaths,
		Autoescape:  cfg.Templates.Autoescape,
	})
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	cacheDisabled := cfg.Server.Dev || !cfg.Templates.Cache
	templates := jinpro.NewCachingLoader(jinpro.NewFSLoader(searchPaths...), cacheDisabled)

	processor, err := jinpro.New(jinpro.Options{
		Loader:             templates,
		Renderer:           renderer,
		MaxDepth:           cfg.Templates.MaxDepth,
		Extension:          cfg.Templates.Extension,
		EvalUnquotedValues: cfg.Templates.EvalUnquoted,
	})
	if err != nil {
		return nil, fmt.Errorf("creating processor: %w", err)
	}

	s := &Server{
		config:     cfg,
		configPath: configPath,
		stdout:     stdout,
		stderr:     stderr,
		mux:        http.NewServeMux(),
		processor:  processor,
		templates:  templates,
		pages:      newResponseCache(cfg.Server.Dev, cfg.SiteCache.Std()),
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the HTTP mux with static and page routes.
func (s *Server) setupRoutes() {
	for _, static := range s.config.Static {
		if static.Root != "" {
			handler := http.StripPrefix(static.Path, http.FileServer(http.Dir(static.Root)))
			s.mux.Handle(static.Path, handler)
		} else if static.File != "" {
			filePath := static.File
			s.mux.HandleFunc(static.Path, func(w http.ResponseWriter, r *http.Request) {
				http.ServeFile(w, r, filePath)
			})
		}
	}

	if s.config.Site != "" {
		s.mux.Handle("/", newPageHandler(s))
	}
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.listenAddr()

	// In dev mode, watch template directories so edits take effect on
	// the next request.
	if s.config.Server.Dev {
		watcher, err := NewWatcher(s, s.stdout, s.stderr)
		if err != nil {
			s.logError("failed to create watcher: %v", err)
		} else {
			s.watcher = watcher
			if err := s.watcher.Start(ctx); err != nil {
				s.logError("failed to start watcher: %v", err)
			}
			defer s.watcher.Close()
		}
	}

	var handler http.Handler = s.mux
	handler = newCompressionHandler(handler, s.config.Compression)
	if s.config.Logging.Level != "error" {
		handler = newRequestLogger(handler, s.stdout, s.config.Logging.Format)
	}

	s.server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logInfo("listening on http://%s", addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logInfo("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) listenAddr() string {
	host := s.config.Server.Host
	if host == "" && s.config.Server.Dev {
		host = "localhost"
	}
	return fmt.Sprintf("%s:%d", host, s.config.Server.Port)
}

func (s *Server) logInfo(format string, args ...any) {
	fmt.Fprintf(s.stdout, "[jinpro] "+format+"\n", args...)
}

func (s *Server) logError(format string, args ...any) {
	fmt.Fprintf(s.stderr, "[jinpro error] "+format+"\n", args...)
}
