// Package preview serves a rendered tree over HTTP and pushes updates to open pages.
package preview

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcncl/jsontree/internal/logging"
	"github.com/mcncl/jsontree/internal/render"
	"github.com/mcncl/jsontree/internal/value"
)

// Options configures a Server.
type Options struct {
	Render render.Config
	HTML   render.HTMLOptions
	// CopiedLabel replaces the copy button label after a copy.
	CopiedLabel string
	// CopyTimeout is how long the copied label stays.
	CopyTimeout time.Duration
	Title       string
	// AllowAll allows every CORS origin instead of localhost only.
	AllowAll bool
	Logger   *log.Logger
}

// Server is the preview HTTP server.
type Server struct {
	opts   Options
	logger *log.Logger
	router chi.Router

	mu      sync.RWMutex
	root    value.Value
	version int

	// clientsMu also serializes writes, gorilla connections allow one writer.
	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	updates  prometheus.Counter
	sessions prometheus.Gauge

	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// writeTimeout bounds each live-update write so a stalled page cannot hold up the others.
const writeTimeout = 5 * time.Second

// New creates a server showing root.
func New(root value.Value, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Title == "" {
		opts.Title = "jsontree"
	}
	if opts.Render.DateFormatter == nil {
		opts.Render.DateFormatter = render.LocaleString
	}
	if opts.CopiedLabel == "" {
		opts.CopiedLabel = "copied!"
	}
	if opts.CopyTimeout <= 0 {
		opts.CopyTimeout = 2 * time.Second
	}

	s := &Server{
		opts:     opts,
		logger:   opts.Logger.WithPrefix("preview"),
		root:     root,
		clients:  make(map[*websocket.Conn]struct{}),
		registry: prometheus.NewRegistry(),
	}
	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jsontree",
		Subsystem: "preview",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	s.updates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jsontree",
		Subsystem: "preview",
		Name:      "root_updates_total",
		Help:      "Times the previewed value was replaced.",
	})
	s.sessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "jsontree",
		Subsystem: "preview",
		Name:      "live_sessions",
		Help:      "Open live-update connections.",
	})
	s.registry.MustRegister(s.requests, s.updates, s.sessions)
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkWebSocketOrigin}

	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool { return s.originAllowed(origin) },
		AllowedMethods:  []string{"GET", "OPTIONS"},
		AllowedHeaders:  []string{"Accept", "Content-Type"},
		MaxAge:          300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/", s.handlePage)
		r.Get("/tree", s.handleFragment)
		r.Get("/json", s.handleJSON)
	})

	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Root returns the current value and its version.
func (s *Server) Root() (value.Value, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root, s.version
}

// SetRoot replaces the previewed value and pushes the new tree to open pages.
func (s *Server) SetRoot(v value.Value) {
	s.mu.Lock()
	s.root = v
	s.version++
	s.mu.Unlock()

	s.updates.Inc()
	s.broadcast()
}

// Fragment renders the current tree as HTML.
func (s *Server) Fragment() string {
	root, _ := s.Root()
	cfg := s.opts.Render
	opts := s.opts.HTML
	if opts.CopyLabel != "" {
		// the copy text follows the current value
		text, ok := value.MarshalIndent(root, "  ")
		if !ok {
			opts.CopyLabel = ""
		}
		opts.CopyText = text
	}
	return render.HTML(render.Tree(root, cfg, render.Initial{Config: cfg}), cfg, opts)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// loggingMiddleware logs and counts requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		if r.URL.Path == "/metrics" {
			return
		}
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		}
		switch {
		case status >= 500:
			s.logger.Error("request", fields...)
		case status >= 400:
			s.logger.Warn("request", fields...)
		default:
			s.logger.Debug("request", fields...)
		}
	})
}

// originAllowed reports whether a cross-origin page may read the preview. Only local pages
// are allowed unless AllowAll is set.
func (s *Server) originAllowed(origin string) bool {
	if s.opts.AllowAll {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// checkWebSocketOrigin accepts clients without an Origin header, the page the server itself
// served, and the origins CORS allows.
func (s *Server) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	if s.originAllowed(origin) {
		return true
	}
	s.logger.Warn("websocket origin rejected", "origin", origin)
	return false
}
