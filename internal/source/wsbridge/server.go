// Package wsbridge serves a hotkey engine to browser pages over WebSocket.
//
// Every connection gets its own engine. Pages forward their keydown, keyup
// and blur events as JSON and receive fired and suppress messages back.
package wsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/logging"
)

// Defaults applied by New.
const (
	DefaultAddress        = "127.0.0.1:7777"
	DefaultMaxMessageSize = 4096
	DefaultPingInterval   = 30 * time.Second
)

// writeDeadline bounds a single write to a client.
const writeDeadline = 5 * time.Second

// ErrAlreadyStarted is returned by Start when called twice.
var ErrAlreadyStarted = errors.New("wsbridge: already started")

// SetupFunc prepares the engine of a new connection, typically by applying
// keymaps. It runs before any event of the connection is processed.
type SetupFunc func(engine *input.Context) error

// Options configures a Server.
type Options struct {
	// Addr is the listen address used by Start.
	Addr string

	// AllowedOrigins lists the Origin headers accepted on upgrade.
	// "*" accepts any origin. Empty applies the same-origin check.
	AllowedOrigins []string

	// MaxMessageSize limits incoming messages in bytes.
	MaxMessageSize int64

	// PingInterval is the keepalive interval. A connection with no read
	// activity for three intervals is dropped.
	PingInterval time.Duration

	// Engine is the configuration of every connection's engine.
	// Logger and Metrics are replaced by the server's.
	Engine input.Config

	// Setup runs for every new engine. Optional.
	Setup SetupFunc

	// Logger is the server logger. Defaults to a discarding logger.
	Logger *logging.Logger
}

// Server accepts WebSocket connections and runs an engine per connection.
type Server struct {
	opts     Options
	log      *logging.Logger
	metrics  *input.Metrics
	upgrader websocket.Upgrader
	conns    atomic.Int64

	mu     sync.Mutex
	active map[*websocket.Conn]struct{}

	listener  net.Listener
	server    *http.Server
	url       string
	closeOnce sync.Once
}

// New creates a Server. Zero option values are replaced by defaults.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddress
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = DefaultMaxMessageSize
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	metrics := opts.Engine.Metrics
	if metrics == nil {
		metrics = input.NewMetrics()
	}

	return &Server{
		opts:    opts,
		log:     log.WithComponent("wsbridge"),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		active: make(map[*websocket.Conn]struct{}),
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// Metrics returns the metrics shared by all connection engines.
func (s *Server) Metrics() *input.Metrics {
	return s.metrics
}

// Connections returns the number of open connections.
func (s *Server) Connections() int {
	return int(s.conns.Load())
}

// Handler returns the HTTP handler serving /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.server != nil {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("wsbridge: listen: %w", err)
	}
	s.listener = ln
	s.url = fmt.Sprintf("ws://%s/ws", ln.Addr().String())

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("server error")
		}
	}()

	s.log.WithField("url", s.url).Info("server started")
	return nil
}

// URL returns the WebSocket URL once started.
func (s *Server) URL() string {
	return s.url
}

// Stop closes every connection and shuts the server down.
// Stop is idempotent.
func (s *Server) Stop() error {
	var stopErr error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		for ws := range s.active {
			_ = ws.Close()
		}
		s.mu.Unlock()

		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.server.Shutdown(ctx); err != nil {
				stopErr = fmt.Errorf("wsbridge: shutdown: %w", err)
			}
		}
		s.log.Info("server stopped")
	})
	return stopErr
}

type healthResponse struct {
	Healthy     bool   `json:"healthy"`
	Message     string `json:"message"`
	Connections int    `json:"connections"`
	Fires       uint64 `json:"fires"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := s.metrics.HealthCheck(100 * time.Millisecond)
	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(healthResponse{
		Healthy:     status.Healthy,
		Message:     status.Message,
		Connections: s.Connections(),
		Fires:       s.metrics.FiresTotal(),
	})
}

func (s *Server) track(ws *websocket.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.active[ws] = struct{}{}
		s.conns.Add(1)
		return
	}
	if _, ok := s.active[ws]; ok {
		delete(s.active, ws)
		s.conns.Add(-1)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("upgrade failed")
		return
	}
	s.track(ws, true)
	defer s.track(ws, false)

	c := newConn(s, ws)
	c.serve(r.Context())
}
