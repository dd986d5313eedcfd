package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/singleflight"

	"github.com/affinidi/did-cache-go/internal/resolver"
)

// WSServer is the resolver server (C6): a gin HTTP server exposing
// /health and /stats alongside the websocket upgrade route that is this
// program's actual reason for existing. Every accepted connection gets its
// own receive loop, but all of them resolve through the one shared
// resolver.Client below, so C1 (the document cache) is shared across every
// connected SDK the way SPEC_FULL.md §7.6 requires.
//
// Goroutine model: one goroutine per accepted connection
// (serveConnection), living for the connection's lifetime and exiting on
// read error, close frame, or server shutdown (ctx cancellation closes the
// listener, which unblocks Accept; in-flight connections are closed
// individually during Shutdown).
type WSServer struct {
	logger *slog.Logger
	engine *gin.Engine

	httpServer *http.Server
	upgrader   websocket.Upgrader

	client *resolver.Client
	// group coalesces concurrent Resolve calls for the same DID arriving
	// on different connections, the cross-connection analogue of the
	// per-connection RequestList a client-side NetworkTask keeps; unlike
	// RequestList this one is safe for concurrent callers by construction,
	// which is exactly what golang.org/x/sync/singleflight is for.
	group singleflight.Group

	startTime time.Time
	wsPath    string

	connsMu sync.Mutex
	conns   map[*websocket.Conn]*sync.Mutex
}

// Config controls the HTTP/websocket surface of the server; Resolver holds
// the shared document-cache configuration the server's local resolver uses.
type Config struct {
	Host     string
	Port     int
	WSPath   string
	Resolver resolver.Config
}

// New builds a WSServer. The server always resolves locally (Resolver
// mode, not network mode) — it IS the network mode endpoint other clients
// dial into.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*WSServer, error) {
	localCfg := cfg.Resolver
	localCfg.ServiceAddress = ""

	client, err := resolver.New(ctx, localCfg, logger)
	if err != nil {
		return nil, err
	}

	wsPath := cfg.WSPath
	if wsPath == "" {
		wsPath = "/did/v1/ws"
	}

	s := &WSServer{
		logger:    logger,
		client:    client,
		startTime: time.Now(),
		wsPath:    wsPath,
		conns:     map[*websocket.Conn]*sync.Mutex{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(slogRequestLogger(logger))
	engine.GET("/health", s.handleHealth)
	engine.GET("/stats", s.handleStats)
	engine.GET(wsPath, s.handleUpgrade)
	s.engine = engine

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

func (s *WSServer) Addr() string {
	return s.httpServer.Addr
}

func (s *WSServer) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting new connections, closes every open websocket
// connection, and stops the shared resolver client.
func (s *WSServer) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	s.connsMu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.connsMu.Unlock()

	s.client.Close()
	return err
}

func (s *WSServer) trackConn(c *websocket.Conn) {
	s.connsMu.Lock()
	s.conns[c] = &sync.Mutex{}
	s.connsMu.Unlock()
}

func (s *WSServer) untrackConn(c *websocket.Conn) {
	s.connsMu.Lock()
	delete(s.conns, c)
	s.connsMu.Unlock()
}

// connWriteMu returns the per-connection write lock registered in
// trackConn. gorilla/websocket forbids concurrent writers on one
// connection, but handleRequest may resolve several in-flight requests on
// the same connection concurrently, so every write to conn must take this
// lock first.
func (s *WSServer) connWriteMu(c *websocket.Conn) *sync.Mutex {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if mu, ok := s.conns[c]; ok {
		return mu
	}
	return &sync.Mutex{}
}
