package server

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/affinidi/did-cache-go/internal/resolver"
)

// handleUpgrade accepts a websocket connection and hands it to its own
// receive loop. The loop runs until the connection errors out or the
// server shuts it down.
func (s *WSServer) handleUpgrade(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("websocket upgrade failed", "err", err)
		}
		return
	}

	s.trackConn(conn)
	// net/http cancels the request context as soon as this handler returns,
	// so the connection's requests run under a copy that is not cancelled.
	go s.serveConnection(context.WithoutCancel(c.Request.Context()), conn)
}

// serveConnection reads Request frames off conn, resolves each DID
// (coalescing concurrent requests for the same DID across every connected
// client), and writes back a Response or Error frame. One goroutine, one
// connection, for its whole lifetime.
func (s *WSServer) serveConnection(ctx context.Context, conn *websocket.Conn) {
	defer s.untrackConn(conn)
	defer conn.Close()

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			if s.logger != nil {
				s.logger.Debug("websocket connection closed", "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		req, err := resolver.DecodeRequest(raw)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("malformed request frame", "err", err)
			}
			continue
		}

		go s.handleRequest(ctx, conn, req)
	}
}

// handleRequest resolves one request and writes the reply frame. It runs
// in its own goroutine so that a slow resolution (e.g. a did:web fetch)
// never blocks the connection's read loop or other in-flight requests on
// the same connection.
func (s *WSServer) handleRequest(ctx context.Context, conn *websocket.Conn, req resolver.WireRequest) {
	resp, err := s.resolveCoalesced(ctx, req.DID)

	var frame []byte
	var encodeErr error
	if err != nil {
		frame, encodeErr = resolver.EncodeErrorFrame(req.DID, req.Hash, err)
	} else {
		frame, encodeErr = resolver.EncodeResponseFrame(req.DID, req.Hash, resp.Document)
	}
	if encodeErr != nil {
		if s.logger != nil {
			s.logger.Error("encode reply frame", "err", encodeErr)
		}
		return
	}

	if err := s.writeFrame(conn, frame); err != nil && s.logger != nil {
		s.logger.Debug("write reply frame failed", "err", err)
	}
}

func (s *WSServer) resolveCoalesced(ctx context.Context, did string) (resolver.ResolveResponse, error) {
	v, err, _ := s.group.Do(did, func() (any, error) {
		return s.client.Resolve(ctx, did)
	})
	if err != nil {
		return resolver.ResolveResponse{}, err
	}
	return v.(resolver.ResolveResponse), nil
}

// writeFrame serializes concurrent writes to the connection: gorilla's
// websocket.Conn permits only one writer at a time, but handleRequest may
// run several replies for the same connection concurrently.
func (s *WSServer) writeFrame(conn *websocket.Conn, frame []byte) error {
	mu := s.connWriteMu(conn)
	mu.Lock()
	defer mu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func slogRequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if logger == nil {
			return
		}
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
		)
	}
}
