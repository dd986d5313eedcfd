package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Goroutine Model:
//
// StartNetworkTask spawns exactly two goroutines per NetworkTask:
//   - a reader goroutine, blocked in conn.ReadMessage, feeding raw frames
//     onto an unbuffered channel (the standard way to make a blocking read
//     select-able: nothing else can poll a websocket connection)
//   - the multiplex loop, which owns the RequestList and services it,
//     the command channel, and reconnects
//
// Both exit when the task's context is cancelled. The reader goroutine also
// exits on any read error, signalling the multiplex loop (by closing its
// channel) that the connection needs to be re-established.

const (
	initialBackoff = 1 * time.Second
	backoffStep    = 5 * time.Second
	maxBackoff     = 60 * time.Second
)

type commandKind int

const (
	cmdSubmit commandKind = iota
	cmdTimeout
	cmdShutdown
)

type command struct {
	kind commandKind

	// cmdSubmit
	did   string
	hash  string
	uid   string
	reply chan<- wireResult

	// cmdTimeout
	timeoutUID  string
	timeoutHash string
}

// NetworkTask owns the single websocket connection to a resolver server and
// multiplexes every caller's Resolve call over it. It is the only goroutine
// that ever touches its RequestList, so the table needs no internal
// locking (see RequestList).
type NetworkTask struct {
	address string
	timeout time.Duration
	logger  *slog.Logger

	requests *RequestList
	commands chan command

	ready chan struct{}
}

// StartNetworkTask dials address and starts the multiplex loop in the
// background, returning once the first connection succeeds or ctx is
// cancelled first.
func StartNetworkTask(ctx context.Context, address string, cfg Config, logger *slog.Logger) (*NetworkTask, error) {
	nt := &NetworkTask{
		address:  address,
		timeout:  time.Duration(cfg.NetworkTimeoutMS) * time.Millisecond,
		logger:   logger,
		requests: NewRequestList(cfg.NetworkCacheLimitCount),
		commands: make(chan command, 32),
		ready:    make(chan struct{}),
	}

	go nt.run(ctx)

	select {
	case <-nt.ready:
		return nt, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Submit registers a waiter for did/hash and, if it is the first waiter for
// that hash, emits a Request frame on the wire. It never blocks: if the
// command queue is full (as it becomes while the RequestList is full and
// the loop stops reading commands), it returns a TransportError at once.
// It does not detect a task that has already shut down; such a submit is
// queued and never answered.
func (nt *NetworkTask) Submit(did, hash, uid string, reply chan<- wireResult) error {
	select {
	case nt.commands <- command{kind: cmdSubmit, did: did, hash: hash, uid: uid, reply: reply}:
		return nil
	default:
		return &TransportError{Cause: errors.New("network task command queue full")}
	}
}

// CancelWait removes a single waiter (identified by uid) from the in-flight
// table without affecting other callers waiting on the same hash. Used when
// a caller's own timeout fires before any reply arrives.
func (nt *NetworkTask) CancelWait(hash, uid string) {
	select {
	case nt.commands <- command{kind: cmdTimeout, timeoutHash: hash, timeoutUID: uid}:
	default:
	}
}

// Shutdown stops the multiplex loop and closes the connection.
func (nt *NetworkTask) Shutdown() {
	select {
	case nt.commands <- command{kind: cmdShutdown}:
	default:
	}
}

func (nt *NetworkTask) run(ctx context.Context) {
	conn := nt.connect(ctx)
	if conn == nil {
		return // ctx cancelled while connecting
	}
	close(nt.ready)

	inbound, readerDone, readerQuit := nt.startReader(conn)

	stop := func() {
		_ = conn.Close()
		close(readerQuit)
		<-readerDone
	}

	for {
		var commandsCh chan command
		if !nt.requests.IsFull() {
			commandsCh = nt.commands
		}

		select {
		case <-ctx.Done():
			stop()
			return

		case raw, ok := <-inbound:
			if !ok {
				// Reader hit a transport error; the connection is dead.
				_ = conn.Close()
				conn = nt.connect(ctx)
				if conn == nil {
					return
				}
				inbound, readerDone, readerQuit = nt.startReader(conn)
				continue
			}
			nt.handleInbound(raw)

		case cmd, ok := <-commandsCh:
			if !ok {
				continue
			}
			switch cmd.kind {
			case cmdSubmit:
				if nt.requests.Insert(cmd.hash, cmd.uid, cmd.reply) {
					frame, err := encodeRequest(cmd.did, cmd.hash)
					if err != nil {
						nt.failWaiters(cmd.hash, err)
						continue
					}
					if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
						nt.logf("write request: %v", err)
						nt.failWaiters(cmd.hash, &TransportError{Cause: err})
					}
				}
			case cmdTimeout:
				uid := cmd.timeoutUID
				nt.requests.Remove(cmd.timeoutHash, &uid)
			case cmdShutdown:
				stop()
				return
			}
		}
	}
}

// startReader launches the blocking-read goroutine and returns the channel
// it feeds (closed on any read error) together with a done channel closed
// once the goroutine has actually exited. quit lets the multiplex loop tell
// a reader stuck offering a final frame to give up instead of blocking
// forever once nobody is left to receive it (e.g. on shutdown).
func (nt *NetworkTask) startReader(conn *websocket.Conn) (inbound chan []byte, done chan struct{}, quit chan struct{}) {
	inbound = make(chan []byte)
	done = make(chan struct{})
	quit = make(chan struct{})
	go func() {
		defer close(done)
		defer close(inbound)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				nt.logf("websocket read: %v", err)
				return
			}
			select {
			case inbound <- data:
			case <-quit:
				return
			}
		}
	}()
	return inbound, done, quit
}

func (nt *NetworkTask) handleInbound(raw []byte) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		nt.logf("decode inbound frame: %v", err)
		return
	}

	switch env.Type {
	case wireTypeResponse:
		channels := nt.requests.Remove(env.Hash, nil)
		if channels == nil {
			nt.logf("response for unknown hash %s", env.Hash)
			return
		}
		for _, ch := range channels {
			ch <- wireResult{document: Document{ID: env.DID, Raw: env.Document}}
		}
	case wireTypeError:
		channels := nt.requests.Remove(env.Hash, nil)
		if channels == nil {
			nt.logf("error for unknown hash %s", env.Hash)
			return
		}
		for _, ch := range channels {
			ch <- wireResult{err: &DIDError{DID: env.DID, Reason: env.Error}}
		}
	default:
		nt.logf("unrecognized frame type %q", env.Type)
	}
}

func (nt *NetworkTask) failWaiters(hash string, err error) {
	channels := nt.requests.Remove(hash, nil)
	for _, ch := range channels {
		ch <- wireResult{err: err}
	}
}

// connect dials the server, backing off 1s, +5s per attempt, capped at 60s,
// until it succeeds or ctx is cancelled.
func (nt *NetworkTask) connect(ctx context.Context) *websocket.Conn {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return nil
		}

		dialCtx, cancel := context.WithTimeout(ctx, nt.dialTimeout())
		conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, nt.address, nil)
		cancel()
		if err == nil {
			return conn
		}
		nt.logf("websocket connect to %s failed: %v", nt.address, err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if backoff < maxBackoff {
			backoff += backoffStep
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

func (nt *NetworkTask) dialTimeout() time.Duration {
	if nt.timeout <= 0 {
		return 5 * time.Second
	}
	return nt.timeout
}

func (nt *NetworkTask) logf(format string, args ...any) {
	if nt.logger == nil {
		return
	}
	nt.logger.Debug(fmt.Sprintf(format, args...))
}
