package wsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/logging"
)

// conn is one client connection and its engine.
type conn struct {
	srv *Server
	ws  *websocket.Conn
	log *logging.Logger

	// writeMu serializes writes; gorilla/websocket allows one writer.
	writeMu sync.Mutex
}

func newConn(srv *Server, ws *websocket.Conn) *conn {
	return &conn{
		srv: srv,
		ws:  ws,
		log: srv.log.WithField("remote", ws.RemoteAddr().String()),
	}
}

func (c *conn) serve(parent context.Context) {
	defer c.ws.Close()

	readDeadline := 3 * c.srv.opts.PingInterval
	c.ws.SetReadLimit(c.srv.opts.MaxMessageSize)
	if err := c.ws.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		c.log.WithError(err).Warn("set read deadline failed")
		return
	}
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(readDeadline))
	})

	cfg := c.srv.opts.Engine
	cfg.Logger = c.log
	cfg.Metrics = c.srv.metrics
	engine := input.New(cfg)
	defer engine.Close()

	if setup := c.srv.opts.Setup; setup != nil {
		if err := setup(engine); err != nil {
			c.log.WithError(err).Warn("engine setup failed")
			c.sendError(fmt.Sprintf("setup: %v", err))
			return
		}
	}

	loop := input.NewLoop(engine, input.DefaultLoopBuffer)
	loop.OnResult(func(_ input.KeyEventKind, res input.Result) {
		c.sendResult(engine, res)
	})

	ctx, cancel := context.WithCancel(parent)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = loop.Run(ctx)
	}()
	pingDone := make(chan struct{})
	go c.pingLoop(pingDone)
	defer func() {
		close(pingDone)
		cancel()
		<-runDone
	}()

	c.log.Info("client connected")
	defer c.log.Info("client disconnected")

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("read error")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(fmt.Sprintf("invalid JSON: %v", err))
			continue
		}
		if err := c.dispatch(ctx, loop, msg); err != nil {
			c.sendError(err.Error())
		}
	}
}

func (c *conn) dispatch(ctx context.Context, loop *input.Loop, msg ClientMessage) error {
	switch msg.Type {
	case TypeKeyDown, TypeKeyUp:
		if msg.Key == "" {
			return fmt.Errorf("%s: missing key", msg.Type)
		}
		ev := key.NewRawEvent(msg.Key).WithRepeat(msg.Repeat)
		if msg.ID != "" {
			ev = ev.WithNative(msg.ID)
		}
		if msg.Type == TypeKeyDown {
			return loop.KeyDown(ctx, ev)
		}
		return loop.KeyUp(ctx, ev)

	case TypeBlur:
		return loop.Blur(ctx)

	case TypeEnableScope, TypeDisableScope, TypeToggleScope:
		if msg.Scope == "" {
			return fmt.Errorf("%s: missing scope", msg.Type)
		}
		return loop.Do(ctx, func(engine *input.Context) {
			var res input.Result
			switch msg.Type {
			case TypeEnableScope:
				res = engine.EnableScopeResult(msg.Scope)
			case TypeDisableScope:
				res = engine.DisableScopeResult(msg.Scope)
			default:
				res = engine.ToggleScopeResult(msg.Scope)
			}
			c.sendResult(engine, res)
			c.send(ScopesMessage{Type: TypeScopes, Active: engine.ActiveScopes()})
		})

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// sendResult reports suppressions and fires. It runs on the loop goroutine.
func (c *conn) sendResult(engine *input.Context, res input.Result) {
	if len(res.Suppressed) > 0 {
		msg := SuppressMessage{Type: TypeSuppress}
		for _, s := range res.Suppressed {
			msg.Keys = append(msg.Keys, s.Key)
			if id, ok := s.Event.Native.(string); ok {
				msg.IDs = append(msg.IDs, id)
			}
		}
		c.send(msg)
	}

	if len(res.Fired) > 0 {
		msg := FiredMessage{Type: TypeFired}
		for _, h := range res.Fired {
			fb := FiredBinding{ID: h.ID().String()}
			if b := engine.Binding(h); b != nil {
				fb.Hotkeys = b.Hotkeys().String()
				fb.Scopes = b.Scopes()
				fb.Description = b.Description()
			}
			msg.Bindings = append(msg.Bindings, fb)
		}
		c.send(msg)
	}
}

func (c *conn) sendError(message string) {
	c.send(ErrorMessage{Type: TypeError, Message: message})
}

// send writes a JSON message. A failed write closes the connection, which
// ends the read loop.
func (c *conn) send(v any) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		_ = c.ws.Close()
		return
	}
	if err := c.ws.WriteJSON(v); err != nil {
		c.log.WithError(err).Debug("write failed, closing connection")
		_ = c.ws.Close()
	}
}

func (c *conn) pingLoop(done <-chan struct{}) {
	ticker := time.NewTicker(c.srv.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline))
			c.writeMu.Unlock()
			if err != nil {
				c.log.WithError(err).Debug("ping failed")
				_ = c.ws.Close()
				return
			}
		}
	}
}
