package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/clockface/internal/domain"
	"github.com/couchcryptid/clockface/internal/observability"
	"github.com/couchcryptid/clockface/internal/presentation"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next message or pong from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Time allowed for the surface to send its hello after connecting.
	helloWait = 10 * time.Second

	maxMessageSize = 4096

	sendBufferSize = 32
)

// ErrClosed is returned when rendering to a surface whose connection is gone.
var ErrClosed = errors.New("websocket connection closed")

// errSlowSurface ends a session whose surface stopped reading.
var errSlowSurface = errors.New("websocket surface not keeping up")

// conn is one surface connection. It implements presentation.Renderer and
// presentation.Fullscreen by queueing messages for the writer goroutine.
type conn struct {
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{} // closed when writePump exits
	logger *slog.Logger
}

func newConn(ws *websocket.Conn, logger *slog.Logger) *conn {
	return &conn{
		ws:     ws,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *conn) RenderLayout(layout domain.DialLayout) error {
	return c.enqueue(outbound{Type: typeLayout, Layout: &layout})
}

func (c *conn) RenderFrame(frame presentation.Frame) error {
	return c.enqueue(outbound{Type: typeFrame, Frame: &frame})
}

func (c *conn) RenderChrome(chrome presentation.Chrome) error {
	return c.enqueue(outbound{Type: typeChrome, Chrome: &chrome})
}

// Request asks the browser to enter or leave fullscreen. The browser answers
// with a fullscreenResult message.
func (c *conn) Request(enter bool) error {
	return c.enqueue(outbound{Type: typeFullscreen, Enter: &enter})
}

func (c *conn) enqueue(msg outbound) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", msg.Type, err)
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return errSlowSurface
	}
}

// readHello waits for the handshake message.
func (c *conn) readHello() (presentation.MountOptions, error) {
	if err := c.ws.SetReadDeadline(time.Now().Add(helloWait)); err != nil {
		return presentation.MountOptions{}, err
	}
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return presentation.MountOptions{}, fmt.Errorf("read hello: %w", err)
	}
	return parseHello(data)
}

// reject closes the connection with a close frame carrying reason.
func (c *conn) reject(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// readPump decodes surface messages into events until the connection fails.
// It closes events on exit, which ends the session.
func (c *conn) readPump(ctx context.Context, events chan<- presentation.Event, limiter *rate.Limiter, metrics *observability.Metrics) {
	defer close(events)

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		if !limiter.Allow() {
			metrics.InboundDropped.WithLabelValues("rate").Inc()
			continue
		}

		ev, err := parseEvent(data)
		if err != nil {
			c.logger.Debug("dropping surface message", "error", err)
			metrics.InboundDropped.WithLabelValues("malformed").Inc()
			continue
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// writePump sends queued messages and keepalive pings. On ctx cancellation
// it sends a normal close frame.
func (c *conn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
	}()

	for {
		select {
		case <-ctx.Done():
			c.reject(websocket.CloseNormalClosure, "")
			return

		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Warn("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
