// Package ws serves clock sessions to browser surfaces over websockets.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/clockface/internal/domain"
	"github.com/couchcryptid/clockface/internal/observability"
	"github.com/couchcryptid/clockface/internal/presentation"
)

// Config wires a Handler to the shared clock components.
type Config struct {
	Formatter     *domain.Formatter
	Layouter      domain.Layouter
	Store         presentation.PreferenceStore
	PrefsKey      string
	Default24Hour bool
	Clock         clockwork.Clock

	// Inbound messages allowed per second and burst, per connection.
	MessageRate  float64
	MessageBurst int

	// CheckOrigin overrides the same-origin check of the upgrader.
	CheckOrigin func(r *http.Request) bool

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Handler upgrades requests and runs one presentation session per connection.
type Handler struct {
	cfg      Config
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards closed so no session is added to wg once Shutdown waits.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewHandler creates a Handler. Sessions live until their surface
// disconnects or Shutdown is called.
func NewHandler(cfg Config) *Handler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  4096,
			CheckOrigin:      cfg.CheckOrigin,
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.track() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.wg.Done()

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.cfg.Logger.Debug("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	logger := h.cfg.Logger.With("session_id", uuid.NewString())
	h.serve(socket, logger)
}

// track registers a request with wg unless Shutdown has begun.
func (h *Handler) track() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.wg.Add(1)
	return true
}

func (h *Handler) serve(socket *websocket.Conn, logger *slog.Logger) {
	defer socket.Close()
	c := newConn(socket, logger)

	opts, err := c.readHello()
	if err != nil {
		logger.Debug("websocket handshake rejected", "error", err)
		c.reject(websocket.ClosePolicyViolation, "expected hello")
		return
	}

	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()

	go c.writePump(ctx)
	events := make(chan presentation.Event)
	limiter := rate.NewLimiter(rate.Limit(h.cfg.MessageRate), h.cfg.MessageBurst)
	go c.readPump(ctx, events, limiter, h.cfg.Metrics)

	presenter := presentation.NewPresenter(presentation.Deps{
		Formatter:     h.cfg.Formatter,
		Layouter:      h.cfg.Layouter,
		Renderer:      c,
		Store:         h.cfg.Store,
		Screen:        c,
		PrefsKey:      h.cfg.PrefsKey,
		Default24Hour: h.cfg.Default24Hour,
		Logger:        logger,
		Metrics:       h.cfg.Metrics,
	})
	session := presentation.NewSession(presenter, h.cfg.Clock, logger, h.cfg.Metrics)

	logger.Info("session started", "diameter", opts.Diameter)
	err = session.Run(ctx, opts, events)
	switch {
	case err == nil, errors.Is(err, ErrClosed):
		logger.Info("session ended")
	default:
		logger.Warn("session ended", "error", err)
	}

	cancel()
	<-c.done
}

// Shutdown closes every live session and waits for them to finish or for
// ctx to expire.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cancel()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
