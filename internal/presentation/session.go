package presentation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/clockface/internal/observability"
	"github.com/couchcryptid/clockface/internal/timesource"
)

// Event is an input to a Session from its surface.
type Event interface {
	event()
}

// ResizeEvent reports a new measured dial diameter in pixels.
type ResizeEvent struct{ Diameter float64 }

// VisibilityEvent reports the surface becoming hidden or visible again.
type VisibilityEvent struct{ Hidden bool }

// DarkModeEvent is the settings toggle for the theme.
type DarkModeEvent struct{ On bool }

// Use24HourEvent is the settings toggle for the hour mode.
type Use24HourEvent struct{ On bool }

// ToggleFullscreenEvent is a click on the fullscreen control.
type ToggleFullscreenEvent struct{}

// FullscreenChangedEvent is the host's report of the fullscreen state.
// Err is non-empty when the host refused the last request.
type FullscreenChangedEvent struct {
	Active bool
	Err    string
}

func (ResizeEvent) event()            {}
func (VisibilityEvent) event()        {}
func (DarkModeEvent) event()          {}
func (Use24HourEvent) event()         {}
func (ToggleFullscreenEvent) event()  {}
func (FullscreenChangedEvent) event() {}

// Session is the single event loop of one surface. Scheduler samples,
// resize notifications and user input are handled one at a time, so the
// presenter is never touched concurrently.
type Session struct {
	presenter *Presenter
	source    *timesource.Source
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewSession creates a Session sampling the given clock.
func NewSession(p *Presenter, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Session {
	source := timesource.New(clock, timesource.WithObserver(func(lateness time.Duration) {
		metrics.TickLateness.Observe(lateness.Seconds())
	}))
	return &Session{
		presenter: p,
		source:    source,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run mounts the surface and processes ticks and events until ctx is
// cancelled, events is closed, or the renderer fails. Cancellation and a
// closed event channel are a normal teardown and return nil.
func (s *Session) Run(ctx context.Context, opts MountOptions, events <-chan Event) error {
	s.metrics.SessionsTotal.Inc()
	s.metrics.SessionsActive.Inc()
	defer s.metrics.SessionsActive.Dec()

	now := s.source.Start()
	defer s.source.Stop()

	if err := s.presenter.Mount(ctx, opts, now); err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("session stopping", "reason", ctx.Err())
			return nil
		case now := <-s.source.Ticks():
			if err := s.presenter.Tick(now); err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				s.logger.Debug("session stopping", "reason", "surface closed")
				return nil
			}
			if err := s.handle(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, ev Event) error {
	switch ev := ev.(type) {
	case ResizeEvent:
		return s.presenter.Resize(ev.Diameter)
	case VisibilityEvent:
		if ev.Hidden {
			s.source.Stop()
			s.presenter.Hide()
			return nil
		}
		if s.source.Running() {
			return nil
		}
		return s.presenter.Show(s.source.Start())
	case DarkModeEvent:
		return s.presenter.SetDarkMode(ctx, ev.On)
	case Use24HourEvent:
		return s.presenter.SetUse24Hour(ctx, ev.On)
	case ToggleFullscreenEvent:
		return s.presenter.ToggleFullscreen()
	case FullscreenChangedEvent:
		return s.presenter.FullscreenChanged(ev.Active, ev.Err)
	default:
		s.logger.Warn("ignoring unknown session event", "type", fmt.Sprintf("%T", ev))
		return nil
	}
}
