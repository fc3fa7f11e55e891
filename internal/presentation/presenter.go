package presentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/clockface/internal/domain"
	"github.com/couchcryptid/clockface/internal/observability"
)

// ErrFullscreenUnavailable is returned by a presenter without a Fullscreen collaborator.
var ErrFullscreenUnavailable = errors.New("fullscreen not available")

// Deps are the collaborators of a Presenter. Store and Screen may be nil.
type Deps struct {
	Formatter     *domain.Formatter
	Layouter      domain.Layouter
	Renderer      Renderer
	Store         PreferenceStore
	Screen        Fullscreen
	PrefsKey      string
	Default24Hour bool
	Logger        *slog.Logger
	Metrics       *observability.Metrics
}

// Presenter owns the state of one clock surface. It is not safe for
// concurrent use; a Session serializes every call.
type Presenter struct {
	formatter     *domain.Formatter
	layouter      domain.Layouter
	renderer      Renderer
	store         PreferenceStore
	screen        Fullscreen
	prefsKey      string
	default24Hour bool
	logger        *slog.Logger
	metrics       *observability.Metrics

	mode       domain.DisplayMode
	fullscreen bool
	pending    *bool // fullscreen value before an unconfirmed request
	wraps      domain.WrapDetector
	layout     domain.DialLayout
	measured   float64 // normalized diameter the layout was requested for
	hasLayout  bool
	last       time.Time
	mounted    bool
	hidden     bool
}

// NewPresenter creates an unmounted Presenter.
func NewPresenter(d Deps) *Presenter {
	layouter := d.Layouter
	if layouter == nil {
		layouter = domain.DialGeometry{}
	}
	return &Presenter{
		formatter:     d.Formatter,
		layouter:      layouter,
		renderer:      d.Renderer,
		store:         d.Store,
		screen:        d.Screen,
		prefsKey:      d.PrefsKey,
		default24Hour: d.Default24Hour,
		logger:        d.Logger,
		metrics:       d.Metrics,
	}
}

// Mode returns the current display mode.
func (p *Presenter) Mode() domain.DisplayMode { return p.mode }

// Layout returns the current dial layout.
func (p *Presenter) Layout() domain.DialLayout { return p.layout }

// Fullscreen reports the presenter's view of the fullscreen state.
func (p *Presenter) Fullscreen() bool { return p.fullscreen }

// Mount loads preferences, lays out the dial and renders the first frame
// with every transition suppressed so the hands appear in place.
func (p *Presenter) Mount(ctx context.Context, opts MountOptions, now time.Time) error {
	p.mode = p.loadMode(ctx, opts.PrefersDark)
	p.wraps.Reset()
	p.hasLayout = false
	p.hidden = false

	if err := p.renderChrome(); err != nil {
		return err
	}
	if err := p.Resize(opts.Diameter); err != nil {
		return err
	}
	if err := p.renderFrame(now); err != nil {
		return err
	}

	p.mounted = true
	p.logger.Debug("clock mounted",
		"diameter", p.layout.Diameter,
		"use_24_hour", p.mode.Use24Hour,
		"dark_mode", p.mode.DarkMode,
	)
	return nil
}

// Tick renders the frame for one scheduler sample.
func (p *Presenter) Tick(now time.Time) error {
	if !p.mounted || p.hidden {
		return nil
	}
	return p.renderFrame(now)
}

// Resize recomputes the layout when the measured diameter changed.
func (p *Presenter) Resize(diameter float64) error {
	diameter = domain.NormalizeDiameter(diameter)
	if p.hasLayout && diameter == p.measured {
		return nil
	}

	p.layout = p.layouter.LayoutDial(diameter)
	p.measured = diameter
	p.hasLayout = true
	p.metrics.LayoutComputations.Inc()

	if err := p.renderer.RenderLayout(p.layout); err != nil {
		p.metrics.RenderErrors.WithLabelValues("layout").Inc()
		return fmt.Errorf("render layout: %w", err)
	}
	return nil
}

// SetDarkMode applies and persists the theme toggle.
func (p *Presenter) SetDarkMode(ctx context.Context, on bool) error {
	p.mode.DarkMode = on
	p.saveMode(ctx)
	return p.renderChrome()
}

// SetUse24Hour applies and persists the hour-mode toggle and refreshes the
// digital readout immediately.
func (p *Presenter) SetUse24Hour(ctx context.Context, on bool) error {
	p.mode.Use24Hour = on
	p.saveMode(ctx)
	if err := p.renderChrome(); err != nil {
		return err
	}
	if !p.mounted || p.hidden || p.last.IsZero() {
		return nil
	}
	return p.renderFrame(p.last)
}

// ToggleFullscreen flips the fullscreen state and asks the host to follow.
// A refused request reverts the state; it is logged and never returned.
func (p *Presenter) ToggleFullscreen() error {
	prev := p.fullscreen
	p.fullscreen = !prev

	err := ErrFullscreenUnavailable
	if p.screen != nil {
		err = p.screen.Request(p.fullscreen)
	}
	if err != nil {
		p.logger.Warn("fullscreen request failed", "error", err, "enter", p.fullscreen)
		p.metrics.FullscreenFailures.Inc()
		p.fullscreen = prev
		p.pending = nil
	} else {
		p.pending = &prev
	}

	return p.renderChrome()
}

// FullscreenChanged records the host's fullscreen state. A reported failure
// reverts to the value before the pending request.
func (p *Presenter) FullscreenChanged(active bool, errMsg string) error {
	if errMsg != "" {
		p.logger.Warn("fullscreen toggle rejected by host", "error", errMsg)
		p.metrics.FullscreenFailures.Inc()
		if p.pending != nil {
			p.fullscreen = *p.pending
		}
	} else {
		p.fullscreen = active
	}
	p.pending = nil
	return p.renderChrome()
}

// Hide stops frame output while the surface is not visible.
func (p *Presenter) Hide() {
	p.hidden = true
}

// Show resumes output after Hide. The hands are placed without transition,
// as on the first mount.
func (p *Presenter) Show(now time.Time) error {
	p.hidden = false
	p.wraps.Reset()
	if !p.mounted {
		return nil
	}
	return p.renderFrame(now)
}

func (p *Presenter) renderFrame(now time.Time) error {
	reading := p.formatter.Reading(now, p.mode.Use24Hour)
	frame := Frame{
		Reading:      reading,
		Hands:        make([]HandFrame, 0, len(domain.Hands)),
		ShowMeridiem: !p.mode.Use24Hour,
	}

	for _, h := range domain.Hands {
		angle := reading.Angle(h)
		_, hadPrevious := p.wraps.Previous(h)
		suppress := p.wraps.Observe(h, angle)
		if suppress && hadPrevious {
			p.metrics.HandWraps.WithLabelValues(h.String()).Inc()
		}
		frame.Hands = append(frame.Hands, HandFrame{Hand: h, AngleDeg: angle, Animate: !suppress})
	}
	p.last = now

	if err := p.renderer.RenderFrame(frame); err != nil {
		p.metrics.RenderErrors.WithLabelValues("frame").Inc()
		return fmt.Errorf("render frame: %w", err)
	}
	p.metrics.FramesRendered.Inc()
	return nil
}

func (p *Presenter) renderChrome() error {
	err := p.renderer.RenderChrome(Chrome{
		DarkMode:   p.mode.DarkMode,
		Use24Hour:  p.mode.Use24Hour,
		Fullscreen: p.fullscreen,
	})
	if err != nil {
		p.metrics.RenderErrors.WithLabelValues("chrome").Inc()
		return fmt.Errorf("render chrome: %w", err)
	}
	return nil
}

func (p *Presenter) loadMode(ctx context.Context, prefersDark *bool) domain.DisplayMode {
	defaults := domain.DefaultDisplayMode(p.default24Hour, prefersDark)
	if p.store == nil {
		return defaults
	}

	mode, ok, err := p.store.Load(ctx, p.prefsKey)
	if err != nil {
		p.logger.Debug("preference load failed, using defaults", "error", err, "key", p.prefsKey)
		p.metrics.PreferenceErrors.WithLabelValues("load").Inc()
		return defaults
	}
	if !ok {
		return defaults
	}
	return mode
}

// saveMode is best-effort; failures leave the preference unpersisted.
func (p *Presenter) saveMode(ctx context.Context) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(ctx, p.prefsKey, p.mode); err != nil {
		p.logger.Debug("preference save failed", "error", err, "key", p.prefsKey)
		p.metrics.PreferenceErrors.WithLabelValues("save").Inc()
	}
}
