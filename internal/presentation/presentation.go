// Package presentation drives a clock surface: it turns timestamps into
// frames, keeps the dial layout in step with the measured container and
// applies the display toggles.
package presentation

import (
	"context"

	"github.com/couchcryptid/clockface/internal/domain"
)

// HandFrame is one hand's rotation for a frame. When Animate is false the
// renderer applies the rotation without any transition.
type HandFrame struct {
	Hand     domain.Hand `json:"hand"`
	AngleDeg float64     `json:"angle_deg"`
	Animate  bool        `json:"animate"`
}

// Frame is the per-second output of a presenter.
type Frame struct {
	Reading      domain.ClockReading `json:"reading"`
	Hands        []HandFrame         `json:"hands"`
	ShowMeridiem bool                `json:"show_meridiem"`
}

// Chrome is the state of the surface around the dial.
type Chrome struct {
	DarkMode   bool `json:"dark_mode"`
	Use24Hour  bool `json:"use_24_hour"`
	Fullscreen bool `json:"fullscreen"`
}

// Renderer applies presenter output to a surface.
type Renderer interface {
	RenderLayout(layout domain.DialLayout) error
	RenderFrame(frame Frame) error
	RenderChrome(chrome Chrome) error
}

// PreferenceStore persists the display mode under a fixed key. Load
// reports false when nothing is stored.
type PreferenceStore interface {
	Load(ctx context.Context, key string) (domain.DisplayMode, bool, error)
	Save(ctx context.Context, key string, mode domain.DisplayMode) error
}

// Fullscreen asks the host to enter or leave full-viewport presentation.
// Request must not block on the host; the outcome is reported back through
// Presenter.FullscreenChanged.
type Fullscreen interface {
	Request(enter bool) error
}

// MountOptions carries the host facts known when a surface mounts.
type MountOptions struct {
	Diameter    float64
	PrefersDark *bool // host dark-mode preference, nil when unknown
}
