package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchcryptid/clockface/internal/domain"
	"github.com/couchcryptid/clockface/internal/presentation"
)

// Outbound message types.
const (
	typeLayout     = "layout"
	typeFrame      = "frame"
	typeChrome     = "chrome"
	typeFullscreen = "fullscreen"
)

// Inbound message types.
const (
	typeHello            = "hello"
	typeResize           = "resize"
	typeVisibility       = "visibility"
	typeDarkMode         = "darkMode"
	typeUse24Hour        = "use24Hour"
	typeFullscreenResult = "fullscreenResult"
)

// outbound is the envelope of every server-to-surface message. Exactly one
// payload field is set, matching Type.
type outbound struct {
	Type   string               `json:"type"`
	Layout *domain.DialLayout   `json:"layout,omitempty"`
	Frame  *presentation.Frame  `json:"frame,omitempty"`
	Chrome *presentation.Chrome `json:"chrome,omitempty"`
	Enter  *bool                `json:"enter,omitempty"`
}

// inbound is the union of surface-to-server message fields.
type inbound struct {
	Type        string   `json:"type"`
	Diameter    *float64 `json:"diameter,omitempty"`
	PrefersDark *bool    `json:"prefersDark,omitempty"`
	Hidden      bool     `json:"hidden,omitempty"`
	On          bool     `json:"on,omitempty"`
	Active      bool     `json:"active,omitempty"`
	Error       string   `json:"error,omitempty"`
}

var (
	errNotHello    = errors.New("first message must be hello")
	errUnknownType = errors.New("unknown message type")
	errNoDiameter  = errors.New("resize without diameter")
)

func decode(data []byte) (inbound, error) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return inbound{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

// parseHello reads the handshake message a surface sends after connecting.
func parseHello(data []byte) (presentation.MountOptions, error) {
	msg, err := decode(data)
	if err != nil {
		return presentation.MountOptions{}, err
	}
	if msg.Type != typeHello {
		return presentation.MountOptions{}, fmt.Errorf("%w, got %q", errNotHello, msg.Type)
	}

	opts := presentation.MountOptions{PrefersDark: msg.PrefersDark}
	if msg.Diameter != nil {
		opts.Diameter = *msg.Diameter
	}
	return opts, nil
}

// parseEvent maps a surface message to a session event.
func parseEvent(data []byte) (presentation.Event, error) {
	msg, err := decode(data)
	if err != nil {
		return nil, err
	}

	switch msg.Type {
	case typeResize:
		if msg.Diameter == nil {
			return nil, errNoDiameter
		}
		return presentation.ResizeEvent{Diameter: *msg.Diameter}, nil
	case typeVisibility:
		return presentation.VisibilityEvent{Hidden: msg.Hidden}, nil
	case typeDarkMode:
		return presentation.DarkModeEvent{On: msg.On}, nil
	case typeUse24Hour:
		return presentation.Use24HourEvent{On: msg.On}, nil
	case typeFullscreen:
		return presentation.ToggleFullscreenEvent{}, nil
	case typeFullscreenResult:
		return presentation.FullscreenChangedEvent{Active: msg.Active, Err: msg.Error}, nil
	default:
		return nil, fmt.Errorf("%w %q", errUnknownType, msg.Type)
	}
}
