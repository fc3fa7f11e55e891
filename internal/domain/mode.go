package domain

// DisplayMode is the user-controlled presentation preference.
type DisplayMode struct {
	Use24Hour bool `json:"use24Hour"`
	DarkMode  bool `json:"darkMode"`
}

// DefaultDisplayMode builds the mode used when no preference is stored:
// the locale default hour mode and the host's dark preference, dark when
// the host did not report one.
func DefaultDisplayMode(use24Hour bool, prefersDark *bool) DisplayMode {
	dark := true
	if prefersDark != nil {
		dark = *prefersDark
	}
	return DisplayMode{Use24Hour: use24Hour, DarkMode: dark}
}
