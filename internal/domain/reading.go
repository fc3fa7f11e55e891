package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockReading is everything the face shows for one instant.
type ClockReading struct {
	TimestampMs    int64   `json:"timestamp_ms"`
	HourAngleDeg   float64 `json:"hour_angle_deg"`
	MinuteAngleDeg float64 `json:"minute_angle_deg"`
	SecondAngleDeg float64 `json:"second_angle_deg"`
	DigitalTime    string  `json:"digital_time"`
	Meridiem       string  `json:"meridiem"`
	DigitalDate    string  `json:"digital_date"`
}

// Angle returns the angle of the given hand.
func (r ClockReading) Angle(h Hand) float64 {
	switch h {
	case HourHand:
		return r.HourAngleDeg
	case MinuteHand:
		return r.MinuteAngleDeg
	default:
		return r.SecondAngleDeg
	}
}

// FormatPolicy selects how the digital time is rendered.
type FormatPolicy string

const (
	// PolicyLocale takes the meridiem token and 12-hour convention from the locale.
	PolicyLocale FormatPolicy = "locale"
	// PolicyFixed always renders "HH : MM : SS" with a literal AM/PM.
	PolicyFixed FormatPolicy = "fixed"
)

var fixedMeridiem = []string{"AM", "PM"}

// ParseFormatPolicy validates a policy name.
func ParseFormatPolicy(s string) (FormatPolicy, error) {
	switch p := FormatPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyLocale, PolicyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown format policy %q", s)
	}
}

// Formatter turns timestamps into readings. It is immutable and safe to
// share between sessions.
type Formatter struct {
	locale   Locale
	location *time.Location
	policy   FormatPolicy
}

// FormatterOption customises a Formatter.
type FormatterOption func(*Formatter)

// WithLocation overrides the zone used to extract calendar fields. The
// default is the host local zone.
func WithLocation(loc *time.Location) FormatterOption {
	return func(f *Formatter) {
		if loc != nil {
			f.location = loc
		}
	}
}

// WithPolicy selects the time formatting policy. Default: PolicyLocale.
func WithPolicy(p FormatPolicy) FormatterOption {
	return func(f *Formatter) {
		if p != "" {
			f.policy = p
		}
	}
}

// NewFormatter creates a Formatter for the given locale.
func NewFormatter(locale Locale, opts ...FormatterOption) *Formatter {
	f := &Formatter{
		locale:   locale,
		location: time.Local,
		policy:   PolicyLocale,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Locale returns the formatter's locale.
func (f *Formatter) Locale() Locale { return f.locale }

// Policy returns the formatter's time formatting policy.
func (f *Formatter) Policy() FormatPolicy { return f.policy }

// ComputeReading derives a reading in the host local zone.
func ComputeReading(ts time.Time, use24Hour bool, locale Locale) ClockReading {
	return NewFormatter(locale).Reading(ts, use24Hour)
}

// Reading derives the angles and readouts for ts.
func (f *Formatter) Reading(ts time.Time, use24Hour bool) ClockReading {
	t := ts.In(f.location)
	hour, minute, second := t.Clock()
	hourAngle, minuteAngle, secondAngle := HandAngles(hour, minute, second)

	digital, meridiem := f.formatTime(hour, minute, second, use24Hour)

	return ClockReading{
		TimestampMs:    ts.UnixMilli(),
		HourAngleDeg:   hourAngle,
		MinuteAngleDeg: minuteAngle,
		SecondAngleDeg: secondAngle,
		DigitalTime:    digital,
		Meridiem:       meridiem,
		DigitalDate:    f.formatDate(t),
	}
}

// HandAngles maps local clock fields to hand angles in degrees.
func HandAngles(hour, minute, second int) (hourDeg, minuteDeg, secondDeg float64) {
	hourDeg = 30*float64(hour%12) + float64(minute)/2
	minuteDeg = 6 * float64(minute%60)
	secondDeg = 6 * float64(second%60)
	return hourDeg, minuteDeg, secondDeg
}

func (f *Formatter) formatTime(hour, minute, second int, use24Hour bool) (string, string) {
	displayHour := hour
	meridiem := ""

	if !use24Hour {
		pm := hour >= 12
		displayHour = hour % 12
		if displayHour == 0 && !(f.policy == PolicyLocale && f.locale.HourCycle == HourCycle11) {
			displayHour = 12
		}
		tokens := f.locale.Meridiem
		if f.policy == PolicyFixed || len(tokens) != 2 {
			tokens = fixedMeridiem
		}
		if pm {
			meridiem = tokens[1]
		} else {
			meridiem = tokens[0]
		}
	}

	return fmt.Sprintf("%02d : %02d : %02d", displayHour, minute, second), meridiem
}

func (f *Formatter) formatDate(t time.Time) string {
	month := t.Month().String()[:3]
	if len(f.locale.Months) == 12 {
		month = f.locale.Months[t.Month()-1]
	}
	pattern := f.locale.DatePattern
	if pattern == "" {
		pattern = "{day} {month} {year}"
	}
	r := strings.NewReplacer(
		"{day}", strconv.Itoa(t.Day()),
		"{month}", month,
		"{monthNum}", strconv.Itoa(int(t.Month())),
		"{year}", strconv.Itoa(t.Year()),
	)
	return strings.ReplaceAll(r.Replace(pattern), ",", "")
}
