package domain

import "fmt"

// Hand identifies one of the three rotating hands.
type Hand int

const (
	HourHand Hand = iota
	MinuteHand
	SecondHand
)

// Hands lists every hand in render order.
var Hands = [...]Hand{HourHand, MinuteHand, SecondHand}

func (h Hand) String() string {
	switch h {
	case HourHand:
		return "hour"
	case MinuteHand:
		return "minute"
	case SecondHand:
		return "second"
	default:
		return fmt.Sprintf("hand(%d)", int(h))
	}
}

// MarshalText encodes the hand by name.
func (h Hand) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// SuppressTransition reports whether a hand moving from previous to current
// must be applied without an animated transition: either there is no
// previous sample or the angle decreased (the hand wrapped past 0°).
func SuppressTransition(previous float64, hasPrevious bool, current float64) bool {
	return !hasPrevious || current < previous
}

// WrapDetector tracks the last applied angle of each hand.
// The zero value has no history; every hand's first observation suppresses.
type WrapDetector struct {
	previous [len(Hands)]float64
	seen     [len(Hands)]bool
}

// Observe records angle for h and reports whether its transition must be
// suppressed for this update.
func (d *WrapDetector) Observe(h Hand, angle float64) bool {
	suppress := SuppressTransition(d.previous[h], d.seen[h], angle)
	d.previous[h] = angle
	d.seen[h] = true
	return suppress
}

// ObserveReading observes all three hands of r, indexed by Hand.
func (d *WrapDetector) ObserveReading(r ClockReading) [len(Hands)]bool {
	var out [len(Hands)]bool
	for _, h := range Hands {
		out[h] = d.Observe(h, r.Angle(h))
	}
	return out
}

// Previous returns the last observed angle for h, if any.
func (d *WrapDetector) Previous(h Hand) (float64, bool) {
	return d.previous[h], d.seen[h]
}

// Reset forgets every hand's history.
func (d *WrapDetector) Reset() {
	*d = WrapDetector{}
}
