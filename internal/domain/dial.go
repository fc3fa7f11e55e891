package domain

import "math"

const (
	// NumeralCount is the number of numerals on the dial.
	NumeralCount = 12
	// TickCount is the number of tick marks on the dial.
	TickCount = 60

	// NumberRadiusRatio and TickRadiusRatio scale the dial radius (D/2).
	NumberRadiusRatio = 0.74
	TickRadiusRatio   = 0.89

	// Glyph centering shift as a fraction of D (≈ -15px, -10px on a 567px dial).
	numeralShiftX = -0.026
	numeralShiftY = -0.018
)

// Numeral is one dial label and its position relative to the dial center.
type Numeral struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Tick is one tick mark. RotationDeg turns the mark's long axis radial.
type Tick struct {
	Index       int     `json:"index"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	RotationDeg float64 `json:"rotation_deg"`
	IsHourTick  bool    `json:"is_hour_tick"`
}

// DialLayout is the placement of numerals and ticks for one diameter.
type DialLayout struct {
	Diameter     float64   `json:"diameter"`
	NumberRadius float64   `json:"number_radius"`
	TickRadius   float64   `json:"tick_radius"`
	Numerals     []Numeral `json:"numerals"`
	Ticks        []Tick    `json:"ticks"`
}

// Degenerate reports whether the layout was computed without a usable measurement.
func (l DialLayout) Degenerate() bool {
	return l.Diameter <= 0
}

// Layouter computes dial layouts. It is satisfied by DialGeometry and by
// caching decorators around it.
type Layouter interface {
	LayoutDial(diameter float64) DialLayout
}

// DialGeometry is the pure Layouter.
type DialGeometry struct{}

// LayoutDial implements Layouter.
func (DialGeometry) LayoutDial(diameter float64) DialLayout {
	return LayoutDial(diameter)
}

// LayoutDial places 12 numerals and 60 ticks for a dial of the given
// diameter in pixels. Non-finite or non-positive diameters produce the
// degenerate layout.
func LayoutDial(diameter float64) DialLayout {
	diameter = NormalizeDiameter(diameter)

	radius := diameter / 2
	layout := DialLayout{
		Diameter:     diameter,
		NumberRadius: NumberRadiusRatio * radius,
		TickRadius:   TickRadiusRatio * radius,
		Numerals:     make([]Numeral, 0, NumeralCount),
		Ticks:        make([]Tick, 0, TickCount),
	}

	shiftX := numeralShiftX * diameter
	shiftY := numeralShiftY * diameter
	for i := 1; i <= NumeralCount; i++ {
		x, y := polar(layout.NumberRadius, float64(i)*30)
		layout.Numerals = append(layout.Numerals, Numeral{
			Label: labels[i-1],
			X:     roundPx(x + shiftX),
			Y:     roundPx(y + shiftY),
		})
	}

	for i := 1; i <= TickCount; i++ {
		x, y := polar(layout.TickRadius, float64(i)*6)
		layout.Ticks = append(layout.Ticks, Tick{
			Index:       i,
			X:           roundPx(x),
			Y:           roundPx(y),
			RotationDeg: math.Mod(float64(i)*6, 360),
			IsHourTick:  i%5 == 0,
		})
	}

	return layout
}

// NormalizeDiameter maps unusable measurements (negative, NaN, Inf) to 0.
func NormalizeDiameter(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}

var labels = [NumeralCount]string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

// polar converts a clock angle (0° at 12 o'clock, clockwise) to screen
// coordinates with y pointing down.
func polar(r, clockDeg float64) (x, y float64) {
	rad := (clockDeg - 90) * math.Pi / 180
	return r * math.Cos(rad), r * math.Sin(rad)
}

// roundPx rounds to whole pixels and normalizes -0 to 0.
func roundPx(v float64) float64 {
	r := math.Round(v)
	if r == 0 {
		return 0
	}
	return r
}
