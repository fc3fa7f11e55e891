package domain

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutDial_Counts(t *testing.T) {
	for _, d := range []float64{0, 120, 300, 567, 1080} {
		layout := LayoutDial(d)
		require.Len(t, layout.Numerals, NumeralCount)
		require.Len(t, layout.Ticks, TickCount)

		var hourTicks []int
		for _, tick := range layout.Ticks {
			if tick.IsHourTick {
				hourTicks = append(hourTicks, tick.Index)
			}
		}
		assert.Equal(t, []int{5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60}, hourTicks)
	}
}

func TestLayoutDial_LabelsInClockOrder(t *testing.T) {
	layout := LayoutDial(300)
	for i, n := range layout.Numerals {
		assert.Equal(t, labels[i], n.Label)
	}
}

func TestLayoutDial_Radii(t *testing.T) {
	layout := LayoutDial(300)
	assert.InDelta(t, 111.0, layout.NumberRadius, 1e-9)
	assert.InDelta(t, 133.5, layout.TickRadius, 1e-9)
	assert.False(t, layout.Degenerate())
}

func TestLayoutDial_NumeralPositions(t *testing.T) {
	layout := LayoutDial(300)
	byLabel := make(map[string]Numeral, len(layout.Numerals))
	for _, n := range layout.Numerals {
		byLabel[n.Label] = n
	}

	// 12 at the top, 3 right, 6 bottom, 9 left; each shifted by (-8, -5).
	assert.Equal(t, Numeral{Label: "12", X: -8, Y: -116}, byLabel["12"])
	assert.Equal(t, Numeral{Label: "3", X: 103, Y: -5}, byLabel["3"])
	assert.Equal(t, Numeral{Label: "6", X: -8, Y: 106}, byLabel["6"])
	assert.Equal(t, Numeral{Label: "9", X: -119, Y: -5}, byLabel["9"])
}

func TestLayoutDial_TickPositionsAndRotation(t *testing.T) {
	layout := LayoutDial(300)
	for _, tick := range layout.Ticks {
		assert.InDelta(t, math.Mod(float64(tick.Index)*6, 360), tick.RotationDeg, 1e-9)
		dist := math.Hypot(tick.X, tick.Y)
		assert.InDelta(t, layout.TickRadius, dist, 1.0, "tick %d off its circle", tick.Index)
	}

	top := layout.Ticks[59]
	assert.Equal(t, 60, top.Index)
	assert.Zero(t, top.X)
	assert.Equal(t, -134.0, top.Y)
	assert.Zero(t, top.RotationDeg)

	right := layout.Ticks[14]
	assert.Equal(t, 15, right.Index)
	assert.Equal(t, 134.0, right.X)
	assert.Zero(t, right.Y)
	assert.Equal(t, 90.0, right.RotationDeg)
}

func TestLayoutDial_Idempotent(t *testing.T) {
	first := LayoutDial(433)
	second := LayoutDial(433)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("layout changed between calls (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first, DialGeometry{}.LayoutDial(433)); diff != "" {
		t.Fatalf("DialGeometry disagrees with LayoutDial:\n%s", diff)
	}
}

func TestLayoutDial_ScalesWithDiameter(t *testing.T) {
	small := LayoutDial(300)
	large := LayoutDial(600)

	for i := range small.Numerals {
		assert.Equal(t, small.Numerals[i].Label, large.Numerals[i].Label)
		assert.InDelta(t, 2*small.Numerals[i].X, large.Numerals[i].X, 1.0)
		assert.InDelta(t, 2*small.Numerals[i].Y, large.Numerals[i].Y, 1.0)
	}
	for i := range small.Ticks {
		assert.Equal(t, small.Ticks[i].IsHourTick, large.Ticks[i].IsHourTick)
		assert.Equal(t, small.Ticks[i].RotationDeg, large.Ticks[i].RotationDeg)
		assert.InDelta(t, 2*small.Ticks[i].X, large.Ticks[i].X, 1.0)
		assert.InDelta(t, 2*small.Ticks[i].Y, large.Ticks[i].Y, 1.0)
	}
}

func TestLayoutDial_Degenerate(t *testing.T) {
	for _, d := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		layout := LayoutDial(d)
		assert.True(t, layout.Degenerate())
		assert.Zero(t, layout.NumberRadius)
		require.Len(t, layout.Numerals, NumeralCount)
		require.Len(t, layout.Ticks, TickCount)
		for _, n := range layout.Numerals {
			assert.Zero(t, n.X)
			assert.Zero(t, n.Y)
			assert.False(t, math.Signbit(n.X), "negative zero leaked into numeral %s", n.Label)
		}
		for _, tick := range layout.Ticks {
			assert.Zero(t, tick.X)
			assert.Zero(t, tick.Y)
		}
	}
}
