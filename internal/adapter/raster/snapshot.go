// Package raster draws a still image of the clock face.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/couchcryptid/clockface/internal/domain"
)

// MaxDiameter bounds snapshot size.
const MaxDiameter = 2048

// ErrDegenerate is returned for layouts without a usable diameter.
var ErrDegenerate = errors.New("snapshot needs a positive diameter")

// Palette is the set of colors used for one theme.
type Palette struct {
	Background color.RGBA
	Face       color.RGBA
	Ink        color.RGBA
	Second     color.RGBA
}

var (
	DarkPalette = Palette{
		Background: color.RGBA{0x12, 0x12, 0x12, 0xff},
		Face:       color.RGBA{0x1f, 0x1f, 0x1f, 0xff},
		Ink:        color.RGBA{0xe0, 0xe0, 0xe0, 0xff},
		Second:     color.RGBA{0xe5, 0x39, 0x35, 0xff},
	}
	LightPalette = Palette{
		Background: color.RGBA{0xfa, 0xfa, 0xfa, 0xff},
		Face:       color.RGBA{0xff, 0xff, 0xff, 0xff},
		Ink:        color.RGBA{0x21, 0x21, 0x21, 0xff},
		Second:     color.RGBA{0xd3, 0x2f, 0x2f, 0xff},
	}
)

// Relative hand proportions: length as a fraction of the radius, width as
// a fraction of the diameter.
var hands = []struct {
	hand   domain.Hand
	length float64
	width  float64
}{
	{domain.HourHand, 0.50, 0.020},
	{domain.MinuteHand, 0.72, 0.013},
	{domain.SecondHand, 0.85, 0.006},
}

// Draw renders the dial and the hands of reading into an RGBA image.
func Draw(layout domain.DialLayout, reading domain.ClockReading, dark bool) (*image.RGBA, error) {
	if layout.Degenerate() {
		return nil, ErrDegenerate
	}
	size := int(math.Round(layout.Diameter))
	if size > MaxDiameter {
		return nil, fmt.Errorf("snapshot diameter %d exceeds %d", size, MaxDiameter)
	}
	p := LightPalette
	if dark {
		p = DarkPalette
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(p.Background), image.Point{}, draw.Src)

	c := canvas{img: img, z: vector.NewRasterizer(size, size), cx: float64(size) / 2, cy: float64(size) / 2}
	d := layout.Diameter

	c.disc(c.cx, c.cy, d/2, p.Face)

	for _, t := range layout.Ticks {
		length, width := 0.03*d, 0.005*d
		if t.IsHourTick {
			length, width = 0.06*d, 0.012*d
		}
		dx, dy := direction(t.RotationDeg)
		x, y := c.cx+t.X, c.cy+t.Y
		c.segment(x-dx*length/2, y-dy*length/2, x+dx*length/2, y+dy*length/2, width, p.Ink)
	}

	c.numerals(layout, p.Ink)
	c.label(reading.DigitalTime, c.cy+d*0.2, p.Ink)

	radius := d / 2
	for _, h := range hands {
		col := p.Ink
		if h.hand == domain.SecondHand {
			col = p.Second
		}
		dx, dy := direction(reading.Angle(h.hand))
		c.segment(c.cx, c.cy, c.cx+dx*radius*h.length, c.cy+dy*radius*h.length, d*h.width, col)
	}
	c.disc(c.cx, c.cy, 0.03*d, p.Second)

	return img, nil
}

// EncodePNG draws the snapshot and writes it as PNG.
func EncodePNG(w io.Writer, layout domain.DialLayout, reading domain.ClockReading, dark bool) error {
	img, err := Draw(layout, reading, dark)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// direction is the unit vector of a clock angle (0° up, clockwise, y down).
func direction(clockDeg float64) (float64, float64) {
	rad := clockDeg * math.Pi / 180
	return math.Sin(rad), -math.Cos(rad)
}

type canvas struct {
	img    *image.RGBA
	z      *vector.Rasterizer
	cx, cy float64
}

func (c *canvas) fill(col color.Color) {
	b := c.img.Bounds()
	c.z.Draw(c.img, b, image.NewUniform(col), image.Point{})
	c.z.Reset(b.Dx(), b.Dy())
}

func (c *canvas) disc(x, y, r float64, col color.Color) {
	const steps = 96
	c.z.MoveTo(float32(x+r), float32(y))
	for i := 1; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / steps
		c.z.LineTo(float32(x+r*math.Cos(a)), float32(y+r*math.Sin(a)))
	}
	c.z.ClosePath()
	c.fill(col)
}

// segment fills a rectangle of the given width centred on the line p0-p1.
func (c *canvas) segment(x0, y0, x1, y1, width float64, col color.Color) {
	dx, dy := x1-x0, y1-y0
	n := math.Hypot(dx, dy)
	if n == 0 {
		return
	}
	nx, ny := -dy/n*width/2, dx/n*width/2
	c.z.MoveTo(float32(x0+nx), float32(y0+ny))
	c.z.LineTo(float32(x1+nx), float32(y1+ny))
	c.z.LineTo(float32(x1-nx), float32(y1-ny))
	c.z.LineTo(float32(x0-nx), float32(y0-ny))
	c.z.ClosePath()
	c.fill(col)
}

// numerals places each label with its top-left corner at the layout
// coordinate, as the page does.
func (c *canvas) numerals(layout domain.DialLayout, col color.Color) {
	face := basicfont.Face7x13
	dr := font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: face}
	ascent := face.Metrics().Ascent
	for _, n := range layout.Numerals {
		dr.Dot = fixed.Point26_6{
			X: fixed.I(int(math.Round(c.cx + n.X))),
			Y: fixed.I(int(math.Round(c.cy+n.Y))) + ascent,
		}
		dr.DrawString(n.Label)
	}
}

// label draws text horizontally centred at baseline y.
func (c *canvas) label(text string, y float64, col color.Color) {
	if text == "" {
		return
	}
	dr := font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: basicfont.Face7x13}
	width := dr.MeasureString(text)
	dr.Dot = fixed.Point26_6{
		X: fixed.I(int(math.Round(c.cx))) - width/2,
		Y: fixed.I(int(math.Round(y))),
	}
	dr.DrawString(text)
}
