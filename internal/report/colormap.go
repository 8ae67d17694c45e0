package report

import (
	"fmt"
	"image/color"
	"math"
)

// ColorMapper maps data values to bar and marker colors.
type ColorMapper interface {
	// Normalize is called with the smallest and largest plotted value
	// before any Color call.
	Normalize(min, max float64)
	Color(v float64) color.Color
}

// RedGreenMapper colors negative values red and everything else green.
type RedGreenMapper struct {
	Negative color.Color
	Positive color.Color
}

// NewRedGreenMapper returns the mapper used for report charts by default.
func NewRedGreenMapper() *RedGreenMapper {
	return &RedGreenMapper{
		Negative: MustParseHex("#F44336"),
		Positive: MustParseHex("#009688"),
	}
}

// Normalize is a no-op; only the sign matters.
func (m *RedGreenMapper) Normalize(min, max float64) {}

// Color returns Negative for v < 0 and Positive otherwise.
func (m *RedGreenMapper) Color(v float64) color.Color {
	if v < 0 {
		return m.Negative
	}
	return m.Positive
}

// GradientMapper interpolates linearly between From and To over the
// normalized value range.
type GradientMapper struct {
	From color.Color
	To   color.Color

	min, max float64
}

// NewGradientMapper creates a gradient between two colors.
func NewGradientMapper(from, to color.Color) *GradientMapper {
	return &GradientMapper{From: from, To: to, max: 1}
}

// Normalize sets the value range that maps onto [From, To].
func (m *GradientMapper) Normalize(min, max float64) {
	m.min, m.max = min, max
}

// Color returns the interpolated color for v, clamped to the range.
func (m *GradientMapper) Color(v float64) color.Color {
	t := 0.0
	if span := m.max - m.min; span > 0 && !math.IsNaN(v) {
		t = (v - m.min) / span
	}
	t = math.Max(0, math.Min(1, t))

	r0, g0, b0, a0 := m.From.RGBA()
	r1, g1, b1, a1 := m.To.RGBA()
	lerp := func(a, b uint32) uint8 {
		return uint8((float64(a) + t*(float64(b)-float64(a))) / 257)
	}
	return color.RGBA{R: lerp(r0, r1), G: lerp(g0, g1), B: lerp(b0, b1), A: lerp(a0, a1)}
}

// ParseHex parses a "#RRGGBB" color.
func ParseHex(s string) (color.NRGBA, error) {
	var c color.NRGBA
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid hex color %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	c.A = 0xff
	return c, nil
}

// MustParseHex is ParseHex for constants. It panics on malformed input.
func MustParseHex(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}
