package chart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Color is a CSS rgba() colour.
type Color struct {
	R, G, B uint8
	A       float64
}

// ParseColor accepts "rgba(r, g, b, a)", "rgb(r, g, b)" and "#rrggbb".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		d := drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
		return Color{R: d.R, G: d.G, B: d.B, A: 1}, nil
	}

	open, close := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || close < open {
		return Color{}, fmt.Errorf("color %q: expected rgba(...)", s)
	}
	fn := strings.ToLower(strings.TrimSpace(s[:open]))
	parts := strings.Split(s[open+1:close], ",")

	switch {
	case fn == "rgba" && len(parts) == 4:
	case fn == "rgb" && len(parts) == 3:
	default:
		return Color{}, fmt.Errorf("color %q: unsupported form", s)
	}

	var c Color
	for i, dst := range []*uint8{&c.R, &c.G, &c.B} {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return Color{}, fmt.Errorf("color %q: bad channel %q", s, parts[i])
		}
		*dst = uint8(v)
	}
	c.A = 1
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return Color{}, fmt.Errorf("color %q: bad alpha %q", s, parts[3])
		}
		c.A = a
	}
	return c, nil
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Drawing converts to a go-chart colour.
func (c Color) Drawing() drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(c.A*255 + 0.5)}
}

// fillOf derives the translucent fill used for legend swatches and hover points.
// Unparseable input is returned unchanged so the browser can still try it.
func fillOf(stroke string) string {
	c, err := ParseColor(stroke)
	if err != nil {
		return stroke
	}
	return c.WithAlpha(FillAlpha).String()
}
