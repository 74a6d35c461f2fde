package gradient

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is a linear RGB triple. Channels are nominally in [0,1] but may
// exceed 1 between a brightness boost and the final Clamp.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Fallback is returned by lookups on an empty gradient.
var Fallback = Color{}

func RGB(r, g, b float64) Color { return Color{R: r, G: g, B: b} }

// ParseHex accepts "#rrggbb", "rrggbb" and "#rgb".
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return Color{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

func (c Color) Hex() string {
	cc := c.Clamp()
	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(cc.R*255)), int(math.Round(cc.G*255)), int(math.Round(cc.B*255)))
}

func (c Color) Scale(f float64) Color {
	return Color{R: c.R * f, G: c.G * f, B: c.B * f}
}

func (c Color) Mul(o Color) Color {
	return Color{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B}
}

// Mix returns c blended toward o by t (0 = c, 1 = o).
func (c Color) Mix(o Color, t float64) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

// Clamp limits every channel to [0,1].
func (c Color) Clamp() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// HSL returns hue in [0,1), saturation and lightness in [0,1].
func (c Color) HSL() (h, s, l float64) {
	r, g, b := clamp01(c.R), clamp01(c.G), clamp01(c.B)
	maxv := math.Max(r, math.Max(g, b))
	minv := math.Min(r, math.Min(g, b))
	l = (maxv + minv) / 2
	if maxv == minv {
		return 0, 0, l
	}
	d := maxv - minv
	if l > 0.5 {
		s = d / (2 - maxv - minv)
	} else {
		s = d / (maxv + minv)
	}
	switch maxv {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6, s, l
}

func FromHSL(h, s, l float64) Color {
	if s == 0 {
		return Color{R: l, G: l, B: l}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return Color{
		R: hueToRGB(p, q, h+1.0/3),
		G: hueToRGB(p, q, h),
		B: hueToRGB(p, q, h-1.0/3),
	}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

// mixHSL interpolates through HSL space, taking the short way around the hue circle.
func mixHSL(a, b Color, t float64) Color {
	h1, s1, l1 := a.HSL()
	h2, s2, l2 := b.HSL()
	dh := h2 - h1
	if dh > 0.5 {
		dh--
	} else if dh < -0.5 {
		dh++
	}
	h := h1 + dh*t
	h -= math.Floor(h)
	return FromHSL(h, s1+(s2-s1)*t, l1+(l2-l1)*t)
}
