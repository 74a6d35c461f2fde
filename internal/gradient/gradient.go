package gradient

import "sort"

// StopValue is either a concrete color or a nested gradient, decided when
// the stop is constructed.
type StopValue struct {
	color    Color
	gradient *Gradient
}

func ColorValue(c Color) StopValue { return StopValue{color: c} }

// GradientValue wraps a nested gradient. A nil gradient degrades to the fallback color.
func GradientValue(g *Gradient) StopValue {
	if g == nil {
		return StopValue{color: Fallback}
	}
	return StopValue{gradient: g}
}

func (v StopValue) IsGradient() bool { return v.gradient != nil }

// resolve returns the concrete color of the value, looking up nested
// gradients with the leading extra coordinate (0 when absent).
func (v StopValue) resolve(extra []float64) Color {
	if v.gradient == nil {
		return v.color
	}
	x := 0.0
	var rest []float64
	if len(extra) > 0 {
		x = extra[0]
		rest = extra[1:]
	}
	return v.gradient.Get(x, rest...)
}

type Stop struct {
	Position float64
	Value    StopValue
	// Easing shapes the segment that starts at this stop. Optional.
	Easing Easing
}

// Gradient is a piecewise color table over a scalar domain. Stops are kept
// sorted by position. Nested gradient stops turn it into a 2-D/3-D field
// addressed with Get's extra coordinates.
type Gradient struct {
	stops  []Stop
	easing Easing
	hsl    bool
}

type Option func(*Gradient)

// WithEasing sets the default easing applied after a stop's own easing.
func WithEasing(e Easing) Option { return func(g *Gradient) { g.easing = e } }

// WithHSL interpolates in HSL space instead of RGB.
func WithHSL() Option { return func(g *Gradient) { g.hsl = true } }

func New(opts ...Option) *Gradient {
	g := &Gradient{}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Add inserts a stop keeping stops sorted. Stops at an equal position keep
// insertion order.
func (g *Gradient) Add(pos float64, v StopValue, easing Easing) *Gradient {
	i := sort.Search(len(g.stops), func(i int) bool { return g.stops[i].Position > pos })
	g.stops = append(g.stops, Stop{})
	copy(g.stops[i+1:], g.stops[i:])
	g.stops[i] = Stop{Position: pos, Value: v, Easing: easing}
	return g
}

func (g *Gradient) AddColor(pos float64, c Color) *Gradient {
	return g.Add(pos, ColorValue(c), nil)
}

// AddBetween spreads colors evenly across [min,max]. A single color lands on min.
func (g *Gradient) AddBetween(min, max float64, colors ...Color) *Gradient {
	n := len(colors)
	for i, c := range colors {
		pos := min
		if n > 1 {
			pos = min + (max-min)*float64(i)/float64(n-1)
		}
		g.AddColor(pos, c)
	}
	return g
}

func (g *Gradient) Len() int { return len(g.stops) }

func (g *Gradient) Stops() []Stop {
	out := make([]Stop, len(g.stops))
	copy(out, g.stops)
	return out
}

// Get samples the gradient at x. Values outside the stop range clamp to the
// end stops; an empty gradient yields Fallback.
func (g *Gradient) Get(x float64, extra ...float64) Color {
	if g == nil || len(g.stops) == 0 {
		return Fallback
	}
	first := g.stops[0]
	if len(g.stops) == 1 || x <= first.Position {
		return first.Value.resolve(extra)
	}
	last := len(g.stops) - 1
	if x >= g.stops[last].Position {
		return g.stops[last].Value.resolve(extra)
	}
	for i := 0; i < last; i++ {
		s1, s2 := g.stops[i].Position, g.stops[i+1].Position
		if x < s1 || x > s2 {
			continue
		}
		t := 0.0
		if s2 > s1 {
			t = (x - s1) / (s2 - s1)
		}
		return g.mix(i, i+1, t, extra)
	}
	return g.stops[last].Value.resolve(extra)
}

func (g *Gradient) mix(i, j int, t float64, extra []float64) Color {
	a := g.stops[i].Value.resolve(extra)
	b := g.stops[j].Value.resolve(extra)
	if e := g.stops[i].Easing; e != nil {
		t = e(t)
	}
	if g.easing != nil {
		t = g.easing(t)
	}
	if g.hsl {
		return mixHSL(a, b, t)
	}
	return a.Mix(b, t)
}
