package gradient

import (
	"math"
	"sort"
)

// Easing reshapes an interpolation parameter in [0,1].
type Easing func(t float64) float64

var easings = map[string]Easing{
	"linear":     func(t float64) float64 { return t },
	"quadIn":     func(t float64) float64 { return t * t },
	"quadOut":    func(t float64) float64 { return t * (2 - t) },
	"quadInOut":  quadInOut,
	"cubicIn":    func(t float64) float64 { return t * t * t },
	"cubicOut":   func(t float64) float64 { u := t - 1; return u*u*u + 1 },
	"smoothstep": func(t float64) float64 { return t * t * (3 - 2*t) },
	"sineInOut":  func(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 },
	"step": func(t float64) float64 {
		if t < 1 {
			return 0
		}
		return 1
	},
}

func quadInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// EasingByName resolves a named easing. The empty name resolves to nil (no easing).
func EasingByName(name string) (Easing, bool) {
	if name == "" {
		return nil, true
	}
	e, ok := easings[name]
	return e, ok
}

func EasingNames() []string {
	out := make([]string, 0, len(easings))
	for k := range easings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
