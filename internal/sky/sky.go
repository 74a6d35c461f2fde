// Package sky derives sun light from the time of day and holds the sky and
// atmosphere gradients render layers sample by hour and altitude.
package sky

import (
	"math"

	"planetforge.ai/internal/gradient"
)

// Light is the illumination applied when recoloring a planet.
type Light struct {
	Color     gradient.Color `json:"color"`
	Intensity float64        `json:"intensity"`
	Ambient   float64        `json:"ambient"`
}

// Tint is the multiplier a surface color receives under this light.
func (l Light) Tint() gradient.Color {
	return l.Color.Scale(l.Ambient + (1-l.Ambient)*l.Intensity)
}

// Noon is full white light.
var Noon = Light{Color: gradient.RGB(1, 1, 1), Intensity: 1, Ambient: 1}

var sunColors = gradient.New().
	AddColor(0, gradient.RGB(0.35, 0.38, 0.6)).
	AddColor(0.15, gradient.RGB(1, 0.55, 0.35)).
	AddColor(0.4, gradient.RGB(1, 0.92, 0.8)).
	AddColor(1, gradient.RGB(1, 1, 1))

// Elevation is the sun's height factor in [0,1] for an hour in [0,24).
// Sunrise is at 6, noon at 12, sunset at 18.
func Elevation(hour float64) float64 {
	progress := math.Mod(hour/24, 1)
	if progress < 0 {
		progress++
	}
	orbital := math.Mod(progress+0.75, 1) * 2 * math.Pi
	return math.Max(0, math.Sin(orbital))
}

// LightAt computes the light for an hour of the day.
func LightAt(hour float64) Light {
	e := Elevation(hour)
	return Light{
		Color:     sunColors.Get(e),
		Intensity: 0.15 + 0.85*e,
		Ambient:   0.2 + 0.6*e,
	}
}

func Phase(hour float64) string {
	h := math.Mod(hour, 24)
	if h < 0 {
		h += 24
	}
	switch {
	case h < 5:
		return "night"
	case h < 7:
		return "dawn"
	case h < 17:
		return "day"
	case h < 19:
		return "dusk"
	default:
		return "night"
	}
}

// Palette maps (hour, altitude) to sky and atmosphere colors. Each hour
// stop nests an altitude gradient from horizon (0) to zenith (1).
type Palette struct {
	Sky        *gradient.Gradient
	Atmosphere *gradient.Gradient
}

func vertical(horizon, zenith gradient.Color) gradient.StopValue {
	return gradient.GradientValue(gradient.New().AddColor(0, horizon).AddColor(1, zenith))
}

func DefaultPalette() Palette {
	night := vertical(gradient.RGB(0.05, 0.06, 0.15), gradient.RGB(0.01, 0.01, 0.05))
	dawn := vertical(gradient.RGB(0.98, 0.6, 0.4), gradient.RGB(0.3, 0.4, 0.7))
	day := vertical(gradient.RGB(0.7, 0.85, 1), gradient.RGB(0.25, 0.5, 0.95))
	dusk := vertical(gradient.RGB(0.95, 0.45, 0.3), gradient.RGB(0.2, 0.2, 0.5))

	skyG := gradient.New().
		Add(0, night, nil).
		Add(5, night, nil).
		Add(6.5, dawn, nil).
		Add(9, day, nil).
		Add(16, day, nil).
		Add(18, dusk, nil).
		Add(20, night, nil).
		Add(24, night, nil)

	atmo := gradient.New(gradient.WithHSL()).
		Add(0, vertical(gradient.RGB(0.1, 0.1, 0.3), gradient.RGB(0, 0, 0)), nil).
		Add(12, vertical(gradient.RGB(0.6, 0.8, 1), gradient.RGB(0.3, 0.5, 1)), nil).
		Add(24, vertical(gradient.RGB(0.1, 0.1, 0.3), gradient.RGB(0, 0, 0)), nil)

	return Palette{Sky: skyG, Atmosphere: atmo}
}

func (p Palette) SkyColor(hour, altitude float64) gradient.Color {
	return p.Sky.Get(math.Mod(hour, 24), altitude)
}

func (p Palette) AtmosphereColor(hour, altitude float64) gradient.Color {
	return p.Atmosphere.Get(math.Mod(hour, 24), altitude)
}
