// Package noise evaluates seeded multi-octave 3-D simplex noise with domain
// warping, a power remap and a hard output envelope.
package noise

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"

	"planetforge.ai/internal/mathx"
)

const maxOctaves = 12

// Config describes one noise field. Zero values pick defaults in Normalize.
type Config struct {
	Octaves    int        `json:"octaves,omitempty" yaml:"octaves,omitempty"`
	Lacunarity float64    `json:"lacunarity,omitempty" yaml:"lacunarity,omitempty"`
	Gain       GainConfig `json:"gain,omitempty" yaml:"gain,omitempty"`
	Warp       float64    `json:"warp,omitempty" yaml:"warp,omitempty"`
	Scale      float64    `json:"scale,omitempty" yaml:"scale,omitempty"`
	Power      float64    `json:"power,omitempty" yaml:"power,omitempty"`
	Min        float64    `json:"min" yaml:"min"`
	Max        float64    `json:"max" yaml:"max"`
}

// GainConfig picks the per-octave amplitude falloff between Min and Max,
// driven by a low-frequency noise sampled at Scale.
type GainConfig struct {
	Min   float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max   float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Scale float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

func (c *Config) Normalize() {
	if c.Octaves == 0 {
		c.Octaves = 4
	}
	if c.Lacunarity == 0 {
		c.Lacunarity = 2
	}
	if c.Gain.Min == 0 && c.Gain.Max == 0 {
		c.Gain.Min, c.Gain.Max = 0.5, 0.5
	}
	if c.Gain.Scale == 0 {
		c.Gain.Scale = 1
	}
	if c.Scale == 0 {
		c.Scale = 1
	}
	if c.Power == 0 {
		c.Power = 1
	}
}

func (c Config) Validate() error {
	if c.Octaves < 1 || c.Octaves > maxOctaves {
		return fmt.Errorf("octaves must be in [1,%d]", maxOctaves)
	}
	if c.Lacunarity <= 0 {
		return errors.New("lacunarity must be > 0")
	}
	if c.Gain.Min < 0 || c.Gain.Max < c.Gain.Min {
		return errors.New("gain range must satisfy 0 <= min <= max")
	}
	if c.Gain.Scale <= 0 {
		return errors.New("gain.scale must be > 0")
	}
	if c.Warp < 0 {
		return errors.New("warp must be >= 0")
	}
	if c.Scale <= 0 {
		return errors.New("scale must be > 0")
	}
	if c.Power <= 0 {
		return errors.New("power must be > 0")
	}
	if c.Max < c.Min {
		return errors.New("max must be >= min")
	}
	return nil
}

// Field is a ready-to-sample noise function. It is safe for concurrent use.
type Field struct {
	cfg   Config
	base  opensimplex.Noise
	gain  opensimplex.Noise
	warpX opensimplex.Noise
	warpY opensimplex.Noise
	warpZ opensimplex.Noise
}

// New normalizes and validates cfg and seeds the field's generators.
func New(cfg Config, seed int64) (*Field, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Field{
		cfg:   cfg,
		base:  opensimplex.New(mathx.SubSeed(seed, "base")),
		gain:  opensimplex.New(mathx.SubSeed(seed, "gain")),
		warpX: opensimplex.New(mathx.SubSeed(seed, "warp-x")),
		warpY: opensimplex.New(mathx.SubSeed(seed, "warp-y")),
		warpZ: opensimplex.New(mathx.SubSeed(seed, "warp-z")),
	}, nil
}

func (f *Field) Config() Config { return f.cfg }

// Raw returns the fBm sum at p normalized to [-1,1], before warp and envelope.
func (f *Field) Raw(p mgl64.Vec3) float64 {
	g := f.gainAt(p)
	freq := f.cfg.Scale
	amp := 1.0
	sum, norm := 0.0, 0.0
	for o := 0; o < f.cfg.Octaves; o++ {
		sum += amp * f.base.Eval3(p[0]*freq, p[1]*freq, p[2]*freq)
		norm += amp
		amp *= g
		freq *= f.cfg.Lacunarity
	}
	if norm == 0 {
		return 0
	}
	return mathx.Clamp(sum/norm, -1, 1)
}

func (f *Field) gainAt(p mgl64.Vec3) float64 {
	if f.cfg.Gain.Max == f.cfg.Gain.Min {
		return f.cfg.Gain.Min
	}
	s := f.cfg.Gain.Scale
	t := 0.5 * (1 + f.gain.Eval3(p[0]*s, p[1]*s, p[2]*s))
	return mathx.Lerp(f.cfg.Gain.Min, f.cfg.Gain.Max, mathx.Clamp(t, 0, 1))
}

// Warp offsets p by a three-axis noise sample scaled by the warp strength.
func (f *Field) Warp(p mgl64.Vec3) mgl64.Vec3 {
	if f.cfg.Warp == 0 {
		return p
	}
	s := f.cfg.Scale
	x, y, z := p[0]*s, p[1]*s, p[2]*s
	return p.Add(mgl64.Vec3{
		f.warpX.Eval3(x, y, z),
		f.warpY.Eval3(x, y, z),
		f.warpZ.Eval3(x, y, z),
	}.Mul(f.cfg.Warp))
}

// Eval samples the field at p. The result always lies in [Min, Max].
func (f *Field) Eval(p mgl64.Vec3) float64 {
	n := f.Raw(f.Warp(p))
	t := 0.5 * (n + 1)
	if f.cfg.Power != 1 {
		t = math.Pow(t, f.cfg.Power)
	}
	v := f.cfg.Min + (f.cfg.Max-f.cfg.Min)*t
	return mathx.Clamp(v, f.cfg.Min, f.cfg.Max)
}

// Normalized maps a value produced by Eval back to [0,1].
func (f *Field) Normalized(v float64) float64 {
	span := f.cfg.Max - f.cfg.Min
	if span == 0 {
		return 0.5
	}
	return mathx.Clamp((v-f.cfg.Min)/span, 0, 1)
}
