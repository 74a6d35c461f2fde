package gradient

import (
	"errors"
	"fmt"
)

const maxNesting = 4

// Config is the declarative form of a gradient as it appears in planet
// presets and createGeometry requests.
type Config struct {
	Stops   []StopConfig   `json:"stops,omitempty" yaml:"stops,omitempty"`
	Between *BetweenConfig `json:"between,omitempty" yaml:"between,omitempty"`
	Easing  string         `json:"easing,omitempty" yaml:"easing,omitempty"`
	HSL     bool           `json:"hsl,omitempty" yaml:"hsl,omitempty"`
}

// StopConfig sets exactly one of Color and Gradient.
type StopConfig struct {
	Position float64 `json:"position" yaml:"position"`
	Color    string  `json:"color,omitempty" yaml:"color,omitempty"`
	Gradient *Config `json:"gradient,omitempty" yaml:"gradient,omitempty"`
	Easing   string  `json:"easing,omitempty" yaml:"easing,omitempty"`
}

type BetweenConfig struct {
	Min    float64  `json:"min" yaml:"min"`
	Max    float64  `json:"max" yaml:"max"`
	Colors []string `json:"colors" yaml:"colors"`
}

func (c Config) Validate() error {
	return c.validate(0)
}

func (c Config) validate(depth int) error {
	if depth > maxNesting {
		return fmt.Errorf("gradient nesting deeper than %d", maxNesting)
	}
	if _, ok := EasingByName(c.Easing); !ok {
		return fmt.Errorf("unknown easing %q", c.Easing)
	}
	for i, s := range c.Stops {
		hasColor := s.Color != ""
		hasGrad := s.Gradient != nil
		if hasColor == hasGrad {
			return fmt.Errorf("stops[%d]: exactly one of color/gradient required", i)
		}
		if _, ok := EasingByName(s.Easing); !ok {
			return fmt.Errorf("stops[%d]: unknown easing %q", i, s.Easing)
		}
		if hasColor {
			if _, err := ParseHex(s.Color); err != nil {
				return fmt.Errorf("stops[%d]: %w", i, err)
			}
			continue
		}
		if err := s.Gradient.validate(depth + 1); err != nil {
			return fmt.Errorf("stops[%d].gradient: %w", i, err)
		}
	}
	if b := c.Between; b != nil {
		if len(b.Colors) == 0 {
			return errors.New("between.colors must not be empty")
		}
		if b.Max < b.Min {
			return errors.New("between.max must be >= between.min")
		}
		for i, col := range b.Colors {
			if _, err := ParseHex(col); err != nil {
				return fmt.Errorf("between.colors[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// Build validates the config and constructs the runtime gradient.
func (c Config) Build() (*Gradient, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.build(), nil
}

func (c Config) build() *Gradient {
	var opts []Option
	if e, _ := EasingByName(c.Easing); e != nil {
		opts = append(opts, WithEasing(e))
	}
	if c.HSL {
		opts = append(opts, WithHSL())
	}
	g := New(opts...)
	for _, s := range c.Stops {
		e, _ := EasingByName(s.Easing)
		if s.Gradient != nil {
			g.Add(s.Position, GradientValue(s.Gradient.build()), e)
			continue
		}
		col, _ := ParseHex(s.Color)
		g.Add(s.Position, ColorValue(col), e)
	}
	if b := c.Between; b != nil {
		cols := make([]Color, 0, len(b.Colors))
		for _, h := range b.Colors {
			col, _ := ParseHex(h)
			cols = append(cols, col)
		}
		g.AddBetween(b.Min, b.Max, cols...)
	}
	return g
}
