// Package planet assembles the faceted land and ocean meshes, their colors
// and the vegetation map from a planet config.
package planet

import (
	"errors"
	"fmt"
	"strings"

	"planetforge.ai/internal/biome"
	"planetforge.ai/internal/mesh/icosphere"
)

const (
	ShapeSphere = "sphere"
	ShapePlane  = "plane"
)

// ErrUnsupportedShape is returned for shapes the assembler knows about but
// does not build.
var ErrUnsupportedShape = errors.New("unsupported shape")

// ErrInvalidConfig wraps every validation failure reported by Generate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is everything needed to generate one planet. The same Config and
// Seed always produce bit-identical geometry.
type Config struct {
	Shape   string       `json:"shape,omitempty" yaml:"shape,omitempty"`
	Detail  int          `json:"detail" yaml:"detail"`
	Scatter float64      `json:"scatter" yaml:"scatter"`
	Radius  float64      `json:"radius,omitempty" yaml:"radius,omitempty"`
	Seed    int64        `json:"seed" yaml:"seed"`
	Biome   biome.Config `json:"biome" yaml:"biome"`
}

// Normalize fills defaults and clamps Detail into [0, maxDetail]. A
// maxDetail <= 0 means icosphere.MaxDepth.
func (c *Config) Normalize(maxDetail int) {
	c.Shape = strings.ToLower(strings.TrimSpace(c.Shape))
	if c.Shape == "" {
		c.Shape = ShapeSphere
	}
	if c.Radius == 0 {
		c.Radius = 1
	}
	if maxDetail <= 0 || maxDetail > icosphere.MaxDepth {
		maxDetail = icosphere.MaxDepth
	}
	if c.Detail > maxDetail {
		c.Detail = maxDetail
	}
	if c.Detail < 0 {
		c.Detail = 0
	}
	c.Biome.Normalize()
}

func (c Config) Validate() error {
	switch c.Shape {
	case ShapeSphere:
	case ShapePlane:
		return fmt.Errorf("shape %q: %w", c.Shape, ErrUnsupportedShape)
	default:
		return fmt.Errorf("unknown shape %q", c.Shape)
	}
	if c.Scatter < 0 {
		return errors.New("scatter must be >= 0")
	}
	if c.Radius <= 0 {
		return errors.New("radius must be > 0")
	}
	if err := c.Biome.Validate(); err != nil {
		return fmt.Errorf("biome: %w", err)
	}
	return nil
}
