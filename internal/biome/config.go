package biome

import (
	"errors"
	"fmt"
	"strings"

	"planetforge.ai/internal/gradient"
	"planetforge.ai/internal/noise"
)

// DefaultBrightness is the color boost applied before the final clamp.
const DefaultBrightness = 1.2

// Config bundles the noise, color and vegetation rules of one planet theme.
type Config struct {
	Terrain    *noise.Config    `json:"terrain,omitempty" yaml:"terrain,omitempty"`
	Sea        *noise.Config    `json:"sea,omitempty" yaml:"sea,omitempty"`
	Colors     gradient.Config  `json:"colors" yaml:"colors"`
	SeaColors  gradient.Config  `json:"seaColors" yaml:"sea_colors"`
	Tint       string           `json:"tint,omitempty" yaml:"tint,omitempty"`
	Brightness float64          `json:"brightness,omitempty" yaml:"brightness,omitempty"`
	Vegetation []VegetationItem `json:"vegetation,omitempty" yaml:"vegetation,omitempty"`
}

// VegetationItem is one species. Height bounds are on the normalized
// [0,1] terrain height, steepness bounds in radians. Nil bounds are open.
type VegetationItem struct {
	Name             string        `json:"name" yaml:"name"`
	Density          float64       `json:"density" yaml:"density"`
	MinimumHeight    *float64      `json:"minimumHeight,omitempty" yaml:"minimum_height,omitempty"`
	MaximumHeight    *float64      `json:"maximumHeight,omitempty" yaml:"maximum_height,omitempty"`
	MinimumSteepness *float64      `json:"minimumSteepness,omitempty" yaml:"minimum_steepness,omitempty"`
	MaximumSteepness *float64      `json:"maximumSteepness,omitempty" yaml:"maximum_steepness,omitempty"`
	Ground           *GroundEffect `json:"ground,omitempty" yaml:"ground,omitempty"`
}

// GroundEffect shapes the terrain around a placed item: a raised (or
// lowered, for negative Raise) patch tinted toward Color.
type GroundEffect struct {
	Radius float64 `json:"radius" yaml:"radius"`
	Raise  float64 `json:"raise" yaml:"raise"`
	Color  string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// Allows reports whether a face with the given normalized height and
// steepness falls inside every configured band.
func (v VegetationItem) Allows(normalizedHeight, steepness float64) bool {
	if v.MinimumHeight != nil && normalizedHeight < *v.MinimumHeight {
		return false
	}
	if v.MaximumHeight != nil && normalizedHeight > *v.MaximumHeight {
		return false
	}
	if v.MinimumSteepness != nil && steepness < *v.MinimumSteepness {
		return false
	}
	if v.MaximumSteepness != nil && steepness > *v.MaximumSteepness {
		return false
	}
	return true
}

func (c *Config) Normalize() {
	if c.Terrain != nil {
		c.Terrain.Normalize()
	}
	if c.Sea != nil {
		c.Sea.Normalize()
	}
	if c.Brightness == 0 {
		c.Brightness = DefaultBrightness
	}
	for i := range c.Vegetation {
		c.Vegetation[i].Name = strings.TrimSpace(c.Vegetation[i].Name)
	}
}

func (c Config) Validate() error {
	if c.Terrain != nil {
		if err := c.Terrain.Validate(); err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
	}
	if c.Sea != nil {
		if err := c.Sea.Validate(); err != nil {
			return fmt.Errorf("sea: %w", err)
		}
	}
	if err := c.Colors.Validate(); err != nil {
		return fmt.Errorf("colors: %w", err)
	}
	if err := c.SeaColors.Validate(); err != nil {
		return fmt.Errorf("seaColors: %w", err)
	}
	if c.Tint != "" {
		if _, err := gradient.ParseHex(c.Tint); err != nil {
			return fmt.Errorf("tint: %w", err)
		}
	}
	if c.Brightness < 0 {
		return errors.New("brightness must be >= 0")
	}
	seen := map[string]bool{}
	for i, v := range c.Vegetation {
		if v.Name == "" {
			return fmt.Errorf("vegetation[%d]: name must not be empty", i)
		}
		if seen[v.Name] {
			return fmt.Errorf("vegetation[%d]: duplicate name %q", i, v.Name)
		}
		seen[v.Name] = true
		if v.Density < 0 {
			return fmt.Errorf("vegetation %s: density must be >= 0", v.Name)
		}
		if v.MinimumHeight != nil && v.MaximumHeight != nil && *v.MaximumHeight < *v.MinimumHeight {
			return fmt.Errorf("vegetation %s: maximumHeight < minimumHeight", v.Name)
		}
		if v.MinimumSteepness != nil && v.MaximumSteepness != nil && *v.MaximumSteepness < *v.MinimumSteepness {
			return fmt.Errorf("vegetation %s: maximumSteepness < minimumSteepness", v.Name)
		}
		if g := v.Ground; g != nil {
			if g.Radius < 0 {
				return fmt.Errorf("vegetation %s: ground.radius must be >= 0", v.Name)
			}
			if g.Color != "" {
				if _, err := gradient.ParseHex(g.Color); err != nil {
					return fmt.Errorf("vegetation %s: ground.color: %w", v.Name, err)
				}
			}
		}
	}
	return nil
}
