// Package biome turns a biome config into pure position -> height/color
// functions plus the vegetation index that drives ground effects.
package biome

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"planetforge.ai/internal/gradient"
	"planetforge.ai/internal/mathx"
	"planetforge.ai/internal/noise"
	"planetforge.ai/internal/spatial/octree"
)

const (
	steepDarken = 0.3
	depthFloor  = 0.7
	tintBlend   = 0.2
	// Vegetation points are stored projected onto the unit sphere.
	indexHalfSize = 1.01
)

type ground struct {
	radius   float64
	raise    float64
	color    gradient.Color
	hasColor bool
}

// Field samples terrain and sea height and color. After generation it is
// read-only and may be kept around for recoloring.
type Field struct {
	terrain    *noise.Field
	sea        *noise.Field
	colors     *gradient.Gradient
	seaColors  *gradient.Gradient
	tint       *gradient.Color
	brightness float64

	items     []VegetationItem
	grounds   []*ground
	maxRadius float64
	index     *octree.Tree[int]
}

// New validates cfg and builds the field. seed feeds both noise fields.
func New(cfg Config, seed int64) (*Field, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Field{
		brightness: cfg.Brightness,
		items:      append([]VegetationItem(nil), cfg.Vegetation...),
		index:      octree.NewCube[int](indexHalfSize, octree.DefaultCapacity),
	}
	var err error
	if cfg.Terrain != nil {
		if f.terrain, err = noise.New(*cfg.Terrain, mathx.SubSeed(seed, "terrain")); err != nil {
			return nil, err
		}
	}
	if cfg.Sea != nil {
		if f.sea, err = noise.New(*cfg.Sea, mathx.SubSeed(seed, "sea")); err != nil {
			return nil, err
		}
	}
	if f.colors, err = cfg.Colors.Build(); err != nil {
		return nil, err
	}
	if f.seaColors, err = cfg.SeaColors.Build(); err != nil {
		return nil, err
	}
	if cfg.Tint != "" {
		c, _ := gradient.ParseHex(cfg.Tint)
		f.tint = &c
	}
	f.grounds = make([]*ground, len(f.items))
	for i, it := range f.items {
		if it.Ground == nil || it.Ground.Radius <= 0 {
			continue
		}
		g := &ground{radius: it.Ground.Radius, raise: it.Ground.Raise}
		if it.Ground.Color != "" {
			g.color, _ = gradient.ParseHex(it.Ground.Color)
			g.hasColor = true
		}
		f.grounds[i] = g
		f.maxRadius = math.Max(f.maxRadius, g.radius)
	}
	return f, nil
}

func (f *Field) Items() []VegetationItem { return f.items }

func (f *Field) Brightness() float64 { return f.brightness }

// Height is the terrain offset at p, 0 without a terrain config.
func (f *Field) Height(p mgl64.Vec3) float64 {
	if f.terrain == nil {
		return 0
	}
	return f.terrain.Eval(p)
}

// SeaHeight is the ocean surface offset at p, 0 without a sea config.
func (f *Field) SeaHeight(p mgl64.Vec3) float64 {
	if f.sea == nil {
		return 0
	}
	return f.sea.Eval(p)
}

// NormalizedHeight maps a terrain height into [0,1] across the terrain envelope.
func (f *Field) NormalizedHeight(h float64) float64 {
	if f.terrain == nil {
		return 0.5
	}
	return f.terrain.Normalized(h)
}

// latitude is |sin(lat)| in [0,1], the extra coordinate for nested gradients.
func latitude(p mgl64.Vec3) float64 {
	l := p.Len()
	if l == 0 {
		return 0
	}
	return math.Abs(p[1]) / l
}

// Color is the land color for a face whose centroid sits at p.
func (f *Field) Color(p mgl64.Vec3, normalizedHeight, steepness float64) gradient.Color {
	c := f.colors.Get(normalizedHeight, latitude(p))
	s := mathx.Clamp(steepness/(math.Pi/2), 0, 1)
	c = c.Scale(1 - steepDarken*s)
	if f.tint != nil {
		c = c.Mix(*f.tint, tintBlend)
	}
	return c
}

// SeaColor darkens the sea gradient with depth: lower land under the water
// reads as deeper and darker, never below depthFloor of the base color.
func (f *Field) SeaColor(p mgl64.Vec3, normalizedHeight float64) gradient.Color {
	nh := mathx.Clamp(normalizedHeight, 0, 1)
	c := f.seaColors.Get(nh, latitude(p))
	return c.Scale(depthFloor + (1-depthFloor)*nh)
}

// AddVegetation records a placed item. p is projected onto the unit sphere.
func (f *Field) AddVegetation(p mgl64.Vec3, item int) bool {
	if p.Len() == 0 {
		return false
	}
	return f.index.Insert(p.Normalize(), item)
}

// VegetationNear proxies a radius query on the vegetation index.
func (f *Field) VegetationNear(p mgl64.Vec3, radius float64) []octree.Point[int] {
	return f.index.QueryRadius(p, radius)
}

func (f *Field) VegetationCount() int { return f.index.Len() }

// VegetationIndex exposes the index for debug walks.
func (f *Field) VegetationIndex() *octree.Tree[int] { return f.index }

// MaxVegetationRadius is the largest ground-effect radius over all items.
func (f *Field) MaxVegetationRadius() float64 { return f.maxRadius }

// FaceEffect is the ground-effect outcome for one face's three vertices.
type FaceEffect struct {
	Raise  [3]float64
	Colors [3]gradient.Color
}

// FaceVegetationEffect raises and tints each vertex of a face by the ground
// effects of nearby vegetation. Raises fall off with sqrt(proximity); colors
// move up to a third of the way toward the item's ground color.
func (f *Field) FaceVegetationEffect(verts [3]mgl64.Vec3, base gradient.Color, faceSize float64) FaceEffect {
	out := FaceEffect{Colors: [3]gradient.Color{base, base, base}}
	if f.maxRadius <= 0 || f.index.Len() == 0 {
		return out
	}
	window := f.maxRadius + 2*faceSize
	for vi, v := range verts {
		if v.Len() == 0 {
			continue
		}
		u := v.Normalize()
		for _, near := range f.VegetationNear(u, window) {
			if near.Payload < 0 || near.Payload >= len(f.grounds) {
				continue
			}
			g := f.grounds[near.Payload]
			if g == nil {
				continue
			}
			d := near.Pos.Sub(u).Len()
			if d >= g.radius {
				continue
			}
			prox := 1 - d/g.radius
			out.Raise[vi] += g.raise * math.Sqrt(prox)
			if g.hasColor {
				out.Colors[vi] = out.Colors[vi].Mix(g.color, prox/3)
			}
		}
	}
	return out
}
