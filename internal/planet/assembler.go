package planet

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-gl/mathgl/mgl64"

	"planetforge.ai/internal/biome"
	"planetforge.ai/internal/gradient"
	"planetforge.ai/internal/mathx"
	"planetforge.ai/internal/mesh/icosphere"
	"planetforge.ai/internal/vegetation"
)

// The morph target samples the sea field at a shifted input so the ocean
// has a second pose to blend towards.
var morphPhase = mgl64.Vec3{0.17, 0.31, 0.23}

type Options struct {
	Logger *log.Logger
	// Verbosity 0 is silent, 1 logs a summary, 2 adds per-pass timings.
	Verbosity int
	// Parallelism caps pass workers. <= 0 uses GOMAXPROCS, 1 runs serially.
	Parallelism int
	// MaxDetail caps Config.Detail. <= 0 means icosphere.MaxDepth.
	MaxDetail int
}

func (o Options) workers() int {
	if o.Parallelism <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Parallelism
}

func (o Options) logf(level int, format string, args ...any) {
	if o.Logger != nil && o.Verbosity >= level {
		o.Logger.Printf(format, args...)
	}
}

type Stats struct {
	Detail     int
	Faces      int
	Vegetation int
	Bytes      int
	Duration   time.Duration
}

// Result is one generated planet. Field and Shading stay valid afterwards
// for recoloring without regenerating geometry.
type Result struct {
	Geometry *Geometry
	Field    *biome.Field
	Shading  *Shading
	Stats    Stats
}

type faceState struct {
	unit   icosphere.Face
	land   [3]mgl64.Vec3
	ocean  [3]mgl64.Vec3
	morph  [3]mgl64.Vec3
	nh     float64
	steep  float64
	color  gradient.Color
	sea    gradient.Color
	spawns []vegetation.Spawn
}

type assembly struct {
	cfg      Config
	field    *biome.Field
	scatter  *scatterer
	placer   *vegetation.Placer
	faces    []icosphere.Face
	faceSize float64
	states   []faceState
	geo      *Geometry
}

// Generate builds the land mesh, ocean mesh with its morph target, per-face
// colors and the vegetation map for cfg.
func Generate(cfg Config, opts Options) (*Result, error) {
	start := time.Now()
	cfg.Normalize(opts.MaxDetail)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	field, err := biome.New(cfg.Biome, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: biome: %w", ErrInvalidConfig, err)
	}

	faces := icosphere.Build(cfg.Detail)
	faceSize := icosphere.EdgeLength(faces)
	sc, err := newScatterer(cfg.Seed, cfg.Scatter, faceSize)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	species := make([]string, 0, len(field.Items()))
	for _, it := range field.Items() {
		species = append(species, it.Name)
	}

	a := &assembly{
		cfg:      cfg,
		field:    field,
		scatter:  sc,
		placer:   vegetation.NewPlacer(field.Items(), cfg.Seed),
		faces:    faces,
		faceSize: faceSize,
		states:   make([]faceState, len(faces)),
		geo:      newGeometry(len(faces), species),
	}

	var pool pond.Pool
	if w := opts.workers(); w > 1 {
		pool = pond.NewPool(w)
		defer pool.StopAndWait()
	}

	mark := time.Now()
	if err := forEachFace(pool, len(faces), a.shapeFace); err != nil {
		return nil, fmt.Errorf("shape pass: %w", err)
	}
	opts.logf(2, "[planet] shape pass faces=%d took=%s", len(faces), time.Since(mark))

	mark = time.Now()
	placed := a.placeVegetation()
	opts.logf(2, "[planet] vegetation placed=%d took=%s", placed, time.Since(mark))

	mark = time.Now()
	if err := forEachFace(pool, len(faces), a.finishFace); err != nil {
		return nil, fmt.Errorf("ground pass: %w", err)
	}
	opts.logf(2, "[planet] ground pass took=%s", time.Since(mark))

	res := &Result{
		Geometry: a.geo,
		Field:    field,
		Shading:  a.shading(),
		Stats: Stats{
			Detail:     cfg.Detail,
			Faces:      len(faces),
			Vegetation: placed,
			Bytes:      a.geo.ByteSize(),
			Duration:   time.Since(start),
		},
	}
	opts.logf(1, "[planet] generated seed=%d detail=%d faces=%d vegetation=%d size=%s took=%s",
		cfg.Seed, cfg.Detail, res.Stats.Faces, placed, humanize.Bytes(uint64(res.Stats.Bytes)), res.Stats.Duration)
	return res, nil
}

// shapeFace scatters, displaces and colors face i and runs its vegetation
// trials. Ground effects are applied later, once all spawns are known.
func (a *assembly) shapeFace(i int) {
	st := &a.states[i]
	st.unit = a.faces[i]
	r := a.cfg.Radius
	var heightSum float64
	for v, p := range st.unit {
		s := a.scatter.apply(p)
		h := a.field.Height(s)
		heightSum += h
		st.land[v] = s.Mul((1 + h) * r)
		st.ocean[v] = s.Mul((1 + a.field.SeaHeight(s)) * r)
		st.morph[v] = s.Mul((1 + a.field.SeaHeight(s.Add(morphPhase))) * r)
	}
	centroid := triangleCentroid(st.land)
	// The mean vertex height stands in for the centroid height; no extra
	// noise sample is taken.
	st.nh = a.field.NormalizedHeight(heightSum / 3)
	st.steep = steepness(flatNormal(st.land), centroid)

	bright := a.field.Brightness()
	st.color = a.field.Color(centroid, st.nh, st.steep).Scale(bright).Clamp()
	st.sea = a.field.SeaColor(triangleCentroid(st.ocean), st.nh).Scale(bright).Clamp()
	st.spawns = a.placer.Face(i, st.unit, st.land[0], st.nh, st.steep)

	putTriangle(a.geo.OceanPositions, i, st.ocean)
	putTriangle(a.geo.OceanNormals, i, repeat3(flatNormal(st.ocean)))
	putTriangle(a.geo.OceanMorphPositions, i, st.morph)
	putTriangle(a.geo.OceanMorphNormals, i, repeat3(flatNormal(st.morph)))
	putTriangle(a.geo.OceanColors, i, repeat3(colorVec(st.sea)))
}

// placeVegetation indexes spawns in face order, which fixes the order of
// points in the vegetation map.
func (a *assembly) placeVegetation() int {
	items := a.field.Items()
	n := 0
	for i := range a.states {
		for _, sp := range a.states[i].spawns {
			if !a.field.AddVegetation(sp.Pos, sp.Item) {
				continue
			}
			name := items[sp.Item].Name
			a.geo.Vegetation[name] = append(a.geo.Vegetation[name], vec32(sp.Pos.Mul(a.cfg.Radius)))
			n++
		}
	}
	return n
}

func (a *assembly) finishFace(i int) {
	st := &a.states[i]
	eff := a.field.FaceVegetationEffect(st.land, st.color, a.faceSize)
	final := st.land
	for v := range final {
		if eff.Raise[v] != 0 {
			final[v] = final[v].Add(final[v].Normalize().Mul(eff.Raise[v] * a.cfg.Radius))
		}
	}
	var colors [3]mgl64.Vec3
	for v := range colors {
		colors[v] = colorVec(eff.Colors[v].Clamp())
	}
	putTriangle(a.geo.Positions, i, final)
	putTriangle(a.geo.Normals, i, repeat3(flatNormal(final)))
	putTriangle(a.geo.Colors, i, colors)
}

func (a *assembly) shading() *Shading {
	faces := make([]shadedFace, len(a.states))
	for i, st := range a.states {
		faces[i] = shadedFace{land: st.land, nh: st.nh, steep: st.steep}
	}
	return &Shading{field: a.field, faceSize: a.faceSize, faces: faces}
}

func triangleCentroid(t [3]mgl64.Vec3) mgl64.Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Mul(1.0 / 3)
}

// flatNormal is the unit face normal oriented away from the origin, or the
// zero vector for a degenerate triangle.
func flatNormal(t [3]mgl64.Vec3) mgl64.Vec3 {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	l := n.Len()
	if l < 1e-15 {
		return mgl64.Vec3{}
	}
	n = n.Mul(1 / l)
	if n.Dot(triangleCentroid(t)) < 0 {
		n = n.Mul(-1)
	}
	return n
}

// steepness is the angle in radians between the face normal and the radial
// direction through its centroid. Degenerate faces count as flat.
func steepness(normal, centroid mgl64.Vec3) float64 {
	if normal.Len() == 0 || centroid.Len() == 0 {
		return 0
	}
	return math.Acos(mathx.Clamp(normal.Dot(centroid.Normalize()), -1, 1))
}

func repeat3(v mgl64.Vec3) [3]mgl64.Vec3 { return [3]mgl64.Vec3{v, v, v} }

func colorVec(c gradient.Color) mgl64.Vec3 { return mgl64.Vec3{c.R, c.G, c.B} }
