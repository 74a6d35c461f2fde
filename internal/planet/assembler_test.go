package planet

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"planetforge.ai/internal/biome"
	"planetforge.ai/internal/gradient"
	"planetforge.ai/internal/noise"
	"planetforge.ai/internal/sky"
)

func testConfig() Config {
	return Config{
		Detail:  2,
		Scatter: 0.2,
		Seed:    7,
		Biome: biome.Config{
			Terrain: &noise.Config{Octaves: 4, Scale: 2, Warp: 0.2, Min: -0.05, Max: 0.05},
			Sea:     &noise.Config{Octaves: 2, Scale: 3, Min: -0.01, Max: 0.01},
			Colors: gradient.Config{Stops: []gradient.StopConfig{
				{Position: 0, Color: "#203060"},
				{Position: 0.5, Color: "#40a040"},
				{Position: 1, Color: "#ffffff"},
			}},
			SeaColors: gradient.Config{Stops: []gradient.StopConfig{
				{Position: 0, Color: "#001040"},
				{Position: 1, Color: "#3080c0"},
			}},
			Vegetation: []biome.VegetationItem{{Name: "tree", Density: 5}},
		},
	}
}

func radius(buf []float32, i int) float64 {
	x, y, z := float64(buf[i]), float64(buf[i+1]), float64(buf[i+2])
	return math.Sqrt(x*x + y*y + z*z)
}

func TestGenerate_BufferSizesAndVegetation(t *testing.T) {
	res, err := Generate(testConfig(), Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	g := res.Geometry
	if g.FaceCount() != 320 {
		t.Fatalf("faces=%d want 320", g.FaceCount())
	}
	for _, b := range g.Buffers() {
		if len(b.Data) != 320*9 {
			t.Fatalf("%s len=%d want %d", b.Name, len(b.Data), 320*9)
		}
	}
	trees, ok := g.Vegetation["tree"]
	if !ok || len(trees) == 0 {
		t.Fatalf("expected tree spawns, got %v", g.Vegetation)
	}
	if len(trees) != res.Stats.Vegetation || res.Field.VegetationCount() != len(trees) {
		t.Fatalf("vegetation stats=%d index=%d map=%d", res.Stats.Vegetation, res.Field.VegetationCount(), len(trees))
	}
	for _, p := range trees {
		r := math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2]))
		if math.Abs(r-1) > 1e-5 {
			t.Fatalf("spawn off sphere: r=%v", r)
		}
	}
}

func TestGenerate_HeightEnvelopeAndNormals(t *testing.T) {
	res, err := Generate(testConfig(), Options{Parallelism: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	g := res.Geometry
	for i := 0; i < len(g.Positions); i += 3 {
		if r := radius(g.Positions, i); r < 0.95-1e-5 || r > 1.05+1e-5 {
			t.Fatalf("land vertex %d radius %v outside envelope", i/3, r)
		}
		if r := radius(g.OceanPositions, i); r < 0.99-1e-5 || r > 1.01+1e-5 {
			t.Fatalf("ocean vertex %d radius %v outside envelope", i/3, r)
		}
		n := radius(g.Normals, i)
		if math.Abs(n-1) > 1e-4 {
			t.Fatalf("normal %d length %v", i/3, n)
		}
		dot := g.Normals[i]*g.Positions[i] + g.Normals[i+1]*g.Positions[i+1] + g.Normals[i+2]*g.Positions[i+2]
		if dot <= 0 {
			t.Fatalf("normal %d points inward", i/3)
		}
		for k := 0; k < 3; k++ {
			if c := g.Colors[i+k]; c < 0 || c > 1 {
				t.Fatalf("color out of range: %v", c)
			}
		}
	}
}

func TestGenerate_DeterministicAcrossParallelism(t *testing.T) {
	cfg := testConfig()
	cfg.Detail = 3
	a, err := Generate(cfg, Options{Parallelism: 1})
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	b, err := Generate(cfg, Options{Parallelism: 4})
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if !reflect.DeepEqual(a.Geometry, b.Geometry) {
		t.Fatalf("geometry differs between serial and parallel runs")
	}

	cfg.Seed = 8
	c, err := Generate(cfg, Options{Parallelism: 4})
	if err != nil {
		t.Fatalf("reseeded: %v", err)
	}
	if reflect.DeepEqual(a.Geometry.Positions, c.Geometry.Positions) {
		t.Fatalf("different seeds produced identical positions")
	}
}

func TestGenerate_GroundEffectRaisesTerrain(t *testing.T) {
	cfg := testConfig()
	cfg.Scatter = 0
	cfg.Biome.Terrain = nil
	cfg.Biome.Vegetation = []biome.VegetationItem{{
		Name:    "rock",
		Density: 10,
		Ground:  &biome.GroundEffect{Radius: 0.3, Raise: 0.1, Color: "#ff0000"},
	}}
	res, err := Generate(cfg, Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(res.Geometry.Vegetation["rock"]) == 0 {
		t.Fatalf("expected rock spawns")
	}
	raised := false
	for i := 0; i < len(res.Geometry.Positions); i += 3 {
		r := radius(res.Geometry.Positions, i)
		if r < 1-1e-5 {
			t.Fatalf("vertex %d sank to %v", i/3, r)
		}
		if r > 1.0001 {
			raised = true
		}
	}
	if !raised {
		t.Fatalf("no vertex raised by ground effect")
	}
}

func TestGenerate_RadiusScales(t *testing.T) {
	cfg := testConfig()
	cfg.Radius = 10
	cfg.Biome.Vegetation = nil
	res, err := Generate(cfg, Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if r := radius(res.Geometry.Positions, 0); r < 9.5-1e-4 || r > 10.5+1e-4 {
		t.Fatalf("radius=%v", r)
	}
}

func TestGenerate_RejectsPlaneAndBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Shape = "plane"
	if _, err := Generate(cfg, Options{}); !errors.Is(err, ErrUnsupportedShape) {
		t.Fatalf("plane err=%v", err)
	}
	cfg.Shape = "torus"
	if _, err := Generate(cfg, Options{}); err == nil || errors.Is(err, ErrUnsupportedShape) {
		t.Fatalf("torus err=%v", err)
	}
	cfg = testConfig()
	cfg.Scatter = -1
	if _, err := Generate(cfg, Options{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("scatter err=%v", err)
	}
}

func TestNormalize_ClampsDetail(t *testing.T) {
	cfg := Config{Detail: 9}
	cfg.Normalize(3)
	if cfg.Detail != 3 || cfg.Shape != ShapeSphere || cfg.Radius != 1 {
		t.Fatalf("normalized=%+v", cfg)
	}
	cfg = Config{Detail: -2}
	cfg.Normalize(0)
	if cfg.Detail != 0 {
		t.Fatalf("detail=%d", cfg.Detail)
	}
}

func TestShading_RecolorAtNoonMatchesGeneration(t *testing.T) {
	res, err := Generate(testConfig(), Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	noon := res.Shading.Recolor(sky.Noon)
	if !reflect.DeepEqual(noon, res.Geometry.Colors) {
		t.Fatalf("noon recolor differs from generated colors")
	}
	night := res.Shading.Recolor(sky.LightAt(0))
	var sumNoon, sumNight float64
	for i := range noon {
		sumNoon += float64(noon[i])
		sumNight += float64(night[i])
	}
	if !(sumNight < sumNoon) {
		t.Fatalf("night not darker: noon=%v night=%v", sumNoon, sumNight)
	}
}

func TestGenerate_SpawnsSitOnScatteredVertices(t *testing.T) {
	cfg := testConfig()
	cfg.Scatter = 1
	cfg.Biome.Vegetation = []biome.VegetationItem{{Name: "tree", Density: 1000}}
	res, err := Generate(cfg, Options{Parallelism: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	g := res.Geometry
	trees := g.Vegetation["tree"]
	if len(trees) != g.FaceCount() {
		t.Fatalf("spawns=%d want one per face (%d)", len(trees), g.FaceCount())
	}
	var verts [][3]float64
	for i := 0; i < len(g.Positions); i += 3 {
		r := radius(g.Positions, i)
		verts = append(verts, [3]float64{
			float64(g.Positions[i]) / r,
			float64(g.Positions[i+1]) / r,
			float64(g.Positions[i+2]) / r,
		})
	}
	for n, p := range trees {
		best := math.Inf(1)
		for _, v := range verts {
			dx, dy, dz := float64(p[0])-v[0], float64(p[1])-v[1], float64(p[2])-v[2]
			best = math.Min(best, math.Sqrt(dx*dx+dy*dy+dz*dz))
		}
		if best > 1e-5 {
			t.Fatalf("spawn %d at %v is %v away from every land vertex", n, p, best)
		}
	}
}

func TestGenerate_UnitDensitySpawnsWithoutBands(t *testing.T) {
	cfg := testConfig()
	cfg.Biome.Vegetation = []biome.VegetationItem{{Name: "shrub", Density: 1.0}}
	res, err := Generate(cfg, Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	g := res.Geometry
	if g.FaceCount() != 320 || len(g.Positions) != 320*9 || len(g.OceanPositions) != 320*9 {
		t.Fatalf("faces=%d land=%d ocean=%d", g.FaceCount(), len(g.Positions), len(g.OceanPositions))
	}
	if len(g.Vegetation["shrub"]) == 0 {
		t.Fatalf("expected shrub spawns at density 1, got none")
	}
}
