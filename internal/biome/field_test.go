package biome

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"planetforge.ai/internal/gradient"
	"planetforge.ai/internal/noise"
)

func ptr(v float64) *float64 { return &v }

func baseConfig() Config {
	return Config{
		Terrain: &noise.Config{Octaves: 4, Scale: 2, Min: -0.05, Max: 0.05},
		Sea:     &noise.Config{Octaves: 2, Scale: 4, Min: -0.005, Max: 0.005},
		Colors: gradient.Config{Stops: []gradient.StopConfig{
			{Position: 0, Color: "#000000"},
			{Position: 1, Color: "#ffffff"},
		}},
		SeaColors: gradient.Config{Stops: []gradient.StopConfig{
			{Position: 0, Color: "#0000ff"},
		}},
	}
}

func TestNew_UnconfiguredNoiseIsZero(t *testing.T) {
	cfg := baseConfig()
	cfg.Terrain = nil
	cfg.Sea = nil
	f, err := New(cfg, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p := mgl64.Vec3{0, 1, 0}
	if f.Height(p) != 0 || f.SeaHeight(p) != 0 {
		t.Fatalf("expected zero heights")
	}
}

func TestHeight_Envelope(t *testing.T) {
	f, err := New(baseConfig(), 3)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < 500; i++ {
		a := float64(i) * 0.37
		p := mgl64.Vec3{math.Cos(a), math.Sin(a * 0.7), math.Sin(a)}.Normalize()
		if h := f.Height(p); h < -0.05 || h > 0.05 {
			t.Fatalf("height %v outside envelope", h)
		}
	}
}

func TestColor_SteepnessDarkensAndTintBlends(t *testing.T) {
	cfg := baseConfig()
	f, err := New(cfg, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p := mgl64.Vec3{1, 0, 0}
	flat := f.Color(p, 1, 0)
	steep := f.Color(p, 1, math.Pi/2)
	if math.Abs(flat.R-1) > 1e-9 {
		t.Fatalf("flat color=%+v", flat)
	}
	if math.Abs(steep.R-0.7) > 1e-9 {
		t.Fatalf("vertical color=%+v want 0.7", steep)
	}

	cfg.Tint = "#ff0000"
	tinted, err := New(cfg, 1)
	if err != nil {
		t.Fatalf("new tinted: %v", err)
	}
	c := tinted.Color(p, 0, 0)
	if math.Abs(c.R-0.2) > 1e-9 || c.G != 0 {
		t.Fatalf("tinted=%+v want 20%% red", c)
	}
}

func TestSeaColor_DeeperIsDarker(t *testing.T) {
	f, err := New(baseConfig(), 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p := mgl64.Vec3{0, 0, 1}
	deep := f.SeaColor(p, 0)
	shallow := f.SeaColor(p, 1)
	if !(deep.B < shallow.B) {
		t.Fatalf("deep=%+v shallow=%+v", deep, shallow)
	}
	if math.Abs(deep.B-0.7) > 1e-9 {
		t.Fatalf("deep floor=%v want 0.7", deep.B)
	}
}

func TestFaceVegetationEffect_RaisesAndTintsNearby(t *testing.T) {
	cfg := baseConfig()
	cfg.Vegetation = []VegetationItem{
		{Name: "tree", Density: 1, Ground: &GroundEffect{Radius: 0.1, Raise: 0.02, Color: "#00ff00"}},
		{Name: "rock", Density: 1},
	}
	f, err := New(cfg, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if f.MaxVegetationRadius() != 0.1 {
		t.Fatalf("max radius=%v", f.MaxVegetationRadius())
	}
	at := mgl64.Vec3{0, 0, 1}
	if !f.AddVegetation(at, 0) || !f.AddVegetation(mgl64.Vec3{0, 1, 0}, 1) {
		t.Fatalf("add vegetation rejected")
	}
	if got := f.VegetationNear(at, 0.01); len(got) != 1 || got[0].Payload != 0 {
		t.Fatalf("near=%v", got)
	}

	verts := [3]mgl64.Vec3{
		{0, 0, 1.02},                       // on top of the tree
		mgl64.Vec3{0.05, 0, 1}.Normalize(), // inside the radius
		mgl64.Vec3{0.5, 0, 1}.Normalize(),  // far away
	}
	base := gradient.RGB(0, 0, 0)
	eff := f.FaceVegetationEffect(verts, base, 0.01)
	if math.Abs(eff.Raise[0]-0.02) > 1e-9 {
		t.Fatalf("center raise=%v want full", eff.Raise[0])
	}
	if !(eff.Raise[1] > 0 && eff.Raise[1] < eff.Raise[0]) {
		t.Fatalf("falloff raise=%v", eff.Raise[1])
	}
	if eff.Raise[2] != 0 || eff.Colors[2] != base {
		t.Fatalf("far vertex affected: %v %+v", eff.Raise[2], eff.Colors[2])
	}
	if math.Abs(eff.Colors[0].G-1.0/3) > 1e-9 {
		t.Fatalf("center tint=%+v want a third of the way", eff.Colors[0])
	}
}

func TestVegetationItem_Allows(t *testing.T) {
	it := VegetationItem{Name: "pine", MinimumHeight: ptr(0.5), MaximumSteepness: ptr(0.3)}
	if it.Allows(0.4, 0) {
		t.Fatalf("below minimum height allowed")
	}
	if it.Allows(0.6, 0.5) {
		t.Fatalf("too steep allowed")
	}
	if !it.Allows(0.6, 0.1) {
		t.Fatalf("valid band rejected")
	}
	if !(VegetationItem{Name: "any"}).Allows(-3, 9) {
		t.Fatalf("unbounded item rejected")
	}
}

func TestValidate_RejectsBadVegetation(t *testing.T) {
	cases := []func(c *Config){
		func(c *Config) { c.Vegetation = []VegetationItem{{Name: ""}} },
		func(c *Config) { c.Vegetation = []VegetationItem{{Name: "a"}, {Name: "a"}} },
		func(c *Config) { c.Vegetation = []VegetationItem{{Name: "a", Density: -1}} },
		func(c *Config) {
			c.Vegetation = []VegetationItem{{Name: "a", MinimumHeight: ptr(0.8), MaximumHeight: ptr(0.2)}}
		},
		func(c *Config) { c.Tint = "zz" },
		func(c *Config) { c.Terrain = &noise.Config{Min: 1, Max: 0} },
	}
	for i, mut := range cases {
		cfg := baseConfig()
		mut(&cfg)
		if _, err := New(cfg, 1); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
