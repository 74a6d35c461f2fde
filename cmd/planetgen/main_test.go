package main

import (
	"testing"

	"planetforge.ai/internal/planet"
	"planetforge.ai/internal/presets"
)

func TestShippedPresetsGenerate(t *testing.T) {
	list, err := presets.LoadDir("../../configs/presets", 2)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("presets=%d want 3", len(list))
	}
	for _, p := range list {
		res, err := planet.Generate(p.Config, planet.Options{Parallelism: 1})
		if err != nil {
			t.Fatalf("%s: generate: %v", p.Name, err)
		}
		if res.Stats.Faces != 320 {
			t.Fatalf("%s: faces=%d want 320", p.Name, res.Stats.Faces)
		}
		for _, it := range p.Config.Biome.Vegetation {
			if _, ok := res.Geometry.Vegetation[it.Name]; !ok {
				t.Fatalf("%s: missing vegetation key %q", p.Name, it.Name)
			}
		}
	}
}

func TestLoadPreset_LocalFile(t *testing.T) {
	p, err := loadPreset("../../configs/presets/glacier.yaml", "")
	if err != nil {
		t.Fatalf("loadPreset: %v", err)
	}
	if p.Name != "glacier" || p.Config.Seed != 23 {
		t.Fatalf("preset=%s seed=%d", p.Name, p.Config.Seed)
	}
}

func TestLoadPreset_FromSourceByName(t *testing.T) {
	p, err := loadPreset("desert", "../../configs/presets")
	if err != nil {
		t.Fatalf("loadPreset: %v", err)
	}
	if p.Name != "desert" {
		t.Fatalf("name=%s", p.Name)
	}
	if _, err := loadPreset("missing", "../../configs/presets"); err == nil {
		t.Fatalf("expected not found error")
	}
}
