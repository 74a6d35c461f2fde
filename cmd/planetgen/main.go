package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"planetforge.ai/internal/planet"
	"planetforge.ai/internal/presets"
	"planetforge.ai/internal/protocol"
	"planetforge.ai/internal/sky"
)

func main() {
	var (
		presetPath = flag.String("preset", "./configs/presets/verdant.yaml", "preset yaml file (or preset name with -preset_src)")
		presetSrc  = flag.String("preset_src", "", "remote preset directory (go-getter syntax); -preset then names a preset in it")
		seed       = flag.Int64("seed", 0, "override preset seed (0 keeps the preset's)")
		detail     = flag.Int("detail", -1, "override subdivision detail (-1 keeps the preset's)")
		parallel   = flag.Int("parallelism", 0, "face pass workers (0 = GOMAXPROCS)")
		verbosity  = flag.Int("v", 1, "log verbosity: 0 quiet, 1 summary, 2 per-pass timings")
		out        = flag.String("out", "", "write the binary geometry frame to this file")
		hour       = flag.Float64("hour", -1, "also relight land colors at this hour of day (0-24)")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[planetgen] ", log.LstdFlags|log.Lmicroseconds)

	p, err := loadPreset(*presetPath, *presetSrc)
	if err != nil {
		logger.Fatalf("load preset: %v", err)
	}
	cfg := p.Config
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *detail >= 0 {
		cfg.Detail = *detail
	}

	res, err := planet.Generate(cfg, planet.Options{
		Logger:      logger,
		Verbosity:   *verbosity,
		Parallelism: *parallel,
	})
	if err != nil {
		logger.Fatalf("generate: %v", err)
	}

	g := res.Geometry
	fmt.Printf("preset     %s\n", p.Name)
	fmt.Printf("seed       %d\n", cfg.Seed)
	fmt.Printf("detail     %d\n", res.Stats.Detail)
	fmt.Printf("faces      %s\n", humanize.Comma(int64(res.Stats.Faces)))
	fmt.Printf("buffers    %s\n", humanize.Bytes(uint64(res.Stats.Bytes)))
	fmt.Printf("took       %s\n", res.Stats.Duration.Round(time.Microsecond))
	names := make([]string, 0, len(g.Vegetation))
	for name := range g.Vegetation {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("vegetation %-12s %d\n", name, len(g.Vegetation[name]))
	}

	if *hour >= 0 {
		light := sky.LightAt(*hour)
		colors := res.Shading.Recolor(light)
		var sum float64
		for _, c := range colors {
			sum += float64(c)
		}
		mean := 0.0
		if len(colors) > 0 {
			mean = sum / float64(len(colors))
		}
		fmt.Printf("light      hour=%.1f phase=%s intensity=%.2f mean=%.3f\n", *hour, sky.Phase(*hour), light.Intensity, mean)
	}

	if *out != "" {
		frame, err := protocol.EncodeGeometryFrame(p.Name, res, true)
		if err != nil {
			logger.Fatalf("encode: %v", err)
		}
		if err := os.WriteFile(*out, frame, 0o644); err != nil {
			logger.Fatalf("write %s: %v", *out, err)
		}
		fmt.Printf("wrote      %s (%s)\n", *out, humanize.Bytes(uint64(len(frame))))
	}
}

func loadPreset(path, src string) (presets.Preset, error) {
	if src == "" {
		return presets.LoadFile(path, 0)
	}
	dir, err := os.MkdirTemp("", "planetgen-presets-")
	if err != nil {
		return presets.Preset{}, err
	}
	defer os.RemoveAll(dir)
	dst := filepath.Join(dir, "presets")
	if err := presets.Fetch(context.Background(), src, dst); err != nil {
		return presets.Preset{}, err
	}
	list, err := presets.LoadDir(dst, 0)
	if err != nil {
		return presets.Preset{}, err
	}
	name := path
	if p, ok := presets.Find(list, name); ok {
		return p, nil
	}
	name = filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]
	if p, ok := presets.Find(list, name); ok {
		return p, nil
	}
	return presets.Preset{}, fmt.Errorf("preset %q not found in %s", path, src)
}
