// Package vegetation picks spawn points per face with one Bernoulli trial
// per (face, species).
package vegetation

import (
	"github.com/go-gl/mathgl/mgl64"

	"planetforge.ai/internal/biome"
	"planetforge.ai/internal/mathx"
	"planetforge.ai/internal/mesh/icosphere"
)

type Spawn struct {
	Item int
	Pos  mgl64.Vec3
}

// Placer is stateless apart from its seed, so faces may be processed in any
// order or in parallel and still yield the same spawns.
type Placer struct {
	items []biome.VegetationItem
	seed  int64
}

func NewPlacer(items []biome.VegetationItem, seed int64) *Placer {
	return &Placer{items: items, seed: mathx.SubSeed(seed, "vegetation")}
}

// roll returns a uniform value in [0,1) fixed by (seed, face, item).
func (p *Placer) roll(face, item int) float64 {
	return float64(mathx.Hash3(p.seed, face, item, 0)>>11) / (1 << 53)
}

// Probability is the spawn chance of one species on a face: the face's solid
// angle times the species density, capped at 1.
func Probability(solidAngle, density float64) float64 {
	pr := solidAngle * density
	if pr > 1 {
		return 1
	}
	if pr < 0 {
		return 0
	}
	return pr
}

// Face runs the trials for one face. unit holds the face's pre-scatter unit
// vertices and only sizes the solid angle; anchor is the face's first
// vertex as displaced on the mesh, projected onto the unit sphere for the
// spawn. A trial that succeeds but falls outside an item's height or
// steepness band is dropped, not retried.
func (p *Placer) Face(face int, unit icosphere.Face, anchor mgl64.Vec3, normalizedHeight, steepness float64) []Spawn {
	if len(p.items) == 0 {
		return nil
	}
	omega := icosphere.SolidAngle(unit[0], unit[1], unit[2])
	if anchor.Len() == 0 {
		anchor = unit[0]
	}
	pos := anchor.Normalize()
	var out []Spawn
	for i, it := range p.items {
		if it.Density <= 0 {
			continue
		}
		if p.roll(face, i) >= Probability(omega, it.Density) {
			continue
		}
		if !it.Allows(normalizedHeight, steepness) {
			continue
		}
		out = append(out, Spawn{Item: i, Pos: pos})
	}
	return out
}
