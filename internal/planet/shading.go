package planet

import (
	"github.com/go-gl/mathgl/mgl64"

	"planetforge.ai/internal/biome"
	"planetforge.ai/internal/sky"
)

type shadedFace struct {
	land  [3]mgl64.Vec3
	nh    float64
	steep float64
}

// Shading keeps the per-face inputs of the color pass so a planet can be
// relit without touching its positions.
type Shading struct {
	field    *biome.Field
	faceSize float64
	faces    []shadedFace
}

// Recolor returns a land color buffer laid out like Geometry.Colors, lit by
// light. Under sky.Noon it reproduces the generated colors.
func (s *Shading) Recolor(light sky.Light) []float32 {
	out := make([]float32, len(s.faces)*9)
	tint := light.Tint()
	bright := s.field.Brightness()
	for i, f := range s.faces {
		base := s.field.Color(triangleCentroid(f.land), f.nh, f.steep).Scale(bright).Clamp()
		eff := s.field.FaceVegetationEffect(f.land, base, s.faceSize)
		var colors [3]mgl64.Vec3
		for v := range colors {
			colors[v] = colorVec(eff.Colors[v].Clamp().Mul(tint).Clamp())
		}
		putTriangle(out, i, colors)
	}
	return out
}
