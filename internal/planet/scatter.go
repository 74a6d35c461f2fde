package planet

import (
	"github.com/go-gl/mathgl/mgl64"

	"planetforge.ai/internal/mathx"
	"planetforge.ai/internal/noise"
)

// Per-axis sample offsets decorrelate the three displacement components
// drawn from one noise field.
var scatterOffsets = [3]mgl64.Vec3{
	{0, 0, 0},
	{17.13, 31.71, 5.37},
	{43.91, 11.29, 29.73},
}

// scatterer jitters unit vertices tangentially. Identical input positions
// always move identically, so shared edges stay shared.
type scatterer struct {
	field  *noise.Field
	amount float64
}

func newScatterer(seed int64, scatter, faceSize float64) (*scatterer, error) {
	if scatter <= 0 || faceSize <= 0 {
		return &scatterer{}, nil
	}
	f, err := noise.New(noise.Config{
		Octaves: 2,
		Scale:   1 / faceSize,
		Warp:    0.5 * faceSize,
		Min:     -1,
		Max:     1,
	}, mathx.SubSeed(seed, "scatter"))
	if err != nil {
		return nil, err
	}
	return &scatterer{field: f, amount: scatter * faceSize}, nil
}

// apply returns the scattered point, renormalized to unit length.
func (s *scatterer) apply(p mgl64.Vec3) mgl64.Vec3 {
	if s.field == nil {
		return p
	}
	d := mgl64.Vec3{
		s.field.Eval(p.Add(scatterOffsets[0])),
		s.field.Eval(p.Add(scatterOffsets[1])),
		s.field.Eval(p.Add(scatterOffsets[2])),
	}
	q := p.Add(d.Mul(s.amount))
	if q.Len() == 0 {
		return p
	}
	return q.Normalize()
}
