package octree

import "github.com/go-gl/mathgl/mgl64"

// Box is an axis-aligned bounding box. Both faces are inclusive.
type Box struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

func NewBox(min, max mgl64.Vec3) Box {
	for i := 0; i < 3; i++ {
		if min[i] > max[i] {
			min[i], max[i] = max[i], min[i]
		}
	}
	return Box{Min: min, Max: max}
}

func (b Box) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Box) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b Box) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

func (b Box) Intersects(o Box) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

// distSq is the squared distance from p to the closest point of the box (0 inside).
func (b Box) distSq(p mgl64.Vec3) float64 {
	d := 0.0
	for i := 0; i < 3; i++ {
		switch {
		case p[i] < b.Min[i]:
			v := b.Min[i] - p[i]
			d += v * v
		case p[i] > b.Max[i]:
			v := p[i] - b.Max[i]
			d += v * v
		}
	}
	return d
}

// octant returns the child bounds for index i: bit0 selects the high x half,
// bit1 high y, bit2 high z.
func (b Box) octant(i int) Box {
	mid := b.Center()
	out := Box{Min: b.Min, Max: mid}
	for axis := 0; axis < 3; axis++ {
		if i&(1<<axis) != 0 {
			out.Min[axis] = mid[axis]
			out.Max[axis] = b.Max[axis]
		}
	}
	return out
}

func octantOf(mid, p mgl64.Vec3) int {
	i := 0
	for axis := 0; axis < 3; axis++ {
		if p[axis] >= mid[axis] {
			i |= 1 << axis
		}
	}
	return i
}
