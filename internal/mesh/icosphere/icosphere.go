// Package icosphere subdivides a regular icosahedron into a unit sphere and
// emits it as independent per-face triangles.
package icosphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxDepth bounds the face count at 20*4^MaxDepth.
const MaxDepth = 5

// Face is three unit-length vertices in counter-clockwise order seen from outside.
type Face [3]mgl64.Vec3

func (f Face) Centroid() mgl64.Vec3 {
	return f[0].Add(f[1]).Add(f[2]).Mul(1.0 / 3)
}

// ClampDepth limits depth to [0, MaxDepth].
func ClampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > MaxDepth {
		return MaxDepth
	}
	return depth
}

// FaceCount is the number of faces Build returns for depth (after clamping).
func FaceCount(depth int) int {
	return 20 << (2 * ClampDepth(depth))
}

var baseFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

func baseVertices() []mgl64.Vec3 {
	t := (1 + math.Sqrt(5)) / 2
	raw := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range raw {
		raw[i] = raw[i].Normalize()
	}
	return raw
}

type builder struct {
	verts    []mgl64.Vec3
	midpoint map[[2]int]int
}

// midpointOf returns the index of the normalized midpoint of edge (a,b),
// creating it once per undirected edge.
func (b *builder) midpointOf(a, c int) int {
	key := [2]int{a, c}
	if a > c {
		key = [2]int{c, a}
	}
	if i, ok := b.midpoint[key]; ok {
		return i
	}
	m := b.verts[a].Add(b.verts[c]).Mul(0.5).Normalize()
	b.verts = append(b.verts, m)
	i := len(b.verts) - 1
	b.midpoint[key] = i
	return i
}

// Build subdivides the icosahedron depth times (clamped) and returns one
// Face per triangle. Vertices are shared during subdivision so edges match
// exactly, but the output carries no index buffer.
func Build(depth int) []Face {
	depth = ClampDepth(depth)
	b := &builder{
		verts:    baseVertices(),
		midpoint: make(map[[2]int]int),
	}
	tris := make([][3]int, len(baseFaces))
	copy(tris, baseFaces[:])

	for d := 0; d < depth; d++ {
		next := make([][3]int, 0, len(tris)*4)
		for _, f := range tris {
			a, bb, c := f[0], f[1], f[2]
			ab := b.midpointOf(a, bb)
			bc := b.midpointOf(bb, c)
			ca := b.midpointOf(c, a)
			next = append(next,
				[3]int{a, ab, ca},
				[3]int{ab, bb, bc},
				[3]int{ca, bc, c},
				[3]int{ab, bc, ca},
			)
		}
		tris = next
	}

	out := make([]Face, len(tris))
	for i, f := range tris {
		out[i] = Face{b.verts[f[0]], b.verts[f[1]], b.verts[f[2]]}
	}
	return out
}

// EdgeLength is the mean edge length of faces at the given depth, used to
// size scatter jitter and neighbour search windows.
func EdgeLength(faces []Face) float64 {
	if len(faces) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range faces {
		sum += f[0].Sub(f[1]).Len() + f[1].Sub(f[2]).Len() + f[2].Sub(f[0]).Len()
	}
	return sum / float64(3*len(faces))
}

// SolidAngle is the solid angle subtended at the origin by the triangle
// (Van Oosterom-Strackee).
func SolidAngle(a, b, c mgl64.Vec3) float64 {
	la, lb, lc := a.Len(), b.Len(), c.Len()
	num := a.Dot(b.Cross(c))
	den := la*lb*lc + a.Dot(b)*lc + a.Dot(c)*lb + b.Dot(c)*la
	return math.Abs(2 * math.Atan2(num, den))
}
