// Package octree is a bounded, write-once point index with box and radius
// queries. A node stores points only while it is a leaf; once it splits
// every point lives in exactly one of its eight children.
package octree

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultCapacity = 8
	// DefaultMaxDepth stops splitting for clusters of coincident points.
	DefaultMaxDepth = 16
)

type Point[T any] struct {
	Pos     mgl64.Vec3
	Payload T
}

type node[T any] struct {
	bounds   Box
	depth    int
	points   []Point[T]
	children *[8]*node[T]
}

type Tree[T any] struct {
	root     *node[T]
	capacity int
	maxDepth int
	count    int
}

// New builds an empty tree over explicit bounds.
func New[T any](bounds Box, capacity int) *Tree[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tree[T]{
		root:     &node[T]{bounds: bounds},
		capacity: capacity,
		maxDepth: DefaultMaxDepth,
	}
}

// NewCube builds a tree over the cube [-halfSize, halfSize] on every axis.
func NewCube[T any](halfSize float64, capacity int) *Tree[T] {
	h := math.Abs(halfSize)
	return New[T](Box{Min: mgl64.Vec3{-h, -h, -h}, Max: mgl64.Vec3{h, h, h}}, capacity)
}

// FromPoints infers bounds from pts and inserts all of them.
func FromPoints[T any](pts []Point[T], capacity int) *Tree[T] {
	if len(pts) == 0 {
		return New[T](Box{}, capacity)
	}
	b := Box{Min: pts[0].Pos, Max: pts[0].Pos}
	for _, p := range pts[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = math.Min(b.Min[i], p.Pos[i])
			b.Max[i] = math.Max(b.Max[i], p.Pos[i])
		}
	}
	// A flat or single-point set still needs a box with volume to split.
	for i := 0; i < 3; i++ {
		if b.Max[i]-b.Min[i] < 1e-9 {
			b.Min[i] -= 1e-6
			b.Max[i] += 1e-6
		}
	}
	t := New[T](b, capacity)
	for _, p := range pts {
		t.Insert(p.Pos, p.Payload)
	}
	return t
}

func (t *Tree[T]) Bounds() Box { return t.root.bounds }

func (t *Tree[T]) Len() int { return t.count }

// Insert stores a point. Points outside the root bounds are rejected.
func (t *Tree[T]) Insert(pos mgl64.Vec3, payload T) bool {
	if !t.root.bounds.Contains(pos) {
		return false
	}
	t.insert(t.root, Point[T]{Pos: pos, Payload: payload})
	t.count++
	return true
}

func (t *Tree[T]) insert(n *node[T], p Point[T]) {
	for n.children != nil {
		n = n.children[octantOf(n.bounds.Center(), p.Pos)]
	}
	if len(n.points) < t.capacity || n.depth >= t.maxDepth {
		n.points = append(n.points, p)
		return
	}
	t.split(n)
	t.insert(n.children[octantOf(n.bounds.Center(), p.Pos)], p)
}

func (t *Tree[T]) split(n *node[T]) {
	var kids [8]*node[T]
	for i := range kids {
		kids[i] = &node[T]{bounds: n.bounds.octant(i), depth: n.depth + 1}
	}
	n.children = &kids
	pts := n.points
	n.points = nil
	for _, p := range pts {
		t.insert(n, p)
	}
}

// QueryBox returns every stored point inside b.
func (t *Tree[T]) QueryBox(b Box) []Point[T] {
	var out []Point[T]
	var walk func(n *node[T])
	walk = func(n *node[T]) {
		if !n.bounds.Intersects(b) {
			return
		}
		if n.children != nil {
			for _, c := range n.children {
				walk(c)
			}
			return
		}
		for _, p := range n.points {
			if b.Contains(p.Pos) {
				out = append(out, p)
			}
		}
	}
	walk(t.root)
	return out
}

// QueryRadius returns every stored point within Euclidean distance r of c.
func (t *Tree[T]) QueryRadius(c mgl64.Vec3, r float64) []Point[T] {
	if r < 0 {
		return nil
	}
	r2 := r * r
	var out []Point[T]
	var walk func(n *node[T])
	walk = func(n *node[T]) {
		if n.bounds.distSq(c) > r2 {
			return
		}
		if n.children != nil {
			for _, k := range n.children {
				walk(k)
			}
			return
		}
		for _, p := range n.points {
			d := p.Pos.Sub(c)
			if d.Dot(d) <= r2 {
				out = append(out, p)
			}
		}
	}
	walk(t.root)
	return out
}

// NodeInfo describes one node for debug overlays.
type NodeInfo struct {
	Bounds Box  `json:"bounds"`
	Depth  int  `json:"depth"`
	Points int  `json:"points"`
	Leaf   bool `json:"leaf"`
}

// Walk visits nodes depth-first. Returning false skips the node's children.
func (t *Tree[T]) Walk(fn func(NodeInfo) bool) {
	var walk func(n *node[T])
	walk = func(n *node[T]) {
		info := NodeInfo{Bounds: n.bounds, Depth: n.depth, Points: len(n.points), Leaf: n.children == nil}
		if !fn(info) || n.children == nil {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
}

// Depth is the deepest node level in the tree (0 for an unsplit root).
func (t *Tree[T]) Depth() int {
	d := 0
	t.Walk(func(n NodeInfo) bool {
		if n.Depth > d {
			d = n.Depth
		}
		return true
	})
	return d
}
