package planet

import "github.com/go-gl/mathgl/mgl64"

// Geometry holds flat float32 buffers, nine floats (three xyz vertices) per
// face, in face order. Colors are RGB per vertex.
type Geometry struct {
	Positions []float32 `json:"positions"`
	Colors    []float32 `json:"colors"`
	Normals   []float32 `json:"normals"`

	OceanPositions      []float32 `json:"oceanPositions"`
	OceanColors         []float32 `json:"oceanColors"`
	OceanNormals        []float32 `json:"oceanNormals"`
	OceanMorphPositions []float32 `json:"oceanMorphPositions"`
	OceanMorphNormals   []float32 `json:"oceanMorphNormals"`

	// Vegetation maps species name to spawn points in face order.
	Vegetation map[string][][3]float32 `json:"vegetation"`
}

func newGeometry(faces int, species []string) *Geometry {
	n := faces * 9
	g := &Geometry{
		Positions:           make([]float32, n),
		Colors:              make([]float32, n),
		Normals:             make([]float32, n),
		OceanPositions:      make([]float32, n),
		OceanColors:         make([]float32, n),
		OceanNormals:        make([]float32, n),
		OceanMorphPositions: make([]float32, n),
		OceanMorphNormals:   make([]float32, n),
		Vegetation:          make(map[string][][3]float32, len(species)),
	}
	for _, s := range species {
		g.Vegetation[s] = [][3]float32{}
	}
	return g
}

func (g *Geometry) FaceCount() int { return len(g.Positions) / 9 }

// Buffers lists the float buffers in wire order.
func (g *Geometry) Buffers() []NamedBuffer {
	return []NamedBuffer{
		{"positions", g.Positions},
		{"colors", g.Colors},
		{"normals", g.Normals},
		{"oceanPositions", g.OceanPositions},
		{"oceanColors", g.OceanColors},
		{"oceanNormals", g.OceanNormals},
		{"oceanMorphPositions", g.OceanMorphPositions},
		{"oceanMorphNormals", g.OceanMorphNormals},
	}
}

type NamedBuffer struct {
	Name string
	Data []float32
}

// ByteSize is the raw size of all float buffers and vegetation points.
func (g *Geometry) ByteSize() int {
	n := 0
	for _, b := range g.Buffers() {
		n += 4 * len(b.Data)
	}
	for _, pts := range g.Vegetation {
		n += 12 * len(pts)
	}
	return n
}

func put3(dst []float32, at int, v mgl64.Vec3) {
	dst[at] = float32(v[0])
	dst[at+1] = float32(v[1])
	dst[at+2] = float32(v[2])
}

func putTriangle(dst []float32, face int, t [3]mgl64.Vec3) {
	base := face * 9
	for i := range t {
		put3(dst, base+3*i, t[i])
	}
}

func vec32(v mgl64.Vec3) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}
