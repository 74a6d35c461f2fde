package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"

	"planetforge.ai/internal/planet"
)

// A binary geometry frame is header JSON + '\n' + payload, where the
// payload is every buffer of planet.Geometry.Buffers as little-endian
// float32, back to back in that order. The whole frame may be zstd
// compressed; decoders detect that by the zstd magic number.

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	frameEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	frameDecoder, _ = zstd.NewReader(nil)
)

// StatsFor builds the client-facing stats of a result.
func StatsFor(res *planet.Result) RunStats {
	veg := make(map[string]int, len(res.Geometry.Vegetation))
	for name, pts := range res.Geometry.Vegetation {
		veg[name] = len(pts)
	}
	return RunStats{
		Detail:     res.Stats.Detail,
		Faces:      res.Stats.Faces,
		Vegetation: veg,
		Bytes:      res.Stats.Bytes,
		DurationMS: res.Stats.Duration.Milliseconds(),
	}
}

func NewGeometryMsg(id string, res *planet.Result) GeometryMsg {
	return GeometryMsg{
		Type:            TypeGeometry,
		ProtocolVersion: Version,
		ID:              id,
		Stats:           StatsFor(res),
		Geometry:        res.Geometry,
	}
}

// EncodeGeometryFrame packs a result into one binary frame.
func EncodeGeometryFrame(id string, res *planet.Result, compress bool) ([]byte, error) {
	if res == nil || res.Geometry == nil {
		return nil, errors.New("nil geometry")
	}
	g := res.Geometry
	hdr := GeometryHeader{
		Type:            TypeGeometry,
		ProtocolVersion: Version,
		ID:              id,
		Stats:           StatsFor(res),
		Vegetation:      g.Vegetation,
	}
	total := 0
	for _, b := range g.Buffers() {
		hdr.Buffers = append(hdr.Buffers, BufferRef{Name: b.Name, Offset: total, Count: len(b.Data)})
		total += len(b.Data)
	}
	line, err := json.Marshal(hdr)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, 0, len(line)+1+4*total)
	raw = append(raw, line...)
	raw = append(raw, '\n')
	for _, b := range g.Buffers() {
		for _, f := range b.Data {
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(f))
		}
	}
	if !compress {
		return raw, nil
	}
	return frameEncoder.EncodeAll(raw, nil), nil
}

// DecodeGeometryFrame reverses EncodeGeometryFrame.
func DecodeGeometryFrame(frame []byte) (GeometryHeader, *planet.Geometry, error) {
	var hdr GeometryHeader
	raw := frame
	if bytes.HasPrefix(frame, zstdMagic) {
		var err error
		if raw, err = frameDecoder.DecodeAll(frame, nil); err != nil {
			return hdr, nil, fmt.Errorf("zstd: %w", err)
		}
	}
	nl := bytes.IndexByte(raw, '\n')
	if nl < 0 {
		return hdr, nil, errors.New("missing header line")
	}
	if err := json.Unmarshal(raw[:nl], &hdr); err != nil {
		return hdr, nil, fmt.Errorf("header: %w", err)
	}
	if hdr.Type != TypeGeometry {
		return hdr, nil, fmt.Errorf("unexpected frame type %q", hdr.Type)
	}
	payload := raw[nl+1:]
	if len(payload)%4 != 0 {
		return hdr, nil, errors.New("payload not float32 aligned")
	}
	floats := len(payload) / 4

	g := &planet.Geometry{Vegetation: hdr.Vegetation}
	dst := map[string]*[]float32{
		"positions":           &g.Positions,
		"colors":              &g.Colors,
		"normals":             &g.Normals,
		"oceanPositions":      &g.OceanPositions,
		"oceanColors":         &g.OceanColors,
		"oceanNormals":        &g.OceanNormals,
		"oceanMorphPositions": &g.OceanMorphPositions,
		"oceanMorphNormals":   &g.OceanMorphNormals,
	}
	for _, ref := range hdr.Buffers {
		p, ok := dst[ref.Name]
		if !ok {
			continue
		}
		if ref.Offset < 0 || ref.Count < 0 || ref.Offset+ref.Count > floats {
			return hdr, nil, fmt.Errorf("buffer %s out of range", ref.Name)
		}
		buf := make([]float32, ref.Count)
		for i := range buf {
			at := 4 * (ref.Offset + i)
			buf[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[at:]))
		}
		*p = buf
	}
	if g.Vegetation == nil {
		g.Vegetation = map[string][][3]float32{}
	}
	return hdr, g, nil
}
