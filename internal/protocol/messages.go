package protocol

import "planetforge.ai/internal/planet"

// createGeometry (client -> worker)
type CreateGeometryMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version,omitempty"`
	ID              string        `json:"id,omitempty"`
	Encoding        string        `json:"encoding,omitempty"` // binary (default) | json
	Config          planet.Config `json:"data"`

	// ScatterSet reports whether data.scatter was present on the wire.
	ScatterSet bool `json:"-"`
}

// RunStats summarizes one generation for the client.
type RunStats struct {
	Detail     int            `json:"detail"`
	Faces      int            `json:"faces"`
	Vegetation map[string]int `json:"vegetation"`
	Bytes      int            `json:"bytes"`
	DurationMS int64          `json:"duration_ms"`
}

// geometry (worker -> client), JSON encoding.
type GeometryMsg struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	ID              string           `json:"id"`
	Stats           RunStats         `json:"stats"`
	Geometry        *planet.Geometry `json:"data"`
}

// BufferRef locates one float32 buffer inside a binary geometry frame.
// Offset and Count are in float32 elements from the start of the payload.
type BufferRef struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Count  int    `json:"count"`
}

// GeometryHeader is the first line of a binary geometry frame.
type GeometryHeader struct {
	Type            string                  `json:"type"`
	ProtocolVersion string                  `json:"protocol_version"`
	ID              string                  `json:"id"`
	Stats           RunStats                `json:"stats"`
	Buffers         []BufferRef             `json:"buffers"`
	Vegetation      map[string][][3]float32 `json:"vegetation"`
}

// error (worker -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"error"`
}

func NewError(id, code, message string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, ID: id, Code: code, Message: message}
}
