package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeCreateGeometry = "createGeometry"
	TypeGeometry       = "geometry"
	TypeError          = "error"
)

// Geometry encodings a client may ask for.
const (
	EncodingBinary = "binary"
	EncodingJSON   = "json"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	ID              string `json:"id,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
