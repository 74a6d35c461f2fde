package protocol

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/create_geometry.schema.json
var createGeometrySchemaSrc string

var (
	createGeometryOnce   sync.Once
	createGeometrySchema *jsonschema.Schema
	createGeometryErr    error
)

func compiledCreateGeometry() (*jsonschema.Schema, error) {
	createGeometryOnce.Do(func() {
		createGeometrySchema, createGeometryErr = jsonschema.CompileString("create_geometry.schema.json", createGeometrySchemaSrc)
	})
	return createGeometrySchema, createGeometryErr
}

// CreateGeometrySchema returns the raw JSON schema for createGeometry.
func CreateGeometrySchema() string { return createGeometrySchemaSrc }

// DecodeCreateGeometry validates raw against the createGeometry schema and
// decodes it. Semantic checks (ranges that depend on each other, gradient
// nesting) are left to the config Validate methods.
func DecodeCreateGeometry(raw []byte) (CreateGeometryMsg, error) {
	var msg CreateGeometryMsg
	s, err := compiledCreateGeometry()
	if err != nil {
		return msg, fmt.Errorf("compile schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return msg, fmt.Errorf("bad json: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return msg, fmt.Errorf("schema: %w", err)
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, fmt.Errorf("decode: %w", err)
	}
	if obj, ok := doc.(map[string]any); ok {
		if cfg, ok := obj["data"].(map[string]any); ok {
			_, msg.ScatterSet = cfg["scatter"]
		}
	}
	if msg.Encoding == "" {
		msg.Encoding = EncodingBinary
	}
	if msg.Type != TypeCreateGeometry {
		return msg, errors.New("not a createGeometry message")
	}
	return msg, nil
}
