// Package tuning loads server-side limits and generation defaults.
package tuning

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"planetforge.ai/internal/mesh/icosphere"
)

type Tuning struct {
	MaxDetail      int     `yaml:"max_detail" json:"max_detail"`
	DefaultScatter float64 `yaml:"default_scatter" json:"default_scatter"`
	Parallelism    int     `yaml:"parallelism" json:"parallelism"`
	// LogVerbosity: 0 quiet, 1 per-run summary, 2 per-pass timings.
	LogVerbosity int `yaml:"log_verbosity" json:"log_verbosity"`

	MaxMessageBytes  int64 `yaml:"max_message_bytes" json:"max_message_bytes"`
	ReadTimeoutMs    int   `yaml:"read_timeout_ms" json:"read_timeout_ms"`
	WriteTimeoutMs   int   `yaml:"write_timeout_ms" json:"write_timeout_ms"`
	CompressGeometry bool  `yaml:"compress_geometry" json:"compress_geometry"`
}

func Defaults() Tuning {
	return Tuning{
		MaxDetail:        icosphere.MaxDepth,
		DefaultScatter:   0.3,
		Parallelism:      0,
		LogVerbosity:     1,
		MaxMessageBytes:  1 << 20,
		ReadTimeoutMs:    60_000,
		WriteTimeoutMs:   10_000,
		CompressGeometry: true,
	}
}

// Load reads path over Defaults. An empty path returns the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t *Tuning) Normalize() {
	if t.MaxDetail <= 0 || t.MaxDetail > icosphere.MaxDepth {
		t.MaxDetail = icosphere.MaxDepth
	}
	if t.MaxMessageBytes <= 0 {
		t.MaxMessageBytes = 1 << 20
	}
	if t.ReadTimeoutMs <= 0 {
		t.ReadTimeoutMs = 60_000
	}
	if t.WriteTimeoutMs <= 0 {
		t.WriteTimeoutMs = 10_000
	}
}

func (t Tuning) Validate() error {
	if t.DefaultScatter < 0 {
		return errors.New("default_scatter must be >= 0")
	}
	if t.Parallelism < 0 {
		return errors.New("parallelism must be >= 0")
	}
	if t.LogVerbosity < 0 || t.LogVerbosity > 2 {
		return errors.New("log_verbosity must be in [0,2]")
	}
	return nil
}

func (t Tuning) ReadTimeout() time.Duration {
	return time.Duration(t.ReadTimeoutMs) * time.Millisecond
}

func (t Tuning) WriteTimeout() time.Duration {
	return time.Duration(t.WriteTimeoutMs) * time.Millisecond
}
