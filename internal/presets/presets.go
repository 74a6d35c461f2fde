// Package presets loads named planet configs from YAML files and fetches
// preset directories from remote sources.
package presets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	get "github.com/hashicorp/go-getter"
	"gopkg.in/yaml.v3"

	"planetforge.ai/internal/planet"
)

// Preset is a planet config with a name. The config fields sit at the top
// level of the YAML document next to name.
type Preset struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Config      planet.Config `yaml:",inline" json:"config"`

	Digest string `yaml:"-" json:"digest"`
	Raw    []byte `yaml:"-" json:"-"`
}

// LoadFile parses one preset. A missing name falls back to the file name.
func LoadFile(path string, maxDetail int) (Preset, error) {
	var p Preset
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Config.Normalize(maxDetail)
	if err := p.Config.Validate(); err != nil {
		return p, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	sum := sha256.Sum256(raw)
	p.Digest = hex.EncodeToString(sum[:])
	p.Raw = raw
	return p, nil
}

// LoadDir loads every *.yaml / *.yml file in dir, sorted by name.
func LoadDir(dir string, maxDetail int) ([]Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []Preset
	seen := map[string]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		p, err := LoadFile(filepath.Join(dir, e.Name()), maxDetail)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("duplicate preset %q in %s and %s", p.Name, prev, e.Name())
		}
		seen[p.Name] = e.Name()
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func Find(list []Preset, name string) (Preset, bool) {
	for _, p := range list {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Fetch downloads the preset directory at src into dst. src is anything
// go-getter understands (local path, git::, https://...zip, s3::).
// dst must not exist yet.
func Fetch(ctx context.Context, src, dst string) error {
	if strings.TrimSpace(src) == "" {
		return errors.New("empty preset source")
	}
	if dst == "" {
		return errors.New("empty preset destination")
	}
	pwd, err := os.Getwd()
	if err != nil {
		return err
	}
	client := &get.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: get.ClientModeDir,
	}
	if err := client.Get(); err != nil {
		return fmt.Errorf("fetch presets %s: %w", src, err)
	}
	return nil
}
