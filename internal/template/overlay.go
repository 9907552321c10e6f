package template

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overlay is the optional envkeep.yaml document: extra keys for this
// deployment and overrides of documented defaults.
type Overlay struct {
	Keys      []Key             `yaml:"keys"`
	Overrides map[string]string `yaml:"overrides"`
}

// LoadOverlay reads an overlay file. An empty path returns a nil overlay.
func LoadOverlay(path string) (*Overlay, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overlay %s: %w", path, err)
	}
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse overlay %s: %w", path, err)
	}
	for i, k := range o.Keys {
		if k.Name == "" {
			return nil, fmt.Errorf("overlay %s: keys[%d] has no name", path, i)
		}
		if k.Kind == "" {
			o.Keys[i].Kind = KindString
		}
		if o.Keys[i].Section == "" {
			o.Keys[i].Section = "Extra"
		}
	}
	return &o, nil
}

// Apply merges the overlay into a copy of r. Overlay keys replace or extend
// the registry; overrides change defaults of existing keys only.
func (o *Overlay) Apply(r *Registry) (*Registry, error) {
	merged := NewRegistry(r.Keys())
	if o == nil {
		return merged, nil
	}
	for _, k := range o.Keys {
		merged.put(k)
	}
	for name, def := range o.Overrides {
		k, ok := merged.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("override for unknown key %q", name)
		}
		k.Default = def
		merged.put(k)
	}
	return merged, nil
}
