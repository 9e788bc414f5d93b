package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ResourceProfile overrides or extends the built-in resource table.
// The upstream API variants disagree on envelope shapes and delete verbs, so
// each deployment can describe its own in YAML:
//
//	resources:
//	  - name: appointments
//	    list_key: data
//	    delete: verb
//	  - name: services
//	    list_key: .
//	  - name: rooms
//	    path: /rooms
//	    list_key: data.rooms
//	    item_key: data.room
type ResourceProfile struct {
	Resources []ResourceOverride `yaml:"resources" validate:"dive"`
}

// ResourceOverride is one entry of a ResourceProfile. Empty fields keep the
// built-in value for known resources; a key of "." selects the whole body.
type ResourceOverride struct {
	Name         string `yaml:"name" validate:"required"`
	Path         string `yaml:"path" validate:"omitempty,startswith=/"`
	ListKey      string `yaml:"list_key"`
	ItemKey      string `yaml:"item_key"`
	Delete       string `yaml:"delete" validate:"omitempty,oneof=post_path verb"`
	UpdateMethod string `yaml:"update_method" validate:"omitempty,oneof=POST PUT"`
}

// LoadProfile reads and validates a resource profile file.
func LoadProfile(path string) (*ResourceProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resource profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a YAML resource profile.
func ParseProfile(data []byte) (*ResourceProfile, error) {
	var p ResourceProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode resource profile: %w", err)
	}

	if err := validator.New().Struct(p); err != nil {
		return nil, fmt.Errorf("resource profile validation: %w", err)
	}

	seen := make(map[string]bool, len(p.Resources))
	for _, r := range p.Resources {
		if seen[r.Name] {
			return nil, fmt.Errorf("resource profile: duplicate resource %q", r.Name)
		}
		seen[r.Name] = true
	}

	return &p, nil
}
