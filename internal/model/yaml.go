package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToYAML encodes the update as a YAML mapping with the same keys as ToJSON.
func (u *Update) ToYAML() ([]byte, error) {
	b, err := yaml.Marshal(u.wire())
	if err != nil {
		return nil, fmt.Errorf("encode update yaml: %w", err)
	}
	return b, nil
}
