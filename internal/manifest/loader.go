package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Marshal encodes m as YAML.
//
// Postcondition: Returns the YAML document or a non-nil error.
func Marshal(m *ManifestData) ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("serialising manifest %q: %w", m.Tileset.ID, err)
	}
	return data, nil
}

// LoadFromBytes parses and validates a manifest from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the manifest schema.
// Postcondition: Returns a validated ManifestData or a non-nil error.
func LoadFromBytes(data []byte) (*ManifestData, error) {
	var m ManifestData
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}
	return &m, nil
}

// LoadFromFile reads and validates a single manifest YAML file.
//
// Precondition: path must point to a manifest YAML file.
// Postcondition: Returns a validated ManifestData or a non-nil error.
func LoadFromFile(path string) (*ManifestData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}
