package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// Parse unmarshals manifest YAML.
func Parse(data []byte) (*UnitManifest, error) {
	var m UnitManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// ParseFile reads and parses the manifest at path.
func ParseFile(fsys afero.Fs, path string) (*UnitManifest, error) {
	data, err := readFile(fsys, path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadDir reads the manifest inside a unit directory.
func LoadDir(fsys afero.Fs, unitDir string) (*UnitManifest, error) {
	return ParseFile(fsys, filepath.Join(unitDir, FileName))
}

// Marshal serializes m to YAML.
func Marshal(m *UnitManifest) ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("serializing manifest: %w", err)
	}
	return data, nil
}

// readFile reads the contents of a file at the given path.
func readFile(fsys afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
