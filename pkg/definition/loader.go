package definition

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a JSON or YAML definition and normalizes it. source names
// the payload in error messages.
func Parse(data []byte, source string) (Definition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Definition{}, fmt.Errorf("definition: %s is empty", source)
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		def = Definition{}
		if yamlErr := yaml.Unmarshal(data, &def); yamlErr != nil {
			return Definition{}, fmt.Errorf("definition: parse %s: invalid JSON or YAML: %w", source, yamlErr)
		}
	}

	normalized, err := Normalize(def)
	if err != nil {
		return Definition{}, fmt.Errorf("definition: %s: %w", source, err)
	}
	return normalized, nil
}

// LoadFS reads and parses path from fsys.
func LoadFS(fsys fs.FS, path string) (Definition, error) {
	if fsys == nil {
		return Definition{}, fmt.Errorf("definition: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Definition{}, fmt.Errorf("definition: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFile reads and parses a definition from disk.
func LoadFile(path string) (Definition, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Definition{}, fmt.Errorf("definition: read %s: %w", path, err)
	}
	return Parse(data, path)
}
