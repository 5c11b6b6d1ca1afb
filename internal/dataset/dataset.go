// Package dataset reads and writes JSON or YAML dataset files. The codec is
// picked from the file extension: .yaml and .yml use YAML, anything else JSON.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// IsYAML reports whether path names a YAML file.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// ReadFile decodes the file at path into target.
func ReadFile(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := Decode(file, IsYAML(path), target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Decode reads one document from r.
func Decode(r io.Reader, asYAML bool, target any) error {
	if asYAML {
		return yaml.NewDecoder(r).Decode(target)
	}
	return json.NewDecoder(r).Decode(target)
}

// WriteFile encodes data into the file at path, creating parent directories.
func WriteFile(path string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := Encode(file, IsYAML(path), data); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// Encode writes data to w as indented JSON or YAML.
func Encode(w io.Writer, asYAML bool, data any) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
