// Package seed loads the initial employee directory and project list.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"engboard/internal/models"
)

// File is the on-disk seed document.
type File struct {
	Employees []models.Employee `yaml:"employees"`
	Projects  []models.Project  `yaml:"projects"`
}

// Load reads a seed document from path. An empty path yields an empty File.
func Load(path string) (File, error) {
	if path == "" {
		return File{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read seed file: %w", err)
	}
	f, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return File{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return f, nil
}

// Decode parses a seed document and rejects unknown keys.
func Decode(r io.Reader) (File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("decode seed: %w", err)
	}
	for i, e := range f.Employees {
		if e.ID == "" {
			return File{}, fmt.Errorf("employee %d has no id: %w", i, models.ErrInvalid)
		}
		if !e.Role.Valid() {
			return File{}, fmt.Errorf("employee %q has unknown role %q: %w", e.ID, e.Role, models.ErrInvalid)
		}
	}
	for i, p := range f.Projects {
		if p.Name == "" {
			return File{}, fmt.Errorf("project %d has no name: %w", i, models.ErrInvalid)
		}
	}
	return f, nil
}
