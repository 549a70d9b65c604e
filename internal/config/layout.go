package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/precip-maps/internal/domain"
)

// LoadLayout returns the built-in layout when path is empty. Otherwise it
// reads a YAML file whose top-level keys (extent, regions, cities) replace
// the corresponding parts of the built-in layout.
func LoadLayout(path string) (domain.Layout, error) {
	layout := domain.DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Layout{}, fmt.Errorf("read layout: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&layout); err != nil && !errors.Is(err, io.EOF) {
		return domain.Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if err := layout.Extent.Validate(); err != nil {
		return domain.Layout{}, fmt.Errorf("layout %s: %w", path, err)
	}
	return layout, nil
}
