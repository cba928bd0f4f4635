// Package catalog holds the built-in narrative script, signal bundles,
// route table and gate bindings.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/DaanHessen/snappr/internal/engine"
)

//go:embed content.yaml
var content []byte

// Load parses the embedded catalog and scales every delay by timeScale.
func Load(timeScale float64) (engine.Catalog, error) {
	c, err := Parse(content)
	if err != nil {
		return engine.Catalog{}, err
	}
	return c.Scaled(timeScale), nil
}

// Parse decodes and validates a catalog document.
func Parse(doc []byte) (engine.Catalog, error) {
	var c engine.Catalog
	if err := yaml.Unmarshal(doc, &c); err != nil {
		return engine.Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return engine.Catalog{}, err
	}
	return c, nil
}
