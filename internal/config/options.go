package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options is the subset of spec §6's analysis options that matter
// outside the core itself — internal/expand.Options carries only
// MaxRefinementPasses across the package boundary, and the other fields
// are loaded but not read anywhere in this module.
type Options struct {
	// MaxRefinementPasses bounds the expander's improve loop (spec §4.I).
	MaxRefinementPasses int `yaml:"max_refinement_passes"`

	// Relationalize is loaded from ground.yaml (spec §6); nothing in
	// this module reads it, so the pipeline runs the query expander
	// whatever its value.
	Relationalize bool `yaml:"relationalize"`

	// MatchCoverage is loaded from ground.yaml; nothing in this module
	// reads it, and internal/match performs no coverage check.
	MatchCoverage bool `yaml:"match_coverage"`

	// HybridBackend is an escape hatch for a future non-relational
	// execution backend; unused by this module's pipeline today.
	HybridBackend bool `yaml:"hybrid_backend"`
}

// Default matches spec §6's documented defaults.
func Default() Options {
	return Options{
		MaxRefinementPasses: 3,
		Relationalize:       true,
		MatchCoverage:       true,
		HybridBackend:       false,
	}
}

// Load reads and parses a ground.yaml file, applying Default for any
// field the file omits.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses ground.yaml content from bytes. path is used only for
// error messages.
func Parse(data []byte, path string) (Options, error) {
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return opts, nil
}
