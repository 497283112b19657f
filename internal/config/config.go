// Package config carries the explicit Context value threaded through
// every pass, per spec.md §9's guidance to prefer explicit passing
// over global state: "Prefer explicit passing of a Context value
// threaded through all passes in the target; the registry is a field
// on that context with clear init/teardown."
package config

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Options is the enumerated set of codegen/driver options from
// spec.md §9.
type Options struct {
	EmitDebugInfo        bool   `yaml:"emit_debug_info"`
	SourceFile           string `yaml:"source_file"`
	CoverageEnabled      bool   `yaml:"coverage_enabled"`
	CoverageQuiet        bool   `yaml:"coverage_quiet"`
	SuiteTestIndex       int    `yaml:"suite_test_index"`
	ForceInternalLinkage bool   `yaml:"force_internal_linkage"`
	OptimizationLevel    int    `yaml:"optimization_level"`
	TargetTriple         string `yaml:"target_triple,omitempty"`
}

// Default returns the zero-value options with the conservative
// defaults the CLI starts from.
func Default() Options {
	return Options{
		OptimizationLevel: 0,
	}
}

// Load reads a project config file (`tmlc.yaml`) and overlays it on
// top of Default(). A missing file is not an error — it just yields
// the defaults, matching the teacher CLI's tolerance for missing
// optional config.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, err
	}
	return opts, nil
}
