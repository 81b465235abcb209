// Package config defines the single configuration record threaded
// explicitly through the explorers, per spec.md §9's design note that
// MaxCxtLen and the feature flags must not be global mutable state.
package config

import (
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config mirrors §6's configuration table.
type Config struct {
	// MaxCxtLen bounds Context length: backward exploration may reach
	// MaxCxtLen+1, forward exploration MaxCxtLen.
	MaxCxtLen int `yaml:"max_context_len"`

	// ReportNumOnly is loaded from the YAML key report_num_only. Nothing in
	// the CLI reads it: the text formatter lists every finding whatever its
	// value, and there is no count-only output mode.
	ReportNumOnly bool `yaml:"report_num_only"`

	// NoCheck, when true, skips the path-condition verifier entirely and
	// reports every syntactic candidate that survives context matching and
	// CFG-reachability filtering.
	NoCheck bool `yaml:"no_check"`

	// NoGlobal, when true, skips intraprocedural value-flow edges that
	// cross function boundaries outside of Call/Ret (global-variable
	// edges).
	NoGlobal bool `yaml:"no_global"`

	// NWorkers is the worker count for batch use across many queries; a
	// single query never uses it (§5: no parallelism inside one query).
	NWorkers int `yaml:"workers"`
}

// Default returns the configuration defaults from §6's table.
func Default() *Config {
	return &Config{
		MaxCxtLen:     3,
		ReportNumOnly: true,
		NoCheck:       false,
		NoGlobal:      false,
		NWorkers:      runtime.NumCPU(),
	}
}

// Load reads a YAML config file and overlays it on Default(). A missing
// path is not an error — the CLI passes whatever --config resolved to, and
// an empty string means "no file, use flag-derived defaults".
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
