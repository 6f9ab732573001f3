// Package config defines the runner's configuration surface: CLI flags
// (spec §6) plus an optional YAML config file merged in before flags are
// applied, so flags always win over the file (spec_full.md "Configuration").
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is populated by the CLI from flags, optionally seeded first from
// a YAML file.
type Config struct {
	Jobs         int      `yaml:"jobs"`
	BuildDir     string   `yaml:"build_dir"`
	TempDir      string   `yaml:"temp_dir"`
	CppCompiler  string   `yaml:"cpp_compiler"`
	TargetTriple string   `yaml:"target_triple"`
	HideReasons  bool     `yaml:"hide_reasons"`
	Paths        []string `yaml:"paths"`
}

// Default returns the baseline values the CLI overlays flags onto.
func Default() Config {
	return Config{
		Jobs:        1,
		BuildDir:    "build",
		TempDir:     os.TempDir(),
		CppCompiler: "clang++",
	}
}

// LoadFile reads and decodes a YAML config file, merging it onto base.
// Zero-valued fields in the file leave base's value untouched, matching
// the "file supplies defaults, flags win" rule.
func LoadFile(path string, base Config) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fromFile Config

	err = yaml.Unmarshal(b, &fromFile)
	if err != nil {
		return base, fmt.Errorf("config: parse %s: %w", path, err)
	}

	merged := base
	if fromFile.Jobs != 0 {
		merged.Jobs = fromFile.Jobs
	}
	if fromFile.BuildDir != "" {
		merged.BuildDir = fromFile.BuildDir
	}
	if fromFile.TempDir != "" {
		merged.TempDir = fromFile.TempDir
	}
	if fromFile.CppCompiler != "" {
		merged.CppCompiler = fromFile.CppCompiler
	}
	if fromFile.TargetTriple != "" {
		merged.TargetTriple = fromFile.TargetTriple
	}
	if fromFile.HideReasons {
		merged.HideReasons = true
	}
	if len(fromFile.Paths) > 0 {
		merged.Paths = fromFile.Paths
	}

	return merged, nil
}
