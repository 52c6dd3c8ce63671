package compiler

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional phenix.yaml project file (§1 of SPEC_FULL.md): the
// CLI loads one instead of repeating flags on every invocation, the way
// glint's own commands take flags per-invocation but a project file saves
// re-typing them.
type Config struct {
	// Root is the path to the project's root .phenix schema file.
	Root string `yaml:"root"`
	// OutputDir is where generated Go source is written.
	OutputDir string `yaml:"output_dir"`
	// ImportPath is the Go import path rooted at OutputDir, used to qualify
	// cross-module package imports in generated code.
	ImportPath string `yaml:"import_path"`
	// RootPackage names the Go package generated for the root module.
	RootPackage string `yaml:"root_package"`
}

// LoadConfig reads and parses a phenix.yaml file at path.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating or truncating the file.
func (cfg Config) Save(path string) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
