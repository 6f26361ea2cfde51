// Package config loads the optional ".compluarc.yaml" project marker
// (SPEC_FULL.md §2.3), supplying defaults for flags the CLI does not
// receive explicitly.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// FileName is the project-marker config file name, searched for upward
// from the input file's directory.
const FileName = ".compluarc.yaml"

// Config holds CLI-flag defaults. Zero values mean "not set"; the CLI only
// applies a field when the corresponding flag was not passed explicitly.
type Config struct {
	Output      string `yaml:"output"`
	Debug       bool   `yaml:"debug"`
	Interpreter string `yaml:"interpreter"`
}

// DefaultInterpreter is used when neither the config nor any flag names
// one (spec.md §6: "invoked as `luajit <scratch-file>`").
const DefaultInterpreter = "luajit"

// Load walks upward from startDir looking for FileName, stopping at the
// first match or the filesystem root. It returns a zero Config, not an
// error, if no file is found — the config file is optional.
func Load(startDir string) (Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Config{}, err
	}

	for {
		path := filepath.Join(dir, FileName)
		data, err := os.ReadFile(path)
		if err == nil {
			var cfg Config
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, err
			}
			return cfg, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Config{}, nil
		}
		dir = parent
	}
}
