// Package config loads the optional project configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
)

// FileName is looked up in the directory of the first schema file and its
// parents.
const FileName = ".structlayout.yaml"

// DefaultSuffix replaces the ".go" extension of a schema file, or the
// "_schema.go" ending if it has one, to name the generated file.
const DefaultSuffix = "_layout.go"

// Config holds generator settings shared by every schema of a project.
type Config struct {
	// Suffix names generated files, e.g. "_layout.go".
	Suffix string `yaml:"suffix"`

	// Jobs bounds the number of schema files processed at once.
	Jobs int `yaml:"jobs"`

	// Header is written at the top of every generated file.
	Header string `yaml:"header"`

	// BuildTag is the build constraint of generated files.
	BuildTag string `yaml:"build_tag"`
}

// Default returns the settings used when no file is found.
func Default() Config {
	return Config{
		Suffix: DefaultSuffix,
		Jobs:   runtime.GOMAXPROCS(0),
	}
}

// Load reads a configuration file. Fields missing from the file keep their
// default values; unknown fields are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse decodes configuration from YAML.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.DisallowUnknownField()); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot produce a valid output file.
func (c *Config) Validate() error {
	if !strings.HasSuffix(c.Suffix, ".go") || c.Suffix == ".go" {
		return fmt.Errorf("invalid config: suffix %q must end in .go and name a different file", c.Suffix)
	}
	if strings.ContainsRune(c.Suffix, filepath.Separator) {
		return fmt.Errorf("invalid config: suffix %q must not contain a path separator", c.Suffix)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("invalid config: jobs must be at least 1, got %d", c.Jobs)
	}
	return nil
}

// Find looks for FileName in dir and its parents. It returns "" if there
// is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
