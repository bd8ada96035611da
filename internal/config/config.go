package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"apidoc/internal/diag"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "apidoc.yaml"

type Config struct {
	Project struct {
		Root    string   `yaml:"root" toml:"root"`
		Include []string `yaml:"include" toml:"include"`
		Exclude []string `yaml:"exclude" toml:"exclude"`
		Git     bool     `yaml:"git" toml:"git"` // list files with git ls-files instead of walking
		Jobs    int      `yaml:"jobs" toml:"jobs"`
	} `yaml:"project" toml:"project"`
	Build struct {
		ThrowLevel     string `yaml:"throw_level" toml:"throw_level"`
		Verbose        bool   `yaml:"verbose" toml:"verbose"`
		OpenAPIVersion string `yaml:"openapi_version" toml:"openapi_version"`
	} `yaml:"build" toml:"build"`
	Output struct {
		Path   string `yaml:"path" toml:"path"`
		Format string `yaml:"format" toml:"format"` // json or yaml; empty follows the path extension
	} `yaml:"output" toml:"output"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Build.ThrowLevel = "error"
	cfg.Output.Path = "openapi.json"
	return &cfg
}

// LoadConfig reads a YAML or TOML file (chosen by extension) over the
// defaults, then applies APIDOC_* environment variables. A missing file is
// not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load config file
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := decode(path, file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if root := os.Getenv("APIDOC_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if level := os.Getenv("APIDOC_THROW_LEVEL"); level != "" {
		cfg.Build.ThrowLevel = level
	}
	if v := os.Getenv("APIDOC_VERBOSE"); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid APIDOC_VERBOSE %q: %w", v, err)
		}
		cfg.Build.Verbose = verbose
	}
	if out := os.Getenv("APIDOC_OUTPUT"); out != "" {
		cfg.Output.Path = out
	}

	if _, err := cfg.ThrowLevel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// ThrowLevel parses Build.ThrowLevel.
func (c *Config) ThrowLevel() (diag.ThrowLevel, error) {
	return diag.ParseThrowLevel(c.Build.ThrowLevel)
}
