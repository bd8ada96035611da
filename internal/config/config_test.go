package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apidoc/internal/diag"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("Missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), DefaultPath))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		lvl, err := cfg.ThrowLevel()
		require.NoError(t, err)
		assert.Equal(t, diag.ThrowError, lvl)
	})

	t.Run("YAML", func(t *testing.T) {
		p := writeConfig(t, "apidoc.yaml", `
project:
  root: ./src
  exclude: [gen/]
  git: true
build:
  throw_level: warn
  verbose: true
  openapi_version: 3.1.0
output:
  path: docs/openapi.yaml
`)
		cfg, err := LoadConfig(p)
		require.NoError(t, err)
		assert.Equal(t, "./src", cfg.Project.Root)
		assert.Equal(t, []string{"gen/"}, cfg.Project.Exclude)
		assert.True(t, cfg.Project.Git)
		assert.True(t, cfg.Build.Verbose)
		assert.Equal(t, "3.1.0", cfg.Build.OpenAPIVersion)
		assert.Equal(t, "docs/openapi.yaml", cfg.Output.Path)
		lvl, err := cfg.ThrowLevel()
		require.NoError(t, err)
		assert.Equal(t, diag.ThrowWarn, lvl)
	})

	t.Run("TOML", func(t *testing.T) {
		p := writeConfig(t, "apidoc.toml", `
[project]
include = ["api", "web/*.ts"]
jobs = 4

[build]
throw_level = "never"

[output]
format = "yaml"
`)
		cfg, err := LoadConfig(p)
		require.NoError(t, err)
		assert.Equal(t, ".", cfg.Project.Root, "defaults survive")
		assert.Equal(t, []string{"api", "web/*.ts"}, cfg.Project.Include)
		assert.Equal(t, 4, cfg.Project.Jobs)
		assert.Equal(t, "never", cfg.Build.ThrowLevel)
		assert.Equal(t, "yaml", cfg.Output.Format)
		assert.Equal(t, "openapi.json", cfg.Output.Path)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		p := writeConfig(t, "apidoc.yaml", "build:\n  throw_level: warn\n")
		t.Setenv("APIDOC_ROOT", "/srv/app")
		t.Setenv("APIDOC_THROW_LEVEL", "info")
		t.Setenv("APIDOC_VERBOSE", "true")
		t.Setenv("APIDOC_OUTPUT", "out.yaml")

		cfg, err := LoadConfig(p)
		require.NoError(t, err)
		assert.Equal(t, "/srv/app", cfg.Project.Root)
		assert.Equal(t, "info", cfg.Build.ThrowLevel)
		assert.True(t, cfg.Build.Verbose)
		assert.Equal(t, "out.yaml", cfg.Output.Path)
	})

	t.Run("Dotenv", func(t *testing.T) {
		require.NoError(t, os.WriteFile(".env", []byte("APIDOC_OUTPUT=from-dotenv.json\n"), 0o644))
		t.Cleanup(func() {
			os.Remove(".env")
			os.Unsetenv("APIDOC_OUTPUT")
		})

		cfg, err := LoadConfig(DefaultPath)
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv.json", cfg.Output.Path)
	})

	t.Run("Invalid values", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "apidoc.yaml", "build:\n  throw_level: loud\n"))
		assert.ErrorContains(t, err, "invalid throw level")

		_, err = LoadConfig(writeConfig(t, "apidoc.yaml", "project: [\n"))
		assert.ErrorContains(t, err, "failed to parse config")

		t.Setenv("APIDOC_VERBOSE", "sometimes")
		_, err = LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
		assert.ErrorContains(t, err, "APIDOC_VERBOSE")
	})
}
