package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.False(t, exit)

	assert.Empty(t, cfg.ManifestPaths)
	assert.Empty(t, cfg.ListenAddr)
	assert.False(t, cfg.Watch)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseFlagsAndPositionals(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{
		"-manifests", "./agents, ./extra",
		"-listen", ":8080",
		"-watch",
		"-log-format", "JSON",
		"-log-level", "DEBUG",
		"./more",
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"./agents", "./extra", "./more"}, cfg.ManifestPaths)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseHelpExitsCleanly(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseValidation(t *testing.T) {
	cases := map[string][]string{
		"unknown flag":       {"-bogus"},
		"invalid log format": {"-log-format", "xml"},
		"invalid log level":  {"-log-level", "loud"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			_, _, err := Parse(args, &out)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
manifest_paths:
  - ./agents
listen: ":9090"
watch: true
log_format: json
log_level: warn
`), 0o644))

	t.Run("file fills unset values", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-config", path}, &out)
		require.NoError(t, err)

		assert.Equal(t, []string{"./agents"}, cfg.ManifestPaths)
		assert.Equal(t, ":9090", cfg.ListenAddr)
		assert.True(t, cfg.Watch)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("flags override the file", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-config", path, "-listen", ":8080", "-log-level", "error"}, &out)
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.ListenAddr)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("missing file fails", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-config", filepath.Join(t.TempDir(), "none.yaml")}, &out)

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})
}
