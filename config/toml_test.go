package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRoot(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureRoot(tmpDir))
	require.NoError(t, WriteDefaultConfigFileIfNone(tmpDir))

	assert.DirExists(t, filepath.Join(tmpDir, "data"))
	assert.FileExists(t, filepath.Join(tmpDir, "config", "config.toml"))

	// An existing file is left alone.
	path := filepath.Join(tmpDir, "config", "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("moniker = \"mine\"\n"), 0644))
	require.NoError(t, WriteDefaultConfigFileIfNone(tmpDir))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "moniker = \"mine\"\n", string(data))
}

// fileConfig mirrors the layout of config.toml.
type fileConfig struct {
	Moniker         string `toml:"moniker"`
	DBBackend       string `toml:"db_backend"`
	DBDir           string `toml:"db_dir"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
	Instrumentation struct {
		Prometheus           bool   `toml:"prometheus"`
		PrometheusListenAddr string `toml:"prometheus_listen_addr"`
		Namespace            string `toml:"namespace"`
	} `toml:"instrumentation"`
}

func TestConfigTemplateParses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Moniker = "node-3"
	cfg.LogFormat = "json"
	cfg.Instrumentation.Prometheus = true

	rootDir := t.TempDir()
	require.NoError(t, EnsureRoot(rootDir))
	require.NoError(t, WriteConfigFile(rootDir, cfg))

	var parsed fileConfig
	meta, err := toml.DecodeFile(filepath.Join(rootDir, "config", "config.toml"), &parsed)
	require.NoError(t, err)
	assert.Empty(t, meta.Undecoded())

	assert.Equal(t, "node-3", parsed.Moniker)
	assert.Equal(t, cfg.DBBackend, parsed.DBBackend)
	assert.Equal(t, cfg.DBPath, parsed.DBDir)
	assert.Equal(t, cfg.LogLevel, parsed.LogLevel)
	assert.Equal(t, "json", parsed.LogFormat)
	assert.True(t, parsed.Instrumentation.Prometheus)
	assert.Equal(t, ":26660", parsed.Instrumentation.PrometheusListenAddr)
	assert.Equal(t, "ledger", parsed.Instrumentation.Namespace)
}
