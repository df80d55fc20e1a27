package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bftledger/ledger/internal/storage"
)

func TestDefaultConfig(t *testing.T) {
	assert := assert.New(t)

	// set up some defaults
	cfg := DefaultConfig()
	assert.NotNil(cfg.Instrumentation)

	// check the root dir stuff...
	cfg.SetRoot("/foo")
	assert.Equal("/foo/data", cfg.DBDir())
	assert.Equal("/foo/config/config.toml", cfg.ConfigFile())

	cfg.DBPath = "/opt/data"
	assert.Equal("/opt/data", cfg.DBDir())
}

func TestConfigValidateBasic(t *testing.T) {
	testCases := map[string]func(*Config){
		"log format": func(cfg *Config) { cfg.LogFormat = "invalid" },
		"log level":  func(cfg *Config) { cfg.LogLevel = "loud" },
		"db backend": func(cfg *Config) { cfg.DBBackend = "cleveldb" },
		"namespace":  func(cfg *Config) { cfg.Instrumentation.Namespace = "" },
		"metrics addr": func(cfg *Config) {
			cfg.Instrumentation.Prometheus = true
			cfg.Instrumentation.PrometheusListenAddr = ""
		},
	}
	for name, tamper := range testCases {
		tamper := tamper
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			require.NoError(t, cfg.ValidateBasic())
			tamper(cfg)
			assert.Error(t, cfg.ValidateBasic())
		})
	}
}

func TestDefaultDBProvider(t *testing.T) {
	cfg := TestConfig().SetRoot(t.TempDir())

	db, err := DefaultDBProvider(&DBContext{ID: "blockchain", Config: cfg})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryDB{}, db)
	require.NoError(t, db.Close())

	cfg.DBBackend = string(storage.GoLevelDBBackend)
	db, err = DefaultDBProvider(&DBContext{ID: "blockchain", Config: cfg})
	require.NoError(t, err)
	assert.IsType(t, &storage.LevelDB{}, db)
	require.NoError(t, db.Close())
	assert.DirExists(t, cfg.DBDir())
}
