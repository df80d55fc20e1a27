package config

import (
	"bytes"
	"path/filepath"
	"text/template"

	tmos "github.com/bftledger/ledger/libs/os"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

var configTemplate *template.Template

func init() {
	var err error
	if configTemplate, err = template.New("configFileTemplate").Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

/****** these are for production settings ***********/

// EnsureRoot creates the root, config, and data directories if they don't exist.
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{
		rootDir,
		filepath.Join(rootDir, defaultConfigDir),
		filepath.Join(rootDir, defaultDataDir),
	} {
		if err := tmos.EnsureDir(dir, defaultDirPerm); err != nil {
			return err
		}
	}
	return nil
}

// WriteConfigFile renders config using the template and writes it to
// the config.toml of rootDir.
// This function is called by cmd/ledgerd/commands/init.go
func WriteConfigFile(rootDir string, config *Config) error {
	return config.WriteToTemplate(filepath.Join(rootDir, defaultConfigFilePath))
}

// WriteToTemplate writes the config to the exact file specified by
// the path, in the default toml template and does not mangle the path
// or filename at all.
func (cfg *Config) WriteToTemplate(path string) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return err
	}

	return tmos.WriteFileAtomic(path, buffer.Bytes(), 0644)
}

// WriteDefaultConfigFileIfNone writes the default config to rootDir unless a
// config file is already there.
func WriteDefaultConfigFileIfNone(rootDir string) error {
	if tmos.FileExists(filepath.Join(rootDir, defaultConfigFilePath)) {
		return nil
	}
	return WriteConfigFile(rootDir, DefaultConfig())
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# NOTE: Any path below can be absolute (e.g. "/var/ledger/data") or
# relative to the home directory (e.g. "data"). The home directory is
# "$HOME/.ledger" by default, but could be changed via $LEDGER_HOME env variable
# or --home cmd flag.

#######################################################################
###                   Main Base Config Options                      ###
#######################################################################

# A custom human readable name for this node
moniker = "{{ .BaseConfig.Moniker }}"

# Database backend: goleveldb | memdb
# * goleveldb (github.com/syndtr/goleveldb through tm-db)
#   - pure go
#   - durable
# * memdb
#   - in memory, everything is lost on exit
db_backend = "{{ .BaseConfig.DBBackend }}"

# Database directory
db_dir = "{{ .BaseConfig.DBPath }}"

# Output level for logging: debug | info | warn | error
log_level = "{{ .BaseConfig.LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log_format = "{{ .BaseConfig.LogFormat }}"

#######################################################
###       Instrumentation Configuration Options     ###
#######################################################
[instrumentation]

# When true, Prometheus metrics are served under /metrics on
# PrometheusListenAddr.
prometheus = {{ .Instrumentation.Prometheus }}

# Address to listen for Prometheus collector(s) connections
prometheus_listen_addr = "{{ .Instrumentation.PrometheusListenAddr }}"

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"
`
