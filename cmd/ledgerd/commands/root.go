package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bftledger/ledger/config"
	"github.com/bftledger/ledger/libs/log"
)

// ParseConfig unmarshals the flags, environment and config file collected by
// viper into conf and validates the result.
func ParseConfig(conf *config.Config) (*config.Config, error) {
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}

	conf.SetRoot(conf.RootDir)

	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCommand constructs the root command-line entry point of the ledger
// node. The caller wires --home and the config file through
// cli.PrepareBaseCmd.
func RootCommand(conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledgerd",
		Short: "Catch-up and storage tooling for a BFT ledger node",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == VersionCmd.Name() {
				return nil
			}
			pconf, err := ParseConfig(conf)
			if err != nil {
				return err
			}
			*conf = *pconf
			return nil
		},
	}
	cmd.PersistentFlags().String("log_level", conf.LogLevel, "log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("log_format", conf.LogFormat, "log format (plain|json)")
	return cmd
}

// newLogger returns a logger writing to the command's error stream.
func newLogger(cmd *cobra.Command, conf *config.Config) (log.Logger, error) {
	logger, err := log.NewLogger(cmd.ErrOrStderr(), conf.LogFormat, conf.LogLevel)
	if err != nil {
		return nil, err
	}
	return logger.With("module", "main"), nil
}
