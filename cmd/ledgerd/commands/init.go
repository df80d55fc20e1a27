package commands

import (
	"github.com/spf13/cobra"

	"github.com/bftledger/ledger/config"
	tmos "github.com/bftledger/ledger/libs/os"
)

// InitFilesCmd initializes a fresh home directory.
func InitFilesCmd(conf *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initializes the home directory and writes the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, conf)
			if err != nil {
				return err
			}

			if err := config.EnsureRoot(conf.RootDir); err != nil {
				return err
			}

			cfgFile := conf.ConfigFile()
			if tmos.FileExists(cfgFile) {
				logger.Info("Found config file", "path", cfgFile)
				return nil
			}
			if err := config.WriteConfigFile(conf.RootDir, conf); err != nil {
				return err
			}
			logger.Info("Generated config file", "path", cfgFile)
			return nil
		},
	}
}
