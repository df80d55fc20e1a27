package main

import (
	"os"
	"path/filepath"

	"github.com/bftledger/ledger/cmd/ledgerd/commands"
	"github.com/bftledger/ledger/config"
	"github.com/bftledger/ledger/libs/cli"
)

func main() {
	conf := config.DefaultConfig()

	rootCmd := commands.RootCommand(conf)
	rootCmd.AddCommand(
		commands.InitFilesCmd(conf),
		commands.InspectCmd(conf),
		commands.VersionCmd,
	)

	cmd := cli.PrepareBaseCmd(rootCmd, "LEDGER", os.ExpandEnv(filepath.Join("$HOME", config.DefaultLedgerDir)))
	cli.Execute(cmd)
}
