package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitEnvCopiesUnseparatedVars(t *testing.T) {
	viper.Reset()
	t.Setenv("DEMOHOME", "/tmp/demo")
	t.Setenv("DEMO_HOME", "")

	InitEnv("demo")
	assert.Equal(t, "/tmp/demo", os.Getenv("DEMO_HOME"))
	assert.Equal(t, "/tmp/demo", viper.GetString("home"))
}

func TestConcatCobraCmdFuncsStopsOnError(t *testing.T) {
	var calls []string
	fail := errors.New("fail")
	fn := concatCobraCmdFuncs(
		func(*cobra.Command, []string) error { calls = append(calls, "a"); return nil },
		nil,
		func(*cobra.Command, []string) error { calls = append(calls, "b"); return fail },
		func(*cobra.Command, []string) error { calls = append(calls, "c"); return nil },
	)
	assert.ErrorIs(t, fn(nil, nil), fail)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestPrepareBaseCmdLoadsConfigFile(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(home, "config", "config.toml"), []byte("moniker = \"alpha\"\n"), 0600))

	var moniker, seenHome string
	cmd := &cobra.Command{
		Use: "demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			moniker = viper.GetString("moniker")
			seenHome = viper.GetString(HomeFlag)
			return nil
		},
	}
	PrepareBaseCmd(cmd, "DEMO", filepath.Join(home, "unused"))
	cmd.SetArgs([]string{"--home", home})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, home, seenHome)
	assert.Equal(t, "alpha", moniker)
}

func TestPrepareBaseCmdMissingConfigFile(t *testing.T) {
	viper.Reset()
	cmd := &cobra.Command{Use: "demo", RunE: func(*cobra.Command, []string) error { return nil }}
	PrepareBaseCmd(cmd, "DEMO", t.TempDir())
	cmd.SetArgs(nil)
	assert.NoError(t, cmd.Execute())
}
