package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// resetCLI restores flag defaults and global viper state between runs of
// the shared root command.
func resetCLI(t *testing.T) {
	t.Helper()
	viper.Reset()
	loader = nil
	resetFlags(rootCmd)
	t.Cleanup(func() {
		viper.Reset()
		loader = nil
		resetFlags(rootCmd)
	})
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and returns what it wrote.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// writeConfig writes a config file into a temp dir whose log paths point
// into that dir, and returns the config path and the dir.
func writeConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	body := "log_path: " + filepath.Join(dir, "debug.log") + "\n" +
		"log_sqlite_path: " + filepath.Join(dir, "debug.db") + "\n" +
		"cli_output: false\n" +
		"crash_dump:\n  dir: " + filepath.Join(dir, "crashdumps") + "\n" +
		extra
	path := filepath.Join(dir, "debugkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path, dir
}
