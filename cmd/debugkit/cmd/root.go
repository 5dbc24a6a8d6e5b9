package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	noColor   bool
	quiet     bool

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string

	loader *config.Loader
)

var rootCmd = &cobra.Command{
	Use:   "debugkit",
	Short: "Inspect debugkit logs, configuration and benchmarks",
	Long: `debugkit is the host-side companion of the debugkit library. It renders
and validates configuration, reads or follows the log sinks, and runs
commands as benchmark sessions under the fault boundary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// GetVersion returns the application version string.
func GetVersion() string {
	return appVersion
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./.debugkit.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-essential output")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() error {
	loader = config.NewLoaderWithViper(viper.GetViper()).WithConfigFile(cfgFile)
	return nil
}

func currentLoader() *config.Loader {
	if loader == nil {
		_ = initConfig()
	}
	return loader
}

// loadSettings resolves defaults, config file, environment and flags.
func loadSettings() (*config.Settings, error) {
	return currentLoader().LoadSettings()
}

func newLogger() *logging.Logger {
	level := viper.GetString(config.KeyLogLevel)
	if quiet {
		level = "error"
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: viper.GetString(config.KeyLogFormat),
		Output: os.Stderr,
	})
}

func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
