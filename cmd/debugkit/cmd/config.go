package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
)

var (
	configJSON  bool
	configPath  string
	configForce bool
	configUser  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, create or validate the debugkit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	RunE:  runConfigValidate,
}

func init() {
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "output as JSON")
	configInitCmd.Flags().StringVar(&configPath, "path", config.ConfigFileName, "where to write the file")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configUser, "user", false, "write the user-level file in ~/.config/debugkit")

	configCmd.AddCommand(configShowCmd, configInitCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	l := currentLoader()
	cfg, err := l.Load()
	if err != nil {
		return err
	}
	if src := l.ConfigFile(); src != "" && !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "# source: %s\n", src)
	}
	if configJSON {
		return outputJSON(cmd.OutOrStdout(), cfg.Values())
	}
	data, err := config.RenderYAML(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configPath
	if configUser {
		p, err := config.UserConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := config.WriteDefault(path, configForce); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := currentLoader().Load()
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s (got: %v)\n", v.Field, v.Message, v.Value)
			}
		}
		return fmt.Errorf("invalid configuration: %d problem(s)", max(len(verrs), 1))
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
	}
	return nil
}
