package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/unowned-ai/dump/pkg/config"
)

var forceFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the dump configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long:  `Print the configuration after merging defaults, the config file, DUMP_* environment variables and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a file",
	Long:  `Write the effective configuration to path, or to the default config location when no path is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath()
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return errors.New("no config path given and no default location available")
		}
		if _, err := os.Stat(path); err == nil && !forceFlag {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		if err := cfg.WriteYAML(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
		return nil
	},
}

func initConfigCmd() {
	configInitCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
}
