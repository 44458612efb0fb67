package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	dump "github.com/unowned-ai/dump/pkg"
	"github.com/unowned-ai/dump/pkg/config"
	"github.com/unowned-ai/dump/pkg/logging"
)

var (
	configPath string
	dbPath     string
	walMode    bool
	syncMode   string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "dump",
	Short:   "A personal note store with hierarchical, renameable tags.",
	Long:    `Dump keeps short notes tagged with streams such as {Work/ProjectX}. Streams can be renamed without touching the notes that carry them.`,
	Version: fmt.Sprintf("v%s", dump.Version),
	// Commands print their own errors through main.
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// loadConfig merges defaults, the config file, the environment and finally
// any flags set explicitly on the command line.
func loadConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		loaded.DB.Path = dbPath
	}
	if flags.Changed("wal") {
		loaded.DB.WAL = walMode
	}
	if flags.Changed("sync") {
		loaded.DB.Sync = syncMode
	}
	if flags.Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		loaded.Log.Format = logFormat
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logging.Setup(logging.Config{Level: loaded.Log.Level, Format: loaded.Log.Format, Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	cfg, logger = loaded, l
	return nil
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for dump.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(dump completion bash)

  Zsh:
    $ dump completion zsh > "${fpath[1]}/_dump"

  Fish:
    $ dump completion fish > ~/.config/fish/completions/dump.fish

  PowerShell:
    PS> dump completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	PersistentPreRunE:     func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the version number of dump",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), dump.Version)
	},
}

func initCmd() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML config file (default: $XDG_CONFIG_HOME/dump/config.yaml if present)")
	pf.StringVar(&dbPath, "db", "", "Path to the database file (uses a system-specific default if not provided)")
	pf.BoolVar(&walMode, "wal", false, "Enable SQLite WAL (Write-Ahead Logging) mode")
	pf.StringVar(&syncMode, "sync", config.DefaultSync, "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	pf.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", logging.FormatText, "Log format (text, json)")

	initDBCmd()
	initEntriesCmd()
	initStreamsCmd()
	initServeCmd()
	initConfigCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, configCmd, dbCmd, entriesCmd, streamsCmd, serveCmd, mcpCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
