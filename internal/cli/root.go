package cli

import (
	"fmt"

	"github.com/dshills/skillscan/internal/config"
	"github.com/dshills/skillscan/internal/logging"
	"github.com/dshills/skillscan/internal/review"
	"github.com/spf13/cobra"
)

// Exit codes returned by Run.
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:   "skillscan",
	Short: "Scan diffs with declarative review skills",
	Long: "skillscan runs YAML-defined skills against unified diffs and reports " +
		"pattern findings with deterministic exit codes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// setupLogging configures the global logger from config, letting
// --log-level win over the file and environment. A broken config file is
// reported by the command itself, so logging falls back to defaults here.
func setupLogging(cmd *cobra.Command) error {
	cfg, err := config.Load(nil)
	if err != nil {
		cfg = config.Default()
	}
	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	return logging.Setup(level, cfg.LogFormat, cmd.ErrOrStderr())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print skillscan version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "skillscan version %s\n", review.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}
