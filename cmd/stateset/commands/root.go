// Package commands implements the stateset CLI command tree.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stateset/stateset/internal/config"
	sserrors "github.com/stateset/stateset/internal/errors"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stateset",
	Short: "Manage the lifecycle of your organization's configuration state",
	Long: `stateset captures point-in-time snapshots of your organization's
configuration (agents, rules, skills, functions, examples, evals,
datasets, settings), compares any two snapshots or a snapshot against
live state, and promotes snapshots into the live environment through a
controlled, auditable deployment workflow.

Common workflows:
  stateset snapshot create          # capture live state locally
  stateset diff                     # compare the two newest snapshots
  stateset diff prod-v1 current     # compare a snapshot against live state
  stateset deploy prod-v1 --yes     # promote a snapshot
  stateset watch ./state --once     # one-shot directory sync`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the CLI and exits with an error-type-specific code on
// failure. The exit happens here, after every RunE deferred cleanup has
// run.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errChangesDetected) {
			// git diff semantics: changes are a status, not an error.
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(sserrors.GetExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.stateset/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.AddCommand(newSnapshotCommand())
	rootCmd.AddCommand(newDiffCommand())
	rootCmd.AddCommand(newDeployCommand())
	rootCmd.AddCommand(newRollbackCommand())
	rootCmd.AddCommand(newDeploymentsCommand())
	rootCmd.AddCommand(newPullCommand())
	rootCmd.AddCommand(newPushCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newVersionCommand())
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return nil
}
