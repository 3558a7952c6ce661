// =============================================================================
// Sales Aggregator - Root Command
// =============================================================================
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesagg)
//   ├── aggregateCmd (salesagg aggregate <dir>)
//   └── versionCmd   (salesagg version)
//
// The root command owns the global flags, loads the configuration and
// builds the logger before any subcommand runs.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig and appLogger are set by loadRuntime.
var (
	appConfig *config.MainConfig
	appLogger *logger.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesagg",
	Short: "Sales Aggregator - total sales record files per branch and commodity",
	Long: `Sales Aggregator reads the branch and commodity definition files and the
numbered sales record files of a directory, validates every file, and writes
one summary file per dimension with the total sales of every entity.

Any validation failure aborts the run before a summary file is written.

Example Usage:
  salesagg aggregate ./sales                 # Total ./sales
  salesagg aggregate ./sales --dry-run       # Validate and show totals only
  salesagg aggregate ./sales --config my.yaml`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command and exits non-zero on failure. Failures are
// reported to the user on stdout as a single message line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.OutOrStdout(), userMessage(err))
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"salesagg.yaml",
		"Path to the configuration file; built-in defaults are used if the default file is absent",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// loadRuntime loads the configuration and builds the logger.
//
// CONFIGURATION ORDER:
//   1. .env in the working directory, if present (populates the environment)
//   2. --config file; a missing default file means built-in defaults
//   3. SALESAGG_LOG_* environment overrides
//   4. --verbose
func loadRuntime(cmd *cobra.Command, fs afero.Fs) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	var err error
	if cmd.Flags().Changed("config") {
		appConfig, err = config.LoadMainConfig(fs, cfgFile)
	} else {
		appConfig, err = config.LoadOrDefault(fs, cfgFile)
	}
	if err != nil {
		return err
	}

	if err := config.ApplyEnvOverrides(appConfig, os.LookupEnv); err != nil {
		return err
	}
	if verbose {
		appConfig.LogLevel = "debug"
	}

	appLogger, err = logger.New(appConfig.LogMode, appConfig.LogLevel)
	if err != nil {
		return err
	}
	return nil
}
