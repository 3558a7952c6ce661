// =============================================================================
// Sales Aggregator - Aggregate Command
// =============================================================================
//
// COMMAND USAGE:
//   salesagg aggregate <dir> [flags]
//
// FLAGS:
//   --dry-run : Run every check and print the totals without writing files
//
// Exactly one directory argument is accepted; anything else is reported with
// the generic unexpected-error message, like every other unclassified fault.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/ginjaninja78/sales-aggregator/internal/apperr"
	"github.com/ginjaninja78/sales-aggregator/internal/pipeline"
	"github.com/ginjaninja78/sales-aggregator/internal/summarywriter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// dryRun skips writing summary files.
var dryRun bool

// aggregateCmd represents the 'aggregate' command.
var aggregateCmd = &cobra.Command{
	Use:   "aggregate <dir>",
	Short: "Validate the sales files in <dir> and write branch/commodity totals",
	Long: `The aggregate command loads the definition files of <dir>, checks that the
record files are numbered without gaps, validates and totals every record
file in order, and writes one summary file per dimension into <dir>.

The first problem found stops the run and nothing is written.`,

	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return apperr.Unexpected(fmt.Errorf("expected exactly one directory argument, got %d", len(args)))
		}
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return runAggregate(cmd, afero.NewOsFs(), args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)

	aggregateCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Validate and print totals without writing summary files",
	)
}

// runAggregate loads the runtime and executes one pipeline run over dir.
func runAggregate(cmd *cobra.Command, fs afero.Fs, dir string, out io.Writer) error {
	if err := loadRuntime(cmd, fs); err != nil {
		return apperr.Unexpected(err)
	}
	defer appLogger.Sync()

	p := pipeline.New(dir, appConfig, appLogger)
	p.SetFS(fs)
	p.SetDryRun(dryRun)

	result := p.Run()
	if !result.Success {
		return result.Error
	}

	if dryRun {
		options := summarywriter.DefaultGenerateOptions()
		options.Delimiter = appConfig.Delimiter
		for _, s := range result.Summaries {
			data, err := summarywriter.GenerateWithOptions(s, options)
			if err != nil {
				return apperr.Unexpected(err)
			}
			fmt.Fprintf(out, "# %s\n", s.Dimension.SummaryFile)
			out.Write(data)
		}
	}
	return nil
}

// userMessage returns the line shown to the user for a command failure.
func userMessage(err error) string {
	// Cobra flag and command errors are unclassified faults.
	return apperr.Message(err)
}
