package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/embsweep/embsweep/internal/output"
	"github.com/embsweep/embsweep/internal/results"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate persisted sweep results into a sorted summary table",
	Long: `Load every result record under the results directory, tag each with a
hardware label (inferred from <model_slug>__<hardware> directory names unless
--hardware overrides), derive per-text latency, sort, write a summary JSON
and print a markdown table.

  embsweep aggregate --results-dir results --hardware h100
  embsweep aggregate --results-dir results`,
	Run: func(cmd *cobra.Command, args []string) {
		runAggregate(cmd)
	},
}

func init() {
	aggregateCmd.Flags().String("results-dir", "results", "Root results directory")
	aggregateCmd.Flags().String("hardware", "", "Hardware label (overrides inferred value)")
	aggregateCmd.Flags().String("output", "", "Summary JSON path (default: <results-dir>/summary.json)")
	aggregateCmd.Flags().Bool("no-color", false, "Disable colored output")
}

func runAggregate(cmd *cobra.Command) {
	resultsDir, _ := cmd.Flags().GetString("results-dir")
	hardware, _ := cmd.Flags().GetString("hardware")
	outputPath, _ := cmd.Flags().GetString("output")
	noColor, _ := cmd.Flags().GetBool("no-color")

	scheme := output.SchemeFor(noColor)

	records, err := results.Load(resultsDir, hardware, func(path string, err error) {
		scheme.Warn.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", path, err)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "No result JSON files found.")
		os.Exit(1)
	}

	results.Sort(records)

	if outputPath == "" {
		outputPath = filepath.Join(resultsDir, results.SummaryName)
	}
	if err := results.WriteSummary(outputPath, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	scheme.Success.Printf("Wrote %d records to %s\n\n", len(records), outputPath)
	fmt.Print(results.RenderTable(records))
}
