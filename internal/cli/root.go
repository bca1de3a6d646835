// Package cli wires the embsweep commands.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "embsweep",
	Short:   "Benchmark an embedding endpoint across batch sizes and concurrency levels",
	Version: version,
	Long: `Embsweep drives an OpenAI-compatible /v1/embeddings endpoint through a
sweep of batch-size and concurrency combinations, measuring latency,
throughput and (when NVML is available) GPU power draw, then aggregates
persisted results into a sorted summary table.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(sweepCmd)
	RootCmd.AddCommand(aggregateCmd)
}
