package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/embsweep/embsweep/internal/bench"
	"github.com/embsweep/embsweep/internal/client"
	"github.com/embsweep/embsweep/internal/config"
	"github.com/embsweep/embsweep/internal/output"
	"github.com/embsweep/embsweep/internal/power"
	"github.com/embsweep/embsweep/internal/results"
	"github.com/embsweep/embsweep/internal/textgen"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a batch-size x concurrency sweep against an embedding endpoint",
	Long: `Run every combination of the configured batch sizes and concurrency
levels against the target endpoint, persisting one JSON result record per
sweep point.

Config file mode:
  embsweep sweep --config sweep.yaml

Quick CLI mode:
  embsweep sweep --model BAAI/bge-large-en-v1.5 \
    --base-url http://localhost:8000 \
    --chunk-size 512 \
    --batch-sizes 1,4,16,64,256 \
    --concurrencies 1,4,16,64 \
    --num-requests 200 \
    --result-dir results`,
	Run: func(cmd *cobra.Command, args []string) {
		runSweep(cmd)
	},
}

func init() {
	registerSweepFlags()
}

func registerSweepFlags() {
	sweepCmd.Flags().String("config", "", "Sweep configuration YAML file")
	sweepCmd.Flags().String("model", "", "Model identifier sent with every request")
	sweepCmd.Flags().String("base-url", "http://localhost:8000", "Embedding server base URL")
	sweepCmd.Flags().Int("chunk-size", 0, "Approximate tokens per synthetic text")
	sweepCmd.Flags().String("batch-sizes", "1,4,16,64,256", "Comma-separated batch sizes")
	sweepCmd.Flags().String("concurrencies", "1,4,16,64", "Comma-separated concurrency levels")
	sweepCmd.Flags().Int("num-requests", 200, "Requests per sweep point")
	sweepCmd.Flags().String("result-dir", "results", "Output directory for result records")
	sweepCmd.Flags().Int64("seed", textgen.DefaultSeed, "Synthetic text generator seed")
	sweepCmd.Flags().Duration("timeout", client.DefaultTimeout, "Per-request timeout")
	sweepCmd.Flags().Duration("power-interval", power.DefaultInterval, "Power sampler poll interval")
	sweepCmd.Flags().Bool("no-power", false, "Disable NVML power sampling")
	sweepCmd.Flags().Bool("no-color", false, "Disable colored output")
}

func runSweep(cmd *cobra.Command) {
	sweep, err := sweepConfigFromFlags(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	scheme := output.SchemeFor(noColor)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var source power.DeviceSource
	if !sweep.DisablePower {
		source = power.OpenNVML(logger)
		if source != nil {
			defer source.Close()
		}
	}

	gen := textgen.New(sweep.Seed)
	embedClient := client.New(sweep.BaseURL, sweep.Model,
		client.WithTimeout(time.Duration(sweep.RequestTimeout)),
		client.WithMaxConns(sweep.MaxConcurrency()+4),
	)

	scheme.Heading.Printf("Sweeping %s at %s\n", sweep.Model, sweep.BaseURL)
	fmt.Printf("  %d batch sizes x %d concurrency levels, %d requests each\n\n",
		len(sweep.BatchSizes), len(sweep.Concurrencies), sweep.NumRequests)

	ctx := context.Background()

	for _, batchSize := range sweep.BatchSizes {
		for _, concurrency := range sweep.Concurrencies {
			point := bench.Point{
				Model:       sweep.Model,
				ChunkSize:   sweep.ChunkSize,
				BatchSize:   batchSize,
				Concurrency: concurrency,
				NumRequests: sweep.NumRequests,
			}

			fmt.Printf("  chunk=%d batch=%d concurrency=%d ...\n",
				point.ChunkSize, point.BatchSize, point.Concurrency)

			sampler := power.NewSampler(source, time.Duration(sweep.PowerInterval))
			evaluator := bench.NewEvaluator(embedClient, sampler, gen)
			rec, live := evaluator.Run(ctx, point)

			path, err := results.Save(sweep.ResultDir, point, rec)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: saving result: %v\n", err)
				os.Exit(1)
			}

			printPointResult(os.Stdout, scheme, rec, live, path)
		}
	}
}

// sweepConfigFromFlags builds the sweep configuration from --config or from
// individual flags, applies defaults, and validates.
func sweepConfigFromFlags(cmd *cobra.Command) (*config.Sweep, error) {
	configFile, _ := cmd.Flags().GetString("config")

	var sweep *config.Sweep
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		sweep = loaded
	} else {
		model, _ := cmd.Flags().GetString("model")
		baseURL, _ := cmd.Flags().GetString("base-url")
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")
		batchSizesRaw, _ := cmd.Flags().GetString("batch-sizes")
		concurrenciesRaw, _ := cmd.Flags().GetString("concurrencies")
		numRequests, _ := cmd.Flags().GetInt("num-requests")
		resultDir, _ := cmd.Flags().GetString("result-dir")
		seed, _ := cmd.Flags().GetInt64("seed")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		powerInterval, _ := cmd.Flags().GetDuration("power-interval")

		batchSizes, err := config.ParseIntList(batchSizesRaw)
		if err != nil {
			return nil, fmt.Errorf("--batch-sizes: %w", err)
		}
		concurrencies, err := config.ParseIntList(concurrenciesRaw)
		if err != nil {
			return nil, fmt.Errorf("--concurrencies: %w", err)
		}

		sweep = &config.Sweep{
			Model:          model,
			BaseURL:        baseURL,
			ChunkSize:      chunkSize,
			BatchSizes:     batchSizes,
			Concurrencies:  concurrencies,
			NumRequests:    numRequests,
			ResultDir:      resultDir,
			Seed:           seed,
			RequestTimeout: config.Duration(timeout),
			PowerInterval:  config.Duration(powerInterval),
		}
	}

	if noPower, _ := cmd.Flags().GetBool("no-power"); noPower {
		sweep.DisablePower = true
	}

	sweep.ApplyDefaults()
	if err := sweep.Validate(); err != nil {
		return nil, err
	}
	return sweep, nil
}

func printPointResult(w io.Writer, scheme *output.ColorScheme, rec bench.Record, live bench.LiveSummary, path string) {
	line := fmt.Sprintf("    -> p50=%.2fms  p99=%.2fms  tput=%.2f emb/s", rec.P50LatencyMs, rec.P99LatencyMs, rec.ThroughputEmbPerSec)
	if rec.PowerAvgW != nil {
		line += fmt.Sprintf("  power=%.1fW", *rec.PowerAvgW)
	}
	scheme.Success.Fprintln(w, line)

	if live.Failures > 0 {
		scheme.Warn.Fprintf(w, "       %d/%d requests failed\n", live.Failures, live.Requests)
	}
	if expected := int64(rec.CompletedRequests * rec.BatchSize); live.Embeddings != expected {
		scheme.Warn.Fprintf(w, "       server returned %d embeddings, expected %d\n", live.Embeddings, expected)
	}
	fmt.Fprintf(w, "       %s  %s %s\n",
		scheme.Label.Sprintf("mean=%.2fms stddev=%.2fms", live.MeanMs, live.StdDevMs),
		scheme.Label.Sprint("saved"),
		scheme.Value.Sprint(path))
}
