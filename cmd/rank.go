package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/pagerank-service/pkg/graphio"
	"github.com/gilchrisn/pagerank-service/pkg/pagerank"
	"github.com/gilchrisn/pagerank-service/pkg/report"
)

const rankUsage = "rank <iterations> <initialvalue> <graphfile>"

var rankCmd = &cobra.Command{
	Use:   rankUsage,
	Short: "Rank the nodes of an edge-list graph",
	Long: `Rank the nodes of an edge-list graph.

iterations:   0 converges to 1e-5, k < 0 converges to 10^k, k > 0 runs k iterations.
              Graphs with more than 10 nodes always converge to 1e-5.
initialvalue: 0 zeros, 1 ones, -1 1/N, -2 1/sqrt(N); anything else 1/N.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parseRankArgs(cmd, args)
		if err != nil {
			return err
		}
		if opts == nil {
			return cmd.Help()
		}
		return runRank(cmd.Context(), cmd.OutOrStdout(), *opts)
	},
}

func init() {
	addRankFlags(rankCmd)
	rootCmd.AddCommand(rankCmd)
}

// rankOptions carries everything a single ranking run needs
type rankOptions struct {
	Iterations    int
	InitialValue  int
	GraphFile     string
	ConfigFile    string
	LogLevel      string
	MaxIterations int
	ExportFormat  string
	ExportFile    string
	TopK          int
}

func addRankFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-level", "warn", "engine log level (debug, info, warn, error, disabled)")
	cmd.Flags().Int("max-iterations", -1, "iteration cap for threshold mode, 0 for none (default from config)")
	cmd.Flags().String("export", "", "also export the result as json, yaml or toml")
	cmd.Flags().StringP("output", "o", "", "export destination (default stdout)")
	cmd.Flags().Int("top", 10, "number of top nodes listed in the export")
}

// parseRankArgs returns nil options when help was requested
func parseRankArgs(cmd *cobra.Command, args []string) (*rankOptions, error) {
	positional, err := parseInterspersed(cmd, args)
	if err != nil {
		return nil, err
	}

	if help, _ := cmd.Flags().GetBool("help"); help {
		return nil, nil
	}

	if len(positional) != 3 {
		return nil, fmt.Errorf("usage: pgrk %s (got %d arguments)", rankUsage, len(positional))
	}

	iterations, err := strconv.Atoi(positional[0])
	if err != nil {
		return nil, fmt.Errorf("invalid iterations %q: %w", positional[0], err)
	}
	initialValue, err := strconv.Atoi(positional[1])
	if err != nil {
		return nil, fmt.Errorf("invalid initial value %q: %w", positional[1], err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	setupLogging(verbose)

	opts := &rankOptions{
		Iterations:   iterations,
		InitialValue: initialValue,
		GraphFile:    positional[2],
	}
	opts.ConfigFile, _ = cmd.Flags().GetString("config")
	if cmd.Flags().Changed("log-level") {
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	opts.MaxIterations, _ = cmd.Flags().GetInt("max-iterations")
	opts.ExportFormat, _ = cmd.Flags().GetString("export")
	opts.ExportFile, _ = cmd.Flags().GetString("output")
	opts.TopK, _ = cmd.Flags().GetInt("top")
	if verbose {
		opts.LogLevel = "debug"
	}

	return opts, nil
}

// algorithmConfig layers the options over the config file and PGRK_* env.
// An empty LogLevel leaves logging.level to those sources, falling back to
// warn so the console output stays clean.
func (o rankOptions) algorithmConfig() (*pagerank.Config, error) {
	cfg := pagerank.NewConfig()
	cfg.SetDefault("logging.level", "warn")
	if o.ConfigFile != "" {
		if err := cfg.LoadFromFile(o.ConfigFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.Set("algorithm.iterations", o.Iterations)
	cfg.Set("algorithm.initial_value", o.InitialValue)
	if o.LogLevel != "" {
		cfg.Set("logging.level", o.LogLevel)
	}
	if o.MaxIterations >= 0 {
		cfg.Set("algorithm.max_iterations", o.MaxIterations)
	}
	return cfg, nil
}

// runRank loads the graph, runs the engine and prints the classic output.
// A run that hits the iteration cap still prints its last vector before the
// error is returned.
func runRank(ctx context.Context, out io.Writer, opts rankOptions) error {
	var format report.Format
	if opts.ExportFormat != "" {
		f, err := report.ParseFormat(opts.ExportFormat)
		if err != nil {
			return err
		}
		format = f
	}

	cfg, err := opts.algorithmConfig()
	if err != nil {
		return err
	}

	graph, stats, err := graphio.ReadFile(opts.GraphFile)
	if err != nil {
		return err
	}
	log.Debug().
		Str("file", opts.GraphFile).
		Int("nodes", graph.NumNodes).
		Int("edges", stats.Edges).
		Int("skipped", stats.Skipped).
		Int("dropped", stats.Dropped).
		Msg("Graph loaded")

	reporter := report.NewConsoleReporter(out)
	result, runErr := pagerank.Run(ctx, graph, cfg, reporter)
	if runErr != nil && !(errors.Is(runErr, pagerank.ErrNotConverged) && result != nil) {
		return runErr
	}

	reporter.Summary(result)
	if err := reporter.Err(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if format != "" {
		if err := exportResult(out, opts.ExportFile, result, format, opts.TopK); err != nil {
			return err
		}
	}

	return runErr
}

func exportResult(out io.Writer, path string, result *pagerank.Result, format report.Format, topK int) error {
	if path == "" || path == "-" {
		return report.Export(out, result, format, topK)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := report.Export(file, result, format, topK); err != nil {
		file.Close()
		return fmt.Errorf("failed to export result: %w", err)
	}
	return file.Close()
}
