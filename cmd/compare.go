package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/pagerank-service/pkg/graphio"
	"github.com/gilchrisn/pagerank-service/pkg/pagerank"
)

var compareCmd = &cobra.Command{
	Use:   "compare <graphfile>",
	Short: "Cross-check the engine against gonum's PageRank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(verbose)

		tolerance, _ := cmd.Flags().GetFloat64("tolerance")
		iterations, _ := cmd.Flags().GetInt("iterations")
		top, _ := cmd.Flags().GetInt("top")

		graph, _, err := graphio.ReadFile(args[0])
		if err != nil {
			return err
		}

		cfg := pagerank.NewConfig()
		cfg.Set("algorithm.iterations", iterations)
		cfg.Set("logging.level", "warn")
		if verbose {
			cfg.Set("logging.level", "debug")
		}

		var (
			result    *pagerank.Result
			reference pagerank.RankVector
		)
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			var err error
			result, err = pagerank.Run(ctx, graph, cfg, nil)
			return err
		})
		g.Go(func() error {
			var err error
			reference, err = pagerank.ReferenceRanks(graph, tolerance)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		diff := result.Ranks.MaxAbsDiff(reference)
		log.Debug().
			Int("iterations", result.Iterations).
			Float64("delta", result.Delta).
			Msg("Engine finished")

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "nodes: %d  edges: %d  dangling: %d\n", result.NumNodes, result.NumEdges, result.DanglingNodes)
		fmt.Fprintf(out, "engine: %s, %d iterations\n", result.Mode, result.Iterations)
		fmt.Fprintf(out, "max abs diff vs gonum: %.3e\n", diff)
		for _, nr := range result.Top(top) {
			fmt.Fprintf(out, "P[%2d]=%.7f  gonum=%.7f\n", nr.Node, nr.Rank, reference[nr.Node])
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().Float64("tolerance", 1e-10, "gonum convergence tolerance")
	compareCmd.Flags().Int("iterations", -10, "engine iterations argument (negative k converges to 10^k)")
	compareCmd.Flags().Int("top", 10, "number of top nodes to list")
	rootCmd.AddCommand(compareCmd)
}
