package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/pagerank-service/pkg/generator"
	"github.com/gilchrisn/pagerank-service/pkg/graphio"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a random directed graph in edge-list format",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(verbose)

		var cfg generator.Config
		cfg.Nodes, _ = cmd.Flags().GetInt("nodes")
		cfg.Edges, _ = cmd.Flags().GetInt("edges")
		cfg.Seed, _ = cmd.Flags().GetInt64("seed")
		output, _ := cmd.Flags().GetString("output")

		graph, err := generator.Generate(cfg)
		if err != nil {
			return err
		}

		if output == "-" {
			return graphio.Write(cmd.OutOrStdout(), graph)
		}
		if err := graphio.WriteFile(output, graph); err != nil {
			return fmt.Errorf("failed to write graph: %w", err)
		}

		log.Info().
			Str("output", output).
			Int("nodes", graph.NumNodes).
			Int("edges", graph.NumEdges()).
			Int64("seed", cfg.Seed).
			Msg("Graph generated")
		return nil
	},
}

func init() {
	defaults := generator.DefaultConfig()
	generateCmd.Flags().Int("nodes", defaults.Nodes, "number of nodes")
	generateCmd.Flags().Int("edges", defaults.Edges, "number of distinct edges, no self-loops")
	generateCmd.Flags().Int64("seed", defaults.Seed, "random seed")
	generateCmd.Flags().StringP("output", "o", "biggraph.txt", "output file, - for stdout")
	rootCmd.AddCommand(generateCmd)
}
