package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/pagerank-service/pkg/pagerank"
	"github.com/gilchrisn/pagerank-service/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:                "watch <iterations> <initialvalue> <graphfile>",
	Short:              "Rank a graph and rerank it whenever the file changes",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parseRankArgs(cmd, args)
		if err != nil {
			return err
		}
		if opts == nil {
			return cmd.Help()
		}
		return runWatch(cmd.Context(), cmd.OutOrStdout(), *opts)
	},
}

func init() {
	addRankFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, out io.Writer, opts rankOptions) error {
	watcher, err := watch.NewWatcher(opts.GraphFile)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	rerank(ctx, out, opts)
	log.Info().Str("file", watcher.File).Msg("Watching graph file for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-watcher.Changes:
			if !ok {
				return nil
			}
			switch change.Kind {
			case watch.ChangeModified:
				log.Info().Str("file", change.File).Msg("Graph file changed, reranking")
				rerank(ctx, out, opts)
			case watch.ChangeRemoved:
				log.Warn().Str("file", change.File).Msg("Graph file removed, waiting for it to come back")
			}
		}
	}
}

// rerank logs failures instead of returning them so that a half-written
// file does not end the watch.
func rerank(ctx context.Context, out io.Writer, opts rankOptions) {
	err := runRank(ctx, out, opts)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
	case errors.Is(err, pagerank.ErrNotConverged):
		log.Warn().Err(err).Msg("Ranking stopped at the iteration cap")
	default:
		log.Error().Err(err).Str("file", opts.GraphFile).Msg("Ranking failed")
	}
}
