package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/pagerank-service/pkg/api"
	"github.com/gilchrisn/pagerank-service/pkg/config"
	"github.com/gilchrisn/pagerank-service/pkg/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP ranking service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(verbose)

		configFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("address"); addr != "" {
			cfg.Server.Address = addr
		}

		log.Info().
			Str("address", cfg.Server.Address).
			Int("max_workers", cfg.Jobs.MaxWorkers).
			Dur("job_timeout", cfg.Jobs.JobTimeout).
			Msg("Configuration loaded")

		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().String("address", "", "listen address (overrides server.address)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	jobService, err := service.NewJobService(cfg.Jobs)
	if err != nil {
		return err
	}
	defer jobService.Close()

	handlers := api.NewHandlers(jobService, cfg.Server.MaxBodyBytes)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(handlers, cfg.CORS.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("address", cfg.Server.Address).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		log.Info().Msg("Server shutdown complete")
		return nil
	})

	return g.Wait()
}
