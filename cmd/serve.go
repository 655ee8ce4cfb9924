package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/servicedesk-stats/internal/handler"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the statistics over HTTP",
	Long: `Serves the statistics over HTTP. Every request fetches the dataset again.

  GET /health
  GET /api/data
  GET /api/type-of-issues-percentage
  GET /api/summary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		aggregator, cfg, err := newAggregator(cmd, logger)
		if err != nil {
			return fmt.Errorf("failed to set up: %w", err)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		server := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler.New(aggregator, logger).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// A failed listen cancels egCtx, which also releases the watcher.
		eg, egCtx := errgroup.WithContext(cmd.Context())

		eg.Go(func() error {
			logger.Printf("Listening on %s", cfg.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		})

		eg.Go(func() error {
			<-egCtx.Done()
			logger.Println("Shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		})

		if err := eg.Wait(); err != nil {
			return err
		}
		logger.Println("Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().Int("datapoints", 0, "Number of issues to request (default from config, 500)")
}
