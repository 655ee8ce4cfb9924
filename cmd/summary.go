package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/servicedesk-stats/internal/domain"
	"github.com/naka-gawa/servicedesk-stats/internal/usecase"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Fetches the dataset once and outputs the statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger(cmd)

		aggregator, _, err := newAggregator(cmd, logger)
		if err != nil {
			return fmt.Errorf("failed to set up: %w", err)
		}

		query := usecase.NewQuery(func(ctx context.Context) (*domain.Summary, error) {
			return aggregator.Aggregate(ctx)
		})
		query.Start(ctx)

		// Log progress every second while the fetch is pending.
		var state usecase.QueryState[*domain.Summary]
		for {
			waitCtx, cancel := context.WithTimeout(ctx, time.Second)
			state, err = query.Wait(waitCtx)
			cancel()
			if err == nil || ctx.Err() != nil {
				break
			}
			logger.Printf("Query is %s...", state.Status)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if state.Status == usecase.StatusFailed {
			return fmt.Errorf("failed to aggregate stats: %w", state.Err)
		}

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(state.Value, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().Int("datapoints", 0, "Number of issues to request (default from config, 500)")
}
