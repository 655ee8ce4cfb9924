// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/servicedesk-stats/internal/config"
	"github.com/naka-gawa/servicedesk-stats/internal/gateway"
	"github.com/naka-gawa/servicedesk-stats/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "servicedesk-stats",
	Short: "Descriptive statistics over a service desk sample dataset.",
	Long: `servicedesk-stats fetches issue-tracking sample data from a remote API and
computes the issue type and priority distributions, the average resolution time
of high priority issues and the satisfaction score of the slowest issue.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Path to the YAML config file")
}

// newLogger discards everything unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// newAggregator loads the config and wires the gateway into the use case.
func newAggregator(cmd *cobra.Command, logger *log.Logger) (*usecase.Aggregator, config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, config.Config{}, err
	}
	if cmd.Flags().Changed("datapoints") {
		cfg.Datapoints, _ = cmd.Flags().GetInt("datapoints")
	}

	fetcher, err := gateway.NewServiceDeskGateway(cfg.GatewayOptions(), logger)
	if err != nil {
		return nil, config.Config{}, err
	}
	return usecase.NewAggregator(fetcher, logger), cfg, nil
}
