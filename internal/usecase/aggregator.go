// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/naka-gawa/servicedesk-stats/internal/domain"
	"github.com/naka-gawa/servicedesk-stats/internal/gateway"
)

// Aggregator is the use case for aggregating service desk stats.
// It orchestrates the fetching and summarizing of issues.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Dataset fetches the raw dataset without aggregating it.
func (a *Aggregator) Dataset(ctx context.Context) (*domain.Dataset, error) {
	dataset, err := a.fetcher.FetchIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	return dataset, nil
}

// TypePercentages fetches the dataset and returns the issue type triple.
func (a *Aggregator) TypePercentages(ctx context.Context) (domain.TypePercentages, error) {
	dataset, err := a.Dataset(ctx)
	if err != nil {
		return domain.TypePercentages{}, err
	}
	return TypePercentages(dataset.Results).Percentages(), nil
}

// Aggregate fetches the dataset once and computes every statistic over it.
func (a *Aggregator) Aggregate(ctx context.Context) (*domain.Summary, error) {
	a.logger.Println("Usecase: Starting data aggregation...")

	dataset, err := a.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("Usecase: Fetched %d issues.", len(dataset.Results))

	if inverted := InvertedIssues(dataset.Results); len(inverted) > 0 {
		a.logger.Printf("Usecase: %d issues have an update before their creation.", len(inverted))
	}

	summary := Summarize(dataset.Results)

	a.logger.Println("Usecase: Aggregation complete.")
	return &summary, nil
}
