// Package gateway provides a gateway to the remote service desk data source,
// abstracting away the underlying HTTP client.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/naka-gawa/servicedesk-stats/internal/domain"
)

const (
	// DefaultSourceURL is the public sample dataset.
	DefaultSourceURL = "https://sampleapi.squaredup.com/integrations/v1/service-desk"
	// DefaultDatapoints is the sample size requested from the source.
	DefaultDatapoints = 500
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxPayloadBytes caps a successful response body. 500 issues
	// come to a few hundred KiB.
	DefaultMaxPayloadBytes int64 = 32 << 20
)

// Fetcher defines the behavior of a gateway for fetching issues.
type Fetcher interface {
	FetchIssues(ctx context.Context) (*domain.Dataset, error)
}

// Options configures a ServiceDeskGateway.
type Options struct {
	SourceURL  string
	Datapoints int
	Token      string
	Timeout    time.Duration
}

// StatusError is returned when the source answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from data source: %s", e.StatusCode, e.Body)
}

// ServiceDeskGateway is the concrete implementation of the Fetcher interface.
type ServiceDeskGateway struct {
	httpClient *http.Client
	endpoint   string
	maxPayload int64
	logger     *log.Logger
}

// NewServiceDeskGateway is a constructor that creates a new instance of ServiceDeskGateway.
func NewServiceDeskGateway(opts Options, logger *log.Logger) (Fetcher, error) {
	endpoint, err := buildEndpoint(opts.SourceURL, opts.Datapoints)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient.Transport = &oauth2.Transport{
			Base:   http.DefaultTransport,
			Source: ts,
		}
	}

	return &ServiceDeskGateway{
		httpClient: httpClient,
		endpoint:   endpoint,
		maxPayload: DefaultMaxPayloadBytes,
		logger:     logger,
	}, nil
}

func buildEndpoint(sourceURL string, datapoints int) (string, error) {
	if sourceURL == "" {
		sourceURL = DefaultSourceURL
	}
	if datapoints <= 0 {
		datapoints = DefaultDatapoints
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("invalid source url %q: %w", sourceURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid source url %q: missing scheme or host", sourceURL)
	}
	q := u.Query()
	q.Set("datapoints", strconv.Itoa(datapoints))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchIssues downloads the sample dataset in a single request.
func (g *ServiceDeskGateway) FetchIssues(ctx context.Context) (*domain.Dataset, error) {
	g.logger.Printf("Fetching issues from %s", g.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read issues payload: %w", err)
	}
	if int64(len(body)) > g.maxPayload {
		return nil, fmt.Errorf("issues payload exceeds %d bytes", g.maxPayload)
	}

	var dataset domain.Dataset
	if err := json.Unmarshal(body, &dataset); err != nil {
		return nil, fmt.Errorf("failed to decode issues payload: %w", err)
	}
	if dataset.Results == nil {
		return nil, errors.New("failed to decode issues payload: missing results")
	}

	dataset.Raw = body

	g.logger.Printf("Completed fetching %d issues.", len(dataset.Results))
	return &dataset, nil
}
