// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources queries remote bibliographic databases and decodes their
// responses into candidate records. Each database (OpenAlex, OpenReview,
// Open Library) implements the Source interface per the Strategy pattern.
package sources

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pdiddy/bibcheck/internal/httputil"
	"github.com/pdiddy/bibcheck/pkg/types"
)

// ErrRateLimited reports that a source kept answering HTTP 429 after the
// retry budget was spent.
var ErrRateLimited = errors.New("rate limited by remote source")

// Source looks up candidate records in one remote database. A nil record
// or empty slice with a nil error means "nothing found", which is distinct
// from a lookup failure.
type Source interface {
	Name() string

	// LookupDOI resolves a DOI to at most one record. Sources without
	// DOI lookup return (nil, nil).
	LookupDOI(ctx context.Context, doi string) (*types.Record, error)

	// SearchTitle returns candidate records for a title query.
	SearchTitle(ctx context.Context, title string) ([]types.Record, error)
}

// defaultMaxCandidates caps title-search results when the config does not.
const defaultMaxCandidates = 5

// client bundles what every source needs for polite API access: a shared
// HTTP client, the sources configuration, and a per-source rate limiter.
type client struct {
	http    *http.Client
	cfg     types.SourcesConfig
	limiter *rate.Limiter
}

func newClient(httpClient *http.Client, cfg types.SourcesConfig) client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	return client{
		http:    httpClient,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// get waits for the rate limiter, then issues a GET with retry on 429.
func (c *client) get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, ErrRateLimited
	}
	return resp, nil
}

// maxCandidates returns the configured title-search result cap.
func (c *client) maxCandidates() int {
	if c.cfg.MaxCandidates > 0 {
		return c.cfg.MaxCandidates
	}
	return defaultMaxCandidates
}
