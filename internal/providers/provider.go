package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kvittering/kvittering/internal/extract"
	"github.com/kvittering/kvittering/internal/listing"
	"github.com/kvittering/kvittering/internal/metrics"
	"github.com/kvittering/kvittering/internal/providers/utils"
)

// Provider extracts listings from one marketplace platform
type Provider interface {
	// Metadata
	Name() string
	Platform() listing.Platform

	// Extract fetches url and runs the platform cascade. The only error it
	// returns is a *listing.FetchError.
	Extract(ctx context.Context, url string) (listing.Listing, error)
}

// Fetcher retrieves raw listing pages
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options carries the collaborators shared by every provider
type Options struct {
	Fetcher Fetcher
	Logger  *slog.Logger
	Metrics *metrics.Registry
}

// CascadeProvider is a Provider driven by an extract.Cascade. Platform
// packages construct one with their strategy table.
type CascadeProvider struct {
	name    string
	cascade extract.Cascade
	fetcher Fetcher
	logger  *slog.Logger
	metrics *metrics.Registry
}

// NewCascadeProvider creates a provider for cascade
func NewCascadeProvider(name string, cascade extract.Cascade, opts Options) *CascadeProvider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CascadeProvider{
		name:    name,
		cascade: cascade,
		fetcher: opts.Fetcher,
		logger:  logger.With("provider", name),
		metrics: opts.Metrics,
	}
}

func (p *CascadeProvider) Name() string {
	return p.name
}

func (p *CascadeProvider) Platform() listing.Platform {
	return p.cascade.Platform
}

// Cascade exposes the strategy table, mainly for tests
func (p *CascadeProvider) Cascade() extract.Cascade {
	return p.cascade
}

// Extract fetches the page and runs the cascade over it. After a successful
// fetch it always returns a best-effort listing.
func (p *CascadeProvider) Extract(ctx context.Context, url string) (listing.Listing, error) {
	if p.fetcher == nil {
		return listing.Listing{}, &listing.FetchError{URL: url, Err: errors.New("no fetcher configured")}
	}

	start := time.Now()
	body, err := p.fetcher.Fetch(ctx, url)
	p.metrics.ObserveFetch(p.Platform().String(), time.Since(start))
	if err != nil {
		var fetchErr *listing.FetchError
		if !errors.As(err, &fetchErr) {
			err = &listing.FetchError{URL: url, Err: err}
		}
		return listing.Listing{}, err
	}

	return p.ExtractHTML(url, body), nil
}

// ExtractHTML runs the cascade over an already fetched page
func (p *CascadeProvider) ExtractHTML(url string, body []byte) listing.Listing {
	result, trace := p.cascade.Extract(url, body, p.logger)

	platform := p.Platform().String()
	for layer, n := range trace.FilledByLayer() {
		p.metrics.ObserveFields(platform, layer, n)
	}
	for _, step := range trace {
		if step.Err != nil {
			p.metrics.ObserveStrategyError(platform, step.Name)
		}
	}

	p.logger.Debug("extracted listing",
		"url", url,
		"title", utils.TruncateString(result.Title, 80),
		"price", result.Price,
		"images", len(result.Images),
		"has_description", result.Description != "",
		"has_seller", result.Seller != "",
		"ad_id", result.AdID,
	)
	return result
}
