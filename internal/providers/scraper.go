package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/kvittering/kvittering/internal/listing"
	"github.com/kvittering/kvittering/internal/metrics"
)

// ScraperConfig wires the dispatcher
type ScraperConfig struct {
	Registry *Registry
	Detector *Detector
	Logger   *slog.Logger
	Metrics  *metrics.Registry
}

// Scraper validates a URL, detects its platform and hands it to the
// matching provider. It holds no per-call state and is safe for concurrent use.
type Scraper struct {
	registry *Registry
	detector *Detector
	logger   *slog.Logger
	metrics  *metrics.Registry
}

// NewScraper creates a dispatcher; a nil detector means DefaultHostPatterns
func NewScraper(cfg ScraperConfig) *Scraper {
	s := &Scraper{
		registry: cfg.Registry,
		detector: cfg.Detector,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	if s.detector == nil {
		s.detector = NewDetector()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Detector returns the detector used for dispatch
func (s *Scraper) Detector() *Detector {
	return s.detector
}

// Registry returns the provider registry used for dispatch
func (s *Scraper) Registry() *Registry {
	return s.registry
}

// ScrapeURL extracts the listing behind rawURL. Invalid input and unsupported
// platforms are rejected before any network access.
func (s *Scraper) ScrapeURL(ctx context.Context, rawURL string) (listing.Listing, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		s.metrics.ObserveScrape(listing.PlatformUnknown.String(), metrics.OutcomeInvalid)
		return listing.Listing{}, err
	}

	platform := s.detector.Detect(target)
	if platform == listing.PlatformUnknown {
		s.metrics.ObserveScrape(platform.String(), metrics.OutcomeUnsupported)
		return listing.Listing{}, &listing.UnsupportedPlatformError{URL: target}
	}

	provider, ok := s.registry.ForPlatform(platform)
	if !ok {
		s.metrics.ObserveScrape(platform.String(), metrics.OutcomeUnsupported)
		return listing.Listing{}, &listing.UnsupportedPlatformError{URL: target}
	}

	return s.extract(ctx, provider, target)
}

// ScrapeWith skips platform detection and hands rawURL to the named provider.
// The URL is still validated.
func (s *Scraper) ScrapeWith(ctx context.Context, name, rawURL string) (listing.Listing, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		s.metrics.ObserveScrape(listing.PlatformUnknown.String(), metrics.OutcomeInvalid)
		return listing.Listing{}, err
	}

	provider, err := s.registry.Get(name)
	if err != nil {
		return listing.Listing{}, err
	}

	return s.extract(ctx, provider, target)
}

func (s *Scraper) extract(ctx context.Context, provider Provider, target string) (listing.Listing, error) {
	platform := provider.Platform()
	s.logger.Info("scraping listing", "url", target, "platform", platform, "provider", provider.Name())

	result, err := provider.Extract(ctx, target)
	if err != nil {
		outcome := metrics.OutcomeError
		var fetchErr *listing.FetchError
		if errors.As(err, &fetchErr) {
			outcome = metrics.OutcomeFetchError
		}
		s.metrics.ObserveScrape(platform.String(), outcome)
		s.logger.Warn("scrape failed", "url", target, "platform", platform, "error", err)
		return listing.Listing{}, err
	}

	s.metrics.ObserveScrape(platform.String(), metrics.OutcomeOK)
	return result, nil
}

// ValidateURL trims surrounding whitespace and requires an absolute http(s)
// URL with a host
func ValidateURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", &listing.InvalidInputError{Input: rawURL, Reason: "empty"}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", &listing.InvalidInputError{Input: rawURL, Reason: err.Error()}
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", &listing.InvalidInputError{Input: rawURL, Reason: "not an absolute http(s) URL"}
	}
	if u.Host == "" {
		return "", &listing.InvalidInputError{Input: rawURL, Reason: "missing host"}
	}

	return trimmed, nil
}
