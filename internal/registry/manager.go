package registry

import (
	"fmt"
	"log/slog"

	"github.com/kvittering/kvittering/internal/config"
	"github.com/kvittering/kvittering/internal/metrics"
	"github.com/kvittering/kvittering/internal/providers"
	"github.com/kvittering/kvittering/internal/providers/finn"
	httpclient "github.com/kvittering/kvittering/internal/providers/http"
	"github.com/kvittering/kvittering/internal/providers/tise"
)

// Factory builds a provider from the shared collaborators
type Factory func(opts providers.Options) providers.Provider

// Entry binds a config switch to a provider factory
type Entry struct {
	Name     string
	Settings func(cfg *config.Config) config.ProviderSettings
	Factory  Factory
}

// Builtin lists every marketplace the binary knows about
var Builtin = []Entry{
	{
		Name:     "finn",
		Settings: func(cfg *config.Config) config.ProviderSettings { return cfg.Providers.Finn },
		Factory:  func(opts providers.Options) providers.Provider { return finn.New(opts) },
	},
	{
		Name:     "tise",
		Settings: func(cfg *config.Config) config.ProviderSettings { return cfg.Providers.Tise },
		Factory:  func(opts providers.Options) providers.Provider { return tise.New(opts) },
	},
}

// Load registers every enabled builtin provider. All providers share one
// HTTP client built from cfg.HTTP.
func Load(cfg *config.Config, logger *slog.Logger, m *metrics.Registry) (*providers.Registry, error) {
	return LoadWith(cfg, logger, m, Builtin, nil)
}

// LoadWith is Load with an explicit provider table and, optionally, a
// fetcher replacing the HTTP client
func LoadWith(cfg *config.Config, logger *slog.Logger, m *metrics.Registry, entries []Entry, fetcher providers.Fetcher) (*providers.Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if fetcher == nil {
		fetcher = httpclient.NewClient(httpclient.ClientConfig{
			Timeout:    cfg.HTTP.Timeout,
			MaxRetries: cfg.HTTP.MaxRetries,
			UserAgent:  cfg.HTTP.UserAgent,
			Debug:      cfg.HTTP.Debug || cfg.Advanced.Debug,
			Logger:     logger,
		})
	}

	opts := providers.Options{
		Fetcher: fetcher,
		Logger:  logger,
		Metrics: m,
	}

	reg := providers.NewRegistry()
	for _, e := range entries {
		if e.Settings != nil && !e.Settings(cfg).Enabled {
			logger.Debug("provider disabled", "name", e.Name)
			continue
		}
		if err := reg.Register(e.Factory(opts)); err != nil {
			return nil, fmt.Errorf("failed to register provider %s: %w", e.Name, err)
		}
		logger.Debug("registered provider", "name", e.Name)
	}

	if reg.Count() == 0 {
		logger.Warn("no providers enabled; every scrape will be rejected as unsupported")
	} else {
		logger.Debug("providers loaded", "count", reg.Count(), "names", reg.List())
	}
	return reg, nil
}

// NewScraper builds the dispatcher over the enabled providers
func NewScraper(cfg *config.Config, logger *slog.Logger, m *metrics.Registry) (*providers.Scraper, error) {
	reg, err := Load(cfg, logger, m)
	if err != nil {
		return nil, err
	}
	return providers.NewScraper(providers.ScraperConfig{
		Registry: reg,
		Logger:   logger,
		Metrics:  m,
	}), nil
}
