package extract

import (
	"log/slog"
	"regexp"

	"github.com/kvittering/kvittering/internal/listing"
)

// Cascade is a platform's complete extraction recipe
type Cascade struct {
	Platform   listing.Platform
	Strategies []Strategy
	// AdID extracts the listing id from the URL; the first non-empty group wins
	AdID *regexp.Regexp
}

// Extract runs the cascade over an already fetched page. It is a pure
// function of url and body: identical input yields an identical listing.
// Unparseable input produces a listing with only the URL-derived fields.
func (c Cascade) Extract(url string, body []byte, logger *slog.Logger) (listing.Listing, Trace) {
	if logger == nil {
		logger = slog.Default()
	}

	page, err := NewPage(url, body, logger)
	if err != nil {
		logger.Warn("could not parse listing page", "url", url, "error", err)
		return NewBuilder().Build(c.Platform, url, c.AdID), nil
	}

	b, trace := Run(page, c.Strategies)
	return b.Build(c.Platform, url, c.AdID), trace
}
