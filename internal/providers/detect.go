package providers

import (
	"strings"

	"github.com/kvittering/kvittering/internal/listing"
)

// HostPattern maps a host fragment to the platform it identifies
type HostPattern struct {
	Fragment string
	Platform listing.Platform
}

// DefaultHostPatterns lists the supported marketplaces. Order matters: the
// first fragment found in the URL wins.
var DefaultHostPatterns = []HostPattern{
	{Fragment: "finn.no", Platform: listing.PlatformFinn},
	{Fragment: "tise.com", Platform: listing.PlatformTise},
	{Fragment: "tise.no", Platform: listing.PlatformTise},
}

// Detector classifies URLs by case-insensitive substring match
type Detector struct {
	patterns []HostPattern
}

// NewDetector creates a detector over patterns, or the defaults when none are given
func NewDetector(patterns ...HostPattern) *Detector {
	if len(patterns) == 0 {
		patterns = DefaultHostPatterns
	}
	cp := make([]HostPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Fragment == "" {
			continue
		}
		cp = append(cp, HostPattern{Fragment: strings.ToLower(p.Fragment), Platform: p.Platform})
	}
	return &Detector{patterns: cp}
}

// Detect never fails; unmatched input is listing.PlatformUnknown
func (d *Detector) Detect(rawURL string) listing.Platform {
	lower := strings.ToLower(rawURL)
	for _, p := range d.patterns {
		if strings.Contains(lower, p.Fragment) {
			return p.Platform
		}
	}
	return listing.PlatformUnknown
}

// Patterns returns a copy of the detector table
func (d *Detector) Patterns() []HostPattern {
	out := make([]HostPattern, len(d.patterns))
	copy(out, d.patterns)
	return out
}

var defaultDetector = NewDetector()

// Detect classifies rawURL with the default host table
func Detect(rawURL string) listing.Platform {
	return defaultDetector.Detect(rawURL)
}
