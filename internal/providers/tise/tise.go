// Package tise extracts listings from Tise product pages.
package tise

import (
	"regexp"

	"github.com/kvittering/kvittering/internal/extract"
	"github.com/kvittering/kvittering/internal/listing"
	"github.com/kvittering/kvittering/internal/providers"
	"github.com/kvittering/kvittering/internal/providers/utils"
)

const providerName = "tise"

// Tise ids are slugs: the last path segment before the query string
var adIDPattern = regexp.MustCompile(`/([a-zA-Z0-9-]+)(?:\?|$)`)

var hydration = extract.HydrationSpec{
	Roots: []extract.Path{
		extract.P("props.pageProps.tise"),
		extract.P("props.pageProps.initialState.tise"),
	},
	Title:       []extract.Path{extract.P("title")},
	Description: []extract.Path{extract.P("description")},
	Price:       []extract.Path{extract.P("price")},
	Images:      []extract.Path{extract.P("images")},
	Seller:      []extract.Path{extract.P("user.name"), extract.P("user.username")},
	ImageKeys:   []string{"url"},
}

// Strategies returns the Tise cascade in precedence order
func Strategies() []extract.Strategy {
	return []extract.Strategy{
		extract.StructuredData(extract.StructuredDataOptions{Type: "Product", Description: true}),
		extract.Hydration(hydration),
		extract.TitleFrom("h1", `[class*="title"]`),
		extract.DescriptionBlock("markup-description", `[class*="description"]`),
		extract.PriceFrom(`[class*="price"]`),
		extract.ImagesMatching(isListingImage),
		extract.SellerFrom(`[class*="seller"]`, `[class*="user"]`),
	}
}

func isListingImage(src string) bool {
	return utils.ContainsAny(src, "tise", "cdn")
}

// Cascade returns the complete Tise extraction recipe
func Cascade() extract.Cascade {
	return extract.Cascade{
		Platform:   listing.PlatformTise,
		Strategies: Strategies(),
		AdID:       adIDPattern,
	}
}

// Provider extracts Tise listings
type Provider struct {
	*providers.CascadeProvider
}

// New creates a Tise provider
func New(opts providers.Options) *Provider {
	return &Provider{
		CascadeProvider: providers.NewCascadeProvider(providerName, Cascade(), opts),
	}
}
