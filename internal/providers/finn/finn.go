// Package finn extracts listings from FINN.no (Torget) ad pages.
package finn

import (
	"regexp"
	"strings"

	"github.com/kvittering/kvittering/internal/extract"
	"github.com/kvittering/kvittering/internal/listing"
	"github.com/kvittering/kvittering/internal/providers"
)

const (
	providerName = "finn"
	imageCDN     = "images.finncdn.no"
)

// adIDPattern matches ?finnkode=, /item/<id> and a trailing numeric segment
var adIDPattern = regexp.MustCompile(`finnkode=(\d+)|item/(\d+)|/(\d+)(?:\?|$)`)

var hydration = extract.HydrationSpec{
	Roots: []extract.Path{
		extract.P("props.pageProps.ad.data"),
		extract.P("props.pageProps.initialState.ad.data"),
	},
	Title:       []extract.Path{extract.P("heading"), extract.P("title")},
	Description: []extract.Path{extract.P("description")},
	Price:       []extract.Path{extract.P("price.total"), extract.P("main_price.amount")},
	Images:      []extract.Path{extract.P("image_urls"), extract.P("images")},
	Seller:      []extract.Path{extract.P("user.name"), extract.P("seller.name")},
	ImageKeys:   []string{"url", "path"},
}

// Strategies returns the FINN cascade in precedence order.
//
// The JSON-LD description is a truncated teaser, so the structured-data layer
// leaves it alone and the full "Om annonsen" section runs ahead of the
// hydration payload.
func Strategies() []extract.Strategy {
	return []extract.Strategy{
		extract.StructuredData(extract.StructuredDataOptions{Type: "Product"}),
		extract.DescriptionParagraphs("about-section", `[aria-label="Om annonsen"]`),
		extract.Hydration(hydration),
		extract.TitleFrom("h1", `[data-testid="ad-title"]`),
		extract.DescriptionBlock("markup-description",
			`[data-testid="ad-description"], .import-decoration, [class*="Description"]`),
		extract.DescriptionParagraphs("item-description-section",
			`section[aria-label="Beskrivelse av varen"]`),
		extract.PriceFrom(`[data-testid="pricing-amount"]`, ".u-t3"),
		extract.ImagesMatching(isListingImage),
		extract.SellerFrom(`[data-testid="seller-name"]`, ".u-strong"),
	}
}

func isListingImage(src string) bool {
	return strings.Contains(src, imageCDN)
}

// Cascade returns the complete FINN extraction recipe
func Cascade() extract.Cascade {
	return extract.Cascade{
		Platform:   listing.PlatformFinn,
		Strategies: Strategies(),
		AdID:       adIDPattern,
	}
}

// Provider extracts FINN.no listings
type Provider struct {
	*providers.CascadeProvider
}

// New creates a FINN provider
func New(opts providers.Options) *Provider {
	return &Provider{
		CascadeProvider: providers.NewCascadeProvider(providerName, Cascade(), opts),
	}
}
