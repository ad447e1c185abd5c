package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Layer names reported in traces and metrics
const (
	LayerStructuredData = "structured-data"
	LayerHydration      = "hydration"
	LayerMarkup         = "markup"
)

const structuredDataSelector = `script[type="application/ld+json"]`

// StructuredDataOptions tunes the schema.org layer per platform
type StructuredDataOptions struct {
	// Type is the @type a block must declare; defaults to "Product"
	Type string
	// Description also takes the block's description. FINN truncates it, so
	// only platforms with a complete description enable this.
	Description bool
}

// StructuredData scans every JSON-LD block on the page. A block that fails to
// parse is logged and skipped; it never stops the remaining blocks.
func StructuredData(opts StructuredDataOptions) Strategy {
	wantType := opts.Type
	if wantType == "" {
		wantType = "Product"
	}
	return Strategy{
		Name:  "structured-data",
		Layer: LayerStructuredData,
		Apply: func(b *Builder, p *Page) error {
			p.Doc.Find(structuredDataSelector).Each(func(i int, s *goquery.Selection) {
				raw := strings.TrimSpace(s.Text())
				if raw == "" {
					return
				}
				data, err := decodeJSON(raw)
				if err != nil {
					p.Logger().Warn("skipping malformed structured data block",
						append(logAttrs(p, "structured-data"), "block", i, "error", err)...)
					return
				}
				for _, obj := range structuredObjects(data) {
					if !hasType(obj, wantType) {
						continue
					}
					applyProduct(b, obj, opts.Description)
				}
			})
			return nil
		},
	}
}

// structuredObjects flattens the shapes JSON-LD arrives in: a single object,
// a top-level array, or a container with an @graph list
func structuredObjects(v any) []map[string]any {
	var out []map[string]any
	switch t := v.(type) {
	case map[string]any:
		out = append(out, t)
		if graph, ok := t["@graph"].([]any); ok {
			for _, g := range graph {
				out = append(out, structuredObjects(g)...)
			}
		}
	case []any:
		for _, item := range t {
			out = append(out, structuredObjects(item)...)
		}
	}
	return out
}

func hasType(obj map[string]any, want string) bool {
	switch t := obj["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

func applyProduct(b *Builder, obj map[string]any, withDescription bool) {
	b.SetTitle(AsString(obj["name"]))
	if withDescription {
		b.SetDescription(AsString(obj["description"]))
	}
	if !b.HasPrice() {
		b.SetPrice(offerPrice(obj["offers"]))
	}
	if !b.HasImages() {
		b.SetImages(AsImageList(obj["image"], "url", "contentUrl"))
	}
}

// offerPrice reads offers.price where offers is an Offer, an AggregateOffer
// (lowPrice) or a list of offers
func offerPrice(v any) int {
	switch t := v.(type) {
	case map[string]any:
		if p := AsInt(t["price"]); p > 0 {
			return p
		}
		return AsInt(t["lowPrice"])
	case []any:
		for _, item := range t {
			if p := offerPrice(item); p > 0 {
				return p
			}
		}
	}
	return 0
}
