package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kvittering/kvittering/internal/providers/utils"
)

// DefaultHydrationScript is the element Next.js renders its page state into
const DefaultHydrationScript = "script#__NEXT_DATA__"

// HydrationSpec describes where one platform keeps its listing inside the
// server-rendered page state. Every field is an ordered list of candidate
// paths; the first non-empty value wins, so a newly observed data shape is a
// single extra entry.
type HydrationSpec struct {
	Script string

	// Roots locate the ad object inside the payload
	Roots []Path

	// Field paths are relative to the ad object
	Title       []Path
	Description []Path
	Price       []Path
	Images      []Path
	Seller      []Path

	// ImageKeys name the URL key of image objects ("url", "path")
	ImageKeys []string
}

var errNoAdObject = errors.New("no ad object at any known path")

// Hydration reads the framework hydration payload. A missing script element
// means the page simply has no payload; malformed JSON or an unknown shape is
// reported as a strategy error and absorbed by the cascade.
func Hydration(spec HydrationSpec) Strategy {
	selector := spec.Script
	if selector == "" {
		selector = DefaultHydrationScript
	}
	imageKeys := spec.ImageKeys
	if len(imageKeys) == 0 {
		imageKeys = []string{"url", "path"}
	}

	return Strategy{
		Name:  "hydration",
		Layer: LayerHydration,
		Apply: func(b *Builder, p *Page) error {
			script := p.Doc.Find(selector).First()
			if script.Length() == 0 {
				return nil
			}
			raw := strings.TrimSpace(script.Text())
			if raw == "" {
				return nil
			}
			state, err := decodeJSON(raw)
			if err != nil {
				return fmt.Errorf("decoding hydration payload: %w", err)
			}

			ad, ok := FirstPresent(state, spec.Roots...).(map[string]any)
			if !ok {
				return errNoAdObject
			}

			b.SetTitle(AsString(FirstPresent(ad, spec.Title...)))
			b.SetDescription(utils.StripMarkup(AsString(FirstPresent(ad, spec.Description...))))
			if !b.HasPrice() {
				b.SetPrice(FirstPrice(ad, spec.Price...))
			}
			if !b.HasImages() {
				b.SetImages(AsImageList(FirstPresent(ad, spec.Images...), imageKeys...))
			}
			b.SetSeller(AsString(FirstPresent(ad, spec.Seller...)))
			return nil
		},
	}
}
