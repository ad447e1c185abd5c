package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/kvittering/kvittering/internal/providers/utils"
)

// FirstText returns the trimmed text of the first element matched by the
// earliest selector that yields any text
func FirstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := utils.CleanText(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// Paragraphs joins the non-empty <p> texts under sel with blank lines
func Paragraphs(sel *goquery.Selection) string {
	var parts []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := utils.CleanMultiline(BlockText(p)); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

// BlockText flattens a selection to text, rendering <br> as a newline. The
// document is not modified.
func BlockText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "br":
			b.WriteString("\n")
			return
		case "script", "style", "noscript":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

// ImageSources collects src (or data-src) of every <img> accepted by keep,
// in document order without duplicates
func ImageSources(doc *goquery.Document, keep func(src string) bool) []string {
	var out []string
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(img.AttrOr("data-src", ""))
		}
		if src != "" && keep(src) {
			out = append(out, src)
		}
	})
	return utils.RemoveDuplicates(out)
}

// TitleFrom fills the title from the first selector with text
func TitleFrom(selectors ...string) Strategy {
	return Strategy{
		Name:  "markup-title",
		Layer: LayerMarkup,
		Apply: func(b *Builder, p *Page) error {
			if !b.HasTitle() {
				b.SetTitle(FirstText(p.Doc, selectors...))
			}
			return nil
		},
	}
}

// DescriptionParagraphs fills the description from the <p> children of the
// first region matching selector
func DescriptionParagraphs(name, selector string) Strategy {
	return Strategy{
		Name:  name,
		Layer: LayerMarkup,
		Apply: func(b *Builder, p *Page) error {
			if b.HasDescription() {
				return nil
			}
			region := p.Doc.Find(selector)
			if region.Length() == 0 {
				return nil
			}
			b.SetDescription(Paragraphs(region))
			return nil
		},
	}
}

// DescriptionBlock fills the description from the flattened text of the
// first element matching selector
func DescriptionBlock(name, selector string) Strategy {
	return Strategy{
		Name:  name,
		Layer: LayerMarkup,
		Apply: func(b *Builder, p *Page) error {
			if b.HasDescription() {
				return nil
			}
			b.SetDescription(utils.CleanMultiline(BlockText(p.Doc.Find(selector).First())))
			return nil
		},
	}
}

// PriceFrom parses the first selector whose text contains digits
func PriceFrom(selectors ...string) Strategy {
	return Strategy{
		Name:  "markup-price",
		Layer: LayerMarkup,
		Apply: func(b *Builder, p *Page) error {
			if b.HasPrice() {
				return nil
			}
			for _, sel := range selectors {
				if b.SetPrice(utils.ParsePrice(p.Doc.Find(sel).First().Text())) {
					return nil
				}
			}
			return nil
		},
	}
}

// SellerFrom fills the seller from the first selector with text
func SellerFrom(selectors ...string) Strategy {
	return Strategy{
		Name:  "markup-seller",
		Layer: LayerMarkup,
		Apply: func(b *Builder, p *Page) error {
			if !b.HasSeller() {
				b.SetSeller(FirstText(p.Doc, selectors...))
			}
			return nil
		},
	}
}

// ImagesMatching falls back to scanning every <img> on the page, keeping the
// URLs the platform serves listing photos from
func ImagesMatching(keep func(src string) bool) Strategy {
	return Strategy{
		Name:  "markup-images",
		Layer: LayerMarkup,
		Apply: func(b *Builder, p *Page) error {
			if !b.HasImages() {
				b.SetImages(ImageSources(p.Doc, keep))
			}
			return nil
		},
	}
}
