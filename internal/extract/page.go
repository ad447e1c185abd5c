// Package extract implements the layered fallback cascade that turns a raw
// marketplace page into a listing.Listing.
//
// A cascade is an ordered list of strategies. Each strategy inspects the
// parsed page and fills fields on a per-call Builder that have not been set
// by an earlier strategy. Strategies never overwrite, never fail the call and
// never share state between calls.
package extract

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
)

// Page is a fetched listing page parsed once and shared by every strategy
type Page struct {
	URL string
	Doc *goquery.Document

	logger *slog.Logger
}

// NewPage parses raw HTML into a Page. The html tokenizer accepts any byte
// input, so an error here means the reader itself failed.
func NewPage(url string, body []byte, logger *slog.Logger) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Page{URL: url, Doc: doc, logger: logger}, nil
}

// Logger returns the logger strategies report non-fatal problems to
func (p *Page) Logger() *slog.Logger {
	if p.logger == nil {
		return slog.Default()
	}
	return p.logger
}
