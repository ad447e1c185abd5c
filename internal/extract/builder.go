package extract

import (
	"regexp"
	"strings"

	"github.com/kvittering/kvittering/internal/listing"
)

// Builder accumulates listing fields across strategies. Every setter is
// first-writer-wins: once a field holds a non-zero value it is never replaced.
type Builder struct {
	title       string
	description string
	price       int
	images      []string
	seller      string
}

// NewBuilder returns an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) HasTitle() bool       { return b.title != "" }
func (b *Builder) HasDescription() bool { return b.description != "" }
func (b *Builder) HasPrice() bool       { return b.price > 0 }
func (b *Builder) HasImages() bool      { return len(b.images) > 0 }
func (b *Builder) HasSeller() bool      { return b.seller != "" }

// Complete reports whether every field is filled and later strategies have
// nothing left to contribute
func (b *Builder) Complete() bool {
	return b.HasTitle() && b.HasDescription() && b.HasPrice() && b.HasImages() && b.HasSeller()
}

// Filled counts the non-empty fields
func (b *Builder) Filled() int {
	n := 0
	for _, ok := range []bool{b.HasTitle(), b.HasDescription(), b.HasPrice(), b.HasImages(), b.HasSeller()} {
		if ok {
			n++
		}
	}
	return n
}

// SetTitle sets the title if unset; whitespace-only values are ignored
func (b *Builder) SetTitle(v string) bool {
	v = cleanText(v)
	if b.HasTitle() || v == "" {
		return false
	}
	b.title = v
	return true
}

// SetDescription sets the description if unset
func (b *Builder) SetDescription(v string) bool {
	v = cleanText(v)
	if b.HasDescription() || v == "" {
		return false
	}
	b.description = v
	return true
}

// SetPrice sets the price if unset. Zero and negative amounts mean unknown.
func (b *Builder) SetPrice(v int) bool {
	if b.HasPrice() || v <= 0 {
		return false
	}
	b.price = v
	return true
}

// SetImages sets the image list if no images were found yet. Empty entries
// are dropped; the list is taken as a whole from a single source.
func (b *Builder) SetImages(urls []string) bool {
	if b.HasImages() {
		return false
	}
	kept := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = cleanText(u); u != "" {
			kept = append(kept, u)
		}
	}
	if len(kept) == 0 {
		return false
	}
	b.images = kept
	return true
}

// SetSeller sets the seller name if unset
func (b *Builder) SetSeller(v string) bool {
	v = cleanText(v)
	if b.HasSeller() || v == "" {
		return false
	}
	b.seller = v
	return true
}

// cleanText trims v and replaces invalid UTF-8 so the record matches its
// JSON encoding
func cleanText(v string) string {
	return strings.TrimSpace(strings.ToValidUTF8(v, "\uFFFD"))
}

// Build finishes the record: images are capped at listing.MaxImages and the
// ad id is taken from the URL with the platform pattern.
func (b *Builder) Build(platform listing.Platform, url string, adID *regexp.Regexp) listing.Listing {
	images := b.images
	if len(images) > listing.MaxImages {
		images = images[:listing.MaxImages]
	}
	out := make([]string, len(images))
	copy(out, images)

	return listing.Listing{
		Title:       b.title,
		Description: b.description,
		Price:       b.price,
		Images:      out,
		Seller:      b.seller,
		AdID:        MatchAdID(adID, url),
		Platform:    platform,
		OriginalURL: url,
	}
}

// MatchAdID applies re to url and returns the first non-empty capture group,
// or the whole match when re has no groups
func MatchAdID(re *regexp.Regexp, url string) string {
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	if len(m) == 1 {
		return m[0]
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
