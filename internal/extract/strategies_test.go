package extract

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPage(t *testing.T, html string) (*Page, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	page, err := NewPage("https://www.finn.no/item/1", []byte(html), logger)
	require.NoError(t, err)
	return page, &logs
}

func ldJSON(body string) string {
	return `<script type="application/ld+json">` + body + `</script>`
}

func TestStructuredData(t *testing.T) {
	t.Run("product block fills title price and image", func(t *testing.T) {
		page, _ := newTestPage(t, `<html><head>`+
			ldJSON(`{"@type":"Product","name":"Sykkel","offers":{"price":"1500"},"image":"https://cdn.example/a.jpg"}`)+
			`</head><body></body></html>`)

		b, _ := Run(page, []Strategy{StructuredData(StructuredDataOptions{})})
		assert.Equal(t, "Sykkel", b.title)
		assert.Equal(t, 1500, b.price)
		assert.Equal(t, []string{"https://cdn.example/a.jpg"}, b.images)
		assert.Empty(t, b.description)
	})

	t.Run("ignores blocks of other types", func(t *testing.T) {
		page, _ := newTestPage(t, ldJSON(`{"@type":"BreadcrumbList","name":"Torget"}`)+
			ldJSON(`{"@type":"Product","name":"Lampe"}`))

		b, _ := Run(page, []Strategy{StructuredData(StructuredDataOptions{})})
		assert.Equal(t, "Lampe", b.title)
	})

	t.Run("malformed block is skipped and logged", func(t *testing.T) {
		page, logs := newTestPage(t, ldJSON(`{"@type":"Product", broken`)+
			ldJSON(`{"@type":"Product","name":"Lampe","offers":{"price":300}}`))

		b, trace := Run(page, []Strategy{StructuredData(StructuredDataOptions{})})
		assert.Equal(t, "Lampe", b.title)
		assert.Equal(t, 300, b.price)
		assert.NoError(t, trace[0].Err)
		assert.Contains(t, logs.String(), "skipping malformed structured data block")
	})

	t.Run("graph containers type arrays and object images", func(t *testing.T) {
		page, _ := newTestPage(t, ldJSON(`{"@context":"https://schema.org","@graph":[
			{"@type":"WebPage","name":"Side"},
			{"@type":["Product","Thing"],"name":"Kamera","offers":[{"price":"0"},{"price":"899.50"}],
			 "image":[{"url":"https://cdn.example/1.jpg"},"https://cdn.example/2.jpg"]}
		]}`))

		b, _ := Run(page, []Strategy{StructuredData(StructuredDataOptions{})})
		assert.Equal(t, "Kamera", b.title)
		assert.Equal(t, 899, b.price)
		assert.Equal(t, []string{"https://cdn.example/1.jpg", "https://cdn.example/2.jpg"}, b.images)
	})

	t.Run("description only when enabled", func(t *testing.T) {
		page, _ := newTestPage(t, ldJSON(`{"@type":"product","name":"Jakke","description":"Str M"}`))

		b, _ := Run(page, []Strategy{StructuredData(StructuredDataOptions{Description: true})})
		assert.Equal(t, "Str M", b.description)
	})

	t.Run("first product block wins", func(t *testing.T) {
		page, _ := newTestPage(t, ldJSON(`{"@type":"Product","name":"Først"}`)+
			ldJSON(`{"@type":"Product","name":"Sist","offers":{"price":10}}`))

		b, _ := Run(page, []Strategy{StructuredData(StructuredDataOptions{})})
		assert.Equal(t, "Først", b.title)
		assert.Equal(t, 10, b.price)
	})
}

func nextData(body string) string {
	return `<script id="__NEXT_DATA__" type="application/json">` + body + `</script>`
}

var testHydration = HydrationSpec{
	Roots:       []Path{P("props.pageProps.ad.data"), P("props.pageProps.initialState.ad.data")},
	Title:       []Path{P("heading"), P("title")},
	Description: []Path{P("description")},
	Price:       []Path{P("price.total"), P("main_price.amount")},
	Images:      []Path{P("image_urls"), P("images")},
	Seller:      []Path{P("user.name"), P("seller.name")},
}

func TestHydration(t *testing.T) {
	t.Run("reads the first known root", func(t *testing.T) {
		page, _ := newTestPage(t, nextData(`{"props":{"pageProps":{"ad":{"data":{
			"heading":"Sofa","description":"Tre-seter<br>grå<br/><b>pent</b> brukt",
			"price":{"total":2500},"image_urls":["https://images.finncdn.no/1.jpg"],
			"user":{"name":"Ola"}}}}}}`))

		b, trace := Run(page, []Strategy{Hydration(testHydration)})
		require.NoError(t, trace[0].Err)
		assert.Equal(t, "Sofa", b.title)
		assert.Equal(t, "Tre-seter\ngrå\npent brukt", b.description)
		assert.Equal(t, 2500, b.price)
		assert.Equal(t, []string{"https://images.finncdn.no/1.jpg"}, b.images)
		assert.Equal(t, "Ola", b.seller)
		assert.Equal(t, 5, trace[0].Filled)
	})

	t.Run("falls back to the older root and alternative fields", func(t *testing.T) {
		page, _ := newTestPage(t, nextData(`{"props":{"pageProps":{"initialState":{"ad":{"data":{
			"title":"Bord","main_price":{"amount":"400"},
			"images":[{"url":"https://images.finncdn.no/a.jpg"},{"path":"https://images.finncdn.no/b.jpg"}],
			"seller":{"name":"Kari"}}}}}}}`))

		b, _ := Run(page, []Strategy{Hydration(testHydration)})
		assert.Equal(t, "Bord", b.title)
		assert.Equal(t, 400, b.price)
		assert.Equal(t, []string{"https://images.finncdn.no/a.jpg", "https://images.finncdn.no/b.jpg"}, b.images)
		assert.Equal(t, "Kari", b.seller)
	})

	t.Run("missing script contributes nothing", func(t *testing.T) {
		page, _ := newTestPage(t, `<html><body><h1>x</h1></body></html>`)

		b, trace := Run(page, []Strategy{Hydration(testHydration)})
		assert.NoError(t, trace[0].Err)
		assert.Zero(t, b.Filled())
	})

	t.Run("malformed payload is an absorbed error", func(t *testing.T) {
		page, _ := newTestPage(t, nextData(`{"props":`))

		b, trace := Run(page, []Strategy{Hydration(testHydration)})
		assert.Error(t, trace[0].Err)
		assert.Zero(t, b.Filled())
	})

	t.Run("unknown shape is an absorbed error", func(t *testing.T) {
		page, _ := newTestPage(t, nextData(`{"props":{"pageProps":{"listing":{}}}}`))

		_, trace := Run(page, []Strategy{Hydration(testHydration)})
		assert.ErrorIs(t, trace[0].Err, errNoAdObject)
	})

	t.Run("does not overwrite earlier fields", func(t *testing.T) {
		page, _ := newTestPage(t, ldJSON(`{"@type":"Product","name":"Fra JSON-LD"}`)+
			nextData(`{"props":{"pageProps":{"ad":{"data":{"heading":"Fra hydrering","description":"Tekst"}}}}}`))

		b, _ := Run(page, []Strategy{StructuredData(StructuredDataOptions{}), Hydration(testHydration)})
		assert.Equal(t, "Fra JSON-LD", b.title)
		assert.Equal(t, "Tekst", b.description)
	})
}

func TestMarkup(t *testing.T) {
	const html = `<html><body>
		<h1>  Stol  </h1>
		<span data-testid="pricing-amount">kr 200,-</span>
		<section aria-label="Om annonsen">
			<p>Første avsnitt.</p>
			<p>   </p>
			<p>Andre<br>linje</p>
		</section>
		<div class="Description">Flat<br/>tekst</div>
		<a data-testid="seller-name">  Kari Nordmann </a>
		<img src="https://images.finncdn.no/1.jpg">
		<img src="https://static.finn.no/logo.svg">
		<img data-src="https://images.finncdn.no/2.jpg">
		<img src="https://images.finncdn.no/1.jpg">
	</body></html>`

	t.Run("title", func(t *testing.T) {
		page, _ := newTestPage(t, html)
		b, _ := Run(page, []Strategy{TitleFrom("h1", `[data-testid="ad-title"]`)})
		assert.Equal(t, "Stol", b.title)
	})

	t.Run("price strips non digits", func(t *testing.T) {
		page, _ := newTestPage(t, html)
		b, _ := Run(page, []Strategy{PriceFrom(".missing", `[data-testid="pricing-amount"]`)})
		assert.Equal(t, 200, b.price)
	})

	t.Run("paragraph description preferred", func(t *testing.T) {
		page, _ := newTestPage(t, html)
		b, _ := Run(page, []Strategy{
			DescriptionParagraphs("p", `[aria-label="Om annonsen"]`),
			DescriptionBlock("block", `[class*="Description"]`),
		})
		assert.Equal(t, "Første avsnitt.\n\nAndre\nlinje", b.description)
	})

	t.Run("flattened block keeps line breaks", func(t *testing.T) {
		page, _ := newTestPage(t, html)
		b, _ := Run(page, []Strategy{DescriptionBlock("block", `[class*="Description"]`)})
		assert.Equal(t, "Flat\ntekst", b.description)
	})

	t.Run("seller", func(t *testing.T) {
		page, _ := newTestPage(t, html)
		b, _ := Run(page, []Strategy{SellerFrom(`[data-testid="seller-name"]`)})
		assert.Equal(t, "Kari Nordmann", b.seller)
	})

	t.Run("images filtered by cdn and deduplicated", func(t *testing.T) {
		page, _ := newTestPage(t, html)
		b, _ := Run(page, []Strategy{ImagesMatching(func(src string) bool {
			return strings.Contains(src, "images.finncdn.no")
		})})
		assert.Equal(t, []string{"https://images.finncdn.no/1.jpg", "https://images.finncdn.no/2.jpg"}, b.images)
	})
}

func TestRun(t *testing.T) {
	t.Run("absorbs errors and panics", func(t *testing.T) {
		page, logs := newTestPage(t, `<h1>Stol</h1>`)

		b, trace := Run(page, []Strategy{
			{Name: "fails", Layer: "test", Apply: func(*Builder, *Page) error { return errors.New("boom") }},
			{Name: "panics", Layer: "test", Apply: func(*Builder, *Page) error { panic("oops") }},
			TitleFrom("h1"),
		})

		assert.Equal(t, "Stol", b.title)
		require.Len(t, trace, 3)
		assert.EqualError(t, trace[0].Err, "boom")
		assert.ErrorContains(t, trace[1].Err, "oops")
		assert.Equal(t, 1, trace[2].Filled)
		assert.Contains(t, logs.String(), "extraction strategy failed")
	})

	t.Run("stops once every field is filled", func(t *testing.T) {
		page, _ := newTestPage(t, `<p>x</p>`)
		fill := Strategy{Name: "fill", Layer: "a", Apply: func(b *Builder, _ *Page) error {
			b.SetTitle("t")
			b.SetDescription("d")
			b.SetPrice(1)
			b.SetImages([]string{"i"})
			b.SetSeller("s")
			return nil
		}}
		called := false
		never := Strategy{Name: "never", Layer: "b", Apply: func(*Builder, *Page) error {
			called = true
			return nil
		}}

		_, trace := Run(page, []Strategy{fill, never})
		assert.False(t, called)
		assert.Equal(t, map[string]int{"a": 5}, trace.FilledByLayer())
	})
}
