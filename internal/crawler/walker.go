package crawler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ldurand/adidasharvester/config"
	"ldurand/adidasharvester/helpers"
	"ldurand/adidasharvester/internal/fetch"
	"ldurand/adidasharvester/internal/metrics"
	"ldurand/adidasharvester/logger"
	errs "ldurand/adidasharvester/pkg/errors"
)

const (
	paginationSelector = "div.pagination_progress-bar__sWWOn"
	pageCountToken     = "--page-count:"
	cardSelector       = "div.product-card_product-card-content___bjeq"
	assetsSelector     = "header[data-testid='product-card-assets']"
)

// ErrNoPagination is returned when a listing page carries no usable
// pagination indicator; the target is aborted with zero pages processed.
var ErrNoPagination = errs.NewParsing("walker", "no pagination detected", nil)

// Walker discovers product references by iterating a target's listing pages.
type Walker struct {
	client  *fetch.Client
	step    int
	delay   time.Duration
	metrics *metrics.Metrics

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// NewWalker builds a listing walker on top of the fetch client.
func NewWalker(client *fetch.Client, cfg config.Config, m *metrics.Metrics) *Walker {
	return &Walker{
		client:  client,
		step:    cfg.PageSize,
		delay:   cfg.PageDelay,
		metrics: m,
		sleep:   time.Sleep,
	}
}

// Walk fetches every listing page of the target and returns the product
// references found. A failing page is skipped; only a failing initial fetch
// or a missing pagination marker aborts the target.
func (w *Walker) Walk(target Target) ([]ProductRef, error) {
	log := logger.ForTarget(target.Country, target.Gender, target.Category)

	doc, err := w.client.Document(target.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", target.ListingURL, err)
	}

	pages, ok := MaxPages(doc)
	if !ok {
		return nil, ErrNoPagination
	}

	var refs []ProductRef
	for page := 0; page < pages; page++ {
		pageURL := PageURL(target.ListingURL, page*w.step)

		doc, err := w.client.Document(pageURL)
		if err != nil {
			log.Warn().
				Str("url", pageURL).
				Int("page", page+1).
				Err(err).
				Msg("Listing page skipped")
			w.sleep(w.delay)
			continue
		}

		pageRefs := ExtractRefs(doc, target.ListingURL)
		log.Debug().
			Int("page", page+1).
			Int("pages", pages).
			Int("links", len(pageRefs)).
			Msg("Listing page walked")

		refs = append(refs, pageRefs...)
		w.metrics.IncPages()
		w.metrics.AddLinks(len(pageRefs))

		w.sleep(w.delay)
	}

	return refs, nil
}

// MaxPages extracts the page count from the pagination progress indicator's
// inline style attribute. The second return value is false when the marker
// is absent or unparsable.
func MaxPages(doc *goquery.Document) (int, bool) {
	style, exists := doc.Find(paginationSelector).First().Attr("style")
	if !exists {
		return 0, false
	}

	idx := strings.Index(style, pageCountToken)
	if idx < 0 {
		return 0, false
	}

	value := style[idx+len(pageCountToken):]
	if end := strings.Index(value, ";"); end >= 0 {
		value = value[:end]
	}

	pages, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || pages <= 0 {
		return 0, false
	}
	return pages, true
}

// PageURL computes the listing page URL for an offset: the base URL as-is at
// offset zero, otherwise the base with a start query parameter.
func PageURL(baseURL string, offset int) string {
	if offset == 0 {
		return baseURL
	}
	return fmt.Sprintf("%s?start=%d", baseURL, offset)
}

// ExtractRefs pulls one product reference per product card: the first anchor
// inside the card's asset header, resolved against the listing URL.
func ExtractRefs(doc *goquery.Document, baseURL string) []ProductRef {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	var refs []ProductRef
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		href, exists := card.Find(assetsSelector).Find("a[href]").First().Attr("href")
		if !exists || href == "" {
			return
		}

		link := href
		if base != nil {
			if resolved, err := url.Parse(href); err == nil {
				link = base.ResolveReference(resolved).String()
			}
		}

		code := helpers.ProductCode(link)
		if code == "" {
			return
		}
		refs = append(refs, ProductRef{Link: link, Code: code})
	})
	return refs
}
