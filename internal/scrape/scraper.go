// Package scrape fetches company pages and turns them into clean text plus a
// queryable document.
package scrape

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"

	"github.com/sells-group/lead-cli/internal/extract"
)

// Page is a fetched, cleaned page.
type Page struct {
	// URL is the address actually fetched, after any protocol fallback.
	URL string
	// Text is the whitespace-joined visible text, truncated.
	Text string
	// Doc is the parsed document with scripts and styles removed.
	Doc *goquery.Document
	// Source names the scraper that produced the page.
	Source string
}

// Scraper fetches a single URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Page, error)
	Name() string
}

// noise is removed before text extraction. Nav and footer stay: that is
// where contact details usually live.
const noise = "script, style, svg, noscript, iframe"

// ParsePage parses an HTML body, decoding it to UTF-8 according to
// contentType (or sniffing when empty).
func ParsePage(pageURL string, body io.Reader, contentType string, maxText int) (*Page, error) {
	r, err := charset.NewReader(body, contentType)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: decode charset")
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}
	doc.Find(noise).Remove()

	return &Page{
		URL:  pageURL,
		Text: extract.Truncate(extract.VisibleText(doc.Nodes...), maxText),
		Doc:  doc,
	}, nil
}

// NormalizeURL trims s and adds an http:// scheme when none is present.
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	return "http://" + s
}
