package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// Renderer returns the fully rendered HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// RenderScraper fetches pages through a headless-browser service.
type RenderScraper struct {
	renderer Renderer
	maxText  int
}

// NewRenderScraper wraps r as a Scraper.
func NewRenderScraper(r Renderer, maxText int) *RenderScraper {
	return &RenderScraper{renderer: r, maxText: maxText}
}

// Name implements Scraper.
func (s *RenderScraper) Name() string { return "render" }

// Scrape implements Scraper.
func (s *RenderScraper) Scrape(ctx context.Context, url string) (*Page, error) {
	html, err := s.renderer.Render(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: render")
	}

	// Rendered HTML is already UTF-8.
	page, err := ParsePage(url, strings.NewReader(html), "text/html; charset=utf-8", s.maxText)
	if err != nil {
		return nil, err
	}
	page.Source = s.Name()
	return page, nil
}
