// Package enrich turns candidate company URLs into contact records. Each URL
// runs a fixed sequence: blocklist check, page fetch, AI extraction,
// contact-subpage scan and a regex fallback, stopping as soon as an email is
// found.
package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/analyze"
	"github.com/sells-group/lead-cli/internal/blocklist"
	"github.com/sells-group/lead-cli/internal/extract"
	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/scrape"
)

// PageFetcher retrieves pages.
type PageFetcher interface {
	// Fetch retrieves a primary page, with protocol fallback.
	Fetch(ctx context.Context, url string) (*scrape.Page, error)
	// FetchOnce retrieves a subpage exactly as given.
	FetchOnce(ctx context.Context, url string) (*scrape.Page, error)
}

// PageAnalyzer extracts contact data from page text. It returns nil when
// nothing usable came back.
type PageAnalyzer interface {
	Analyze(ctx context.Context, pageURL, text string) *analyze.Extraction
}

// Config tunes an Enricher.
type Config struct {
	// MaxConcurrent caps in-flight URLs in a batch.
	MaxConcurrent int
	// SubpageLimit caps contact subpages scanned per URL; 0 disables the scan.
	SubpageLimit int
	// TaskTimeout bounds the whole pipeline for one URL.
	TaskTimeout time.Duration
}

// Enricher runs the per-URL pipeline and schedules batches of it.
type Enricher struct {
	fetcher   PageFetcher
	analyzer  PageAnalyzer
	blocklist *blocklist.List
	cfg       Config
}

// New creates an Enricher. analyzer may be nil to skip the AI step; a nil
// blocklist uses the built-in list.
func New(fetcher PageFetcher, analyzer PageAnalyzer, bl *blocklist.List, cfg Config) *Enricher {
	if bl == nil {
		bl = blocklist.New()
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	if cfg.SubpageLimit < 0 {
		cfg.SubpageLimit = 0
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 90 * time.Second
	}
	return &Enricher{
		fetcher:   fetcher,
		analyzer:  analyzer,
		blocklist: bl,
		cfg:       cfg,
	}
}

// EnrichURL runs the pipeline for one URL. It never fails: problems show up
// as a FAILED status with whatever fields were found before them.
func (e *Enricher) EnrichURL(ctx context.Context, rawURL string) *model.EnrichmentResult {
	log := zap.L().With(zap.String("url", rawURL))

	if e.blocklist.IsBlocked(rawURL) {
		log.Debug("enrich: skipped portal")
		return model.SkippedResult(rawURL)
	}

	result := model.NewEnrichmentResult(rawURL)

	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		log.Debug("enrich: primary fetch failed", zap.Error(err))
		return result
	}

	if e.analyzer != nil && ctx.Err() == nil {
		if ext := e.analyzer.Analyze(ctx, page.URL, page.Text); ext != nil {
			ext.Apply(result)
		}
	}

	if !result.HasEmail() && len(result.ContactsList) == 0 && ctx.Err() == nil {
		e.deepScan(ctx, page, result)
	}

	if !result.HasEmail() {
		if email, ok := extract.FirstEmail(page.Text); ok {
			result.FillEmail(email)
			result.Status = model.StatusRegexOnly
		}
	}

	log.Debug("enrich: done", zap.String("status", string(result.Status)))
	return result
}

// deepScan looks for an email on likely contact subpages of page.
func (e *Enricher) deepScan(ctx context.Context, page *scrape.Page, result *model.EnrichmentResult) {
	for _, link := range extract.ContactLinks(page.Doc, page.URL, e.cfg.SubpageLimit) {
		if ctx.Err() != nil {
			return
		}
		sub, err := e.fetcher.FetchOnce(ctx, link)
		if err != nil {
			zap.L().Debug("enrich: subpage fetch failed", zap.String("subpage", link), zap.Error(err))
			continue
		}
		if email, ok := extract.FirstEmail(sub.Text); ok {
			result.FillEmail(email)
			result.Status = model.StatusFoundOnSubpage
			return
		}
	}
}
