// Package search pages through the web search API to collect candidate hits
// for a query.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/pkg/google"
)

// The API never serves results past index 100.
const maxStart = 91

// Searcher collects paginated search results.
type Searcher struct {
	client    google.Client
	locale    string
	pageDelay time.Duration
}

// NewSearcher creates a Searcher. pageDelay is the minimum gap between page
// requests of one query.
func NewSearcher(client google.Client, locale string, pageDelay time.Duration) *Searcher {
	return &Searcher{client: client, locale: locale, pageDelay: pageDelay}
}

// Search returns up to target hits for query. Pagination stops at the target,
// on an empty or short page, or on the first failed request; whatever was
// collected by then is returned. Search never fails.
func (s *Searcher) Search(ctx context.Context, query string, target int) []model.SearchHit {
	log := zap.L().With(zap.String("query", query))

	limit := rate.Inf
	if s.pageDelay > 0 {
		limit = rate.Every(s.pageDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var hits []model.SearchHit
	for start := 1; len(hits) < target && start <= maxStart; start += google.MaxPageSize {
		if err := limiter.Wait(ctx); err != nil {
			log.Debug("search: stopped", zap.Error(err))
			break
		}

		num := min(target-len(hits), google.MaxPageSize)
		resp, err := s.client.Search(ctx, google.SearchParams{
			Query:  query,
			Num:    num,
			Start:  start,
			Locale: s.locale,
		})
		if err != nil {
			log.Warn("search: page failed, returning partial results",
				zap.Int("start", start),
				zap.Int("collected", len(hits)),
				zap.Error(err),
			)
			break
		}

		for _, item := range resp.Items {
			hits = append(hits, model.SearchHit{
				Title:   item.Title,
				URL:     item.Link,
				Snippet: item.Snippet,
			})
		}

		if len(resp.Items) < num {
			break
		}
	}

	log.Debug("search: done", zap.Int("hits", len(hits)))
	return hits
}
