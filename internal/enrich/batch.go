package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-cli/internal/model"
)

// Event is one finished URL in a streamed batch.
type Event struct {
	Result    *model.EnrichmentResult
	Completed int
	Total     int
}

// Progress returns the batch completion percentage after this event.
func (ev Event) Progress() int { return model.Percent(ev.Completed, ev.Total) }

// Dedup drops blank and repeated URLs, keeping first occurrences in order.
func Dedup(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Stream enriches urls concurrently and delivers results in completion
// order. The channel is closed once every started task has finished. When
// ctx is cancelled no new tasks start, in-flight tasks wind down at their
// next network call, and undelivered results are dropped. Callers must
// drain the channel or cancel ctx.
func (e *Enricher) Stream(ctx context.Context, urls []string) <-chan Event {
	urls = Dedup(urls)
	out := make(chan Event)

	go func() {
		defer close(out)

		log := zap.L().With(zap.Int("total", len(urls)))
		log.Info("enrich: batch started", zap.Int("max_concurrent", e.cfg.MaxConcurrent))

		var (
			mu        sync.Mutex
			completed int
		)

		g := new(errgroup.Group)
		g.SetLimit(e.cfg.MaxConcurrent)

		for _, u := range urls {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				res := e.runTask(ctx, u)

				mu.Lock()
				defer mu.Unlock()
				if ctx.Err() != nil {
					return nil
				}
				completed++
				select {
				case out <- Event{Result: res, Completed: completed, Total: len(urls)}:
				case <-ctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()

		log.Info("enrich: batch finished", zap.Int("completed", completed))
	}()

	return out
}

// Enrich enriches urls concurrently and returns the results in input order
// (after deduplication). URLs that never ran because ctx was cancelled are
// reported as FAILED.
func (e *Enricher) Enrich(ctx context.Context, urls []string) []*model.EnrichmentResult {
	urls = Dedup(urls)
	byURL := make(map[string]*model.EnrichmentResult, len(urls))
	for ev := range e.Stream(ctx, urls) {
		byURL[ev.Result.URL] = ev.Result
	}

	out := make([]*model.EnrichmentResult, len(urls))
	for i, u := range urls {
		if r, ok := byURL[u]; ok {
			out[i] = r
		} else {
			out[i] = model.NewEnrichmentResult(u)
		}
	}
	return out
}

// runTask runs one URL under its own deadline and turns a panic into a
// FAILED result.
func (e *Enricher) runTask(ctx context.Context, url string) (res *model.EnrichmentResult) {
	defer func() {
		if p := recover(); p != nil {
			zap.L().Error("enrich: task panicked",
				zap.String("url", url),
				zap.String("panic", fmt.Sprint(p)),
			)
			res = model.NewEnrichmentResult(url)
		}
	}()

	taskCtx, cancel := context.WithTimeout(ctx, e.cfg.TaskTimeout)
	defer cancel()
	return e.EnrichURL(taskCtx, url)
}
