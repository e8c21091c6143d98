// Package harvest turns (keyword x city) pairs into a stream of unique
// candidate leads.
package harvest

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-cli/internal/model"
)

// HitSearcher runs one paginated search. It never fails; a short or empty
// result is all it has.
type HitSearcher interface {
	Search(ctx context.Context, query string, target int) []model.SearchHit
}

// Config tunes a Harvester.
type Config struct {
	MaxConcurrent  int
	PerQueryTarget int
}

// Harvester fans searches out over query pairs and merges their leads.
type Harvester struct {
	searcher HitSearcher
	cfg      Config
}

// NewHarvester creates a Harvester.
func NewHarvester(searcher HitSearcher, cfg Config) *Harvester {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	if cfg.PerQueryTarget <= 0 {
		cfg.PerQueryTarget = 20
	}
	return &Harvester{searcher: searcher, cfg: cfg}
}

type pair struct {
	keyword string
	city    string
}

func (p pair) query() string { return p.keyword + " " + p.city }

// PairCount returns how many searches Stream will run for req.
func PairCount(req model.HarvestRequest) int { return len(pairs(req)) }

func pairs(req model.HarvestRequest) []pair {
	var out []pair
	for _, c := range req.Cities {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		for _, k := range req.Keywords {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			out = append(out, pair{keyword: k, city: c})
		}
	}
	return out
}

// Stream searches every (keyword x city) pair of req and emits the leads
// whose domain has not been seen earlier in the run. Each finished pair
// produces a leads_chunk carrying its unique leads, or a progress chunk when
// it added nothing. The stream always ends with a done chunk unless ctx is
// cancelled first.
func (h *Harvester) Stream(ctx context.Context, req model.HarvestRequest) <-chan model.Chunk {
	out := make(chan model.Chunk)
	work := pairs(req)

	go func() {
		defer close(out)

		emit := func(c model.Chunk) bool {
			select {
			case out <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if len(work) == 0 {
			emit(model.DoneChunk())
			return
		}

		log := zap.L().With(zap.Int("pairs", len(work)))
		log.Info("harvest: started")

		// Buffered so searches never block on a departed consumer.
		results := make(chan []model.Lead, len(work))
		g := new(errgroup.Group)
		g.SetLimit(h.cfg.MaxConcurrent)
		go func() {
			for _, p := range work {
				if ctx.Err() != nil {
					break
				}
				g.Go(func() error {
					results <- h.searchPair(ctx, p)
					return nil
				})
			}
			_ = g.Wait()
			close(results)
		}()

		seen := NewDomainSet()
		done, total := 0, 0
		for leads := range results {
			done++
			total += len(leads)
			pct := model.Percent(done, len(work))

			var chunk model.Chunk
			if unique := seen.Unique(leads); len(unique) > 0 {
				chunk = model.DataChunk(model.ChunkLeads, unique, pct)
			} else {
				chunk = model.ProgressChunk(pct)
			}
			if !emit(chunk) {
				log.Info("harvest: consumer gone", zap.Int("done", done))
				return
			}
		}

		log.Info("harvest: finished",
			zap.Int("hits", total),
			zap.Int("unique_domains", seen.Len()),
		)
		emit(model.DoneChunk())
	}()

	return out
}

// Harvest runs Stream to completion and returns all unique leads.
func (h *Harvester) Harvest(ctx context.Context, req model.HarvestRequest) []model.Lead {
	var leads []model.Lead
	for c := range h.Stream(ctx, req) {
		if c.Type == model.ChunkLeads {
			leads = append(leads, c.Data.([]model.Lead)...)
		}
	}
	return leads
}

func (h *Harvester) searchPair(ctx context.Context, p pair) []model.Lead {
	hits := h.searcher.Search(ctx, p.query(), h.cfg.PerQueryTarget)
	leads := make([]model.Lead, 0, len(hits))
	for _, hit := range hits {
		leads = append(leads, model.NewLeadFromHit(hit, p.city))
	}
	return leads
}
