package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/analyze"
	"github.com/sells-group/lead-cli/internal/blocklist"
	"github.com/sells-group/lead-cli/internal/config"
	"github.com/sells-group/lead-cli/internal/enrich"
	"github.com/sells-group/lead-cli/internal/harvest"
	"github.com/sells-group/lead-cli/internal/scrape"
	"github.com/sells-group/lead-cli/internal/search"
	"github.com/sells-group/lead-cli/internal/store"
	anthropicpkg "github.com/sells-group/lead-cli/pkg/anthropic"
	"github.com/sells-group/lead-cli/pkg/gemini"
	"github.com/sells-group/lead-cli/pkg/google"
	"github.com/sells-group/lead-cli/pkg/render"
)

// leadEnv holds the services the enrich, harvest and serve commands need.
type leadEnv struct {
	Enricher   *enrich.Enricher
	Harvester  *harvest.Harvester // nil unless search is configured
	Strategist *harvest.StrategyGenerator
	Store      store.Store // nil unless a store driver is configured

	render render.Client
}

// Close waits for background render-session closes and releases the store.
func (e *leadEnv) Close() {
	if e.render != nil {
		e.render.Wait()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates cfg for mode and builds every service. Callers should
// defer env.Close().
func initEnv(ctx context.Context, mode string, withStore bool) (*leadEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	env := &leadEnv{}

	bl, err := initBlocklist(cfg.Blocklist)
	if err != nil {
		return nil, err
	}

	var fetchOpts []scrape.FetcherOption
	if cfg.Render.URL != "" {
		env.render = render.NewClient(cfg.Render.URL, cfg.Render.Secret, secs(cfg.Render.TimeoutSecs))
		fetchOpts = append(fetchOpts, scrape.WithRenderer(scrape.NewRenderScraper(env.render, cfg.Fetch.MaxTextChars)))
		zap.L().Info("render service enabled", zap.String("url", cfg.Render.URL))
	}
	fetcher := scrape.NewFetcher(scrape.FetcherConfig{
		Timeout:            secs(cfg.Fetch.TimeoutSecs),
		MaxTextChars:       cfg.Fetch.MaxTextChars,
		MaxBodyBytes:       int64(cfg.Fetch.MaxBodyBytes),
		InsecureSkipVerify: cfg.Fetch.InsecureSkipVerify,
	}, fetchOpts...)

	oracle, err := initOracle(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Interfaces stay nil when AI is off.
	var (
		pageAnalyzer enrich.PageAnalyzer
		generator    harvest.Generator
	)
	if oracle != nil {
		a := analyze.New(oracle, analyze.Config{
			MaxTextChars:     cfg.Analyze.MaxTextChars,
			BreakerThreshold: cfg.Analyze.BreakerThreshold,
			BreakerCooldown:  secs(cfg.Analyze.BreakerResetSecs),
		})
		pageAnalyzer = a
		generator = a
	} else {
		zap.L().Warn("AI analysis disabled, only subpage scan and regex fallback will run")
	}

	env.Enricher = enrich.New(fetcher, pageAnalyzer, bl, enrich.Config{
		MaxConcurrent: cfg.Enrich.MaxConcurrent,
		SubpageLimit:  cfg.Enrich.SubpageLimit,
		TaskTimeout:   secs(cfg.Enrich.TaskTimeoutSecs),
	})
	env.Strategist = harvest.NewStrategyGenerator(generator)

	if cfg.Search.Key != "" && cfg.Search.CX != "" {
		client := google.NewClient(cfg.Search.Key, cfg.Search.CX,
			google.WithBaseURL(cfg.Search.BaseURL),
			google.WithHTTPClient(&http.Client{Timeout: secs(cfg.Search.TimeoutSecs)}),
		)
		searcher := search.NewSearcher(client, cfg.Search.Locale, time.Duration(cfg.Search.PageDelayMs)*time.Millisecond)
		env.Harvester = harvest.NewHarvester(searcher, harvest.Config{
			MaxConcurrent:  cfg.Harvest.MaxConcurrent,
			PerQueryTarget: cfg.Harvest.PerQueryTarget,
		})
	}

	if withStore {
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		env.Store = st
	}

	return env, nil
}

// initOracle returns the configured AI backend, or nil when analysis is off.
func initOracle(ctx context.Context, c *config.Config) (analyze.Oracle, error) {
	switch c.Analyze.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  c.Gemini.Key,
			Model:   c.Gemini.Model,
			BaseURL: c.Gemini.BaseURL,
		})
		if err != nil {
			return nil, eris.Wrap(err, "init gemini")
		}
		return client, nil
	case "anthropic":
		client := anthropicpkg.NewClient(c.Anthropic.Key)
		return anthropicpkg.NewGenerator(client, c.Anthropic.Model, c.Anthropic.MaxTokens), nil
	case "none", "":
		return nil, nil
	default:
		return nil, eris.Errorf("unknown analyze provider %q", c.Analyze.Provider)
	}
}

func initBlocklist(c config.BlocklistConfig) (*blocklist.List, error) {
	if c.File == "" {
		return blocklist.New(c.Extra...), nil
	}
	bl, err := blocklist.Load(c.File, c.Extra...)
	if err != nil {
		return nil, eris.Wrap(err, "init blocklist")
	}
	return bl, nil
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// initStore opens the configured run store, failing when none is set up.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, eris.New("no run store configured (set store.driver to sqlite or postgres)")
	}
	return st, nil
}
