// Package analyze asks a language model to pull a structured contact record
// out of page text and decodes whatever comes back as leniently as possible.
package analyze

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/extract"
	"github.com/sells-group/lead-cli/internal/resilience"
)

// Oracle generates a (hopefully JSON) reply for a prompt.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config tunes an Analyzer.
type Config struct {
	MaxTextChars     int
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Analyzer extracts contact data from page text.
type Analyzer struct {
	oracle  Oracle
	breaker *resilience.Breaker
	maxText int
}

// New creates an Analyzer around oracle. Repeated oracle failures open a
// circuit breaker so later pages skip the AI step until it recovers.
func New(oracle Oracle, cfg Config) *Analyzer {
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 25000
	}
	return &Analyzer{
		oracle: oracle,
		breaker: resilience.NewBreaker(resilience.BreakerConfig{
			Name:      "analyze",
			Threshold: cfg.BreakerThreshold,
			Cooldown:  cfg.BreakerCooldown,
		}),
		maxText: cfg.MaxTextChars,
	}
}

// Generate sends an arbitrary prompt through the breaker.
func (a *Analyzer) Generate(ctx context.Context, prompt string) (string, error) {
	return resilience.Do(ctx, a.breaker, func(ctx context.Context) (string, error) {
		return a.oracle.Generate(ctx, prompt)
	})
}

// Analyze returns the contact data the model found in text, or nil when
// the model is unavailable, fails, or replies with something unusable.
func (a *Analyzer) Analyze(ctx context.Context, pageURL, text string) *Extraction {
	log := zap.L().With(zap.String("url", pageURL))

	raw, err := a.Generate(ctx, PagePrompt(pageURL, extract.Truncate(text, a.maxText)))
	if err != nil {
		log.Debug("analyze: oracle failed",
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Error(err),
		)
		return nil
	}

	ext, err := Decode(raw)
	if err != nil {
		log.Debug("analyze: unusable reply", zap.Error(err))
		return nil
	}
	if ext.Empty() {
		return nil
	}
	return ext
}
