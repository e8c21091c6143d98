package harvest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/analyze"
	"github.com/sells-group/lead-cli/internal/model"
)

const strategyPrompt = `Jesteś analitykiem budowlanym. Konfigurujesz robota wyszukującego firmy.

Przeanalizuj zlecenie użytkownika i wygeneruj parametry wyszukiwania.

Zasady:
1. Jeśli metraż jest duży (>500m2) lub obiekt jest przemysłowy, dodaj pobliskie duże miasta (promień 50km).
2. Zamień język potoczny na słowa kluczowe (np. "robienie podłogi" -> "posadzki", "wylewki").
3. Zwróć wyłącznie JSON według schematu:
{"reasoning": "string", "target_cities": ["string"], "keywords": ["string"], "pkd_codes": ["string"]}

ZLECENIE: %s`

// FallbackCity is searched when no better location is known.
const FallbackCity = "Polska"

// Generator produces raw model output for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StrategyGenerator turns a free-text job description into a search plan.
type StrategyGenerator struct {
	gen Generator
}

// NewStrategyGenerator creates a StrategyGenerator. gen may be nil, in which
// case every plan is the fallback.
func NewStrategyGenerator(gen Generator) *StrategyGenerator {
	return &StrategyGenerator{gen: gen}
}

// Fallback is the plan used when the model is unavailable: search the
// description itself across the whole country.
func Fallback(prompt string) model.Strategy {
	return model.Strategy{
		Reasoning:    "fallback",
		TargetCities: []string{FallbackCity},
		Keywords:     []string{strings.TrimSpace(prompt)},
		PKDCodes:     []string{},
	}
}

// Generate asks the model for a plan. It never fails: missing pieces of the
// reply are filled from Fallback.
func (s *StrategyGenerator) Generate(ctx context.Context, prompt string) model.Strategy {
	fb := Fallback(prompt)
	if s.gen == nil {
		return fb
	}

	raw, err := s.gen.Generate(ctx, fmt.Sprintf(strategyPrompt, prompt))
	if err != nil {
		zap.L().Warn("harvest: strategy generation failed", zap.Error(err))
		return fb
	}
	obj, err := analyze.DecodeObject(raw)
	if err != nil {
		zap.L().Warn("harvest: unusable strategy reply", zap.Error(err))
		return fb
	}

	st := model.Strategy{
		TargetCities: analyze.StringList(obj["target_cities"]),
		Keywords:     analyze.StringList(obj["keywords"]),
		PKDCodes:     analyze.StringList(obj["pkd_codes"]),
	}
	st.Reasoning, _ = analyze.String(obj["reasoning"])
	if len(st.TargetCities) == 0 {
		st.TargetCities = fb.TargetCities
	}
	if len(st.Keywords) == 0 {
		st.Keywords = fb.Keywords
	}
	if st.PKDCodes == nil {
		st.PKDCodes = []string{}
	}
	return st
}

