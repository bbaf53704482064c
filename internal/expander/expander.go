// Package expander runs the seed-by-seed expansion pipeline.
package expander

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"query-expander/internal/config"
	"query-expander/internal/helper"
	"query-expander/internal/llmservice"
	"query-expander/internal/models"
	"query-expander/internal/parser"
	"query-expander/internal/prompt"
)

type Expander struct {
	gen      llmservice.Generator
	parser   parser.ResponseParser
	strategy models.Strategy
	count    int
	pause    time.Duration
}

func NewExpander(gen llmservice.Generator, cfg *config.Config) *Expander {
	return &Expander{
		gen:      gen,
		parser:   parser.ResponseParser{Repair: cfg.Parser.Repair},
		strategy: cfg.Expansion.Strategy,
		count:    cfg.Expansion.Count,
		pause:    cfg.Expansion.Pause,
	}
}

// Run expands every seed in order, one model call at a time, pausing after
// each seed. A failing seed contributes one error record and the run moves on.
// The only error returned is the context's, together with the records
// produced so far.
func (e *Expander) Run(ctx context.Context, seeds []models.SeedQuery) (*models.ExpansionResult, error) {
	runID, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	result := &models.ExpansionResult{
		RunID:    runID,
		Strategy: e.strategy,
		Seeds:    len(seeds),
	}
	logger := log.With().Str("run_id", result.RunID).Logger()
	logger.Info().
		Int("seeds", len(seeds)).
		Str("strategy", e.strategy.String()).
		Int("count", e.count).
		Msg("Starting expansion run")

	start := time.Now()
	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome := e.ExpandSeed(ctx, seed.Text)
		if err := ctx.Err(); err != nil {
			// The seed was interrupted, not failed.
			logger.Warn().Int("row", seed.Row).Str("seed", seed.Text).Msg("Run cancelled during seed expansion")
			return result, err
		}
		result.Records = append(result.Records, outcome.Records...)
		if outcome.Err != nil {
			result.Failed++
			logger.Warn().Err(outcome.Err).Int("row", seed.Row).Str("seed", seed.Text).Msg("Seed expansion failed")
		} else {
			logger.Info().Msgf("[%d/%d] %q: %d expansions", i+1, len(seeds), seed.Text, len(outcome.Records))
		}

		if err := sleep(ctx, e.pause); err != nil {
			return result, err
		}
	}

	logger.Info().
		Int("records", len(result.Records)).
		Int("failed", result.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("Expansion complete")
	return result, nil
}

// ExpandSeed builds the prompt, calls the model and parses the answer. A
// transport error is handled exactly like a parse error.
func (e *Expander) ExpandSeed(ctx context.Context, seed string) parser.Outcome {
	p := prompt.Build(seed, e.strategy, e.count)
	raw, err := e.gen.Generate(ctx, p)
	if err != nil {
		return parser.Failure(seed, err, "")
	}
	return e.parser.Parse(seed, raw, e.strategy)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
