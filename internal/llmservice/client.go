package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"query-expander/internal/config"
)

// ErrEmptyResponse is returned when the model answered without any text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Generator sends one prompt and returns the model's raw text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// New builds the Generator for llmConfig.Provider.
func New(ctx context.Context, llmConfig *config.LLMConfig) (Generator, error) {
	model := llmConfig.ModelName()
	log.Debug().
		Str("provider", llmConfig.Provider).
		Str("base_url", llmConfig.BaseURL).
		Str("model", model).
		Msg("Creating model client")

	key := strings.TrimPrefix(llmConfig.Key, "Bearer ")
	var (
		gen Generator
		err error
	)
	switch llmConfig.Provider {
	case "gemini":
		gen, err = newGemini(ctx, key, llmConfig.BaseURL, model)
	case "openai":
		opts := []openai.Option{openai.WithToken(key), openai.WithModel(model)}
		if llmConfig.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
		}
		var llm *openai.LLM
		if llm, err = openai.New(opts...); err == nil {
			gen = &langchainGenerator{llm: llm}
		}
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(model)}
		if llmConfig.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(llmConfig.BaseURL))
		}
		var llm *ollama.LLM
		if llm, err = ollama.New(opts...); err == nil {
			gen = &langchainGenerator{llm: llm}
		}
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", llmConfig.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", llmConfig.Provider, err)
	}
	return WithTimeout(gen, llmConfig.Timeout), nil
}

// langchainGenerator serves the openai compatible and ollama providers.
type langchainGenerator struct {
	llm llms.Model
}

func (g *langchainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
