package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-expander/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvGeminiKey, "")

	path := writeConfig(t, `
llm:
  provider: OpenAI
  base_url: https://openrouter.ai/api/v1
  key: Bearer sk-or-123
  timeout: 30s
expansion:
  strategy: model
  pause: 1s
input:
  column: keyword
parser:
  repair: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.ModelName())
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, models.ModelDecided, cfg.Expansion.Strategy)
	assert.Equal(t, defaultCount, cfg.Expansion.Count)
	assert.Equal(t, time.Second, cfg.Expansion.Pause)
	assert.Equal(t, "keyword", cfg.Input.Column)
	assert.Equal(t, defaultOutput, cfg.Output.Path)
	assert.Equal(t, defaultPreviewSize, cfg.Output.PreviewSize)
	assert.True(t, cfg.Parser.Repair)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvGeminiKey, "from-env")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.ModelName())
	assert.Equal(t, "from-env", cfg.LLM.Key)
	assert.Equal(t, models.FixedCount, cfg.Expansion.Strategy)
	assert.Equal(t, 200*time.Millisecond, cfg.Expansion.Pause)
	assert.Equal(t, "seed_query", cfg.Input.Column)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "expansion:\n  strategy: sometimes\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "llm: [\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvGeminiKey, "")

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		errText string
	}{
		{name: "valid", mutate: func(c *Config) { c.LLM.Key = "k" }},
		{name: "missing key", mutate: func(c *Config) {}, wantErr: ErrMissingAPIKey},
		{name: "blank key", mutate: func(c *Config) { c.LLM.Key = "  " }, wantErr: ErrMissingAPIKey},
		{name: "ollama needs no key", mutate: func(c *Config) { c.LLM.Provider = "ollama" }},
		{name: "count too low", mutate: func(c *Config) { c.LLM.Key = "k"; c.Expansion.Count = -1 }, wantErr: ErrInvalidCount},
		{name: "count too high", mutate: func(c *Config) { c.LLM.Key = "k"; c.Expansion.Count = 26 }, wantErr: ErrInvalidCount},
		{name: "count bounds", mutate: func(c *Config) { c.LLM.Key = "k"; c.Expansion.Count = 25 }},
		{
			name: "count ignored for model decided",
			mutate: func(c *Config) {
				c.LLM.Key = "k"
				c.Expansion.Strategy = models.ModelDecided
				c.Expansion.Count = 99
			},
		},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Key = "k"; c.LLM.Provider = "bard" }, errText: "unsupported llm provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				assert.ErrorContains(t, err, tt.errText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
