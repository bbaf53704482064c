package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"query-expander/internal/models"
)

const (
	defaultProvider    = "gemini"
	defaultCount       = 5
	defaultPause       = 200 * time.Millisecond
	defaultColumn      = "seed_query"
	defaultOutput      = "query_expansions.csv"
	defaultPreviewSize = 10

	// Environment variables consulted when llm.key is empty, in order.
	EnvAPIKey    = "QUERY_EXPANDER_API_KEY"
	EnvGeminiKey = "GEMINI_API_KEY"
)

var (
	ErrMissingAPIKey = errors.New("api key is required")
	ErrInvalidCount  = fmt.Errorf("expansion count must be between %d and %d", models.MinFixedCount, models.MaxFixedCount)
)

type LLMConfig struct {
	Provider string        `yaml:"provider"`
	BaseURL  string        `yaml:"base_url"`
	Key      string        `yaml:"key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

type ExpansionConfig struct {
	Strategy models.Strategy `yaml:"strategy"`
	Count    int             `yaml:"count"`
	Pause    time.Duration   `yaml:"pause"`
}

type InputConfig struct {
	Column string `yaml:"column"`
}

type OutputConfig struct {
	Path        string `yaml:"path"`
	HTMLReport  string `yaml:"html_report"`
	PreviewSize int    `yaml:"preview_size"`
}

type ParserConfig struct {
	// Repair runs json-repair over responses that fail to decode before giving up.
	Repair bool `yaml:"repair"`
}

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Expansion ExpansionConfig `yaml:"expansion"`
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Parser    ParserConfig    `yaml:"parser"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig reads the yaml file at path. A missing file is not an error, the
// defaults are returned instead so the tool can run on flags alone.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values. The strategy zero value is FixedCount.
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultProvider
	}
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	if c.LLM.Key == "" {
		c.LLM.Key = keyFromEnv()
	}
	if c.Expansion.Count == 0 {
		c.Expansion.Count = defaultCount
	}
	if c.Expansion.Pause == 0 {
		c.Expansion.Pause = defaultPause
	}
	if c.Input.Column == "" {
		c.Input.Column = defaultColumn
	}
	if c.Output.Path == "" {
		c.Output.Path = defaultOutput
	}
	if c.Output.PreviewSize <= 0 {
		c.Output.PreviewSize = defaultPreviewSize
	}
}

// Validate checks the conditions that must hold before any model call.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLM.Key) == "" && c.LLM.Provider != "ollama" {
		return ErrMissingAPIKey
	}
	if c.Expansion.Strategy == models.FixedCount &&
		(c.Expansion.Count < models.MinFixedCount || c.Expansion.Count > models.MaxFixedCount) {
		return fmt.Errorf("%w, got %d", ErrInvalidCount, c.Expansion.Count)
	}
	if _, ok := defaultModels[c.LLM.Provider]; !ok {
		return fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}
	return nil
}

var defaultModels = map[string]string{
	"gemini": "gemini-2.5-pro",
	"openai": "gpt-4o-mini",
	"ollama": "llama3.1",
}

// ModelName returns the configured model or the provider's default.
func (c *LLMConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[strings.ToLower(c.Provider)]
}

func keyFromEnv() string {
	for _, name := range []string{EnvAPIKey, EnvGeminiKey} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
