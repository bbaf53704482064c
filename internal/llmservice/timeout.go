package llmservice

import (
	"context"
	"time"
)

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds every call of gen by d. A zero d leaves gen unchanged and
// the client library default applies.
func WithTimeout(gen Generator, d time.Duration) Generator {
	if d <= 0 {
		return gen
	}
	return &timeoutGenerator{next: gen, timeout: d}
}

func (g *timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.next.Generate(ctx, prompt)
}
