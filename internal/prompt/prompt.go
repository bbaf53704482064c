// Package prompt builds the instruction text sent to the model for one seed.
package prompt

import (
	"fmt"
	"strings"

	"query-expander/internal/models"
)

// Build returns the instruction for seed. count is only read for FixedCount.
// The seed is interpolated as is.
func Build(seed string, strategy models.Strategy, count int) string {
	intents := IntentList()
	if strategy == models.ModelDecided {
		return fmt.Sprintf(models.ModelDecidedPromptTemplate, seed, models.MaxModelQueries, intents)
	}
	return fmt.Sprintf(models.FixedPromptTemplate, seed, count, intents)
}

// IntentList renders the intent vocabulary as "a, b, ... or z".
func IntentList() string {
	n := len(models.IntentTypes)
	if n == 1 {
		return models.IntentTypes[0]
	}
	return strings.Join(models.IntentTypes[:n-1], ", ") + ", or " + models.IntentTypes[n-1]
}
