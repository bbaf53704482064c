// Package report turns an expansion result into previews, summaries and files.
package report

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"query-expander/internal/models"
)

// IntentCount is one bar of the intent summary.
type IntentCount struct {
	Intent string `json:"intent"`
	Count  int    `json:"count"`
}

// IntentCounts counts records per intent type, most frequent first. ERROR and
// MISSING are counted like any other value.
func IntentCounts(records []models.ExpandedRecord) []IntentCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Intent]++
	}
	out := make([]IntentCount, 0, len(counts))
	for intent, n := range counts {
		out = append(out, IntentCount{Intent: intent, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Intent < out[j].Intent
	})
	return out
}

// Sample picks min(n, len(records)) records uniformly at random without
// replacement. rng may be nil.
func Sample(records []models.ExpandedRecord, n int, rng *rand.Rand) []models.ExpandedRecord {
	if n > len(records) {
		n = len(records)
	}
	if n <= 0 {
		return nil
	}
	perm := rand.Perm
	if rng != nil {
		perm = rng.Perm
	}
	out := make([]models.ExpandedRecord, n)
	for i, idx := range perm(len(records))[:n] {
		out[i] = records[idx]
	}
	return out
}

// BarChart renders counts as horizontal text bars scaled to width.
func BarChart(counts []IntentCount, width int) string {
	if len(counts) == 0 {
		return ""
	}
	maxCount, labelWidth := 0, 0
	for _, c := range counts {
		maxCount = max(maxCount, c.Count)
		labelWidth = max(labelWidth, len(c.Intent))
	}

	var b strings.Builder
	for _, c := range counts {
		bar := 0
		if maxCount > 0 {
			bar = c.Count * width / maxCount
		}
		if bar == 0 && c.Count > 0 {
			bar = 1
		}
		fmt.Fprintf(&b, "%-*s | %s %d\n", labelWidth, c.Intent, strings.Repeat("#", bar), c.Count)
	}
	return b.String()
}
