package models

import (
	"fmt"
	"strings"
)

// Strategy selects how many expansions are requested per seed.
type Strategy int

const (
	// FixedCount asks for an exact number of expansions per seed.
	FixedCount Strategy = iota
	// ModelDecided lets the model choose the number, up to MaxModelQueries.
	ModelDecided
)

const (
	MinFixedCount   = 1
	MaxFixedCount   = 25
	MaxModelQueries = 100
)

func (s Strategy) String() string {
	switch s {
	case FixedCount:
		return "fixed"
	case ModelDecided:
		return "model"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy accepts "fixed" or "model" and a few long forms.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "fixed-count", "fixed_count", "":
		return FixedCount, nil
	case "model", "model-decided", "model_decided", "auto":
		return ModelDecided, nil
	default:
		return FixedCount, fmt.Errorf("unknown expansion strategy %q", s)
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SeedQuery is one input row.
type SeedQuery struct {
	Text string
	// Row is the 1-based source row, used only in log messages.
	Row int
}

// ExpandedRecord is one output row.
type ExpandedRecord struct {
	Seed         string `json:"seed"`
	Query        string `json:"query"`
	Intent       string `json:"intent_type"`
	Relationship string `json:"semantic_relationship"`
}

// IsError reports whether the record is the sentinel for a failed seed.
func (r ExpandedRecord) IsError() bool {
	return r.Query == ErrorValue && r.Intent == ErrorValue
}

// Expansion is one variant as the model returns it.
type Expansion struct {
	Query        string
	Intent       string
	Relationship string
}

// Plan holds the extra fields of a model-decided response. They are logged but
// never written to the output.
type Plan struct {
	Reasoning    string
	TargetNumber int
}

// ExpansionResult is everything one run produced.
type ExpansionResult struct {
	RunID    string
	Strategy Strategy
	Seeds    int
	Failed   int
	Records  []ExpandedRecord
}
