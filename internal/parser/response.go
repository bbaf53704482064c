package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/rs/zerolog/log"

	"query-expander/internal/models"
)

const (
	jsonFence    = "```json"
	genericFence = "```"
)

var (
	ErrNotList          = errors.New("model response was not a list of objects")
	ErrNotObject        = errors.New("model response was not an object")
	ErrMissingQueryList = errors.New("model response has no actual_queries list")
	ErrQueryNotObject   = errors.New("actual_queries contains a non-object item")
)

// Outcome is the result of handling one seed: either Records or Err is set.
// When Err is set Records holds the single error record for the seed.
type Outcome struct {
	Records []models.ExpandedRecord
	Err     error
}

// ResponseParser turns raw model text into records.
type ResponseParser struct {
	// Repair retries once with a repaired document when the text is not valid JSON.
	Repair bool
}

// Parse handles raw for seed under strategy. It never fails: a bad response
// yields an Outcome holding exactly one error record.
func (p ResponseParser) Parse(seed, raw string, strategy models.Strategy) Outcome {
	var (
		expansions []models.Expansion
		err        error
	)
	switch strategy {
	case models.ModelDecided:
		var plan *models.Plan
		plan, expansions, err = p.ParseModelDecided(raw)
		if err == nil {
			log.Debug().
				Str("seed", seed).
				Int("target_number", plan.TargetNumber).
				Int("actual", len(expansions)).
				Str("reasoning", plan.Reasoning).
				Msg("Model decided expansion count")
			if len(expansions) > models.MaxModelQueries {
				log.Warn().Str("seed", seed).Int("actual", len(expansions)).Msgf("Model returned more than %d queries", models.MaxModelQueries)
			}
		}
	default:
		expansions, err = p.ParseFixed(raw)
	}
	if err != nil {
		return Failure(seed, err, StripFences(raw))
	}

	records := make([]models.ExpandedRecord, 0, len(expansions))
	for _, e := range expansions {
		records = append(records, models.ExpandedRecord{
			Seed:         seed,
			Query:        e.Query,
			Intent:       e.Intent,
			Relationship: e.Relationship,
		})
	}
	return Outcome{Records: records}
}

// Failure builds the outcome for a seed whose call or parse failed. raw may be
// empty when the model call itself failed.
func Failure(seed string, err error, raw string) Outcome {
	return Outcome{
		Records: []models.ExpandedRecord{ErrorRecord(seed, err, raw)},
		Err:     err,
	}
}

// ErrorRecord is the sentinel row for a failed seed.
func ErrorRecord(seed string, err error, raw string) models.ExpandedRecord {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return models.ExpandedRecord{
		Seed:         seed,
		Query:        models.ErrorValue,
		Intent:       models.ErrorValue,
		Relationship: normalizeNewlines(fmt.Sprintf("%s - Raw: %s", msg, truncate(raw, models.RawSnippetLen))),
	}
}

// ParseFixed expects a JSON list whose every element is an object.
func (p ResponseParser) ParseFixed(raw string) ([]models.Expansion, error) {
	v, err := p.decode(raw)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, ErrNotList
	}
	return expansionsFrom(items, ErrNotList)
}

// ParseModelDecided expects {"reasoning", "target_number", "actual_queries": [...]}.
func (p ResponseParser) ParseModelDecided(raw string) (*models.Plan, []models.Expansion, error) {
	v, err := p.decode(raw)
	if err != nil {
		return nil, nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, nil, ErrNotObject
	}
	items, ok := obj["actual_queries"].([]any)
	if !ok {
		return nil, nil, ErrMissingQueryList
	}
	expansions, err := expansionsFrom(items, ErrQueryNotObject)
	if err != nil {
		return nil, nil, err
	}

	plan := &models.Plan{}
	if r, ok := obj["reasoning"]; ok {
		plan.Reasoning = fieldString(r)
	}
	if n, ok := obj["target_number"].(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			plan.TargetNumber = int(i)
		}
	}
	return plan, expansions, nil
}

// StripFences removes a leading code fence and its closing fence. It is a plain
// text substitution and does not need the fences to be balanced.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, jsonFence):
		raw = strings.TrimSpace(strings.ReplaceAll(raw, jsonFence, ""))
		raw = strings.TrimSpace(strings.TrimRight(raw, "`"))
	case strings.HasPrefix(raw, genericFence):
		raw = strings.TrimSpace(strings.ReplaceAll(raw, genericFence, ""))
	}
	return raw
}

func (p ResponseParser) decode(raw string) (any, error) {
	text := StripFences(raw)
	v, err := decodeJSON(text)
	if err == nil || !p.Repair {
		return v, err
	}

	repaired, rerr := jsonrepair.RepairJSON(text)
	if rerr != nil {
		return nil, err
	}
	log.Debug().Str("repaired", truncate(repaired, models.RawSnippetLen)).Msg("Repaired model response")
	if v, rerr := decodeJSON(repaired); rerr == nil {
		return v, nil
	}
	return nil, err
}

func decodeJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if rest := strings.TrimSpace(text[dec.InputOffset():]); rest != "" {
		return nil, errors.New("invalid json: extra data after value")
	}
	return v, nil
}

func expansionsFrom(items []any, notObject error) ([]models.Expansion, error) {
	out := make([]models.Expansion, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, notObject
		}
		out = append(out, models.Expansion{
			Query:        field(obj, "query"),
			Intent:       field(obj, "intent_type"),
			Relationship: field(obj, "semantic_relationship"),
		})
	}
	return out, nil
}

func field(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok {
		return models.MissingValue
	}
	return fieldString(v)
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return normalizeNewlines(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSpace(buf.String())
	}
}

// normalizeNewlines turns CRLF into LF so values survive a csv round trip.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
