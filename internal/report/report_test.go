package report_test

import (
	"bytes"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-expander/internal/models"
	"query-expander/internal/parser"
	"query-expander/internal/report"
)

var records = []models.ExpandedRecord{
	{Seed: "best running shoes", Query: "running shoes for flat feet", Intent: "underspecified", Relationship: "adds a foot type"},
	{Seed: "best running shoes", Query: "nike, asics or brooks?", Intent: "comparative", Relationship: `compares "big" brands`},
	{Seed: "best running shoes", Query: "trail shoes", Intent: "comparative", Relationship: "narrows\nto trail"},
	{Seed: "tax deadline", Query: "ERROR", Intent: "ERROR", Relationship: "invalid json: unexpected EOF - Raw: [{"},
	{Seed: "tax deadline 2", Query: "MISSING", Intent: "temporal", Relationship: ""},
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, records))

	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, "Original Seed Query,Synth Query,Intent Type,Semantic Relationship", firstLine)

	got, err := report.ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestCSVRoundTrip_ModelLineEndings(t *testing.T) {
	raw := `[{"query": "q", "intent_type": "temporal", "semantic_relationship": "line one\r\nline two"}]`
	out := parser.ResponseParser{}.Parse("seed", raw, models.FixedCount)
	require.NoError(t, out.Err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, out.Records))
	got, err := report.ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, out.Records, got)
}

func TestReadCSV_BadHeader(t *testing.T) {
	_, err := report.ReadCSV(strings.NewReader("a,b,c,d\n1,2,3,4\n"))
	assert.ErrorIs(t, err, report.ErrBadHeader)
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"out.csv", "nested/out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, report.Save(path, records))

			got, err := report.Load(path)
			require.NoError(t, err)
			assert.Equal(t, records, got)
		})
	}

	err := report.Save(filepath.Join(t.TempDir(), "out.json"), records)
	assert.ErrorIs(t, err, report.ErrUnsupportedOutput)
}

func TestIntentCounts(t *testing.T) {
	got := report.IntentCounts(records)
	assert.Equal(t, []report.IntentCount{
		{Intent: "comparative", Count: 2},
		{Intent: "ERROR", Count: 1},
		{Intent: "temporal", Count: 1},
		{Intent: "underspecified", Count: 1},
	}, got)

	assert.Empty(t, report.IntentCounts(nil))
}

func TestSample(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("bounded by n", func(t *testing.T) {
		got := report.Sample(records, 3, rng)
		require.Len(t, got, 3)
		seen := map[models.ExpandedRecord]bool{}
		for _, r := range got {
			assert.Contains(t, records, r)
			assert.False(t, seen[r], "sampled twice")
			seen[r] = true
		}
	})

	t.Run("smaller input", func(t *testing.T) {
		got := report.Sample(records, 10, rng)
		assert.ElementsMatch(t, records, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, report.Sample(nil, 10, nil))
	})
}

func TestBarChart(t *testing.T) {
	chart := report.BarChart([]report.IntentCount{
		{Intent: "comparative", Count: 4},
		{Intent: "temporal", Count: 2},
		{Intent: "ERROR", Count: 0},
	}, 8)
	assert.Equal(t,
		"comparative | ######## 4\n"+
			"temporal    | #### 2\n"+
			"ERROR       |  0\n",
		chart)
	assert.Empty(t, report.BarChart(nil, 8))
}

func TestRenderHTML(t *testing.T) {
	result := &models.ExpansionResult{
		RunID:    "run-1",
		Strategy: models.FixedCount,
		Seeds:    3,
		Failed:   1,
		Records:  records,
	}
	page, err := report.RenderHTML(result, records[:2])
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<th>Original Seed Query</th>")
	assert.Contains(t, html, "running shoes for flat feet")
	assert.Contains(t, html, "Seeds: 3 (1 failed)")
	assert.NotContains(t, html, "trail shoes")
}

func TestPreviewMarkdown_EscapesCells(t *testing.T) {
	md := report.PreviewMarkdown([]models.ExpandedRecord{
		{Seed: "a|b", Query: "line\nbreak", Intent: "temporal", Relationship: "r"},
	})
	assert.Contains(t, md, `| a\|b | line break | temporal | r |`)
}
