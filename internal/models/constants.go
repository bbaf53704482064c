package models

const (
	// MissingValue fills a field the model left out.
	MissingValue = "MISSING"
	// ErrorValue marks the single record emitted for a seed that failed.
	ErrorValue = "ERROR"

	// RawSnippetLen bounds the raw response text kept in an error record.
	RawSnippetLen = 150

	ColumnSeed         = "Original Seed Query"
	ColumnQuery        = "Synth Query"
	ColumnIntent       = "Intent Type"
	ColumnRelationship = "Semantic Relationship"
)

// Columns is the output header, in order.
var Columns = []string{ColumnSeed, ColumnQuery, ColumnIntent, ColumnRelationship}

// IntentTypes is the vocabulary the prompt asks the model to draw from.
var IntentTypes = []string{
	"ambiguous",
	"underspecified",
	"exploratory",
	"multi-faceted",
	"comparative",
	"task-oriented",
	"temporal",
}

var (
	FixedPromptTemplate = `The user provided a base query: "%s"

Generate %d short to mid-tail search queries that simulate diversified user intents (fanout) based on this input.
Each query should be phrased like a real-world search input (max 12 words). Avoid full sentences or overly formal phrasing.

For each query, output:
- "query": [the generated search phrase]
- "intent_type": [%s]
- "semantic_relationship": [describe how this relates to the original search]

Respond only with a valid raw JSON list of objects. Do not include any explanation, markdown or backticks.
`

	ModelDecidedPromptTemplate = `The user provided a base query: "%s"

First reason about how many search queries are needed to cover the diversified user intents (fanout) behind this input.
A narrow query needs few variants, a broad or ambiguous one needs more. Never exceed %d queries.
Then generate exactly that many short to mid-tail search queries. Each query should be phrased like a real-world search input (max 12 words). Avoid full sentences or overly formal phrasing.

For each query, output:
- "query": [the generated search phrase]
- "intent_type": [%s]
- "semantic_relationship": [describe how this relates to the original search]

Respond only with valid raw JSON of this shape, with no markdown or backticks:
{"reasoning": "<why this many queries>", "target_number": <number of queries>, "actual_queries": [<query objects>]}
`
)
