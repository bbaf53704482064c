package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"query-expander/internal/models"
)

// PreviewMarkdown renders records as a GFM table.
func PreviewMarkdown(records []models.ExpandedRecord) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(models.Columns, " | ") + " |\n")
	b.WriteString(strings.Repeat("| --- ", len(models.Columns)) + "|\n")
	for _, r := range records {
		cells := recordRow(r)
		for i, c := range cells {
			cells[i] = escapeCell(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// SummaryMarkdown renders the run totals and the intent counts.
func SummaryMarkdown(result *models.ExpansionResult, counts []IntentCount) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Run: `%s`\n", result.RunID)
	fmt.Fprintf(&b, "- Strategy: %s\n", result.Strategy)
	fmt.Fprintf(&b, "- Seeds: %d (%d failed)\n", result.Seeds, result.Failed)
	fmt.Fprintf(&b, "- Expanded queries: %d\n\n", len(result.Records))

	b.WriteString("| " + models.ColumnIntent + " | Count |\n| --- | --- |\n")
	for _, c := range counts {
		fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(c.Intent), c.Count)
	}
	return b.String()
}

// RenderHTML converts the summary and preview to a standalone HTML page.
func RenderHTML(result *models.ExpansionResult, sample []models.ExpandedRecord) ([]byte, error) {
	var doc strings.Builder
	doc.WriteString("# Query Expander Export\n\n## Summary\n\n")
	doc.WriteString(SummaryMarkdown(result, IntentCounts(result.Records)))
	doc.WriteString("\n## Preview of expanded results\n\n")
	doc.WriteString(PreviewMarkdown(sample))

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	var body bytes.Buffer
	if err := md.Convert([]byte(doc.String()), &body); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Query Expander Export</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
