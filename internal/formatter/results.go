package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"omnisearch/internal/catalog"
)

// ResultsContent holds the aggregated results of one search and implements
// Content. Sources are always rendered in catalog.Keys order.
type ResultsContent struct {
	query   string
	entries []catalog.Entry
}

// NewResultsContent creates a new ResultsContent instance.
func NewResultsContent(query string, results catalog.Results) *ResultsContent {
	return &ResultsContent{query: query, entries: results.Entries()}
}

func (c *ResultsContent) ToMarkdown() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Search: %s\n\n", c.query))
	for _, e := range c.entries {
		sb.WriteString(fmt.Sprintf("## %s\n\n", e.Key))
		if len(e.Data) == 0 {
			sb.WriteString("_No results._\n\n")
			continue
		}
		for i, r := range e.Data {
			sb.WriteString(fmt.Sprintf("%d. [%s](%s)", i+1, r.Title, r.URL))
			if meta := metadata(r); meta != "" {
				sb.WriteString(" (" + meta + ")")
			}
			sb.WriteString("\n")
			if r.Desc != "" {
				sb.WriteString("   " + r.Desc + "\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (c *ResultsContent) ToText() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Search: %s\n\n", c.query))
	for _, e := range c.entries {
		sb.WriteString(fmt.Sprintf("[%s] %d results\n", e.Key, len(e.Data)))
		for i, r := range e.Data {
			sb.WriteString(fmt.Sprintf("%d. %s", i+1, r.Title))
			if meta := metadata(r); meta != "" {
				sb.WriteString(" (" + meta + ")")
			}
			sb.WriteString("\n")
			if r.URL != "" {
				sb.WriteString("   " + r.URL + "\n")
			}
			if r.Desc != "" {
				sb.WriteString("   " + r.Desc + "\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (c *ResultsContent) ToHTML() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h1>Search: %s</h1>\n", html.EscapeString(c.query)))
	for _, e := range c.entries {
		sb.WriteString(fmt.Sprintf("<h2>%s</h2>\n<ol>\n", html.EscapeString(e.Key.String())))
		for _, r := range e.Data {
			sb.WriteString("  <li>")
			if r.Image != "" {
				sb.WriteString(fmt.Sprintf("<img src=%q alt=\"\"> ", html.EscapeString(r.Image)))
			}
			sb.WriteString(fmt.Sprintf("<a href=%q>%s</a>", html.EscapeString(r.URL), html.EscapeString(r.Title)))
			if meta := metadata(r); meta != "" {
				sb.WriteString(" <small>" + html.EscapeString(meta) + "</small>")
			}
			if r.Desc != "" {
				sb.WriteString("<p>" + html.EscapeString(r.Desc) + "</p>")
			}
			sb.WriteString("</li>\n")
		}
		sb.WriteString("</ol>\n")
	}
	return sb.String(), nil
}

// ToJSON returns the same array the HTTP API serves.
func (c *ResultsContent) ToJSON() ([]byte, error) {
	return json.Marshal(c.entries)
}

func (c *ResultsContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Source", "Title", "Year", "Type", "URL", "Image", "Description"})
	for _, e := range c.entries {
		for _, r := range e.Data {
			_ = w.Write([]string{e.Key.String(), r.Title, r.Year, r.Type, r.URL, r.Image, r.Desc})
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

func metadata(r catalog.Record) string {
	var parts []string
	if r.Year != "" {
		parts = append(parts, r.Year)
	}
	if r.Type != "" {
		parts = append(parts, r.Type)
	}
	return strings.Join(parts, ", ")
}
