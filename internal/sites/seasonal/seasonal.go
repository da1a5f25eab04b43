// Package seasonal reads the categories table shared by the anime and manga
// search pages.
package seasonal

import (
	"omnisearch/internal/catalog"
	"omnisearch/internal/extractor"
	"omnisearch/internal/scraper"
)

const rows = ".js-categories-seasonal tr"

// Table is a categories-table search filtered to one category.
type Table struct {
	key      catalog.SourceKey
	category string
}

// NewTable returns the table scraper for key, searching in category.
func NewTable(key catalog.SourceKey, category string) *Table {
	return &Table{key: key, category: category}
}

func (t *Table) Key() catalog.SourceKey { return t.key }
func (t *Table) NeedsUserAgent() bool   { return false }

func (t *Table) SearchURL(baseURL, query string) string {
	return scraper.SearchURL(baseURL, "q", query, "cat", t.category)
}

// Rule skips the header row. The link is on the anchor wrapping the bold
// title, and images are lazy-loaded so data-src wins over src.
func (t *Table) Rule() extractor.Rule {
	return extractor.Rule{
		Container: rows,
		Rows:      rows,
		Skip:      1,
		Title:     extractor.Text(".hoverinfo_trigger strong"),
		Type:      extractor.Text("td:nth-child(3)"),
		URL:       extractor.Field{Selector: ".hoverinfo_trigger strong", Parent: true, Attrs: []string{"href"}},
		Image:     extractor.Attr(".picSurround img", "data-src", "src"),
		Desc:      extractor.Text(".pt4"),
	}
}
