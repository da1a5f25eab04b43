// Package game searches the game store catalog.
package game

import (
	"omnisearch/internal/catalog"
	"omnisearch/internal/extractor"
	"omnisearch/internal/scraper"
)

const rows = ".search_result_row"

// GameScraper reads the store's search result rows. Each row is itself the
// link to the item.
type GameScraper struct{}

func New() *GameScraper { return &GameScraper{} }

func (s *GameScraper) Key() catalog.SourceKey { return catalog.Game }
func (s *GameScraper) NeedsUserAgent() bool   { return false }

func (s *GameScraper) SearchURL(baseURL, query string) string {
	return scraper.SearchURL(baseURL, "term", query)
}

// Rule takes the year from the release date cell and uses the price as the
// description.
func (s *GameScraper) Rule() extractor.Rule {
	return extractor.Rule{
		Container: rows,
		Rows:      rows,
		Title:     extractor.Text(".search_name"),
		Year:      extractor.Text(".search_released"),
		Type:      extractor.Const("Game"),
		URL:       extractor.Field{Self: true, Attrs: []string{"href"}},
		Image:     extractor.Attr(".search_capsule img", "src"),
		Desc:      extractor.Text(".discount_final_price"),
	}
}
