// Package book searches the book catalog.
package book

import (
	"omnisearch/internal/catalog"
	"omnisearch/internal/extractor"
	"omnisearch/internal/scraper"
)

const rows = ".tableList tr"

// BookScraper reads the book search results table.
type BookScraper struct{}

func New() *BookScraper { return &BookScraper{} }

func (s *BookScraper) Key() catalog.SourceKey { return catalog.Book }
func (s *BookScraper) NeedsUserAgent() bool   { return true }

func (s *BookScraper) SearchURL(baseURL, query string) string {
	return scraper.SearchURL(baseURL, "q", query, "search_type", "books")
}

func (s *BookScraper) Rule() extractor.Rule {
	return extractor.Rule{
		Container: rows,
		Rows:      rows,
		Title:     extractor.Text(".bookTitle"),
		Type:      extractor.Const("Book"),
		URL:       extractor.Attr(".bookTitle", "href"),
		Image:     extractor.Attr("img.bookCover", "src"),
	}
}
