// Package film searches the film catalog.
package film

import (
	"omnisearch/internal/catalog"
	"omnisearch/internal/extractor"
	"omnisearch/internal/scraper"
)

const (
	resultsSection = `section[data-testid="find-results-section-title"]`
	metadataItem   = ".ipc-metadata-list-summary-item__li"
)

// FilmScraper reads the title section of the film search page.
type FilmScraper struct{}

func New() *FilmScraper { return &FilmScraper{} }

func (s *FilmScraper) Key() catalog.SourceKey { return catalog.Film }

// NeedsUserAgent is true: the site serves a different page to headless
// Chrome's default agent.
func (s *FilmScraper) NeedsUserAgent() bool { return true }

func (s *FilmScraper) SearchURL(baseURL, query string) string {
	return scraper.SearchURL(baseURL, "q", query)
}

// Rule reads year and type from the first two items of the title's
// metadata list; type defaults to "Film".
func (s *FilmScraper) Rule() extractor.Rule {
	return extractor.Rule{
		Container: resultsSection,
		Rows:      resultsSection + " .find-result-item",
		Title:     extractor.Text(".ipc-metadata-list-summary-item__t"),
		Year:      extractor.Field{Selector: ".ipc-metadata-list-summary-item__tl " + metadataItem, Index: 0},
		Type:      extractor.Field{Selector: ".ipc-metadata-list-summary-item__tl " + metadataItem, Index: 1, Default: "Film"},
		URL:       extractor.Attr(".ipc-metadata-list-summary-item__t", "href"),
		Image:     extractor.Attr(".ipc-image", "src"),
		Desc:      extractor.Text(".ipc-metadata-list-summary-item__stl " + metadataItem),
	}
}
