// Package manga searches the manga catalog.
package manga

import (
	"omnisearch/internal/catalog"
	"omnisearch/internal/sites/seasonal"
)

// MangaScraper searches the categories table with cat=manga.
type MangaScraper struct {
	*seasonal.Table
}

func New() *MangaScraper {
	return &MangaScraper{Table: seasonal.NewTable(catalog.Manga, "manga")}
}
