// Package anime searches the anime catalog.
package anime

import (
	"omnisearch/internal/catalog"
	"omnisearch/internal/sites/seasonal"
)

// AnimeScraper searches the categories table with cat=anime.
type AnimeScraper struct {
	*seasonal.Table
}

func New() *AnimeScraper {
	return &AnimeScraper{Table: seasonal.NewTable(catalog.Anime, "anime")}
}
