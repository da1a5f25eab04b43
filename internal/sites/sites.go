// Package sites wires every catalog scraper into one registry.
package sites

import (
	"omnisearch/internal/scraper"
	"omnisearch/internal/sites/anime"
	"omnisearch/internal/sites/book"
	"omnisearch/internal/sites/film"
	"omnisearch/internal/sites/game"
	"omnisearch/internal/sites/manga"
)

// All returns one scraper per source, in presentation order.
func All() []scraper.Site {
	return []scraper.Site{
		film.New(),
		anime.New(),
		manga.New(),
		book.New(),
		game.New(),
	}
}

// Registry returns the registry of All.
func Registry() (*scraper.Registry, error) {
	return scraper.NewRegistry(All()...)
}
