package scraper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnisearch/internal/catalog"
	"omnisearch/internal/extractor"
	"omnisearch/internal/scraper"
)

func allTestSites() []scraper.Site {
	var sites []scraper.Site
	for _, k := range catalog.Keys() {
		sites = append(sites, newTestSite(k, false))
	}
	return sites
}

func TestNewRegistry(t *testing.T) {
	reg, err := scraper.NewRegistry(allTestSites()...)
	require.NoError(t, err)

	sites := reg.Sites()
	require.Len(t, sites, 5)
	for i, k := range catalog.Keys() {
		assert.Equal(t, k, sites[i].Key())
	}
	s, ok := reg.Get(catalog.Book)
	require.True(t, ok)
	assert.Equal(t, catalog.Book, s.Key())
}

func TestNewRegistry_Rejects(t *testing.T) {
	sites := allTestSites()

	_, err := scraper.NewRegistry(sites[:4]...)
	assert.ErrorContains(t, err, "game")

	_, err = scraper.NewRegistry(append(sites, newTestSite(catalog.Film, true))...)
	assert.ErrorContains(t, err, "duplicate")

	_, err = scraper.NewRegistry(append(sites, newTestSite("music", false))...)
	assert.ErrorContains(t, err, "unknown")

	_, err = scraper.NewRegistry(append(sites[:4], nil)...)
	assert.Error(t, err)

	broken := newTestSite(catalog.Game, false)
	broken.rule = extractor.Rule{}
	_, err = scraper.NewRegistry(append(sites[:4:4], broken)...)
	assert.ErrorContains(t, err, "row selector")
}
