package manga

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnisearch/internal/browser/browsertest"
	"omnisearch/internal/catalog"
	"omnisearch/internal/config"
	"omnisearch/internal/scraper"
	"omnisearch/internal/sites/sitetest"
)

func TestFetch(t *testing.T) {
	html, err := os.ReadFile("../seasonal/testdata/naruto.html")
	require.NoError(t, err)
	sess := browsertest.NewSession(map[string]string{"https://catalog.example/search/all": string(html)})
	cfg := &config.Config{Sources: map[string]string{"manga": "https://catalog.example/search/all"}}

	records := scraper.NewRunner(cfg, sitetest.NopReporter{}).Fetch(context.Background(), New(), "naruto", sess)

	require.NotEmpty(t, records)
	assert.Equal(t, "https://catalog.example/search/all?q=naruto&cat=manga", sess.Pages()[0].URL())
}

func TestFetch_NotConfigured(t *testing.T) {
	assert.Equal(t, catalog.Manga, New().Key())
	sitetest.AssertMissingConfig(t, New(), &config.Config{}, "MANGA_SEARCH_URL")
}
