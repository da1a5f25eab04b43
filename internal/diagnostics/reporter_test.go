package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"omnisearch/internal/browser/browsertest"
	"omnisearch/internal/catalog"
	"omnisearch/internal/scraper"
)

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func loadedPage(t *testing.T, html string) *browsertest.Page {
	t.Helper()
	sess := browsertest.NewSession(map[string]string{"https://x.example": html})
	p, err := sess.NewPage(t.Context())
	require.NoError(t, err)
	page := p.(*browsertest.Page)
	require.NoError(t, page.Navigate("https://x.example/search"))
	return page
}

func TestReportMissingConfig(t *testing.T) {
	logger, logs := observed(zapcore.InfoLevel)
	r := NewReporter(t.TempDir(), logger)

	r.ReportMissingConfig(catalog.Anime, "ANIME_SEARCH_URL")

	entries := logs.FilterMessage("environment variable not found").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "ANIME_SEARCH_URL", entries[0].ContextMap()["variable"])
	assert.Equal(t, "anime", entries[0].ContextMap()["source"])
}

func TestReportScrapeFailure_WritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	logger, logs := observed(zapcore.DebugLevel)
	r := NewReporter(dir, logger)
	page := loadedPage(t, `<html><body><h1>Blocked</h1><p>Try again later</p></body></html>`)

	err := &scraper.ScrapeFailure{Source: catalog.Film, Stage: scraper.StageWait, Err: errors.New("timeout")}
	r.ReportScrapeFailure(catalog.Film, err, page)

	failures := logs.FilterMessage("scrape failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "wait", failures[0].ContextMap()["stage"])

	shot, readErr := os.ReadFile(filepath.Join(dir, ScreenshotFile))
	require.NoError(t, readErr)
	assert.True(t, strings.HasPrefix(string(shot), "\x89PNG"))

	html, readErr := os.ReadFile(filepath.Join(dir, PageFile))
	require.NoError(t, readErr)
	assert.Contains(t, string(html), "Blocked")

	excerpts := logs.FilterMessage("page content").All()
	require.Len(t, excerpts, 1)
	assert.Contains(t, excerpts[0].ContextMap()["excerpt"], "# Blocked")
	assert.Equal(t, 1, page.Screenshots())
}

func TestReportScrapeFailure_WithoutPage(t *testing.T) {
	dir := t.TempDir()
	logger, logs := observed(zapcore.InfoLevel)
	r := NewReporter(dir, logger)

	r.ReportScrapeFailure(catalog.Game, errors.New("target closed"), nil)

	assert.Equal(t, 1, logs.FilterMessage("scrape failed").Len())
	_, err := os.Stat(filepath.Join(dir, ScreenshotFile))
	assert.True(t, os.IsNotExist(err))
}

func TestReportScrapeFailure_OverwritesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(dir, nil)

	r.ReportScrapeFailure(catalog.Film, errors.New("first"), loadedPage(t, "<p>first</p>"))
	r.ReportScrapeFailure(catalog.Book, errors.New("second"), loadedPage(t, "<p>second</p>"))

	html, err := os.ReadFile(r.PagePath())
	require.NoError(t, err)
	assert.Contains(t, string(html), "second")
	assert.NotContains(t, string(html), "first")
}

func TestReportScrapeFailure_UnwritableDirIsLogged(t *testing.T) {
	logger, logs := observed(zapcore.WarnLevel)
	r := NewReporter(filepath.Join(t.TempDir(), "missing", "dir"), logger)

	assert.NotPanics(t, func() {
		r.ReportScrapeFailure(catalog.Film, errors.New("boom"), loadedPage(t, "<p>x</p>"))
	})
	assert.Equal(t, 1, logs.FilterMessage("failed to write screenshot").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to write page content").Len())
}

func TestReportScrapeFailure_Concurrent(t *testing.T) {
	r := NewReporter(t.TempDir(), nil)
	pages := make(map[catalog.SourceKey]*browsertest.Page)
	for _, k := range catalog.Keys() {
		pages[k] = loadedPage(t, "<p>"+k.String()+"</p>")
	}

	var wg sync.WaitGroup
	for k, page := range pages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.ReportScrapeFailure(k, errors.New("boom"), page)
		}()
	}
	wg.Wait()

	html, err := os.ReadFile(r.PagePath())
	require.NoError(t, err)
	assert.Regexp(t, `^<p>(film|anime|manga|book|game)</p>$`, string(html))
}

func TestExcerpt_Truncates(t *testing.T) {
	long := "<p>" + strings.Repeat("a", excerptLimit*2) + "</p>"
	out := excerpt(long)
	assert.Len(t, out, excerptLimit+3)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestExcerpt_KeepsMultiByteRunesWhole(t *testing.T) {
	out := excerpt("<p>a" + strings.Repeat("é", excerptLimit) + "</p>")

	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "é..."))
	assert.LessOrEqual(t, len(out), excerptLimit+3)
}
