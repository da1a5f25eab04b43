package orchestrator

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"omnisearch/internal/browser"
	"omnisearch/internal/browser/browsertest"
	"omnisearch/internal/catalog"
	"omnisearch/internal/config"
	"omnisearch/internal/scraper"
	"omnisearch/internal/sites"
	"omnisearch/internal/sites/sitetest"
)

const (
	filmURL  = "https://films.example/find"
	animeURL = "https://catalog.example/anime.php"
	mangaURL = "https://catalog.example/manga.php"
	bookURL  = "https://books.example/search"
	gameURL  = "https://store.example/search/"
)

func fixture(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func newSession(t *testing.T) *browsertest.Session {
	t.Helper()
	table := fixture(t, "../sites/seasonal/testdata/naruto.html")
	return browsertest.NewSession(map[string]string{
		filmURL:  fixture(t, "../sites/film/testdata/find.html"),
		animeURL: table,
		mangaURL: table,
		bookURL:  fixture(t, "../sites/book/testdata/search.html"),
		gameURL:  fixture(t, "../sites/game/testdata/search.html"),
	})
}

func fullConfig() *config.Config {
	return &config.Config{
		UserAgent: "Mozilla/5.0 test",
		Sources: map[string]string{
			"film":  filmURL,
			"anime": animeURL,
			"manga": mangaURL,
			"book":  bookURL,
			"game":  gameURL,
		},
	}
}

type searchCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *searchCounter) ObserveSearch(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[result]++
}

func newOrchestrator(t *testing.T, cfg *config.Config, launch SessionFunc, opts ...Option) *Orchestrator {
	t.Helper()
	reg, err := sites.Registry()
	require.NoError(t, err)
	return New(reg, scraper.NewRunner(cfg, sitetest.NopReporter{}), launch, opts...)
}

func launcherFor(sess browser.Session, calls *int) SessionFunc {
	return func(context.Context) (browser.Session, error) {
		*calls++
		return sess, nil
	}
}

func TestSearch_AllSources(t *testing.T) {
	sess := newSession(t)
	var calls int
	o := newOrchestrator(t, fullConfig(), launcherFor(sess, &calls))

	results, err := o.Search(context.Background(), "dune")
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "one session per search")
	assert.Equal(t, 1, sess.Closed())
	assert.Len(t, results, len(catalog.Keys()))

	film := results[catalog.Film]
	require.NotEmpty(t, film)
	assert.LessOrEqual(t, len(film), catalog.MaxPerSource)
	for _, r := range film {
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.URL)
	}

	assert.Len(t, results[catalog.Anime], 3, "truncated from 4")
	assert.Len(t, results[catalog.Manga], 3)
	assert.Len(t, results[catalog.Book], 2)
	assert.Len(t, results[catalog.Game], 3)

	pages := sess.Pages()
	require.Len(t, pages, 5, "one page per source")
	for _, p := range pages {
		assert.Equal(t, 1, p.Closed())
	}
}

func TestSearch_UnconfiguredSource(t *testing.T) {
	cfg := fullConfig()
	delete(cfg.Sources, "anime")
	sess := newSession(t)
	var calls int
	o := newOrchestrator(t, cfg, launcherFor(sess, &calls))

	results, err := o.Search(context.Background(), "naruto")
	require.NoError(t, err)

	anime, ok := results[catalog.Anime]
	require.True(t, ok)
	assert.NotNil(t, anime)
	assert.Empty(t, anime)
	assert.NotEmpty(t, results[catalog.Manga])
	assert.NotEmpty(t, results[catalog.Film])
	assert.Len(t, sess.Pages(), 4, "no page is opened for the unconfigured source")
}

func TestSearch_FailingSourceIsIsolated(t *testing.T) {
	sess := newSession(t)
	cfg := fullConfig()
	cfg.Sources["game"] = "https://unreachable.invalid/search"
	var calls int
	o := newOrchestrator(t, cfg, launcherFor(sess, &calls))

	results, err := o.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Empty(t, results[catalog.Game])
	assert.NotNil(t, results[catalog.Game])
	assert.NotEmpty(t, results[catalog.Book])
	for _, p := range sess.Pages() {
		assert.Equal(t, 1, p.Closed())
	}
}

func TestSearch_PanickingSourceIsIsolated(t *testing.T) {
	sess := newSession(t)
	var once sync.Once
	sess.Setup = func(p *browsertest.Page) {
		once.Do(func() { p.PanicOnEval = true })
	}
	var calls int
	o := newOrchestrator(t, fullConfig(), launcherFor(sess, &calls))

	var results catalog.Results
	var err error
	require.NotPanics(t, func() {
		results, err = o.Search(context.Background(), "dune")
	})
	require.NoError(t, err)

	empty := 0
	for _, k := range catalog.Keys() {
		if len(results[k]) == 0 {
			empty++
		}
	}
	assert.Equal(t, 1, empty)
	assert.Equal(t, 1, sess.Closed())
}

func TestSearch_EmptyQuery(t *testing.T) {
	counter := &searchCounter{}
	var calls int
	o := newOrchestrator(t, fullConfig(), launcherFor(newSession(t), &calls), WithObserver(counter))

	for _, q := range []string{"", "   ", "\t\n"} {
		results, err := o.Search(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.Nil(t, results)
	}
	assert.Zero(t, calls, "no session is started for an invalid query")
	assert.Equal(t, 3, counter.counts[ResultInvalid])
}

func TestSearch_SessionStartFails(t *testing.T) {
	counter := &searchCounter{}
	boom := errors.New("chromium not found")
	o := newOrchestrator(t, fullConfig(), func(context.Context) (browser.Session, error) {
		return nil, boom
	}, WithObserver(counter))

	results, err := o.Search(context.Background(), "dune")
	assert.ErrorIs(t, err, ErrSession)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, results)
	assert.Equal(t, 1, counter.counts[ResultError])
}

func TestSearch_SessionCloseFails(t *testing.T) {
	sess := newSession(t)
	sess.CloseErr = errors.New("browser already gone")
	var calls int
	o := newOrchestrator(t, fullConfig(), launcherFor(sess, &calls))

	results, err := o.Search(context.Background(), "dune")
	assert.ErrorIs(t, err, ErrSession)
	assert.Nil(t, results)
	assert.Equal(t, 1, sess.Closed())
}

func TestSearch_TrimsQueryAndLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	counter := &searchCounter{}
	sess := newSession(t)
	var calls int
	o := newOrchestrator(t, fullConfig(), launcherFor(sess, &calls),
		WithLogger(zap.New(core)), WithObserver(counter))

	_, err := o.Search(context.Background(), "  dune  ")
	require.NoError(t, err)

	for _, p := range sess.Pages() {
		assert.NotContains(t, p.URL(), "+dune+")
		assert.Contains(t, p.URL(), "=dune")
	}
	entries := logs.FilterMessage("search finished").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "dune", entries[0].ContextMap()["query"])
	assert.Equal(t, 1, counter.counts[ResultOK])
}
