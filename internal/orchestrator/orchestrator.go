// Package orchestrator fans one search query out to every registered source
// over a single shared browser session.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"omnisearch/internal/browser"
	"omnisearch/internal/catalog"
	"omnisearch/internal/scraper"
)

var (
	// ErrEmptyQuery is returned when the query is empty after trimming.
	ErrEmptyQuery = errors.New("search query must not be empty")
	// ErrSession wraps failures to start or release the browser session.
	ErrSession = errors.New("browser session failed")
)

// Search results reported to the SearchObserver.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// SessionFunc starts the browser session shared by one search.
type SessionFunc func(ctx context.Context) (browser.Session, error)

// SearchObserver receives one observation per Search call.
type SearchObserver interface {
	ObserveSearch(result string)
}

// Orchestrator runs searches across the registry.
type Orchestrator struct {
	registry *scraper.Registry
	runner   *scraper.Runner
	launch   SessionFunc
	logger   *zap.Logger
	observer SearchObserver
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithObserver(obs SearchObserver) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// New creates an Orchestrator.
func New(registry *scraper.Registry, runner *scraper.Runner, launch SessionFunc, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		runner:   runner,
		launch:   launch,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Search runs query against every source concurrently and returns at most
// catalog.MaxPerSource records per source. Every source key is present in
// the result; a source that failed or is not configured maps to an empty
// list. Only an empty query or a session failure fails the whole search.
func (o *Orchestrator) Search(ctx context.Context, query string) (results catalog.Results, err error) {
	defer func() { o.observe(err) }()

	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()
	sess, err := o.launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSession, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			results, err = nil, fmt.Errorf("%w: close: %w", ErrSession, cerr)
		}
	}()

	sites := o.registry.Sites()
	lists := make([][]catalog.Record, len(sites))

	// Sources never return an error here, so the group never cancels
	// its siblings.
	var g errgroup.Group
	for i, site := range sites {
		g.Go(func() error {
			lists[i] = catalog.Truncate(o.runner.Fetch(ctx, site, q, sess), catalog.MaxPerSource)
			return nil
		})
	}
	_ = g.Wait()

	results = make(catalog.Results, len(catalog.Keys()))
	for _, k := range catalog.Keys() {
		results[k] = []catalog.Record{}
	}
	for i, site := range sites {
		if lists[i] != nil {
			results[site.Key()] = lists[i]
		}
	}

	o.logger.Info("search finished",
		zap.String("query", q),
		zap.Int("film", len(results[catalog.Film])),
		zap.Int("anime", len(results[catalog.Anime])),
		zap.Int("manga", len(results[catalog.Manga])),
		zap.Int("book", len(results[catalog.Book])),
		zap.Int("game", len(results[catalog.Game])),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

func (o *Orchestrator) observe(err error) {
	if o.observer == nil {
		return
	}
	switch {
	case err == nil:
		o.observer.ObserveSearch(ResultOK)
	case errors.Is(err, ErrEmptyQuery):
		o.observer.ObserveSearch(ResultInvalid)
	default:
		o.observer.ObserveSearch(ResultError)
	}
}
