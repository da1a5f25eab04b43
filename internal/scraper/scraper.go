// Package scraper runs a source's search page through the shared browser
// session and turns it into records.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"omnisearch/internal/browser"
	"omnisearch/internal/catalog"
	"omnisearch/internal/config"
	"omnisearch/internal/extractor"
)

// Site is one catalog's search page: where it lives and how to read it.
type Site interface {
	Key() catalog.SourceKey
	NeedsUserAgent() bool
	SearchURL(baseURL, query string) string
	Rule() extractor.Rule
}

// Reporter records failures. Implementations must not panic and must not
// affect control flow.
type Reporter interface {
	ReportMissingConfig(source catalog.SourceKey, variable string)
	ReportScrapeFailure(source catalog.SourceKey, err error, page browser.Page)
}

// Observer receives one observation per Fetch.
type Observer interface {
	ObserveScrape(source catalog.SourceKey, outcome Outcome, elapsed time.Duration)
}

// Outcome classifies a finished Fetch.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeEmpty         Outcome = "empty"
	OutcomeMissingConfig Outcome = "missing_config"
	OutcomeFailed        Outcome = "failed"
)

// Runner drives sites against a browser session.
type Runner struct {
	cfg      *config.Config
	reporter Reporter
	observer Observer
	logger   *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for per-source debug output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithObserver sets where Fetch outcomes are recorded.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// NewRunner creates a Runner. cfg is read, never modified.
func NewRunner(cfg *config.Config, reporter Reporter, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, reporter: reporter, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch returns the site's records for query, or an empty list when the
// source is not configured or the scrape fails.
func (r *Runner) Fetch(ctx context.Context, site Site, query string, sess browser.Session) []catalog.Record {
	start := time.Now()
	records, err := r.Run(ctx, site, query, sess)
	if r.observer != nil {
		r.observer.ObserveScrape(site.Key(), outcomeOf(records, err), time.Since(start))
	}
	if err != nil {
		return []catalog.Record{}
	}
	return records
}

func outcomeOf(records []catalog.Record, err error) Outcome {
	switch {
	case errors.Is(err, config.ErrMissingConfig):
		return OutcomeMissingConfig
	case err != nil:
		return OutcomeFailed
	case len(records) == 0:
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}

// Run is Fetch without the failure swallowing. The error is either a
// *config.MissingConfigError or a *ScrapeFailure. Failures have already been
// reported when Run returns, and the page it opened is always closed.
func (r *Runner) Run(ctx context.Context, site Site, query string, sess browser.Session) (records []catalog.Record, err error) {
	key := site.Key()
	log := r.logger.With(zap.String("source", key.String()))

	var page browser.Page
	defer func() {
		if rec := recover(); rec != nil {
			records, err = nil, r.fail(key, StagePanic, eris.Errorf("panic: %v", rec), page)
		}
		if page != nil {
			if cerr := page.Close(); cerr != nil {
				log.Debug("failed to close page", zap.Error(cerr))
			}
		}
	}()

	sc, err := r.cfg.Resolve(key, site.NeedsUserAgent())
	if err != nil {
		var missing *config.MissingConfigError
		if errors.As(err, &missing) {
			r.reporter.ReportMissingConfig(key, missing.Var)
		}
		return nil, err
	}

	rule := site.Rule()
	arg, err := rule.JSON()
	if err != nil {
		return nil, r.fail(key, StageExtract, err, nil)
	}

	p, err := sess.NewPage(ctx)
	if err != nil {
		return nil, r.fail(key, StagePage, err, nil)
	}
	page = p

	if sc.UserAgent != "" {
		if err := page.SetUserAgent(sc.UserAgent); err != nil {
			return nil, r.fail(key, StageUserAgent, err, page)
		}
	}

	target := site.SearchURL(sc.BaseURL, query)
	log.Debug("navigating", zap.String("url", target))
	if err := page.Navigate(target); err != nil {
		return nil, r.fail(key, StageNavigate, err, page)
	}

	if err := page.WaitElement(rule.WaitSelector()); err != nil {
		return nil, r.fail(key, StageWait, err, page)
	}

	raw, err := page.Eval(extractor.Script(), arg)
	if err != nil {
		return nil, r.fail(key, StageExtract, err, page)
	}

	records, err = extractor.Decode(raw)
	if err != nil {
		return nil, r.fail(key, StageDecode, err, page)
	}

	log.Debug("search results", zap.Int("count", len(records)), zap.Any("records", records))
	return records, nil
}

func (r *Runner) fail(key catalog.SourceKey, stage Stage, err error, page browser.Page) error {
	f := &ScrapeFailure{Source: key, Stage: stage, Err: eris.Wrap(err, string(stage))}
	r.reporter.ReportScrapeFailure(key, f, page)
	return f
}

// SearchURL appends query parameters to baseURL, keeping their order and
// any query string baseURL already has. pairs alternate name and value;
// values are query-escaped.
func SearchURL(baseURL string, pairs ...string) string {
	var sb strings.Builder
	sb.WriteString(baseURL)
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
		if strings.HasSuffix(baseURL, "?") || strings.HasSuffix(baseURL, "&") {
			sep = ""
		}
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		sb.WriteString(sep)
		sb.WriteString(url.QueryEscape(pairs[i]))
		sb.WriteString("=")
		sb.WriteString(url.QueryEscape(pairs[i+1]))
		sep = "&"
	}
	return sb.String()
}

// Stage names the step of a scrape that failed.
type Stage string

const (
	StagePage      Stage = "page"
	StageUserAgent Stage = "user_agent"
	StageNavigate  Stage = "navigate"
	StageWait      Stage = "wait"
	StageExtract   Stage = "extract"
	StageDecode    Stage = "decode"
	StagePanic     Stage = "panic"
)

// ScrapeFailure is a source-scoped failure after configuration resolved.
type ScrapeFailure struct {
	Source catalog.SourceKey
	Stage  Stage
	Err    error
}

func (f *ScrapeFailure) Error() string {
	return fmt.Sprintf("scrape %s failed at %s: %v", f.Source, f.Stage, f.Err)
}

func (f *ScrapeFailure) Unwrap() error { return f.Err }
