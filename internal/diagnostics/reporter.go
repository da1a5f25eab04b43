// Package diagnostics logs source failures and keeps a snapshot of the page
// that failed.
package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"go.uber.org/zap"

	"omnisearch/internal/browser"
	"omnisearch/internal/catalog"
	"omnisearch/internal/scraper"
)

// Snapshot file names. A later failure overwrites an earlier one.
const (
	ScreenshotFile = "error-screenshot.png"
	PageFile       = "error-page.html"
)

const excerptLimit = 2000

// Reporter writes failure logs and snapshots. It is safe for concurrent use.
type Reporter struct {
	dir    string
	logger *zap.Logger

	mu sync.Mutex
}

// NewReporter creates a Reporter writing snapshots into dir.
func NewReporter(dir string, logger *zap.Logger) *Reporter {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{dir: dir, logger: logger}
}

// ScreenshotPath is where the last failure screenshot is written.
func (r *Reporter) ScreenshotPath() string { return filepath.Join(r.dir, ScreenshotFile) }

// PagePath is where the last failure page HTML is written.
func (r *Reporter) PagePath() string { return filepath.Join(r.dir, PageFile) }

func (r *Reporter) ReportMissingConfig(source catalog.SourceKey, variable string) {
	r.logger.Warn("environment variable not found",
		zap.String("source", source.String()),
		zap.String("variable", variable),
	)
}

func (r *Reporter) ReportScrapeFailure(source catalog.SourceKey, err error, page browser.Page) {
	fields := []zap.Field{zap.String("source", source.String()), zap.Error(err)}
	var sf *scraper.ScrapeFailure
	if errors.As(err, &sf) {
		fields = append(fields, zap.String("stage", string(sf.Stage)))
	}
	r.logger.Error("scrape failed", fields...)

	if page != nil {
		r.snapshot(source, page)
	}
}

// snapshot never panics; a page that is already gone just yields a log line.
func (r *Reporter) snapshot(source catalog.SourceKey, page browser.Page) {
	log := r.logger.With(zap.String("source", source.String()))
	defer func() {
		if rec := recover(); rec != nil {
			log.Warn("snapshot panicked", zap.Any("panic", rec))
		}
	}()

	shot, shotErr := page.Screenshot()
	if shotErr != nil {
		log.Warn("failed to capture screenshot", zap.Error(shotErr))
	}
	html, htmlErr := page.HTML()
	if htmlErr != nil {
		log.Warn("failed to capture page content", zap.Error(htmlErr))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if shotErr == nil {
		if err := os.WriteFile(r.ScreenshotPath(), shot, 0o644); err != nil {
			log.Warn("failed to write screenshot", zap.Error(err))
		} else {
			log.Info("saved error screenshot", zap.String("path", r.ScreenshotPath()))
		}
	}
	if htmlErr == nil {
		if err := os.WriteFile(r.PagePath(), []byte(html), 0o644); err != nil {
			log.Warn("failed to write page content", zap.Error(err))
		} else {
			log.Info("saved error page", zap.String("path", r.PagePath()))
		}
		if ce := log.Check(zap.DebugLevel, "page content"); ce != nil {
			ce.Write(zap.String("excerpt", excerpt(html)))
		}
	}
}

// excerpt renders html as markdown, cut to at most excerptLimit bytes on a
// rune boundary.
func excerpt(html string) string {
	converter := md.NewConverter("", true, nil)
	text, err := converter.ConvertString(html)
	if err != nil {
		text = html
	}
	if len(text) > excerptLimit {
		cut := excerptLimit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}
