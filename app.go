package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"omnisearch/internal/browser"
	"omnisearch/internal/config"
	"omnisearch/internal/diagnostics"
	"omnisearch/internal/metrics"
	"omnisearch/internal/orchestrator"
	"omnisearch/internal/scraper"
	"omnisearch/internal/sites"
)

// app is the wired search stack shared by the search and serve commands.
type app struct {
	search  *orchestrator.Orchestrator
	metrics *metrics.Metrics
}

// newApp wires the registry, runner, reporter and browser launcher. When reg
// is nil no metrics are recorded.
func newApp(cfg *config.Config, log *zap.Logger, reg *prometheus.Registry) *app {
	registry, err := sites.Registry()
	if err != nil {
		// The site list is static; a broken registry is a programming error.
		panic(err)
	}

	reporter := diagnostics.NewReporter(cfg.Diagnostics.Dir, log.Named("diagnostics"))
	runnerOpts := []scraper.Option{scraper.WithLogger(log.Named("scraper"))}
	searchOpts := []orchestrator.Option{orchestrator.WithLogger(log.Named("search"))}

	var m *metrics.Metrics
	if reg != nil {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		runnerOpts = append(runnerOpts, scraper.WithObserver(m))
		searchOpts = append(searchOpts, orchestrator.WithObserver(m))
	}

	runner := scraper.NewRunner(cfg, reporter, runnerOpts...)
	return &app{
		search:  orchestrator.New(registry, runner, launcher(cfg.Browser, log), searchOpts...),
		metrics: m,
	}
}

// launcher starts a fresh browser for every search.
func launcher(bc config.BrowserConfig, log *zap.Logger) orchestrator.SessionFunc {
	return func(context.Context) (browser.Session, error) {
		log.Debug("launching browser",
			zap.Bool("headless", bc.Headless),
			zap.String("proxy", bc.ProxyURL),
		)
		return browser.New(browser.Config{
			Headless:  bc.Headless,
			BinPath:   bc.Bin,
			ProxyURL:  bc.ProxyURL,
			NoSandbox: true,
			Timeout:   bc.Timeout,
		})
	}
}
