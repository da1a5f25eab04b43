// Package sitetest holds helpers shared by the site package tests.
package sitetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnisearch/internal/browser"
	"omnisearch/internal/browser/browsertest"
	"omnisearch/internal/catalog"
	"omnisearch/internal/config"
	"omnisearch/internal/scraper"
)

// NopReporter discards reports.
type NopReporter struct{}

func (NopReporter) ReportMissingConfig(catalog.SourceKey, string)             {}
func (NopReporter) ReportScrapeFailure(catalog.SourceKey, error, browser.Page) {}

// AssertMissingConfig checks that site yields no records, opens no page and
// fails naming variable when run with cfg.
func AssertMissingConfig(t *testing.T, site scraper.Site, cfg *config.Config, variable string) {
	t.Helper()
	sess := browsertest.NewSession(nil)
	r := scraper.NewRunner(cfg, NopReporter{})

	var records []catalog.Record
	require.NotPanics(t, func() {
		records = r.Fetch(context.Background(), site, "anything", sess)
	})
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err := r.Run(context.Background(), site, "anything", sess)
	var missing *config.MissingConfigError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, variable, missing.Var)
	assert.Empty(t, sess.Pages())
}
