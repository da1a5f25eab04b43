package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"omnisearch/internal/catalog"
	"omnisearch/internal/extractor"
	"omnisearch/internal/formatter"
	"omnisearch/internal/sites"
)

func newReplayCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "replay --source <key> <snapshot.html>",
		Short: "Run a catalog's extraction rule over a saved page",
		Long: `replay applies a catalog's extraction rule to an HTML file, usually the
error-page.html written when a scrape fails, and prints what would have been
extracted. No browser is started.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			key, err := catalog.ParseSourceKey(source)
			if err != nil {
				return err
			}
			registry, err := sites.Registry()
			if err != nil {
				return err
			}
			site, ok := registry.Get(key)
			if !ok {
				return fmt.Errorf("unknown source: %s", key)
			}

			html, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			records, err := extractor.ParseHTML(site.Rule(), string(html))
			if err != nil {
				return fmt.Errorf("failed to extract: %w", err)
			}
			logger.Info("replayed snapshot",
				zap.String("source", key.String()),
				zap.Int("records", len(records)),
			)

			return write(formatter.NewResultsContent(args[0], catalog.Results{key: records}))
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Catalog key (film, anime, manga, book, game)")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
