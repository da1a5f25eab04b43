package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"omnisearch/internal/config"
	"omnisearch/internal/formatter"
	"omnisearch/internal/orchestrator"
)

var version = "dev"

var (
	outputFormat string
	outputFile   string
	timeout      time.Duration
	showUI       bool
	proxyURL     string

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "omnisearch [query]",
		Short:   "Search films, anime, manga, books and games at once",
		Version: version,
		Long: `omnisearch runs one query against five catalog search pages in a headless
browser and prints up to three results per catalog.

Each catalog is configured by its own environment variable (FILM_SEARCH_URL,
ANIME_SEARCH_URL, MANGA_SEARCH_URL, BOOK_SEARCH_URL, GAME_SEARCH_URL). A
catalog that is not configured or fails yields no results; the others are
unaffected.`,
		Example: `  # Search every catalog
  omnisearch "dune"

  # Save results as CSV (format inferred from extension)
  omnisearch "naruto" -o results.csv

  # Serve the HTTP API on port 3000
  omnisearch serve --port 3000

  # Replay a saved failure page through the anime extraction rule
  omnisearch replay --source anime error-page.html`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				os.Exit(0)
			}
			return nil
		},
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "Output format (text, markdown, json, csv, html)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file path (format inferred from extension if -f not specified)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0, "Per-step browser timeout (overrides SCRAPE_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "Proxy URL (e.g. http://127.0.0.1:7890), overrides PROXY_URL")

	rootCmd.AddCommand(newServeCmd(), newReplayCmd())
	return rootCmd
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if timeout > 0 {
		cfg.Browser.Timeout = timeout
	}
	if showUI {
		cfg.Browser.Headless = false
	}
	if proxyURL != "" {
		cfg.Browser.ProxyURL = proxyURL
	}

	logger, err = config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)

	// If output file is specified but format is not, infer format from file extension
	if outputFile != "" && !cmd.Flags().Changed("format") {
		if inferred := formatter.InferFormat(outputFile); inferred != "" {
			outputFormat = inferred
		}
	}
	if !formatter.Valid(outputFormat) {
		return fmt.Errorf("invalid output format: %s", outputFormat)
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	a := newApp(cfg, logger, nil)
	results, err := a.search.Search(cmd.Context(), query)
	if err != nil {
		if errors.Is(err, orchestrator.ErrEmptyQuery) {
			return fmt.Errorf("please provide a search query")
		}
		return fmt.Errorf("failed to search: %w", err)
	}

	return write(formatter.NewResultsContent(query, results))
}

// write renders content in the selected format to the output file or stdout.
func write(content formatter.Content) error {
	out, err := formatter.Format(content, outputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Output written to: %s\n", outputFile)
		return nil
	}
	fmt.Println(out)
	return nil
}
