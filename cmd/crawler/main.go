// Package main provides the crawler command-line tool that indexes a creator's
// livestream recordings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livecrawl/internal/config"
	"livecrawl/internal/crawler"
	"livecrawl/internal/formatter"
	"livecrawl/internal/logger"
	"livecrawl/internal/stream"

	"github.com/google/uuid"
)

const (
	defaultConfig   = "configs/crawler.yaml"
	previewColWidth = 40
)

func main() {
	// Define command-line flags
	configFile := flag.String("config", "", "Path to YAML configuration file")
	accountID := flag.Int64("mid", 0, "Creator account ID (overrides config)")
	workers := flag.Int("workers", 0, "Maximum concurrent requests (overrides config)")
	outputDir := flag.String("out", "", "Output directory (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	cfg := loadConfig(*configFile)

	// Apply command-line overrides
	if *accountID != 0 {
		cfg.Crawler.AccountID = *accountID
	}

	if *workers != 0 {
		cfg.Crawler.Concurrency = *workers
	}

	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v\n", err)
	}

	printCrawlerHeader(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	appLog := logger.NewLogger(cfg.Logging.Level).With("run", runID)
	start := time.Now()

	client := crawler.NewClient(cfg.Crawler, appLog.With("component", "crawler"))

	// Phase 1: listing pages
	fmt.Printf("⏳ Listing submissions of account %d...\n", cfg.Crawler.AccountID)

	col := client.Collect(ctx, cfg.Crawler.AccountID)
	for _, ledger := range []*crawler.Ledger{col.Sampling, col.Ledger} {
		ledger.LogAttemptSummary(appLog)
		printFailures(ledger)
	}

	if col.ListErr != nil {
		fmt.Printf("⚠️  Listing failed, continuing with no records: %v\n", col.ListErr)
	} else {
		fmt.Printf("✅ Collected %d submissions from %d pages (%d failed)\n",
			len(col.Records), col.PageCount, col.FailedPages)
	}

	// Phase 2: filtering and date recovery
	fmt.Println("\n📊 Filtering livestream recordings...")

	pipeline := stream.NewPipeline(client, stream.OptionsFromConfig(cfg), appLog.With("component", "stream"))
	streams, report := pipeline.Run(ctx, col.Records)
	report.Ledger.LogAttemptSummary(appLog)
	printFailures(report.Ledger)

	fmt.Printf("✅ Matched %d of %d submissions\n", report.Matched, report.Collected)

	if report.Pending > 0 {
		fmt.Printf("🔍 Recovered %d upload dates from detail pages, %d fell back to today\n",
			report.Recovered, report.Fallback)
	}

	// Phase 3: output
	fmt.Println("\n📝 Writing listings...")

	files := formatter.FileSet{
		MarkdownPath: cfg.MarkdownPath(),
		TextPath:     cfg.TextPath(),
		TextHeader:   cfg.Output.TextHeader,
		CreateBackup: cfg.Output.CreateBackup,
	}

	if err := formatter.WriteFiles(files, streams); err != nil {
		log.Fatalf("❌ Save failed: %v\n", err)
	}

	fmt.Printf("✅ Saved to: %s\n", files.MarkdownPath)
	fmt.Printf("✅ Saved to: %s\n", files.TextPath)

	if n := cfg.Logging.SampleRecords; n > 0 && len(streams) > 0 {
		fmt.Printf("\n📊 Sample records (first %d):\n", min(n, len(streams)))
		fmt.Println(formatter.Preview(streams, n, previewColWidth))
	}

	fmt.Printf("\n📈 Summary:\n")
	fmt.Printf("  Run: %s\n", runID)
	fmt.Printf("  Account: %d\n", cfg.Crawler.AccountID)
	fmt.Printf("  Submissions: %d (listed %d)\n", report.Collected, col.ItemCount)
	fmt.Printf("  Recordings: %d\n", len(streams))
	fmt.Printf("  Elapsed: %.2fs\n", time.Since(start).Seconds())

	if ctx.Err() != nil {
		fmt.Println("\n⚠️  Interrupted, listings may be incomplete")

		return
	}

	fmt.Println("\n✨ Crawling complete!")
}

// loadConfig loads the explicit config file, then the default location, then
// falls back to the built-in defaults.
func loadConfig(path string) *config.Config {
	if path != "" {
		fmt.Printf("⚙️  Loading configuration from: %s\n", path)

		cfg, err := config.LoadConfig(path)
		if err != nil {
			log.Fatalf("❌ Failed to load config: %v\n", err)
		}

		fmt.Printf("✅ Configuration loaded: %s\n\n", cfg)

		return cfg
	}

	if _, statErr := os.Stat(defaultConfig); statErr == nil {
		fmt.Printf("⚙️  Loading default configuration: %s\n", defaultConfig)

		cfg, err := config.LoadConfig(defaultConfig)
		if err != nil {
			log.Fatalf("❌ Failed to load default config: %v\n", err)
		}

		fmt.Printf("✅ Configuration loaded: %s\n\n", cfg)

		return cfg
	}

	fmt.Println("⚙️  Using built-in defaults")
	fmt.Println()

	return config.Default()
}

func printFailures(ledger *crawler.Ledger) {
	failures := ledger.Failures()
	if len(failures) == 0 {
		return
	}

	fmt.Printf("⚠️  %d %s fetches failed:\n", len(failures), ledger.Phase())

	for _, f := range failures {
		fmt.Printf("  ❌ %s (status %d)\n", f.URL, f.StatusCode)
	}
}

func printCrawlerHeader(cfg *config.Config) {
	fmt.Println("🕷️  Livestream Recording Crawler")
	fmt.Printf("Account: %d (page size %d)\n", cfg.Crawler.AccountID, cfg.Crawler.PageSize)
	fmt.Printf("Filter: %q + %q\n", cfg.Filter.Marker, cfg.Filter.Keyword)
	fmt.Printf("Concurrency: %d requests, %ds timeout\n", cfg.Crawler.Concurrency, cfg.Crawler.TimeoutSec)
	fmt.Printf("Output: %s, %s\n", cfg.MarkdownPath(), cfg.TextPath())
	fmt.Println()
}

func printUsage() {
	fmt.Println("Usage: ./bin/crawler [OPTIONS]")
	fmt.Println()
	fmt.Println("Modes:")
	fmt.Println("  1. Config-based:   ./bin/crawler -config configs/crawler.yaml")
	fmt.Println("  2. Default config: ./bin/crawler (reads configs/crawler.yaml if exists)")
	fmt.Println("  3. Built-in:       ./bin/crawler -mid <ID> -out <DIR>")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ./bin/crawler -config configs/crawler.yaml")
	fmt.Println("  ./bin/crawler -mid 37694382 -workers 20 -out data/listings")
	fmt.Println("  ./bin/crawler -log-level debug")
}
