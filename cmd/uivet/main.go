// Command uivet crawls a site, audits every page for UI defects and writes
// a ranked report. Exit code: 0 clean, 1 major findings, 2 critical findings
// or a hard failure before any page was scanned.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"

	"github.com/sableview/uivet/internal/cli"
	"github.com/sableview/uivet/internal/crawl"
	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/enrich"
	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/model"
	"github.com/sableview/uivet/internal/report"
	"github.com/sableview/uivet/internal/scan"
	"github.com/sableview/uivet/internal/sitemap"
	"github.com/sableview/uivet/internal/store"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	args, err := cli.ParseArgs(argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "usage: uivet -url <start-url> [flags]")
			return 0
		}
		fmt.Fprintf(os.Stderr, "uivet: %v\n", err)
		return 2
	}

	logger := logging.NewCharmLogger(os.Stderr, "uivet")
	logger.SetDebug(args.Debug)

	drvCfg := driver.DefaultConfig()
	drvCfg.Headless = !args.Headed
	drv, err := driver.New(drvCfg, logger)
	if err != nil {
		logger.Error("browser launch failed", logging.Field{Key: "error", Value: err.Error()})
		return 2
	}
	defer drv.Close()

	scanCfg := scanConfig(args)
	scanner := scan.NewScanner(drv, scanCfg, logger)
	resolver := sitemap.NewResolver(nil, logger)
	crawler := crawl.NewCrawler(scanner, resolver, logger)

	// Interrupt stops the crawl at its next batch boundary; the partial
	// result is still reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sp := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = " crawling " + args.URL
	sp.Start()

	opts := crawl.Options{
		Concurrency:   args.Concurrency,
		Delay:         args.Delay,
		UseSitemap:    !args.NoSitemap,
		AllowPatterns: args.AllowPatterns,
		DenyPatterns:  args.DenyPatterns,
		OnProgress: func(p crawl.Progress) {
			sp.Suffix = fmt.Sprintf(" %d/%d pages, %d found: %s",
				p.PagesScanned, args.MaxPages, p.TotalFound, p.URL)
		},
	}

	result, err := crawler.Crawl(ctx, args.URL, args.MaxPages, args.MaxDepth, opts)
	sp.Stop()
	if err != nil {
		logger.Error("crawl failed", logging.Field{Key: "error", Value: err.Error()})
		return 2
	}

	if args.EnrichEndpoint != "" {
		cfg := enrich.DefaultConfig()
		cfg.Endpoint = args.EnrichEndpoint
		enricher := enrich.New(cfg, logger)
		for i := range result.Pages {
			result.Pages[i].Findings = enricher.Enrich(ctx, result.Pages[i].Findings)
		}
	}

	if args.StorePath != "" {
		persist(args.StorePath, result, logger)
	}

	if err := writeOutput(args, result); err != nil {
		logger.Error("writing output failed", logging.Field{Key: "error", Value: err.Error()})
		return 2
	}

	status := report.Classify(result)
	logger.Info("audit finished",
		logging.Field{Key: "score", Value: result.Score},
		logging.Field{Key: "pages_scanned", Value: result.PagesScanned},
		logging.Field{Key: "pages_found", Value: result.TotalPagesFound},
		logging.Field{Key: "verdict", Value: string(status)})
	return status.ExitCode()
}

func scanConfig(args *cli.Args) model.ScanConfig {
	cfg := model.DefaultScanConfig()
	cfg.CheckLayout = !args.SkipLayout
	cfg.CheckInteraction = !args.SkipInteraction
	cfg.CheckAccessibility = !args.SkipAccessibility
	cfg.CheckTypo = !args.SkipTypo
	cfg.CheckVisual = !args.SkipVisual
	cfg.CheckNavigation = !args.SkipNavigation
	cfg.CheckForms = !args.SkipForms
	cfg.CustomWhitelist = args.Whitelist
	cfg.ScreenshotQuality = args.ScreenshotQuality
	return cfg
}

// persist appends the result to the audit history file. Failure is logged
// and absorbed: the report still gets written.
func persist(path string, result model.CrawlResult, logger logging.Logger) {
	st, err := store.New(path, logger)
	if err != nil {
		logger.Warn("opening store failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer st.Close()
	id, err := st.SaveCrawl(context.Background(), result)
	if err != nil {
		logger.Warn("persisting crawl failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	logger.Info("crawl persisted",
		logging.Field{Key: "store", Value: path},
		logging.Field{Key: "crawl_id", Value: id})
}

func writeOutput(args *cli.Args, result model.CrawlResult) error {
	switch args.Format {
	case "json":
		return writeTo(args.Out, func(f *os.File) error {
			return report.WriteJSON(f, result)
		})
	case "markdown":
		return writeTo(args.Out, func(f *os.File) error {
			_, err := f.WriteString(report.Markdown(result))
			return err
		})
	case "both":
		base := strings.TrimSuffix(args.Out, ".json")
		base = strings.TrimSuffix(base, ".md")
		if err := writeTo(base+".json", func(f *os.File) error {
			return report.WriteJSON(f, result)
		}); err != nil {
			return err
		}
		return writeTo(base+".md", func(f *os.File) error {
			_, err := f.WriteString(report.Markdown(result))
			return err
		})
	}
	return nil
}

// writeTo runs write against the named file, or stdout when path is empty.
func writeTo(path string, write func(*os.File) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
