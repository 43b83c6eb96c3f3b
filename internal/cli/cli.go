// Package cli parses the uivet command line. Parsing is deterministic and
// never reads os.Args directly, so tests can pass arbitrary slices.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

// Args are the command-line arguments controlling one audit run.
type Args struct {
	// URL is the root URL to crawl (required).
	URL string

	MaxPages    int
	MaxDepth    int
	Concurrency int

	// Delay is honored between scan batches to throttle the target site.
	Delay time.Duration

	// Out is the output path. Required for -format both, where ".json" and
	// ".md" are appended; otherwise empty means stdout.
	Out string

	// Format is one of json, markdown, both.
	Format string

	// NoSitemap disables frontier seeding from /sitemap.xml.
	NoSitemap bool

	AllowPatterns []string
	DenyPatterns  []string

	// Check toggles; every check is on unless skipped.
	SkipLayout        bool
	SkipInteraction   bool
	SkipAccessibility bool
	SkipTypo          bool
	SkipVisual        bool
	SkipNavigation    bool
	SkipForms         bool

	// Whitelist lists words the typo check must not flag.
	Whitelist []string

	// ScreenshotQuality is the JPEG quality of full-page captures; 0
	// disables screenshots.
	ScreenshotQuality int

	// StorePath appends the finished crawl to a SQLite audit history file.
	StorePath string

	// EnrichEndpoint enables best-effort finding-text enrichment against a
	// llama-server chat endpoint.
	EnrichEndpoint string

	// Headed runs the browser visibly instead of headless.
	Headed bool

	Debug bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns Args. The function is
// deterministic and does not read os.Args.
func ParseArgs(args []string) (*Args, error) {
	fs := flag.NewFlagSet("uivet", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		url         = fs.String("url", "", "Root URL to audit (required)")
		maxPages    = fs.Int("max-pages", 20, "Maximum pages to scan")
		maxDepth    = fs.Int("max-depth", 3, "Maximum link-following depth")
		concurrency = fs.Int("concurrency", 0, "Pages scanned in parallel (0=default)")
		delay       = fs.Duration("delay", 0, "Delay between scan batches")
		out         = fs.String("out", "", "Output path (stdout when empty)")
		format      = fs.String("format", "markdown", "Output format: json|markdown|both")
		noSitemap   = fs.Bool("no-sitemap", false, "Skip sitemap.xml frontier seeding")
		allow       = fs.String("allow", "", "Comma-separated path substrings to allow")
		deny        = fs.String("deny", "", "Comma-separated path substrings to exclude")

		skipLayout      = fs.Bool("no-layout", false, "Skip the layout check")
		skipInteraction = fs.Bool("no-interaction", false, "Skip the interaction check")
		skipA11y        = fs.Bool("no-a11y", false, "Skip the accessibility check")
		skipTypo        = fs.Bool("no-typo", false, "Skip the typo check")
		skipVisual      = fs.Bool("no-visual", false, "Skip the visual check")
		skipNav         = fs.Bool("no-nav", false, "Skip the navigation check")
		skipForms       = fs.Bool("no-forms", false, "Skip the forms check")

		whitelist = fs.String("whitelist", "", "Comma-separated words the typo check ignores")
		quality   = fs.Int("screenshot-quality", 60, "Full-page screenshot JPEG quality (0=off)")
		storePath = fs.String("store", "", "SQLite audit-history file (empty=no persistence)")
		enrich    = fs.String("enrich", "", "llama-server endpoint for finding enrichment (empty=off)")
		headed    = fs.Bool("headed", false, "Run the browser visibly")
		debug     = fs.Bool("debug", false, "Verbose logging")
	)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(*url) == "" {
		return nil, fmt.Errorf("missing required -url argument")
	}
	switch *format {
	case "json", "markdown", "both":
	default:
		return nil, fmt.Errorf("invalid -format %q: want json, markdown or both", *format)
	}
	if *format == "both" && strings.TrimSpace(*out) == "" {
		return nil, fmt.Errorf("-format both requires -out")
	}

	return &Args{
		URL:               *url,
		MaxPages:          *maxPages,
		MaxDepth:          *maxDepth,
		Concurrency:       *concurrency,
		Delay:             *delay,
		Out:               *out,
		Format:            *format,
		NoSitemap:         *noSitemap,
		AllowPatterns:     splitList(*allow),
		DenyPatterns:      splitList(*deny),
		SkipLayout:        *skipLayout,
		SkipInteraction:   *skipInteraction,
		SkipAccessibility: *skipA11y,
		SkipTypo:          *skipTypo,
		SkipVisual:        *skipVisual,
		SkipNavigation:    *skipNav,
		SkipForms:         *skipForms,
		Whitelist:         splitList(*whitelist),
		ScreenshotQuality: *quality,
		StorePath:         *storePath,
		EnrichEndpoint:    *enrich,
		Headed:            *headed,
		Debug:             *debug,
		RawArgs:           args,
	}, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
