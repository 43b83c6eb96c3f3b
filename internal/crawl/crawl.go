// Package crawl drives a breadth-first site crawl: it owns the frontier
// queue and visited set, seeds them from sitemap discovery, fans scans out
// in bounded batches and folds the per-page results into a site result.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/model"
	"github.com/sableview/uivet/internal/score"
	"github.com/sableview/uivet/internal/sitemap"
	"github.com/sableview/uivet/internal/utils"
)

// ErrInvalidStartURL is returned before any network activity when the start
// URL cannot be canonicalized.
var ErrInvalidStartURL = errors.New("invalid start URL")

const (
	DefaultMaxPages    = 20
	DefaultMaxDepth    = 3
	DefaultConcurrency = 2
)

// PageScanner is the crawl's view of the scan orchestrator.
type PageScanner interface {
	Scan(ctx context.Context, url string) (model.PageResult, error)
}

// Progress describes one completed (or skipped) page.
type Progress struct {
	URL          string
	Depth        int
	PagesScanned int
	TotalFound   int
	Skipped      bool
}

// Options tune one crawl invocation. The zero value is usable; unset fields
// fall back to defaults.
type Options struct {
	// Concurrency is the batch size: how many pages scan in parallel.
	Concurrency int

	// Delay is honored between batches to throttle the target site.
	Delay time.Duration

	// UseSitemap seeds the frontier from /sitemap.xml at depth 1.
	UseSitemap bool

	AllowPatterns []string
	DenyPatterns  []string

	// OnProgress, when set, is invoked after every page completes. It runs
	// on the crawl goroutine between batches.
	OnProgress func(Progress)
}

func DefaultOptions() Options {
	return Options{
		Concurrency: DefaultConcurrency,
		UseSitemap:  true,
	}
}

// Crawler runs site crawls. One Crawler may serve sequential crawls; each
// Crawl call owns its frontier exclusively.
type Crawler struct {
	scanner  PageScanner
	sitemaps *sitemap.Resolver
	logger   logging.Logger
}

func NewCrawler(scanner PageScanner, resolver *sitemap.Resolver, logger logging.Logger) *Crawler {
	if logger == nil {
		logger = logging.NewStdoutLogger("crawl")
	}
	return &Crawler{
		scanner:  scanner,
		sitemaps: resolver,
		logger:   logger.With(logging.Field{Key: "component", Value: "crawl"}),
	}
}

type frontierItem struct {
	url   string
	depth int
}

type scanOutcome struct {
	item frontierItem
	page model.PageResult
	err  error
}

// Crawl walks the site breadth-first from startURL, scanning at most
// maxPages pages down to maxDepth. Cancellation is honored at batch
// boundaries: an in-flight batch always finishes, and the partial result is
// returned without error.
func (c *Crawler) Crawl(ctx context.Context, startURL string, maxPages, maxDepth int, opts Options) (model.CrawlResult, error) {
	start, err := utils.Normalize(startURL, "")
	if err != nil {
		return model.CrawlResult{}, fmt.Errorf("%w: %q: %v", ErrInvalidStartURL, startURL, err)
	}
	origin, err := utils.Origin(start)
	if err != nil {
		return model.CrawlResult{}, fmt.Errorf("%w: %q: %v", ErrInvalidStartURL, startURL, err)
	}

	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	policy := utils.CrawlPolicy{
		AllowPatterns: opts.AllowPatterns,
		DenyPatterns:  opts.DenyPatterns,
	}

	began := time.Now()

	// seen covers queued and visited URLs; it is the crawl-scheduling
	// dedup set and doubles as the discovery count.
	seen := map[string]struct{}{start: {}}
	queue := []frontierItem{{url: start, depth: 0}}

	if opts.UseSitemap && c.sitemaps != nil {
		for _, loc := range c.sitemaps.Resolve(ctx, origin+"/sitemap.xml") {
			norm, err := utils.Normalize(loc, origin)
			if err != nil || !utils.ShouldCrawl(norm, origin, policy) {
				continue
			}
			if _, ok := seen[norm]; ok {
				continue
			}
			seen[norm] = struct{}{}
			queue = append(queue, frontierItem{url: norm, depth: 1})
		}
		c.logger.Info("frontier seeded",
			logging.Field{Key: "start", Value: start},
			logging.Field{Key: "queued", Value: len(queue)})
	}

	var pages []model.PageResult

	for len(queue) > 0 && len(pages) < maxPages {
		select {
		case <-ctx.Done():
			c.logger.Info("crawl cancelled, returning partial result",
				logging.Field{Key: "pages_scanned", Value: len(pages)})
			return c.finish(start, pages, seen, began), nil
		default:
		}

		batchSize := concurrency
		if remaining := maxPages - len(pages); remaining < batchSize {
			batchSize = remaining
		}
		if batchSize > len(queue) {
			batchSize = len(queue)
		}
		batch := queue[:batchSize]
		queue = queue[batchSize:]

		outcomes := c.scanBatch(ctx, batch)

		// Queue and seen are mutated only here, between batches.
		for _, o := range outcomes {
			if o.err != nil {
				c.logger.Warn("page skipped",
					logging.Field{Key: "url", Value: o.item.url},
					logging.Field{Key: "error", Value: o.err.Error()})
				c.report(opts, o, len(pages), len(seen), true)
				continue
			}
			pages = append(pages, o.page)

			for _, link := range o.page.Links {
				if !utils.ShouldCrawl(link, origin, policy) {
					continue
				}
				if _, ok := seen[link]; ok {
					continue
				}
				seen[link] = struct{}{}
				if o.item.depth+1 <= maxDepth {
					queue = append(queue, frontierItem{url: link, depth: o.item.depth + 1})
				}
			}
			c.report(opts, o, len(pages), len(seen), false)
		}

		if opts.Delay > 0 && len(queue) > 0 && len(pages) < maxPages {
			select {
			case <-ctx.Done():
			case <-time.After(opts.Delay):
			}
		}
	}

	return c.finish(start, pages, seen, began), nil
}

// scanBatch runs every item of the batch in parallel and blocks until all
// of them resolve. Cancellation is a batch-boundary signal, so in-flight
// scans run on a detached context and always finish.
func (c *Crawler) scanBatch(ctx context.Context, batch []frontierItem) []scanOutcome {
	ctx = context.WithoutCancel(ctx)
	outcomes := make([]scanOutcome, len(batch))
	var wg sync.WaitGroup
	for i, item := range batch {
		wg.Add(1)
		go func(i int, item frontierItem) {
			defer wg.Done()
			page, err := c.scanner.Scan(ctx, item.url)
			outcomes[i] = scanOutcome{item: item, page: page, err: err}
		}(i, item)
	}
	wg.Wait()
	return outcomes
}

func (c *Crawler) report(opts Options, o scanOutcome, scanned, found int, skipped bool) {
	if opts.OnProgress == nil {
		return
	}
	opts.OnProgress(Progress{
		URL:          o.item.url,
		Depth:        o.item.depth,
		PagesScanned: scanned,
		TotalFound:   found,
		Skipped:      skipped,
	})
}

func (c *Crawler) finish(start string, pages []model.PageResult, seen map[string]struct{}, began time.Time) model.CrawlResult {
	return model.CrawlResult{
		RootURL:         start,
		PagesScanned:    len(pages),
		TotalPagesFound: len(seen),
		Score:           score.SiteScore(pages),
		Pages:           pages,
		ElapsedMs:       time.Since(began).Milliseconds(),
	}
}
