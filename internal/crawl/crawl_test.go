package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sableview/uivet/internal/model"
	"github.com/sableview/uivet/internal/sitemap"
	"github.com/sableview/uivet/internal/testutil"
)

// fakeScanner resolves URLs from a canned link graph.
type fakeScanner struct {
	mu          sync.Mutex
	links       map[string][]string
	fail        map[string]bool
	scores      map[string]int
	calls       []string
	inFlight    int
	maxInFlight int
	scanDelay   time.Duration
}

func (f *fakeScanner) Scan(ctx context.Context, url string) (model.PageResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	if f.scanDelay > 0 {
		time.Sleep(f.scanDelay)
	}

	f.mu.Lock()
	f.inFlight--
	failed := f.fail[url]
	links := f.links[url]
	scoreVal, ok := f.scores[url]
	f.mu.Unlock()

	if failed {
		return model.PageResult{}, errors.New("navigation failed")
	}
	if !ok {
		scoreVal = 100
	}
	return model.PageResult{URL: url, Score: scoreVal, Links: links}, nil
}

func (f *fakeScanner) scanned() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestCrawlInvalidStartURL(t *testing.T) {
	t.Parallel()

	sc := &fakeScanner{}
	c := NewCrawler(sc, nil, &testutil.DummyLogger{})

	_, err := c.Crawl(context.Background(), "::not a url::", 10, 3, DefaultOptions())
	if !errors.Is(err, ErrInvalidStartURL) {
		t.Fatalf("err = %v, want ErrInvalidStartURL", err)
	}
	if len(sc.scanned()) != 0 {
		t.Fatal("no network activity may happen on input errors")
	}
}

func TestCrawlRespectsMaxPages(t *testing.T) {
	t.Parallel()

	links := map[string][]string{"http://site.test/": nil}
	for i := 1; i <= 30; i++ {
		u := fmt.Sprintf("http://site.test/p%d", i)
		links["http://site.test/"] = append(links["http://site.test/"], u)
	}
	sc := &fakeScanner{links: links}
	c := NewCrawler(sc, nil, &testutil.DummyLogger{})

	opts := DefaultOptions()
	opts.UseSitemap = false
	got, err := c.Crawl(context.Background(), "http://site.test/", 5, 3, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got.PagesScanned != 5 {
		t.Fatalf("pagesScanned = %d, want 5", got.PagesScanned)
	}
	if got.TotalPagesFound < got.PagesScanned {
		t.Fatalf("totalPagesFound = %d < pagesScanned = %d", got.TotalPagesFound, got.PagesScanned)
	}
	if len(got.Pages) != 5 {
		t.Fatalf("pages = %d", len(got.Pages))
	}
}

func TestCrawlRespectsMaxDepth(t *testing.T) {
	t.Parallel()

	sc := &fakeScanner{links: map[string][]string{
		"http://site.test/":  {"http://site.test/a"},
		"http://site.test/a": {"http://site.test/b"},
		"http://site.test/b": {"http://site.test/c"},
		"http://site.test/c": {"http://site.test/d"},
	}}
	c := NewCrawler(sc, nil, &testutil.DummyLogger{})

	opts := DefaultOptions()
	opts.UseSitemap = false
	got, err := c.Crawl(context.Background(), "http://site.test/", 20, 2, opts)
	if err != nil {
		t.Fatal(err)
	}
	// Depths 0, 1 and 2: root, /a, /b. /c sits at depth 3 and stays out.
	if got.PagesScanned != 3 {
		t.Fatalf("pagesScanned = %d, want 3 (scanned %v)", got.PagesScanned, sc.scanned())
	}
}

func TestCrawlVisitsEachURLOnce(t *testing.T) {
	t.Parallel()

	sc := &fakeScanner{links: map[string][]string{
		"http://site.test/":  {"http://site.test/a", "http://site.test/"},
		"http://site.test/a": {"http://site.test/", "http://site.test/a"},
	}}
	c := NewCrawler(sc, nil, &testutil.DummyLogger{})

	opts := DefaultOptions()
	opts.UseSitemap = false
	got, err := c.Crawl(context.Background(), "http://site.test/", 20, 5, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got.PagesScanned != 2 {
		t.Fatalf("cyclic graph scanned %d pages, want 2 (%v)", got.PagesScanned, sc.scanned())
	}
}

func TestCrawlSkipsFailedPagesAndContinues(t *testing.T) {
	t.Parallel()

	sc := &fakeScanner{
		links: map[string][]string{
			"http://site.test/": {"http://site.test/bad", "http://site.test/good"},
		},
		fail: map[string]bool{"http://site.test/bad": true},
	}
	logger := &testutil.CapturingLogger{}
	c := NewCrawler(sc, nil, logger)

	opts := DefaultOptions()
	opts.UseSitemap = false
	got, err := c.Crawl(context.Background(), "http://site.test/", 20, 3, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got.PagesScanned != 2 {
		t.Fatalf("pagesScanned = %d, want root and /good only", got.PagesScanned)
	}
	for _, p := range got.Pages {
		if p.URL == "http://site.test/bad" {
			t.Fatal("failed page must not appear in results")
		}
	}
	if len(logger.Warnings) == 0 {
		t.Fatal("skipped page was not logged")
	}
}

func TestCrawlFiltersNonContentLinks(t *testing.T) {
	t.Parallel()

	sc := &fakeScanner{links: map[string][]string{
		"http://site.test/": {
			"http://site.test/style.css",
			"http://site.test/app.js",
			"http://site.test/logo.png",
			"http://other.test/page",
			"http://site.test/about",
		},
	}}
	c := NewCrawler(sc, nil, &testutil.DummyLogger{})

	opts := DefaultOptions()
	opts.UseSitemap = false
	got, err := c.Crawl(context.Background(), "http://site.test/", 20, 3, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got.PagesScanned != 2 {
		t.Fatalf("pagesScanned = %d, want root and /about (%v)", got.PagesScanned, sc.scanned())
	}
}

func TestCrawlConcurrencyBound(t *testing.T) {
	t.Parallel()

	links := map[string][]string{}
	for i := 1; i <= 8; i++ {
		links["http://site.test/"] = append(links["http://site.test/"], fmt.Sprintf("http://site.test/p%d", i))
	}
	sc := &fakeScanner{links: links, scanDelay: 5 * time.Millisecond}
	c := NewCrawler(sc, nil, &testutil.DummyLogger{})

	opts := DefaultOptions()
	opts.UseSitemap = false
	opts.Concurrency = 2
	if _, err := c.Crawl(context.Background(), "http://site.test/", 20, 3, opts); err != nil {
		t.Fatal(err)
	}
	if sc.maxInFlight > 2 {
		t.Fatalf("maxInFlight = %d, want at most the configured concurrency", sc.maxInFlight)
	}
}

func TestCrawlCancellationReturnsPartialResult(t *testing.T) {
	t.Parallel()

	links := map[string][]string{}
	for i := 1; i <= 15; i++ {
		links["http://site.test/"] = append(links["http://site.test/"], fmt.Sprintf("http://site.test/p%d", i))
	}
	sc := &fakeScanner{links: links}
	c := NewCrawler(sc, nil, &testutil.DummyLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	opts := DefaultOptions()
	opts.UseSitemap = false
	opts.Concurrency = 1
	opts.OnProgress = func(p Progress) {
		if p.PagesScanned >= 2 {
			cancel()
		}
	}

	got, err := c.Crawl(ctx, "http://site.test/", 20, 3, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got.PagesScanned == 0 || got.PagesScanned >= 20 {
		t.Fatalf("pagesScanned = %d, want a partial result", got.PagesScanned)
	}
	// Batches already dispatched still land in the result.
	if got.PagesScanned < 2 {
		t.Fatalf("pagesScanned = %d, in-flight batch must finish", got.PagesScanned)
	}
}

func TestCrawlSeedsFromSitemapIndex(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>%s/sm/a.xml</loc></sitemap>
  <sitemap><loc>%s/sm/b.xml</loc></sitemap>
  <sitemap><loc>%s/sm/c.xml</loc></sitemap>
</sitemapindex>`, srv.URL, srv.URL, srv.URL)
	})
	child := func(prefix string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<?xml version="1.0"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
			for i := 0; i < 10; i++ {
				fmt.Fprintf(w, "<url><loc>%s/%s%d</loc></url>", srv.URL, prefix, i)
			}
			fmt.Fprint(w, `</urlset>`)
		}
	}
	mux.HandleFunc("/sm/a.xml", child("a"))
	mux.HandleFunc("/sm/b.xml", child("b"))
	mux.HandleFunc("/sm/c.xml", child("c"))

	sc := &fakeScanner{}
	resolver := sitemap.NewResolver(srv.Client(), &testutil.DummyLogger{})
	c := NewCrawler(sc, resolver, &testutil.DummyLogger{})

	got, err := c.Crawl(context.Background(), srv.URL, 40, 3, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	// Root plus 30 sitemap-seeded URLs, before any link following.
	if got.PagesScanned != 31 {
		t.Fatalf("pagesScanned = %d, want 31 (%v)", got.PagesScanned, sc.scanned())
	}
}

func TestCrawlSiteScoreIsMeanOfPages(t *testing.T) {
	t.Parallel()

	sc := &fakeScanner{
		links:  map[string][]string{"http://site.test/": {"http://site.test/a"}},
		scores: map[string]int{"http://site.test/": 80, "http://site.test/a": 91},
	}
	c := NewCrawler(sc, nil, &testutil.DummyLogger{})

	opts := DefaultOptions()
	opts.UseSitemap = false
	got, err := c.Crawl(context.Background(), "http://site.test/", 20, 3, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 86 {
		t.Fatalf("site score = %d, want rounded mean 86", got.Score)
	}
	if got.RootURL != "http://site.test/" {
		t.Fatalf("root = %q", got.RootURL)
	}
	if got.ElapsedMs < 0 {
		t.Fatalf("elapsed = %d", got.ElapsedMs)
	}
}
