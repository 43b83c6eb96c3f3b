package scan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sableview/uivet/internal/model"
	"github.com/sableview/uivet/internal/testutil"
)

const demoPage = `<html><head><title>Demo</title></head><body>
	<a href="/about">About</a>
	<a href="https://other.test/x">Elsewhere</a>
	<form><input type="text" name="q"><button>Go</button></form>
</body></html>`

func cleanEvals() map[string]string {
	return map[string]string{
		"scrollWidth":                          `{"scrollWidth": 1440, "viewportWidth": 1440, "wide": []}`,
		"brokenImages":                         `{"brokenImages": [], "tinyText": []}`,
		"noopener":                             `{"dead": [], "invisible": [], "blank": []}`,
		"document.querySelectorAll('*').length": `42`,
		"document.body.innerText":              `"About Elsewhere Go"`,
	}
}

func newFakeDriver(mutate func(vp model.Viewport, s *testutil.FakeSession)) *testutil.FakeDriver {
	return &testutil.FakeDriver{
		Make: func(vp model.Viewport) *testutil.FakeSession {
			s := &testutil.FakeSession{
				Pages: map[string]string{"http://site.test/": demoPage},
				Evals: cleanEvals(),
			}
			if mutate != nil {
				mutate(vp, s)
			}
			return s
		},
	}
}

func TestScanFullPipeline(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver(func(vp model.Viewport, s *testutil.FakeSession) {
		s.Evals["scrollWidth"] = `{"scrollWidth": 2000, "viewportWidth": 1440, "wide": []}`
		s.ScreenshotPNG = []byte("png-bytes")
	})

	scanner := NewScanner(drv, model.DefaultScanConfig(), &testutil.DummyLogger{})
	got, err := scanner.Scan(context.Background(), "http://site.test/")
	if err != nil {
		t.Fatal(err)
	}

	if len(drv.Sessions) != 3 {
		t.Fatalf("expected one session per viewport, got %d", len(drv.Sessions))
	}
	for i, s := range drv.Sessions {
		if !s.Closed {
			t.Fatalf("session %d not closed", i)
		}
	}

	if got.Metrics.DOMElements != 42 {
		t.Fatalf("dom elements = %d", got.Metrics.DOMElements)
	}
	if string(got.Screenshot) != "png-bytes" {
		t.Fatalf("screenshot = %q", got.Screenshot)
	}
	if got.Timestamp == "" {
		t.Fatal("timestamp not set")
	}

	// The overflow fires on every viewport but collapses to one finding.
	overflow := 0
	for _, f := range got.Findings {
		if f.PageURL != "http://site.test/" {
			t.Fatalf("finding missing page URL: %+v", f)
		}
		if f.Code == "layout/horizontal-overflow" {
			overflow++
			if !strings.HasPrefix(f.Message, "[desktop]") {
				t.Fatalf("dedup should keep the first viewport's finding: %q", f.Message)
			}
		}
	}
	if overflow != 1 {
		t.Fatalf("overflow findings = %d, want 1", overflow)
	}

	if got.Score <= 0 || got.Score >= 100 {
		t.Fatalf("score = %d, want within (0,100)", got.Score)
	}
	for i := 1; i < len(got.Findings); i++ {
		if got.Findings[i].Priority > got.Findings[i-1].Priority {
			t.Fatal("findings not sorted by descending priority")
		}
	}

	// Same-origin harvest only.
	if len(got.Links) != 1 || got.Links[0] != "http://site.test/about" {
		t.Fatalf("links = %v", got.Links)
	}
}

func TestScanCleanPageScoresHundred(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver(func(vp model.Viewport, s *testutil.FakeSession) {
		s.Pages["http://site.test/"] = `<html lang="en"><head><title>Demo</title></head><body><p>fine</p></body></html>`
	})

	scanner := NewScanner(drv, model.DefaultScanConfig(), &testutil.DummyLogger{})
	got, err := scanner.Scan(context.Background(), "http://site.test/")
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 100 {
		t.Fatalf("clean page score = %d, findings: %+v", got.Score, got.Findings)
	}
	if len(got.Findings) != 0 {
		t.Fatalf("clean page has findings: %+v", got.Findings)
	}
}

func TestScanNavigateFailureIsFatalForThePage(t *testing.T) {
	t.Parallel()

	navErr := errors.New("dns lookup failed")
	drv := newFakeDriver(func(vp model.Viewport, s *testutil.FakeSession) {
		s.NavigateErr = navErr
	})

	scanner := NewScanner(drv, model.DefaultScanConfig(), &testutil.DummyLogger{})
	_, err := scanner.Scan(context.Background(), "http://site.test/")
	if !errors.Is(err, navErr) {
		t.Fatalf("err = %v, want wrapped navigate error", err)
	}
	if len(drv.Sessions) != 1 || !drv.Sessions[0].Closed {
		t.Fatal("failed session must still be closed")
	}
}

func TestScanLaterViewportFailureKeepsPartialResult(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver(func(vp model.Viewport, s *testutil.FakeSession) {
		if vp.Label == "mobile" {
			s.NavigateErr = errors.New("tab crashed")
		}
	})

	logger := &testutil.CapturingLogger{}
	scanner := NewScanner(drv, model.DefaultScanConfig(), logger)
	got, err := scanner.Scan(context.Background(), "http://site.test/")
	if err != nil {
		t.Fatalf("later viewport failure must not fail the page: %v", err)
	}
	if got.Timestamp == "" {
		t.Fatal("no result produced")
	}
	if len(logger.Warnings) == 0 {
		t.Fatal("viewport failure was not logged")
	}
}

func TestScanScreenshotFailureIsAbsorbed(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver(func(vp model.Viewport, s *testutil.FakeSession) {
		s.ScreenshotErr = errors.New("capture failed")
	})

	scanner := NewScanner(drv, model.DefaultScanConfig(), &testutil.DummyLogger{})
	got, err := scanner.Scan(context.Background(), "http://site.test/")
	if err != nil {
		t.Fatal(err)
	}
	if got.Screenshot != nil {
		t.Fatal("screenshot should be omitted on capture failure")
	}
}

func TestScanScreenshotDisabledByQualityZero(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver(func(vp model.Viewport, s *testutil.FakeSession) {
		s.ScreenshotPNG = []byte("png-bytes")
	})

	cfg := model.DefaultScanConfig()
	cfg.ScreenshotQuality = 0
	scanner := NewScanner(drv, cfg, &testutil.DummyLogger{})
	got, err := scanner.Scan(context.Background(), "http://site.test/")
	if err != nil {
		t.Fatal(err)
	}
	if got.Screenshot != nil {
		t.Fatal("screenshot should be skipped when quality is 0")
	}
}

func TestScanConsoleErrorsCapped(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver(func(vp model.Viewport, s *testutil.FakeSession) {
		if vp.Label != "desktop" {
			return
		}
		s.ConsoleErrs = []string{
			"TypeError: a is undefined",
			"ReferenceError: b is not defined",
			"TypeError: c is null",
			"RangeError: d",
			"SyntaxError: e",
		}
	})

	scanner := NewScanner(drv, model.DefaultScanConfig(), &testutil.DummyLogger{})
	got, err := scanner.Scan(context.Background(), "http://site.test/")
	if err != nil {
		t.Fatal(err)
	}

	console := 0
	for _, f := range got.Findings {
		if f.Code == "content/console-error" {
			console++
			if f.Severity != model.SeverityMajor {
				t.Fatalf("console error severity = %s", f.Severity)
			}
		}
	}
	if console != 3 {
		t.Fatalf("console findings = %d, want capped at 3", console)
	}
}

func TestScanPageScopeChecksRunOnce(t *testing.T) {
	t.Parallel()

	// No lang attribute: the accessibility check fires, and only from the
	// first viewport.
	drv := newFakeDriver(nil)

	scanner := NewScanner(drv, model.DefaultScanConfig(), &testutil.DummyLogger{})
	got, err := scanner.Scan(context.Background(), "http://site.test/")
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range got.Findings {
		if f.Code == "a11y/missing-lang" && !strings.HasPrefix(f.Message, "[desktop]") {
			t.Fatalf("page-scope finding tagged %q, want first viewport", f.Message)
		}
	}
}

func TestScanViewportMismatch(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver(func(vp model.Viewport, s *testutil.FakeSession) {
		if vp.Label == "mobile" {
			s.Evals["document.body.innerText"] = `"completely unrelated text that shares nothing with the desktop body copy at all, rendered by a broken breakpoint"`
		}
	})

	scanner := NewScanner(drv, model.DefaultScanConfig(), &testutil.DummyLogger{})
	got, err := scanner.Scan(context.Background(), "http://site.test/")
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, f := range got.Findings {
		if f.Code == "content/viewport-mismatch" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a viewport mismatch finding, got %+v", got.Findings)
	}
}

func TestScanMaxBugsPerCategory(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver(func(vp model.Viewport, s *testutil.FakeSession) {
		s.Pages["http://site.test/"] = `<html lang="en"><head><title>Demo</title></head><body>
			<img src="/a.png"><img src="/b.png"><img src="/c.png"><img src="/d.png">
		</body></html>`
	})

	cfg := model.DefaultScanConfig()
	cfg.MaxBugsPerCategory = 2
	scanner := NewScanner(drv, cfg, &testutil.DummyLogger{})
	got, err := scanner.Scan(context.Background(), "http://site.test/")
	if err != nil {
		t.Fatal(err)
	}

	a11y := 0
	for _, f := range got.Findings {
		if strings.HasPrefix(f.Code, "a11y/") {
			a11y++
		}
	}
	if a11y != 2 {
		t.Fatalf("a11y findings = %d, want capped at 2", a11y)
	}
}
