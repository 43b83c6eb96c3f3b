// Package scan renders a single page at every configured viewport, runs the
// enabled checks against it and folds the raw findings into a scored
// PageResult.
package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/sableview/uivet/internal/checks"
	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/model"
	"github.com/sableview/uivet/internal/score"
	"github.com/sableview/uivet/internal/utils"
)

const (
	// maxConsoleFindings caps synthetic console-error findings per viewport
	// so a logging loop in page script cannot flood the result.
	maxConsoleFindings = 3

	// maxScreenshotBytes drops screenshots that would bloat the result
	// payload.
	maxScreenshotBytes = 2 << 20

	// viewportDivergence is the fraction of the reference text that may
	// differ across viewports before the page is flagged.
	viewportDivergence = 0.5
)

const domCountJS = `document.querySelectorAll('*').length`

const bodyTextJS = `document.body ? document.body.innerText : ''`

// Scanner runs the per-page pipeline. One Scanner is safe for concurrent
// Scan calls; every scan opens its own sessions.
type Scanner struct {
	drv    driver.Driver
	cfg    model.ScanConfig
	engine *score.Engine
	logger logging.Logger
}

func NewScanner(drv driver.Driver, cfg model.ScanConfig, logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewStdoutLogger("scan")
	}
	return &Scanner{
		drv:    drv,
		cfg:    cfg,
		engine: score.NewEngine(score.DefaultConfig()),
		logger: logger.With(logging.Field{Key: "component", Value: "scan"}),
	}
}

// Scan renders pageURL at every configured viewport and returns the scored
// result. Navigation failure is fatal to this page only; everything else
// degrades to reduced findings.
func (s *Scanner) Scan(ctx context.Context, pageURL string) (model.PageResult, error) {
	result := model.PageResult{URL: pageURL}

	enabled := checks.Enabled(s.cfg)
	viewports := s.cfg.EffectiveViewports()

	var (
		findings  []model.Finding
		bodyTexts = make(map[string]string, len(viewports))
	)

	for i, vp := range viewports {
		first := i == 0
		vf, text, err := s.scanViewport(ctx, pageURL, vp, first, enabled, &result)
		if err != nil {
			if first {
				return model.PageResult{}, fmt.Errorf("scan %s: %w", pageURL, err)
			}
			s.logger.Warn("viewport scan failed, keeping partial result",
				logging.Field{Key: "url", Value: pageURL},
				logging.Field{Key: "viewport", Value: vp.Label},
				logging.Field{Key: "error", Value: err.Error()})
			continue
		}
		findings = append(findings, vf...)
		bodyTexts[vp.Label] = text
	}

	if f, ok := s.viewportMismatch(viewports, bodyTexts); ok {
		f.PageURL = pageURL
		findings = append(findings, f)
	}

	for i := range findings {
		if findings[i].PageURL == "" {
			findings[i].PageURL = pageURL
		}
	}

	deduped := s.engine.Dedupe(findings)
	result.Score = s.engine.PageScore(deduped)
	ranked := s.engine.Prioritize(deduped)
	result.Findings = score.CapPerCategory(ranked, s.cfg.MaxBugsPerCategory)
	result.Timestamp = time.Now().UTC().Format(time.RFC3339)

	return result, nil
}

// scanViewport owns one rendering session from acquire to release. The
// session is closed on every exit path.
func (s *Scanner) scanViewport(ctx context.Context, pageURL string, vp model.Viewport, first bool, enabled []checks.Check, result *model.PageResult) ([]model.Finding, string, error) {
	sess, err := s.drv.NewSession(ctx, vp)
	if err != nil {
		return nil, "", fmt.Errorf("open session: %w", err)
	}
	defer sess.Close()

	start := time.Now()
	if err := sess.Navigate(ctx, pageURL); err != nil {
		return nil, "", fmt.Errorf("navigate: %w", err)
	}
	sess.WaitSettled(ctx)
	loadMs := time.Since(start).Milliseconds()

	if first {
		result.Metrics.LoadTimeMs = loadMs

		var domCount int
		if err := sess.Evaluate(ctx, domCountJS, &domCount); err == nil {
			result.Metrics.DOMElements = domCount
		}

		s.captureScreenshot(ctx, sess, result)
		s.harvestLinks(ctx, sess, pageURL, result)
	}

	var out []model.Finding
	for _, check := range enabled {
		if check.Scope() == checks.ScopePage && !first {
			continue
		}
		found := s.runCheck(ctx, check, sess, vp.Label, pageURL)
		out = append(out, found...)
	}

	out = append(out, s.consoleFindings(sess, vp.Label, pageURL)...)

	var text string
	if err := sess.Evaluate(ctx, bodyTextJS, &text); err != nil {
		text = ""
	}

	return out, text, nil
}

// runCheck executes one plugin and absorbs its failure. A panicking or
// erroring check contributes zero findings for this page/viewport.
func (s *Scanner) runCheck(ctx context.Context, check checks.Check, sess driver.Session, label, pageURL string) (out []model.Finding) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("check panicked",
				logging.Field{Key: "check", Value: check.Name()},
				logging.Field{Key: "url", Value: pageURL},
				logging.Field{Key: "panic", Value: fmt.Sprint(r)})
			out = nil
		}
	}()

	found, err := check.Run(ctx, sess, label)
	if err != nil {
		s.logger.Warn("check failed",
			logging.Field{Key: "check", Value: check.Name()},
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil
	}

	for i := range found {
		found[i].Message = "[" + label + "] " + found[i].Message
		if found[i].Location == "" {
			found[i].Location = "viewport " + label
		}
		found[i].PageURL = pageURL
	}
	return found
}

func (s *Scanner) consoleFindings(sess driver.Session, label, pageURL string) []model.Finding {
	errs := sess.ConsoleErrors()
	if len(errs) > maxConsoleFindings {
		errs = errs[:maxConsoleFindings]
	}
	out := make([]model.Finding, 0, len(errs))
	for _, msg := range errs {
		f := checks.NewConsoleFinding(msg)
		f.Message = "[" + label + "] " + f.Message
		f.Location = "viewport " + label
		f.PageURL = pageURL
		out = append(out, f)
	}
	return out
}

func (s *Scanner) captureScreenshot(ctx context.Context, sess driver.Session, result *model.PageResult) {
	if s.cfg.ScreenshotQuality <= 0 {
		return
	}
	shot, err := sess.Screenshot(ctx, s.cfg.ScreenshotQuality)
	if err != nil {
		s.logger.Warn("screenshot failed",
			logging.Field{Key: "url", Value: result.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return
	}
	if len(shot) > maxScreenshotBytes {
		s.logger.Debug("screenshot exceeds size ceiling, dropped",
			logging.Field{Key: "url", Value: result.URL},
			logging.Field{Key: "bytes", Value: len(shot)})
		return
	}
	result.Screenshot = shot
}

func (s *Scanner) harvestLinks(ctx context.Context, sess driver.Session, pageURL string, result *model.PageResult) {
	html, err := sess.HTML(ctx)
	if err != nil {
		s.logger.Warn("link harvest failed",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "error", Value: err.Error()})
		return
	}
	origin, err := utils.Origin(pageURL)
	if err != nil {
		return
	}
	for _, link := range utils.ExtractLinks(html, pageURL) {
		if utils.SameOrigin(link, origin) {
			result.Links = append(result.Links, link)
		}
	}
}

// viewportMismatch compares each viewport's visible text against the first
// viewport's. Responsive layouts reorder content; losing or replacing more
// than half of it usually means a broken breakpoint.
func (s *Scanner) viewportMismatch(viewports []model.Viewport, texts map[string]string) (model.Finding, bool) {
	if len(viewports) < 2 {
		return model.Finding{}, false
	}
	ref := texts[viewports[0].Label]
	if strings.TrimSpace(ref) == "" {
		return model.Finding{}, false
	}

	dmp := diffmatchpatch.New()
	for _, vp := range viewports[1:] {
		text, ok := texts[vp.Label]
		if !ok {
			continue
		}
		diffs := dmp.DiffMain(ref, text, false)
		distance := dmp.DiffLevenshtein(diffs)
		longest := len([]rune(ref))
		if other := len([]rune(text)); other > longest {
			longest = other
		}
		if longest == 0 || float64(distance)/float64(longest) <= viewportDivergence {
			continue
		}
		f := checks.NewViewportMismatchFinding(viewports[0].Label, vp.Label)
		return f, true
	}
	return model.Finding{}, false
}
