package score_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sableview/uivet/internal/model"
	"github.com/sableview/uivet/internal/score"
)

func finding(code string, sev model.Severity, msg, selector string) model.Finding {
	return model.Finding{Code: code, Severity: sev, Message: msg, Selector: selector}
}

// ─── PageScore ─────────────────────────────────────────────────────────

func TestPageScore_CleanPageIsHundred(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())
	if got := e.PageScore(nil); got != 100 {
		t.Errorf("empty set: got %d, want 100", got)
	}
}

func TestPageScore_SingleCritical(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())
	fs := []model.Finding{finding("layout/horizontal-overflow", model.SeverityCritical, "overflow", "body")}
	if got := e.PageScore(fs); got != 88 {
		t.Errorf("one critical: got %d, want 88", got)
	}
}

func TestPageScore_DiminishingReturnsWithinCode(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())

	sameCode := make([]model.Finding, 5)
	for i := range sameCode {
		sameCode[i] = finding("visual/broken-image", model.SeverityMajor, fmt.Sprintf("img %d", i), fmt.Sprintf("img:nth(%d)", i))
	}

	distinct := make([]model.Finding, 5)
	for i := range distinct {
		distinct[i] = finding(fmt.Sprintf("visual/defect-%d", i), model.SeverityMajor, fmt.Sprintf("bug %d", i), "")
	}

	same := e.PageScore(sameCode)
	diff := e.PageScore(distinct)
	if same <= diff {
		t.Errorf("five duplicates of one code (%d) must score higher than five distinct codes (%d)", same, diff)
	}
	// 6 + 6/1.3 + 6/1.6 + 6/1.9 + 6/2.2 ≈ 20.25, capped at 20 -> 80.
	if same != 80 {
		t.Errorf("five same-code major findings: got %d, want 80", same)
	}
	// 5 * 6 = 30 -> 70.
	if diff != 70 {
		t.Errorf("five distinct major codes: got %d, want 70", diff)
	}
}

func TestPageScore_BoundsAndMonotonicity(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())

	var fs []model.Finding
	prev := 100
	severities := []model.Severity{
		model.SeverityCritical, model.SeverityMajor,
		model.SeverityMinor, model.SeverityOptimization,
	}
	for i := 0; i < 120; i++ {
		fs = append(fs, finding(
			fmt.Sprintf("cat/code-%d", i%17),
			severities[i%len(severities)],
			fmt.Sprintf("message %d", i), ""))
		got := e.PageScore(fs)
		if got < 0 || got > 100 {
			t.Fatalf("score out of range after %d findings: %d", i+1, got)
		}
		if got > prev {
			t.Fatalf("adding a finding raised the score: %d -> %d", prev, got)
		}
		prev = got
	}
}

func TestPageScore_MinorNoiseFloor(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())
	var fs []model.Finding
	for i := 0; i < 500; i++ {
		fs = append(fs, finding(fmt.Sprintf("typo/code-%d", i), model.SeverityMinor, fmt.Sprintf("m%d", i), ""))
	}
	if got := e.PageScore(fs); got < 30 {
		t.Errorf("minor noise alone drove score to %d, floor is 30", got)
	}
}

// ─── Dedupe ────────────────────────────────────────────────────────────

func TestDedupe_CollapsesViewportDuplicates(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())
	fs := []model.Finding{
		finding("a11y/img-missing-alt", model.SeverityMajor, "[desktop] image has no alt text", "img.hero"),
		finding("a11y/img-missing-alt", model.SeverityMajor, "[tablet] image has no alt text", "img.hero"),
		finding("a11y/img-missing-alt", model.SeverityMajor, "[mobile] image has no alt text", "img.hero"),
		finding("a11y/img-missing-alt", model.SeverityMajor, "[mobile] image has no alt text", "img.other"),
	}
	got := e.Dedupe(fs)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d: %+v", len(got), got)
	}
	// First occurrence wins.
	if got[0].Message != "[desktop] image has no alt text" {
		t.Errorf("expected first occurrence kept, got %q", got[0].Message)
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())
	fs := []model.Finding{
		finding("x/a", model.SeverityMinor, "[desktop] aaa", "s1"),
		finding("x/a", model.SeverityMinor, "[mobile] aaa", "s1"),
		finding("x/b", model.SeverityMinor, "bbb", ""),
	}
	once := e.Dedupe(fs)
	twice := e.Dedupe(once)
	if len(once) != len(twice) {
		t.Fatalf("dedupe not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("entry %d differs after second dedupe", i)
		}
	}
}

func TestDedupe_MultibyteMessagesTruncateOnRuneBoundary(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())

	// 80 two-byte runes: a byte-index prefix would cut rune 41 in half.
	long := strings.Repeat("é", 80)
	fs := []model.Finding{
		finding("typo/mojibake", model.SeverityMinor, "[desktop] "+long+"tail one", "p"),
		finding("typo/mojibake", model.SeverityMinor, "[mobile] "+long+"tail two", "p"),
	}
	got := e.Dedupe(fs)
	if len(got) != 1 {
		t.Fatalf("messages equal within the prefix must collapse, got %d", len(got))
	}
	for _, f := range got {
		if !utf8.ValidString(f.Message) {
			t.Fatalf("invalid UTF-8 survived dedupe: %q", f.Message)
		}
	}

	distinct := []model.Finding{
		finding("typo/mojibake", model.SeverityMinor, strings.Repeat("à", 40)+" first", "p"),
		finding("typo/mojibake", model.SeverityMinor, strings.Repeat("à", 40)+" other", "p"),
	}
	if got := e.Dedupe(distinct); len(got) != 2 {
		t.Errorf("messages differing within the prefix must survive, got %d", len(got))
	}
}

func TestDedupe_DistinctSelectorsSurvive(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())
	fs := []model.Finding{
		finding("x/a", model.SeverityMinor, "same message", "#one"),
		finding("x/a", model.SeverityMinor, "same message", "#two"),
	}
	if got := e.Dedupe(fs); len(got) != 2 {
		t.Errorf("different selectors are different findings; got %d", len(got))
	}
}

// ─── Prioritize ────────────────────────────────────────────────────────

func TestPrioritize_BoundsAndOrdering(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())
	fs := []model.Finding{
		finding("typo/repeated-word", model.SeverityMinor, "word word", ""),
		finding("layout/horizontal-overflow", model.SeverityCritical, "overflow", ""),
		finding("visual/broken-image", model.SeverityMajor, "broken", ""),
	}
	got := e.Prioritize(fs)
	for _, f := range got {
		if f.Priority < 0 || f.Priority > 100 {
			t.Errorf("priority out of range: %d for %s", f.Priority, f.Code)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Priority > got[i-1].Priority {
			t.Errorf("not sorted by descending priority at %d", i)
		}
	}
	if got[0].Code != "layout/horizontal-overflow" {
		t.Errorf("critical finding should rank first, got %s", got[0].Code)
	}
	// critical base 40 * 1.0 impact * 1.0 freq * 2 = 80.
	if got[0].Priority != 80 {
		t.Errorf("lone critical priority: got %d, want 80", got[0].Priority)
	}
}

func TestPrioritize_FrequencyDiscountAndImpact(t *testing.T) {
	t.Parallel()
	e := score.NewEngine(score.DefaultConfig())
	fs := []model.Finding{
		finding("interaction/dead-link", model.SeverityMajor, "dead link a", "#a"),
		finding("interaction/dead-link", model.SeverityMajor, "dead link b", "#b"),
		finding("interaction/dead-link", model.SeverityMajor, "dead link c", "#c"),
		finding("interaction/dead-link", model.SeverityMajor, "dead link d", "#d"),
	}
	got := e.Prioritize(fs)
	// base 25 * impact 1.6 * 1/sqrt(4) * 2 = 40.
	for _, f := range got {
		if f.Priority != 40 {
			t.Errorf("expected discounted priority 40, got %d", f.Priority)
		}
	}

	single := e.Prioritize(fs[:1])
	// base 25 * impact 1.6 * 1 * 2 = 80.
	if single[0].Priority != 80 {
		t.Errorf("expected undampened priority 80, got %d", single[0].Priority)
	}
}

// ─── CapPerCategory ────────────────────────────────────────────────────

func TestCapPerCategory(t *testing.T) {
	t.Parallel()
	var fs []model.Finding
	for i := 0; i < 6; i++ {
		fs = append(fs, finding("typo/repeated-word", model.SeverityMinor, fmt.Sprintf("m%d", i), ""))
	}
	fs = append(fs, finding("a11y/img-missing-alt", model.SeverityMajor, "alt", ""))

	got := score.CapPerCategory(fs, 3)
	typos, a11y := 0, 0
	for _, f := range got {
		switch f.Code {
		case "typo/repeated-word":
			typos++
		case "a11y/img-missing-alt":
			a11y++
		}
	}
	if typos != 3 || a11y != 1 {
		t.Errorf("expected 3 typos + 1 a11y, got %d/%d", typos, a11y)
	}

	if got := score.CapPerCategory(fs, 0); len(got) != len(fs) {
		t.Errorf("max<=0 must keep everything")
	}
}

// ─── SiteScore ─────────────────────────────────────────────────────────

func TestSiteScore(t *testing.T) {
	t.Parallel()
	if got := score.SiteScore(nil); got != 100 {
		t.Errorf("empty site: got %d, want 100", got)
	}
	pages := []model.PageResult{{Score: 80}, {Score: 91}}
	if got := score.SiteScore(pages); got != 86 {
		t.Errorf("mean of 80,91: got %d, want 86", got)
	}
}
