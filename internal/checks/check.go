// Package checks holds the defect detectors. Every check satisfies the same
// contract: given a rendered page session and a viewport label, return
// findings. Checks never mutate shared crawl state; a failing check is
// absorbed by the scan orchestrator as zero findings plus a warning.
package checks

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/model"
)

// Scope says how often a check runs per page.
type Scope int

const (
	// ScopeViewport checks run against every configured viewport.
	ScopeViewport Scope = iota

	// ScopePage checks inspect viewport-independent structure and run once
	// per page, against the first viewport only, so non-visual findings are
	// not duplicated per viewport.
	ScopePage
)

// Check is the plugin contract for one defect detector.
type Check interface {
	Name() string
	Scope() Scope
	Run(ctx context.Context, page driver.Session, viewport string) ([]model.Finding, error)
}

// Enabled builds the configured subset of checks, in a fixed order.
func Enabled(cfg model.ScanConfig) []Check {
	var out []Check
	if cfg.CheckLayout {
		out = append(out, &LayoutCheck{})
	}
	if cfg.CheckVisual {
		out = append(out, &VisualCheck{})
	}
	if cfg.CheckInteraction {
		out = append(out, &InteractionCheck{})
	}
	if cfg.CheckAccessibility {
		out = append(out, &AccessibilityCheck{})
	}
	if cfg.CheckTypo {
		out = append(out, &TypoCheck{Whitelist: cfg.CustomWhitelist})
	}
	if cfg.CheckNavigation {
		out = append(out, &NavigationCheck{})
	}
	if cfg.CheckForms {
		out = append(out, &FormsCheck{})
	}
	return out
}

const snippetMax = 160

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > snippetMax {
		return string(r[:snippetMax]) + "…"
	}
	return s
}

func newFinding(code string, sev model.Severity, msg string) model.Finding {
	return model.Finding{
		ID:       uuid.NewString(),
		Code:     code,
		Severity: sev,
		Message:  msg,
	}
}

// document fetches the session's current DOM and parses it for the
// goquery-based checks.
func document(ctx context.Context, page driver.Session) (*goquery.Document, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// selectorFor builds a best-effort CSS selector for a goquery selection.
func selectorFor(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	node := sel.Get(0)
	tag := node.Data
	if id, ok := sel.Attr("id"); ok && id != "" {
		return tag + "#" + id
	}
	if class, ok := sel.Attr("class"); ok && class != "" {
		parts := strings.Fields(class)
		if len(parts) > 0 {
			return tag + "." + parts[0]
		}
	}
	return tag
}
