// Package report renders crawl results for humans and machines: a ranked
// markdown report, a JSON document and an exit-code classification.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sableview/uivet/internal/model"
)

// collapseThreshold is the occurrence count above which a code is folded
// into one summarized report entry.
const collapseThreshold = 5

// Status classifies a finished crawl for process exit semantics.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// ExitCode maps a status to the conventional process exit code.
func (s Status) ExitCode() int {
	switch s {
	case StatusWarn:
		return 1
	case StatusFail:
		return 2
	default:
		return 0
	}
}

// Classify inspects every finding across the crawl: critical findings fail
// the run, major findings warn, anything less passes.
func Classify(cr model.CrawlResult) Status {
	status := StatusPass
	for _, page := range cr.Pages {
		for _, f := range page.Findings {
			switch f.Severity {
			case model.SeverityCritical:
				return StatusFail
			case model.SeverityMajor:
				status = StatusWarn
			}
		}
	}
	return status
}

// WriteJSON writes the machine-readable result document.
func WriteJSON(w io.Writer, cr model.CrawlResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cr); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

type codeGroup struct {
	code     string
	severity model.Severity
	priority int
	findings []model.Finding
	pages    map[string]struct{}
}

// Markdown renders the ranked human-readable report. Findings are grouped
// by severity then code; any code appearing more than collapseThreshold
// times collapses into a single summarized entry with an affected count.
func Markdown(cr model.CrawlResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# UI audit: %s\n\n", cr.RootURL)
	fmt.Fprintf(&b, "- **Site score:** %d/100\n", cr.Score)
	fmt.Fprintf(&b, "- **Pages scanned:** %d of %d discovered\n", cr.PagesScanned, cr.TotalPagesFound)
	fmt.Fprintf(&b, "- **Verdict:** %s\n", Classify(cr))
	fmt.Fprintf(&b, "- **Elapsed:** %dms\n\n", cr.ElapsedMs)

	groups := map[string]*codeGroup{}
	for _, page := range cr.Pages {
		for _, f := range page.Findings {
			g, ok := groups[f.Code]
			if !ok {
				g = &codeGroup{code: f.Code, severity: f.Severity, pages: map[string]struct{}{}}
				groups[f.Code] = g
			}
			if model.SeverityRank(f.Severity) < model.SeverityRank(g.severity) {
				g.severity = f.Severity
			}
			if f.Priority > g.priority {
				g.priority = f.Priority
			}
			g.findings = append(g.findings, f)
			g.pages[f.PageURL] = struct{}{}
		}
	}

	if len(groups) == 0 {
		b.WriteString("No defects found.\n")
		return b.String()
	}

	bySeverity := map[model.Severity][]*codeGroup{}
	for _, g := range groups {
		bySeverity[g.severity] = append(bySeverity[g.severity], g)
	}

	for _, sev := range []model.Severity{model.SeverityCritical, model.SeverityMajor, model.SeverityMinor, model.SeverityOptimization} {
		sgs := bySeverity[sev]
		if len(sgs) == 0 {
			continue
		}
		sort.Slice(sgs, func(i, j int) bool {
			if sgs[i].priority != sgs[j].priority {
				return sgs[i].priority > sgs[j].priority
			}
			return sgs[i].code < sgs[j].code
		})

		fmt.Fprintf(&b, "## %s\n\n", strings.ToUpper(string(sev)))
		for _, g := range sgs {
			writeGroup(&b, g)
		}
	}

	return b.String()
}

func writeGroup(b *strings.Builder, g *codeGroup) {
	if len(g.findings) > collapseThreshold {
		fmt.Fprintf(b, "### `%s` — %d occurrences across %d page(s)\n\n", g.code, len(g.findings), len(g.pages))
		f := g.findings[0]
		fmt.Fprintf(b, "%s\n\n", f.Message)
		if f.Suggestion != "" {
			fmt.Fprintf(b, "Suggested fix: %s\n\n", f.Suggestion)
		}
		return
	}

	fmt.Fprintf(b, "### `%s`\n\n", g.code)
	for _, f := range g.findings {
		fmt.Fprintf(b, "- %s (priority %d)\n", f.Message, f.Priority)
		if f.Selector != "" {
			fmt.Fprintf(b, "  - selector: `%s`\n", f.Selector)
		}
		if f.PageURL != "" {
			fmt.Fprintf(b, "  - page: %s\n", f.PageURL)
		}
		if f.Expected != "" {
			fmt.Fprintf(b, "  - expected: %s\n", f.Expected)
		}
		if f.Suggestion != "" {
			fmt.Fprintf(b, "  - fix: %s\n", f.Suggestion)
		}
		if f.Reference != "" {
			fmt.Fprintf(b, "  - reference: %s\n", f.Reference)
		}
	}
	b.WriteString("\n")
}
