// Package score collapses near-duplicate findings, computes the 0-100 page
// quality score with diminishing-return penalties, and assigns each finding
// a 0-100 fix-first priority. All operations are deterministic for a fixed
// finding set, independent of scan completion order.
package score

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/sableview/uivet/internal/model"
)

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.BasePenalty == nil {
		cfg.BasePenalty = def.BasePenalty
	}
	if cfg.CodeCap == nil {
		cfg.CodeCap = def.CodeCap
	}
	if cfg.TotalCap == 0 {
		cfg.TotalCap = def.TotalCap
	}
	if cfg.DiminishFactor == 0 {
		cfg.DiminishFactor = def.DiminishFactor
	}
	if cfg.PriorityBase == nil {
		cfg.PriorityBase = def.PriorityBase
	}
	if cfg.ImpactMultipliers == nil {
		cfg.ImpactMultipliers = def.ImpactMultipliers
	}
	if cfg.DedupPrefixLen == 0 {
		cfg.DedupPrefixLen = def.DedupPrefixLen
	}
	return &Engine{cfg: cfg}
}

// viewportTag matches the leading "[desktop] "-style tags the scan
// orchestrator prefixes into messages.
var viewportTag = regexp.MustCompile(`^(\s*\[[^\]]*\]\s*)+`)

// dedupKey collapses the same defect detected across viewports or by
// overlapping plugin logic.
func (e *Engine) dedupKey(f model.Finding) string {
	msg := viewportTag.ReplaceAllString(f.Message, "")
	// Truncate on a rune boundary so multi-byte messages keep valid keys.
	if r := []rune(msg); len(r) > e.cfg.DedupPrefixLen {
		msg = string(r[:e.cfg.DedupPrefixLen])
	}
	return f.Code + "\x00" + msg + "\x00" + f.Selector
}

// Dedupe keeps the first occurrence per key and discards later duplicates.
// Running it twice yields the same set as running it once.
func (e *Engine) Dedupe(findings []model.Finding) []model.Finding {
	seen := make(map[string]struct{}, len(findings))
	out := findings[:0:0]
	for _, f := range findings {
		k := e.dedupKey(f)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}

// PageScore converts a finding set into the 0-100 quality score, 100 being
// a clean page. Adding a finding never raises the score.
func (e *Engine) PageScore(findings []model.Finding) int {
	if len(findings) == 0 {
		return 100
	}

	// Process by descending severity weight so caps bite in a stable order.
	ordered := make([]model.Finding, len(findings))
	copy(ordered, findings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return e.cfg.BasePenalty[ordered[i].Severity] > e.cfg.BasePenalty[ordered[j].Severity]
	})

	codeOrder := []string{}
	byCode := map[string][]model.Finding{}
	for _, f := range ordered {
		if _, ok := byCode[f.Code]; !ok {
			codeOrder = append(codeOrder, f.Code)
		}
		byCode[f.Code] = append(byCode[f.Code], f)
	}

	var total float64
	for _, code := range codeOrder {
		group := byCode[code]
		// The group is severity-ordered, so the first finding carries the
		// ceiling for the whole code.
		ceiling := e.cfg.CodeCap[group[0].Severity]
		var codeTotal float64
		for i, f := range group {
			base := e.cfg.BasePenalty[f.Severity]
			codeTotal += base / (1 + float64(i)*e.cfg.DiminishFactor)
		}
		// Findings of an already-capped code contribute nothing further.
		if codeTotal > ceiling {
			codeTotal = ceiling
		}
		total += codeTotal
	}

	if total > e.cfg.TotalCap {
		total = e.cfg.TotalCap
	}

	score := int(math.Round(100 - total))
	if score < 0 {
		score = 0
	}
	return score
}

// Prioritize assigns every finding its 0-100 priority and returns the set
// sorted by descending priority. Findings of a code that fires often are
// discounted by 1/sqrt(count) so one noisy code does not drown the list.
func (e *Engine) Prioritize(findings []model.Finding) []model.Finding {
	counts := map[string]int{}
	for _, f := range findings {
		counts[f.Code]++
	}

	out := make([]model.Finding, len(findings))
	copy(out, findings)
	for i, f := range out {
		base := e.cfg.PriorityBase[f.Severity]
		impact := 1.0
		if m, ok := e.cfg.ImpactMultipliers[f.Code]; ok {
			impact = m
		}
		freqAdj := 1 / math.Sqrt(float64(counts[f.Code]))
		p := int(math.Round(base * impact * freqAdj * 2))
		if p > 100 {
			p = 100
		}
		if p < 0 {
			p = 0
		}
		out[i].Priority = p
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		if ri, rj := model.SeverityRank(out[i].Severity), model.SeverityRank(out[j].Severity); ri != rj {
			return ri < rj
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// CapPerCategory keeps at most max findings per category (the code prefix
// before the first slash). Callers run it after Prioritize so the survivors
// are the highest-priority ones. max <= 0 keeps everything.
func CapPerCategory(findings []model.Finding, max int) []model.Finding {
	if max <= 0 {
		return findings
	}
	kept := map[string]int{}
	out := findings[:0:0]
	for _, f := range findings {
		cat := f.Code
		if i := strings.Index(cat, "/"); i >= 0 {
			cat = cat[:i]
		}
		if kept[cat] >= max {
			continue
		}
		kept[cat]++
		out = append(out, f)
	}
	return out
}

// SiteScore is the arithmetic mean of page scores, rounded. A site with
// zero scanned pages is vacuously clean.
func SiteScore(pages []model.PageResult) int {
	if len(pages) == 0 {
		return 100
	}
	sum := 0
	for _, p := range pages {
		sum += p.Score
	}
	return int(math.Round(float64(sum) / float64(len(pages))))
}
