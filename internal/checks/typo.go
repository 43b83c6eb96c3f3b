package checks

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/model"
)

var (
	word        = regexp.MustCompile(`\b[a-zA-Z]{2,}\b`)
	placeholder = regexp.MustCompile(`(?i)\b(lorem ipsum|TODO|FIXME|placeholder text)\b`)
	mojibake    = regexp.MustCompile(`Ã[©¨«¢±¼]|â€[™œ"]|\x{FFFD}`)
)

// repeatedWords returns up to max words that appear twice in a row,
// separated only by whitespace.
func repeatedWords(text string, max int) []string {
	idx := word.FindAllStringIndex(text, -1)
	var out []string
	for i := 1; i < len(idx) && len(out) < max; i++ {
		prev, cur := idx[i-1], idx[i]
		if strings.TrimSpace(text[prev[1]:cur[0]]) != "" {
			continue
		}
		a, b := text[prev[0]:prev[1]], text[cur[0]:cur[1]]
		if strings.EqualFold(a, b) {
			out = append(out, strings.ToLower(b))
		}
	}
	return out
}

// Words that legitimately repeat ("had had", "that that" is still flagged;
// these are the common false positives).
var repeatAllowed = map[string]struct{}{
	"had": {}, "that": {}, "ha": {}, "no": {}, "bye": {},
}

// TypoCheck scans visible text for obvious content defects. It is a cheap
// heuristic pass, not a spell checker.
type TypoCheck struct {
	// Whitelist extends the built-in allowed repeats with caller-supplied
	// words.
	Whitelist []string
}

func (c *TypoCheck) Name() string { return "typo" }
func (c *TypoCheck) Scope() Scope { return ScopePage }

func (c *TypoCheck) allowed(word string) bool {
	w := strings.ToLower(word)
	if _, ok := repeatAllowed[w]; ok {
		return true
	}
	for _, v := range c.Whitelist {
		if strings.EqualFold(v, w) {
			return true
		}
	}
	return false
}

func (c *TypoCheck) Run(ctx context.Context, page driver.Session, viewport string) ([]model.Finding, error) {
	doc, err := document(ctx, page)
	if err != nil {
		return nil, err
	}

	var out []model.Finding

	doc.Find("script, style, noscript").Remove()
	doc.Find("p, h1, h2, h3, h4, h5, h6, li, td, figcaption, blockquote").Each(func(_ int, el *goquery.Selection) {
		text := strings.Join(strings.Fields(el.Text()), " ")
		if text == "" {
			return
		}

		for _, w := range repeatedWords(text, 3) {
			if c.allowed(w) {
				continue
			}
			f := newFinding("typo/repeated-word", model.SeverityMinor,
				"repeated word \""+w+"\"")
			f.Selector = selectorFor(el)
			f.Snippet = snippet(text)
			out = append(out, f)
		}

		if m := placeholder.FindString(text); m != "" {
			f := newFinding("typo/placeholder-text", model.SeverityMinor,
				"placeholder text \""+m+"\" shipped to production")
			f.Selector = selectorFor(el)
			f.Snippet = snippet(text)
			f.Suggestion = "replace with real copy"
			out = append(out, f)
		}

		if mojibake.MatchString(text) {
			f := newFinding("typo/mojibake", model.SeverityMinor,
				"text contains encoding artifacts")
			f.Selector = selectorFor(el)
			f.Snippet = snippet(text)
			f.Details = "usually UTF-8 bytes decoded as Latin-1 somewhere in the pipeline"
			out = append(out, f)
		}
	})

	return out, nil
}
