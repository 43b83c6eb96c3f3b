package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/model"
)

// NavigationCheck verifies in-page navigation: fragment links must point at
// an existing anchor, and the document should carry a title.
type NavigationCheck struct{}

func (c *NavigationCheck) Name() string { return "navigation" }
func (c *NavigationCheck) Scope() Scope { return ScopePage }

func (c *NavigationCheck) Run(ctx context.Context, page driver.Session, viewport string) ([]model.Finding, error) {
	doc, err := document(ctx, page)
	if err != nil {
		return nil, err
	}

	var out []model.Finding

	if strings.TrimSpace(doc.Find("head title").Text()) == "" {
		f := newFinding("nav/missing-title", model.SeverityMinor,
			"document has no title")
		f.Reference = "WCAG 2.4.2"
		out = append(out, f)
	}

	ids := map[string]struct{}{}
	doc.Find("[id]").Each(func(_ int, el *goquery.Selection) {
		if id, ok := el.Attr("id"); ok {
			ids[id] = struct{}{}
		}
	})
	doc.Find("a[name]").Each(func(_ int, el *goquery.Selection) {
		if name, ok := el.Attr("name"); ok {
			ids[name] = struct{}{}
		}
	})

	doc.Find(`a[href^="#"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		target := strings.TrimPrefix(href, "#")
		if target == "" {
			return // bare "#" is the interaction check's business
		}
		if _, ok := ids[target]; ok {
			return
		}
		f := newFinding("nav/broken-fragment", model.SeverityMajor,
			fmt.Sprintf("fragment link %q points at a missing anchor", href))
		f.Selector = selectorFor(a)
		f.Expected = fmt.Sprintf("an element with id=%q exists on the page", target)
		f.Suggestion = "restore the anchor or update the link"
		out = append(out, f)
	})

	return out, nil
}
