package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/model"
)

// AccessibilityCheck inspects viewport-independent document structure, so it
// runs once per page.
type AccessibilityCheck struct{}

func (c *AccessibilityCheck) Name() string { return "accessibility" }
func (c *AccessibilityCheck) Scope() Scope { return ScopePage }

func (c *AccessibilityCheck) Run(ctx context.Context, page driver.Session, viewport string) ([]model.Finding, error) {
	doc, err := document(ctx, page)
	if err != nil {
		return nil, err
	}

	var out []model.Finding

	if lang, ok := doc.Find("html").Attr("lang"); !ok || strings.TrimSpace(lang) == "" {
		f := newFinding("a11y/missing-lang", model.SeverityMinor,
			"document has no lang attribute")
		f.Selector = "html"
		f.Reference = "WCAG 3.1.1"
		f.Suggestion = `set <html lang="..."> to the page language`
		out = append(out, f)
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if _, ok := img.Attr("alt"); ok {
			return
		}
		if role, _ := img.Attr("role"); role == "presentation" || role == "none" {
			return
		}
		src, _ := img.Attr("src")
		f := newFinding("a11y/img-missing-alt", model.SeverityMajor,
			fmt.Sprintf("image %s has no alt text", src))
		f.Selector = selectorFor(img)
		f.Reference = "WCAG 1.1.1"
		f.Suggestion = `add alt="" for decorative images or a description otherwise`
		out = append(out, f)
	})

	doc.Find("input, select, textarea").Each(func(_ int, in *goquery.Selection) {
		typ, _ := in.Attr("type")
		switch typ {
		case "hidden", "submit", "button", "image", "reset":
			return
		}
		if _, ok := in.Attr("aria-label"); ok {
			return
		}
		if _, ok := in.Attr("aria-labelledby"); ok {
			return
		}
		if id, ok := in.Attr("id"); ok && id != "" {
			if doc.Find(fmt.Sprintf(`label[for=%q]`, id)).Length() > 0 {
				return
			}
		}
		if in.ParentsFiltered("label").Length() > 0 {
			return
		}
		f := newFinding("a11y/input-missing-label", model.SeverityMajor,
			"form field has no associated label")
		f.Selector = selectorFor(in)
		f.Reference = "WCAG 3.3.2"
		out = append(out, f)
	})

	doc.Find("button, a[href]").Each(func(_ int, el *goquery.Selection) {
		if strings.TrimSpace(el.Text()) != "" {
			return
		}
		if v, ok := el.Attr("aria-label"); ok && strings.TrimSpace(v) != "" {
			return
		}
		if el.Find("img[alt]").Length() > 0 {
			return
		}
		f := newFinding("a11y/empty-control", model.SeverityMajor,
			"interactive control has no accessible name")
		f.Selector = selectorFor(el)
		f.Snippet = snippet(goquery.NodeName(el))
		f.Reference = "WCAG 4.1.2"
		out = append(out, f)
	})

	return out, nil
}
