package checks

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/model"
)

// FormsCheck inspects form structure: every form needs a way to submit it,
// and fields users fill in need names so the submission carries data.
type FormsCheck struct{}

func (c *FormsCheck) Name() string { return "forms" }
func (c *FormsCheck) Scope() Scope { return ScopePage }

func (c *FormsCheck) Run(ctx context.Context, page driver.Session, viewport string) ([]model.Finding, error) {
	doc, err := document(ctx, page)
	if err != nil {
		return nil, err
	}

	var out []model.Finding

	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		hasSubmit := form.Find(`input[type="submit"], button[type="submit"], input[type="image"]`).Length() > 0
		// A button without an explicit type submits inside a form.
		form.Find("button").Each(func(_ int, b *goquery.Selection) {
			if t, ok := b.Attr("type"); !ok || t == "" || t == "submit" {
				hasSubmit = true
			}
		})
		if !hasSubmit {
			f := newFinding("forms/missing-submit", model.SeverityMajor,
				"form has no submit control")
			f.Selector = selectorFor(form)
			f.Expected = "a submit button or input inside the form"
			out = append(out, f)
		}

		form.Find("input, select, textarea").Each(func(_ int, in *goquery.Selection) {
			typ, _ := in.Attr("type")
			switch typ {
			case "submit", "button", "reset", "image":
				return
			}
			if name, ok := in.Attr("name"); ok && name != "" {
				return
			}
			f := newFinding("forms/unnamed-input", model.SeverityMinor,
				"form field has no name and will not be submitted")
			f.Selector = selectorFor(in)
			out = append(out, f)
		})

		form.Find(`input[type="password"]`).Each(func(_ int, pw *goquery.Selection) {
			if v, ok := pw.Attr("autocomplete"); ok && v != "" {
				return
			}
			f := newFinding("forms/password-autocomplete", model.SeverityOptimization,
				"password field does not declare autocomplete behavior")
			f.Selector = selectorFor(pw)
			f.Suggestion = `set autocomplete="current-password" or "new-password"`
			out = append(out, f)
		})
	})

	return out, nil
}
