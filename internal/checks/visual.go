package checks

import (
	"context"
	"fmt"

	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/model"
)

const visualJS = `
(() => {
	const sel = (el) => {
		if (el.id) return el.tagName.toLowerCase() + '#' + el.id;
		if (el.classList.length) return el.tagName.toLowerCase() + '.' + el.classList[0];
		return el.tagName.toLowerCase();
	};
	const brokenImages = [];
	for (const img of document.querySelectorAll('img[src]')) {
		if (img.complete && img.naturalWidth === 0 && brokenImages.length < 20) {
			brokenImages.push({selector: sel(img), src: img.getAttribute('src') || ''});
		}
	}
	const tinyText = [];
	for (const el of document.querySelectorAll('p, li, span, td, label')) {
		if (!el.innerText || !el.innerText.trim()) continue;
		const size = parseFloat(getComputedStyle(el).fontSize);
		if (size > 0 && size < 10 && tinyText.length < 10) {
			tinyText.push({selector: sel(el), size: size, text: el.innerText.slice(0, 60)});
		}
	}
	return {brokenImages: brokenImages, tinyText: tinyText};
})()`

type visualReport struct {
	BrokenImages []struct {
		Selector string `json:"selector"`
		Src      string `json:"src"`
	} `json:"brokenImages"`
	TinyText []struct {
		Selector string  `json:"selector"`
		Size     float64 `json:"size"`
		Text     string  `json:"text"`
	} `json:"tinyText"`
}

// VisualCheck flags images that failed to render and illegibly small text.
type VisualCheck struct{}

func (c *VisualCheck) Name() string { return "visual" }
func (c *VisualCheck) Scope() Scope { return ScopeViewport }

func (c *VisualCheck) Run(ctx context.Context, page driver.Session, viewport string) ([]model.Finding, error) {
	var rep visualReport
	if err := page.Evaluate(ctx, visualJS, &rep); err != nil {
		return nil, err
	}

	var out []model.Finding

	for _, img := range rep.BrokenImages {
		f := newFinding("visual/broken-image", model.SeverityMajor,
			fmt.Sprintf("image failed to load: %s", img.Src))
		f.Selector = img.Selector
		f.Details = "the browser fetched the image but could not decode or find it"
		f.Suggestion = "fix the image URL or remove the element"
		out = append(out, f)
	}

	for _, tt := range rep.TinyText {
		f := newFinding("visual/illegible-font", model.SeverityMinor,
			fmt.Sprintf("text rendered at %.1fpx is hard to read", tt.Size))
		f.Selector = tt.Selector
		f.Snippet = snippet(tt.Text)
		f.Reference = "WCAG 1.4.4"
		out = append(out, f)
	}

	return out, nil
}
