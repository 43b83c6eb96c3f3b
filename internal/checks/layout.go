package checks

import (
	"context"
	"fmt"

	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/model"
)

// layoutJS measures overflow geometry inside the live page. It returns only
// plain data so the result survives JSON serialization.
const layoutJS = `
(() => {
	const vw = window.innerWidth;
	const out = {
		scrollWidth: document.scrollingElement ? document.scrollingElement.scrollWidth : vw,
		viewportWidth: vw,
		wide: [],
	};
	const sel = (el) => {
		if (el.id) return el.tagName.toLowerCase() + '#' + el.id;
		if (el.classList.length) return el.tagName.toLowerCase() + '.' + el.classList[0];
		return el.tagName.toLowerCase();
	};
	for (const el of document.body ? document.body.querySelectorAll('*') : []) {
		const r = el.getBoundingClientRect();
		if (r.width > vw + 1 && out.wide.length < 10) {
			out.wide.push({selector: sel(el), x: r.x, y: r.y, width: r.width, height: r.height});
		}
	}
	return out;
})()`

type layoutReport struct {
	ScrollWidth   float64 `json:"scrollWidth"`
	ViewportWidth float64 `json:"viewportWidth"`
	Wide          []struct {
		Selector string  `json:"selector"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		Width    float64 `json:"width"`
		Height   float64 `json:"height"`
	} `json:"wide"`
}

// LayoutCheck flags horizontal overflow and elements rendered wider than
// the viewport.
type LayoutCheck struct{}

func (c *LayoutCheck) Name() string { return "layout" }
func (c *LayoutCheck) Scope() Scope { return ScopeViewport }

func (c *LayoutCheck) Run(ctx context.Context, page driver.Session, viewport string) ([]model.Finding, error) {
	var rep layoutReport
	if err := page.Evaluate(ctx, layoutJS, &rep); err != nil {
		return nil, err
	}

	var out []model.Finding

	if rep.ScrollWidth > rep.ViewportWidth+1 {
		f := newFinding("layout/horizontal-overflow", model.SeverityMajor,
			fmt.Sprintf("page scrolls horizontally (%.0fpx content in a %.0fpx viewport)", rep.ScrollWidth, rep.ViewportWidth))
		f.Expected = "page content fits the viewport width"
		f.Suggestion = "constrain the widest element or add overflow-x handling"
		out = append(out, f)
	}

	for _, w := range rep.Wide {
		f := newFinding("layout/element-wider-than-viewport", model.SeverityMinor,
			fmt.Sprintf("element %s is %.0fpx wide in a %.0fpx viewport", w.Selector, w.Width, rep.ViewportWidth))
		f.Selector = w.Selector
		f.Box = &model.BoundingBox{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}
		out = append(out, f)
	}

	return out, nil
}
