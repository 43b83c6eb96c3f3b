package checks

import (
	"context"
	"fmt"

	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/model"
)

const interactionJS = `
(() => {
	const sel = (el) => {
		if (el.id) return el.tagName.toLowerCase() + '#' + el.id;
		if (el.classList.length) return el.tagName.toLowerCase() + '.' + el.classList[0];
		return el.tagName.toLowerCase();
	};
	const dead = [];
	for (const a of document.querySelectorAll('a[href]')) {
		const href = a.getAttribute('href').trim();
		if ((href === '#' || href.startsWith('javascript:')) && dead.length < 20) {
			dead.push({selector: sel(a), text: (a.innerText || '').slice(0, 60), href: href});
		}
	}
	const invisible = [];
	for (const el of document.querySelectorAll('a[href], button')) {
		const r = el.getBoundingClientRect();
		const style = getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') continue;
		if ((r.width === 0 || r.height === 0) && invisible.length < 10) {
			invisible.push({selector: sel(el), text: (el.innerText || '').slice(0, 60)});
		}
	}
	const blank = [];
	for (const a of document.querySelectorAll('a[target="_blank"]')) {
		const rel = (a.getAttribute('rel') || '').toLowerCase();
		if (!rel.includes('noopener') && !rel.includes('noreferrer') && blank.length < 10) {
			blank.push({selector: sel(a), href: a.getAttribute('href') || ''});
		}
	}
	return {dead: dead, invisible: invisible, blank: blank};
})()`

type interactionReport struct {
	Dead []struct {
		Selector string `json:"selector"`
		Text     string `json:"text"`
		Href     string `json:"href"`
	} `json:"dead"`
	Invisible []struct {
		Selector string `json:"selector"`
		Text     string `json:"text"`
	} `json:"invisible"`
	Blank []struct {
		Selector string `json:"selector"`
		Href     string `json:"href"`
	} `json:"blank"`
}

// InteractionCheck flags controls a user cannot meaningfully operate:
// links that go nowhere, zero-size clickables and unsafe _blank targets.
type InteractionCheck struct{}

func (c *InteractionCheck) Name() string { return "interaction" }
func (c *InteractionCheck) Scope() Scope { return ScopeViewport }

func (c *InteractionCheck) Run(ctx context.Context, page driver.Session, viewport string) ([]model.Finding, error) {
	var rep interactionReport
	if err := page.Evaluate(ctx, interactionJS, &rep); err != nil {
		return nil, err
	}

	var out []model.Finding

	for _, d := range rep.Dead {
		f := newFinding("interaction/dead-link", model.SeverityMajor,
			fmt.Sprintf("link %q points at %q and navigates nowhere", d.Text, d.Href))
		f.Selector = d.Selector
		f.Expected = "activating the link navigates or triggers visible behavior"
		f.Suggestion = "use a button for script-only actions or give the link a real target"
		out = append(out, f)
	}

	for _, iv := range rep.Invisible {
		f := newFinding("interaction/unclickable", model.SeverityMajor,
			fmt.Sprintf("control %q is rendered at zero size and cannot be clicked", iv.Text))
		f.Selector = iv.Selector
		out = append(out, f)
	}

	for _, b := range rep.Blank {
		f := newFinding("interaction/unsafe-blank", model.SeverityMinor,
			fmt.Sprintf("target=_blank link to %s lacks rel=noopener", b.Href))
		f.Selector = b.Selector
		f.Reference = "https://web.dev/external-anchors-use-rel-noopener/"
		f.Suggestion = `add rel="noopener noreferrer"`
		out = append(out, f)
	}

	return out, nil
}
