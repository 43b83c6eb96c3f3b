package model

// Severity buckets a Finding by how badly it hurts the page.
type Severity string

const (
	SeverityCritical     Severity = "critical"
	SeverityMajor        Severity = "major"
	SeverityMinor        Severity = "minor"
	SeverityOptimization Severity = "optimization"
)

// SeverityRank orders severities for sorting and grouping, highest first.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityMajor:
		return 1
	case SeverityMinor:
		return 2
	case SeverityOptimization:
		return 3
	default:
		return 4
	}
}

// BoundingBox locates a finding's element on the rendered page, in CSS pixels.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Finding is one detected UI defect. Findings are immutable value records;
// the scan that produced them owns them until they are merged and scored.
type Finding struct {
	// ID is a stable identifier assigned when the finding is created.
	ID string `json:"id"`

	// Code is the fixed category/defect-type taxonomy entry,
	// e.g. "a11y/img-missing-alt" or "layout/horizontal-overflow".
	Code string `json:"code"`

	Severity Severity `json:"severity"`

	// Message is the human-readable description. The scan orchestrator
	// prefixes it with the viewport tag, e.g. "[mobile] ...".
	Message string `json:"message"`

	// Selector is a CSS-like selector for the offending element, when known.
	Selector string `json:"selector,omitempty"`

	// Snippet is a truncated slice of the offending source.
	Snippet string `json:"snippet,omitempty"`

	Box *BoundingBox `json:"bounding_box,omitempty"`

	// Details carries free-text context beyond the message.
	Details string `json:"details,omitempty"`

	// Expected describes the behavior a user should have seen.
	Expected string `json:"expected,omitempty"`

	// Location is a human description of where on the page this occurred.
	Location string `json:"location,omitempty"`

	// PageURL is the page the finding belongs to.
	PageURL string `json:"page_url,omitempty"`

	// Reference points at the standard or guideline being violated.
	Reference string `json:"reference,omitempty"`

	// Suggestion is a short remediation hint.
	Suggestion string `json:"suggestion,omitempty"`

	// Priority is the 0-100 fix-first urgency, assigned post-processing by
	// the scoring engine. Higher means fix sooner.
	Priority int `json:"priority"`
}
