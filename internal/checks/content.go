package checks

import (
	"fmt"

	"github.com/sableview/uivet/internal/model"
)

// NewConsoleFinding wraps an uncaught page script error as a synthetic
// finding. The scan orchestrator caps how many of these it emits.
func NewConsoleFinding(msg string) model.Finding {
	f := newFinding("content/console-error", model.SeverityMajor,
		fmt.Sprintf("uncaught script error: %s", snippet(msg)))
	f.Details = msg
	f.Suggestion = "open the page with devtools attached and fix the reported script error"
	return f
}

// NewViewportMismatchFinding reports that a page's visible text diverges
// heavily between two viewports.
func NewViewportMismatchFinding(refLabel, otherLabel string) model.Finding {
	f := newFinding("content/viewport-mismatch", model.SeverityMinor,
		fmt.Sprintf("visible content differs heavily between %s and %s viewports", refLabel, otherLabel))
	f.Location = "viewport " + otherLabel
	f.Expected = "equivalent content at every configured viewport"
	f.Suggestion = "inspect responsive breakpoints for hidden or dropped sections"
	return f
}
