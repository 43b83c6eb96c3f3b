// Package driver abstracts the browser automation layer. The crawl and scan
// engines depend only on the Driver/Session capability interfaces; concrete
// backends register themselves by name.
package driver

import (
	"context"
	"time"

	"github.com/sableview/uivet/internal/model"
)

// Driver opens isolated browsing sessions. One driver owns one browser
// process; sessions are cheap and independent.
type Driver interface {
	// NewSession opens an isolated rendering context (its own cookies and
	// cache) emulating the given viewport.
	NewSession(ctx context.Context, vp model.Viewport) (Session, error)

	Close() error
}

// Session is one isolated rendering context pointed at one page at a time.
// Sessions are not safe for concurrent use; each scan owns its sessions
// exclusively and must Close them on every exit path.
type Session interface {
	// Navigate loads the page, honoring the driver's navigation timeout.
	Navigate(ctx context.Context, url string) error

	// WaitSettled blocks until the network has been idle briefly or the
	// settle timeout elapses. Timeout is not an error: the scan proceeds
	// with whatever state the page reached.
	WaitSettled(ctx context.Context)

	// HTML returns the current serialized DOM.
	HTML(ctx context.Context) (string, error)

	// Evaluate runs a read-only JS expression in the page and unmarshals
	// the result into out.
	Evaluate(ctx context.Context, expr string, out any) error

	// Screenshot captures a compressed full-page image at the given JPEG
	// quality.
	Screenshot(ctx context.Context, quality int) ([]byte, error)

	// ConsoleErrors returns page-level script errors observed since
	// navigation.
	ConsoleErrors() []string

	Close() error
}

// Config holds backend-independent driver settings.
type Config struct {
	// Backend selects the registered implementation; "chromedp" default.
	Backend string

	// Headless controls whether the browser renders offscreen.
	Headless bool

	// NavigationTimeout is the hard per-navigation limit.
	NavigationTimeout time.Duration

	// SettleIdle is how long the network must stay quiet to count as
	// settled.
	SettleIdle time.Duration

	// SettleTimeout caps the total settle wait.
	SettleTimeout time.Duration
}

// DefaultConfig returns the settings used by the CLI and server.
func DefaultConfig() Config {
	return Config{
		Backend:           "chromedp",
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
		SettleIdle:        2 * time.Second,
		SettleTimeout:     10 * time.Second,
	}
}
