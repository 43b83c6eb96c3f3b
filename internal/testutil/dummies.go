// Package testutil holds shared fakes for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/model"
)

// DummyLogger is a no-op logger that records nothing.
type DummyLogger struct{}

func (d *DummyLogger) Debug(msg string, fields ...logging.Field) {}
func (d *DummyLogger) Info(msg string, fields ...logging.Field)  {}
func (d *DummyLogger) Warn(msg string, fields ...logging.Field)  {}
func (d *DummyLogger) Error(msg string, fields ...logging.Field) {}
func (d *DummyLogger) With(fields ...logging.Field) logging.Logger {
	return d
}

// CapturingLogger records warn/error messages for assertions.
type CapturingLogger struct {
	mu       sync.Mutex
	Warnings []string
	Errors   []string
}

func (c *CapturingLogger) Debug(msg string, fields ...logging.Field) {}
func (c *CapturingLogger) Info(msg string, fields ...logging.Field)  {}
func (c *CapturingLogger) Warn(msg string, fields ...logging.Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Warnings = append(c.Warnings, msg)
}
func (c *CapturingLogger) Error(msg string, fields ...logging.Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors = append(c.Errors, msg)
}
func (c *CapturingLogger) With(fields ...logging.Field) logging.Logger { return c }

// FakeSession is a scripted driver.Session. Pages maps URL -> HTML; Evals
// maps a substring of the evaluated expression -> a JSON document that is
// unmarshaled into the caller's out value.
type FakeSession struct {
	Viewport model.Viewport

	Pages map[string]string
	Evals map[string]string

	NavigateErr   error
	ScreenshotErr error
	ScreenshotPNG []byte
	ConsoleErrs   []string

	CurrentURL string
	Closed     bool
}

func (f *FakeSession) Navigate(ctx context.Context, url string) error {
	if f.NavigateErr != nil {
		return f.NavigateErr
	}
	if _, ok := f.Pages[url]; !ok {
		return fmt.Errorf("navigate %s: no such page", url)
	}
	f.CurrentURL = url
	return nil
}

func (f *FakeSession) WaitSettled(ctx context.Context) {}

func (f *FakeSession) HTML(ctx context.Context) (string, error) {
	html, ok := f.Pages[f.CurrentURL]
	if !ok {
		return "", fmt.Errorf("no page loaded")
	}
	return html, nil
}

func (f *FakeSession) Evaluate(ctx context.Context, expr string, out any) error {
	for needle, doc := range f.Evals {
		if strings.Contains(expr, needle) {
			return jsonInto(doc, out)
		}
	}
	return jsonInto("null", out)
}

func (f *FakeSession) Screenshot(ctx context.Context, quality int) ([]byte, error) {
	if f.ScreenshotErr != nil {
		return nil, f.ScreenshotErr
	}
	return f.ScreenshotPNG, nil
}

func (f *FakeSession) ConsoleErrors() []string { return f.ConsoleErrs }

func (f *FakeSession) Close() error {
	f.Closed = true
	return nil
}

// FakeDriver hands out FakeSessions built by the Make callback and tracks
// every session it opened so tests can assert cleanup.
type FakeDriver struct {
	Make func(vp model.Viewport) *FakeSession

	mu       sync.Mutex
	Sessions []*FakeSession
	Closed   bool
}

func (f *FakeDriver) NewSession(ctx context.Context, vp model.Viewport) (driver.Session, error) {
	s := f.Make(vp)
	s.Viewport = vp
	f.mu.Lock()
	f.Sessions = append(f.Sessions, s)
	f.mu.Unlock()
	return s, nil
}

func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}
