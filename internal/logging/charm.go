package logging

import (
	"io"

	charm "github.com/charmbracelet/log"
)

// CharmLogger adapts charmbracelet/log to the Logger interface. Used by the
// CLI where human-readable output matters more than machine-parseable JSON.
type CharmLogger struct {
	l *charm.Logger
}

// NewCharmLogger creates a CharmLogger writing to w.
func NewCharmLogger(w io.Writer, component string) *CharmLogger {
	l := charm.NewWithOptions(w, charm.Options{
		ReportTimestamp: true,
		Prefix:          component,
	})
	return &CharmLogger{l: l}
}

// SetDebug enables debug-level output.
func (c *CharmLogger) SetDebug(on bool) {
	if on {
		c.l.SetLevel(charm.DebugLevel)
	} else {
		c.l.SetLevel(charm.InfoLevel)
	}
}

func kvs(fields []Field) []any {
	out := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}

func (c *CharmLogger) Debug(msg string, fields ...Field) { c.l.Debug(msg, kvs(fields)...) }
func (c *CharmLogger) Info(msg string, fields ...Field)  { c.l.Info(msg, kvs(fields)...) }
func (c *CharmLogger) Warn(msg string, fields ...Field)  { c.l.Warn(msg, kvs(fields)...) }
func (c *CharmLogger) Error(msg string, fields ...Field) { c.l.Error(msg, kvs(fields)...) }

func (c *CharmLogger) With(fields ...Field) Logger {
	return &CharmLogger{l: c.l.With(kvs(fields)...)}
}
