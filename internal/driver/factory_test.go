package driver_test

import (
	"context"
	"testing"

	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/model"
)

type nopDriver struct{}

func (nopDriver) NewSession(ctx context.Context, vp model.Viewport) (driver.Session, error) {
	return nil, nil
}
func (nopDriver) Close() error { return nil }

func TestNew_UnknownBackend(t *testing.T) {
	cfg := driver.DefaultConfig()
	cfg.Backend = "definitely-not-registered"
	if _, err := driver.New(cfg, logging.NewStdoutLogger("test")); err == nil {
		t.Fatal("expected error for unregistered backend")
	}
}

func TestRegisterBackend_RoundTrip(t *testing.T) {
	driver.RegisterBackend("nop-test", func(cfg driver.Config, logger logging.Logger) (driver.Driver, error) {
		return nopDriver{}, nil
	})

	cfg := driver.DefaultConfig()
	cfg.Backend = "NOP-Test" // names are case-insensitive
	d, err := driver.New(cfg, logging.NewStdoutLogger("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := d.(nopDriver); !ok {
		t.Fatalf("unexpected driver type %T", d)
	}
}

func TestDefaultBackendRegistered(t *testing.T) {
	found := false
	for _, name := range driver.ListBackends() {
		if name == "chromedp" {
			found = true
		}
	}
	if !found {
		t.Error("chromedp backend should register itself")
	}
}
