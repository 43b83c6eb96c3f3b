package driver

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sableview/uivet/internal/logging"
)

// BackendConstructor builds a Driver from config and logger.
type BackendConstructor func(cfg Config, logger logging.Logger) (Driver, error)

var (
	mu       sync.RWMutex
	registry = map[string]BackendConstructor{}
)

// RegisterBackend registers a named backend constructor. Name is lower-cased
// internally. Registering the same name again overwrites the previous
// constructor.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// New constructs the configured Driver backend. It returns an error if the
// named backend has not been registered.
func New(cfg Config, logger logging.Logger) (Driver, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "chromedp"
	}

	mu.RLock()
	ctor, ok := registry[backend]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("driver backend %q not registered: available backends=%v", backend, ListBackends())
	}

	d, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct driver backend %q: %w", backend, err)
	}
	if d == nil {
		return nil, errors.New("driver constructor returned nil")
	}
	return d, nil
}

// ListBackends returns the list of registered backend names.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}
