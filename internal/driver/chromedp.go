package driver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/model"
)

func init() {
	RegisterBackend("chromedp", func(cfg Config, logger logging.Logger) (Driver, error) {
		return NewChromeDriver(cfg, logger)
	})
}

// ChromeDriver drives headless Chrome through chromedp. Each session gets
// its own browser instance off a shared exec allocator, so no cookies,
// cache or in-page state is shared between sessions.
type ChromeDriver struct {
	cfg         Config
	logger      logging.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeDriver prepares the exec allocator. The browser itself launches
// lazily with the first session; a launch failure surfaces there.
func NewChromeDriver(cfg Config, logger logging.Logger) (*ChromeDriver, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromeDriver{
		cfg:         cfg,
		logger:      logger.With(logging.Field{Key: "component", Value: "chromedp-driver"}),
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}, nil
}

func (d *ChromeDriver) NewSession(ctx context.Context, vp model.Viewport) (Session, error) {
	sessCtx, sessCancel := chromedp.NewContext(d.allocCtx)

	s := &chromeSession{
		cfg:    d.cfg,
		logger: d.logger,
		ctx:    sessCtx,
		cancel: sessCancel,
	}
	s.listen()

	emulate := []chromedp.EmulateViewportOption{}
	if vp.IsMobile {
		emulate = append(emulate, chromedp.EmulateMobile)
	}
	if err := chromedp.Run(sessCtx, chromedp.EmulateViewport(int64(vp.Width), int64(vp.Height), emulate...)); err != nil {
		sessCancel()
		return nil, fmt.Errorf("emulate viewport %s: %w", vp.Label, err)
	}

	return s, nil
}

func (d *ChromeDriver) Close() error {
	d.allocCancel()
	return nil
}

type chromeSession struct {
	cfg    Config
	logger logging.Logger
	ctx    context.Context
	cancel context.CancelFunc

	activeReqs   int32
	lastActivity int64 // unix nanos of the last network event

	errMu       sync.Mutex
	consoleErrs []string
}

// listen wires up network-activity counters and console/exception capture.
// Registered once per session, before any navigation.
func (s *chromeSession) listen() {
	atomic.StoreInt64(&s.lastActivity, time.Now().UnixNano())

	chromedp.ListenTarget(s.ctx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&s.activeReqs, 1)
			atomic.StoreInt64(&s.lastActivity, time.Now().UnixNano())
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			atomic.AddInt32(&s.activeReqs, -1)
			atomic.StoreInt64(&s.lastActivity, time.Now().UnixNano())
		case *runtime.EventExceptionThrown:
			msg := e.ExceptionDetails.Text
			if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
				msg = e.ExceptionDetails.Exception.Description
			}
			s.addConsoleError(msg)
		case *runtime.EventConsoleAPICalled:
			if e.Type != runtime.APITypeError {
				return
			}
			parts := make([]string, 0, len(e.Args))
			for _, arg := range e.Args {
				if len(arg.Value) > 0 {
					parts = append(parts, string(arg.Value))
				} else if arg.Description != "" {
					parts = append(parts, arg.Description)
				}
			}
			s.addConsoleError(strings.Join(parts, " "))
		}
	})
}

func (s *chromeSession) addConsoleError(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	s.errMu.Lock()
	s.consoleErrs = append(s.consoleErrs, msg)
	s.errMu.Unlock()
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(s.ctx, s.cfg.NavigationTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// WaitSettled waits for the network to stay quiet for SettleIdle, giving up
// after SettleTimeout. Giving up is not an error.
func (s *chromeSession) WaitSettled(ctx context.Context) {
	deadline := time.Now().Add(s.cfg.SettleTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if time.Now().After(deadline) {
				s.logger.Debug("network settle wait timed out, continuing with partial page state")
				return
			}
			quiet := time.Since(time.Unix(0, atomic.LoadInt64(&s.lastActivity)))
			if atomic.LoadInt32(&s.activeReqs) <= 0 && quiet >= s.cfg.SettleIdle {
				return
			}
		}
	}
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var out string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &out, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("outer html: %w", err)
	}
	return out, nil
}

func (s *chromeSession) Evaluate(ctx context.Context, expr string, out any) error {
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(expr, out)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

func (s *chromeSession) Screenshot(ctx context.Context, quality int) ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.FullScreenshot(&buf, quality)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

func (s *chromeSession) ConsoleErrors() []string {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	out := make([]string, len(s.consoleErrs))
	copy(out, s.consoleErrs)
	return out
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}
