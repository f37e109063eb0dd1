package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the number of product pages served by one Chrome
// process before it is replaced.
const DefaultMaxPages = 100

// BrowserManager hands out browser tabs for product pages and replaces the
// Chrome process after MaxPages tabs, since shop pages are heavy and Chrome
// never returns to its baseline memory.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher

	maxPages  int64
	userAgent string
	served    atomic.Int64
	recycles  atomic.Int64
	closed    atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages one browser serves. Values below 1 keep
// the default.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		if n > 0 {
			bm.maxPages = n
		}
	}
}

// WithBrowserUserAgent sends ua instead of Chrome's headless User-Agent,
// which many shops answer with a bot wall.
func WithBrowserUserAgent(ua string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.userAgent = ua
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}

	browser, lnchr, err := launch()
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = browser, lnchr
	return bm, nil
}

// OpenPage opens a blank tab, recycling the browser first when it has
// served MaxPages tabs. The returned release func closes the tab and counts
// it as served.
func (bm *BrowserManager) OpenPage() (*rod.Page, func(), error) {
	browser, err := bm.current()
	if err != nil {
		return nil, nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, nil, fmt.Errorf("opening tab: %w", err)
	}
	release := func() {
		_ = page.Close()
		bm.served.Add(1)
	}

	if bm.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: bm.userAgent}); err != nil {
			release()
			return nil, nil, fmt.Errorf("setting user agent: %w", err)
		}
	}
	return page, release, nil
}

// Recycles reports how many times the browser has been replaced.
func (bm *BrowserManager) Recycles() int {
	return int(bm.recycles.Load())
}

// LauncherPID returns the process ID of the current browser launcher,
// or 0 once closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// current returns the live browser, replacing it when it is used up. A
// failed relaunch keeps the old browser serving.
func (bm *BrowserManager) current() (*rod.Browser, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.browser == nil {
		return nil, fmt.Errorf("browser is closed")
	}
	if bm.served.Load() < bm.maxPages {
		return bm.browser, nil
	}

	browser, lnchr, err := launch()
	if err != nil {
		return bm.browser, nil
	}

	// Tabs still open on the old browser fail with network errors and are
	// retried by the batch as transient.
	_ = bm.browser.Close()
	bm.launcher.Kill()
	bm.browser, bm.launcher = browser, lnchr
	bm.served.Store(0)
	bm.recycles.Add(1)
	return browser, nil
}

func launch() (*rod.Browser, *launcher.Launcher, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, lnchr, nil
}
