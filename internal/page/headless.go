package page

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Headless runs the telephony page in a chromedp-driven Chrome instance.
// Used for development and integration testing without the native shell.
// Scripts evaluate synchronously over CDP, so no callback plumbing is
// involved.
type Headless struct {
	mu        sync.Mutex
	allocCtx  context.Context
	browser   context.Context
	cancelAll []context.CancelFunc
	closed    bool
}

// HeadlessOptions configures the Chrome instance.
type HeadlessOptions struct {
	Visible     bool   // run with a visible window (debugging)
	UserDataDir string // persistent profile so the page session survives restarts
}

// NewHeadless launches Chrome and returns an Executor over it.
func NewHeadless(opts HeadlessOptions) (*Headless, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !opts.Visible),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser process now so failures surface at construction.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	return &Headless{
		allocCtx:  allocCtx,
		browser:   browserCtx,
		cancelAll: []context.CancelFunc{cancelBrowser, cancelAlloc},
	}, nil
}

func (h *Headless) ctx() (context.Context, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrPageUnavailable
	}
	return h.browser, nil
}

// Execute evaluates actionCode and returns the __result value.
func (h *Headless) Execute(ctx context.Context, actionCode string) (json.RawMessage, error) {
	bctx, err := h.ctx()
	if err != nil {
		return nil, err
	}

	script := fmt.Sprintf(`(function(){var __result=null;%s
;return __result;})()`, actionCode)

	var raw json.RawMessage
	runCtx, cancel := mergeDeadline(ctx, bctx)
	defer cancel()
	// awaitPromise lets action code return a Promise for flows that need
	// an in-page wait without blocking the CDP connection.
	eval := chromedp.Evaluate(script, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	})
	if err := chromedp.Run(runCtx, eval); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	if raw == nil {
		raw = json.RawMessage("null")
	}
	return raw, nil
}

// Navigate loads a URL and waits for the document body to exist. Readiness
// of the application inside the page is still the retry engine's problem.
func (h *Headless) Navigate(ctx context.Context, url string) error {
	bctx, err := h.ctx()
	if err != nil {
		return err
	}
	runCtx, cancel := mergeDeadline(ctx, bctx)
	defer cancel()
	return chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Reload reloads the current page.
func (h *Headless) Reload(ctx context.Context) error {
	bctx, err := h.ctx()
	if err != nil {
		return err
	}
	runCtx, cancel := mergeDeadline(ctx, bctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Reload())
}

// Close tears down the browser. Subsequent calls return ErrPageUnavailable.
func (h *Headless) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, cancel := range h.cancelAll {
		cancel()
	}
}

// mergeDeadline runs CDP work on the browser context while honoring the
// caller's deadline/cancellation.
func mergeDeadline(caller, browser context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := caller.Deadline(); ok {
		return context.WithDeadline(browser, deadline)
	}
	ctx, cancel := context.WithCancel(browser)
	stop := context.AfterFunc(caller, cancel)
	return ctx, func() { stop(); cancel() }
}
