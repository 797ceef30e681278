package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserRenderer drives headless Chrome for registry pages that build their
// table in JavaScript. Chrome starts on first use; every page gets its own tab.
type BrowserRenderer struct {
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelTabs  context.CancelFunc

	startOnce sync.Once
	startErr  error
}

func NewBrowserRenderer(ctx context.Context, headless bool) *BrowserRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(defaultUserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelTabs := chromedp.NewContext(allocCtx)

	return &BrowserRenderer{
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
		cancelTabs:  cancelTabs,
	}
}

func (r *BrowserRenderer) start() error {
	r.startOnce.Do(func() {
		r.startErr = chromedp.Run(r.browserCtx)
	})
	return r.startErr
}

func (r *BrowserRenderer) Navigate(ctx context.Context, pageURL string, wait WaitCondition, timeout time.Duration) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.start(); err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	if timeout > 0 {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithTimeout(tabCtx, timeout)
		defer cancel()
	}

	// close the tab when the caller gives up
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	actions := []chromedp.Action{chromedp.Navigate(pageURL)}
	if wait != "" {
		actions = append(actions, chromedp.WaitReady(string(wait), chromedp.ByQuery))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrNavigationTimeout, pageURL)
		}
		return nil, fmt.Errorf("render %s: %w", pageURL, err)
	}

	return NewPage(pageURL, strings.NewReader(html))
}

func (r *BrowserRenderer) Close() {
	r.cancelTabs()
	r.cancelAlloc()
}
