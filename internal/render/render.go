// Package render drives a shared headless browser for sources whose pages
// only produce markup via JavaScript. The browser is expensive, so one
// instance is shared by every scraper and started lazily on first use.
package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"cartelera/internal/logger"
)

const defaultPageTimeout = 45 * time.Second

// Browser renders pages through headless Chrome. The zero value is not
// usable; call New. Navigation is serialized through a single tab, which
// keeps memory bounded at the cost of render throughput.
type Browser struct {
	once sync.Once
	mu   sync.Mutex
	log  *logger.Logger

	pageTimeout time.Duration

	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	initErr     error
}

// New returns an unstarted browser handle. Chrome launches on the first
// HTML call. log may be nil to use the package default.
func New(log *logger.Logger) *Browser {
	if log == nil {
		log = logger.Default()
	}
	return &Browser{log: log, pageTimeout: defaultPageTimeout}
}

func (b *Browser) start() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Launch now so a broken Chrome install surfaces on the first render
	// instead of per-navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		b.initErr = fmt.Errorf("starting browser: %w", err)
		return
	}

	b.allocCancel = allocCancel
	b.tabCtx = tabCtx
	b.tabCancel = tabCancel
	b.log.Info("browser started", nil)
}

// HTML navigates to url, waits for the document body, and returns the
// rendered markup. Calls are serialized; ctx bounds the whole render in
// addition to the browser's own page timeout.
func (b *Browser) HTML(ctx context.Context, url string) (string, error) {
	b.once.Do(b.start)
	if b.initErr != nil {
		return "", b.initErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tabCtx == nil {
		return "", fmt.Errorf("browser is shut down")
	}

	renderCtx, cancel := context.WithTimeout(b.tabCtx, b.pageTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	var html string
	err := chromedp.Run(renderCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	logger.RecordTiming("render.page", time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", fmt.Errorf("rendering %s: %w", url, err)
	}
	return html, nil
}

// Shutdown closes the browser process. Safe to call when the browser never
// started, and more than once. The handle cannot be reused afterwards.
func (b *Browser) Shutdown() {
	b.once.Do(func() { b.initErr = fmt.Errorf("browser is shut down") })

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tabCancel != nil {
		b.tabCancel()
		b.tabCancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	if b.tabCtx != nil {
		b.tabCtx = nil
		b.log.Info("browser stopped", nil)
	}
}
