package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
)

const (
	defaultUserAgent = "cartelera/1.0 (+https://github.com/cartelera)"
	defaultTimeout   = 30 * time.Second

	defaultMaxAttempts  = 3
	defaultInitialDelay = 500 * time.Millisecond
	defaultMultiplier   = 2.0
)

// Renderer produces fully-rendered HTML for JavaScript-heavy pages. The
// render package provides the shared browser-backed implementation.
type Renderer interface {
	HTML(ctx context.Context, url string) (string, error)
}

// Fetcher retrieves and parses pages for one source, retrying transport
// failures with exponential backoff. Safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	retry     RetryConfig
	renderer  Renderer
	render    bool
}

// NewFetcher builds a fetcher from a source config. renderer may be nil when
// the source does not render.
func NewFetcher(cfg Config, renderer Renderer) *Fetcher {
	timeout := time.Duration(cfg.RateLimit.Timeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialDelay <= 0 {
		retry.InitialDelay = Duration(defaultInitialDelay)
	}
	if retry.Multiplier <= 0 {
		retry.Multiplier = defaultMultiplier
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		headers:   cfg.Headers,
		retry:     retry,
		renderer:  renderer,
		render:    cfg.Render && renderer != nil,
	}
}

// Document fetches url and parses it, retrying transport errors. Non-2xx
// responses other than 429 are not retried.
func (f *Fetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	var doc *goquery.Document

	operation := func() error {
		var err error
		doc, err = f.fetchOnce(ctx, url)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Duration(f.retry.InitialDelay)
	bo.Multiplier = f.retry.Multiplier

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(f.retry.MaxAttempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return doc, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*goquery.Document, error) {
	if f.render {
		html, err := f.renderer.HTML(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("rendering page: %w", err)
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("parsing rendered HTML: %w", err))
		}
		return doc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parsing HTML: %w", err))
	}
	return doc, nil
}
