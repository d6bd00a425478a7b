package scrape

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"cartelera/internal/event"
	"cartelera/internal/logger"
	"cartelera/internal/transform"
)

// Options overrides parts of a scraper's config for one run.
type Options struct {
	MaxPages int    // 0 keeps the configured value
	URL      string // non-empty replaces the listing URL for page 1
}

// Scraper extracts RawEvents from one site according to its compiled config.
type Scraper struct {
	cfg          Config
	fields       []compiledField
	detailFields []compiledField
	fetcher      *Fetcher
	limiter      *rate.Limiter
	log          *logger.Logger
}

// New compiles a config into a runnable scraper. Selector and transform
// errors are reported here, never mid-run. renderer may be nil unless the
// config sets render. log may be nil to use the package default.
func New(cfg Config, renderer Renderer, log *logger.Logger) (*Scraper, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Render && renderer == nil {
		return nil, fmt.Errorf("scraper %q: render enabled but no renderer supplied", cfg.Name)
	}

	fields, err := compileFields(cfg.Name, cfg.Fields)
	if err != nil {
		return nil, err
	}

	var detailFields []compiledField
	if cfg.Detail != nil {
		detailFields, err = compileFields(cfg.Name, cfg.Detail.Fields)
		if err != nil {
			return nil, err
		}
	}

	rps := cfg.RateLimit.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	if log == nil {
		log = logger.New(logger.LevelInfo, os.Stdout)
	}

	return &Scraper{
		cfg:          cfg,
		fields:       fields,
		detailFields: detailFields,
		fetcher:      NewFetcher(cfg, renderer),
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		log:          log,
	}, nil
}

// Name identifies the source inside the orchestrator registry.
func (s *Scraper) Name() string {
	return s.cfg.Name
}

// Fetch runs the scraper with its configured settings.
func (s *Scraper) Fetch(ctx context.Context) ([]event.RawEvent, error) {
	return s.FetchWith(ctx, Options{})
}

// FetchWith runs the scraper, applying per-run overrides. Page failures
// abort or skip per skipFailedPages; item failures per skipFailedEvents.
func (s *Scraper) FetchWith(ctx context.Context, opts Options) ([]event.RawEvent, error) {
	maxPages := s.cfg.Pagination.MaxPages
	if opts.MaxPages > 0 {
		maxPages = opts.MaxPages
	}
	if maxPages <= 0 || s.cfg.Pagination.Mode == "" || s.cfg.Pagination.Mode == PaginationNone {
		maxPages = 1
	}

	events := make([]event.RawEvent, 0)
	for page := 1; page <= maxPages; page++ {
		pageURL := s.pageURL(page, opts.URL)
		if pageURL == "" {
			break
		}

		start := time.Now()
		doc, err := s.fetcher.Document(ctx, pageURL)
		logger.RecordTiming("scrape.page_fetch", time.Since(start))
		if err != nil {
			if s.cfg.SkipFailedPages {
				s.log.Warn("skipping failed page", logger.Fields{
					"source": s.cfg.Name, "page": page, "url": pageURL, "error": err.Error(),
				})
				continue
			}
			return nil, err
		}

		items := s.findItems(doc)
		if items.Length() == 0 && page > 1 {
			// Ran off the end of the listing.
			break
		}

		pageEvents, err := s.extractPage(ctx, items)
		if err != nil {
			return nil, err
		}
		events = append(events, pageEvents...)

		if page < maxPages && s.cfg.Pagination.Delay > 0 {
			if err := sleepCtx(ctx, time.Duration(s.cfg.Pagination.Delay)); err != nil {
				return events, err
			}
		}
	}

	s.log.Info("scrape finished", logger.Fields{
		"source": s.cfg.Name, "events": len(events),
	})
	return events, nil
}

func (s *Scraper) pageURL(page int, override string) string {
	first := s.cfg.Listing.URL
	if override != "" {
		first = override
	}
	if page == 1 {
		return first
	}

	switch s.cfg.Pagination.Mode {
	case PaginationURLPattern:
		return strings.ReplaceAll(s.cfg.Pagination.Pattern, "{page}", strconv.Itoa(page))
	case PaginationInfinite, PaginationQueryParam:
		param := s.cfg.Pagination.Param
		if param == "" {
			param = "page"
		}
		sep := "?"
		if strings.Contains(first, "?") {
			sep = "&"
		}
		return first + sep + param + "=" + strconv.Itoa(page)
	}
	return ""
}

func (s *Scraper) findItems(doc *goquery.Document) *goquery.Selection {
	scope := doc.Selection
	if s.cfg.Listing.Container != "" {
		scope = doc.Find(s.cfg.Listing.Container)
	}
	return scope.Find(s.cfg.Listing.Item)
}

func (s *Scraper) extractPage(ctx context.Context, items *goquery.Selection) ([]event.RawEvent, error) {
	events := make([]event.RawEvent, 0, items.Length())

	var itemErr error
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		raw, ok, err := s.extractItem(ctx, item)
		if err != nil {
			if s.cfg.SkipFailedEvents {
				s.log.Warn("skipping failed item", logger.Fields{
					"source": s.cfg.Name, "item": i, "error": err.Error(),
				})
				return true
			}
			itemErr = err
			return false
		}
		if ok {
			events = append(events, raw)
		}
		return true
	})
	if itemErr != nil {
		return nil, itemErr
	}
	return events, nil
}

// extractItem resolves every configured field for one listing item, applies
// transforms, optionally enriches from the detail page, and gates emission
// on title+date+venue. ok=false drops the item without error.
func (s *Scraper) extractItem(ctx context.Context, item *goquery.Selection) (event.RawEvent, bool, error) {
	values := make(map[string]string, len(s.fields))
	for _, f := range s.fields {
		values[f.name] = s.resolveField(item, f)
	}

	if s.cfg.Detail != nil {
		if err := s.enrichFromDetail(ctx, values); err != nil {
			return event.RawEvent{}, false, err
		}
	}

	// A title that embeds the date is the last resort.
	if values["date"] == "" && values["title"] != "" {
		if iso, ok := dateKind(s.detailFields, s.fields).Apply(values["title"], ""); ok {
			values["date"] = iso
		}
	}

	if values["title"] == "" || values["date"] == "" || values["venue"] == "" {
		s.log.Debug("dropping incomplete item", logger.Fields{
			"source": s.cfg.Name,
			"title":  values["title"],
			"date":   values["date"],
			"venue":  values["venue"],
		})
		logger.IncrCounter("scrape.items_dropped")
		return event.RawEvent{}, false, nil
	}

	raw := rawFromValues(values)
	raw.SourceName = s.cfg.Name
	raw.ExternalID = event.StableExternalID(raw.ExternalURL, s.cfg.BaseURL, raw.Title, raw.Date, raw.Venue)
	return raw, true, nil
}

// resolveField extracts one field's value: selector text, marked attribute,
// or the configured default. Transform failures keep the raw value.
func (s *Scraper) resolveField(item *goquery.Selection, f compiledField) string {
	var raw string
	switch {
	case f.selfAttr:
		raw, _ = item.Attr(f.attr)
	case f.selector != "" && f.attr != "":
		raw, _ = item.Find(f.selector).First().Attr(f.attr)
	case f.selector != "":
		raw = item.Find(f.selector).First().Text()
	default:
		raw = f.def
	}

	raw = normalizeWhitespace(raw)
	if raw == "" {
		return normalizeWhitespace(f.def)
	}
	if f.transform == transform.KindNone {
		return raw
	}

	transformed, ok := f.transform.Apply(raw, s.cfg.BaseURL)
	if !ok {
		s.log.Debug("transform failed, keeping raw value", logger.Fields{
			"source": s.cfg.Name, "field": f.name, "transform": f.transform.String(), "value": raw,
		})
		return raw
	}
	return transformed
}

func rawFromValues(values map[string]string) event.RawEvent {
	raw := event.RawEvent{
		Title:       values["title"],
		Description: values["description"],
		Date:        values["date"],
		EndDate:     values["endDate"],
		Venue:       values["venue"],
		City:        values["city"],
		Country:     values["country"],
		Category:    values["category"],
		Genre:       values["genre"],
		Price:       values["price"],
		PriceMax:    values["priceMax"],
		ImageURL:    values["image"],
		ExternalURL: values["link"],
	}
	return raw
}

var (
	lineSpace  = regexp.MustCompile(`[ \t]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// normalizeWhitespace trims, collapses runs of spaces, and collapses
// multiple blank lines into one.
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = lineSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
