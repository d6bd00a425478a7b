package scrape

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cartelera/internal/logger"
	"cartelera/internal/transform"
)

// enrichFromDetail fetches the item's own page and merges extracted fields
// over the listing values, detail taking precedence. Structured JSON-LD
// event data is preferred; selectors are the fallback. A politeness delay
// follows every detail fetch.
func (s *Scraper) enrichFromDetail(ctx context.Context, values map[string]string) error {
	link, ok := transform.ResolveURL(values["link"], s.cfg.BaseURL)
	if !ok {
		return nil
	}
	values["link"] = link

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	doc, err := s.fetcher.Document(ctx, link)
	if err != nil {
		return err
	}

	detail := map[string]string{}
	structured := false
	if s.cfg.Detail.StructuredData {
		detail, structured = extractStructuredEvent(doc)
	}
	if !structured {
		detail = s.extractDetailSelectors(doc, values["title"])
	}

	for name, value := range detail {
		if value != "" {
			values[name] = value
		}
	}

	if s.cfg.Detail.Delay > 0 {
		if err := sleepCtx(ctx, time.Duration(s.cfg.Detail.Delay)); err != nil {
			return err
		}
	}
	return nil
}

// extractDetailSelectors resolves the detail field selectors against the
// detail document. The date field is special-cased: every matching element
// is scanned and the first value that survives the date transform wins,
// falling back to the date transform over the title text.
func (s *Scraper) extractDetailSelectors(doc *goquery.Document, title string) map[string]string {
	values := make(map[string]string, len(s.detailFields))
	for _, f := range s.detailFields {
		if f.name == "date" {
			values["date"] = s.resolveDetailDate(doc, f, title)
			continue
		}
		values[f.name] = s.resolveField(doc.Selection, f)
	}
	return values
}

func (s *Scraper) resolveDetailDate(doc *goquery.Document, f compiledField, title string) string {
	kind := f.transform
	if kind == transform.KindNone {
		kind = transform.KindDateTime
	}

	found := ""
	if f.selector != "" {
		doc.Find(f.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			candidate := normalizeWhitespace(selectionValue(sel, f))
			if candidate == "" {
				return true
			}
			if iso, ok := kind.Apply(candidate, s.cfg.BaseURL); ok {
				found = iso
				return false
			}
			return true
		})
	}
	if found != "" {
		return found
	}

	if iso, ok := kind.Apply(title, s.cfg.BaseURL); ok {
		s.log.Debug("detail date recovered from title", logger.Fields{
			"source": s.cfg.Name, "title": title,
		})
		return iso
	}
	return ""
}

func selectionValue(sel *goquery.Selection, f compiledField) string {
	if f.attr != "" {
		v, _ := sel.Attr(f.attr)
		return v
	}
	return sel.Text()
}

// dateKind picks the transform used for date recovery from title text: the
// configured date transform when one exists, the date+time parser otherwise.
func dateKind(fieldSets ...[]compiledField) transform.Kind {
	for _, fields := range fieldSets {
		for _, f := range fields {
			if f.name == "date" && f.transform != transform.KindNone {
				return f.transform
			}
		}
	}
	return transform.KindDateTime
}
