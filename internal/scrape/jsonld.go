package scrape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractStructuredEvent scans the document's JSON-LD script blocks for a
// schema.org Event (including subtypes like MusicEvent) and maps it onto
// field names. Malformed blocks are skipped, never fatal.
func extractStructuredEvent(doc *goquery.Document) (map[string]string, bool) {
	var values map[string]string

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			return true
		}
		if node := findEventNode(payload); node != nil {
			values = eventNodeValues(node)
			return false
		}
		return true
	})

	return values, values != nil
}

// findEventNode walks a decoded JSON-LD payload (object, array, or @graph)
// looking for the first node typed as a schema.org Event.
func findEventNode(payload any) map[string]any {
	switch v := payload.(type) {
	case []any:
		for _, item := range v {
			if node := findEventNode(item); node != nil {
				return node
			}
		}
	case map[string]any:
		if isEventType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findEventNode(graph)
		}
	}
	return nil
}

func isEventType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Event" || strings.HasSuffix(v, "Event")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && (s == "Event" || strings.HasSuffix(s, "Event")) {
				return true
			}
		}
	}
	return false
}

func eventNodeValues(node map[string]any) map[string]string {
	values := map[string]string{
		"title":       jsonString(node["name"]),
		"date":        jsonString(node["startDate"]),
		"endDate":     jsonString(node["endDate"]),
		"description": jsonString(node["description"]),
		"image":       jsonString(node["image"]),
		"link":        jsonString(node["url"]),
	}

	if location, ok := node["location"].(map[string]any); ok {
		values["venue"] = jsonString(location["name"])
		if address, ok := location["address"].(map[string]any); ok {
			values["city"] = jsonString(address["addressLocality"])
			values["country"] = jsonString(address["addressCountry"])
		} else if addr := jsonString(location["address"]); addr != "" {
			values["city"] = addr
		}
	}

	offers := node["offers"]
	if list, ok := offers.([]any); ok && len(list) > 0 {
		offers = list[0]
	}
	if offer, ok := offers.(map[string]any); ok {
		price := jsonString(offer["price"])
		if price == "" {
			price = jsonString(offer["lowPrice"])
		}
		values["price"] = price
		values["priceMax"] = jsonString(offer["highPrice"])
	}

	return values
}

// jsonString renders a JSON-LD value as a string: plain strings pass
// through, numbers format without scientific notation, image/url objects
// and arrays use their first usable entry.
func jsonString(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%g", value)
	case []any:
		for _, item := range value {
			if s := jsonString(item); s != "" {
				return s
			}
		}
	case map[string]any:
		if s := jsonString(value["url"]); s != "" {
			return s
		}
		return jsonString(value["@id"])
	}
	return ""
}
