package transform

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var freeWords = []string{
	"gratis", "gratuito", "gratuita", "free",
	"entrada libre", "sin costo", "sin cargo", "liberada",
}

var priceToken = regexp.MustCompile(`\d[\d.,]*`)

// ParsePrice extracts a whole-currency-unit amount from free-form price text.
//
// Free/no-cost keywords map to 0. A separator followed by one or two digits
// is a decimal part ("22400.50" → 22401, rounded); a separator followed by
// three digits is thousands grouping ("5.000" → 5000). Unparseable text
// yields ok=false.
func ParsePrice(s string) (int, bool) {
	lower := strings.ToLower(s)
	for _, word := range freeWords {
		if strings.Contains(lower, word) {
			return 0, true
		}
	}

	token := priceToken.FindString(s)
	if token == "" {
		return 0, false
	}
	token = strings.Trim(token, ".,")

	idx := strings.LastIndexAny(token, ".,")
	if idx < 0 {
		n, err := strconv.Atoi(token)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	tail := token[idx+1:]
	if len(tail) <= 2 {
		// Decimal part: everything before it may still carry grouping.
		intPart := stripSeparators(token[:idx])
		whole, err := strconv.Atoi(intPart)
		if err != nil {
			return 0, false
		}
		frac, err := strconv.Atoi(tail)
		if err != nil {
			return 0, false
		}
		value := float64(whole) + float64(frac)/math.Pow10(len(tail))
		return int(math.Round(value)), true
	}

	// Grouping separators only.
	n, err := strconv.Atoi(stripSeparators(token))
	if err != nil {
		return 0, false
	}
	return n, true
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, ",", "")
}
