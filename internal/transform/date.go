package transform

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNames = map[string]time.Month{
	"enero": time.January, "ene": time.January,
	"febrero": time.February, "feb": time.February,
	"marzo": time.March, "mar": time.March,
	"abril": time.April, "abr": time.April,
	"mayo": time.May, "may": time.May,
	"junio": time.June, "jun": time.June,
	"julio": time.July, "jul": time.July,
	"agosto": time.August, "ago": time.August,
	"septiembre": time.September, "setiembre": time.September,
	"sep": time.September, "set": time.September,
	"octubre": time.October, "oct": time.October,
	"noviembre": time.November, "nov": time.November,
	"diciembre": time.December, "dic": time.December,
}

var (
	weekdayPrefix = regexp.MustCompile(`(?i)^(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)[\s,]+`)

	// "4 de abril de 2026", abbreviated months included
	spanishFull = regexp.MustCompile(`(?i)^(\d{1,2})\s+de\s+([\p{L}]+)\.?\s+de\s+(\d{4})$`)

	// "4/4/2026" or "4-4-2026", day first
	numericDate = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)

	// "4 de abril" / "4 abril", year inferred
	dayMonth = regexp.MustCompile(`(?i)^(\d{1,2})\s+(?:de\s+)?([\p{L}]+)\.?$`)

	// trailing "21:00", "21:00h", "21:00 hs"
	timeSuffix = regexp.MustCompile(`(?i)[\s,]*(?:-\s*|a\s+las\s+)?(\d{1,2}):(\d{2})\s*(?:hs?\.?|hrs\.?)?$`)
)

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses event date text in any supported format. Supported:
// "4 de abril de 2026" (Spanish month names, full or abbreviated),
// "4/4/2026" and "4-4-2026" (day first), ISO 8601, and "4 de abril" where
// the year is inferred: current year, rolled forward one year when the
// resulting date is already past.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	s = strings.TrimSpace(weekdayPrefix.ReplaceAllString(s, ""))

	if m := spanishFull.FindStringSubmatch(s); m != nil {
		month, ok := monthNames[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		return makeDate(year, month, day)
	}

	if m := numericDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 {
			return time.Time{}, false
		}
		return makeDate(year, time.Month(month), day)
	}

	if m := dayMonth.FindStringSubmatch(s); m != nil {
		month, ok := monthNames[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		return makeDate(inferYear(month, day), month, day)
	}

	return time.Time{}, false
}

// ParseDateTime layers an optional trailing HH:MM component over ParseDate,
// covering "sábado 4 abril - 21:00", "4 de abril de 2026 a las 21:00" and
// "4/4/2026 21:00". Without a time component it behaves like ParseDate.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// ISO datetimes carry their own time component; stripping a trailing
	// HH:MM out of them would leave an unparseable stump. Try the string
	// whole before peeling anything off.
	if t, ok := ParseDate(s); ok {
		return t, true
	}

	hour, minute := 0, 0
	if m := timeSuffix.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h < 24 && min < 60 {
			hour, minute = h, min
			s = strings.TrimSpace(s[:len(s)-len(m[0])])
		}
	}

	t, ok := ParseDate(s)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location()), true
}

func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject overflow like 31 de febrero.
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// inferYear picks the year for a date given without one: the current year,
// unless that puts the date in the past, in which case next year.
func inferYear(month time.Month, day int) int {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	candidate := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if candidate.Before(today) {
		return now.Year() + 1
	}
	return now.Year()
}
