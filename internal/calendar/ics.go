// Package calendar renders canonical events as iCalendar data.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"cartelera/internal/event"
)

const defaultDuration = 2 * time.Hour

// GenerateICS renders one VCALENDAR holding a VEVENT per event, returning
// the empty string when there are no events. Events without an end date get
// a two-hour default duration.
func GenerateICS(events []event.Event, calendarName string) string {
	if len(events) == 0 {
		return ""
	}

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//cartelera//event catalog//ES\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		fmt.Fprintf(&ics, "X-WR-CALNAME:%s\r\n", escapeICS(calendarName))
	}

	stamp := formatICSTime(time.Now().UTC())
	for _, evt := range events {
		writeEvent(&ics, evt, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, evt event.Event, stamp string) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(ics, "UID:%s@cartelera\r\n", evt.ID)
	fmt.Fprintf(ics, "DTSTAMP:%s\r\n", stamp)
	fmt.Fprintf(ics, "DTSTART:%s\r\n", formatICSTime(evt.Date))

	end := evt.Date.Add(defaultDuration)
	if evt.EndDate != nil && evt.EndDate.After(evt.Date) {
		end = *evt.EndDate
	}
	fmt.Fprintf(ics, "DTEND:%s\r\n", formatICSTime(end))

	fmt.Fprintf(ics, "SUMMARY:%s\r\n", escapeICS(evt.Title))

	if evt.Description != "" {
		fmt.Fprintf(ics, "DESCRIPTION:%s\r\n", escapeICS(evt.Description))
	}
	if location := eventLocation(evt); location != "" {
		fmt.Fprintf(ics, "LOCATION:%s\r\n", escapeICS(location))
	}
	if evt.ExternalURL != "" {
		fmt.Fprintf(ics, "URL:%s\r\n", evt.ExternalURL)
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

func eventLocation(evt event.Event) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{evt.VenueName, evt.City, evt.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// formatICSTime formats a time as an iCalendar UTC datetime.
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters per RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
