package calendar

import (
	"strings"
	"testing"
	"time"

	"cartelera/internal/event"
)

func sampleEvent(id, title string) event.Event {
	return event.Event{
		ID:          id,
		Title:       title,
		Date:        time.Date(2026, 4, 4, 21, 0, 0, 0, time.UTC),
		VenueName:   "Café Central",
		City:        "Madrid",
		Country:     "ES",
		ExternalURL: "https://agenda.example/eventos/" + id,
	}
}

func TestGenerateICS(t *testing.T) {
	ics := GenerateICS([]event.Event{sampleEvent("e1", "Concierto de Jazz")}, "Cartelera")

	required := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"X-WR-CALNAME:Cartelera",
		"BEGIN:VEVENT",
		"UID:e1@cartelera",
		"DTSTAMP:",
		"DTSTART:20260404T210000Z",
		"DTEND:20260404T230000Z", // two-hour default
		"SUMMARY:Concierto de Jazz",
		"LOCATION:Café Central\\, Madrid\\, ES",
		"URL:https://agenda.example/eventos/e1",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range required {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing %q", field)
		}
	}

	if !strings.Contains(ics, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestGenerateICSEndDate(t *testing.T) {
	evt := sampleEvent("e1", "Festival")
	end := evt.Date.Add(48 * time.Hour)
	evt.EndDate = &end

	ics := GenerateICS([]event.Event{evt}, "")
	if !strings.Contains(ics, "DTEND:20260406T210000Z") {
		t.Error("explicit end date should be used over the default duration")
	}
	if strings.Contains(ics, "X-WR-CALNAME:") {
		t.Error("empty calendar name should omit X-WR-CALNAME")
	}
}

func TestGenerateICSMultipleEvents(t *testing.T) {
	events := []event.Event{
		sampleEvent("e1", "Evento Uno"),
		sampleEvent("e2", "Evento Dos"),
		sampleEvent("e3", "Evento Tres"),
	}

	ics := GenerateICS(events, "Agenda")
	if n := strings.Count(ics, "BEGIN:VEVENT"); n != 3 {
		t.Errorf("BEGIN:VEVENT count = %d, expected 3", n)
	}
	for _, evt := range events {
		if !strings.Contains(ics, "UID:"+evt.ID+"@cartelera") {
			t.Errorf("missing UID for %s", evt.ID)
		}
	}
}

func TestGenerateICSEmpty(t *testing.T) {
	if ics := GenerateICS(nil, "Agenda"); ics != "" {
		t.Error("no events should produce empty output")
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Texto simple", "Texto simple"},
		{"Con, coma", "Con\\, coma"},
		{"Con; punto y coma", "Con\\; punto y coma"},
		{"Con\\barra", "Con\\\\barra"},
		{"Con\nsalto", "Con\\nsalto"},
	}
	for _, tt := range tests {
		if got := escapeICS(tt.input); got != tt.expected {
			t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatICSTime(t *testing.T) {
	got := formatICSTime(time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC))
	if got != "20260315T143000Z" {
		t.Errorf("formatICSTime() = %q", got)
	}
}
