package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn, &buf)

	l.Debug("debug msg", nil)
	l.Info("info msg", nil)
	l.Warn("warn msg", nil)
	l.Error("error msg", nil, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries at warn level, got %d: %q", len(lines), buf.String())
	}

	var entry Entry
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("entry is not valid JSON: %v", err)
	}
	if entry.Level != "ERROR" || entry.Error != "boom" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)

	l.Info("scrape finished", Fields{"source": "teatro", "events": 12})

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("entry is not valid JSON: %v", err)
	}
	if entry.Fields["source"] != "teatro" {
		t.Errorf("fields not preserved: %+v", entry.Fields)
	}
}

func TestCounters(t *testing.T) {
	c := NewCounters()
	c.Incr("events.accepted")
	c.Incr("events.accepted")
	c.Add("events.rejected", 3)

	snap := c.Snapshot()
	if snap["events.accepted"] != 2 {
		t.Errorf("accepted = %d, expected 2", snap["events.accepted"])
	}
	if snap["events.rejected"] != 3 {
		t.Errorf("rejected = %d, expected 3", snap["events.rejected"])
	}
}

func TestTimingStats(t *testing.T) {
	c := NewCounters()
	if _, _, _, ok := c.TimingStats("fetch"); ok {
		t.Error("stats for an empty series should report ok=false")
	}

	c.RecordTiming("fetch", 100*time.Millisecond)
	c.RecordTiming("fetch", 300*time.Millisecond)

	min, max, avg, ok := c.TimingStats("fetch")
	if !ok {
		t.Fatal("expected stats")
	}
	if min != 100*time.Millisecond || max != 300*time.Millisecond || avg != 200*time.Millisecond {
		t.Errorf("stats = %v/%v/%v", min, max, avg)
	}
}
