package notifier

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cartelera/internal/orchestrator"
	"cartelera/internal/pipeline"
)

func sampleRun() (orchestrator.Result, pipeline.Summary) {
	result := orchestrator.Result{
		Sources: []orchestrator.SourceResult{
			{Name: "agenda-madrid", Success: true, EventCount: 12, Duration: 3 * time.Second},
			{Name: "sala-caida", Success: false, Error: "connection refused", Duration: time.Second},
		},
		TotalEvents: 12,
		Failed:      1,
		Duration:    4 * time.Second,
	}
	summary := pipeline.Summary{
		Received: 12, Accepted: 8, Rejected: 2, Duplicates: 1, Updated: 1,
		Errors: []pipeline.IngestError{
			{Title: "Concierto Roto", Source: "agenda-madrid", Reason: "unparseable date \"mañana\""},
		},
	}
	return result, summary
}

func TestFormatReport(t *testing.T) {
	result, summary := sampleRun()
	report := FormatReport(result, summary)

	for _, want := range []string{
		"2 sources, 1 failed",
		"agenda-madrid: 12 events",
		"sala-caida: FAILED: connection refused",
		"8 new, 1 updated, 1 duplicates, 2 rejected",
		"Concierto Roto",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestDryRunNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := &DryRunNotifier{Out: &buf}

	result, summary := sampleRun()
	if err := n.Notify(result, summary); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if !strings.Contains(buf.String(), "agenda-madrid") {
		t.Errorf("dry-run output missing source line:\n%s", buf.String())
	}
}
