package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cartelera/internal/orchestrator"
	"cartelera/internal/pipeline"
)

func TestObserveRunExposesMetrics(t *testing.T) {
	e := NewExporter(":0")
	e.ObserveRun(orchestrator.Result{
		Sources: []orchestrator.SourceResult{
			{Name: "uno", Success: true, EventCount: 7, Duration: 2 * time.Second},
			{Name: "dos", Success: false, Error: "timeout", Duration: time.Second},
		},
		TotalEvents: 7,
		Failed:      1,
		Duration:    3 * time.Second,
	}, pipeline.Summary{
		Received: 7, Accepted: 4, Rejected: 1, Duplicates: 1, Updated: 1, Stored: 5,
	})

	server := httptest.NewServer(e.server.Handler)
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	for _, want := range []string{
		`cartelera_events_scraped_total{source="uno"} 7`,
		`cartelera_source_failures_total{source="dos"} 1`,
		`cartelera_events_accepted_total 4`,
		`cartelera_events_duplicates_total 1`,
		`cartelera_stored_events 5`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}

	resp, err = http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}
