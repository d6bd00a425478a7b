// Package notifier publishes run reports after an ingestion run. The
// catalog itself only ships log and dry-run notifiers; chat or social
// integrations implement the same interface externally.
package notifier

import (
	"fmt"
	"strings"
	"time"

	"cartelera/internal/orchestrator"
	"cartelera/internal/pipeline"
)

// Notifier publishes one run report.
type Notifier interface {
	Notify(result orchestrator.Result, summary pipeline.Summary) error
}

// FormatReport renders a run report as human-readable text.
func FormatReport(result orchestrator.Result, summary pipeline.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run finished in %s: %d sources, %d failed\n",
		result.Duration.Round(time.Millisecond), len(result.Sources), result.Failed)
	for _, src := range result.Sources {
		if src.Success {
			fmt.Fprintf(&b, "  %s: %d events (%s)\n", src.Name, src.EventCount, src.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(&b, "  %s: FAILED: %s\n", src.Name, src.Error)
		}
	}

	fmt.Fprintf(&b, "Ingested %d: %d new, %d updated, %d duplicates, %d rejected",
		summary.Received, summary.Accepted, summary.Updated, summary.Duplicates, summary.Rejected)
	if len(summary.Errors) > 0 {
		fmt.Fprintf(&b, ", %d errors", len(summary.Errors))
		for _, e := range summary.Errors {
			fmt.Fprintf(&b, "\n  error: %s (%s): %s", e.Title, e.Source, e.Reason)
		}
	}
	return b.String()
}
