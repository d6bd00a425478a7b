package notifier

import (
	"fmt"
	"io"
	"os"

	"cartelera/internal/logger"
	"cartelera/internal/orchestrator"
	"cartelera/internal/pipeline"
)

// DryRunNotifier prints the report to a writer without publishing anywhere.
type DryRunNotifier struct {
	Out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to stdout.
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{Out: os.Stdout}
}

// Notify prints the report that would be published.
func (n *DryRunNotifier) Notify(result orchestrator.Result, summary pipeline.Summary) error {
	_, err := fmt.Fprintln(n.Out, FormatReport(result, summary))
	return err
}

// LogNotifier emits the run report as a structured log entry.
type LogNotifier struct {
	Log *logger.Logger
}

// Notify logs the run totals.
func (n *LogNotifier) Notify(result orchestrator.Result, summary pipeline.Summary) error {
	log := n.Log
	if log == nil {
		log = logger.Default()
	}
	log.Info("run report", logger.Fields{
		"sources":    len(result.Sources),
		"failed":     result.Failed,
		"scraped":    result.TotalEvents,
		"accepted":   summary.Accepted,
		"updated":    summary.Updated,
		"duplicates": summary.Duplicates,
		"rejected":   summary.Rejected,
		"errors":     len(summary.Errors),
		"duration":   result.Duration.String(),
	})
	return nil
}
