package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cartelera/internal/notifier"
	"cartelera/internal/orchestrator"
	"cartelera/internal/pipeline"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// RunOutput is the JSON shape of one fetch run.
type RunOutput struct {
	CheckedAt time.Time                   `json:"checked_at"`
	Sources   []orchestrator.SourceResult `json:"sources"`
	Scraped   int                         `json:"scraped"`
	Failed    int                         `json:"failed"`
	Duration  string                      `json:"duration"`
	Summary   pipeline.Summary            `json:"summary"`
}

// WriteRun prints a run result in the chosen format.
func WriteRun(w io.Writer, result orchestrator.Result, summary pipeline.Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		checkedAt := result.CheckedAt
		if checkedAt.IsZero() {
			checkedAt = time.Now().UTC()
		}
		return encoder.Encode(RunOutput{
			CheckedAt: checkedAt,
			Sources:   result.Sources,
			Scraped:   result.TotalEvents,
			Failed:    result.Failed,
			Duration:  result.Duration.String(),
			Summary:   summary,
		})
	case FormatText, "":
		n := notifier.DryRunNotifier{Out: w}
		return n.Notify(result, summary)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
