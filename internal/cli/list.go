package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cartelera/internal/event"
	"cartelera/internal/store"
)

var (
	flagListDays     int
	flagListCity     string
	flagListCategory string
	flagListSource   string
	flagListLimit    int
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged upcoming events",
		RunE:  runList,
	}

	cmd.Flags().IntVar(&flagListDays, "days", 30, "Show events up to N days ahead")
	cmd.Flags().StringVar(&flagListCity, "city", "", "Only events in this city")
	cmd.Flags().StringVar(&flagListCategory, "category", "", "Only events in this category")
	cmd.Flags().StringVar(&flagListSource, "source", "", "Only events from this source")
	cmd.Flags().IntVar(&flagListLimit, "limit", 50, "Maximum number of events")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	now := time.Now().UTC()
	events, err := a.events.FindByFilters(ctx, store.Filters{
		DateFrom: now,
		DateTo:   now.AddDate(0, 0, flagListDays),
		City:     flagListCity,
		Category: event.Category(flagListCategory),
		Source:   flagListSource,
		Limit:    flagListLimit,
	})
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}

	out := cmd.OutOrStdout()
	if OutputFormat(flagFormat) == FormatJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(events)
	}

	if len(events) == 0 {
		fmt.Fprintln(out, "No upcoming events.")
		return nil
	}
	for _, evt := range events {
		line := fmt.Sprintf("%s  %-30s", evt.Date.Format("2006-01-02 15:04"), evt.Title)
		if evt.VenueName != "" {
			line += "  @ " + evt.VenueName
		}
		if evt.City != "" {
			line += ", " + evt.City
		}
		if evt.Price != nil {
			line += fmt.Sprintf("  [%d %s]", *evt.Price, evt.Currency)
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "\n%d events\n", len(events))
	return nil
}
