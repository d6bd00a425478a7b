package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cartelera/internal/calendar"
	"cartelera/internal/store"
)

var (
	flagExportDays int
	flagExportCity string
	flagExportOut  string
	flagCalName    string
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-ics",
		Short: "Export upcoming events as an iCalendar file",
		RunE:  runExport,
	}

	cmd.Flags().IntVar(&flagExportDays, "days", 90, "Export events up to N days ahead")
	cmd.Flags().StringVar(&flagExportCity, "city", "", "Only export events in this city")
	cmd.Flags().StringVar(&flagExportOut, "out", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&flagCalName, "calendar-name", "Cartelera", "Calendar display name")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	now := time.Now().UTC()
	events, err := a.events.FindByFilters(ctx, store.Filters{
		DateFrom: now,
		DateTo:   now.AddDate(0, 0, flagExportDays),
		City:     flagExportCity,
	})
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("no events to export")
	}

	ics := calendar.GenerateICS(events, flagCalName)
	if flagExportOut == "" {
		fmt.Fprint(cmd.OutOrStdout(), ics)
		return nil
	}
	if err := os.WriteFile(flagExportOut, []byte(ics), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", flagExportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d events to %s\n", len(events), flagExportOut)
	return nil
}
