package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Alerts prints recent audited alerts.
func (a *App) Alerts(ctx context.Context, opts AlertsOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot list alerts")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if opts.PurgeOlderThan > 0 {
		cutoff := time.Now().UTC().Add(-opts.PurgeOlderThan)
		if err := store.DeleteAlertsBefore(ctx, cutoff); err != nil {
			return err
		}
		remaining, err := store.CountAlerts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "purged alerts recorded before %s; %d remaining\n", cutoff.Format(time.RFC3339), remaining)
	}

	alerts, err := store.ListRecentAlerts(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts recorded")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tStar\tMagnitude\tJD\tThreshold\tSource")

	for _, alert := range alerts {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%.5f\t%s\t%s\n",
			alert.CreatedAt.UTC().Format(time.RFC3339),
			alert.Star,
			alert.Magnitude.StringFixed(3),
			alert.JulianDate,
			alert.Threshold.StringFixed(2),
			alert.Source,
		)
	}

	writer.Flush()
	return nil
}
