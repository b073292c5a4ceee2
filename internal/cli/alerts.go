package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tcrbwatch/internal/app"
)

var (
	alertsLimit int
	alertsPurge time.Duration
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Display recently emitted alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if alertsLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.AlertsOptions{
			Limit:          alertsLimit,
			PurgeOlderThan: alertsPurge,
		}

		return getApp().Alerts(cmd.Context(), opts)
	},
}

func init() {
	alertsCmd.Flags().IntVar(&alertsLimit, "limit", 20, "Number of alerts to display")
	alertsCmd.Flags().DurationVar(&alertsPurge, "purge-older-than", 0, "Delete alerts older than this duration before listing")
}
