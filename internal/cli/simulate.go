package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulateMagnitude float64
	simulateJD        float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Push a synthetic observation through the alert path",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateMagnitude <= 0 {
			return errors.New("--magnitude must be greater than 0")
		}

		magnitude := decimal.NewFromFloat(simulateMagnitude)
		return getApp().SimulateAlert(cmd.Context(), magnitude, simulateJD)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateMagnitude, "magnitude", 0, "Observed magnitude to inject")
	simulateCmd.Flags().Float64Var(&simulateJD, "jd", 0, "Julian date of the injected observation (defaults to now)")
}
