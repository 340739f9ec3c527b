package cli

import (
	"github.com/spf13/cobra"

	"moodwatch/internal/app"
)

var (
	exportWhat      string
	exportPeriod    string
	exportDate      string
	exportPNGPath   string
	exportCSVPath   string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export statistics, the timeline or the watch trend as CSV and/or PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := parsePeriodFlag(exportPeriod)
		if err != nil {
			return err
		}
		date, err := parseDateFlag(exportDate)
		if err != nil {
			return err
		}

		opts := app.ExportOptions{
			What:      exportWhat,
			Period:    period,
			Date:      date,
			PNGPath:   exportPNGPath,
			CSVPath:   exportCSVPath,
			MaxPoints: exportMaxPoints,
		}
		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportWhat, "what", app.ExportStats, "What to export: stats, timeline or trend")
	exportCmd.Flags().StringVar(&exportPeriod, "period", "", "Statistics period: daily, weekly or monthly")
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Day inside the period (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum rows/points to export (defaults to config)")
}
