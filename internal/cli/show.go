package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"moodwatch/internal/app"
)

var (
	timelineLimit int
	timelineDays  int
	statsPeriod   string
	statsDate     string
	predictTopK   int
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Display diary entries and mood labels as one feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if timelineLimit < 0 || timelineDays < 0 {
			return fmt.Errorf("--limit and --days cannot be negative")
		}
		return getApp().Timeline(cmd.Context(), app.TimelineOptions{Limit: timelineLimit, Days: timelineDays})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display daily, weekly or monthly emotion statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := parsePeriodFlag(statsPeriod)
		if err != nil {
			return err
		}
		date, err := parseDateFlag(statsDate)
		if err != nil {
			return err
		}
		return getApp().Stats(cmd.Context(), app.StatsOptions{Period: period, Date: date})
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Display the emotion predicted from biometrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if predictTopK < 0 {
			return fmt.Errorf("--top cannot be negative")
		}
		return getApp().Predict(cmd.Context(), app.PredictOptions{TopK: predictTopK})
	},
}

func init() {
	timelineCmd.Flags().IntVar(&timelineLimit, "limit", 20, "Number of records to display (0 for all)")
	timelineCmd.Flags().IntVar(&timelineDays, "days", 0, "Only records from the last N days")

	statsCmd.Flags().StringVar(&statsPeriod, "period", "", "daily, weekly or monthly (defaults to config)")
	statsCmd.Flags().StringVar(&statsDate, "date", "", "Day inside the period (YYYY-MM-DD, default today)")

	predictCmd.Flags().IntVar(&predictTopK, "top", 0, "Number of emotions to list (defaults to config)")
}
