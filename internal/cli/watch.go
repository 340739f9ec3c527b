package cli

import (
	"time"

	"github.com/spf13/cobra"

	"moodwatch/internal/app"
)

var (
	watchViews    []string
	watchPeriod   string
	watchRender   time.Duration
	watchSnapshot string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the API and keep every view fresh until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		views, err := parseViewsFlag(watchViews)
		if err != nil {
			return err
		}
		period, err := parsePeriodFlag(watchPeriod)
		if err != nil {
			return err
		}

		return getApp().Watch(cmd.Context(), app.WatchOptions{
			Views:       views,
			Period:      period,
			RenderEvery: watchRender,
			SnapshotPNG: watchSnapshot,
		})
	},
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchViews, "views", nil, "Views to poll: live, analytics, home (default all)")
	watchCmd.Flags().StringVar(&watchPeriod, "period", "", "Analytics period: daily, weekly or monthly")
	watchCmd.Flags().DurationVar(&watchRender, "render-every", 0, "Status line interval (defaults to the live interval)")
	watchCmd.Flags().StringVar(&watchSnapshot, "snapshot-png", "", "Write the live windows as a PNG chart on exit")
}
