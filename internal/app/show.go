package app

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"moodwatch/internal/dashboard"
	"moodwatch/internal/model"
)

// Timeline prints the merged diary and mood feed, newest first.
func (a *App) Timeline(ctx context.Context, opts TimelineOptions) error {
	cfg := a.dashboardConfig()
	if opts.Days > 0 {
		cfg.HistoryDays = opts.Days
	}
	d := a.newDashboard(cfg, nil)
	if err := d.Load(ctx, dashboard.ViewHome); err != nil {
		return err
	}

	feed := d.MergedTimeline()
	if opts.Limit > 0 && len(feed) > opts.Limit {
		feed = feed[:opts.Limit]
	}
	if len(feed) == 0 {
		fmt.Fprintln(a.Out, "no records found")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tKind\tID\tEmotion\tIntensity\tText")
	for _, rec := range feed {
		fmt.Fprintf(writer, "%s\t%s\t%d\t%s\t%s\t%s\n",
			rec.At().UTC().Format(time.RFC3339),
			rec.Kind(),
			rec.RecordID(),
			emotionOf(rec),
			formatFloat(intensityOf(rec), 2),
			sanitizeInline(textOf(rec)),
		)
	}
	return writer.Flush()
}

// Stats prints the adapted aggregate of one period.
func (a *App) Stats(ctx context.Context, opts StatsOptions) error {
	d, err := a.loadAnalytics(ctx, opts.Period, opts.Date)
	if err != nil {
		return err
	}

	agg, _ := d.Aggregate()
	series := d.AdaptedSeries()
	fmt.Fprintf(a.Out, "%s statistics: %d entries\n", series.Period, agg.TotalEntries())
	if series.Len() == 0 {
		fmt.Fprintln(a.Out, "no data")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	switch series.Period {
	case model.Daily:
		fmt.Fprintln(writer, "Emotion\tCount\tColor")
		for _, row := range series.Daily {
			fmt.Fprintf(writer, "%s\t%d\t%s\n", row.Emotion, row.Count, row.Color)
		}
	case model.Weekly:
		cols := series.Columns()
		header := []string{"Day", "Date", "Total"}
		for _, e := range cols {
			header = append(header, string(e))
		}
		fmt.Fprintln(writer, strings.Join(header, "\t"))
		for _, row := range series.Weekly {
			cells := []string{row.Day, row.Date.Format("2006-01-02"), fmt.Sprint(row.Total)}
			for _, e := range cols {
				if c, ok := row.Count(e); ok {
					cells = append(cells, fmt.Sprint(c))
				} else {
					cells = append(cells, "-")
				}
			}
			fmt.Fprintln(writer, strings.Join(cells, "\t"))
		}
	case model.Monthly:
		fmt.Fprintln(writer, "Emotion\tShare\tColor")
		for _, row := range series.Monthly {
			fmt.Fprintf(writer, "%s\t%s%%\t%s\n", row.Emotion, formatFloat(row.Percentage, 1), row.Color)
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	if analytics, ok := d.Analytics(); ok && analytics.TotalRecords > 0 {
		fmt.Fprintf(a.Out, "watch: %d records", analytics.TotalRecords)
		if analytics.AvgHeartRate != nil {
			fmt.Fprintf(a.Out, ", avg heart rate %s", formatFloat(*analytics.AvgHeartRate, 1))
		}
		if analytics.AvgStressLevel != nil {
			fmt.Fprintf(a.Out, ", avg stress %s", formatFloat(*analytics.AvgStressLevel, 1))
		}
		fmt.Fprintf(a.Out, ", steps %d", analytics.TotalSteps)
		if n := len(analytics.ActivityTrend); n > 0 {
			last := analytics.ActivityTrend[n-1]
			fmt.Fprintf(a.Out, " (last reading %d steps, %d kcal at %s)", last.Steps, last.Calories, last.Time.Format("15:04"))
		}
		fmt.Fprintln(a.Out)
	}
	return nil
}

// Predict prints the latest biometric prediction.
func (a *App) Predict(ctx context.Context, opts PredictOptions) error {
	cfg := a.dashboardConfig()
	if opts.TopK > 0 {
		cfg.TopK = opts.TopK
	}
	d := a.newDashboard(cfg, nil)
	if err := d.Load(ctx, dashboard.ViewLive); err != nil {
		return err
	}

	snap, _ := d.Prediction()
	fmt.Fprintf(a.Out, "predicted: %s (confidence %s)\n", snap.Emotion, formatFloat(snap.Confidence*100, 1)+"%")

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "#\tEmotion\tProbability")
	for i, r := range d.RankedPredictions(0) {
		fmt.Fprintf(writer, "%d\t%s\t%s\n", i+1, r.Emotion, r.Percent(1))
	}
	return writer.Flush()
}

func (a *App) loadAnalytics(ctx context.Context, period model.Period, date *time.Time) (*dashboard.Dashboard, error) {
	cfg := a.dashboardConfig()
	if period != "" {
		cfg.Period = period
	}
	cfg.AnalyticsDate = date
	d := a.newDashboard(cfg, nil)
	if err := d.Load(ctx, dashboard.ViewAnalytics); err != nil {
		return nil, err
	}
	return d, nil
}

func emotionOf(rec model.Record) model.Emotion {
	switch r := rec.(type) {
	case model.Diary:
		return r.Emotion
	case model.MoodLabel:
		return r.Emotion
	default:
		return ""
	}
}

func intensityOf(rec model.Record) float64 {
	switch r := rec.(type) {
	case model.Diary:
		return r.Intensity
	case model.MoodLabel:
		return r.Intensity
	default:
		return 0
	}
}

func textOf(rec model.Record) string {
	switch r := rec.(type) {
	case model.Diary:
		return r.Content
	case model.MoodLabel:
		if r.Note != nil {
			return *r.Note
		}
		return ""
	default:
		return ""
	}
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	return cleaned
}

func formatFloat(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
