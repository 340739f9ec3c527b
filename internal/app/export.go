package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"moodwatch/internal/aggregate"
	"moodwatch/internal/dashboard"
	"moodwatch/internal/model"
)

// Export kinds.
const (
	ExportStats    = "stats"
	ExportTimeline = "timeline"
	ExportTrend    = "trend"
)

// Export renders view data as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	switch opts.What {
	case "", ExportStats:
		return a.exportStats(ctx, opts)
	case ExportTimeline:
		return a.exportTimeline(ctx, opts)
	case ExportTrend:
		return a.exportTrend(ctx, opts)
	default:
		return fmt.Errorf("unknown export kind %q (want stats, timeline or trend)", opts.What)
	}
}

func (a *App) exportStats(ctx context.Context, opts ExportOptions) error {
	d, err := a.loadAnalytics(ctx, opts.Period, opts.Date)
	if err != nil {
		return err
	}
	series := d.AdaptedSeries()
	if series.Len() == 0 {
		a.Logger.Info().Str("period", string(series.Period)).Msg("no statistics for export")
		return nil
	}
	a.Logger.Info().Str("period", string(series.Period)).Int("rows", series.Len()).Msg("exporting statistics")

	if opts.CSVPath != "" {
		if err := writeSeriesCSV(opts.CSVPath, series); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := writeSeriesPNG(opts.PNGPath, series, a.Config.Export.ChartWidth, a.Config.Export.ChartHeight); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) exportTimeline(ctx context.Context, opts ExportOptions) error {
	if opts.PNGPath != "" {
		return errors.New("timeline export supports --csv only")
	}
	d := a.newDashboard(a.dashboardConfig(), nil)
	if err := d.Load(ctx, dashboard.ViewHome); err != nil {
		return err
	}

	feed := d.MergedTimeline()
	if len(feed) > opts.MaxPoints {
		feed = feed[:opts.MaxPoints]
	}
	a.Logger.Info().Int("records", len(feed)).Msg("exporting timeline")
	return writeTimelineCSV(opts.CSVPath, feed)
}

func (a *App) exportTrend(ctx context.Context, opts ExportOptions) error {
	d, err := a.loadAnalytics(ctx, opts.Period, opts.Date)
	if err != nil {
		return err
	}
	analytics, _ := d.Analytics()

	lines := []namedSeries{
		{Name: "heart_rate", Points: downsamplePoints(analytics.HeartRateTrend, opts.MaxPoints)},
		{Name: "stress_level", Points: downsamplePoints(analytics.StressTrend, opts.MaxPoints), Secondary: true},
	}
	total := len(lines[0].Points) + len(lines[1].Points)
	if total == 0 {
		a.Logger.Info().Msg("no watch trend for export window")
		return nil
	}
	a.Logger.Info().Int("points", total).Msg("exporting watch trend")

	if opts.CSVPath != "" {
		if err := writePointsCSV(opts.CSVPath, lines); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := writePointsPNG(opts.PNGPath, lines, a.Config.Export.ChartWidth, a.Config.Export.ChartHeight); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) writeLivePNG(path string, d *dashboard.Dashboard) error {
	lines := make([]namedSeries, 0, len(d.LiveMetrics()))
	for i, metric := range d.LiveMetrics() {
		points, _ := d.WindowSnapshot(metric)
		lines = append(lines, namedSeries{Name: string(metric), Points: points, Secondary: i > 0})
	}
	return writePointsPNG(path, lines, a.Config.Export.ChartWidth, a.Config.Export.ChartHeight)
}

type namedSeries struct {
	Name      string
	Points    []model.Point
	Secondary bool
}

func downsamplePoints(points []model.Point, max int) []model.Point {
	if max <= 0 || len(points) <= max {
		return points
	}
	if max == 1 {
		return points[len(points)-1:]
	}

	result := make([]model.Point, 0, max)
	step := float64(len(points)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(points) {
			idx = len(points) - 1
		}
		result = append(result, points[idx])
	}
	return result
}

func writeSeriesCSV(path string, series aggregate.Series) error {
	return writeCSV(path, func(w *csv.Writer) error {
		switch series.Period {
		case model.Daily:
			if err := w.Write([]string{"emotion", "count", "color"}); err != nil {
				return err
			}
			for _, row := range series.Daily {
				if err := w.Write([]string{string(row.Emotion), strconv.Itoa(row.Count), row.Color}); err != nil {
					return err
				}
			}
		case model.Weekly:
			cols := series.Columns()
			header := []string{"date", "day", "total"}
			for _, e := range cols {
				header = append(header, string(e))
			}
			if err := w.Write(header); err != nil {
				return err
			}
			for _, row := range series.Weekly {
				record := []string{row.Date.Format("2006-01-02"), row.Day, strconv.Itoa(row.Total)}
				for _, e := range cols {
					// absent stays empty, not zero
					if c, ok := row.Count(e); ok {
						record = append(record, strconv.Itoa(c))
					} else {
						record = append(record, "")
					}
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
		case model.Monthly:
			if err := w.Write([]string{"emotion", "percentage", "color"}); err != nil {
				return err
			}
			for _, row := range series.Monthly {
				if err := w.Write([]string{string(row.Emotion), formatFloat(row.Percentage, 2), row.Color}); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unsupported period %q", series.Period)
		}
		return nil
	})
}

func writeTimelineCSV(path string, feed []model.Record) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"timestamp", "kind", "id", "emotion", "intensity", "text"}); err != nil {
			return err
		}
		for _, rec := range feed {
			record := []string{
				rec.At().UTC().Format(time.RFC3339),
				rec.Kind().String(),
				strconv.FormatInt(rec.RecordID(), 10),
				string(emotionOf(rec)),
				formatFloat(intensityOf(rec), 3),
				textOf(rec),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func writePointsCSV(path string, lines []namedSeries) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"series", "timestamp", "value"}); err != nil {
			return err
		}
		for _, line := range lines {
			for _, p := range line.Points {
				if err := w.Write([]string{line.Name, p.Time.UTC().Format(time.RFC3339), formatFloat(p.Value, 3)}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func writeCSV(path string, fill func(*csv.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := fill(writer); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func writeSeriesPNG(path string, series aggregate.Series, width, height int) error {
	var renderable pngRenderer
	title := fmt.Sprintf("Emotions (%s)", series.Period)

	switch series.Period {
	case model.Daily:
		bars := make([]chart.Value, 0, len(series.Daily))
		top := 0.0
		for _, row := range series.Daily {
			bars = append(bars, chart.Value{Label: string(row.Emotion), Value: float64(row.Count), Style: fillStyle(row.Color)})
			top = math.Max(top, float64(row.Count))
		}
		renderable = &chart.BarChart{
			Title:    title,
			Width:    width,
			Height:   height,
			BarWidth: 60,
			YAxis:    chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, top*1.1)}},
			Bars:     bars,
		}
	case model.Weekly:
		cols := series.Columns()
		bars := make([]chart.StackedBar, 0, len(series.Weekly))
		for _, row := range series.Weekly {
			values := make([]chart.Value, 0, len(cols))
			for _, e := range cols {
				if c, ok := row.Count(e); ok && c > 0 {
					values = append(values, chart.Value{Label: string(e), Value: float64(c), Style: fillStyle(aggregate.ColorFor(e))})
				}
			}
			// days without entries have nothing to stack
			if len(values) == 0 {
				continue
			}
			bars = append(bars, chart.StackedBar{Name: row.Day, Values: values})
		}
		if len(bars) == 0 {
			return errors.New("no weekly data to plot")
		}
		renderable = &chart.StackedBarChart{Title: title, Width: width, Height: height, Bars: bars}
	case model.Monthly:
		values := make([]chart.Value, 0, len(series.Monthly))
		for _, row := range series.Monthly {
			if row.Percentage <= 0 {
				continue
			}
			values = append(values, chart.Value{
				Label: fmt.Sprintf("%s %s%%", row.Emotion, formatFloat(row.Percentage, 0)),
				Value: row.Percentage,
				Style: fillStyle(row.Color),
			})
		}
		if len(values) == 0 {
			return errors.New("no monthly data to plot")
		}
		renderable = &chart.PieChart{Title: title, Width: width, Height: height, Values: values}
	default:
		return fmt.Errorf("unsupported period %q", series.Period)
	}

	return renderPNG(path, renderable)
}

func writePointsPNG(path string, lines []namedSeries, width, height int) error {
	var (
		series             []chart.Series
		primary, secondary []float64
	)
	for _, line := range lines {
		if len(line.Points) < 2 {
			continue
		}
		x := make([]time.Time, len(line.Points))
		y := make([]float64, len(line.Points))
		for i, p := range line.Points {
			x[i] = p.Time
			y[i] = p.Value
		}
		ts := chart.TimeSeries{Name: line.Name, XValues: x, YValues: y}
		if line.Secondary {
			ts.YAxis = chart.YAxisSecondary
			secondary = append(secondary, y...)
		} else {
			primary = append(primary, y...)
		}
		series = append(series, ts)
	}
	if len(series) == 0 {
		return errors.New("need at least two points to draw a line")
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			ValueFormatter: valueFormatter,
			Range:          paddedRange(primary),
		},
		YAxisSecondary: chart.YAxis{
			ValueFormatter: valueFormatter,
			Range:          paddedRange(secondary),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, &graph)
}

// paddedRange keeps flat series drawable.
func paddedRange(values []float64) *chart.ContinuousRange {
	if len(values) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func fillStyle(hex string) chart.Style {
	c := drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
}

type pngRenderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderPNG(path string, r pngRenderer) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return r.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
