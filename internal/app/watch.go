package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"moodwatch/internal/dashboard"
	"moodwatch/internal/metrics"
	"moodwatch/internal/model"
)

// Watch keeps the selected views refreshed and prints a status line until interrupted.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var m *metrics.Metrics
	if a.Config.Metrics.Enabled {
		m = metrics.New()
		stop := a.serveMetrics(m)
		defer stop()
	}

	cfg := a.dashboardConfig()
	if opts.Period != "" {
		cfg.Period = opts.Period
	}
	d := a.newDashboard(cfg, m)

	views := opts.Views
	if len(views) == 0 {
		views = dashboard.Views
	}
	for _, v := range views {
		if err := d.StartView(ctx, v); err != nil {
			d.Stop()
			return err
		}
	}
	a.Logger.Info().Str("api", a.Config.API.BaseURL).Int("views", len(views)).Msg("watching")

	if a.In != nil {
		go a.readPeriodCommands(ctx, a.In, d)
	}

	every := opts.RenderEvery
	if every <= 0 {
		every = cfg.LiveInterval
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.Stop()
			if opts.SnapshotPNG != "" {
				if err := a.writeLivePNG(opts.SnapshotPNG, d); err != nil {
					a.Logger.Warn().Err(err).Str("path", opts.SnapshotPNG).Msg("live snapshot not written")
				}
			}
			a.Logger.Info().Msg("watch stopped")
			if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case <-ticker.C:
			fmt.Fprintln(a.Out, statusLine(d, time.Now()))
		}
	}
}

// readPeriodCommands switches the analytics period for every line naming one
// (daily, weekly, monthly or day, week, month) until r is exhausted or ctx ends.
func (a *App) readPeriodCommands(ctx context.Context, r io.Reader, d *dashboard.Dashboard) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		period, err := model.ParsePeriod(line)
		if err != nil {
			a.Logger.Warn().Str("input", line).Msg("unknown command; type daily, weekly or monthly")
			continue
		}
		if err := d.SetPeriod(period); err != nil {
			a.Logger.Error().Err(err).Str("period", string(period)).Msg("failed to switch period")
			continue
		}
		a.Logger.Info().Str("period", string(period)).Msg("analytics period switched")
	}
	if err := scanner.Err(); err != nil {
		a.Logger.Debug().Err(err).Msg("command input closed")
	}
}

func (a *App) serveMetrics(m *metrics.Metrics) func() {
	path := a.Config.Metrics.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	srv := &http.Server{
		Addr:              a.Config.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error().Err(err).Str("listen", srv.Addr).Msg("metrics server failed")
		}
	}()
	a.Logger.Info().Str("listen", srv.Addr).Str("path", path).Msg("metrics endpoint enabled")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// statusLine summarises every view in one line.
func statusLine(d *dashboard.Dashboard, now time.Time) string {
	var b strings.Builder
	b.WriteString(now.Format("15:04:05"))

	if sample, ok := d.LatestSample(); ok {
		b.WriteString(" | live")
		for _, metric := range d.LiveMetrics() {
			if v, ok := sample.Value(metric); ok {
				fmt.Fprintf(&b, " %s=%s", metric, formatFloat(v, 1))
			}
		}
	} else {
		b.WriteString(" | live: no sample")
	}

	if ranked := d.RankedPredictions(0); len(ranked) > 0 {
		parts := make([]string, 0, len(ranked))
		for _, r := range ranked {
			parts = append(parts, fmt.Sprintf("%s %s", r.Emotion, r.Percent(1)))
		}
		b.WriteString(" | prediction: " + strings.Join(parts, ", "))
	}

	if agg, ok := d.Aggregate(); ok {
		fmt.Fprintf(&b, " | %s: %d entries", agg.Period, agg.TotalEntries())
	}

	feed := d.MergedTimeline()
	fmt.Fprintf(&b, " | timeline: %d", len(feed))
	if len(feed) > 0 {
		fmt.Fprintf(&b, " (latest %s %s)", feed[0].Kind(), emotionOf(feed[0]))
	}
	return b.String()
}
