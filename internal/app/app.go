package app

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"moodwatch/internal/api"
	"moodwatch/internal/config"
	"moodwatch/internal/dashboard"
	"moodwatch/internal/metrics"
	"moodwatch/internal/model"
	"moodwatch/internal/notice"
	"moodwatch/internal/version"
)

// App aggregates configuration and shared dependencies for the CLI commands.
// In feeds interactive commands to watch; nil disables them.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
	In     io.Reader
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout, In: os.Stdin}
}

func (a *App) newClient() *api.Client {
	ua := a.Config.API.UserAgent
	if ua == "" {
		ua = version.UserAgent()
	}
	return api.NewClient(api.Options{
		BaseURL:           a.Config.API.BaseURL,
		Timeout:           a.Config.API.RequestTimeout,
		UserAgent:         ua,
		RequestsPerSecond: a.Config.API.RequestsPerSecond,
		Burst:             a.Config.API.Burst,
	}, a.Logger)
}

func (a *App) newNotifier() notice.Notifier {
	var sinks notice.Multi
	if a.Config.Notice.Log {
		sinks = append(sinks, notice.NewLogNotifier(a.Logger))
	}
	if hook := a.Config.Notice.Webhook; hook.Enabled {
		sinks = append(sinks, notice.NewWebhookNotifier(hook.URL, hook.Timeout, a.Logger))
	}
	if len(sinks) == 0 {
		return nil
	}
	return sinks
}

func (a *App) dashboardConfig() dashboard.Config {
	liveMetrics, err := a.Config.LiveMetrics()
	if err != nil {
		a.Logger.Warn().Err(err).Msg("falling back to default live metrics")
		liveMetrics = nil
	}
	return dashboard.Config{
		DeviceID:          a.Config.Device.ID,
		LiveMetrics:       liveMetrics,
		WindowCapacity:    a.Config.Views.Live.WindowCapacity,
		LiveInterval:      a.Config.Views.Live.Interval,
		AnalyticsInterval: a.Config.Views.Analytics.Interval,
		HomeInterval:      a.Config.Views.Home.Interval,
		Period:            a.Config.Period(),
		LabelLimit:        a.Config.Views.Home.LabelLimit,
		HistoryDays:       a.Config.Views.Home.HistoryDays,
		TopK:              a.Config.Prediction.TopK,
	}
}

func (a *App) newDashboard(cfg dashboard.Config, m *metrics.Metrics) *dashboard.Dashboard {
	return dashboard.New(cfg, a.newClient(), a.newNotifier(), m, a.Logger)
}

// WatchOptions configure the watch command.
type WatchOptions struct {
	Views       []dashboard.View
	Period      model.Period
	RenderEvery time.Duration
	SnapshotPNG string
}

// TimelineOptions configure the timeline command.
type TimelineOptions struct {
	Limit int
	Days  int
}

// StatsOptions configure the stats command.
type StatsOptions struct {
	Period model.Period
	Date   *time.Time
}

// PredictOptions configure the predict command.
type PredictOptions struct {
	TopK int
}

// ExportOptions hold parameters for exporting view data.
type ExportOptions struct {
	What      string
	Period    model.Period
	Date      *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// SampleOptions describe a new watch reading.
type SampleOptions struct {
	Values    map[model.Metric]float64
	Timestamp *time.Time
}

// MoodOptions describe a new mood label.
type MoodOptions struct {
	Emotion   model.Emotion
	Intensity float64
	Note      string
}
