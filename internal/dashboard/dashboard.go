// Package dashboard owns the view state of the live, analytics and home
// screens and keeps it fresh through per-view polling controllers.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"moodwatch/internal/api"
	"moodwatch/internal/metrics"
	"moodwatch/internal/model"
	"moodwatch/internal/notice"
	"moodwatch/internal/prediction"
	"moodwatch/internal/scheduler"
	"moodwatch/internal/window"
)

// View names one independently refreshed screen.
type View string

const (
	ViewLive      View = "live"
	ViewAnalytics View = "analytics"
	ViewHome      View = "home"
)

// Views lists every view in start order.
var Views = []View{ViewLive, ViewAnalytics, ViewHome}

// Config parameterises a Dashboard.
type Config struct {
	DeviceID       string
	LiveMetrics    []model.Metric
	WindowCapacity int

	LiveInterval      time.Duration
	AnalyticsInterval time.Duration
	HomeInterval      time.Duration

	Period        model.Period
	AnalyticsDate *time.Time // nil means the current period
	LabelLimit    int
	HistoryDays   int
	TopK          int
}

// DefaultLiveMetrics are charted when no metric list is configured.
var DefaultLiveMetrics = []model.Metric{model.HeartRate, model.HRV, model.StressLevel, model.SpO2}

func (c Config) withDefaults() Config {
	if len(c.LiveMetrics) == 0 {
		c.LiveMetrics = DefaultLiveMetrics
	}
	if c.WindowCapacity <= 0 {
		c.WindowCapacity = window.DefaultCapacity
	}
	if c.LiveInterval <= 0 {
		c.LiveInterval = 10 * time.Second
	}
	if c.AnalyticsInterval <= 0 {
		c.AnalyticsInterval = 30 * time.Second
	}
	if c.HomeInterval <= 0 {
		c.HomeInterval = 60 * time.Second
	}
	if c.Period == "" {
		c.Period = model.Daily
	}
	if c.LabelLimit <= 0 {
		c.LabelLimit = 100
	}
	if c.TopK <= 0 {
		c.TopK = prediction.DefaultTopK
	}
	return c
}

// Dashboard holds the state slots of every view. Each slot is written only by
// its own view's commits, so a failing view never clears another's data.
type Dashboard struct {
	cfg      Config
	src      api.Source
	notifier notice.Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time

	controllers map[View]*scheduler.Controller
	windows     map[model.Metric]*window.Window

	runMu  sync.Mutex
	runCtx context.Context

	mu         sync.RWMutex
	seeded     bool
	lastSample *model.Sample
	prediction *model.PredictionSnapshot
	period     model.Period
	aggregate  *model.PeriodAggregate
	analytics  *model.WatchAnalytics
	diaries    []model.Diary
	labels     []model.MoodLabel
	updated    map[View]time.Time
}

// New builds a dashboard. notifier and m may be nil.
func New(cfg Config, src api.Source, notifier notice.Notifier, m *metrics.Metrics, logger zerolog.Logger) *Dashboard {
	cfg = cfg.withDefaults()

	d := &Dashboard{
		cfg:         cfg,
		src:         src,
		notifier:    notifier,
		metrics:     m,
		logger:      logger.With().Str("component", "dashboard").Logger(),
		now:         time.Now,
		controllers: make(map[View]*scheduler.Controller, len(Views)),
		windows:     make(map[model.Metric]*window.Window, len(cfg.LiveMetrics)),
		period:      cfg.Period,
		updated:     make(map[View]time.Time, len(Views)),
	}

	for _, metric := range cfg.LiveMetrics {
		d.windows[metric] = window.New(cfg.WindowCapacity, metric)
	}

	hooks := scheduler.Hooks{OnError: d.report}
	if m != nil {
		hooks = scheduler.Chain(m.Hooks(), hooks)
	}
	for _, v := range Views {
		d.controllers[v] = scheduler.New(string(v), logger, scheduler.WithHooks(hooks))
	}
	return d
}

// Controller exposes the polling controller of view.
func (d *Dashboard) Controller(v View) *scheduler.Controller {
	return d.controllers[v]
}

// Start begins polling every view. Each view drops its previous state and
// refreshes immediately.
func (d *Dashboard) Start(ctx context.Context) error {
	d.runMu.Lock()
	d.runCtx = ctx
	d.runMu.Unlock()

	for _, v := range Views {
		if err := d.startView(ctx, v); err != nil {
			d.Stop()
			return err
		}
	}
	return nil
}

// StartView begins polling a single view. State left from an earlier
// activation is dropped and rebuilt from the API.
func (d *Dashboard) StartView(ctx context.Context, v View) error {
	d.runMu.Lock()
	d.runCtx = ctx
	d.runMu.Unlock()
	return d.startView(ctx, v)
}

func (d *Dashboard) startView(ctx context.Context, v View) error {
	ctrl, ok := d.controllers[v]
	if !ok {
		return fmt.Errorf("unknown view %q", v)
	}
	// stop first so no commit of the old schedule lands after the reset
	ctrl.Stop()
	d.reset(v)
	return ctrl.Start(ctx, d.interval(v), d.refreshFunc(v))
}

// reset clears the state slots owned by v.
func (d *Dashboard) reset(v View) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch v {
	case ViewLive:
		for _, w := range d.windows {
			w.Reset()
		}
		d.seeded = false
		d.lastSample = nil
		d.prediction = nil
	case ViewAnalytics:
		d.aggregate = nil
		d.analytics = nil
	case ViewHome:
		d.diaries = nil
		d.labels = nil
	}
	delete(d.updated, v)
}

// Stop halts every view. Results of cycles still in flight are discarded.
func (d *Dashboard) Stop() {
	for _, v := range Views {
		d.controllers[v].Stop()
	}
}

// Wait blocks until all issued cycles have finished.
func (d *Dashboard) Wait() {
	for _, v := range Views {
		d.controllers[v].Wait()
	}
}

// Load runs one refresh of each given view (all views when none are given)
// without scheduling, committing whatever succeeded. The first error aborts.
func (d *Dashboard) Load(ctx context.Context, views ...View) error {
	if len(views) == 0 {
		views = Views
	}
	for _, v := range views {
		refresh := d.refreshFunc(v)
		if refresh == nil {
			return fmt.Errorf("unknown view %q", v)
		}
		commit, err := refresh(ctx)
		if commit != nil {
			commit()
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", v, err)
		}
	}
	return nil
}

func (d *Dashboard) interval(v View) time.Duration {
	switch v {
	case ViewLive:
		return d.cfg.LiveInterval
	case ViewAnalytics:
		return d.cfg.AnalyticsInterval
	default:
		return d.cfg.HomeInterval
	}
}

func (d *Dashboard) refreshFunc(v View) scheduler.RefreshFunc {
	switch v {
	case ViewLive:
		return d.refreshLive
	case ViewAnalytics:
		return d.refreshAnalytics
	case ViewHome:
		return d.refreshHome
	default:
		return nil
	}
}

func (d *Dashboard) report(view string, err error) {
	if d.notifier == nil {
		return
	}
	for _, failure := range api.Failures(err) {
		note := notice.FromError(view, failure, d.now())
		if nerr := d.notifier.Notify(context.Background(), note); nerr != nil {
			d.logger.Error().Err(nerr).Str("view", view).Msg("failed to deliver notice")
		}
	}
}

// SetPeriod switches the analytics view to period. A running analytics
// schedule is restarted so results fetched for the old period are dropped.
func (d *Dashboard) SetPeriod(period model.Period) error {
	if _, err := model.ParsePeriod(string(period)); err != nil {
		return err
	}

	d.mu.Lock()
	changed := d.period != period
	d.period = period
	if changed {
		d.aggregate = nil
		d.analytics = nil
	}
	d.mu.Unlock()

	ctrl := d.controllers[ViewAnalytics]
	if !changed || !ctrl.Running() {
		return nil
	}

	d.runMu.Lock()
	ctx := d.runCtx
	d.runMu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	d.logger.Info().Str("period", string(period)).Msg("period changed, restarting analytics polling")
	return d.startView(ctx, ViewAnalytics)
}

// Period returns the selected analytics period.
func (d *Dashboard) Period() model.Period {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.period
}

// Updated returns when view last committed, zero if never.
func (d *Dashboard) Updated(v View) time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.updated[v]
}
