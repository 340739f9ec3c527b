package dashboard

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"moodwatch/internal/model"
	"moodwatch/internal/scheduler"
)

// part fetches one source and returns how to apply it. The apply func runs
// with d.mu held.
type part func(ctx context.Context) (apply func(), err error)

// gather runs the parts of one cycle concurrently. A failing part does not
// cancel or block its siblings: whatever succeeded is committed and every
// failure is returned joined.
func (d *Dashboard) gather(ctx context.Context, v View, parts ...part) (scheduler.CommitFunc, error) {
	applies := make([]func(), len(parts))
	errs := make([]error, len(parts))

	var g errgroup.Group
	for i, p := range parts {
		i, p := i, p
		g.Go(func() error {
			applies[i], errs[i] = p(ctx)
			return nil
		})
	}
	_ = g.Wait()

	ready := make([]func(), 0, len(parts))
	for i, apply := range applies {
		if errs[i] == nil && apply != nil {
			ready = append(ready, apply)
		}
	}
	err := errors.Join(errs...)
	if len(ready) == 0 {
		return nil, err
	}

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for _, apply := range ready {
			apply()
		}
		d.updated[v] = d.now()
	}, err
}

func (d *Dashboard) refreshLive(ctx context.Context) (scheduler.CommitFunc, error) {
	d.mu.RLock()
	seeded := d.seeded
	d.mu.RUnlock()

	samples := d.latestSample
	if !seeded {
		samples = d.sampleHistory
	}
	return d.gather(ctx, ViewLive, samples, d.latestPrediction)
}

func (d *Dashboard) latestSample(ctx context.Context) (func(), error) {
	sample, err := d.src.FetchSample(ctx, d.cfg.DeviceID)
	if err != nil {
		return nil, err
	}
	return func() {
		if sample != nil {
			d.pushSample(*sample)
		}
	}, nil
}

// sampleHistory refills the windows from stored samples after activation.
func (d *Dashboard) sampleHistory(ctx context.Context) (func(), error) {
	history, err := d.src.FetchSamples(ctx, model.SampleFilter{
		DeviceID: d.cfg.DeviceID,
		Limit:    d.cfg.WindowCapacity,
	})
	if err != nil {
		return nil, err
	}
	return func() {
		if d.seeded {
			// an overlapping cycle seeded first; only the newest row can be new
			if len(history) > 0 {
				d.pushSample(history[0])
			}
			return
		}
		for i := len(history) - 1; i >= 0; i-- {
			d.pushSample(history[i])
		}
		d.seeded = true
	}, nil
}

// pushSample appends s to every window unless it is the sample pushed last.
// The latest endpoint keeps returning the same row until the watch reports again.
func (d *Dashboard) pushSample(s model.Sample) {
	if d.lastSample != nil && d.lastSample.ID == s.ID {
		return
	}
	for metric, w := range d.windows {
		appended, evicted := w.Push(s)
		if appended && evicted && d.metrics != nil {
			d.metrics.ObserveEviction(metric)
		}
	}
	d.lastSample = &s
}

func (d *Dashboard) latestPrediction(ctx context.Context) (func(), error) {
	pred, err := d.src.FetchPrediction(ctx, d.cfg.DeviceID)
	if err != nil {
		return nil, err
	}
	return func() { d.prediction = &pred }, nil
}

func (d *Dashboard) refreshAnalytics(ctx context.Context) (scheduler.CommitFunc, error) {
	period := d.Period()

	aggregatePart := func(ctx context.Context) (func(), error) {
		agg, err := d.src.FetchPeriodAggregate(ctx, period, d.cfg.AnalyticsDate)
		if err != nil {
			return nil, err
		}
		return func() {
			if d.current(period) {
				d.aggregate = &agg
			}
		}, nil
	}
	analyticsPart := func(ctx context.Context) (func(), error) {
		a, err := d.src.FetchWatchAnalytics(ctx, period, d.cfg.AnalyticsDate, d.cfg.DeviceID)
		if err != nil {
			return nil, err
		}
		return func() {
			if d.current(period) {
				d.analytics = &a
			}
		}, nil
	}
	return d.gather(ctx, ViewAnalytics, aggregatePart, analyticsPart)
}

// current reports whether period is still selected. Callers hold d.mu.
func (d *Dashboard) current(period model.Period) bool {
	if period != d.period {
		d.logger.Debug().Str("period", string(period)).Msg("dropping result of a deselected period")
		return false
	}
	return true
}

func (d *Dashboard) refreshHome(ctx context.Context) (scheduler.CommitFunc, error) {
	var start *time.Time
	if d.cfg.HistoryDays > 0 {
		s := d.now().UTC().AddDate(0, 0, -d.cfg.HistoryDays)
		start = &s
	}

	diaries := func(ctx context.Context) (func(), error) {
		entries, err := d.src.FetchEntries(ctx, start, nil)
		if err != nil {
			return nil, err
		}
		return func() { d.diaries = entries }, nil
	}
	labels := func(ctx context.Context) (func(), error) {
		l, err := d.src.FetchMoodLabels(ctx, model.LabelFilter{Start: start, Limit: d.cfg.LabelLimit})
		if err != nil {
			return nil, err
		}
		return func() { d.labels = l }, nil
	}
	return d.gather(ctx, ViewHome, diaries, labels)
}
