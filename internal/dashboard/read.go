package dashboard

import (
	"moodwatch/internal/aggregate"
	"moodwatch/internal/model"
	"moodwatch/internal/prediction"
	"moodwatch/internal/timeline"
)

// MergedTimeline merges the latest diary and mood label snapshots, newest first.
func (d *Dashboard) MergedTimeline() []model.Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return timeline.Merge(d.diaries, d.labels)
}

// WindowSnapshot returns the live series of metric. ok is false when the
// metric is not charted.
func (d *Dashboard) WindowSnapshot(metric model.Metric) (points []model.Point, ok bool) {
	w, ok := d.windows[metric]
	if !ok {
		return nil, false
	}
	return w.Snapshot(), true
}

// LiveMetrics returns the charted metrics in configured order.
func (d *Dashboard) LiveMetrics() []model.Metric {
	return append([]model.Metric(nil), d.cfg.LiveMetrics...)
}

// LatestSample returns the last sample pushed into the windows.
func (d *Dashboard) LatestSample() (model.Sample, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.lastSample == nil {
		return model.Sample{}, false
	}
	return *d.lastSample, true
}

// AdaptedSeries returns the current period aggregate as renderable rows.
// The series is empty until the selected period has been fetched.
func (d *Dashboard) AdaptedSeries() aggregate.Series {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.aggregate == nil {
		return aggregate.Series{Period: d.period}
	}
	return aggregate.Adapt(*d.aggregate)
}

// Aggregate returns the raw period aggregate.
func (d *Dashboard) Aggregate() (model.PeriodAggregate, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.aggregate == nil {
		return model.PeriodAggregate{}, false
	}
	return *d.aggregate, true
}

// Analytics returns the watch analytics of the selected period.
func (d *Dashboard) Analytics() (model.WatchAnalytics, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.analytics == nil {
		return model.WatchAnalytics{}, false
	}
	return *d.analytics, true
}

// Prediction returns the latest prediction snapshot.
func (d *Dashboard) Prediction() (model.PredictionSnapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.prediction == nil {
		return model.PredictionSnapshot{}, false
	}
	return *d.prediction, true
}

// RankedPredictions returns the top k emotions of the latest prediction.
// k <= 0 uses the configured default.
func (d *Dashboard) RankedPredictions(k int) []prediction.Ranked {
	if k <= 0 {
		k = d.cfg.TopK
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.prediction == nil {
		return []prediction.Ranked{}
	}
	return prediction.Rank(d.prediction.Probabilities, k)
}
