package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"moodwatch/internal/model"
)

// FetchEntries lists diary entries between start and end (both optional).
func (c *Client) FetchEntries(ctx context.Context, start, end *time.Time) ([]model.Diary, error) {
	query := url.Values{}
	setTime(query, "start_date", start)
	setTime(query, "end_date", end)

	res, err := c.get(ctx, "entries", entriesPath, query)
	if err != nil {
		return nil, err
	}

	entries := make([]model.Diary, 0, len(res.Array()))
	for _, item := range res.Array() {
		d, err := decodeDiary(item)
		if err != nil {
			return nil, &FetchError{Source: "entries", Err: fmt.Errorf("decode entry: %w", err)}
		}
		entries = append(entries, d)
	}
	return entries, nil
}

// FetchMoodLabels lists mood labels matching filter.
func (c *Client) FetchMoodLabels(ctx context.Context, filter model.LabelFilter) ([]model.MoodLabel, error) {
	query := url.Values{}
	if filter.DeviceID != "" {
		query.Set("device_id", filter.DeviceID)
	}
	setTime(query, "start_date", filter.Start)
	setTime(query, "end_date", filter.End)
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	res, err := c.get(ctx, "mood_labels", emotionsPath, query)
	if err != nil {
		return nil, err
	}

	labels := make([]model.MoodLabel, 0, len(res.Array()))
	for _, item := range res.Array() {
		l, err := decodeMoodLabel(item)
		if err != nil {
			return nil, &FetchError{Source: "mood_labels", Err: fmt.Errorf("decode label: %w", err)}
		}
		labels = append(labels, l)
	}
	return labels, nil
}

// FetchSample returns the most recent watch reading. A nil sample with a nil
// error means the device has not reported anything yet.
func (c *Client) FetchSample(ctx context.Context, deviceID string) (*model.Sample, error) {
	query := url.Values{}
	if deviceID != "" {
		query.Set("device_id", deviceID)
	}

	res, err := c.get(ctx, "sample", latestPath, query)
	if err != nil {
		return nil, err
	}
	if res.Type == gjson.Null || !res.IsObject() {
		return nil, nil
	}

	sample, err := decodeSample(res)
	if err != nil {
		return nil, &FetchError{Source: "sample", Err: fmt.Errorf("decode sample: %w", err)}
	}
	return &sample, nil
}

// FetchSamples lists stored watch samples, newest first. The server caps the
// result at 100 when filter.Limit is zero.
func (c *Client) FetchSamples(ctx context.Context, filter model.SampleFilter) ([]model.Sample, error) {
	query := url.Values{}
	if filter.DeviceID != "" {
		query.Set("device_id", filter.DeviceID)
	}
	setTime(query, "start_date", filter.Start)
	setTime(query, "end_date", filter.End)
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	res, err := c.get(ctx, "samples", watchPath, query)
	if err != nil {
		return nil, err
	}
	return decodeSamples("samples", res)
}

func decodeSamples(source string, res gjson.Result) ([]model.Sample, error) {
	samples := make([]model.Sample, 0, len(res.Array()))
	for _, item := range res.Array() {
		s, err := decodeSample(item)
		if err != nil {
			return nil, &FetchError{Source: source, Err: fmt.Errorf("decode sample: %w", err)}
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// FetchPeriodAggregate returns the diary statistics for the period containing target
// (today when nil).
func (c *Client) FetchPeriodAggregate(ctx context.Context, period model.Period, target *time.Time) (model.PeriodAggregate, error) {
	query := url.Values{}
	if target != nil {
		query.Set("target_date", target.Format("2006-01-02"))
	}

	source := "stats_" + string(period)
	res, err := c.get(ctx, source, fmt.Sprintf(statsPathFmt, period), query)
	if err != nil {
		return model.PeriodAggregate{}, err
	}

	agg := model.PeriodAggregate{Period: period}
	switch period {
	case model.Daily:
		day, derr := decodeDaily(res)
		err = derr
		agg.Daily = &day
	case model.Weekly:
		week, derr := decodeWeekly(res)
		err = derr
		agg.Weekly = &week
	case model.Monthly:
		month, derr := decodeMonthly(res)
		err = derr
		agg.Monthly = &month
	default:
		err = fmt.Errorf("unsupported period %q", period)
	}
	if err != nil {
		return model.PeriodAggregate{}, &FetchError{Source: source, Err: fmt.Errorf("decode aggregate: %w", err)}
	}
	return agg, nil
}

// FetchPrediction asks the server for the current biometric emotion estimate.
func (c *Client) FetchPrediction(ctx context.Context, deviceID string) (model.PredictionSnapshot, error) {
	query := url.Values{}
	if deviceID != "" {
		query.Set("device_id", deviceID)
	}

	res, err := c.get(ctx, "prediction", predictPath, query)
	if err != nil {
		return model.PredictionSnapshot{}, err
	}

	snap, err := decodePrediction(res)
	if err != nil {
		return model.PredictionSnapshot{}, &FetchError{Source: "prediction", Err: fmt.Errorf("decode prediction: %w", err)}
	}
	return snap, nil
}

// FetchWatchAnalytics returns aggregated watch metrics for the period containing target.
func (c *Client) FetchWatchAnalytics(ctx context.Context, period model.Period, target *time.Time, deviceID string) (model.WatchAnalytics, error) {
	query := url.Values{}
	query.Set("period", period.Short())
	setTime(query, "target_date", target)
	if deviceID != "" {
		query.Set("device_id", deviceID)
	}

	res, err := c.get(ctx, "watch_analytics", analyticsPath, query)
	if err != nil {
		return model.WatchAnalytics{}, err
	}

	analytics, err := decodeAnalytics(res)
	if err != nil {
		return model.WatchAnalytics{}, &FetchError{Source: "watch_analytics", Err: fmt.Errorf("decode analytics: %w", err)}
	}
	return analytics, nil
}

func setTime(query url.Values, key string, t *time.Time) {
	if t == nil {
		return
	}
	query.Set(key, t.UTC().Format(time.RFC3339))
}
