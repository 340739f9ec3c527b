package api

import (
	"context"
	"fmt"
	"time"

	"moodwatch/internal/model"
)

// EntryFetcher lists diary entries, optionally bounded in time.
type EntryFetcher interface {
	FetchEntries(ctx context.Context, start, end *time.Time) ([]model.Diary, error)
}

// MoodLabelFetcher lists mood labels.
type MoodLabelFetcher interface {
	FetchMoodLabels(ctx context.Context, filter model.LabelFilter) ([]model.MoodLabel, error)
}

// SampleFetcher returns the latest watch sample, or nil when the device has none.
type SampleFetcher interface {
	FetchSample(ctx context.Context, deviceID string) (*model.Sample, error)
}

// SampleHistoryFetcher lists past watch samples, newest first.
type SampleHistoryFetcher interface {
	FetchSamples(ctx context.Context, filter model.SampleFilter) ([]model.Sample, error)
}

// AggregateFetcher returns the server statistics for a period.
type AggregateFetcher interface {
	FetchPeriodAggregate(ctx context.Context, period model.Period, target *time.Time) (model.PeriodAggregate, error)
}

// PredictionFetcher returns the current biometric emotion prediction.
type PredictionFetcher interface {
	FetchPrediction(ctx context.Context, deviceID string) (model.PredictionSnapshot, error)
}

// AnalyticsFetcher returns watch analytics for a period.
type AnalyticsFetcher interface {
	FetchWatchAnalytics(ctx context.Context, period model.Period, target *time.Time, deviceID string) (model.WatchAnalytics, error)
}

// Source bundles every read endpoint the dashboard polls.
type Source interface {
	EntryFetcher
	MoodLabelFetcher
	SampleFetcher
	SampleHistoryFetcher
	AggregateFetcher
	PredictionFetcher
	AnalyticsFetcher
}

// FetchError is a transport or HTTP failure of one endpoint.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Failures splits an error joined from several independent fetches into its parts.
func Failures(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
