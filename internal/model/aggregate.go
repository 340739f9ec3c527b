package model

import (
	"fmt"
	"strings"
	"time"
)

// Period is the granularity of a statistics snapshot.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// ParsePeriod accepts daily/weekly/monthly and the short day/week/month forms.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Short returns the day/week/month form used by the watch analytics endpoint.
func (p Period) Short() string {
	switch p {
	case Weekly:
		return "week"
	case Monthly:
		return "month"
	default:
		return "day"
	}
}

// DailyAggregate is the server summary of one day of diary entries.
type DailyAggregate struct {
	Date            time.Time
	TotalEntries    int
	DominantEmotion Emotion
	AvgIntensity    float64
	Distribution    Distribution
}

// HasDominant reports whether the server found a dominant emotion.
func (d DailyAggregate) HasDominant() bool {
	return d.DominantEmotion != NoData && d.DominantEmotion != ""
}

// Trend is one emotion's per-day series inside a week.
type Trend struct {
	Emotion Emotion
	Values  []float64
}

// WeeklyAggregate covers Monday..Sunday.
type WeeklyAggregate struct {
	WeekStart    time.Time
	WeekEnd      time.Time
	TotalEntries int
	Days         []DailyAggregate
	EmotionTrend []Trend
}

// MonthlyAggregate covers a calendar month. Patterns hold fractions in [0,1].
type MonthlyAggregate struct {
	Month        int
	Year         int
	TotalEntries int
	Weeks        []WeeklyAggregate
	Patterns     Distribution
}

// PeriodAggregate is a snapshot for one period; exactly one of the pointers is set.
// It is never patched: each refresh replaces it.
type PeriodAggregate struct {
	Period  Period
	Daily   *DailyAggregate
	Weekly  *WeeklyAggregate
	Monthly *MonthlyAggregate
}

// TotalEntries returns the entry count regardless of granularity.
func (p PeriodAggregate) TotalEntries() int {
	switch {
	case p.Daily != nil:
		return p.Daily.TotalEntries
	case p.Weekly != nil:
		return p.Weekly.TotalEntries
	case p.Monthly != nil:
		return p.Monthly.TotalEntries
	default:
		return 0
	}
}
