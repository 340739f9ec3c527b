package model

import "time"

// Metric names one biometric channel of a Sample.
type Metric string

const (
	HeartRate       Metric = "heart_rate"
	HRV             Metric = "hrv"
	SpO2            Metric = "spo2"
	StressLevel     Metric = "stress_level"
	Steps           Metric = "steps"
	Calories        Metric = "calories"
	Distance        Metric = "distance"
	ActiveMinutes   Metric = "active_minutes"
	SleepHours      Metric = "sleep_hours"
	SleepQuality    Metric = "sleep_quality"
	BodyBattery     Metric = "body_battery"
	SkinTemperature Metric = "skin_temperature"
	RespiratoryRate Metric = "respiratory_rate"
)

// Metrics lists every channel a watch may report.
var Metrics = []Metric{
	HeartRate, HRV, SpO2, StressLevel, Steps, Calories, Distance,
	ActiveMinutes, SleepHours, SleepQuality, BodyBattery, SkinTemperature, RespiratoryRate,
}

// ParseMetric resolves a metric by its wire name.
func ParseMetric(name string) (Metric, bool) {
	for _, m := range Metrics {
		if string(m) == name {
			return m, true
		}
	}
	return "", false
}

// Sample is one reading from a wearable. Any metric may be missing.
type Sample struct {
	ID        int64
	DeviceID  string
	Timestamp time.Time
	Values    map[Metric]float64
}

// Value returns the reading for m and whether the device reported it.
func (s Sample) Value(m Metric) (float64, bool) {
	v, ok := s.Values[m]
	return v, ok
}

// SampleFilter narrows a sample history query.
type SampleFilter struct {
	DeviceID string
	Start    *time.Time
	End      *time.Time
	Limit    int
}

// Point is one observed value in a time series.
type Point struct {
	Time  time.Time
	Value float64
}

// WatchAnalytics summarises watch data over a period.
type WatchAnalytics struct {
	PeriodStart        time.Time
	PeriodEnd          time.Time
	TotalRecords       int
	AvgHeartRate       *float64
	MinHeartRate       *float64
	MaxHeartRate       *float64
	AvgHRV             *float64
	AvgSpO2            *float64
	AvgStressLevel     *float64
	TotalSteps         int
	TotalCalories      int
	TotalDistance      float64
	TotalActiveMinutes int
	AvgSleepHours      *float64
	AvgSleepQuality    *float64
	AvgBodyBattery     *float64
	HeartRateTrend     []Point
	StressTrend        []Point
	ActivityTrend      []ActivityPoint
}

// ActivityPoint is the step and calorie count of one sample in the activity trend.
type ActivityPoint struct {
	Time     time.Time
	Steps    int
	Calories int
}
