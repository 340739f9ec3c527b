package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"moodwatch/internal/model"
)

// The API emits naive ISO-8601 timestamps in UTC, sometimes with microseconds.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

func timeField(obj gjson.Result, field string) (time.Time, error) {
	v := obj.Get(field)
	if v.Type != gjson.String {
		return time.Time{}, fmt.Errorf("%s: missing timestamp", field)
	}
	t, err := parseTime(v.Str)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

func optionalFloat(obj gjson.Result, field string) *float64 {
	v := obj.Get(field)
	if v.Type != gjson.Number {
		return nil
	}
	f := v.Float()
	return &f
}

// distribution walks a JSON object in document order.
func distribution(obj gjson.Result) model.Distribution {
	dist := model.Distribution{}
	if !obj.IsObject() {
		return dist
	}
	obj.ForEach(func(key, value gjson.Result) bool {
		dist = append(dist, model.Value{Emotion: model.Emotion(key.String()), Value: value.Float()})
		return true
	})
	return dist
}

func decodeDiary(obj gjson.Result) (model.Diary, error) {
	created, err := timeField(obj, "created_at")
	if err != nil {
		return model.Diary{}, err
	}
	return model.Diary{
		ID:             obj.Get("id").Int(),
		CreatedAt:      created,
		Content:        obj.Get("content").String(),
		Emotion:        model.Emotion(obj.Get("emotion").String()),
		Intensity:      obj.Get("intensity").Float(),
		SentimentScore: obj.Get("sentiment_score").Float(),
	}, nil
}

func decodeMoodLabel(obj gjson.Result) (model.MoodLabel, error) {
	ts, err := timeField(obj, "timestamp")
	if err != nil {
		return model.MoodLabel{}, err
	}
	label := model.MoodLabel{
		ID:        obj.Get("id").Int(),
		DeviceID:  obj.Get("device_id").String(),
		Timestamp: ts,
		Emotion:   model.Emotion(obj.Get("emotion").String()),
		Intensity: obj.Get("intensity").Float(),
	}
	if note := obj.Get("note"); note.Type == gjson.String {
		text := note.Str
		label.Note = &text
	}
	return label, nil
}

func decodeSample(obj gjson.Result) (model.Sample, error) {
	ts, err := timeField(obj, "timestamp")
	if err != nil {
		return model.Sample{}, err
	}
	sample := model.Sample{
		ID:        obj.Get("id").Int(),
		DeviceID:  obj.Get("device_id").String(),
		Timestamp: ts,
		Values:    make(map[model.Metric]float64),
	}
	for _, m := range model.Metrics {
		if v := obj.Get(string(m)); v.Type == gjson.Number {
			sample.Values[m] = v.Float()
		}
	}
	return sample, nil
}

func decodeDaily(obj gjson.Result) (model.DailyAggregate, error) {
	date, err := timeField(obj, "date")
	if err != nil {
		return model.DailyAggregate{}, err
	}
	return model.DailyAggregate{
		Date:            date,
		TotalEntries:    int(obj.Get("total_entries").Int()),
		DominantEmotion: model.Emotion(obj.Get("dominant_emotion").String()),
		AvgIntensity:    obj.Get("avg_intensity").Float(),
		Distribution:    distribution(obj.Get("emotion_distribution")),
	}, nil
}

func decodeWeekly(obj gjson.Result) (model.WeeklyAggregate, error) {
	start, err := timeField(obj, "week_start")
	if err != nil {
		return model.WeeklyAggregate{}, err
	}
	end, err := timeField(obj, "week_end")
	if err != nil {
		return model.WeeklyAggregate{}, err
	}

	week := model.WeeklyAggregate{
		WeekStart:    start,
		WeekEnd:      end,
		TotalEntries: int(obj.Get("total_entries").Int()),
		Days:         []model.DailyAggregate{},
		EmotionTrend: []model.Trend{},
	}

	for _, day := range obj.Get("daily_stats").Array() {
		d, err := decodeDaily(day)
		if err != nil {
			return model.WeeklyAggregate{}, fmt.Errorf("daily_stats: %w", err)
		}
		week.Days = append(week.Days, d)
	}

	obj.Get("emotion_trend").ForEach(func(key, value gjson.Result) bool {
		trend := model.Trend{Emotion: model.Emotion(key.String())}
		for _, v := range value.Array() {
			trend.Values = append(trend.Values, v.Float())
		}
		week.EmotionTrend = append(week.EmotionTrend, trend)
		return true
	})
	return week, nil
}

func decodeMonthly(obj gjson.Result) (model.MonthlyAggregate, error) {
	month := model.MonthlyAggregate{
		Month:        int(obj.Get("month").Int()),
		Year:         int(obj.Get("year").Int()),
		TotalEntries: int(obj.Get("total_entries").Int()),
		Weeks:        []model.WeeklyAggregate{},
		Patterns:     distribution(obj.Get("emotion_patterns")),
	}
	for _, w := range obj.Get("weekly_stats").Array() {
		week, err := decodeWeekly(w)
		if err != nil {
			return model.MonthlyAggregate{}, fmt.Errorf("weekly_stats: %w", err)
		}
		month.Weeks = append(month.Weeks, week)
	}
	return month, nil
}

func decodePrediction(obj gjson.Result) (model.PredictionSnapshot, error) {
	snap := model.PredictionSnapshot{
		Emotion:       model.Emotion(obj.Get("emotion").String()),
		Confidence:    obj.Get("confidence").Float(),
		Probabilities: distribution(obj.Get("probabilities")),
	}
	if obj.Get("timestamp").Exists() {
		ts, err := timeField(obj, "timestamp")
		if err != nil {
			return model.PredictionSnapshot{}, err
		}
		snap.Timestamp = ts
	}
	return snap, nil
}

func decodeTrend(arr gjson.Result) []model.Point {
	points := []model.Point{}
	for _, item := range arr.Array() {
		t, err := timeField(item, "time")
		if err != nil {
			continue
		}
		points = append(points, model.Point{Time: t, Value: item.Get("value").Float()})
	}
	return points
}

func decodeActivity(arr gjson.Result) []model.ActivityPoint {
	points := []model.ActivityPoint{}
	for _, item := range arr.Array() {
		t, err := timeField(item, "time")
		if err != nil {
			continue
		}
		points = append(points, model.ActivityPoint{
			Time:     t,
			Steps:    int(item.Get("steps").Int()),
			Calories: int(item.Get("calories").Int()),
		})
	}
	return points
}

func decodeAnalytics(obj gjson.Result) (model.WatchAnalytics, error) {
	start, err := timeField(obj, "period_start")
	if err != nil {
		return model.WatchAnalytics{}, err
	}
	end, err := timeField(obj, "period_end")
	if err != nil {
		return model.WatchAnalytics{}, err
	}
	return model.WatchAnalytics{
		PeriodStart:        start,
		PeriodEnd:          end,
		TotalRecords:       int(obj.Get("total_records").Int()),
		AvgHeartRate:       optionalFloat(obj, "avg_heart_rate"),
		MinHeartRate:       optionalFloat(obj, "min_heart_rate"),
		MaxHeartRate:       optionalFloat(obj, "max_heart_rate"),
		AvgHRV:             optionalFloat(obj, "avg_hrv"),
		AvgSpO2:            optionalFloat(obj, "avg_spo2"),
		AvgStressLevel:     optionalFloat(obj, "avg_stress_level"),
		TotalSteps:         int(obj.Get("total_steps").Int()),
		TotalCalories:      int(obj.Get("total_calories").Int()),
		TotalDistance:      obj.Get("total_distance").Float(),
		TotalActiveMinutes: int(obj.Get("total_active_minutes").Int()),
		AvgSleepHours:      optionalFloat(obj, "avg_sleep_hours"),
		AvgSleepQuality:    optionalFloat(obj, "avg_sleep_quality"),
		AvgBodyBattery:     optionalFloat(obj, "avg_body_battery"),
		HeartRateTrend:     decodeTrend(obj.Get("heart_rate_trend")),
		StressTrend:        decodeTrend(obj.Get("stress_trend")),
		ActivityTrend:      decodeActivity(obj.Get("activity_trend")),
	}, nil
}
