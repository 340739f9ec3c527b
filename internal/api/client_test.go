package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"moodwatch/internal/model"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/", Timeout: time.Second}, noopLogger())
}

func TestFetchEntries(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != entriesPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatal("request id header missing")
		}
		gotQuery = r.URL.Query().Get("start_date")
		_, _ = w.Write([]byte(`[
			{"id": 2, "created_at": "2025-03-01T10:15:00.123456", "content": "хороший день", "emotion": "радость", "intensity": 0.8, "sentiment_score": 0.6},
			{"id": 1, "created_at": "2025-03-01T08:00:00", "content": "утро", "emotion": "спокойствие", "intensity": 0.4, "sentiment_score": 0.1}
		]`))
	})

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	entries, err := c.FetchEntries(context.Background(), &start, nil)
	if err != nil {
		t.Fatalf("fetch entries: %v", err)
	}
	if gotQuery != "2025-03-01T00:00:00Z" {
		t.Fatalf("start_date not forwarded, got %q", gotQuery)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	want := time.Date(2025, 3, 1, 10, 15, 0, 123456000, time.UTC)
	if !entries[0].CreatedAt.Equal(want) {
		t.Fatalf("naive timestamp should parse as UTC, got %v", entries[0].CreatedAt)
	}
	if entries[0].Emotion != model.Joy {
		t.Fatalf("unexpected emotion %q", entries[0].Emotion)
	}
}

func TestFetchMoodLabels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("device_id") != "watch-1" || r.URL.Query().Get("limit") != "50" {
			t.Fatalf("filter not forwarded: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[
			{"id": 5, "device_id": "watch-1", "timestamp": "2025-03-01T11:00:00Z", "emotion": "тревога", "intensity": 0.7, "note": "перед встречей"},
			{"id": 4, "device_id": "watch-1", "timestamp": "2025-03-01T09:00:00Z", "emotion": "спокойствие", "intensity": 0.2, "note": null}
		]`))
	})

	labels, err := c.FetchMoodLabels(context.Background(), model.LabelFilter{DeviceID: "watch-1", Limit: 50})
	if err != nil {
		t.Fatalf("fetch labels: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].Note == nil || *labels[0].Note != "перед встречей" {
		t.Fatalf("note should be decoded, got %v", labels[0].Note)
	}
	if labels[1].Note != nil {
		t.Fatal("null note should stay nil")
	}
}

func TestFetchSampleOptionalMetrics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 9, "device_id": "w", "timestamp": "2025-03-01T12:00:00", "heart_rate": 72, "hrv": null, "steps": 1200}`))
	})

	sample, err := c.FetchSample(context.Background(), "w")
	if err != nil {
		t.Fatalf("fetch sample: %v", err)
	}
	if sample == nil {
		t.Fatal("sample should not be nil")
	}
	if hr, ok := sample.Value(model.HeartRate); !ok || hr != 72 {
		t.Fatalf("heart rate should be 72, got %v %v", hr, ok)
	}
	if _, ok := sample.Value(model.HRV); ok {
		t.Fatal("null hrv must be absent")
	}
	if _, ok := sample.Value(model.SpO2); ok {
		t.Fatal("missing spo2 must be absent")
	}
}

func TestFetchSampleNull(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	sample, err := c.FetchSample(context.Background(), "")
	if err != nil {
		t.Fatalf("null body is not an error: %v", err)
	}
	if sample != nil {
		t.Fatalf("expected nil sample, got %+v", sample)
	}
}

func TestFetchDailyAggregateKeepsKeyOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stats/daily" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("target_date") != "2025-03-01" {
			t.Fatalf("target_date should be a plain date, got %q", r.URL.Query().Get("target_date"))
		}
		_, _ = w.Write([]byte(`{"date": "2025-03-01", "total_entries": 6, "dominant_emotion": "страх", "avg_intensity": 0.5,
			"emotion_distribution": {"страх": 3, "радость": 1, "грусть": 2}}`))
	})

	target := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	agg, err := c.FetchPeriodAggregate(context.Background(), model.Daily, &target)
	if err != nil {
		t.Fatalf("fetch daily: %v", err)
	}
	if agg.Daily == nil {
		t.Fatal("daily payload missing")
	}
	got := agg.Daily.Distribution.Emotions()
	want := []model.Emotion{model.Fear, model.Joy, model.Sadness}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("distribution order must follow the document, got %v", got)
		}
	}
}

func TestFetchMonthlyAggregate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"month": 3, "year": 2025, "total_entries": 4,
			"weekly_stats": [{"week_start": "2025-02-24", "week_end": "2025-03-02", "total_entries": 4,
				"daily_stats": [{"date": "2025-02-24", "total_entries": 0, "dominant_emotion": "нет данных", "avg_intensity": 0.0, "emotion_distribution": {}}],
				"emotion_trend": {"радость": [0, 0, 0, 0, 0, 3, 1]}}],
			"emotion_patterns": {"радость": 0.75, "грусть": 0.25}}`))
	})

	agg, err := c.FetchPeriodAggregate(context.Background(), model.Monthly, nil)
	if err != nil {
		t.Fatalf("fetch monthly: %v", err)
	}
	m := agg.Monthly
	if m == nil || m.Month != 3 || len(m.Weeks) != 1 {
		t.Fatalf("unexpected monthly payload %+v", m)
	}
	if m.Weeks[0].Days[0].HasDominant() {
		t.Fatal("placeholder dominant emotion should not count as dominant")
	}
	if len(m.Weeks[0].EmotionTrend) != 1 || len(m.Weeks[0].EmotionTrend[0].Values) != 7 {
		t.Fatalf("emotion trend not decoded: %+v", m.Weeks[0].EmotionTrend)
	}
	if v, ok := m.Patterns.Get(model.Joy); !ok || v != 0.75 {
		t.Fatalf("pattern for joy should be 0.75, got %v", v)
	}
}

func TestFetchPrediction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"emotion": "спокойствие", "confidence": 0.41,
			"probabilities": {"радость": 0.1, "грусть": 0.1, "злость": 0.05, "страх": 0.04, "спокойствие": 0.41, "тревога": 0.3},
			"timestamp": "2025-03-01T12:00:00.5"}`))
	})

	snap, err := c.FetchPrediction(context.Background(), "")
	if err != nil {
		t.Fatalf("fetch prediction: %v", err)
	}
	if snap.Emotion != model.Calm || snap.Confidence != 0.41 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if len(snap.Probabilities) != 6 || snap.Probabilities[0].Emotion != model.Joy {
		t.Fatalf("probabilities should keep document order, got %+v", snap.Probabilities)
	}
}

func TestFetchWatchAnalytics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("period") != "week" {
			t.Fatalf("period should use the short form, got %q", r.URL.Query().Get("period"))
		}
		_, _ = w.Write([]byte(`{"period_start": "2025-02-24T00:00:00", "period_end": "2025-03-02T23:59:59.999999",
			"total_records": 2, "avg_heart_rate": 70.5, "min_heart_rate": 65, "max_heart_rate": 76, "avg_hrv": null,
			"avg_spo2": null, "avg_stress_level": null, "total_steps": 300, "total_calories": 20, "total_distance": 0.2,
			"total_active_minutes": 3, "avg_sleep_hours": null, "avg_sleep_quality": null, "avg_body_battery": null,
			"heart_rate_trend": [{"time": "2025-02-24T10:00:00", "value": 65}, {"time": "2025-02-24T11:00:00", "value": 76}],
			"stress_trend": [], "activity_trend": [{"time": "2025-02-24T10:00:00", "steps": 120, "calories": 8}]}`))
	})

	a, err := c.FetchWatchAnalytics(context.Background(), model.Weekly, nil, "")
	if err != nil {
		t.Fatalf("fetch analytics: %v", err)
	}
	if a.AvgHeartRate == nil || *a.AvgHeartRate != 70.5 {
		t.Fatalf("avg heart rate not decoded: %v", a.AvgHeartRate)
	}
	if a.AvgHRV != nil {
		t.Fatal("null average should stay nil")
	}
	if len(a.HeartRateTrend) != 2 || a.HeartRateTrend[1].Value != 76 {
		t.Fatalf("trend not decoded: %+v", a.HeartRateTrend)
	}
	if len(a.ActivityTrend) != 1 || a.ActivityTrend[0].Steps != 120 || a.ActivityTrend[0].Calories != 8 {
		t.Fatalf("activity trend not decoded: %+v", a.ActivityTrend)
	}
}

func TestFetchSamplesHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != watchPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "20" || q.Get("device_id") != "w1" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[
			{"id": 9, "device_id": "w1", "timestamp": "2025-03-01T10:01:00", "heart_rate": 75},
			{"id": 8, "device_id": "w1", "timestamp": "2025-03-01T10:00:00", "heart_rate": 72, "hrv": 41.5}
		]`))
	})

	samples, err := c.FetchSamples(context.Background(), model.SampleFilter{DeviceID: "w1", Limit: 20})
	if err != nil {
		t.Fatalf("fetch samples: %v", err)
	}
	if len(samples) != 2 || samples[0].ID != 9 {
		t.Fatalf("history should keep server order, got %+v", samples)
	}
	if _, ok := samples[0].Value(model.HRV); ok {
		t.Fatal("missing metric must stay absent")
	}
	if v, _ := samples[1].Value(model.HRV); v != 41.5 {
		t.Fatalf("hrv not decoded, got %v", v)
	}
}

func TestCreateSampleSendsOnlyReportedMetrics(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != watchPath {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"id": 5, "device_id": "default", "timestamp": "2025-03-01T10:00:00", "heart_rate": 72, "hrv": 40.5}`))
	})

	s, err := c.CreateSample(context.Background(), SampleInput{
		Values: map[model.Metric]float64{model.HeartRate: 72, model.HRV: 40.5},
	})
	if err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if s.ID != 5 {
		t.Fatalf("unexpected sample %+v", s)
	}
	if body["device_id"] != DefaultDeviceID {
		t.Fatalf("device should default, got %v", body["device_id"])
	}
	if _, ok := body["timestamp"]; ok {
		t.Fatal("timestamp should be left to the server")
	}
	if _, ok := body["steps"]; ok {
		t.Fatal("unreported metrics must not be sent")
	}
	if body["heart_rate"] != float64(72) || body["hrv"] != 40.5 {
		t.Fatalf("unexpected metric values %v", body)
	}
}

func TestCreateSamplesBatch(t *testing.T) {
	var body struct {
		Data []map[string]any `json:"data"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != watchBatchPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`[
			{"id": 1, "device_id": "w", "timestamp": "2025-03-01T10:00:00", "steps": 10},
			{"id": 2, "device_id": "w", "timestamp": "2025-03-01T10:01:00", "steps": 25}
		]`))
	})

	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	got, err := c.CreateSamples(context.Background(), []SampleInput{
		{DeviceID: "w", Timestamp: &ts, Values: map[model.Metric]float64{model.Steps: 10}},
		{DeviceID: "w", Values: map[model.Metric]float64{model.Steps: 25}},
	})
	if err != nil {
		t.Fatalf("create samples: %v", err)
	}
	if len(got) != 2 || len(body.Data) != 2 {
		t.Fatalf("expected two samples each way, got %d and %d", len(got), len(body.Data))
	}
	if body.Data[0]["timestamp"] != "2025-03-01T10:00:00Z" {
		t.Fatalf("timestamp not sent, got %v", body.Data[0]["timestamp"])
	}
	if _, err := c.CreateSamples(context.Background(), nil); err == nil {
		t.Fatal("empty batch should be rejected")
	}
}

func TestHTTPErrorIsFetchError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Error predicting emotion: boom"})
	})

	_, err := c.FetchPrediction(context.Background(), "")
	if err == nil {
		t.Fatal("HTTP 500 should fail")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.Status != http.StatusInternalServerError || fe.Source != "prediction" {
		t.Fatalf("unexpected fetch error %+v", fe)
	}
	if fe.Err.Error() != "Error predicting emotion: boom" {
		t.Fatalf("detail should be extracted, got %q", fe.Err.Error())
	}
}

func TestInvalidJSONIsFetchError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	if _, err := c.FetchEntries(context.Background(), nil, nil); err == nil {
		t.Fatal("invalid JSON should fail")
	}
}

func TestCreateMoodLabelDefaultsDevice(t *testing.T) {
	var got MoodLabelInput
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"id": 1, "device_id": "default", "timestamp": "2025-03-01T12:00:00", "emotion": "радость", "intensity": 0.9, "note": null}`))
	})

	label, err := c.CreateMoodLabel(context.Background(), MoodLabelInput{Emotion: model.Joy, Intensity: 0.9})
	if err != nil {
		t.Fatalf("create label: %v", err)
	}
	if got.DeviceID != DefaultDeviceID {
		t.Fatalf("device id should default to %q, got %q", DefaultDeviceID, got.DeviceID)
	}
	if label.ID != 1 || label.Emotion != model.Joy {
		t.Fatalf("unexpected label %+v", label)
	}
}

func TestCreateEntry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["content"] != "всё отлично" {
			t.Fatalf("content not sent: %v", body)
		}
		_, _ = w.Write([]byte(`{"id": 3, "created_at": "2025-03-01T12:00:00", "content": "всё отлично", "emotion": "радость", "intensity": 0.9, "sentiment_score": 0.8}`))
	})

	entry, err := c.CreateEntry(context.Background(), "всё отлично")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if entry.ID != 3 || entry.Emotion != model.Joy {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2025-03-01T10:00:00Z":       time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		"2025-03-01T13:00:00+03:00":  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		"2025-03-01T10:00:00.000001": time.Date(2025, 3, 1, 10, 0, 0, 1000, time.UTC),
		"2025-03-01":                 time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		"2025-03-01 10:00:00.5":      time.Date(2025, 3, 1, 10, 0, 0, 500000000, time.UTC),
	}
	for raw, want := range cases {
		got, err := parseTime(raw)
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: want %v, got %v", raw, want, got)
		}
	}
	if _, err := parseTime("yesterday"); err == nil {
		t.Fatal("garbage should not parse")
	}
}
