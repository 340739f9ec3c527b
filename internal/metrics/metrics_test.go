package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"moodwatch/internal/api"
	"moodwatch/internal/model"
)

func counterValue(t *testing.T, m *Metrics, family string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != family {
			continue
		}
		for _, metric := range f.GetMetric() {
			if matches(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range metric.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestHooksRecordOutcomes(t *testing.T) {
	m := New()
	hooks := m.Hooks()

	hooks.OnCommit("live")
	hooks.OnCommit("live")
	hooks.OnStale("analytics")
	hooks.OnError("home", &api.FetchError{Source: "entries", Err: errors.New("boom")})
	hooks.OnError("home", errors.New("plain"))

	if v := counterValue(t, m, "moodwatch_refresh_cycles_total", map[string]string{"view": "live", "result": "ok"}); v != 2 {
		t.Fatalf("live ok should be 2, got %v", v)
	}
	if v := counterValue(t, m, "moodwatch_stale_discards_total", map[string]string{"view": "analytics"}); v != 1 {
		t.Fatalf("stale discards should be 1, got %v", v)
	}
	if v := counterValue(t, m, "moodwatch_refresh_cycles_total", map[string]string{"view": "home", "result": "error"}); v != 2 {
		t.Fatalf("home errors should be 2, got %v", v)
	}
	if v := counterValue(t, m, "moodwatch_fetch_failures_total", map[string]string{"source": "entries"}); v != 1 {
		t.Fatalf("entries failures should be 1, got %v", v)
	}
	if v := counterValue(t, m, "moodwatch_fetch_failures_total", map[string]string{"source": "unknown"}); v != 1 {
		t.Fatalf("unknown failures should be 1, got %v", v)
	}
}

func TestJoinedFailuresCountEachSource(t *testing.T) {
	m := New()
	err := errors.Join(
		&api.FetchError{Source: "entries", Status: 500, Err: errors.New("down")},
		&api.FetchError{Source: "mood_labels", Status: 502, Err: errors.New("down")},
	)
	m.Hooks().OnError("home", err)

	if v := counterValue(t, m, "moodwatch_refresh_cycles_total", map[string]string{"view": "home", "result": "error"}); v != 1 {
		t.Fatalf("one failed cycle expected, got %v", v)
	}
	for _, source := range []string{"entries", "mood_labels"} {
		if v := counterValue(t, m, "moodwatch_fetch_failures_total", map[string]string{"source": source}); v != 1 {
			t.Fatalf("%s failures should be 1, got %v", source, v)
		}
	}
}

func TestHandlerExposesEvictions(t *testing.T) {
	m := New()
	m.ObserveEviction(model.HeartRate)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `moodwatch_window_evictions_total{metric="heart_rate"} 1`) {
		t.Fatalf("eviction counter missing from exposition:\n%s", body)
	}
}
