package aggregate

import (
	"testing"
	"time"

	"moodwatch/internal/model"
)

func TestMonthlyPercentages(t *testing.T) {
	agg := model.PeriodAggregate{
		Period: model.Monthly,
		Monthly: &model.MonthlyAggregate{
			Patterns: model.Distribution{{Emotion: "x", Value: 0.25}, {Emotion: "y", Value: 0.75}},
		},
	}

	rows := Adapt(agg).Monthly
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Emotion != "x" || rows[0].Percentage != 25 {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].Emotion != "y" || rows[1].Percentage != 75 {
		t.Fatalf("unexpected second row %+v", rows[1])
	}
}

func TestPercentIsExact(t *testing.T) {
	if got := Percent(0.07); got != 7 {
		t.Fatalf("0.07 should become 7, got %v", got)
	}
	if got := Percent(1.0 / 3.0); got < 33.33 || got > 33.34 {
		t.Fatalf("1/3 should be about 33.33, got %v", got)
	}
}

func TestDailyRowsKeepUpstreamOrder(t *testing.T) {
	agg := model.PeriodAggregate{
		Period: model.Daily,
		Daily: &model.DailyAggregate{
			Distribution: model.Distribution{
				{Emotion: model.Sadness, Value: 1},
				{Emotion: model.Joy, Value: 5},
				{Emotion: model.Fear, Value: 2},
			},
		},
	}

	rows := Adapt(agg).Daily
	want := []model.Emotion{model.Sadness, model.Joy, model.Fear}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, e := range want {
		if rows[i].Emotion != e {
			t.Fatalf("row %d: want %s, got %s", i, e, rows[i].Emotion)
		}
	}
	if rows[1].Count != 5 {
		t.Fatalf("joy count should be 5, got %d", rows[1].Count)
	}
}

func TestDailyRowsNoZeroFill(t *testing.T) {
	rows := DailyRows(&model.DailyAggregate{Distribution: model.Distribution{{Emotion: model.Calm, Value: 1}}})
	if len(rows) != 1 {
		t.Fatalf("only present emotions produce rows, got %d", len(rows))
	}
}

func TestWeeklyRowsAbsentIsNotZero(t *testing.T) {
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	week := &model.WeeklyAggregate{
		WeekStart: monday,
		Days: []model.DailyAggregate{
			{Date: monday, TotalEntries: 2, Distribution: model.Distribution{{Emotion: model.Joy, Value: 2}}},
			{Date: monday.AddDate(0, 0, 1), TotalEntries: 0},
			{Date: monday.AddDate(0, 0, 2), TotalEntries: 1, Distribution: model.Distribution{
				{Emotion: model.Anger, Value: 1},
				{Emotion: "скука", Value: 4},
			}},
		},
	}

	series := Adapt(model.PeriodAggregate{Period: model.Weekly, Weekly: week})
	if series.Len() != 3 {
		t.Fatalf("expected one row per day, got %d", series.Len())
	}

	first := series.Weekly[0]
	if first.Day != "Пн" {
		t.Fatalf("monday label expected, got %q", first.Day)
	}
	if c, ok := first.Count(model.Joy); !ok || c != 2 {
		t.Fatalf("joy should be 2 on monday, got %d %v", c, ok)
	}
	if _, ok := first.Count(model.Sadness); ok {
		t.Fatal("sadness was not reported on monday and must be absent")
	}
	if len(series.Weekly[1].Counts) != 0 {
		t.Fatalf("empty day should have no counts, got %v", series.Weekly[1].Counts)
	}
	if _, ok := series.Weekly[2].Count("скука"); ok {
		t.Fatal("labels outside the vocabulary must not become columns")
	}

	cols := series.Columns()
	if len(cols) != 2 || cols[0] != model.Joy || cols[1] != model.Anger {
		t.Fatalf("columns should be joy, anger in vocabulary order, got %v", cols)
	}
}

func TestAdaptNilPayloads(t *testing.T) {
	for _, p := range []model.Period{model.Daily, model.Weekly, model.Monthly} {
		s := Adapt(model.PeriodAggregate{Period: p})
		if s.Len() != 0 {
			t.Fatalf("%s: nil payload should give no rows", p)
		}
	}
}

func TestColorForIsStable(t *testing.T) {
	seen := make(map[string]model.Emotion)
	for _, e := range model.Vocabulary() {
		c := ColorFor(e)
		if c != ColorFor(e) {
			t.Fatalf("colour for %s changed between calls", e)
		}
		if other, dup := seen[c]; dup {
			t.Fatalf("%s and %s share colour %s", e, other, c)
		}
		seen[c] = e
	}
	if ColorFor("неизвестно") != NeutralColor {
		t.Fatal("unknown emotion should use the neutral colour")
	}
}
