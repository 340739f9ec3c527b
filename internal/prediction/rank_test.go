package prediction

import (
	"math"
	"testing"

	"moodwatch/internal/model"
)

func TestRankStableTieBreak(t *testing.T) {
	dist := model.Distribution{{Emotion: "a", Value: 0.5}, {Emotion: "b", Value: 0.5}, {Emotion: "c", Value: 0.1}}

	got := Rank(dist, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Emotion != "a" || got[1].Emotion != "b" {
		t.Fatalf("expected [a b], got %+v", got)
	}
}

func TestRankDescending(t *testing.T) {
	dist := model.Distribution{
		{Emotion: model.Joy, Value: 0.1},
		{Emotion: model.Sadness, Value: 0.4},
		{Emotion: model.Calm, Value: 0.3},
		{Emotion: model.Fear, Value: 0.2},
	}

	got := Rank(dist, DefaultTopK)
	want := []model.Emotion{model.Sadness, model.Calm, model.Fear}
	for i, e := range want {
		if got[i].Emotion != e {
			t.Fatalf("position %d: want %s, got %s", i, e, got[i].Emotion)
		}
	}
}

func TestRankEmptyAndBadK(t *testing.T) {
	if got := Rank(nil, 3); got == nil || len(got) != 0 {
		t.Fatalf("empty distribution should give empty slice, got %#v", got)
	}
	if got := Rank(model.Distribution{{Emotion: "a", Value: 1}}, 0); len(got) != 0 {
		t.Fatalf("k=0 should give empty slice, got %v", got)
	}
	if got := Rank(model.Distribution{{Emotion: "a", Value: 1}}, 10); len(got) != 1 {
		t.Fatalf("k larger than input returns everything, got %v", got)
	}
}

func TestRankDoesNotRenormalise(t *testing.T) {
	got := Rank(model.Distribution{{Emotion: "a", Value: 0.2}, {Emotion: "b", Value: 0.1}}, 2)
	if got[0].Probability != 0.2 || got[1].Probability != 0.1 {
		t.Fatalf("probabilities must be passed through, got %+v", got)
	}
}

func TestRankNaNLast(t *testing.T) {
	got := Rank(model.Distribution{{Emotion: "a", Value: math.NaN()}, {Emotion: "b", Value: 0.1}}, 2)
	if got[0].Emotion != "b" {
		t.Fatalf("NaN should rank last, got %+v", got)
	}
}

func TestRankedPercent(t *testing.T) {
	if got := (Ranked{Probability: 0.16666}).Percent(1); got != "16.7%" {
		t.Fatalf("unexpected percent %q", got)
	}
	if got := (Ranked{Probability: math.NaN()}).Percent(1); got != "—" {
		t.Fatalf("NaN should render as a dash, got %q", got)
	}
}
