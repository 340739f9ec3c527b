package window

import (
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"

	"moodwatch/internal/model"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func hrSample(i int, hr float64) model.Sample {
	return model.Sample{
		ID:        int64(i),
		Timestamp: base.Add(time.Duration(i) * time.Second),
		Values:    map[model.Metric]float64{model.HeartRate: hr},
	}
}

func TestWindowEvictsOldestAfterCapacity(t *testing.T) {
	w := New(3, model.HeartRate)
	for i := 1; i <= 4; i++ {
		w.Push(hrSample(i, float64(60+i)))
	}

	points := w.Snapshot()
	if len(points) != 3 {
		t.Fatalf("window should hold 3 points, got %d", len(points))
	}
	if points[0].Value != 62 {
		t.Fatalf("first point should be the 2nd pushed value 62, got %v", points[0].Value)
	}
	if points[2].Value != 64 {
		t.Fatalf("last point should be 64, got %v", points[2].Value)
	}
}

func TestWindowDefaultCapacity(t *testing.T) {
	w := New(0, model.HeartRate)
	if w.Cap() != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, w.Cap())
	}
	for i := 0; i < DefaultCapacity+1; i++ {
		w.Push(hrSample(i, float64(i)))
	}
	points := w.Snapshot()
	if len(points) != DefaultCapacity || points[0].Value != 1 {
		t.Fatalf("unexpected window after %d pushes: len=%d first=%v", DefaultCapacity+1, len(points), points[0].Value)
	}
}

func TestWindowDropsAbsentMetric(t *testing.T) {
	w := New(5, model.HeartRate)
	w.Push(hrSample(1, 70))

	appended, evicted := w.Push(model.Sample{
		ID:        2,
		Timestamp: base,
		Values:    map[model.Metric]float64{model.Steps: 120},
	})
	if appended || evicted {
		t.Fatal("sample without heart rate must not be appended")
	}
	if w.Len() != 1 {
		t.Fatalf("length should stay 1, got %d", w.Len())
	}
}

func TestWindowKeepsArrivalOrder(t *testing.T) {
	w := New(5, model.HeartRate)
	w.Push(hrSample(5, 80))
	w.Push(hrSample(1, 60))

	points := w.Snapshot()
	if points[0].Value != 80 || points[1].Value != 60 {
		t.Fatalf("points must follow arrival order, got %+v", points)
	}
}

func TestWindowSnapshotIsACopy(t *testing.T) {
	w := New(2, model.HeartRate)
	w.Push(hrSample(1, 70))

	snap := w.Snapshot()
	snap[0].Value = 999

	if again := w.Snapshot(); again[0].Value != 70 {
		t.Fatalf("mutating a snapshot changed the window: %v", again[0].Value)
	}
}

func TestWindowReset(t *testing.T) {
	w := New(2, model.HeartRate)
	w.Push(hrSample(1, 70))
	w.Reset()
	if w.Len() != 0 {
		t.Fatal("reset should empty the window")
	}
	if snap := w.Snapshot(); len(snap) != 0 {
		t.Fatalf("empty window should snapshot empty, got %+v", snap)
	}
}

func TestWindowConcurrentReaders(t *testing.T) {
	w := New(DefaultCapacity, model.HeartRate)
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if n := len(w.Snapshot()); n > DefaultCapacity {
					t.Errorf("snapshot exceeded capacity: %d", n)
					return
				}
			}
		}()
	}
	for i := 0; i < 200; i++ {
		w.Push(hrSample(i, float64(i)))
	}
	wg.Wait()
}

func TestWindowPropertyBoundedFIFO(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 30).Draw(rt, "capacity")
		present := rapid.SliceOfN(rapid.Bool(), 0, 100).Draw(rt, "present")

		w := New(capacity, model.HeartRate)
		var expected []float64
		for i, ok := range present {
			s := model.Sample{ID: int64(i), Timestamp: base, Values: map[model.Metric]float64{}}
			if ok {
				s.Values[model.HeartRate] = float64(i)
				expected = append(expected, float64(i))
			}
			w.Push(s)
		}
		if len(expected) > capacity {
			expected = expected[len(expected)-capacity:]
		}

		got := w.Snapshot()
		if len(got) > capacity {
			rt.Fatalf("window holds %d > capacity %d", len(got), capacity)
		}
		if len(got) != len(expected) {
			rt.Fatalf("expected %d points, got %d", len(expected), len(got))
		}
		for i := range got {
			if got[i].Value != expected[i] {
				rt.Fatalf("point %d: expected %v, got %v", i, expected[i], got[i].Value)
			}
		}
	})
}
