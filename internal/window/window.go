// Package window keeps a bounded, arrival-ordered series of recent samples for live charts.
package window

import (
	"sync"

	"moodwatch/internal/model"
)

// DefaultCapacity is the number of points a live chart shows.
const DefaultCapacity = 20

// Window is a fixed-capacity FIFO of observed values of one metric.
// Points stay in arrival order; they are never re-sorted by sample time.
type Window struct {
	metric model.Metric

	mu    sync.RWMutex
	buf   []model.Point
	head  int
	count int
}

// New builds a window tracking metric. A non-positive capacity falls back to DefaultCapacity.
func New(capacity int, metric model.Metric) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Window{metric: metric, buf: make([]model.Point, capacity)}
}

// Metric returns the tracked metric.
func (w *Window) Metric() model.Metric {
	return w.metric
}

// Cap returns the fixed capacity.
func (w *Window) Cap() int {
	return len(w.buf)
}

// Len returns the number of points held.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.count
}

// Push appends the sample's value when the tracked metric is present.
// It reports whether a point was appended and whether the oldest point was evicted.
func (w *Window) Push(s model.Sample) (appended, evicted bool) {
	value, ok := s.Value(w.metric)
	if !ok {
		return false, false
	}
	return true, w.PushPoint(model.Point{Time: s.Timestamp, Value: value})
}

// PushPoint appends p, evicting the oldest point when full. It reports the eviction.
func (w *Window) PushPoint(p model.Point) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	size := len(w.buf)
	if w.count < size {
		w.buf[(w.head+w.count)%size] = p
		w.count++
		return false
	}
	w.buf[w.head] = p
	w.head = (w.head + 1) % size
	return true
}

// Snapshot copies the points oldest first. It does not modify the window.
func (w *Window) Snapshot() []model.Point {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]model.Point, w.count)
	size := len(w.buf)
	for i := 0; i < w.count; i++ {
		out[i] = w.buf[(w.head+i)%size]
	}
	return out
}

// Reset drops every point.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.head = 0
	w.count = 0
}
