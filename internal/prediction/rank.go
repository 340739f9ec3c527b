// Package prediction orders emotion probabilities for display.
package prediction

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"moodwatch/internal/model"
)

// DefaultTopK is how many emotions the prediction card lists.
const DefaultTopK = 3

// Ranked is one emotion of the ranked prediction.
type Ranked struct {
	Emotion     model.Emotion
	Probability float64
}

// Percent formats the probability for display; rounding happens only here.
func (r Ranked) Percent(places int32) string {
	if math.IsNaN(r.Probability) || math.IsInf(r.Probability, 0) {
		return "—"
	}
	return decimal.NewFromFloat(r.Probability).Mul(decimal.NewFromInt(100)).StringFixed(places) + "%"
}

// Rank returns the k most probable emotions, highest first. Equal
// probabilities keep their original key order. Values are not renormalised.
// An empty distribution or non-positive k yields an empty slice.
func Rank(dist model.Distribution, k int) []Ranked {
	if k <= 0 || len(dist) == 0 {
		return []Ranked{}
	}

	ranked := make([]Ranked, len(dist))
	for i, v := range dist {
		ranked[i] = Ranked{Emotion: v.Emotion, Probability: v.Value}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return higher(ranked[i].Probability, ranked[j].Probability)
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// higher orders a before b; NaN sinks to the end.
func higher(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a > b
	}
}
