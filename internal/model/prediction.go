package model

import "time"

// PredictionSnapshot is the biometric model output for the current moment.
// Probabilities need not sum to exactly one.
type PredictionSnapshot struct {
	Emotion       Emotion
	Confidence    float64
	Probabilities Distribution
	Timestamp     time.Time
}
