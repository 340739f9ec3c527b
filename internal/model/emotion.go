package model

// Emotion is a mood label as sent by the API.
type Emotion string

// The closed emotion vocabulary used by the text analyser and the biometric model.
const (
	Joy     Emotion = "радость"
	Sadness Emotion = "грусть"
	Anger   Emotion = "злость"
	Fear    Emotion = "страх"
	Calm    Emotion = "спокойствие"
	Anxiety Emotion = "тревога"

	// NoData is the placeholder dominant emotion of a day without entries.
	NoData Emotion = "нет данных"
)

var vocabulary = []Emotion{Joy, Sadness, Anger, Fear, Calm, Anxiety}

// Vocabulary returns the known emotions in their canonical order.
func Vocabulary() []Emotion {
	return append([]Emotion(nil), vocabulary...)
}

// Index returns the position of e in the vocabulary, or -1 when unknown.
func (e Emotion) Index() int {
	for i, v := range vocabulary {
		if v == e {
			return i
		}
	}
	return -1
}

// Known reports whether e belongs to the closed vocabulary.
func (e Emotion) Known() bool {
	return e.Index() >= 0
}

// Value is one entry of an ordered emotion mapping.
type Value struct {
	Emotion Emotion
	Value   float64
}

// Distribution is an emotion mapping that keeps the key order it was received in.
type Distribution []Value

// Get returns the value stored for e.
func (d Distribution) Get(e Emotion) (float64, bool) {
	for _, v := range d {
		if v.Emotion == e {
			return v.Value, true
		}
	}
	return 0, false
}

// Emotions lists the keys in order.
func (d Distribution) Emotions() []Emotion {
	out := make([]Emotion, 0, len(d))
	for _, v := range d {
		out = append(out, v.Emotion)
	}
	return out
}
