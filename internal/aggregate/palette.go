package aggregate

import "moodwatch/internal/model"

// palette is indexed by vocabulary position so an emotion keeps its colour across renders.
var palette = [...]string{
	"#FFD54F", // радость
	"#64B5F6", // грусть
	"#E57373", // злость
	"#9575CD", // страх
	"#81C784", // спокойствие
	"#FFB74D", // тревога
}

// NeutralColor is used for labels outside the vocabulary.
const NeutralColor = "#B0BEC5"

// ColorFor returns the chart colour for e.
func ColorFor(e model.Emotion) string {
	idx := e.Index()
	if idx < 0 || idx >= len(palette) {
		return NeutralColor
	}
	return palette[idx]
}
