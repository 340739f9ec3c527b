package model

import (
	"strconv"
	"time"
)

// Kind tags the concrete type behind a Record.
type Kind int

const (
	KindDiary Kind = iota
	KindMoodLabel
)

func (k Kind) String() string {
	switch k {
	case KindDiary:
		return "diary"
	case KindMoodLabel:
		return "mood"
	default:
		return "unknown"
	}
}

// Record is a timestamped piece of user input: either a Diary or a MoodLabel.
// The interface is sealed; switch on the concrete type to handle each case.
type Record interface {
	Kind() Kind
	RecordID() int64
	At() time.Time
	Key() string
	record()
}

// Diary is a free-text entry analysed by the server.
type Diary struct {
	ID             int64
	CreatedAt      time.Time
	Content        string
	Emotion        Emotion
	Intensity      float64
	SentimentScore float64
}

// MoodLabel is a discrete mood reported by the user.
type MoodLabel struct {
	ID        int64
	DeviceID  string
	Timestamp time.Time
	Emotion   Emotion
	Intensity float64
	Note      *string
}

func (Diary) Kind() Kind            { return KindDiary }
func (d Diary) RecordID() int64     { return d.ID }
func (d Diary) At() time.Time       { return d.CreatedAt }
func (d Diary) Key() string         { return recordKey(KindDiary, d.ID) }
func (Diary) record()               {}
func (MoodLabel) Kind() Kind        { return KindMoodLabel }
func (m MoodLabel) RecordID() int64 { return m.ID }
func (m MoodLabel) At() time.Time   { return m.Timestamp }
func (m MoodLabel) Key() string     { return recordKey(KindMoodLabel, m.ID) }
func (MoodLabel) record()           {}

// recordKey builds the composite (kind, id) key; ids are only unique per kind.
func recordKey(k Kind, id int64) string {
	return k.String() + ":" + strconv.FormatInt(id, 10)
}

// LabelFilter narrows a mood label query.
type LabelFilter struct {
	DeviceID string
	Start    *time.Time
	End      *time.Time
	Limit    int
}

var (
	_ Record = Diary{}
	_ Record = MoodLabel{}
)
