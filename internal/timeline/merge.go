// Package timeline merges diary entries and mood labels into one feed.
package timeline

import (
	"fmt"
	"sort"

	"moodwatch/internal/model"
)

// Merge combines diary entries and mood labels, newest first.
func Merge(diaries []model.Diary, labels []model.MoodLabel) []model.Record {
	records := make([]model.Record, 0, len(diaries)+len(labels))
	for _, d := range diaries {
		records = append(records, d)
	}
	for _, l := range labels {
		records = append(records, l)
	}
	return MergeRecords(records)
}

// MergeRecords sorts any number of record collections into one feed.
//
// Ordering: timestamp descending, then diary before mood label, then id
// descending. The result does not depend on the order of the inputs.
// A record delivered twice (same kind and id) appears once; the copy with the
// later timestamp is kept, and equal timestamps fall back to the payload.
func MergeRecords(collections ...[]model.Record) []model.Record {
	total := 0
	for _, c := range collections {
		total += len(c)
	}

	seen := make(map[string]int, total)
	merged := make([]model.Record, 0, total)
	for _, c := range collections {
		for _, rec := range c {
			if rec == nil {
				continue
			}
			key := rec.Key()
			if i, dup := seen[key]; dup {
				if supersedes(rec, merged[i]) {
					merged[i] = rec
				}
				continue
			}
			seen[key] = len(merged)
			merged = append(merged, rec)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return before(merged[i], merged[j])
	})
	return merged
}

func before(a, b model.Record) bool {
	ta, tb := a.At(), b.At()
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	if pa, pb := priority(a), priority(b); pa != pb {
		return pa < pb
	}
	return a.RecordID() > b.RecordID()
}

// supersedes reports whether a should replace b, its duplicate.
func supersedes(a, b model.Record) bool {
	ta, tb := a.At(), b.At()
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return fingerprint(a) > fingerprint(b)
}

func fingerprint(r model.Record) string {
	switch v := r.(type) {
	case model.Diary:
		return fmt.Sprintf("%s|%g|%g|%s", v.Emotion, v.Intensity, v.SentimentScore, v.Content)
	case model.MoodLabel:
		note := ""
		if v.Note != nil {
			note = *v.Note
		}
		return fmt.Sprintf("%s|%g|%s|%s", v.Emotion, v.Intensity, v.DeviceID, note)
	default:
		return ""
	}
}

// priority decides ties between records created in the same instant.
func priority(r model.Record) int {
	switch r.(type) {
	case model.Diary:
		return 0
	case model.MoodLabel:
		return 1
	default:
		return 2
	}
}
