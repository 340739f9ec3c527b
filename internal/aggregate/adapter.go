// Package aggregate turns server period snapshots into chart-ready rows.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"moodwatch/internal/model"
)

var hundred = decimal.NewFromInt(100)

// DailyRow is one bar of the daily distribution.
type DailyRow struct {
	Emotion model.Emotion
	Count   int
	Color   string
}

// WeeklyRow is one day of a week with its per-emotion counts.
// Counts only holds emotions the server reported for that day.
type WeeklyRow struct {
	Date   time.Time
	Day    string
	Total  int
	Counts map[model.Emotion]int
}

// Count returns the day's count for e; ok is false when the emotion was absent.
func (r WeeklyRow) Count(e model.Emotion) (int, bool) {
	c, ok := r.Counts[e]
	return c, ok
}

// MonthlyRow is one slice of the monthly emotion pattern.
type MonthlyRow struct {
	Emotion    model.Emotion
	Percentage float64
	Color      string
}

// Series holds the rows for one period; only the slice matching Period is filled.
type Series struct {
	Period  model.Period
	Daily   []DailyRow
	Weekly  []WeeklyRow
	Monthly []MonthlyRow
}

// Len returns the number of rows.
func (s Series) Len() int {
	switch s.Period {
	case model.Daily:
		return len(s.Daily)
	case model.Weekly:
		return len(s.Weekly)
	case model.Monthly:
		return len(s.Monthly)
	default:
		return 0
	}
}

// Columns returns the emotions that appear in any weekly row, in vocabulary order.
func (s Series) Columns() []model.Emotion {
	present := make(map[model.Emotion]bool)
	for _, row := range s.Weekly {
		for e := range row.Counts {
			present[e] = true
		}
	}
	cols := make([]model.Emotion, 0, len(present))
	for _, e := range model.Vocabulary() {
		if present[e] {
			cols = append(cols, e)
		}
	}
	return cols
}

// Adapt maps an aggregate to rows. Row order follows the order the server sent;
// nothing is re-sorted by value.
func Adapt(agg model.PeriodAggregate) Series {
	switch agg.Period {
	case model.Daily:
		return Series{Period: model.Daily, Daily: DailyRows(agg.Daily)}
	case model.Weekly:
		return Series{Period: model.Weekly, Weekly: WeeklyRows(agg.Weekly)}
	case model.Monthly:
		return Series{Period: model.Monthly, Monthly: MonthlyRows(agg.Monthly)}
	default:
		return Series{Period: agg.Period}
	}
}

// DailyRows emits one row per emotion present in the day's distribution.
func DailyRows(day *model.DailyAggregate) []DailyRow {
	if day == nil {
		return []DailyRow{}
	}
	rows := make([]DailyRow, 0, len(day.Distribution))
	for _, v := range day.Distribution {
		rows = append(rows, DailyRow{
			Emotion: v.Emotion,
			Count:   int(v.Value),
			Color:   ColorFor(v.Emotion),
		})
	}
	return rows
}

// WeeklyRows emits one wide row per day. Labels outside the vocabulary are not
// turned into columns.
func WeeklyRows(week *model.WeeklyAggregate) []WeeklyRow {
	if week == nil {
		return []WeeklyRow{}
	}
	rows := make([]WeeklyRow, 0, len(week.Days))
	for _, day := range week.Days {
		counts := make(map[model.Emotion]int, len(day.Distribution))
		for _, v := range day.Distribution {
			if !v.Emotion.Known() {
				continue
			}
			counts[v.Emotion] = int(v.Value)
		}
		rows = append(rows, WeeklyRow{
			Date:   day.Date,
			Day:    DayLabel(day.Date),
			Total:  day.TotalEntries,
			Counts: counts,
		})
	}
	return rows
}

// MonthlyRows rescales the stored fractions to percentages.
func MonthlyRows(month *model.MonthlyAggregate) []MonthlyRow {
	if month == nil {
		return []MonthlyRow{}
	}
	rows := make([]MonthlyRow, 0, len(month.Patterns))
	for _, v := range month.Patterns {
		rows = append(rows, MonthlyRow{
			Emotion:    v.Emotion,
			Percentage: Percent(v.Value),
			Color:      ColorFor(v.Emotion),
		})
	}
	return rows
}

// Percent converts a fraction to a percentage without binary rounding noise.
func Percent(fraction float64) float64 {
	return decimal.NewFromFloat(fraction).Mul(hundred).InexactFloat64()
}

var shortDays = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// DayLabel is the short weekday name shown under a weekly bar.
func DayLabel(t time.Time) string {
	return shortDays[t.Weekday()]
}
