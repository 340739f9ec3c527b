package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"moodwatch/internal/dashboard"
	"moodwatch/internal/model"
)

func parsePeriodFlag(raw string) (model.Period, error) {
	if raw == "" {
		return "", nil
	}
	p, err := model.ParsePeriod(raw)
	if err != nil {
		return "", fmt.Errorf("invalid --period value: %w", err)
	}
	return p, nil
}

func parseDateFlag(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid --date value (want YYYY-MM-DD): %w", err)
	}
	return &t, nil
}

func parseViewsFlag(raw []string) ([]dashboard.View, error) {
	views := make([]dashboard.View, 0, len(raw))
	for _, name := range raw {
		v := dashboard.View(strings.ToLower(strings.TrimSpace(name)))
		switch v {
		case dashboard.ViewLive, dashboard.ViewAnalytics, dashboard.ViewHome:
			views = append(views, v)
		default:
			return nil, fmt.Errorf("unknown view %q (want live, analytics or home)", name)
		}
	}
	return views, nil
}

func parseTimeFlag(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --at value (want RFC 3339): %w", err)
	}
	return &t, nil
}

// parseMetricArgs reads metric=value pairs. A metric given twice is an error.
func parseMetricArgs(args []string) (map[model.Metric]float64, error) {
	values := make(map[model.Metric]float64, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected metric=value, got %q", arg)
		}
		metric, known := model.ParseMetric(strings.TrimSpace(name))
		if !known {
			return nil, fmt.Errorf("unknown metric %q", name)
		}
		if _, dup := values[metric]; dup {
			return nil, fmt.Errorf("metric %s given twice", metric)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", metric, raw)
		}
		values[metric] = v
	}
	return values, nil
}
