package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"moodwatch/internal/api"
	"moodwatch/internal/model"
)

// LogEntry posts a diary entry and prints the emotion the server detected.
func (a *App) LogEntry(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("entry content is empty")
	}

	entry, err := a.newClient().CreateEntry(ctx, content)
	if err != nil {
		return err
	}
	a.Logger.Info().Int64("id", entry.ID).Str("emotion", string(entry.Emotion)).Msg("diary entry created")

	fmt.Fprintf(a.Out, "entry #%d: %s (intensity %s, sentiment %s)\n",
		entry.ID, entry.Emotion, formatFloat(entry.Intensity, 2), formatFloat(entry.SentimentScore, 2))
	return nil
}

// LogMood posts a mood label for the configured device.
func (a *App) LogMood(ctx context.Context, opts MoodOptions) error {
	input := api.MoodLabelInput{
		DeviceID:  a.Config.Device.ID,
		Emotion:   opts.Emotion,
		Intensity: opts.Intensity,
	}
	if note := strings.TrimSpace(opts.Note); note != "" {
		input.Note = &note
	}

	label, err := a.newClient().CreateMoodLabel(ctx, input)
	if err != nil {
		return err
	}
	a.Logger.Info().Int64("id", label.ID).Str("device_id", label.DeviceID).Msg("mood label created")

	fmt.Fprintf(a.Out, "mood #%d: %s (intensity %s) on %s\n",
		label.ID, label.Emotion, formatFloat(label.Intensity, 2), label.DeviceID)
	return nil
}

// LogSample uploads one watch reading for the configured device.
func (a *App) LogSample(ctx context.Context, opts SampleOptions) error {
	if len(opts.Values) == 0 {
		return errors.New("sample has no metrics")
	}

	sample, err := a.newClient().CreateSample(ctx, api.SampleInput{
		DeviceID:  a.Config.Device.ID,
		Timestamp: opts.Timestamp,
		Values:    opts.Values,
	})
	if err != nil {
		return err
	}
	a.Logger.Info().Int64("id", sample.ID).Str("device_id", sample.DeviceID).Int("metrics", len(sample.Values)).Msg("watch sample created")

	fmt.Fprintf(a.Out, "sample #%d on %s at %s\n", sample.ID, sample.DeviceID, sample.Timestamp.Format(time.RFC3339))
	return nil
}

// LogSamples uploads every reading of a CSV file in one batch. The header names
// the columns: an optional "timestamp" (RFC 3339) and any watch metrics.
// Empty cells leave that metric unreported.
func (a *App) LogSamples(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open samples file: %w", err)
	}
	defer f.Close()

	inputs, err := readSamplesCSV(f, a.Config.Device.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	samples, err := a.newClient().CreateSamples(ctx, inputs)
	if err != nil {
		return err
	}
	a.Logger.Info().Int("samples", len(samples)).Str("file", path).Msg("watch samples uploaded")

	fmt.Fprintf(a.Out, "uploaded %d samples\n", len(samples))
	return nil
}

func readSamplesCSV(r io.Reader, deviceID string) ([]api.SampleInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	metrics := make([]model.Metric, len(header))
	stampCol := -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "timestamp" {
			stampCol = i
			continue
		}
		m, ok := model.ParseMetric(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		metrics[i] = m
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	inputs := make([]api.SampleInput, 0, len(rows))
	for n, row := range rows {
		in := api.SampleInput{DeviceID: deviceID, Values: make(map[model.Metric]float64, len(row))}
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if i == stampCol {
				ts, err := time.Parse(time.RFC3339, cell)
				if err != nil {
					return nil, fmt.Errorf("row %d: invalid timestamp %q", n+2, cell)
				}
				in.Timestamp = &ts
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s value %q", n+2, metrics[i], cell)
			}
			in.Values[metrics[i]] = v
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil, errors.New("no samples in file")
	}
	return inputs, nil
}
