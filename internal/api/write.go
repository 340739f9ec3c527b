package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"moodwatch/internal/model"
)

// DefaultDeviceID is what the server assigns to labels without a device.
const DefaultDeviceID = "default"

// MoodLabelInput is the payload of a new mood label.
type MoodLabelInput struct {
	DeviceID  string        `json:"device_id,omitempty"`
	Emotion   model.Emotion `json:"emotion"`
	Intensity float64       `json:"intensity"`
	Note      *string       `json:"note,omitempty"`
}

// CreateEntry posts a diary entry; the server classifies its emotion.
func (c *Client) CreateEntry(ctx context.Context, content string) (model.Diary, error) {
	res, err := c.post(ctx, "create_entry", entriesPath, map[string]string{"content": content})
	if err != nil {
		return model.Diary{}, err
	}
	d, err := decodeDiary(res)
	if err != nil {
		return model.Diary{}, &FetchError{Source: "create_entry", Err: fmt.Errorf("decode entry: %w", err)}
	}
	return d, nil
}

// CreateMoodLabel posts a mood label.
func (c *Client) CreateMoodLabel(ctx context.Context, input MoodLabelInput) (model.MoodLabel, error) {
	if input.DeviceID == "" {
		input.DeviceID = DefaultDeviceID
	}
	res, err := c.post(ctx, "create_mood_label", emotionsPath, input)
	if err != nil {
		return model.MoodLabel{}, err
	}
	l, err := decodeMoodLabel(res)
	if err != nil {
		return model.MoodLabel{}, &FetchError{Source: "create_mood_label", Err: fmt.Errorf("decode label: %w", err)}
	}
	return l, nil
}

// SampleInput is one reading to upload. A nil Timestamp lets the server stamp it.
type SampleInput struct {
	DeviceID  string
	Timestamp *time.Time
	Values    map[model.Metric]float64
}

// payload renders the reading with only the reported metrics. Integral values
// are sent as JSON integers because most watch columns are integer typed.
func (in SampleInput) payload() map[string]any {
	body := make(map[string]any, len(in.Values)+2)
	device := in.DeviceID
	if device == "" {
		device = DefaultDeviceID
	}
	body["device_id"] = device
	if in.Timestamp != nil {
		body["timestamp"] = in.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	for _, m := range model.Metrics {
		v, ok := in.Values[m]
		if !ok {
			continue
		}
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			body[string(m)] = int64(v)
		} else {
			body[string(m)] = v
		}
	}
	return body
}

// CreateSample uploads one watch reading.
func (c *Client) CreateSample(ctx context.Context, input SampleInput) (model.Sample, error) {
	res, err := c.post(ctx, "create_sample", watchPath, input.payload())
	if err != nil {
		return model.Sample{}, err
	}
	s, err := decodeSample(res)
	if err != nil {
		return model.Sample{}, &FetchError{Source: "create_sample", Err: fmt.Errorf("decode sample: %w", err)}
	}
	return s, nil
}

// CreateSamples uploads several readings in one request. The server stores
// all of them or none.
func (c *Client) CreateSamples(ctx context.Context, inputs []SampleInput) ([]model.Sample, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no samples to upload")
	}
	data := make([]map[string]any, 0, len(inputs))
	for _, in := range inputs {
		data = append(data, in.payload())
	}
	res, err := c.post(ctx, "create_samples", watchBatchPath, map[string]any{"data": data})
	if err != nil {
		return nil, err
	}
	return decodeSamples("create_samples", res)
}
