// Package notice delivers advisory refresh-failure notices.
package notice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"moodwatch/internal/api"
)

// Notice describes one failed refresh cycle. Previous view state is kept.
type Notice struct {
	View   string
	Source string
	Status int
	Err    error
	At     time.Time
}

// FromError builds a notice for view, pulling source and status out of an api.FetchError.
func FromError(view string, err error, at time.Time) Notice {
	note := Notice{View: view, Err: err, At: at}
	var fe *api.FetchError
	if errors.As(err, &fe) {
		note.Source = fe.Source
		note.Status = fe.Status
	}
	return note
}

// Message renders the notice as a single human-readable line.
func (n Notice) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] refresh failed", n.View)
	if n.Source != "" {
		fmt.Fprintf(&b, " (%s)", n.Source)
	}
	if n.Err != nil {
		fmt.Fprintf(&b, ": %v", n.Err)
	}
	return b.String()
}

// Notifier delivers notices.
type Notifier interface {
	Notify(ctx context.Context, note Notice) error
}

// LogNotifier writes notices to the log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier builds a LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notice").Logger()}
}

func (n *LogNotifier) Notify(_ context.Context, note Notice) error {
	ev := n.logger.Warn().
		Str("view", note.View).
		Time("at", note.At)
	if note.Source != "" {
		ev = ev.Str("source", note.Source)
	}
	if note.Status != 0 {
		ev = ev.Int("status", note.Status)
	}
	ev.Err(note.Err).Msg("refresh failed, keeping previous state")
	return nil
}

// WebhookNotifier posts notices as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

// NewWebhookNotifier builds a WebhookNotifier.
func NewWebhookNotifier(url string, timeout time.Duration, logger zerolog.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "notice_webhook").Logger(),
	}
}

type webhookPayload struct {
	View   string    `json:"view"`
	Source string    `json:"source,omitempty"`
	Status int       `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, note Notice) error {
	payload := webhookPayload{
		View:   note.View,
		Source: note.Source,
		Status: note.Status,
		Text:   note.Message(),
		At:     note.At.UTC(),
	}
	if note.Err != nil {
		payload.Error = note.Err.Error()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}

	n.logger.Debug().Str("view", note.View).Msg("notice delivered")
	return nil
}

// Multi fans a notice out to several notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, note Notice) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*WebhookNotifier)(nil)
	_ Notifier = Multi(nil)
)
