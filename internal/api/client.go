// Package api talks to the emotion diary HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	entriesPath    = "/api/entries"
	emotionsPath   = "/api/emotions"
	predictPath    = "/api/emotions/predict"
	watchPath      = "/api/watch"
	watchBatchPath = "/api/watch/batch"
	latestPath     = "/api/watch/latest"
	analyticsPath  = "/api/watch/analytics"
	statsPathFmt   = "/api/stats/%s"
	defaultBaseURL = "http://localhost:8000"
	defaultAgent   = "moodwatch/1.0"
)

// Options parameterise the API client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
}

// Client implements Source over HTTP.
type Client struct {
	opts    Options
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewClient constructs an API client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Inf
	burst := opts.Burst
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	return &Client{
		opts:    opts,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.With().Str("component", "api_client").Logger(),
	}
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) get(ctx context.Context, source, path string, query url.Values) (gjson.Result, error) {
	return c.do(ctx, source, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, source, path string, payload any) (gjson.Result, error) {
	return c.do(ctx, source, http.MethodPost, path, nil, payload)
}

func (c *Client) do(ctx context.Context, source, method, path string, query url.Values, payload any) (gjson.Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, &FetchError{Source: source, Err: err}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("marshal %s payload: %w", source, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return gjson.Result{}, &FetchError{Source: source, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", defaultAgent)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return gjson.Result{}, &FetchError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, &FetchError{Source: source, Status: resp.StatusCode, Err: err}
	}

	c.logger.Debug().
		Str("source", source).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(started)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, &FetchError{Source: source, Status: resp.StatusCode, Err: parseHTTPError(raw)}
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &FetchError{Source: source, Status: resp.StatusCode, Err: errors.New("response is not valid JSON")}
	}
	return gjson.ParseBytes(raw), nil
}

// parseHTTPError extracts the FastAPI "detail" message when present.
func parseHTTPError(payload []byte) error {
	if gjson.ValidBytes(payload) {
		detail := gjson.GetBytes(payload, "detail")
		if detail.Type == gjson.String && detail.Str != "" {
			return errors.New(detail.Str)
		}
		if detail.Exists() {
			return errors.New(detail.Raw)
		}
	}
	if msg := strings.TrimSpace(string(payload)); msg != "" {
		return errors.New(msg)
	}
	return errors.New("empty error response")
}

var _ Source = (*Client)(nil)
