package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"moodwatch/internal/logging"
	"moodwatch/internal/model"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	API        APIConfig        `mapstructure:"api"`
	Device     DeviceConfig     `mapstructure:"device"`
	Views      ViewsConfig      `mapstructure:"views"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Notice     NoticeConfig     `mapstructure:"notice"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Export     ExportConfig     `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// APIConfig describes the diary API endpoint.
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// DeviceConfig selects the wearable whose data is shown. Empty means any.
type DeviceConfig struct {
	ID string `mapstructure:"id"`
}

// ViewsConfig holds the polling cadence of every view.
type ViewsConfig struct {
	Live      LiveViewConfig      `mapstructure:"live"`
	Analytics AnalyticsViewConfig `mapstructure:"analytics"`
	Home      HomeViewConfig      `mapstructure:"home"`
}

// LiveViewConfig governs the biometric live charts.
type LiveViewConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	WindowCapacity int           `mapstructure:"window_capacity"`
	Metrics        []string      `mapstructure:"metrics"`
}

// AnalyticsViewConfig governs the statistics screen.
type AnalyticsViewConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Period   string        `mapstructure:"period"`
}

// HomeViewConfig governs the merged diary/mood feed.
type HomeViewConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	HistoryDays int           `mapstructure:"history_days"`
	LabelLimit  int           `mapstructure:"label_limit"`
}

// PredictionConfig controls prediction display.
type PredictionConfig struct {
	TopK int `mapstructure:"top_k"`
}

// NoticeConfig routes refresh-failure notices.
type NoticeConfig struct {
	Log     bool          `mapstructure:"log"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig describes an HTTP notice sink.
type WebhookConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MetricsConfig controls the Prometheus endpoint of the watch command.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
	ChartWidth    int `mapstructure:"chart_width"`
	ChartHeight   int `mapstructure:"chart_height"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MOODWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "moodwatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.request_timeout", "10s")
	v.SetDefault("api.user_agent", "")
	v.SetDefault("api.requests_per_second", 5.0)
	v.SetDefault("api.burst", 5)

	v.SetDefault("device.id", "")

	v.SetDefault("views.live.interval", "10s")
	v.SetDefault("views.live.window_capacity", 20)
	v.SetDefault("views.live.metrics", []string{"heart_rate", "hrv", "stress_level", "spo2"})
	v.SetDefault("views.analytics.interval", "30s")
	v.SetDefault("views.analytics.period", "daily")
	v.SetDefault("views.home.interval", "60s")
	v.SetDefault("views.home.history_days", 0)
	v.SetDefault("views.home.label_limit", 100)

	v.SetDefault("prediction.top_k", 3)

	v.SetDefault("notice.log", true)
	v.SetDefault("notice.webhook.enabled", false)
	v.SetDefault("notice.webhook.url", "")
	v.SetDefault("notice.webhook.timeout", "10s")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9464")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("export.max_data_points", 100000)
	v.SetDefault("export.chart_width", 1024)
	v.SetDefault("export.chart_height", 512)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second cannot be negative")
	}
	if c.Views.Live.Interval <= 0 || c.Views.Analytics.Interval <= 0 || c.Views.Home.Interval <= 0 {
		return fmt.Errorf("views.*.interval must be greater than zero")
	}
	if c.Views.Live.WindowCapacity <= 0 {
		return fmt.Errorf("views.live.window_capacity must be greater than zero")
	}
	if _, err := c.LiveMetrics(); err != nil {
		return err
	}
	if _, err := model.ParsePeriod(c.Views.Analytics.Period); err != nil {
		return fmt.Errorf("views.analytics.period: %w", err)
	}
	if c.Views.Home.HistoryDays < 0 {
		return fmt.Errorf("views.home.history_days cannot be negative")
	}
	if c.Prediction.TopK <= 0 {
		return fmt.Errorf("prediction.top_k must be greater than zero")
	}
	if c.Notice.Webhook.Enabled && strings.TrimSpace(c.Notice.Webhook.URL) == "" {
		return fmt.Errorf("notice.webhook.url must be set when the webhook is enabled")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// LiveMetrics resolves the configured live chart metrics.
func (c *Config) LiveMetrics() ([]model.Metric, error) {
	out := make([]model.Metric, 0, len(c.Views.Live.Metrics))
	for _, name := range c.Views.Live.Metrics {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m, ok := model.ParseMetric(name)
		if !ok {
			return nil, fmt.Errorf("views.live.metrics: unknown metric %q", name)
		}
		out = append(out, m)
	}
	return out, nil
}

// Period returns the configured analytics period.
func (c *Config) Period() model.Period {
	p, err := model.ParsePeriod(c.Views.Analytics.Period)
	if err != nil {
		return model.Daily
	}
	return p
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
