package pulseboard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/eringen/pulseboard/console"
)

// EnvPrefix is the prefix of every environment variable read by LoadConfig.
const EnvPrefix = "PULSEBOARD_"

// Config holds all configuration for a pulseboard console.
type Config struct {
	Name string `mapstructure:"name"` // Page title (default "Analytics Console")
	Addr string `mapstructure:"addr" validate:"required"`

	APIBaseURL string        `mapstructure:"api_base_url" validate:"required,url"`
	APITimeout time.Duration `mapstructure:"api_timeout" validate:"gte=0"` // 0: no timeout

	SessionSecret string `mapstructure:"session_secret" validate:"required"`
	CookieSecure  bool   `mapstructure:"cookie_secure"` // Set true for HTTPS

	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	ServiceName  string `mapstructure:"service_name" validate:"required"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint" validate:"omitempty,url"` // empty: spans are not exported

	BannerTTL      time.Duration `mapstructure:"banner_ttl" validate:"gt=0"`
	StatsCacheTTL  time.Duration `mapstructure:"stats_cache_ttl" validate:"gte=0"` // 0: disabled
	EventRateLimit int           `mapstructure:"event_rate_limit"`                 // per IP per minute, negative disables
	SessionIdleTTL time.Duration `mapstructure:"session_idle_ttl" validate:"gt=0"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"name":             "Analytics Console",
		"addr":             ":3000",
		"api_base_url":     "http://localhost:5000",
		"api_timeout":      "0s",
		"cookie_secure":    false,
		"log_level":        "info",
		"service_name":     "pulseboard",
		"otlp_endpoint":    "",
		"banner_ttl":       console.DefaultBannerTTL.String(),
		"stats_cache_ttl":  "0s",
		"event_rate_limit": 30,
		"session_idle_ttl": "30m",
	}
}

// setDefaults fills zero fields for configs built in code rather than
// through LoadConfig.
func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Analytics Console"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = "http://localhost:5000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ServiceName == "" {
		c.ServiceName = "pulseboard"
	}
	if c.BannerTTL == 0 {
		c.BannerTTL = console.DefaultBannerTTL
	}
	if c.EventRateLimit == 0 {
		c.EventRateLimit = 30
	}
	if c.SessionIdleTTL == 0 {
		c.SessionIdleTTL = 30 * time.Minute
	}
}

// Validate checks the config against its validate tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("pulseboard: invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads defaults, then the YAML file at path (skipped when path is
// empty), then PULSEBOARD_* environment variables, and validates the result.
// A nil log discards the loader's own messages.
func LoadConfig(path string, log *zap.Logger) (Config, error) {
	if log == nil {
		log = zap.NewNop()
	}
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("pulseboard: load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("pulseboard: load config file %s: %w", path, err)
		}
		log.Info("read configuration from file", zap.String("path", path))
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("pulseboard: load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "mapstructure"}); err != nil {
		return Config{}, fmt.Errorf("pulseboard: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the logger built from Config.LogLevel.
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		a.Logger = log
	}
}

// WithAPI replaces the HTTP client of the analytics API.
func WithAPI(api console.API) Option {
	return func(a *App) {
		a.api = api
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
