package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	AppURL    string `env:"APP_URL" default:"http://localhost:8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Session defaults, overridable per session from the query string.
	MarkSizeScale       float64 `env:"MARK_SIZE_SCALE" default:"1.0"`
	GridSpan            float64 `env:"GRID_SPAN" default:"-1"`
	BackgroundColor     string  `env:"BACKGROUND_COLOR" default:"black"`
	NoPreventDefault    bool    `env:"NO_PREVENT_DEFAULT" default:"false"`
	ShakeClearMode      bool    `env:"SHAKE_CLEAR_MODE" default:"false"`
	HideTouchProperties bool    `env:"HIDE_TOUCH_PROPERTIES" default:"false"`
	ShowTouchRadius     bool    `env:"SHOW_TOUCH_RADIUS" default:"false"`
	ShowPointerType     bool    `env:"SHOW_POINTER_TYPE" default:"false"`
	LogEvents           bool    `env:"LOG_EVENTS" default:"true"`
	DebugInput          bool    `env:"DEBUG_INPUT" default:"false"`

	ResizeDelay    time.Duration `env:"RESIZE_DELAY" default:"300ms"`
	ShakeDelay     time.Duration `env:"SHAKE_DELAY" default:"1s"`
	ShakeThreshold float64       `env:"SHAKE_THRESHOLD" default:"300"`

	MaxSessions int     `env:"MAX_SESSIONS" default:"100"`
	WSRateLimit float64 `env:"WS_RATE_LIMIT" default:"2"`
	WSRateBurst int     `env:"WS_RATE_BURST" default:"5"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// SessionDefaults returns the environment-level session options.
func (c *Config) SessionDefaults() SessionOptions {
	return SessionOptions{
		MarkSizeScale:       c.MarkSizeScale,
		GridSpan:            c.GridSpan,
		BackgroundColor:     c.BackgroundColor,
		NoPreventDefault:    c.NoPreventDefault,
		ShakeClearMode:      c.ShakeClearMode,
		HideTouchProperties: c.HideTouchProperties,
		ShowTouchRadius:     c.ShowTouchRadius,
		ShowPointerType:     c.ShowPointerType,
		LogEvents:           c.LogEvents,
	}
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.AppURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("APP_URL must be an absolute URL, got %q", cfg.AppURL)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if err := checkMarkSizeScale(cfg.MarkSizeScale); err != nil {
		return fmt.Errorf("MARK_SIZE_SCALE %w", err)
	}
	if err := checkGridSpan(cfg.GridSpan); err != nil {
		return fmt.Errorf("GRID_SPAN %w", err)
	}
	if cfg.ResizeDelay <= 0 {
		return errors.New("RESIZE_DELAY must be positive")
	}
	if cfg.ShakeDelay <= 0 {
		return errors.New("SHAKE_DELAY must be positive")
	}
	if !(cfg.ShakeThreshold > 0) || math.IsInf(cfg.ShakeThreshold, 1) {
		return errors.New("SHAKE_THRESHOLD must be positive")
	}
	if cfg.MaxSessions < 1 {
		return errors.New("MAX_SESSIONS must be at least 1")
	}
	if !(cfg.WSRateLimit > 0) || cfg.WSRateBurst < 1 {
		return errors.New("WS_RATE_LIMIT must be positive and WS_RATE_BURST at least 1")
	}

	return nil
}
