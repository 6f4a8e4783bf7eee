package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	// ModeOnce shows a toast for every session found at startup, then exits
	ModeOnce = "once"
	// ModeWatch shows a toast on every track change until interrupted
	ModeWatch = "watch"

	defaultMode            = ModeOnce
	defaultFadeSeconds     = 5.0
	defaultMaxToasts       = 4
	defaultShutdownTimeout = 10 * time.Second
	defaultDebounce        = 500 * time.Millisecond
)

// AppConfig holds application configuration
type AppConfig struct {
	logger          *zap.Logger
	mode            string
	fadeDuration    time.Duration
	maxToasts       int
	shutdownTimeout time.Duration
	debounce        time.Duration
}

// NewAppConfig creates a new application configuration instance
func NewAppConfig(logger *zap.Logger) *AppConfig {
	// Read from environment variables or use defaults
	mode := os.Getenv("SPECTRE_MODE")
	switch mode {
	case ModeOnce, ModeWatch:
	case "":
		mode = defaultMode
	default:
		logger.Warn("Unknown mode, using default",
			zap.String("mode", mode),
			zap.String("default", defaultMode))
		mode = defaultMode
	}

	fadeSeconds := defaultFadeSeconds
	if v := os.Getenv("SPECTRE_FADE_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			fadeSeconds = f
		} else {
			logger.Warn("Invalid SPECTRE_FADE_SECONDS, using default", zap.String("value", v))
		}
	}

	maxToasts := defaultMaxToasts
	if v := os.Getenv("SPECTRE_MAX_TOASTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxToasts = n
		} else {
			logger.Warn("Invalid SPECTRE_MAX_TOASTS, using default", zap.String("value", v))
		}
	}

	cfg := &AppConfig{
		logger:          logger,
		mode:            mode,
		fadeDuration:    time.Duration(fadeSeconds * float64(time.Second)),
		maxToasts:       maxToasts,
		shutdownTimeout: durationEnv(logger, "SPECTRE_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		debounce:        durationEnv(logger, "SPECTRE_DEBOUNCE", defaultDebounce),
	}

	logger.Info("Configuration loaded",
		zap.String("mode", cfg.mode),
		zap.Duration("fade", cfg.fadeDuration),
		zap.Int("maxToasts", cfg.maxToasts),
		zap.Duration("shutdownTimeout", cfg.shutdownTimeout),
		zap.Duration("debounce", cfg.debounce))

	return cfg
}

func durationEnv(logger *zap.Logger, key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn("Invalid duration, using default",
			zap.String("key", key),
			zap.String("value", v),
			zap.Duration("default", def))
		return def
	}
	return d
}

// GetMode returns the engine mode
func (c *AppConfig) GetMode() string {
	return c.mode
}

// FadeDuration returns the total fade-out time of a toast
func (c *AppConfig) FadeDuration() time.Duration {
	return c.fadeDuration
}

// MaxToasts returns the maximum number of toasts alive at once
func (c *AppConfig) MaxToasts() int {
	return c.maxToasts
}

// ShutdownTimeout returns how long shutdown waits for running toasts
func (c *AppConfig) ShutdownTimeout() time.Duration {
	return c.shutdownTimeout
}

// Debounce returns the watch-mode quiet period
func (c *AppConfig) Debounce() time.Duration {
	return c.debounce
}
