package config

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewAppConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		validate func(t *testing.T, c *AppConfig)
	}{
		{
			name: "Defaults",
			env:  map[string]string{},
			validate: func(t *testing.T, c *AppConfig) {
				if c.GetMode() != ModeOnce {
					t.Errorf("expected mode %q, got %q", ModeOnce, c.GetMode())
				}
				if c.FadeDuration() != 5*time.Second {
					t.Errorf("expected 5s fade, got %v", c.FadeDuration())
				}
				if c.MaxToasts() != 4 {
					t.Errorf("expected 4 toasts, got %d", c.MaxToasts())
				}
				if c.ShutdownTimeout() != 10*time.Second {
					t.Errorf("expected 10s shutdown timeout, got %v", c.ShutdownTimeout())
				}
				if c.Debounce() != 500*time.Millisecond {
					t.Errorf("expected 500ms debounce, got %v", c.Debounce())
				}
			},
		},
		{
			name: "Overrides",
			env: map[string]string{
				"SPECTRE_MODE":             "watch",
				"SPECTRE_FADE_SECONDS":     "1.5",
				"SPECTRE_MAX_TOASTS":       "2",
				"SPECTRE_SHUTDOWN_TIMEOUT": "3s",
				"SPECTRE_DEBOUNCE":         "250ms",
			},
			validate: func(t *testing.T, c *AppConfig) {
				if c.GetMode() != ModeWatch {
					t.Errorf("expected mode %q, got %q", ModeWatch, c.GetMode())
				}
				if c.FadeDuration() != 1500*time.Millisecond {
					t.Errorf("expected 1.5s fade, got %v", c.FadeDuration())
				}
				if c.MaxToasts() != 2 {
					t.Errorf("expected 2 toasts, got %d", c.MaxToasts())
				}
				if c.ShutdownTimeout() != 3*time.Second {
					t.Errorf("expected 3s shutdown timeout, got %v", c.ShutdownTimeout())
				}
				if c.Debounce() != 250*time.Millisecond {
					t.Errorf("expected 250ms debounce, got %v", c.Debounce())
				}
			},
		},
		{
			name: "Invalid Values Fall Back",
			env: map[string]string{
				"SPECTRE_MODE":             "sometimes",
				"SPECTRE_FADE_SECONDS":     "-1",
				"SPECTRE_MAX_TOASTS":       "zero",
				"SPECTRE_SHUTDOWN_TIMEOUT": "soon",
				"SPECTRE_DEBOUNCE":         "0s",
			},
			validate: func(t *testing.T, c *AppConfig) {
				if c.GetMode() != ModeOnce {
					t.Errorf("expected fallback mode, got %q", c.GetMode())
				}
				if c.FadeDuration() != 5*time.Second {
					t.Errorf("expected fallback fade, got %v", c.FadeDuration())
				}
				if c.MaxToasts() != 4 {
					t.Errorf("expected fallback toasts, got %d", c.MaxToasts())
				}
				if c.ShutdownTimeout() != 10*time.Second {
					t.Errorf("expected fallback shutdown timeout, got %v", c.ShutdownTimeout())
				}
				if c.Debounce() != 500*time.Millisecond {
					t.Errorf("expected fallback debounce, got %v", c.Debounce())
				}
			},
		},
	}

	keys := []string{
		"SPECTRE_MODE", "SPECTRE_FADE_SECONDS", "SPECTRE_MAX_TOASTS",
		"SPECTRE_SHUTDOWN_TIMEOUT", "SPECTRE_DEBOUNCE",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range keys {
				t.Setenv(k, tt.env[k])
			}
			tt.validate(t, NewAppConfig(zap.NewNop()))
		})
	}
}
