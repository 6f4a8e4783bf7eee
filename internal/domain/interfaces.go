package domain

import (
	"context"
	"image"
	"time"
)

// Monitor defines the interface for monitoring media playback sessions
// Implementations should handle D-Bus/MPRIS communication
type Monitor interface {
	// Start begins monitoring for media events
	// It should block until context is cancelled or an error occurs
	Start(ctx context.Context) error

	// Stop gracefully stops the monitor
	Stop(ctx context.Context) error

	// Events returns a read-only channel that emits a MediaSession
	// when media playback state changes
	Events() <-chan MediaSession

	// Snapshot returns every session currently known to the system.
	// It does not require Start to have been called.
	Snapshot(ctx context.Context) ([]MediaSession, error)
}

// Fetcher defines the interface for retrieving album artwork
type Fetcher interface {
	// Fetch downloads or reads image data from a URL or local path
	// Returns the raw image bytes or an error
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Thumbnailer turns raw artwork into the fixed-size canvas shown by a toast
type Thumbnailer interface {
	// Fit decodes data and fits it into the canvas.
	// It never fails: undecodable input yields a placeholder canvas.
	Fit(data []byte) *image.NRGBA

	// Placeholder returns the canvas used when no artwork is available
	Placeholder() *image.NRGBA
}

// Config defines the interface for application configuration
type Config interface {
	// GetMode returns the engine mode ("once" or "watch")
	GetMode() string

	// FadeDuration is the total time a toast takes to fade out
	FadeDuration() time.Duration

	// MaxToasts bounds the number of toasts alive at the same time
	MaxToasts() int

	// ShutdownTimeout bounds how long shutdown waits for running toasts
	ShutdownTimeout() time.Duration

	// Debounce is the quiet period required before a track change is shown in watch mode
	Debounce() time.Duration
}
