//go:build !linux

package monitor

import (
	"context"
	"errors"

	"github.com/genricoloni/spectre/internal/domain"
	"go.uber.org/zap"
)

// ErrUnsupported is returned on platforms without an MPRIS session bus
var ErrUnsupported = errors.New("media session monitoring is only supported on Linux")

// MprisMonitor reports no sessions outside Linux
type MprisMonitor struct {
	logger *zap.Logger
	events chan domain.MediaSession
}

// NewMprisMonitor creates a monitor whose every query fails with ErrUnsupported
func NewMprisMonitor(logger *zap.Logger) *MprisMonitor {
	events := make(chan domain.MediaSession)
	close(events)
	return &MprisMonitor{logger: logger.Named("monitor"), events: events}
}

func (m *MprisMonitor) Start(ctx context.Context) error {
	m.logger.Warn("No media session source on this platform")
	return ErrUnsupported
}

func (m *MprisMonitor) Stop(ctx context.Context) error {
	return nil
}

// Events returns a closed channel
func (m *MprisMonitor) Events() <-chan domain.MediaSession {
	return m.events
}

func (m *MprisMonitor) Snapshot(ctx context.Context) ([]domain.MediaSession, error) {
	return nil, ErrUnsupported
}
