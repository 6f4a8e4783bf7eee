package monitor

import (
	"github.com/genricoloni/spectre/internal/domain"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// NewScreenResolution detects the primary display's bounds at startup
func NewScreenResolution(logger *zap.Logger) *domain.ScreenResolution {
	if n := screenshot.NumActiveDisplays(); n <= 0 {
		logger.Warn("No active displays detected, falling back to 1920x1080")
		return &domain.ScreenResolution{Width: 1920, Height: 1080}
	}

	bounds := screenshot.GetDisplayBounds(0)
	res := &domain.ScreenResolution{
		X:      bounds.Min.X,
		Y:      bounds.Min.Y,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	logger.Info("Screen resolution detected",
		zap.Int("x", res.X),
		zap.Int("y", res.Y),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height))

	return res
}
