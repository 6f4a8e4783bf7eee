package overlay

import (
	"errors"
	"time"

	"github.com/genricoloni/spectre/internal/platform"
	"go.uber.org/zap"
)

// Fadeable is a window that can be faded out
type Fadeable interface {
	CurrentAlpha() (uint8, bool)
	PumpOnce() bool
	SetTransparency(key platform.Color, alpha uint8) error
	Redraw() error
	Destruct()
}

type fadeTracker interface {
	beginFade()
}

// Fader steps a window's opacity down to zero and destroys it
type Fader struct {
	logger *zap.Logger
	sleep  func(time.Duration)
	key    platform.Color
}

// FaderOption configures a Fader
type FaderOption func(*Fader)

// WithSleep replaces time.Sleep between steps
func WithSleep(sleep func(time.Duration)) FaderOption {
	return func(f *Fader) {
		f.sleep = sleep
	}
}

// NewFader creates a Fader
func NewFader(logger *zap.Logger, opts ...FaderOption) *Fader {
	f := &Fader{
		logger: logger.Named("fader"),
		sleep:  time.Sleep,
		key:    ColorKey,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FadeOut lowers the window's alpha by one unit per step, spreading the
// steps over total, and destroys the window at zero. It returns early
// when the window's queue closes.
func (f *Fader) FadeOut(t Fadeable, total time.Duration) error {
	alpha, ok := t.CurrentAlpha()
	if !ok {
		return &Error{Op: "fade out", Kind: ErrPreconditionFailed, Err: errors.New("current alpha unavailable")}
	}
	if ft, ok := t.(fadeTracker); ok {
		ft.beginFade()
	}
	if alpha == 0 {
		t.Destruct()
		return nil
	}

	interval := total / time.Duration(alpha)
	f.logger.Debug("Fade started",
		zap.Uint8("alpha", alpha),
		zap.Duration("total", total),
		zap.Duration("interval", interval))

	for {
		if !t.PumpOnce() {
			f.logger.Debug("Window closed during fade", zap.Uint8("alpha", alpha))
			return nil
		}

		alpha--
		if alpha == 0 {
			t.Destruct()
			return nil
		}

		if err := t.SetTransparency(f.key, alpha); err != nil {
			f.logger.Debug("Fade step skipped", zap.Uint8("alpha", alpha), zap.Error(err))
		}
		if err := t.Redraw(); err != nil {
			f.logger.Debug("Redraw failed", zap.Error(err))
		}
		f.sleep(interval)
	}
}
