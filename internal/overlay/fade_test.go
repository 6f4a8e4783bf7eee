package overlay

import (
	"errors"
	"testing"
	"time"

	"github.com/genricoloni/spectre/internal/platform"
	"go.uber.org/zap"
)

// scriptedWindow records every call a Fader makes
type scriptedWindow struct {
	alpha      uint8
	alphaOK    bool
	closeAfter int // PumpOnce returns false on this call (1-based); 0 never

	pumps     int
	sets      []uint8
	redraws   int
	destructs int
}

func (s *scriptedWindow) CurrentAlpha() (uint8, bool) { return s.alpha, s.alphaOK }

func (s *scriptedWindow) PumpOnce() bool {
	s.pumps++
	return s.closeAfter == 0 || s.pumps < s.closeAfter
}

func (s *scriptedWindow) SetTransparency(_ platform.Color, alpha uint8) error {
	s.sets = append(s.sets, alpha)
	return nil
}

func (s *scriptedWindow) Redraw() error {
	s.redraws++
	return nil
}

func (s *scriptedWindow) Destruct() { s.destructs++ }

type sleepRecorder struct {
	calls []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) { r.calls = append(r.calls, d) }

func (r *sleepRecorder) total() time.Duration {
	var sum time.Duration
	for _, d := range r.calls {
		sum += d
	}
	return sum
}

func TestFader_StepCount(t *testing.T) {
	tests := []struct {
		name  string
		alpha uint8
		total time.Duration
	}{
		{"Initial Alpha", 126, time.Second},
		{"Full Alpha", 255, 5 * time.Second},
		{"Single Step", 1, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &sleepRecorder{}
			win := &scriptedWindow{alpha: tt.alpha, alphaOK: true}
			f := NewFader(zap.NewNop(), WithSleep(rec.sleep))

			if err := f.FadeOut(win, tt.total); err != nil {
				t.Fatalf("FadeOut() returned error: %v", err)
			}

			a := int(tt.alpha)
			if win.pumps != a {
				t.Errorf("expected %d decrement steps, got %d", a, win.pumps)
			}
			if len(win.sets) != a-1 {
				t.Errorf("expected %d transparency updates, got %d", a-1, len(win.sets))
			}
			for i, v := range win.sets {
				if int(v) != a-1-i {
					t.Fatalf("step %d: expected alpha %d, got %d", i, a-1-i, v)
				}
			}
			if win.destructs != 1 {
				t.Errorf("expected exactly one destruct, got %d", win.destructs)
			}

			interval := tt.total / time.Duration(tt.alpha)
			if len(rec.calls) != a-1 {
				t.Fatalf("expected %d sleeps, got %d", a-1, len(rec.calls))
			}
			for _, d := range rec.calls {
				if d != interval {
					t.Fatalf("expected %v per step, got %v", interval, d)
				}
			}
			// The last decrement destroys the window without sleeping
			if got, want := rec.total(), tt.total-interval; got < want-time.Millisecond || got > want+time.Millisecond {
				t.Errorf("expected total sleep ≈ %v, got %v", want, got)
			}
		})
	}
}

func TestFader_ExternalCloseStopsWithinOneIteration(t *testing.T) {
	win := &scriptedWindow{alpha: 126, alphaOK: true, closeAfter: 3}
	f := NewFader(zap.NewNop(), WithSleep(func(time.Duration) {}))

	if err := f.FadeOut(win, time.Second); err != nil {
		t.Fatalf("FadeOut() returned error: %v", err)
	}
	if win.pumps != 3 {
		t.Errorf("expected 3 pumps, got %d", win.pumps)
	}
	if len(win.sets) != 2 {
		t.Errorf("expected no transparency update after close, got %d updates", len(win.sets))
	}
	if win.destructs != 0 {
		t.Errorf("expected no destruct on an externally closed window, got %d", win.destructs)
	}
}

func TestFader_UnreadableAlpha(t *testing.T) {
	win := &scriptedWindow{alphaOK: false}
	f := NewFader(zap.NewNop(), WithSleep(func(time.Duration) {}))

	err := f.FadeOut(win, time.Second)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("expected ErrPreconditionFailed, got %v", err)
	}
	if win.pumps != 0 || win.destructs != 0 || len(win.sets) != 0 {
		t.Errorf("expected no interaction, got %+v", win)
	}
}

func TestFader_ZeroAlphaDestructsImmediately(t *testing.T) {
	win := &scriptedWindow{alpha: 0, alphaOK: true}
	f := NewFader(zap.NewNop(), WithSleep(func(time.Duration) {}))

	if err := f.FadeOut(win, time.Second); err != nil {
		t.Fatalf("FadeOut() returned error: %v", err)
	}
	if win.destructs != 1 || win.pumps != 0 {
		t.Errorf("expected an immediate destruct, got %d destructs and %d pumps", win.destructs, win.pumps)
	}
}

func TestFader_WindowSongA(t *testing.T) {
	fake, _, w := newFakeWindow(t, "Song A")
	if err := w.Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	rec := &sleepRecorder{}
	f := NewFader(zap.NewNop(), WithSleep(rec.sleep))
	if err := f.FadeOut(w, time.Second); err != nil {
		t.Fatalf("FadeOut() returned error: %v", err)
	}

	if w.Alive() || w.State() != StateDestroyed {
		t.Errorf("expected destroyed window, alive=%v state=%v", w.Alive(), w.State())
	}
	if len(rec.calls) != 125 {
		t.Errorf("expected 125 sleeps, got %d", len(rec.calls))
	}
	if rec.calls[0] != time.Second/126 {
		t.Errorf("expected %v step interval, got %v", time.Second/126, rec.calls[0])
	}

	ws, _ := fake.Window(w.Handle())
	// Initial 126 plus one update per step down to 1
	if len(ws.Alphas) != 126 || ws.Alphas[0] != 126 || ws.Alphas[125] != 1 {
		t.Errorf("unexpected alpha history: len=%d", len(ws.Alphas))
	}
	assertNoLeaks(t, fake)
}

func TestFader_WindowClosedMidFade(t *testing.T) {
	fake, _, w := newFakeWindow(t, "Song A")
	if err := w.Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	steps := 0
	f := NewFader(zap.NewNop(), WithSleep(func(time.Duration) {
		steps++
		if steps == 10 {
			if err := w.MessageSelf(platform.MsgClose); err != nil {
				t.Errorf("MessageSelf() returned error: %v", err)
			}
		}
	}))

	if err := f.FadeOut(w, time.Second); err != nil {
		t.Fatalf("FadeOut() returned error: %v", err)
	}

	if w.Alive() {
		t.Error("expected window to be closed")
	}
	ws, _ := fake.Window(w.Handle())
	// Initial alpha plus the ten steps before the close was posted
	if len(ws.Alphas) != 11 {
		t.Errorf("expected 11 alpha updates, got %d", len(ws.Alphas))
	}
	if steps > 11 {
		t.Errorf("fade kept running after close: %d steps", steps)
	}
	assertNoLeaks(t, fake)
}

func TestFader_MarksWindowFading(t *testing.T) {
	_, _, w := newFakeWindow(t, "Song A")
	defer w.Destruct()
	if err := w.Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	var seen State
	f := NewFader(zap.NewNop(), WithSleep(func(time.Duration) {
		if seen == 0 {
			seen = w.State()
		}
	}))
	if err := f.FadeOut(w, time.Second); err != nil {
		t.Fatalf("FadeOut() returned error: %v", err)
	}
	if seen != StateFadingOut {
		t.Errorf("expected fading-out state during fade, got %v", seen)
	}
}
