package overlay

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/genricoloni/spectre/internal/domain"
	"github.com/genricoloni/spectre/internal/platform"
	"github.com/genricoloni/spectre/internal/platform/mocks"
	"github.com/genricoloni/spectre/internal/platform/platformtest"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func testRecord(title string) domain.DisplayRecord {
	thumb := image.NewNRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	return domain.NewDisplayRecord(domain.MediaSession{Title: title}, thumb)
}

func newFakeWindow(t *testing.T, title string) (*platformtest.Fake, *ClassRegistry, *Window) {
	t.Helper()
	fake := platformtest.New()
	reg := NewClassRegistry(fake, zap.NewNop())
	w, err := New(reg, title, testRecord(title))
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return fake, reg, w
}

func assertNoLeaks(t *testing.T, fake *platformtest.Fake) {
	t.Helper()
	if n := fake.LiveWindows(); n != 0 {
		t.Errorf("expected no live windows, got %d", n)
	}
	if n := fake.OpenDCs(); n != 0 {
		t.Errorf("expected no open device contexts, got %d", n)
	}
	if n := fake.OpenBitmaps(); n != 0 {
		t.Errorf("expected no open bitmaps, got %d", n)
	}
}

func TestWindow_InitSongA(t *testing.T) {
	fake, _, w := newFakeWindow(t, "Song A")
	defer w.Destruct()

	if w.State() != StateCreated {
		t.Errorf("expected created state, got %v", w.State())
	}
	if err := w.Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	alpha, ok := w.CurrentAlpha()
	if !ok || alpha != 126 {
		t.Errorf("expected alpha (126, true), got (%d, %v)", alpha, ok)
	}
	if w.Opacity() != InitialAlpha {
		t.Errorf("expected tracked opacity %d, got %d", InitialAlpha, w.Opacity())
	}
	if w.State() != StateVisible {
		t.Errorf("expected visible state, got %v", w.State())
	}

	ws, _ := fake.Window(w.Handle())
	if !ws.Visible || ws.Title != "Song A" {
		t.Errorf("unexpected window state: %+v", ws)
	}
	if ws.Width != CanvasSize || ws.Height != CanvasSize {
		t.Errorf("expected %dx%d window, got %dx%d", CanvasSize, CanvasSize, ws.Width, ws.Height)
	}
	if ws.Key != ColorKey {
		t.Errorf("expected colour key %#x, got %#x", ColorKey, ws.Key)
	}
	// Init paints synchronously once and leaves a repaint queued
	if ws.Blits != 1 {
		t.Errorf("expected 1 blit, got %d", ws.Blits)
	}
	if !w.PumpOnce() {
		t.Fatal("expected a queued repaint")
	}
	if ws, _ = fake.Window(w.Handle()); ws.Blits != 2 {
		t.Errorf("expected the queued repaint to blit, got %d blits", ws.Blits)
	}
	if len(ws.Frame) != CanvasSize*CanvasSize*4 {
		t.Errorf("expected full canvas frame, got %d bytes", len(ws.Frame))
	}
	if fake.OpenDCs() != 0 || fake.OpenBitmaps() != 0 {
		t.Errorf("paint leaked resources: %d DCs, %d bitmaps", fake.OpenDCs(), fake.OpenBitmaps())
	}
}

func TestWindow_NewDestructLeavesNothing(t *testing.T) {
	fake, reg, w := newFakeWindow(t, "Song A")
	if err := w.Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	w.Destruct()

	if w.Alive() {
		t.Error("expected window to be dead after Destruct")
	}
	if w.State() != StateDestroyed {
		t.Errorf("expected destroyed state, got %v", w.State())
	}
	if reg.Live() != 0 {
		t.Errorf("expected handle to be unbound, %d still bound", reg.Live())
	}
	assertNoLeaks(t, fake)

	again, err := New(reg, "Song A", testRecord("Song A"))
	if err != nil {
		t.Fatalf("second New() returned error: %v", err)
	}
	if err := again.Init(); err != nil {
		t.Fatalf("second Init() returned error: %v", err)
	}
	again.Destruct()

	if fake.Registrations() != 1 {
		t.Errorf("expected 1 class registration, got %d", fake.Registrations())
	}
	assertNoLeaks(t, fake)
}

func TestWindow_DestructTwice(t *testing.T) {
	fake, _, w := newFakeWindow(t, "Song A")
	if err := w.Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Destruct()
		w.Destruct()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second Destruct blocked")
	}
	if w.PumpOnce() {
		t.Error("expected PumpOnce on a destroyed window to return false")
	}
	assertNoLeaks(t, fake)
}

func TestWindow_ExternalClose(t *testing.T) {
	fake, _, w := newFakeWindow(t, "Song A")
	if err := w.Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	if err := w.MessageSelf(platform.MsgClose); err != nil {
		t.Fatalf("MessageSelf() returned error: %v", err)
	}

	if !w.PumpOnce() {
		t.Fatal("expected the close message to be dispatched")
	}
	if w.PumpOnce() {
		t.Error("expected the queue to be closed after destruction")
	}
	if w.Alive() {
		t.Error("expected window to be dead")
	}
	if err := w.MessageSelf(platform.MsgClose); !errors.Is(err, ErrPlatformCallFailed) {
		t.Errorf("expected posting to a dead window to fail, got %v", err)
	}
	assertNoLeaks(t, fake)
}

func TestWindow_CreateFailure(t *testing.T) {
	fake := platformtest.New()
	boom := errors.New("no desktop heap")
	fake.Fail(platformtest.CallCreateWindow, boom)
	reg := NewClassRegistry(fake, zap.NewNop())

	w, err := New(reg, "Song A", testRecord("Song A"))
	if w != nil {
		t.Error("expected no window")
	}
	if !errors.Is(err, ErrWindowCreationFailed) || !errors.Is(err, boom) {
		t.Errorf("expected ErrWindowCreationFailed wrapping cause, got %v", err)
	}

	// The class survives a failed window
	fake.Fail(platformtest.CallCreateWindow, nil)
	w, err = New(reg, "Song B", testRecord("Song B"))
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	w.Destruct()
}

func TestWindow_RegistrationFailure(t *testing.T) {
	fake := platformtest.New()
	fake.Fail(platformtest.CallRegisterClass, errors.New("class exists"))
	reg := NewClassRegistry(fake, zap.NewNop())

	if _, err := New(reg, "Song A", testRecord("Song A")); !errors.Is(err, ErrClassRegistrationFailed) {
		t.Errorf("expected ErrClassRegistrationFailed, got %v", err)
	}
	if fake.LiveWindows() != 0 {
		t.Error("no window may be created without a class")
	}
}

func TestWindow_NilThumbnail(t *testing.T) {
	fake := platformtest.New()
	reg := NewClassRegistry(fake, zap.NewNop())
	w, err := New(reg, "No Art", domain.NewDisplayRecord(domain.MediaSession{Title: "No Art"}, nil))
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if err := w.Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	ws, _ := fake.Window(w.Handle())
	if ws.Blits != 0 {
		t.Errorf("expected nothing drawn, got %d blits", ws.Blits)
	}
	w.Destruct()
	assertNoLeaks(t, fake)
}

func TestWindow_SetTransparencyFailure(t *testing.T) {
	fake, _, w := newFakeWindow(t, "Song A")
	defer w.Destruct()
	if err := w.Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	fake.Fail(platformtest.CallSetLayeredAlpha, errors.New("access denied"))
	err := w.SetTransparency(ColorKey, 10)
	if !errors.Is(err, ErrPlatformCallFailed) {
		t.Errorf("expected ErrPlatformCallFailed, got %v", err)
	}
	if w.Opacity() != InitialAlpha {
		t.Errorf("failed call must not change tracked opacity, got %d", w.Opacity())
	}
}

func TestWindow_CurrentAlphaUnset(t *testing.T) {
	_, _, w := newFakeWindow(t, "Song A")
	defer w.Destruct()

	if _, ok := w.CurrentAlpha(); ok {
		t.Error("expected no alpha before the layered attribute is set")
	}
}

func TestWindow_RecordIsOwnCopy(t *testing.T) {
	rec := testRecord("Song A")
	rec.Genres = []string{"Rock"}

	fake := platformtest.New()
	reg := NewClassRegistry(fake, zap.NewNop())
	w, err := New(reg, "Song A", rec)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	defer w.Destruct()

	rec.Genres[0] = "Jazz"
	rec.Thumbnail.Pix[0] = 255

	if w.Record().Genres[0] != "Rock" || w.Record().Thumbnail.Pix[0] != 0 {
		t.Error("window record shares memory with the caller")
	}
}

func newMockWindow(t *testing.T) (*mocks.MockPlatform, *Window) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockPlatform(ctrl)

	m.EXPECT().RegisterClass(ClassName, gomock.Any()).Return(platform.Class(1), nil)
	m.EXPECT().CreateWindow(platform.Class(1), "Song A", CanvasSize, CanvasSize).Return(platform.Handle(7), nil)

	w, err := New(NewClassRegistry(m, zap.NewNop()), "Song A", testRecord("Song A"))
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return m, w
}

func TestWindow_PaintReleasesResources(t *testing.T) {
	const (
		hwnd = platform.Handle(7)
		dc   = platform.DC(10)
		mem  = platform.DC(11)
		bmp  = platform.Bitmap(20)
		prev = platform.Bitmap(5)
	)
	boom := errors.New("GDI exhausted")

	tests := []struct {
		name  string
		setup func(m *mocks.MockPlatform)
	}{
		{
			name: "Acquire DC Fails",
			setup: func(m *mocks.MockPlatform) {
				m.EXPECT().AcquireDC(hwnd).Return(platform.DC(0), boom)
			},
		},
		{
			name: "Memory DC Fails",
			setup: func(m *mocks.MockPlatform) {
				gomock.InOrder(
					m.EXPECT().AcquireDC(hwnd).Return(dc, nil),
					m.EXPECT().CreateCompatibleDC(dc).Return(platform.DC(0), boom),
					m.EXPECT().ReleaseDC(hwnd, dc),
				)
			},
		},
		{
			name: "Bitmap Fails",
			setup: func(m *mocks.MockPlatform) {
				gomock.InOrder(
					m.EXPECT().AcquireDC(hwnd).Return(dc, nil),
					m.EXPECT().CreateCompatibleDC(dc).Return(mem, nil),
					m.EXPECT().CreateBitmap(dc, CanvasSize, CanvasSize, gomock.Any()).Return(platform.Bitmap(0), boom),
					m.EXPECT().DeleteDC(mem),
					m.EXPECT().ReleaseDC(hwnd, dc),
				)
			},
		},
		{
			name: "Blit Fails",
			setup: func(m *mocks.MockPlatform) {
				gomock.InOrder(
					m.EXPECT().AcquireDC(hwnd).Return(dc, nil),
					m.EXPECT().CreateCompatibleDC(dc).Return(mem, nil),
					m.EXPECT().CreateBitmap(dc, CanvasSize, CanvasSize, gomock.Any()).Return(bmp, nil),
					m.EXPECT().SelectBitmap(mem, bmp).Return(prev),
					m.EXPECT().Blit(dc, 0, 0, CanvasSize, CanvasSize, mem).Return(boom),
					m.EXPECT().SelectBitmap(mem, prev).Return(bmp),
					m.EXPECT().DeleteBitmap(bmp),
					m.EXPECT().DeleteDC(mem),
					m.EXPECT().ReleaseDC(hwnd, dc),
				)
			},
		},
		{
			name: "Success",
			setup: func(m *mocks.MockPlatform) {
				gomock.InOrder(
					m.EXPECT().AcquireDC(hwnd).Return(dc, nil),
					m.EXPECT().CreateCompatibleDC(dc).Return(mem, nil),
					m.EXPECT().CreateBitmap(dc, CanvasSize, CanvasSize, gomock.Any()).Return(bmp, nil),
					m.EXPECT().SelectBitmap(mem, bmp).Return(prev),
					m.EXPECT().Blit(dc, 0, 0, CanvasSize, CanvasSize, mem).Return(nil),
					m.EXPECT().SelectBitmap(mem, prev).Return(bmp),
					m.EXPECT().DeleteBitmap(bmp),
					m.EXPECT().DeleteDC(mem),
					m.EXPECT().ReleaseDC(hwnd, dc),
				)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, w := newMockWindow(t)
			tt.setup(m)

			if _, handled := w.handleMessage(platform.Message{Window: hwnd, ID: platform.MsgPaint}); !handled {
				t.Error("expected paint to be handled")
			}
			if w.State() != StateCreated {
				t.Errorf("expected state to be restored after paint, got %v", w.State())
			}
		})
	}
}

func TestWindow_PaintRecoversPanic(t *testing.T) {
	m, w := newMockWindow(t)
	m.EXPECT().AcquireDC(platform.Handle(7)).DoAndReturn(func(platform.Handle) (platform.DC, error) {
		panic("driver bug")
	})

	if _, handled := w.handleMessage(platform.Message{Window: 7, ID: platform.MsgPaint}); !handled {
		t.Error("expected paint to be handled")
	}
	if w.State() != StateCreated {
		t.Errorf("expected state to be restored after panic, got %v", w.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateCreated, "created"},
		{StateVisible, "visible"},
		{StatePainting, "painting"},
		{StateFadingOut, "fading-out"},
		{StateClosing, "closing"},
		{StateDestroyed, "destroyed"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String(): expected %q, got %q", tt.state, tt.expected, got)
		}
	}
}
