package overlay

import (
	"sync/atomic"

	"github.com/genricoloni/spectre/internal/domain"
	"github.com/genricoloni/spectre/internal/platform"
	"go.uber.org/zap"
)

const (
	// CanvasSize is the width and height of every toast
	CanvasSize = 300
	// InitialAlpha is the opacity a toast is shown with
	InitialAlpha uint8 = 126
)

// ColorKey is painted wherever the thumbnail leaves the canvas uncovered
var ColorKey = platform.RGB(126, 126, 126)

// State is a window lifecycle state
type State int32

const (
	StateCreated State = iota
	StateVisible
	StatePainting
	StateFadingOut
	StateClosing
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateVisible:
		return "visible"
	case StatePainting:
		return "painting"
	case StateFadingOut:
		return "fading-out"
	case StateClosing:
		return "closing"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Window is one toast. Apart from MessageSelf and the read-only accessors,
// its methods must be called from the goroutine that created it, which
// has to stay locked to its OS thread.
type Window struct {
	registry  *ClassRegistry
	platform  platform.Platform
	projector *Projector
	logger    *zap.Logger

	hwnd   platform.Handle
	title  string
	record domain.DisplayRecord

	alive   atomic.Bool
	state   atomic.Int32
	opacity atomic.Uint32
}

// Option configures a Window
type Option func(*Window)

// WithLogger overrides the registry's logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *Window) {
		w.logger = logger
	}
}

// New creates a hidden toast window holding its own copy of rec
func New(reg *ClassRegistry, title string, rec domain.DisplayRecord, opts ...Option) (*Window, error) {
	cls, err := reg.Instance()
	if err != nil {
		return nil, err
	}

	w := &Window{
		registry:  reg,
		platform:  reg.platform,
		projector: NewProjector(reg.platform, ColorKey),
		logger:    reg.logger,
		title:     title,
		record:    rec.Clone(),
	}
	for _, opt := range opts {
		opt(w)
	}

	h, err := w.platform.CreateWindow(cls.Handle, title, CanvasSize, CanvasSize)
	if err != nil {
		w.logger.Warn("Failed to create toast window", zap.String("title", title), zap.Error(err))
		return nil, &Error{Op: "create window", Kind: ErrWindowCreationFailed, Err: err}
	}

	w.hwnd = h
	w.logger = w.logger.With(zap.String("title", title), zap.Uintptr("hwnd", uintptr(h)))
	w.alive.Store(true)
	reg.bind(h, w)

	w.logger.Debug("Toast window created")
	return w, nil
}

// Init shows the window, paints it and applies the initial opacity. It
// leaves a repaint queued, so the first PumpOnce after it never blocks.
func (w *Window) Init() error {
	if err := w.platform.Show(w.hwnd); err != nil {
		return &Error{Op: "show window", Kind: ErrPlatformCallFailed, Err: err}
	}
	w.setState(StateVisible)

	if err := w.platform.Update(w.hwnd); err != nil {
		w.logger.Warn("Initial paint failed", zap.Error(err))
	}
	if err := w.SetTransparency(ColorKey, InitialAlpha); err != nil {
		return err
	}
	if err := w.Redraw(); err != nil {
		w.logger.Warn("Failed to queue repaint", zap.Error(err))
	}
	return nil
}

// SetTransparency applies alpha to the whole window, treating key as transparent
func (w *Window) SetTransparency(key platform.Color, alpha uint8) error {
	if err := w.platform.SetLayeredAlpha(w.hwnd, key, alpha); err != nil {
		return &Error{Op: "set transparency", Kind: ErrPlatformCallFailed, Err: err}
	}
	w.opacity.Store(uint32(alpha))
	return nil
}

// CurrentAlpha reads the window's alpha back from the platform. It reports
// false when the window is gone or no alpha was applied yet.
func (w *Window) CurrentAlpha() (uint8, bool) {
	alpha, err := w.platform.GetLayeredAlpha(w.hwnd)
	if err != nil {
		w.logger.Debug("Alpha unavailable", zap.Error(err))
		return 0, false
	}
	return alpha, true
}

// Redraw queues a repaint without painting immediately
func (w *Window) Redraw() error {
	if err := w.platform.Redraw(w.hwnd); err != nil {
		return &Error{Op: "redraw", Kind: ErrPlatformCallFailed, Err: err}
	}
	return nil
}

// MessageSelf posts msg to the window's queue. Safe from any goroutine.
func (w *Window) MessageSelf(msg uint32) error {
	if err := w.platform.PostMessage(w.hwnd, msg); err != nil {
		return &Error{Op: "post message", Kind: ErrPlatformCallFailed, Err: err}
	}
	return nil
}

// PumpOnce waits for one message and dispatches it. It returns false once
// the queue is gone, and immediately on a window that is already gone.
func (w *Window) PumpOnce() bool {
	if !w.alive.Load() {
		return false
	}

	msg, ok := w.platform.GetMessage(w.hwnd)
	if !ok {
		w.alive.Store(false)
		w.state.Store(int32(StateDestroyed))
		w.registry.unbind(w.hwnd)
		w.logger.Debug("Toast message queue closed")
		return false
	}

	w.platform.DispatchMessage(msg)
	return true
}

// Destruct closes the window and drains its queue. Calling it again is a no-op.
func (w *Window) Destruct() {
	if !w.alive.Load() {
		return
	}

	w.setState(StateClosing)
	if err := w.MessageSelf(platform.MsgClose); err != nil {
		w.logger.Warn("Failed to post close, destroying directly", zap.Error(err))
		if err := w.platform.DestroyWindow(w.hwnd); err != nil {
			// Nothing will ever reach the queue again
			w.logger.Error("Failed to destroy toast window", zap.Error(err))
			w.alive.Store(false)
			w.state.Store(int32(StateDestroyed))
			w.registry.unbind(w.hwnd)
			return
		}
	}

	for w.PumpOnce() {
	}
}

// Alive reports whether the window's queue is still open
func (w *Window) Alive() bool {
	return w.alive.Load()
}

// State returns the lifecycle state
func (w *Window) State() State {
	return State(w.state.Load())
}

// Handle returns the native window handle
func (w *Window) Handle() platform.Handle {
	return w.hwnd
}

// Title returns the window title
func (w *Window) Title() string {
	return w.title
}

// Record returns the window's display record
func (w *Window) Record() domain.DisplayRecord {
	return w.record
}

// Opacity returns the alpha last applied by SetTransparency
func (w *Window) Opacity() uint8 {
	return uint8(w.opacity.Load())
}

func (w *Window) beginFade() {
	w.setState(StateFadingOut)
}

// setState moves forward only: closing and destroyed are never left
func (w *Window) setState(s State) {
	for {
		cur := w.state.Load()
		if State(cur) >= StateClosing && s < State(cur) {
			return
		}
		if w.state.CompareAndSwap(cur, int32(s)) {
			return
		}
	}
}

func (w *Window) handleMessage(msg platform.Message) (uintptr, bool) {
	switch msg.ID {
	case platform.MsgPaint:
		w.paint()
		return 0, true
	case platform.MsgClose:
		w.setState(StateClosing)
		if err := w.platform.DestroyWindow(w.hwnd); err != nil {
			w.logger.Warn("Failed to destroy toast window", zap.Error(err))
		}
		return 0, true
	case platform.MsgDestroy:
		w.registry.unbind(w.hwnd)
		w.setState(StateDestroyed)
		w.platform.PostQuit(w.hwnd)
		return 0, true
	}
	return 0, false
}

func (w *Window) paint() {
	prev := w.State()
	if prev >= StateClosing {
		return
	}
	w.state.Store(int32(StatePainting))
	defer w.state.CompareAndSwap(int32(StatePainting), int32(prev))

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Paint panicked", zap.Any("panic", r))
		}
	}()

	if err := w.draw(); err != nil {
		w.logger.Warn("Paint abandoned", zap.Error(err))
	}
}

func (w *Window) draw() error {
	thumb := w.record.Thumbnail
	if thumb == nil {
		w.logger.Warn("No thumbnail to paint")
		return nil
	}

	dc, err := w.platform.AcquireDC(w.hwnd)
	if err != nil {
		return &Error{Op: "acquire dc", Kind: ErrPlatformResourceFailure, Err: err}
	}
	defer w.platform.ReleaseDC(w.hwnd, dc)

	mem, err := w.platform.CreateCompatibleDC(dc)
	if err != nil {
		return &Error{Op: "create memory dc", Kind: ErrPlatformResourceFailure, Err: err}
	}
	defer w.platform.DeleteDC(mem)

	bmp, err := w.projector.Render(dc, thumb)
	if err != nil {
		return err
	}
	defer w.platform.DeleteBitmap(bmp)

	old := w.platform.SelectBitmap(mem, bmp)
	defer w.platform.SelectBitmap(mem, old)

	b := thumb.Bounds()
	if err := w.platform.Blit(dc, 0, 0, b.Dx(), b.Dy(), mem); err != nil {
		return &Error{Op: "blit", Kind: ErrPlatformResourceFailure, Err: err}
	}
	return nil
}
