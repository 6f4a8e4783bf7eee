// Package platform abstracts the native windowing system used to draw toasts.
//
// A Platform exposes five capabilities: registering a window class with a
// window procedure, creating topmost click-through layered popups, a blocking
// per-thread message queue, per-window alpha against a colour key, and
// turning a pixel buffer into a drawable resource blitted into a device
// context. Win32 and X11 implementations are selected by build tags.
package platform

import (
	"errors"
	"fmt"
)

// Handle identifies a native window
type Handle uintptr

// Class identifies a registered window class
type Class uintptr

// DC identifies a device context (a drawing target)
type DC uintptr

// Bitmap identifies a native bitmap resource
type Bitmap uintptr

// Message IDs understood by every platform. The values match Win32 so the
// reference platform can pass them through unchanged.
const (
	MsgDestroy uint32 = 0x0002
	MsgPaint   uint32 = 0x000F
	MsgClose   uint32 = 0x0010
	MsgQuit    uint32 = 0x0012
)

// Message is one entry retrieved from a window's queue
type Message struct {
	Window Handle
	ID     uint32
	WParam uintptr
	LParam uintptr
}

// WindowProc handles a message dispatched to a window of a registered class.
// Returning handled=false requests the platform's default handling.
type WindowProc func(h Handle, msg Message) (result uintptr, handled bool)

// Color is a colour reference in 0x00BBGGRR layout
type Color uint32

// RGB builds a Color from its components
func RGB(r, g, b uint8) Color {
	return Color(uint32(r) | uint32(g)<<8 | uint32(b)<<16)
}

// RGB returns the colour's components
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c), uint8(c >> 8), uint8(c >> 16)
}

// Windowing covers window class registration, window lifetime and the message queue.
type Windowing interface {
	// RegisterClass registers a window class whose windows are handled by proc
	RegisterClass(name string, proc WindowProc) (Class, error)

	// CreateWindow creates a topmost, click-through, layered, non-activating,
	// borderless popup of the given size at the platform's default position
	CreateWindow(class Class, title string, width, height int) (Handle, error)

	// DestroyWindow destroys the window; the class procedure receives MsgDestroy
	DestroyWindow(h Handle) error

	// Show makes the window visible without activating it
	Show(h Handle) error

	// Update forces a pending repaint to happen now
	Update(h Handle) error

	// Redraw invalidates the window so a paint message is queued
	Redraw(h Handle) error

	// GetMessage blocks until a message for the calling thread's window is
	// available. It returns false once the queue received a quit request or
	// was torn down.
	GetMessage(h Handle) (Message, bool)

	// DispatchMessage routes a retrieved message to the class procedure
	DispatchMessage(msg Message)

	// PostMessage appends a message to the window's queue. Safe from any thread.
	PostMessage(h Handle, id uint32) error

	// PostQuit asks the queue serving h to stop
	PostQuit(h Handle)
}

// Layering covers whole-window alpha against a colour key
type Layering interface {
	SetLayeredAlpha(h Handle, key Color, alpha uint8) error
	GetLayeredAlpha(h Handle) (uint8, error)
}

// Drawing covers device contexts and bitmaps
type Drawing interface {
	AcquireDC(h Handle) (DC, error)
	ReleaseDC(h Handle, dc DC)
	CreateCompatibleDC(dc DC) (DC, error)
	DeleteDC(dc DC)

	// CreateBitmap allocates a bitmap compatible with dc from top-down rows
	// of 32-bit BGRX pixels. Partially allocated resources are released
	// before an error is returned.
	CreateBitmap(dc DC, width, height int, bgrx []byte) (Bitmap, error)
	DeleteBitmap(b Bitmap)

	// SelectBitmap selects b into a memory DC and returns the previous selection
	SelectBitmap(dc DC, b Bitmap) Bitmap

	// Blit copies width x height pixels from src at (0,0) to dst at (x,y)
	Blit(dst DC, x, y, width, height int, src DC) error
}

// Platform is the full set of capabilities a toast needs
//
//go:generate mockgen -destination=mocks/platform_mock.go -package=mocks github.com/genricoloni/spectre/internal/platform Platform
type Platform interface {
	Windowing
	Layering
	Drawing
}

// ErrUnsupported is returned by platforms that cannot show toasts
var ErrUnsupported = errors.New("overlay windows are not supported on this system")

// CallError reports a failed native call together with its last-error code
type CallError struct {
	Call string
	Code uint32
	Err  error
}

func (e *CallError) Error() string {
	switch {
	case e.Err != nil && e.Code != 0:
		return fmt.Sprintf("%s failed (code %d): %v", e.Call, e.Code, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Call, e.Err)
	default:
		return fmt.Sprintf("%s failed (code %d)", e.Call, e.Code)
	}
}

func (e *CallError) Unwrap() error {
	return e.Err
}
