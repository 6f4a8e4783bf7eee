//go:build windows
// +build windows

package platform

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/genricoloni/spectre/internal/domain"
	"github.com/lxn/win"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

const (
	lwaColorKey = 0x1
	lwaAlpha    = 0x2

	errorClassDoesNotExist = 1411

	overlayExStyle = win.WS_EX_TOPMOST | win.WS_EX_TRANSPARENT | win.WS_EX_LAYERED | win.WS_EX_NOACTIVATE
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procGetLayeredWindowAttributes = user32.NewProc("GetLayeredWindowAttributes")
	procValidateRect               = user32.NewProc("ValidateRect")
)

// Win32 draws toasts with User32/GDI
type Win32 struct {
	logger   *zap.Logger
	instance win.HINSTANCE

	mu      sync.Mutex
	classes map[Class]*uint16 // class atom -> class name kept alive for CreateWindowEx
}

// New returns the native platform (Win32 implementation)
func New(logger *zap.Logger, _ *domain.ScreenResolution) Platform {
	return &Win32{
		logger:   logger.Named("win32"),
		instance: win.GetModuleHandle(nil),
		classes:  make(map[Class]*uint16),
	}
}

func lastError(call string) *CallError {
	return &CallError{Call: call, Code: win.GetLastError()}
}

// RegisterClass registers a window class backed by proc
func (p *Win32) RegisterClass(name string, proc WindowProc) (Class, error) {
	className, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, &CallError{Call: "RegisterClassEx", Err: err}
	}

	// One callback per class: the number of callbacks a process may create is limited
	callback := syscall.NewCallback(func(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
		if res, handled := proc(Handle(hwnd), Message{Window: Handle(hwnd), ID: msg, WParam: wParam, LParam: lParam}); handled {
			// Painting goes through GetDC, so the update region has to be validated here
			if msg == MsgPaint {
				procValidateRect.Call(uintptr(hwnd), 0)
			}
			return res
		}
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	})

	wc := win.WNDCLASSEX{
		LpfnWndProc:   callback,
		HInstance:     p.instance,
		LpszClassName: className,
	}
	wc.CbSize = uint32(unsafe.Sizeof(wc))

	atom := win.RegisterClassEx(&wc)
	if atom == 0 {
		return 0, lastError("RegisterClassEx")
	}

	p.mu.Lock()
	p.classes[Class(atom)] = className
	p.mu.Unlock()

	p.logger.Debug("Window class registered", zap.String("class", name), zap.Uint16("atom", uint16(atom)))
	return Class(atom), nil
}

// CreateWindow creates the layered overlay popup
func (p *Win32) CreateWindow(class Class, title string, width, height int) (Handle, error) {
	p.mu.Lock()
	className, ok := p.classes[class]
	p.mu.Unlock()
	if !ok {
		return 0, &CallError{Call: "CreateWindowEx", Code: errorClassDoesNotExist}
	}

	windowName, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, &CallError{Call: "CreateWindowEx", Err: err}
	}

	hwnd := win.CreateWindowEx(
		overlayExStyle,
		className,
		windowName,
		win.WS_POPUP,
		win.CW_USEDEFAULT, win.CW_USEDEFAULT,
		int32(width), int32(height),
		0, 0, p.instance, nil)
	if hwnd == 0 {
		return 0, lastError("CreateWindowEx")
	}
	return Handle(hwnd), nil
}

// DestroyWindow destroys the window; WM_DESTROY is delivered synchronously
func (p *Win32) DestroyWindow(h Handle) error {
	if !win.DestroyWindow(win.HWND(h)) {
		return lastError("DestroyWindow")
	}
	return nil
}

// Show makes the window visible without taking focus
func (p *Win32) Show(h Handle) error {
	// The return value is the previous visibility, not a failure indicator
	win.ShowWindow(win.HWND(h), win.SW_SHOWNOACTIVATE)
	return nil
}

// Update sends WM_PAINT straight to the window procedure if the window needs painting
func (p *Win32) Update(h Handle) error {
	if !win.UpdateWindow(win.HWND(h)) {
		return lastError("UpdateWindow")
	}
	return nil
}

// Redraw invalidates the window without painting immediately
func (p *Win32) Redraw(h Handle) error {
	if !win.RedrawWindow(win.HWND(h), nil, 0, win.RDW_INVALIDATE|win.RDW_ALLCHILDREN) {
		return lastError("RedrawWindow")
	}
	return nil
}

// GetMessage blocks on the calling thread's queue. Every toast owns its
// thread, so the thread queue is the window's queue.
func (p *Win32) GetMessage(_ Handle) (Message, bool) {
	var msg win.MSG
	switch win.GetMessage(&msg, 0, 0, 0) {
	case 0:
		return Message{Window: Handle(msg.HWnd), ID: msg.Message}, false
	case -1:
		p.logger.Warn("GetMessage failed, treating queue as closed", zap.Uint32("code", win.GetLastError()))
		return Message{}, false
	}
	return Message{Window: Handle(msg.HWnd), ID: msg.Message, WParam: msg.WParam, LParam: msg.LParam}, true
}

// DispatchMessage hands the message to the class window procedure
func (p *Win32) DispatchMessage(m Message) {
	msg := win.MSG{HWnd: win.HWND(m.Window), Message: m.ID, WParam: m.WParam, LParam: m.LParam}
	win.TranslateMessage(&msg)
	win.DispatchMessage(&msg)
}

// PostMessage posts to the window's queue from any thread
func (p *Win32) PostMessage(h Handle, id uint32) error {
	if win.PostMessage(win.HWND(h), id, 0, 0) == 0 {
		return lastError("PostMessage")
	}
	return nil
}

// PostQuit posts WM_QUIT to the calling thread, which owns h
func (p *Win32) PostQuit(_ Handle) {
	win.PostQuitMessage(0)
}

// SetLayeredAlpha applies whole-window alpha and keys out the colour key
func (p *Win32) SetLayeredAlpha(h Handle, key Color, alpha uint8) error {
	r1, _, e1 := procSetLayeredWindowAttributes.Call(uintptr(h), uintptr(key), uintptr(alpha), lwaAlpha|lwaColorKey)
	if r1 == 0 {
		return errnoError("SetLayeredWindowAttributes", e1)
	}
	return nil
}

// GetLayeredAlpha reads back the window's alpha
func (p *Win32) GetLayeredAlpha(h Handle) (uint8, error) {
	var (
		key   uint32
		alpha uint8
		flags uint32
	)
	r1, _, e1 := procGetLayeredWindowAttributes.Call(uintptr(h),
		uintptr(unsafe.Pointer(&key)),
		uintptr(unsafe.Pointer(&alpha)),
		uintptr(unsafe.Pointer(&flags)))
	if r1 == 0 {
		return 0, errnoError("GetLayeredWindowAttributes", e1)
	}
	if flags&lwaAlpha == 0 {
		return 0, &CallError{Call: "GetLayeredWindowAttributes", Code: uint32(windows.ERROR_INVALID_DATA)}
	}
	return alpha, nil
}

func errnoError(call string, err error) *CallError {
	if errno, ok := err.(syscall.Errno); ok {
		return &CallError{Call: call, Code: uint32(errno), Err: errno}
	}
	return &CallError{Call: call, Err: err}
}

// AcquireDC returns the window's client-area DC
func (p *Win32) AcquireDC(h Handle) (DC, error) {
	hdc := win.GetDC(win.HWND(h))
	if hdc == 0 {
		return 0, lastError("GetDC")
	}
	return DC(hdc), nil
}

// ReleaseDC releases a DC obtained from AcquireDC
func (p *Win32) ReleaseDC(h Handle, dc DC) {
	win.ReleaseDC(win.HWND(h), win.HDC(dc))
}

// CreateCompatibleDC creates a memory DC
func (p *Win32) CreateCompatibleDC(dc DC) (DC, error) {
	mem := win.CreateCompatibleDC(win.HDC(dc))
	if mem == 0 {
		return 0, lastError("CreateCompatibleDC")
	}
	return DC(mem), nil
}

// DeleteDC deletes a memory DC
func (p *Win32) DeleteDC(dc DC) {
	win.DeleteDC(win.HDC(dc))
}

// CreateBitmap builds a 32-bit DIB section. A negative height makes the rows top-down.
func (p *Win32) CreateBitmap(dc DC, width, height int, bgrx []byte) (Bitmap, error) {
	bi := win.BITMAPINFOHEADER{
		BiWidth:       int32(width),
		BiHeight:      -int32(height),
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: win.BI_RGB,
	}
	bi.BiSize = uint32(unsafe.Sizeof(bi))

	var bits unsafe.Pointer
	hbmp := win.CreateDIBSection(win.HDC(dc), &bi, win.DIB_RGB_COLORS, &bits, 0, 0)
	if hbmp == 0 || bits == nil {
		err := lastError("CreateDIBSection")
		if hbmp != 0 {
			win.DeleteObject(win.HGDIOBJ(hbmp))
		}
		return 0, err
	}

	copy(unsafe.Slice((*byte)(bits), width*height*4), bgrx)
	return Bitmap(hbmp), nil
}

// DeleteBitmap frees a bitmap created by CreateBitmap
func (p *Win32) DeleteBitmap(b Bitmap) {
	win.DeleteObject(win.HGDIOBJ(b))
}

// SelectBitmap selects b into dc
func (p *Win32) SelectBitmap(dc DC, b Bitmap) Bitmap {
	return Bitmap(win.SelectObject(win.HDC(dc), win.HGDIOBJ(b)))
}

// Blit copies from the memory DC into dst
func (p *Win32) Blit(dst DC, x, y, width, height int, src DC) error {
	if !win.BitBlt(win.HDC(dst), int32(x), int32(y), int32(width), int32(height), win.HDC(src), 0, 0, win.SRCCOPY) {
		return lastError("BitBlt")
	}
	return nil
}
