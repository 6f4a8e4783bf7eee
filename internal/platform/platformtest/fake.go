// Package platformtest provides an in-memory platform for tests.
//
// The fake keeps one message queue per window with Win32 ordering: posted
// messages first, then a quit request, then a pending paint. DestroyWindow
// and Update call the window procedure synchronously, like their native
// counterparts.
package platformtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/genricoloni/spectre/internal/platform"
)

// Call names accepted by Fail
const (
	CallRegisterClass      = "RegisterClass"
	CallCreateWindow       = "CreateWindow"
	CallDestroyWindow      = "DestroyWindow"
	CallShow               = "Show"
	CallUpdate             = "Update"
	CallRedraw             = "Redraw"
	CallPostMessage        = "PostMessage"
	CallSetLayeredAlpha    = "SetLayeredAlpha"
	CallGetLayeredAlpha    = "GetLayeredAlpha"
	CallAcquireDC          = "AcquireDC"
	CallCreateCompatibleDC = "CreateCompatibleDC"
	CallCreateBitmap       = "CreateBitmap"
	CallBlit               = "Blit"
)

// ErrInvalidHandle is returned for calls on unknown or destroyed windows
var ErrInvalidHandle = errors.New("invalid window handle")

type class struct {
	name string
	proc platform.WindowProc
}

type window struct {
	class  platform.Class
	title  string
	width  int
	height int

	visible      bool
	destroyed    bool
	quit         bool
	paintPending bool
	posted       []uint32

	key      platform.Color
	alpha    uint8
	alphaSet bool
	alphas   []uint8

	blits int
	frame []byte
}

type dc struct {
	window   platform.Handle
	memory   bool
	selected platform.Bitmap
}

// WindowState is a snapshot of a fake window
type WindowState struct {
	Title     string
	Width     int
	Height    int
	Visible   bool
	Destroyed bool
	Key       platform.Color
	Alpha     uint8
	AlphaSet  bool
	Alphas    []uint8
	Blits     int
	Frame     []byte
}

// Fake is an in-memory platform.Platform
type Fake struct {
	mu   sync.Mutex
	cond *sync.Cond

	nextID        uintptr
	registrations int
	classes       map[platform.Class]*class
	names         map[string]platform.Class
	windows       map[platform.Handle]*window
	dcs           map[platform.DC]*dc
	bitmaps       map[platform.Bitmap][]byte
	failures      map[string]error
}

var _ platform.Platform = (*Fake)(nil)

// New returns an empty fake platform
func New() *Fake {
	f := &Fake{
		classes:  make(map[platform.Class]*class),
		names:    make(map[string]platform.Class),
		windows:  make(map[platform.Handle]*window),
		dcs:      make(map[platform.DC]*dc),
		bitmaps:  make(map[platform.Bitmap][]byte),
		failures: make(map[string]error),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Fail makes every subsequent call named call return err. A nil err clears it.
func (f *Fake) Fail(call string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, call)
		return
	}
	f.failures[call] = err
}

func (f *Fake) failure(call string) error {
	if err, ok := f.failures[call]; ok {
		return &platform.CallError{Call: call, Code: 1, Err: err}
	}
	return nil
}

func (f *Fake) id() uintptr {
	f.nextID++
	return f.nextID
}

func (f *Fake) live(h platform.Handle) (*window, error) {
	w, ok := f.windows[h]
	if !ok || w.destroyed {
		return nil, ErrInvalidHandle
	}
	return w, nil
}

// Registrations returns how many classes were registered successfully
func (f *Fake) Registrations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registrations
}

// LiveWindows returns the number of windows not yet destroyed
func (f *Fake) LiveWindows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.windows {
		if !w.destroyed {
			n++
		}
	}
	return n
}

// OpenDCs returns the number of device contexts not yet released
func (f *Fake) OpenDCs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dcs)
}

// OpenBitmaps returns the number of bitmaps not yet deleted
func (f *Fake) OpenBitmaps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bitmaps)
}

// Window returns a snapshot of the window behind h
func (f *Fake) Window(h platform.Handle) (WindowState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[h]
	if !ok {
		return WindowState{}, false
	}
	return WindowState{
		Title:     w.title,
		Width:     w.width,
		Height:    w.height,
		Visible:   w.visible,
		Destroyed: w.destroyed,
		Key:       w.key,
		Alpha:     w.alpha,
		AlphaSet:  w.alphaSet,
		Alphas:    append([]uint8(nil), w.alphas...),
		Blits:     w.blits,
		Frame:     append([]byte(nil), w.frame...),
	}, true
}

// Handles returns every window ever created, in creation order
func (f *Fake) Handles() []platform.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	var hs []platform.Handle
	for id := uintptr(1); id <= f.nextID; id++ {
		if _, ok := f.windows[platform.Handle(id)]; ok {
			hs = append(hs, platform.Handle(id))
		}
	}
	return hs
}

// WaitForWindows blocks until n windows have been created
func (f *Fake) WaitForWindows(n int) []platform.Handle {
	f.mu.Lock()
	for len(f.windows) < n {
		f.cond.Wait()
	}
	f.mu.Unlock()
	return f.Handles()
}

func (f *Fake) RegisterClass(name string, proc platform.WindowProc) (platform.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallRegisterClass); err != nil {
		return 0, err
	}
	if _, ok := f.names[name]; ok {
		return 0, &platform.CallError{Call: CallRegisterClass, Code: 1410, Err: fmt.Errorf("class %q already exists", name)}
	}
	c := platform.Class(f.id())
	f.classes[c] = &class{name: name, proc: proc}
	f.names[name] = c
	f.registrations++
	return c, nil
}

func (f *Fake) CreateWindow(c platform.Class, title string, width, height int) (platform.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallCreateWindow); err != nil {
		return 0, err
	}
	if _, ok := f.classes[c]; !ok {
		return 0, &platform.CallError{Call: CallCreateWindow, Code: 1411}
	}
	h := platform.Handle(f.id())
	f.windows[h] = &window{class: c, title: title, width: width, height: height}
	f.cond.Broadcast()
	return h, nil
}

func (f *Fake) proc(w *window) platform.WindowProc {
	return f.classes[w.class].proc
}

func (f *Fake) DestroyWindow(h platform.Handle) error {
	f.mu.Lock()
	if err := f.failure(CallDestroyWindow); err != nil {
		f.mu.Unlock()
		return err
	}
	w, err := f.live(h)
	if err != nil {
		f.mu.Unlock()
		return &platform.CallError{Call: CallDestroyWindow, Code: 1400, Err: err}
	}
	w.destroyed = true
	w.visible = false
	w.posted = nil
	w.paintPending = false
	proc := f.proc(w)
	f.cond.Broadcast()
	f.mu.Unlock()

	proc(h, platform.Message{Window: h, ID: platform.MsgDestroy})
	return nil
}

func (f *Fake) Show(h platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallShow); err != nil {
		return err
	}
	w, err := f.live(h)
	if err != nil {
		return &platform.CallError{Call: CallShow, Code: 1400, Err: err}
	}
	w.visible = true
	w.paintPending = true
	f.cond.Broadcast()
	return nil
}

func (f *Fake) Update(h platform.Handle) error {
	f.mu.Lock()
	if err := f.failure(CallUpdate); err != nil {
		f.mu.Unlock()
		return err
	}
	w, err := f.live(h)
	if err != nil {
		f.mu.Unlock()
		return &platform.CallError{Call: CallUpdate, Code: 1400, Err: err}
	}
	if !w.paintPending {
		f.mu.Unlock()
		return nil
	}
	w.paintPending = false
	proc := f.proc(w)
	f.mu.Unlock()

	proc(h, platform.Message{Window: h, ID: platform.MsgPaint})
	return nil
}

func (f *Fake) Redraw(h platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallRedraw); err != nil {
		return err
	}
	w, err := f.live(h)
	if err != nil {
		return &platform.CallError{Call: CallRedraw, Code: 1400, Err: err}
	}
	w.paintPending = true
	f.cond.Broadcast()
	return nil
}

// GetMessage blocks until the window has a posted message, a quit request
// or a pending paint. A destroyed window with nothing queued is closed.
func (f *Fake) GetMessage(h platform.Handle) (platform.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		w, ok := f.windows[h]
		if !ok {
			return platform.Message{}, false
		}
		switch {
		case len(w.posted) > 0:
			id := w.posted[0]
			w.posted = w.posted[1:]
			return platform.Message{Window: h, ID: id}, true
		case w.quit:
			w.quit = false
			return platform.Message{Window: h, ID: platform.MsgQuit}, false
		case w.paintPending:
			w.paintPending = false
			return platform.Message{Window: h, ID: platform.MsgPaint}, true
		case w.destroyed:
			return platform.Message{}, false
		}
		f.cond.Wait()
	}
}

// DispatchMessage calls the class procedure. An unhandled MsgClose
// destroys the window.
func (f *Fake) DispatchMessage(m platform.Message) {
	f.mu.Lock()
	w, ok := f.windows[m.Window]
	if !ok {
		f.mu.Unlock()
		return
	}
	proc := f.proc(w)
	f.mu.Unlock()

	if _, handled := proc(m.Window, m); !handled && m.ID == platform.MsgClose {
		_ = f.DestroyWindow(m.Window)
	}
}

func (f *Fake) PostMessage(h platform.Handle, id uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallPostMessage); err != nil {
		return err
	}
	w, err := f.live(h)
	if err != nil {
		return &platform.CallError{Call: CallPostMessage, Code: 1400, Err: err}
	}
	w.posted = append(w.posted, id)
	f.cond.Broadcast()
	return nil
}

func (f *Fake) PostQuit(h platform.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[h]; ok {
		w.quit = true
		f.cond.Broadcast()
	}
}

func (f *Fake) SetLayeredAlpha(h platform.Handle, key platform.Color, alpha uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallSetLayeredAlpha); err != nil {
		return err
	}
	w, err := f.live(h)
	if err != nil {
		return &platform.CallError{Call: CallSetLayeredAlpha, Code: 1400, Err: err}
	}
	w.key = key
	w.alpha = alpha
	w.alphaSet = true
	w.alphas = append(w.alphas, alpha)
	return nil
}

func (f *Fake) GetLayeredAlpha(h platform.Handle) (uint8, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallGetLayeredAlpha); err != nil {
		return 0, err
	}
	w, err := f.live(h)
	if err != nil {
		return 0, &platform.CallError{Call: CallGetLayeredAlpha, Code: 1400, Err: err}
	}
	if !w.alphaSet {
		return 0, &platform.CallError{Call: CallGetLayeredAlpha, Code: 13}
	}
	return w.alpha, nil
}

func (f *Fake) AcquireDC(h platform.Handle) (platform.DC, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallAcquireDC); err != nil {
		return 0, err
	}
	if _, err := f.live(h); err != nil {
		return 0, &platform.CallError{Call: CallAcquireDC, Code: 1400, Err: err}
	}
	d := platform.DC(f.id())
	f.dcs[d] = &dc{window: h}
	return d, nil
}

func (f *Fake) ReleaseDC(_ platform.Handle, d platform.DC) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.dcs, d)
}

func (f *Fake) CreateCompatibleDC(d platform.DC) (platform.DC, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallCreateCompatibleDC); err != nil {
		return 0, err
	}
	src, ok := f.dcs[d]
	if !ok {
		return 0, &platform.CallError{Call: CallCreateCompatibleDC, Code: 6}
	}
	mem := platform.DC(f.id())
	f.dcs[mem] = &dc{window: src.window, memory: true}
	return mem, nil
}

func (f *Fake) DeleteDC(d platform.DC) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.dcs, d)
}

func (f *Fake) CreateBitmap(d platform.DC, width, height int, bgrx []byte) (platform.Bitmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallCreateBitmap); err != nil {
		return 0, err
	}
	if _, ok := f.dcs[d]; !ok {
		return 0, &platform.CallError{Call: CallCreateBitmap, Code: 6}
	}
	if width <= 0 || height <= 0 || len(bgrx) != width*height*4 {
		return 0, &platform.CallError{Call: CallCreateBitmap, Code: 87}
	}
	b := platform.Bitmap(f.id())
	f.bitmaps[b] = append([]byte(nil), bgrx...)
	return b, nil
}

func (f *Fake) DeleteBitmap(b platform.Bitmap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bitmaps, b)
}

func (f *Fake) SelectBitmap(d platform.DC, b platform.Bitmap) platform.Bitmap {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.dcs[d]
	if !ok {
		return 0
	}
	prev := m.selected
	m.selected = b
	return prev
}

func (f *Fake) Blit(dst platform.DC, _, _, _, _ int, src platform.DC) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(CallBlit); err != nil {
		return err
	}
	d, okDst := f.dcs[dst]
	s, okSrc := f.dcs[src]
	if !okDst || !okSrc {
		return &platform.CallError{Call: CallBlit, Code: 6}
	}
	pix, ok := f.bitmaps[s.selected]
	if !ok {
		return &platform.CallError{Call: CallBlit, Code: 6}
	}
	if w, ok := f.windows[d.window]; ok {
		w.blits++
		w.frame = append(w.frame[:0], pix...)
	}
	return nil
}
