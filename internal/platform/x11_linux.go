//go:build linux
// +build linux

package platform

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/genricoloni/spectre/internal/domain"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xproto"
	"go.uber.org/zap"
)

const (
	opacityAtomName = "_NET_WM_WINDOW_OPACITY"
	messageAtomName = "SPECTRE_MESSAGE"

	// Toasts open this far from the primary display's top-left corner
	originMargin = 32

	// Upper bound for a single PutImage request payload
	maxPutImageBytes = 64 * 1024
)

// X11 draws toasts as override-redirect windows. Every window owns its
// own connection so that the event stream is the window's message queue.
type X11 struct {
	logger           *zap.Logger
	originX, originY int16

	mu      sync.Mutex
	nextCls Class
	classes map[Class]*x11Class
	names   map[string]Class
	windows map[Handle]*x11Window
	dcs     map[DC]*x11DC
	bitmaps map[Bitmap]*xgb.Conn
}

type x11Class struct {
	name string
	proc WindowProc
}

type x11Window struct {
	conn    *xgb.Conn
	id      xproto.Window
	depth   byte
	proc    WindowProc
	opacity xproto.Atom
	message xproto.Atom

	quit      atomic.Bool
	destroyed atomic.Bool
}

type x11DC struct {
	conn     *xgb.Conn
	window   *x11Window
	gc       xproto.Gcontext
	selected Bitmap
}

// New returns the native platform (X11 implementation)
func New(logger *zap.Logger, res *domain.ScreenResolution) Platform {
	p := &X11{
		logger:  logger.Named("x11"),
		classes: make(map[Class]*x11Class),
		names:   make(map[string]Class),
		windows: make(map[Handle]*x11Window),
		dcs:     make(map[DC]*x11DC),
		bitmaps: make(map[Bitmap]*xgb.Conn),
	}
	if res != nil {
		p.originX = int16(res.X + originMargin)
		p.originY = int16(res.Y + originMargin)
	}
	return p
}

// RegisterClass records proc under name. X11 has no window classes, so
// registration cannot fail apart from a duplicate name.
func (p *X11) RegisterClass(name string, proc WindowProc) (Class, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.names[name]; ok {
		return 0, &CallError{Call: "RegisterClass", Err: fmt.Errorf("class %q already registered", name)}
	}
	p.nextCls++
	p.classes[p.nextCls] = &x11Class{name: name, proc: proc}
	p.names[name] = p.nextCls

	p.logger.Debug("Window class registered", zap.String("class", name))
	return p.nextCls, nil
}

// CreateWindow opens a connection and creates an override-redirect window
// with an empty input shape, so pointer events fall through it
func (p *X11) CreateWindow(class Class, title string, width, height int) (Handle, error) {
	p.mu.Lock()
	cls, ok := p.classes[class]
	p.mu.Unlock()
	if !ok {
		return 0, &CallError{Call: "CreateWindow", Err: errors.New("unknown window class")}
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return 0, &CallError{Call: "XOpenDisplay", Err: err}
	}

	w, err := p.createWindow(conn, cls, title, width, height)
	if err != nil {
		conn.Close()
		return 0, err
	}

	h := Handle(w.id)
	p.mu.Lock()
	p.windows[h] = w
	p.mu.Unlock()
	return h, nil
}

func (p *X11) createWindow(conn *xgb.Conn, cls *x11Class, title string, width, height int) (*x11Window, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, &CallError{Call: "CreateWindow", Err: err}
	}

	key := colorKeyPixel()
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, wid, screen.Root,
		p.originX, p.originY, uint16(width), uint16(height), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{key, 1, xproto.EventMaskExposure | xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		return nil, &CallError{Call: "CreateWindow", Err: err}
	}

	w := &x11Window{conn: conn, id: wid, depth: screen.RootDepth, proc: cls.proc}

	if w.opacity, err = internAtom(conn, opacityAtomName); err != nil {
		return nil, err
	}
	if w.message, err = internAtom(conn, messageAtomName); err != nil {
		return nil, err
	}

	if err := xproto.ChangePropertyChecked(conn, xproto.PropModeReplace, wid,
		xproto.AtomWmName, xproto.AtomString, 8, uint32(len(title)), []byte(title)).Check(); err != nil {
		p.logger.Warn("Failed to set window title", zap.Error(err))
	}

	if err := shape.Init(conn); err != nil {
		p.logger.Warn("Shape extension unavailable, toast will not be click-through", zap.Error(err))
	} else if err := shape.RectanglesChecked(conn, shape.SoSet, shape.SkInput,
		xproto.ClipOrderingUnsorted, wid, 0, 0, nil).Check(); err != nil {
		p.logger.Warn("Failed to clear input shape", zap.Error(err))
	}

	return w, nil
}

// colorKeyPixel is the background shown before the first paint
func colorKeyPixel() uint32 {
	return 126<<16 | 126<<8 | 126
}

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, &CallError{Call: "InternAtom", Err: err}
	}
	return reply.Atom, nil
}

func (p *X11) window(h Handle) (*x11Window, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.windows[h]
	return w, ok
}

// DestroyWindow destroys the window and delivers MsgDestroy before returning
func (p *X11) DestroyWindow(h Handle) error {
	w, ok := p.window(h)
	if !ok || !w.destroyed.CompareAndSwap(false, true) {
		return &CallError{Call: "DestroyWindow", Err: errors.New("invalid window handle")}
	}
	if err := xproto.DestroyWindowChecked(w.conn, w.id).Check(); err != nil {
		p.logger.Warn("DestroyWindow request failed", zap.Error(err))
	}
	w.proc(h, Message{Window: h, ID: MsgDestroy})
	return nil
}

// Show maps the window
func (p *X11) Show(h Handle) error {
	w, ok := p.window(h)
	if !ok {
		return &CallError{Call: "MapWindow", Err: errors.New("invalid window handle")}
	}
	if err := xproto.MapWindowChecked(w.conn, w.id).Check(); err != nil {
		return &CallError{Call: "MapWindow", Err: err}
	}
	return nil
}

// Update paints the window synchronously
func (p *X11) Update(h Handle) error {
	w, ok := p.window(h)
	if !ok || w.destroyed.Load() {
		return &CallError{Call: "UpdateWindow", Err: errors.New("invalid window handle")}
	}
	w.proc(h, Message{Window: h, ID: MsgPaint})
	return nil
}

// Redraw clears the window, which makes the server send an Expose event
func (p *X11) Redraw(h Handle) error {
	w, ok := p.window(h)
	if !ok {
		return &CallError{Call: "ClearArea", Err: errors.New("invalid window handle")}
	}
	if err := xproto.ClearAreaChecked(w.conn, true, w.id, 0, 0, 0, 0).Check(); err != nil {
		return &CallError{Call: "ClearArea", Err: err}
	}
	return nil
}

// GetMessage translates the window connection's events into messages.
// After PostQuit it closes the connection and returns false.
func (p *X11) GetMessage(h Handle) (Message, bool) {
	w, ok := p.window(h)
	if !ok {
		return Message{}, false
	}

	for {
		if w.quit.Load() {
			p.close(h, w)
			return Message{Window: h, ID: MsgQuit}, false
		}

		ev, xerr := w.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			p.close(h, w)
			return Message{}, false
		}
		if xerr != nil {
			p.logger.Debug("X error", zap.String("error", xerr.Error()))
			continue
		}

		switch e := ev.(type) {
		case xproto.ExposeEvent:
			if e.Count == 0 {
				return Message{Window: h, ID: MsgPaint}, true
			}
		case xproto.ClientMessageEvent:
			if e.Type == w.message && len(e.Data.Data32) > 0 {
				return Message{Window: h, ID: e.Data.Data32[0]}, true
			}
		case xproto.DestroyNotifyEvent:
			if w.destroyed.CompareAndSwap(false, true) {
				return Message{Window: h, ID: MsgDestroy}, true
			}
		}
	}
}

func (p *X11) close(h Handle, w *x11Window) {
	p.mu.Lock()
	delete(p.windows, h)
	p.mu.Unlock()
	w.conn.Close()
}

// DispatchMessage calls the class procedure. An unhandled MsgClose
// destroys the window.
func (p *X11) DispatchMessage(m Message) {
	w, ok := p.window(m.Window)
	if !ok {
		return
	}
	if _, handled := w.proc(m.Window, m); !handled && m.ID == MsgClose {
		_ = p.DestroyWindow(m.Window)
	}
}

// PostMessage sends a client message to the window itself
func (p *X11) PostMessage(h Handle, id uint32) error {
	w, ok := p.window(h)
	if !ok || w.destroyed.Load() {
		return &CallError{Call: "SendEvent", Err: errors.New("invalid window handle")}
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w.id,
		Type:   w.message,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{id, 0, 0, 0, 0}),
	}
	if err := xproto.SendEventChecked(w.conn, false, w.id, xproto.EventMaskNoEvent, string(ev.Bytes())).Check(); err != nil {
		return &CallError{Call: "SendEvent", Err: err}
	}
	return nil
}

// PostQuit makes the next GetMessage on h return false
func (p *X11) PostQuit(h Handle) {
	if w, ok := p.window(h); ok {
		w.quit.Store(true)
	}
}

// SetLayeredAlpha sets _NET_WM_WINDOW_OPACITY. Compositors have no colour
// key, so key is ignored; the letterbox is painted in the key colour.
func (p *X11) SetLayeredAlpha(h Handle, _ Color, alpha uint8) error {
	w, ok := p.window(h)
	if !ok {
		return &CallError{Call: "ChangeProperty", Err: errors.New("invalid window handle")}
	}
	buf := make([]byte, 4)
	xgb.Put32(buf, uint32(alpha)*0x01010101)
	if err := xproto.ChangePropertyChecked(w.conn, xproto.PropModeReplace, w.id,
		w.opacity, xproto.AtomCardinal, 32, 1, buf).Check(); err != nil {
		return &CallError{Call: "ChangeProperty", Err: err}
	}
	return nil
}

// GetLayeredAlpha reads _NET_WM_WINDOW_OPACITY back
func (p *X11) GetLayeredAlpha(h Handle) (uint8, error) {
	w, ok := p.window(h)
	if !ok {
		return 0, &CallError{Call: "GetProperty", Err: errors.New("invalid window handle")}
	}
	reply, err := xproto.GetProperty(w.conn, false, w.id, w.opacity, xproto.AtomCardinal, 0, 1).Reply()
	if err != nil {
		return 0, &CallError{Call: "GetProperty", Err: err}
	}
	if reply.Format != 32 || len(reply.Value) < 4 {
		return 0, &CallError{Call: "GetProperty", Err: errors.New("opacity not set")}
	}
	return uint8(xgb.Get32(reply.Value) >> 24), nil
}

func (p *X11) newGC(w *x11Window) (xproto.Gcontext, error) {
	gc, err := xproto.NewGcontextId(w.conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreateGCChecked(w.conn, gc, xproto.Drawable(w.id),
		xproto.GcGraphicsExposures, []uint32{0}).Check(); err != nil {
		return 0, err
	}
	return gc, nil
}

// AcquireDC creates a graphics context on the window
func (p *X11) AcquireDC(h Handle) (DC, error) {
	w, ok := p.window(h)
	if !ok {
		return 0, &CallError{Call: "CreateGC", Err: errors.New("invalid window handle")}
	}
	gc, err := p.newGC(w)
	if err != nil {
		return 0, &CallError{Call: "CreateGC", Err: err}
	}
	dc := DC(gc)
	p.mu.Lock()
	p.dcs[dc] = &x11DC{conn: w.conn, window: w, gc: gc}
	p.mu.Unlock()
	return dc, nil
}

func (p *X11) dc(dc DC) (*x11DC, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.dcs[dc]
	return d, ok
}

func (p *X11) freeDC(dc DC) {
	p.mu.Lock()
	d, ok := p.dcs[dc]
	delete(p.dcs, dc)
	p.mu.Unlock()
	if ok {
		xproto.FreeGC(d.conn, d.gc)
	}
}

// ReleaseDC frees a window graphics context
func (p *X11) ReleaseDC(_ Handle, dc DC) {
	p.freeDC(dc)
}

// CreateCompatibleDC creates a graphics context that blits from a selected pixmap
func (p *X11) CreateCompatibleDC(dc DC) (DC, error) {
	d, ok := p.dc(dc)
	if !ok {
		return 0, &CallError{Call: "CreateGC", Err: errors.New("invalid device context")}
	}
	gc, err := p.newGC(d.window)
	if err != nil {
		return 0, &CallError{Call: "CreateGC", Err: err}
	}
	mem := DC(gc)
	p.mu.Lock()
	p.dcs[mem] = &x11DC{conn: d.conn, window: d.window, gc: gc}
	p.mu.Unlock()
	return mem, nil
}

// DeleteDC frees a memory graphics context
func (p *X11) DeleteDC(dc DC) {
	p.freeDC(dc)
}

// CreateBitmap uploads BGRX rows into a pixmap in bands that fit a request
func (p *X11) CreateBitmap(dc DC, width, height int, bgrx []byte) (Bitmap, error) {
	d, ok := p.dc(dc)
	if !ok {
		return 0, &CallError{Call: "CreatePixmap", Err: errors.New("invalid device context")}
	}

	pix, err := xproto.NewPixmapId(d.conn)
	if err != nil {
		return 0, &CallError{Call: "CreatePixmap", Err: err}
	}
	if err := xproto.CreatePixmapChecked(d.conn, d.window.depth, pix, xproto.Drawable(d.window.id),
		uint16(width), uint16(height)).Check(); err != nil {
		return 0, &CallError{Call: "CreatePixmap", Err: err}
	}

	stride := width * 4
	rows := maxPutImageBytes / stride
	if rows < 1 {
		rows = 1
	}
	for y := 0; y < height; y += rows {
		n := min(rows, height-y)
		band := bgrx[y*stride : (y+n)*stride]
		if err := xproto.PutImageChecked(d.conn, xproto.ImageFormatZPixmap, xproto.Drawable(pix), d.gc,
			uint16(width), uint16(n), 0, int16(y), 0, d.window.depth, band).Check(); err != nil {
			xproto.FreePixmap(d.conn, pix)
			return 0, &CallError{Call: "PutImage", Err: err}
		}
	}

	b := Bitmap(pix)
	p.mu.Lock()
	p.bitmaps[b] = d.conn
	p.mu.Unlock()
	return b, nil
}

// DeleteBitmap frees a pixmap
func (p *X11) DeleteBitmap(b Bitmap) {
	p.mu.Lock()
	conn, ok := p.bitmaps[b]
	delete(p.bitmaps, b)
	p.mu.Unlock()
	if ok {
		xproto.FreePixmap(conn, xproto.Pixmap(b))
	}
}

// SelectBitmap makes b the source of blits from dc
func (p *X11) SelectBitmap(dc DC, b Bitmap) Bitmap {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.dcs[dc]
	if !ok {
		return 0
	}
	prev := d.selected
	d.selected = b
	return prev
}

// Blit copies the pixmap selected into src onto dst's window
func (p *X11) Blit(dst DC, x, y, width, height int, src DC) error {
	p.mu.Lock()
	d, okDst := p.dcs[dst]
	s, okSrc := p.dcs[src]
	p.mu.Unlock()
	if !okDst || !okSrc || s.selected == 0 {
		return &CallError{Call: "CopyArea", Err: errors.New("invalid device context")}
	}
	if err := xproto.CopyAreaChecked(d.conn, xproto.Drawable(s.selected), xproto.Drawable(d.window.id), d.gc,
		0, 0, int16(x), int16(y), uint16(width), uint16(height)).Check(); err != nil {
		return &CallError{Call: "CopyArea", Err: err}
	}
	return nil
}
