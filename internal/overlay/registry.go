package overlay

import (
	"sync"

	"github.com/genricoloni/spectre/internal/platform"
	"go.uber.org/zap"
)

// ClassName is the name of the window class shared by every toast
const ClassName = "Spectre"

// WindowClass is the registered toast window class
type WindowClass struct {
	Name   string
	Handle platform.Class
}

// ClassRegistry registers the toast window class on first use and routes
// window messages to the Window owning each handle. The application
// creates one registry per process.
type ClassRegistry struct {
	platform platform.Platform
	logger   *zap.Logger
	instance func() (*WindowClass, error)

	mu     sync.RWMutex
	owners map[platform.Handle]*Window
}

// NewClassRegistry creates a registry. Nothing is registered until Instance is called.
func NewClassRegistry(p platform.Platform, logger *zap.Logger) *ClassRegistry {
	r := &ClassRegistry{
		platform: p,
		logger:   logger.Named("overlay"),
		owners:   make(map[platform.Handle]*Window),
	}
	r.instance = sync.OnceValues(r.register)
	return r
}

// Instance returns the window class, registering it on the first call.
// A failed registration is never retried.
func (r *ClassRegistry) Instance() (*WindowClass, error) {
	return r.instance()
}

// Platform returns the platform windows of this class are created on
func (r *ClassRegistry) Platform() platform.Platform {
	return r.platform
}

func (r *ClassRegistry) register() (*WindowClass, error) {
	cls, err := r.platform.RegisterClass(ClassName, r.windowProc)
	if err != nil {
		r.logger.Error("Failed to register window class", zap.String("class", ClassName), zap.Error(err))
		return nil, &Error{Op: "register class", Kind: ErrClassRegistrationFailed, Err: err}
	}
	r.logger.Info("Window class registered", zap.String("class", ClassName))
	return &WindowClass{Name: ClassName, Handle: cls}, nil
}

func (r *ClassRegistry) bind(h platform.Handle, w *Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[h] = w
}

func (r *ClassRegistry) unbind(h platform.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owners, h)
}

func (r *ClassRegistry) owner(h platform.Handle) *Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owners[h]
}

// Live returns the number of windows currently bound to the class
func (r *ClassRegistry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}

func (r *ClassRegistry) windowProc(h platform.Handle, msg platform.Message) (uintptr, bool) {
	w := r.owner(h)
	if w == nil {
		if msg.ID == platform.MsgPaint {
			r.logger.Warn("Paint requested for unknown window, nothing drawn", zap.Uintptr("hwnd", uintptr(h)))
			return 0, true
		}
		return 0, false
	}
	return w.handleMessage(msg)
}
