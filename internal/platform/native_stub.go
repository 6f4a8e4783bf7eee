//go:build !linux && !windows
// +build !linux,!windows

package platform

import (
	"github.com/genricoloni/spectre/internal/domain"
	"go.uber.org/zap"
)

// Unsupported is used on systems without a native toast implementation.
// Every call fails with ErrUnsupported.
type Unsupported struct{}

// New returns the native platform (stub implementation)
func New(logger *zap.Logger, _ *domain.ScreenResolution) Platform {
	logger.Warn("Overlay windows are not supported on this platform")
	return Unsupported{}
}

func (Unsupported) RegisterClass(string, WindowProc) (Class, error) { return 0, ErrUnsupported }

func (Unsupported) CreateWindow(Class, string, int, int) (Handle, error) { return 0, ErrUnsupported }

func (Unsupported) DestroyWindow(Handle) error { return ErrUnsupported }

func (Unsupported) Show(Handle) error { return ErrUnsupported }

func (Unsupported) Update(Handle) error { return ErrUnsupported }

func (Unsupported) Redraw(Handle) error { return ErrUnsupported }

func (Unsupported) GetMessage(Handle) (Message, bool) { return Message{}, false }

func (Unsupported) DispatchMessage(Message) {}

func (Unsupported) PostMessage(Handle, uint32) error { return ErrUnsupported }

func (Unsupported) PostQuit(Handle) {}

func (Unsupported) SetLayeredAlpha(Handle, Color, uint8) error { return ErrUnsupported }

func (Unsupported) GetLayeredAlpha(Handle) (uint8, error) { return 0, ErrUnsupported }

func (Unsupported) AcquireDC(Handle) (DC, error) { return 0, ErrUnsupported }

func (Unsupported) ReleaseDC(Handle, DC) {}

func (Unsupported) CreateCompatibleDC(DC) (DC, error) { return 0, ErrUnsupported }

func (Unsupported) DeleteDC(DC) {}

func (Unsupported) CreateBitmap(DC, int, int, []byte) (Bitmap, error) { return 0, ErrUnsupported }

func (Unsupported) DeleteBitmap(Bitmap) {}

func (Unsupported) SelectBitmap(DC, Bitmap) Bitmap { return 0 }

func (Unsupported) Blit(DC, int, int, int, int, DC) error { return ErrUnsupported }
