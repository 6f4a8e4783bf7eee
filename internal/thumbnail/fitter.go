// Package thumbnail turns raw artwork into the fixed-size canvas a toast paints.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF format support
	_ "image/jpeg" // JPEG format support
	_ "image/png"  // PNG format support
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

const (
	// Size is the width and height of every canvas
	Size = 300

	checkerCell = 30
)

var (
	placeholderLight = color.NRGBA{R: 255, G: 0, B: 255, A: 255}
	placeholderDark  = color.NRGBA{A: 255}
)

var placeholder = sync.OnceValue(func() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, Size, Size))
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			c := placeholderDark
			if (x/checkerCell+y/checkerCell)%2 == 0 {
				c = placeholderLight
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
})

// Fitter decodes artwork and fits it into a Size×Size canvas
type Fitter struct {
	logger *zap.Logger
}

// NewFitter creates a new thumbnail fitter
func NewFitter(logger *zap.Logger) *Fitter {
	return &Fitter{logger: logger.Named("thumbnail")}
}

// Fit decodes data and scales it, keeping its aspect ratio, until it touches
// two opposite edges of the canvas. The rest of the canvas stays
// transparent. Anything that cannot be decoded yields the placeholder.
func (f *Fitter) Fit(data []byte) *image.NRGBA {
	img, err := decode(data)
	if err != nil {
		f.logger.Warn("Artwork unusable, showing placeholder", zap.Int("bytes", len(data)), zap.Error(err))
		return f.Placeholder()
	}

	fitted := scale(img)
	b := fitted.Bounds()
	f.logger.Debug("Artwork fitted",
		zap.Int("src_w", img.Bounds().Dx()), zap.Int("src_h", img.Bounds().Dy()),
		zap.Int("w", b.Dx()), zap.Int("h", b.Dy()))

	canvas := imaging.New(Size, Size, color.NRGBA{})
	return imaging.Paste(canvas, fitted, image.Pt((Size-b.Dx())/2, (Size-b.Dy())/2))
}

// Placeholder returns a fresh copy of the missing-artwork checkerboard
func (f *Fitter) Placeholder() *image.NRGBA {
	return imaging.Clone(placeholder())
}

func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to decode image: empty input")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", b.Dx(), b.Dy())
	}
	return img, nil
}

func scale(img image.Image) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w > Size || h > Size {
		return imaging.Fit(img, Size, Size, imaging.Lanczos)
	}

	// imaging.Fit never enlarges
	if w >= h {
		return imaging.Resize(img, Size, max(1, (h*Size+w/2)/w), imaging.Lanczos)
	}
	return imaging.Resize(img, max(1, (w*Size+h/2)/h), Size, imaging.Lanczos)
}
