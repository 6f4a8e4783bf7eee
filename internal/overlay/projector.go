package overlay

import (
	"errors"
	"image"

	"github.com/genricoloni/spectre/internal/platform"
)

var errInvalidDimensions = errors.New("invalid bitmap dimensions")

// Projector turns thumbnails into native bitmaps
type Projector struct {
	drawing platform.Drawing
	key     platform.Color
}

// NewProjector returns a projector compositing transparency over key
func NewProjector(d platform.Drawing, key platform.Color) *Projector {
	return &Projector{drawing: d, key: key}
}

// Render allocates a bitmap compatible with dc holding img. The caller owns
// the returned bitmap and must delete it.
func (p *Projector) Render(dc platform.DC, img *image.NRGBA) (platform.Bitmap, error) {
	if img == nil || img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		return 0, &Error{Op: "render bitmap", Kind: ErrPlatformResourceFailure, Err: errInvalidDimensions}
	}

	b := img.Bounds()
	bmp, err := p.drawing.CreateBitmap(dc, b.Dx(), b.Dy(), toBGRX(img, p.key))
	if err != nil {
		return 0, &Error{Op: "render bitmap", Kind: ErrPlatformResourceFailure, Err: err}
	}
	return bmp, nil
}

// toBGRX converts img to top-down 32-bit BGRX rows. Alpha is flattened
// against key, so fully transparent pixels take the key colour.
func toBGRX(img *image.NRGBA, key platform.Color) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	kr, kg, kb := key.RGB()

	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out[y*w*4:]
		for x := 0; x < w; x++ {
			s := src[x*4 : x*4+4 : x*4+4]
			a := s[3]
			dst[x*4+0] = blend(s[2], kb, a)
			dst[x*4+1] = blend(s[1], kg, a)
			dst[x*4+2] = blend(s[0], kr, a)
			dst[x*4+3] = 0
		}
	}
	return out
}

func blend(c, k, a uint8) uint8 {
	return uint8((uint32(c)*uint32(a) + uint32(k)*(255-uint32(a)) + 127) / 255)
}
