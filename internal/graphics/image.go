package graphics

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"tetrisenv/internal/ppu"
)

// FrameToRGBA copies a packed frame into dst, which must be
// FrameWidth x FrameHeight. A nil dst allocates a new image.
func FrameToRGBA(frame []uint32, dst *image.RGBA) (*image.RGBA, error) {
	if len(frame) != FrameWidth*FrameHeight {
		return nil, fmt.Errorf("frame has %d pixels, want %d", len(frame), FrameWidth*FrameHeight)
	}
	if dst == nil {
		dst = image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	}
	for i, pixel := range frame {
		r, g, b, a := ppu.Unpack(pixel)
		o := i * 4
		dst.Pix[o] = r
		dst.Pix[o+1] = g
		dst.Pix[o+2] = b
		dst.Pix[o+3] = a
	}
	return dst, nil
}

// Scale returns src enlarged by an integer factor. "linear" filters with
// an approximate bilinear kernel; anything else keeps hard pixel edges.
func Scale(src image.Image, factor int, filter string) *image.RGBA {
	if factor < 1 {
		factor = 1
	}
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor))

	var scaler draw.Scaler = draw.NearestNeighbor
	if filter == "linear" {
		scaler = draw.ApproxBiLinear
	}
	scaler.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

// SavePNG writes a frame to path as a PNG scaled by factor
func SavePNG(path string, frame []uint32, factor int, filter string) error {
	img, err := FrameToRGBA(frame, nil)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, Scale(img, factor, filter)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}
