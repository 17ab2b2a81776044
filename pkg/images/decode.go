package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PixelFormat describes the layout of Image.Pix.
type PixelFormat int

const (
	// FormatRGBA8 is 8 bits per channel, alpha-premultiplied, as in image.RGBA.
	FormatRGBA8 PixelFormat = iota
)

func (f PixelFormat) String() string {
	if f == FormatRGBA8 {
		return "rgba8"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// Image is a decoded bitmap in canonical form. It is immutable once it is
// in the cache and may be shared freely.
type Image struct {
	Path     string
	Width    int
	Height   int
	Format   PixelFormat
	Stride   int
	Pix      []byte
	Encoding string // sniffed source format, e.g. "png"
}

// RGBA returns an image.RGBA view over the pixels without copying. Callers
// must not modify it.
func (img *Image) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    img.Pix,
		Stride: img.Stride,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// Decode sniffs the format of data and converts it to RGBA8.
func Decode(path string, data []byte) (*Image, error) {
	src, encoding, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("decoding %s: image has no pixels", path)
	}
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, src, b.Min, draw.Src)
	}

	return &Image{
		Path:     path,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   FormatRGBA8,
		Stride:   rgba.Stride,
		Pix:      rgba.Pix,
		Encoding: encoding,
	}, nil
}
