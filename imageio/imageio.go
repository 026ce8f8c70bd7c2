// Package imageio is the container-format boundary: it sniffs, decodes
// and re-encodes the image files the engine operates on, and fetches
// remote inputs. Everything inside the engine works on origin-anchored
// *image.NRGBA frames; this package owns all conversions in and out.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
)

// Format identifies a supported container format.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatGIF
	FormatWebP
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	case FormatWebP:
		return "webp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the file extension used when encoding this format. WebP
// maps to png: there is no Go WebP encoder, so WebP inputs are written
// out as PNG.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatGIF:
		return "gif"
	default:
		return "png"
	}
}

// OutputName returns the default output filename for a format.
func (f Format) OutputName() string {
	return "output." + f.Ext()
}

// Frame is one decoded image frame. Stills decode to a single frame
// with zero delay.
type Frame struct {
	Image   *image.NRGBA
	DelayMS int
}

// Source is a fully decoded input: its sniffed format and its frames.
type Source struct {
	Format    Format
	Frames    []Frame
	Width     int
	Height    int
	LoopCount int // GIF loop count; 0 loops forever
}

// Sniff identifies the container format from magic bytes.
func Sniff(data []byte) (Format, error) {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG, nil
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return FormatJPEG, nil
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("GIF8")):
		return FormatGIF, nil
	case len(data) >= 16 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[12:16], []byte("WEBP")):
		return FormatWebP, nil
	default:
		return 0, fmt.Errorf("imageio: unsupported file format")
	}
}

// toNRGBA converts any decoded image into an origin-anchored NRGBA
// buffer.
func toNRGBA(img image.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func cloneNRGBA(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}
