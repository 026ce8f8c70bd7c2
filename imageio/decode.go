package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/webp"
)

// Decode sniffs and fully decodes an input file. GIF inputs decode to
// one coalesced frame per animation frame; everything else decodes to
// a single still.
func Decode(data []byte) (*Source, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatPNG:
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("imageio: decoding png: %w", err)
		}
		return still(format, img), nil

	case FormatJPEG:
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("imageio: decoding jpeg: %w", err)
		}
		return still(format, img), nil

	case FormatGIF:
		return decodeGIF(data)

	case FormatWebP:
		if isAnimatedWebP(data) {
			return nil, fmt.Errorf("imageio: animated webp is not supported")
		}
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("imageio: decoding webp: %w", err)
		}
		return still(format, img), nil

	default:
		return nil, fmt.Errorf("imageio: unsupported file format")
	}
}

func still(format Format, img image.Image) *Source {
	frame := toNRGBA(img)
	return &Source{
		Format: format,
		Frames: []Frame{{Image: frame}},
		Width:  frame.Rect.Dx(),
		Height: frame.Rect.Dy(),
	}
}

// decodeGIF coalesces every animation frame onto a shared canvas so
// partial frames become full images. Frame disposal is ignored, which
// matches how the engine re-encodes: every output frame is complete.
func decodeGIF(data []byte) (*Source, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imageio: decoding gif: %w", err)
	}

	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Dx(), b.Dy()
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	frames := make([]Frame, 0, len(g.Image))
	for i, frame := range g.Image {
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames = append(frames, Frame{
			Image:   cloneNRGBA(canvas),
			DelayMS: g.Delay[i] * 10,
		})
	}

	return &Source{
		Format:    FormatGIF,
		Frames:    frames,
		Width:     w,
		Height:    h,
		LoopCount: g.LoopCount,
	}, nil
}

// isAnimatedWebP checks the VP8X animation flag.
func isAnimatedWebP(data []byte) bool {
	return len(data) >= 21 &&
		bytes.Equal(data[12:16], []byte("WEBP")) &&
		bytes.Equal(data[16:20], []byte("VP8X")) &&
		data[20]&0x02 != 0
}
