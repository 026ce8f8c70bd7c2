package imageio

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
)

// jpegQuality matches the encoder default most viewers expect from a
// lossy re-encode.
const jpegQuality = 90

// Encode writes a processed Source to w in its output format: PNG and
// JPEG as stills, GIF as a full animation with the source delays and
// loop count, WebP as PNG (no Go encoder exists).
func Encode(w io.Writer, src *Source) error {
	if len(src.Frames) == 0 {
		return fmt.Errorf("imageio: nothing to encode")
	}

	switch src.Format {
	case FormatPNG, FormatWebP:
		if err := png.Encode(w, src.Frames[0].Image); err != nil {
			return fmt.Errorf("imageio: encoding png: %w", err)
		}
		return nil

	case FormatJPEG:
		if err := jpeg.Encode(w, src.Frames[0].Image, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("imageio: encoding jpeg: %w", err)
		}
		return nil

	case FormatGIF:
		return encodeGIF(w, src)

	default:
		return fmt.Errorf("imageio: unsupported file format")
	}
}

// encodeGIF quantizes every frame to the Plan 9 palette with error
// diffusion and reassembles the animation. Output animations always
// loop forever, whatever the source's loop count was.
func encodeGIF(w io.Writer, src *Source) error {
	out := &gif.GIF{
		LoopCount: 0,
		Config: image.Config{
			Width:  src.Width,
			Height: src.Height,
		},
	}

	for _, frame := range src.Frames {
		paletted := image.NewPaletted(frame.Image.Rect, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, frame.Image.Rect, frame.Image, image.Point{})
		out.Image = append(out.Image, paletted)
		out.Delay = append(out.Delay, frame.DelayMS/10)
	}

	if err := gif.EncodeAll(w, out); err != nil {
		return fmt.Errorf("imageio: encoding gif: %w", err)
	}
	return nil
}
