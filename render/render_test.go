package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/chazu/glitch/imageio"
	"github.com/chazu/glitch/pkg/expr"
)

func testFrames(t *testing.T, n int) []imageio.Frame {
	t.Helper()
	frames := make([]imageio.Frame, n)
	for f := range frames {
		img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i] = 100
			img.Pix[i+1] = 150
			img.Pix[i+2] = 200
			img.Pix[i+3] = 255
		}
		frames[f] = imageio.Frame{Image: img, DelayMS: 10 * (f + 1)}
	}
	return frames
}

func compile(t *testing.T, sources ...string) [][]expr.Instruction {
	t.Helper()
	progs, err := expr.CompileAll(sources)
	if err != nil {
		t.Fatalf("CompileAll failed: %v", err)
	}
	return progs
}

func TestFramesSharedSeedIsCoherent(t *testing.T) {
	out, err := Frames(context.Background(), testFrames(t, 3), compile(t, "N"), Options{
		Seed: 7, Workers: 2,
	})
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d frames, want 3", len(out))
	}

	// Identical inputs with a shared seed produce identical noise.
	for i := 1; i < len(out); i++ {
		if !bytes.Equal(out[i].Image.Pix, out[0].Image.Pix) {
			t.Errorf("frame %d diverged from frame 0 under a shared seed", i)
		}
	}
}

func TestFramesSeedPerFrameDecorrelates(t *testing.T) {
	out, err := Frames(context.Background(), testFrames(t, 2), compile(t, "N"), Options{
		Seed: 7, SeedPerFrame: true, Workers: 2,
	})
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	if bytes.Equal(out[0].Image.Pix, out[1].Image.Pix) {
		t.Error("frames identical despite per-frame seeds")
	}
}

func TestFramesPreservesOrderAndDelay(t *testing.T) {
	frames := testFrames(t, 4)
	// Tag each input frame so outputs are distinguishable.
	for f, frame := range frames {
		frame.Image.SetNRGBA(0, 0, color.NRGBA{R: uint8(f + 1), A: 255})
	}

	out, err := Frames(context.Background(), frames, compile(t, "c"), Options{Seed: 1, Workers: 4})
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	for f, frame := range out {
		if got := frame.Image.NRGBAAt(0, 0).R; got != uint8(f+1) {
			t.Errorf("frame %d carries tag %d", f, got)
		}
		if frame.DelayMS != 10*(f+1) {
			t.Errorf("frame %d delay = %d, want %d", f, frame.DelayMS, 10*(f+1))
		}
	}
}

func TestFramesReportsFailingFrame(t *testing.T) {
	bad := [][]expr.Instruction{{{Op: expr.OpAdd}}}
	_, err := Frames(context.Background(), testFrames(t, 2), bad, Options{Seed: 1})
	if err == nil {
		t.Fatal("Frames succeeded with a malformed program, want error")
	}
}

func TestFramesCallbacks(t *testing.T) {
	var done atomic.Int32
	out, err := Frames(context.Background(), testFrames(t, 3), compile(t, "c"), Options{
		Seed:      1,
		Workers:   1,
		FrameDone: func(int) { done.Add(1) },
	})
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d frames, want 3", len(out))
	}
	if done.Load() != 3 {
		t.Errorf("FrameDone fired %d times, want 3", done.Load())
	}
}

func TestFramesCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Frames(ctx, testFrames(t, 2), compile(t, "c"), Options{Seed: 1}); err == nil {
		t.Error("Frames succeeded under a canceled context, want error")
	}
}
