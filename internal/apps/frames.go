// ABOUTME: JPEG frame sources for the camera stream
// ABOUTME: TestPattern renders a moving bar so the stream is visibly live without camera hardware

package apps

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
)

// FrameSource produces one encoded JPEG per call.
type FrameSource interface {
	Frame(ctx context.Context) ([]byte, error)
}

// TestPattern draws a bar that advances one step per frame.
type TestPattern struct {
	Width   int
	Height  int
	Quality int

	mu    sync.Mutex
	frame int
}

// NewTestPattern matches the firmware camera's 160x120 at compression 60.
func NewTestPattern() *TestPattern {
	return &TestPattern{Width: 160, Height: 120, Quality: 60}
}

func (p *TestPattern) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	n := p.frame
	p.frame++
	p.mu.Unlock()

	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	barWidth := w / 8
	if barWidth == 0 {
		barWidth = 1
	}
	offset := (n * barWidth) % w
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 96, A: 255}
			if x >= offset && x < offset+barWidth {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
