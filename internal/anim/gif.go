package anim

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"time"

	"texlapse/internal/compose"
)

// Encoder turns an ordered list of frame images into one animation file.
type Encoder interface {
	Encode(ctx context.Context, framePaths []string, frameDuration time.Duration, outPath string) error
}

// GIF encodes frames into an animated GIF with a fixed per-frame delay and
// infinite looping.
type GIF struct{}

// NewGIF constructs a GIF encoder.
func NewGIF() *GIF {
	return &GIF{}
}

// Encode loads each frame PNG, quantizes it, and writes the assembled GIF to
// outPath. The frame order in the output matches framePaths exactly.
func (g *GIF) Encode(ctx context.Context, framePaths []string, frameDuration time.Duration, outPath string) error {
	if len(framePaths) == 0 {
		return errors.New("no frames to animate")
	}
	if frameDuration <= 0 {
		return fmt.Errorf("frame duration must be positive, got %v", frameDuration)
	}

	// GIF delays are in hundredths of a second.
	delay := int(frameDuration.Round(10*time.Millisecond) / (10 * time.Millisecond))
	if delay < 1 {
		delay = 1
	}

	out := &gif.GIF{LoopCount: 0}
	for _, path := range framePaths {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := compose.LoadPNG(path)
		if err != nil {
			return fmt.Errorf("load frame: %w", err)
		}
		out.Image = append(out.Image, quantize(img))
		out.Delay = append(out.Delay, delay)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create animation file: %w", err)
	}
	defer f.Close()

	if err := gif.EncodeAll(f, out); err != nil {
		return fmt.Errorf("encode animation: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write animation: %w", err)
	}
	return nil
}

func quantize(img image.Image) *image.Paletted {
	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.FloydSteinberg.Draw(paletted, bounds, img, bounds.Min)
	return paletted
}

var _ Encoder = (*GIF)(nil)
