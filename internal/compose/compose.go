package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Options controls strip geometry.
type Options struct {
	// MaxHeight is the target page height. Pages taller than this are
	// downscaled to it; shorter pages keep their original size.
	MaxHeight int
	// Gap is the horizontal spacing in pixels between consecutive pages.
	Gap int
}

var background = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Strip arranges the given page images left to right into a single opaque
// image. Each page is scaled down (never up) so its height fits
// opts.MaxHeight, preserving aspect ratio. The canvas is as wide as the sum
// of the scaled widths plus gaps between consecutive pages, as tall as the
// tallest scaled page, and pages are top-aligned over a white background.
func Strip(pages []image.Image, opts Options) (*image.RGBA, error) {
	if len(pages) == 0 {
		return nil, errors.New("no images to compose")
	}
	if opts.MaxHeight < 1 {
		return nil, fmt.Errorf("max height must be at least 1, got %d", opts.MaxHeight)
	}
	if opts.Gap < 0 {
		return nil, fmt.Errorf("gap must not be negative, got %d", opts.Gap)
	}

	scaled := make([]image.Image, 0, len(pages))
	totalWidth := 0
	maxHeight := 0
	for _, page := range pages {
		img := downscale(page, opts.MaxHeight)
		bounds := img.Bounds()
		totalWidth += bounds.Dx()
		if bounds.Dy() > maxHeight {
			maxHeight = bounds.Dy()
		}
		scaled = append(scaled, img)
	}
	totalWidth += opts.Gap * (len(scaled) - 1)

	canvas := image.NewRGBA(image.Rect(0, 0, totalWidth, maxHeight))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)

	x := 0
	for _, img := range scaled {
		bounds := img.Bounds()
		target := image.Rect(x, 0, x+bounds.Dx(), bounds.Dy())
		xdraw.Draw(canvas, target, img, bounds.Min, xdraw.Over)
		x += bounds.Dx() + opts.Gap
	}

	return canvas, nil
}

// downscale returns page scaled so its height equals maxHeight when it is
// taller, and page unchanged otherwise.
func downscale(page image.Image, maxHeight int) image.Image {
	bounds := page.Bounds()
	h := bounds.Dy()
	if h <= maxHeight {
		return page
	}
	scale := float64(maxHeight) / float64(h)
	w := int(float64(bounds.Dx()) * scale)
	if w < 1 {
		w = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, maxHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), page, bounds, xdraw.Over, nil)
	return dst
}

// LoadPNG decodes a single PNG file.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// LoadPNGs decodes the given PNG files in order.
func LoadPNGs(paths []string) ([]image.Image, error) {
	images := make([]image.Image, 0, len(paths))
	for _, path := range paths {
		img, err := LoadPNG(path)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
