package testsupport

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"time"

	"texlapse/internal/compose"
)

// FakeBuilder implements latex.Builder by writing an empty PDF file. Calls
// listed in FailCalls (1-based) return an error instead.
type FakeBuilder struct {
	FailCalls map[int]bool

	mu    sync.Mutex
	calls int
}

func (b *FakeBuilder) Build(_ context.Context, _, texRel, buildDir string) (string, error) {
	b.mu.Lock()
	b.calls++
	call := b.calls
	b.mu.Unlock()

	if b.FailCalls[call] {
		return "", fmt.Errorf("compile failed for call %d", call)
	}
	base := filepath.Base(texRel)
	pdfPath := filepath.Join(buildDir, base[:len(base)-len(filepath.Ext(base))]+".pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644); err != nil {
		return "", err
	}
	return pdfPath, nil
}

// Calls returns how many builds were attempted.
func (b *FakeBuilder) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// FakeRasterizer implements raster.Rasterizer by writing small real PNG
// pages so downstream composition can decode them.
type FakeRasterizer struct {
	PagesPerCall int
	FailCalls    map[int]bool

	mu    sync.Mutex
	calls int
}

func (r *FakeRasterizer) Pages(_ context.Context, _, outPrefix string, _, maxPages int) ([]string, error) {
	r.mu.Lock()
	r.calls++
	call := r.calls
	r.mu.Unlock()

	if r.FailCalls[call] {
		return nil, fmt.Errorf("rasterize failed for call %d", call)
	}
	count := r.PagesPerCall
	if count <= 0 {
		count = 1
	}
	if count > maxPages {
		count = maxPages
	}
	var pages []string
	for i := 1; i <= count; i++ {
		path := fmt.Sprintf("%s-%d.png", outPrefix, i)
		if err := compose.WritePNG(path, testPage()); err != nil {
			return nil, err
		}
		pages = append(pages, path)
	}
	return pages, nil
}

// FakeEncoder implements anim.Encoder by recording frames and touching the
// output file.
type FakeEncoder struct {
	Fail bool

	mu     sync.Mutex
	Frames []string
}

func (e *FakeEncoder) Encode(_ context.Context, framePaths []string, _ time.Duration, outPath string) error {
	if e.Fail {
		return fmt.Errorf("encode failed")
	}
	e.mu.Lock()
	e.Frames = append([]string(nil), framePaths...)
	e.mu.Unlock()
	return os.WriteFile(outPath, []byte("GIF89a"), 0o644)
}

func testPage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}
