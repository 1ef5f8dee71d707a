package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Rasterizer renders a PDF's pages to PNG files.
type Rasterizer interface {
	// Pages renders pdfPath at the given DPI using outPrefix for the page
	// files and returns the produced paths in page order, capped at
	// maxPages.
	Pages(ctx context.Context, pdfPath, outPrefix string, dpi, maxPages int) ([]string, error)
}

// Option configures the CLI rasterizer.
type Option func(*CLI)

// WithBinary overrides the default pdftoppm binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the pdftoppm command-line rasterizer from Poppler.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI rasterizer using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "pdftoppm"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Pages invokes pdftoppm and collects outPrefix-1.png, outPrefix-2.png, ...
// in order. Collection stops at the first missing page index: pdftoppm
// numbers pages contiguously from 1, so a gap means the remaining files do
// not belong to this render.
func (c *CLI) Pages(ctx context.Context, pdfPath, outPrefix string, dpi, maxPages int) ([]string, error) {
	if pdfPath == "" {
		return nil, errors.New("pdf path required")
	}
	if outPrefix == "" {
		return nil, errors.New("output prefix required")
	}
	if maxPages < 1 {
		return nil, fmt.Errorf("max pages must be at least 1, got %d", maxPages)
	}

	args := []string{"-png", "-r", fmt.Sprint(dpi), pdfPath, outPrefix}
	cmd := commandContext(ctx, c.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return nil, fmt.Errorf("pdftoppm: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("pdftoppm: %w", err)
	}

	return CollectPages(outPrefix, maxPages), nil
}

// CollectPages gathers sequentially numbered page files for a prefix,
// stopping at the first gap and capping at maxPages.
func CollectPages(outPrefix string, maxPages int) []string {
	var produced []string
	for i := 1; i <= maxPages; i++ {
		page := fmt.Sprintf("%s-%d.png", outPrefix, i)
		if _, err := os.Stat(page); err != nil {
			break
		}
		produced = append(produced, page)
	}
	return produced
}

// PagePrefix builds a page-file prefix inside dir.
func PagePrefix(dir string) string {
	return filepath.Join(dir, "page")
}

var _ Rasterizer = (*CLI)(nil)
